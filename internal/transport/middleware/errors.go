package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

const unmatchedRoute = "unmatched"

// writeError отвечает тем же JSON конвертом, что и обработчики
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response.NewErrorResponse(code, message))
}

// routePattern шаблон маршрута chi, известен после роутинга
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// requestFields общие поля лога запроса, team_id только для маршрутов команды
func requestFields(r *http.Request) []zap.Field {
	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("route", routePattern(r)),
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if teamId := rctx.URLParam("teamId"); teamId != "" {
			fields = append(fields, zap.String("team_id", teamId))
		}
	}
	return fields
}
