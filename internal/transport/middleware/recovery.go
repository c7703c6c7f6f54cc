package middleware

import (
	"net/http"

	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

// Recovery ловит панику обработчика и отвечает 500 в формате ErrorResponse
func Recovery(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				// Штатный обрыв соединения, net/http обработает его сам
				if p == http.ErrAbortHandler {
					panic(p)
				}

				logger.Error("panic recovered",
					append(requestFields(r), zap.Any("panic", p), zap.Stack("stack"))...,
				)
				writeError(w, http.StatusInternalServerError, response.CodeInternalError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
