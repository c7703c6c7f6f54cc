package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/ReviewerRotation/internal/domain"
	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"github.com/niklvrr/ReviewerRotation/internal/transport/middleware"
	"github.com/niklvrr/ReviewerRotation/internal/usecase/service"
)

// HandleError маппит доменные ошибки на HTTP коды и ErrorResponse
func HandleError(err error) (int, response.ErrorResponse) {
	if err == nil {
		return http.StatusOK, response.ErrorResponse{}
	}

	var domainErr *service.DomainError
	if errors.As(err, &domainErr) {
		// Маппим код ошибки на HTTP статус
		statusCode := mapErrorCodeToHTTPStatus(domainErr.Code)
		return statusCode, response.NewErrorResponse(domainErr.Code, domainErr.Message)
	}

	// Неизвестная ошибка - возвращаем 500
	return http.StatusInternalServerError, response.NewErrorResponse(response.CodeInternalError, "internal server error")
}

// mapErrorCodeToHTTPStatus маппит код ошибки на HTTP статус
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case "TEAM_EXISTS":
		return http.StatusConflict // 409
	case "CONFLICT":
		return http.StatusConflict // 409
	case "NO_CANDIDATE":
		return http.StatusConflict // 409
	case "NOTHING_TO_UNDO":
		return http.StatusConflict // 409
	case "UNAUTHORIZED":
		return http.StatusForbidden // 403
	case "NOT_FOUND":
		return http.StatusNotFound // 404
	case "INVALID_INPUT":
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteError отправляет ErrorResponse клиенту
func WriteError(w http.ResponseWriter, statusCode int, errResp response.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errResp)
}

func writeErr(w http.ResponseWriter, err error) {
	statusCode, errResp := HandleError(err)
	WriteError(w, statusCode, errResp)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeBody разбирает тело запроса, пустое тело допустимо
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return service.WrapError(service.ErrInvalidInput, err)
	}
	return nil
}

func teamID(r *http.Request) string {
	return chi.URLParam(r, "teamId")
}

// actionBy из тела запроса, иначе из токена
func actionBy(r *http.Request, fromBody *domain.ActionBy) *domain.ActionBy {
	if fromBody != nil {
		return fromBody
	}
	return middleware.ActionByFromContext(r.Context())
}

func optionalQuery(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}
