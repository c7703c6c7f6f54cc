package response

const (
	CodeInternalError  = "INTERNAL_ERROR"
	CodeRequestTimeout = "REQUEST_TIMEOUT"
)

// ErrorResponse единый конверт ошибки для обработчиков и middleware
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}
