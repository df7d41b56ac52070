package apperr

import (
	"errors"
	"net/http"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Response maps err onto an HTTP status and a client-facing body. Unclassified
// errors never leak their text.
func Response(err error) (int, ErrorResponse) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid input", Fields: ve.Fields}
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not found"}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"}
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway, ErrorResponse{Error: "failed to send email"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "server error"}
	}
}
