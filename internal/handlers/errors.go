package handlers

import (
	"net/http"

	"blog-content-api/internal/services"
)

// ErrorResponse is the body of every failed request except not-found
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a human-readable outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// statusFor maps a service error kind to an HTTP status
func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the status and body for err. Not-found errors use the
// message shape, everything else the error shape.
func errorBody(err error) (int, interface{}) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		return status, MessageResponse{Message: err.Error()}
	}
	return status, ErrorResponse{Error: err.Error()}
}
