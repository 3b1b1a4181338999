package handlers

import (
	"errors"
	"net/http"

	"github.com/dkurbatov/lesson_booker/internal/service"
)

// ErrorResponse тело ответа при ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusForError переводит ошибки сервисов в HTTP-статусы
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidStudent):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBookingRejected):
		return http.StatusConflict
	case errors.Is(err, service.ErrAPIUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
