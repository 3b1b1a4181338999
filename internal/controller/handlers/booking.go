package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dkurbatov/lesson_booker/internal/model"
	"github.com/dkurbatov/lesson_booker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
}

func NewBookingHandler(bookingService *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

type bookRequest struct {
	SlotID    int64  `json:"slot_id" binding:"required"`
	StudentID int64  `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Book бронирует слот для студента.
// Личность студента приходит от внешнего слоя сессий как есть.
func (h *BookingHandler) Book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	student := model.StudentIdentity{
		ID:        req.StudentID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	rec, err := h.bookingService.Book(c.Request.Context(), req.SlotID, student)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{
			Error:   "booking failed",
			Message: rejectionDetail(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "booked",
		"booking": rec,
	})
}

// rejectionDetail достаёт сообщение внешнего API из обёрнутой ошибки,
// чтобы показать его пользователю дословно
func rejectionDetail(err error) string {
	if !errors.Is(err, service.ErrBookingRejected) {
		return err.Error()
	}
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
