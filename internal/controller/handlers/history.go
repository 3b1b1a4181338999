package handlers

import (
	"net/http"
	"strconv"

	"github.com/dkurbatov/lesson_booker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	historyService *service.HistoryService
	logger         *zap.Logger
}

func NewHistoryHandler(historyService *service.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		logger:         logger,
	}
}

// History возвращает объединённую ленту уроков студента
func (h *HistoryHandler) History(c *gin.Context) {
	studentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || studentID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid student id",
		})
		return
	}

	entries, err := h.historyService.History(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{
			Error: "failed to load lesson history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student_id": studentID,
		"lessons":    entries,
	})
}
