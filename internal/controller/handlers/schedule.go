package handlers

import (
	"net/http"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	scheduleService *service.ScheduleService
	logger          *zap.Logger
}

func NewScheduleHandler(scheduleService *service.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// Refresh перезагружает расписание из внешнего API.
// При сбое прежний снапшот остаётся доступен для запросов.
func (h *ScheduleHandler) Refresh(c *gin.Context) {
	if err := h.scheduleService.Refresh(c.Request.Context()); err != nil {
		c.JSON(statusForError(err), ErrorResponse{
			Error: "failed to refresh schedule",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Slots возвращает свободные слоты на дату, опционально по инструменту
func (h *ScheduleHandler) Slots(c *gin.Context) {
	rawDate := c.Query("date")
	if rawDate == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "date parameter is required",
		})
		return
	}

	// Дата трактуется в зоне расписания, иначе ключ дня может уехать
	date, err := time.ParseInLocation("2006-01-02", rawDate, h.scheduleService.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid date format, expected YYYY-MM-DD",
			Message: err.Error(),
		})
		return
	}

	slots := h.scheduleService.SlotsForDate(date, c.Query("instrument"))

	c.JSON(http.StatusOK, gin.H{
		"date":  rawDate,
		"slots": slots,
	})
}

// Instruments возвращает список инструментов для фильтров
func (h *ScheduleHandler) Instruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instruments": h.scheduleService.Instruments(),
	})
}
