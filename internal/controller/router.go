package controller

import (
	"time"

	"github.com/dkurbatov/lesson_booker/internal/controller/handlers"
	"github.com/dkurbatov/lesson_booker/internal/controller/middleware"
	"github.com/dkurbatov/lesson_booker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter собирает HTTP-маршруты сервиса
func NewRouter(
	scheduleService *service.ScheduleService,
	bookingService *service.BookingService,
	historyService *service.HistoryService,
	env string,
	logger *zap.Logger,
) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	scheduleHandler := handlers.NewScheduleHandler(scheduleService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	historyHandler := handlers.NewHistoryHandler(historyService, logger)

	router := gin.New()
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now(),
			})
		})

		api.POST("/schedule/refresh", scheduleHandler.Refresh)
		api.GET("/schedule", scheduleHandler.Slots)
		api.GET("/schedule/instruments", scheduleHandler.Instruments)

		api.POST("/bookings", bookingHandler.Book)

		api.GET("/students/:id/history", historyHandler.History)
	}

	return router
}
