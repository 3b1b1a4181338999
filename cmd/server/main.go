package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/app"
	"github.com/dkurbatov/lesson_booker/internal/client"
	"github.com/dkurbatov/lesson_booker/internal/config"
	"github.com/dkurbatov/lesson_booker/internal/controller"
	"github.com/dkurbatov/lesson_booker/internal/repository"
	"github.com/dkurbatov/lesson_booker/internal/schedule"
	"github.com/dkurbatov/lesson_booker/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to resolve timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	apiClient := client.NewAPIClient(cfg.LessonsAPIURL, cfg.BookingTimeout, cfg.CacheTTL, logger)
	index := schedule.NewIndex(loc)
	journalRepo := repository.NewJournalRepository(pool)

	scheduleService := service.NewScheduleService(apiClient, index, logger)
	bookingService := service.NewBookingService(apiClient, index, journalRepo, cfg.BookingTimeout, logger)
	historyService := service.NewHistoryService(apiClient, loc, logger)

	refresher := app.NewRefresher(scheduleService, cfg.RefreshInterval, logger)
	refresher.Start(ctx)
	defer refresher.Stop()

	router := controller.NewRouter(scheduleService, bookingService, historyService, cfg.Environment, logger)
	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	go func() {
		logger.Info("Starting lesson booking service",
			zap.String("environment", cfg.Environment),
			zap.String("addr", cfg.ListenAddr),
			zap.String("lessons_api", cfg.LessonsAPIURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
