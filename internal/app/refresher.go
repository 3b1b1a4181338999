package app

import (
	"context"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/service"
	"go.uber.org/zap"
)

// Refresher периодически перезагружает расписание из внешнего API.
// Сбой очередной загрузки не трогает предыдущий снапшот индекса.
type Refresher struct {
	scheduleService *service.ScheduleService
	interval        time.Duration
	logger          *zap.Logger
	stopChan        chan struct{}
}

// NewRefresher создаёт фоновый обновлятор расписания
func NewRefresher(scheduleService *service.ScheduleService, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		scheduleService: scheduleService,
		interval:        interval,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start запускает фоновое обновление
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("Starting schedule refresher",
		zap.Duration("interval", r.interval))

	go r.run(ctx)
}

// Stop останавливает фоновое обновление
func (r *Refresher) Stop() {
	r.logger.Info("Stopping schedule refresher")
	close(r.stopChan)
}

func (r *Refresher) run(ctx context.Context) {
	// Первая загрузка сразу при старте
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.stopChan:
			r.logger.Info("Schedule refresher stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Schedule refresher cancelled")
			return
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.scheduleService.Refresh(ctx); err != nil {
		r.logger.Error("Scheduled refresh failed, keeping previous snapshot", zap.Error(err))
	}
}
