package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/client"
	"github.com/dkurbatov/lesson_booker/internal/model"
	"github.com/dkurbatov/lesson_booker/internal/schedule"
	"go.uber.org/zap"
)

type ScheduleService struct {
	api    *client.APIClient
	index  *schedule.Index
	logger *zap.Logger
}

func NewScheduleService(api *client.APIClient, index *schedule.Index, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		api:    api,
		index:  index,
		logger: logger,
	}
}

// Refresh получает свободные уроки и перестраивает индекс.
// При сбое загрузки прежний снапшот остаётся на месте: устаревшее
// расписание лучше пустого.
func (s *ScheduleService) Refresh(ctx context.Context) error {
	raws, err := s.api.AvailableLessons(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch available lessons", zap.Error(err))
		return fmt.Errorf("fetch available lessons: %w", ErrAPIUnavailable)
	}

	loaded, skipped := s.index.Load(raws)
	s.logger.Info("Schedule loaded",
		zap.Int("loaded", loaded),
		zap.Int("skipped", skipped),
	)

	return nil
}

// SlotsForDate возвращает свободные слоты на дату, по возрастанию времени.
// Непустой instrument дополнительно фильтрует по инструменту.
func (s *ScheduleService) SlotsForDate(date time.Time, instrument string) []model.LessonSlot {
	return s.index.Query(date, instrument)
}

// Instruments возвращает инструменты текущего расписания
func (s *ScheduleService) Instruments() []string {
	return s.index.Instruments()
}

// Location возвращает зону, в которой расписание считает даты
func (s *ScheduleService) Location() *time.Location {
	return s.index.Location()
}
