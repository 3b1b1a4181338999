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

type HistoryService struct {
	api    *client.APIClient
	loc    *time.Location
	logger *zap.Logger
}

func NewHistoryService(api *client.APIClient, loc *time.Location, logger *zap.Logger) *HistoryService {
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{
		api:    api,
		loc:    loc,
		logger: logger,
	}
}

// History возвращает объединённую ленту уроков студента:
// забронированные и прошедшие, без дублей, по возрастанию времени
func (s *HistoryService) History(ctx context.Context, studentID int64) ([]model.HistoryEntry, error) {
	booked, err := s.api.BookedLessons(ctx, studentID)
	if err != nil {
		s.logger.Error("Failed to fetch booked lessons",
			zap.Int64("student_id", studentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch booked lessons: %w", ErrAPIUnavailable)
	}

	passed, err := s.api.PassedLessons(ctx, studentID)
	if err != nil {
		s.logger.Error("Failed to fetch passed lessons",
			zap.Int64("student_id", studentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch passed lessons: %w", ErrAPIUnavailable)
	}

	return schedule.MergeHistory(booked, passed, s.loc), nil
}
