package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/client"
	"github.com/dkurbatov/lesson_booker/internal/model"
	"github.com/dkurbatov/lesson_booker/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingJournal локальный журнал попыток бронирования
type BookingJournal interface {
	Create(ctx context.Context, rec *model.BookingRecord) error
	UpdateStatus(ctx context.Context, key uuid.UUID, status model.BookingStatus, message string) error
}

type BookingService struct {
	api     *client.APIClient
	index   *schedule.Index
	journal BookingJournal
	timeout time.Duration
	logger  *zap.Logger
}

func NewBookingService(
	api *client.APIClient,
	index *schedule.Index,
	journal BookingJournal,
	timeout time.Duration,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		api:     api,
		index:   index,
		journal: journal,
		timeout: timeout,
		logger:  logger,
	}
}

// Book бронирует слот для студента.
//
// Удаление слота из индекса после успеха локальная UX-оптимизация,
// а не гарантия эксклюзивности: две независимые копии сервиса всё ещё
// могут отправить бронирование одного слота. Настоящую эксклюзивность
// обязан обеспечивать внешний API.
func (s *BookingService) Book(ctx context.Context, slotID int64, student model.StudentIdentity) (*model.BookingRecord, error) {
	// Отсутствие слота и "уже занят и удалён локально" неразличимы
	slot, ok := s.index.Get(slotID)
	if !ok {
		return nil, ErrSlotNotFound
	}

	if !student.IsValid() {
		return nil, ErrInvalidStudent
	}

	req := model.BookingRequest{
		LessonID:         slot.ID,
		StudentID:        student.ID,
		Instrument:       slot.Instrument,
		StudentFirstName: student.FirstName,
		StudentLastName:  student.LastName,
		TeacherFirstName: slot.TeacherFirstName,
		TeacherLastName:  slot.TeacherLastName,
	}

	rec := &model.BookingRecord{
		IdempotencyKey: uuid.New(),
		SlotID:         slotID,
		StudentID:      student.ID,
		Status:         model.BookingStatusPending,
	}
	if err := s.journal.Create(ctx, rec); err != nil {
		// журнал не должен блокировать бронирование
		s.logger.Warn("Failed to journal booking attempt",
			zap.String("idempotency_key", rec.IdempotencyKey.String()),
			zap.Error(err),
		)
	}

	// Сетевой вызов с явным таймаутом, без удержания блокировок индекса
	submitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.api.SubmitBooking(submitCtx, req, rec.IdempotencyKey)
	if err != nil {
		// Исход на сервере неизвестен: бронирование могло пройти.
		// Слот остаётся в индексе, разрешение за ключом идемпотентности.
		s.logger.Error("Booking submission failed",
			zap.Int64("slot_id", slotID),
			zap.Int64("student_id", student.ID),
			zap.Error(err),
		)
		s.journalOutcome(rec, model.BookingStatusFailed, "")
		return nil, fmt.Errorf("submit booking: %w", ErrAPIUnavailable)
	}

	if !outcome.Success {
		s.journalOutcome(rec, model.BookingStatusRejected, outcome.Message)
		if outcome.Message == "" {
			return nil, ErrBookingRejected
		}
		// Сообщение внешнего API уходит пользователю как есть
		return nil, fmt.Errorf("%w: %s", ErrBookingRejected, outcome.Message)
	}

	// Успех: слот больше не должен показываться в выдаче
	s.index.Remove(slotID)
	s.api.InvalidateAvailable()
	s.journalOutcome(rec, model.BookingStatusConfirmed, outcome.Message)

	rec.Status = model.BookingStatusConfirmed
	rec.Message = outcome.Message

	s.logger.Info("Slot booked",
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", student.ID),
		zap.String("instrument", slot.Instrument),
		zap.String("idempotency_key", rec.IdempotencyKey.String()),
	)

	return rec, nil
}

// journalOutcome записывает исход попытки.
// Отдельный контекст: исходный мог уже истечь вместе с таймаутом отправки.
func (s *BookingService) journalOutcome(rec *model.BookingRecord, status model.BookingStatus, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.journal.UpdateStatus(ctx, rec.IdempotencyKey, status, message); err != nil {
		s.logger.Warn("Failed to journal booking outcome",
			zap.String("idempotency_key", rec.IdempotencyKey.String()),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}
