package repository

import (
	"context"
	"fmt"

	"github.com/dkurbatov/lesson_booker/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JournalRepository хранит журнал попыток бронирования.
// Журнал нужен для аудита и разбора неоднозначных исходов (таймаут POST):
// по ключу идемпотентности можно сверить запись с внешним API.
type JournalRepository struct {
	pool *pgxpool.Pool
}

func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Create вставляет запись о новой попытке бронирования
func (r *JournalRepository) Create(ctx context.Context, rec *model.BookingRecord) error {
	query := `
		INSERT INTO booking_journal (idempotency_key, slot_id, student_id, status, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		rec.IdempotencyKey,
		rec.SlotID,
		rec.StudentID,
		rec.Status,
		rec.Message,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create journal record: %w", err)
	}

	return nil
}

// UpdateStatus обновляет исход попытки по ключу идемпотентности
func (r *JournalRepository) UpdateStatus(ctx context.Context, key uuid.UUID, status model.BookingStatus, message string) error {
	query := `
		UPDATE booking_journal
		SET status = $2, message = $3, updated_at = NOW()
		WHERE idempotency_key = $1
	`

	_, err := r.pool.Exec(ctx, query, key, status, message)
	if err != nil {
		return fmt.Errorf("update journal record: %w", err)
	}

	return nil
}

// GetByKey получает запись журнала по ключу идемпотентности
func (r *JournalRepository) GetByKey(ctx context.Context, key uuid.UUID) (*model.BookingRecord, error) {
	query := `
		SELECT id, idempotency_key, slot_id, student_id, status, message, created_at, updated_at
		FROM booking_journal
		WHERE idempotency_key = $1
	`

	var rec model.BookingRecord
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&rec.ID,
		&rec.IdempotencyKey,
		&rec.SlotID,
		&rec.StudentID,
		&rec.Status,
		&rec.Message,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get journal record by key: %w", err)
	}

	return &rec, nil
}

// GetByStudentID получает попытки бронирования студента, новые первыми
func (r *JournalRepository) GetByStudentID(ctx context.Context, studentID int64, limit int) ([]*model.BookingRecord, error) {
	query := `
		SELECT id, idempotency_key, slot_id, student_id, status, message, created_at, updated_at
		FROM booking_journal
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("get journal records: %w", err)
	}
	defer rows.Close()

	var records []*model.BookingRecord
	for rows.Next() {
		var rec model.BookingRecord
		err := rows.Scan(
			&rec.ID,
			&rec.IdempotencyKey,
			&rec.SlotID,
			&rec.StudentID,
			&rec.Status,
			&rec.Message,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan journal record: %w", err)
		}
		records = append(records, &rec)
	}

	return records, nil
}
