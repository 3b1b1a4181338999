package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingRequest плоская запись бронирования для внешнего API.
// Имена JSON-полей повторяют контракт API один в один.
// Денормализация намеренная: запись фиксирует факт бронирования
// независимо от дальнейшей судьбы слота.
type BookingRequest struct {
	LessonID         int64  `json:"LessonId"`
	StudentID        int64  `json:"StudentIdLessons"`
	Instrument       string `json:"Kind"`
	StudentFirstName string `json:"StudentFirstName"`
	StudentLastName  string `json:"StudentLastName"`
	TeacherFirstName string `json:"TeacherFirstName"`
	TeacherLastName  string `json:"TeacherLastName"`
}

// BookingOutcome ответ внешнего API на попытку бронирования
type BookingOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Отправлено, ответ ещё не получен
	BookingStatusConfirmed BookingStatus = "confirmed" // Подтверждено внешним API
	BookingStatusRejected  BookingStatus = "rejected"  // Отклонено внешним API
	BookingStatusFailed    BookingStatus = "failed"    // Сеть/таймаут, исход неизвестен
)

// BookingRecord запись журнала бронирований.
// Журнал локальный аудит всех попыток; источником истины остаётся внешний API.
type BookingRecord struct {
	ID             int64         `json:"id"`
	IdempotencyKey uuid.UUID     `json:"idempotency_key"`
	SlotID         int64         `json:"slot_id"`
	StudentID      int64         `json:"student_id"`
	Status         BookingStatus `json:"status"`
	Message        string        `json:"message"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
