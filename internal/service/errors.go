package service

import "errors"

// Общие ошибки сервисов.
// MalformedRecord ошибкой не является: битые записи тихо пропускаются
// нормализатором, остальная загрузка продолжается.
var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrInvalidStudent  = errors.New("invalid student identity")
	ErrBookingRejected = errors.New("booking rejected")
	ErrAPIUnavailable  = errors.New("lessons api unavailable")
)
