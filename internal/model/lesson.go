package model

import "time"

// RawLessonRecord сырая запись урока из внешнего API.
// Форма не гарантируется: имена и регистр полей различаются от фида к фиду.
type RawLessonRecord map[string]any

// InstrumentUnknown значение-заглушка, когда инструмент не указан в записи
const InstrumentUnknown = "unknown"

// LessonSlot канонический свободный слот урока.
// Создаётся нормализатором, после бронирования удаляется из индекса.
type LessonSlot struct {
	ID               int64     `json:"id"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
	Instrument       string    `json:"instrument"`
	TeacherFirstName string    `json:"teacher_first_name"`
	TeacherLastName  string    `json:"teacher_last_name"`
}

// Duration возвращает длительность слота
func (s *LessonSlot) Duration() time.Duration {
	return s.EndAt.Sub(s.StartAt)
}

// DateKey возвращает календарную дату начала слота в заданной зоне
func (s *LessonSlot) DateKey(loc *time.Location) string {
	return s.StartAt.In(loc).Format("2006-01-02")
}
