package model

import "fmt"

// HistoryEntry урок в объединённой истории студента.
// Идентичность записи определяется составным ключом, а не ID урока:
// booked- и passed-фиды описывают один и тот же факт под разными ID.
type HistoryEntry struct {
	LessonSlot
}

// DedupKey составной ключ дедупликации (дата, время, инструмент, учитель)
func (e *HistoryEntry) DedupKey() string {
	return fmt.Sprintf("%s_%s_%s_%s_%s",
		e.StartAt.Format("2006-01-02"),
		e.StartAt.Format("15:04"),
		e.Instrument,
		e.TeacherFirstName,
		e.TeacherLastName,
	)
}
