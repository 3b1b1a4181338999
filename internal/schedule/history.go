package schedule

import (
	"sort"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/model"
)

// MergeHistory объединяет два сырых фида уроков студента (забронированные
// и прошедшие) в одну ленту. Оба фида нормализуются независимо, затем
// дедуплицируются по составному ключу (дата, время, инструмент, учитель):
// при совпадении ключа побеждает более поздняя запись, потому что оба
// источника описывают один и тот же факт. Результат отсортирован по
// возрастанию времени начала и пересчитывается заново при каждом вызове.
func MergeHistory(booked, passed []model.RawLessonRecord, loc *time.Location) []model.HistoryEntry {
	n := NewNormalizer(loc)
	entries := make(map[string]model.HistoryEntry)

	collect := func(raws []model.RawLessonRecord) {
		for _, raw := range raws {
			slot, ok := n.Normalize(raw)
			if !ok {
				continue
			}
			entry := model.HistoryEntry{LessonSlot: slot}
			entries[entry.DedupKey()] = entry
		}
	}
	collect(booked)
	collect(passed)

	out := make([]model.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].DedupKey() < out[j].DedupKey()
	})
	return out
}
