package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/model"
)

// snapshot неизменяемое (кроме Remove под write-lock) состояние расписания.
// Load собирает новый snapshot целиком и подменяет указатель: читатели
// видят либо старое, либо новое расписание, но никогда частичное.
type snapshot struct {
	byDate      map[string][]model.LessonSlot
	dateByID    map[int64]string
	instruments []string
}

func emptySnapshot() *snapshot {
	return &snapshot{
		byDate:   make(map[string][]model.LessonSlot),
		dateByID: make(map[int64]string),
	}
}

// Index расписание свободных слотов, сгруппированное по календарной дате.
// Один экземпляр на процесс, передаётся сервисам явно; владелец снапшота.
type Index struct {
	mu   sync.RWMutex
	loc  *time.Location
	snap *snapshot
}

// NewIndex создаёт пустой индекс с фиксированной зоной для ключей дат
func NewIndex(loc *time.Location) *Index {
	if loc == nil {
		loc = time.Local
	}
	return &Index{
		loc:  loc,
		snap: emptySnapshot(),
	}
}

// Location возвращает зону, в которой индекс считает ключи дат
func (ix *Index) Location() *time.Location {
	return ix.loc
}

// Load нормализует все записи и атомарно подменяет снапшот.
// Записи без разбираемого времени начала пропускаются; записи с уже
// встреченным ID пропускаются, чтобы ID оставался уникальным в снапшоте.
// Возвращает число загруженных и число пропущенных записей.
func (ix *Index) Load(raws []model.RawLessonRecord) (loaded, skipped int) {
	n := NewNormalizer(ix.loc)
	next := emptySnapshot()

	for _, raw := range raws {
		slot, ok := n.Normalize(raw)
		if !ok {
			skipped++
			continue
		}
		if _, dup := next.dateByID[slot.ID]; dup {
			skipped++
			continue
		}
		key := slot.DateKey(ix.loc)
		next.byDate[key] = append(next.byDate[key], slot)
		next.dateByID[slot.ID] = key
		loaded++
	}

	for _, bucket := range next.byDate {
		sort.Slice(bucket, func(i, j int) bool {
			return bucket[i].StartAt.Before(bucket[j].StartAt)
		})
	}
	next.instruments = n.Instruments()

	ix.mu.Lock()
	ix.snap = next
	ix.mu.Unlock()

	return loaded, skipped
}

// Query возвращает слоты на указанную дату, по возрастанию времени начала.
// Непустой instrument дополнительно фильтрует по точному совпадению.
func (ix *Index) Query(date time.Time, instrument string) []model.LessonSlot {
	key := date.In(ix.loc).Format("2006-01-02")

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bucket := ix.snap.byDate[key]
	out := make([]model.LessonSlot, 0, len(bucket))
	for _, slot := range bucket {
		if instrument != "" && slot.Instrument != instrument {
			continue
		}
		out = append(out, slot)
	}
	return out
}

// Instruments возвращает инструменты, встреченные при последней загрузке
func (ix *Index) Instruments() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]string, len(ix.snap.instruments))
	copy(out, ix.snap.instruments)
	return out
}

// Get находит слот по ID в текущем снапшоте
func (ix *Index) Get(id int64) (model.LessonSlot, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	key, ok := ix.snap.dateByID[id]
	if !ok {
		return model.LessonSlot{}, false
	}
	for _, slot := range ix.snap.byDate[key] {
		if slot.ID == id {
			return slot, true
		}
	}
	return model.LessonSlot{}, false
}

// Remove удаляет слот из всех корзин дат.
// Идемпотентно: повторное удаление возвращает false без ошибки.
func (ix *Index) Remove(id int64) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	key, ok := ix.snap.dateByID[id]
	if !ok {
		return false
	}

	old := ix.snap.byDate[key]
	bucket := make([]model.LessonSlot, 0, len(old))
	for _, slot := range old {
		if slot.ID != id {
			bucket = append(bucket, slot)
		}
	}
	if len(bucket) == 0 {
		delete(ix.snap.byDate, key)
	} else {
		ix.snap.byDate[key] = bucket
	}
	delete(ix.snap.dateByID, id)
	return true
}
