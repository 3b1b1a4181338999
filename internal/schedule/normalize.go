package schedule

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/model"
)

// Принятые алиасы ключей сырой записи по каждому полю.
// Сравнение без учёта регистра; рыхлая форма не уходит дальше нормализатора.
var (
	startAliases        = []string{"startdatetime"}
	endAliases          = []string{"enddatetime"}
	dateAliases         = []string{"lessondate", "date"}
	clockAliases        = []string{"lessontime", "time"}
	durationAliases     = []string{"durationminutes", "duration"}
	instrumentAliases   = []string{"kind", "instrument"}
	idAliases           = []string{"lessonid", "id"}
	teacherFirstAliases = []string{"teacherfirstname"}
	teacherLastAliases  = []string{"teacherlastname"}
)

// Форматы времени, встречающиеся во внешнем фиде
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Normalizer приводит сырые записи уроков к каноническому виду.
// Попутно накапливает множество встреченных инструментов для фильтров.
type Normalizer struct {
	loc  *time.Location
	seen map[string]struct{}
}

// NewNormalizer создаёт нормализатор с фиксированной временной зоной.
// Ключи дат считаются по локальному настенному времени этой зоны.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{
		loc:  loc,
		seen: make(map[string]struct{}),
	}
}

// Normalize приводит одну сырую запись к каноническому слоту.
// Возвращает false, если время начала не удалось разобрать: такая запись
// пропускается, загрузка остальных продолжается.
func (n *Normalizer) Normalize(raw model.RawLessonRecord) (model.LessonSlot, bool) {
	fields := foldKeys(raw)

	start, ok := n.resolveStart(fields)
	if !ok {
		return model.LessonSlot{}, false
	}

	instrument := stringField(fields, instrumentAliases)
	if instrument == "" {
		instrument = model.InstrumentUnknown
	}
	n.seen[instrument] = struct{}{}

	return model.LessonSlot{
		ID:               intField(fields, idAliases),
		StartAt:          start,
		EndAt:            n.resolveEnd(fields, start),
		Instrument:       instrument,
		TeacherFirstName: stringField(fields, teacherFirstAliases),
		TeacherLastName:  stringField(fields, teacherLastAliases),
	}, true
}

// Instruments возвращает отсортированный список инструментов,
// встреченных со времени создания нормализатора
func (n *Normalizer) Instruments() []string {
	out := make([]string, 0, len(n.seen))
	for inst := range n.seen {
		out = append(out, inst)
	}
	sort.Strings(out)
	return out
}

// resolveStart пробует сначала комбинированное поле начала,
// затем пару "дата + время"
func (n *Normalizer) resolveStart(fields map[string]any) (time.Time, bool) {
	if s := stringField(fields, startAliases); s != "" {
		if t, err := n.parseTimestamp(s); err == nil {
			return t, true
		}
	}

	date := stringField(fields, dateAliases)
	clock := stringField(fields, clockAliases)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	if t, err := n.parseTimestamp(date + "T" + clock); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// resolveEnd: явное поле конца, иначе start + длительность,
// иначе слот нулевой длины (end == start)
func (n *Normalizer) resolveEnd(fields map[string]any, start time.Time) time.Time {
	if s := stringField(fields, endAliases); s != "" {
		if t, err := n.parseTimestamp(s); err == nil && !t.Before(start) {
			return t
		}
	}
	if minutes := intField(fields, durationAliases); minutes > 0 {
		return start.Add(time.Duration(minutes) * time.Minute)
	}
	return start
}

func (n *Normalizer) parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, n.loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// foldKeys переводит ключи записи в нижний регистр для поиска по алиасам
func foldKeys(raw model.RawLessonRecord) map[string]any {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[strings.ToLower(k)] = v
	}
	return fields
}

func lookup(fields map[string]any, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := fields[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(fields map[string]any, aliases []string) string {
	v, ok := lookup(fields, aliases)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// intField терпит числа, пришедшие как JSON number или строка
func intField(fields map[string]any, aliases []string) int64 {
	v, ok := lookup(fields, aliases)
	if !ok {
		return 0
	}
	switch num := v.(type) {
	case float64:
		return int64(num)
	case int64:
		return num
	case int:
		return int64(num)
	case json.Number:
		i, err := num.Int64()
		if err != nil {
			return 0
		}
		return i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
