package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/client"
	"github.com/dkurbatov/lesson_booker/internal/model"
	"github.com/dkurbatov/lesson_booker/internal/schedule"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeJournal журнал в памяти для тестов
type fakeJournal struct {
	mu      sync.Mutex
	created []*model.BookingRecord
	updates map[uuid.UUID]model.BookingStatus
	failing bool
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{updates: make(map[uuid.UUID]model.BookingStatus)}
}

func (j *fakeJournal) Create(ctx context.Context, rec *model.BookingRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failing {
		return errors.New("journal unavailable")
	}
	j.created = append(j.created, rec)
	return nil
}

func (j *fakeJournal) UpdateStatus(ctx context.Context, key uuid.UUID, status model.BookingStatus, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failing {
		return errors.New("journal unavailable")
	}
	j.updates[key] = status
	return nil
}

func (j *fakeJournal) lastStatus() (model.BookingStatus, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.created) == 0 {
		return "", false
	}
	status, ok := j.updates[j.created[len(j.created)-1].IdempotencyKey]
	return status, ok
}

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func loadedIndex(t *testing.T) *schedule.Index {
	t.Helper()
	ix := schedule.NewIndex(time.UTC)
	ix.Load([]model.RawLessonRecord{
		{
			"LessonId":         float64(7),
			"LessonDate":       "2024-05-01",
			"LessonTime":       "10:00",
			"DurationMinutes":  float64(45),
			"Kind":             "Piano",
			"TeacherFirstName": "Anna",
			"TeacherLastName":  "Berg",
		},
	})
	return ix
}

func newBookingService(t *testing.T, handler http.Handler, ix *schedule.Index, journal BookingJournal) *BookingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := client.NewAPIClient(srv.URL, 2*time.Second, time.Minute, zap.NewNop())
	return NewBookingService(api, ix, journal, 2*time.Second, zap.NewNop())
}

func TestBookingService_BookTwice(t *testing.T) {
	var submitted []model.BookingRequest
	ix := loadedIndex(t)
	journal := newFakeJournal()
	svc := newBookingService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.BookingRequest
		if err := jsonDecode(r, &req); err != nil {
			t.Fatalf("decode booking body: %v", err)
		}
		submitted = append(submitted, req)
		w.Write([]byte("booked"))
	}), ix, journal)

	student := model.StudentIdentity{ID: 42, FirstName: "Lena", LastName: "Katz"}

	rec, err := svc.Book(context.Background(), 7, student)
	if err != nil {
		t.Fatalf("first Book() error = %v", err)
	}
	if rec.Status != model.BookingStatusConfirmed {
		t.Errorf("record status = %q, want confirmed", rec.Status)
	}

	// Запрос к API денормализован: слот + студент + учитель одним плоским телом
	if len(submitted) != 1 {
		t.Fatalf("submissions = %d, want 1", len(submitted))
	}
	got := submitted[0]
	if got.LessonID != 7 || got.StudentID != 42 || got.Instrument != "Piano" ||
		got.StudentFirstName != "Lena" || got.TeacherFirstName != "Anna" || got.TeacherLastName != "Berg" {
		t.Errorf("submitted request = %+v", got)
	}

	// Слот удалён из индекса: повторная попытка неотличима от несуществующего
	if _, err := svc.Book(context.Background(), 7, student); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("second Book() error = %v, want ErrSlotNotFound", err)
	}
	if len(submitted) != 1 {
		t.Errorf("second attempt reached the API: submissions = %d", len(submitted))
	}

	if status, ok := journal.lastStatus(); !ok || status != model.BookingStatusConfirmed {
		t.Errorf("journal status = %q (%v), want confirmed", status, ok)
	}
}

func TestBookingService_InvalidStudentNeverContactsAPI(t *testing.T) {
	var calls int
	ix := loadedIndex(t)
	svc := newBookingService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}), ix, newFakeJournal())

	_, err := svc.Book(context.Background(), 7, model.StudentIdentity{ID: 0})
	if !errors.Is(err, ErrInvalidStudent) {
		t.Fatalf("Book() error = %v, want ErrInvalidStudent", err)
	}
	if calls != 0 {
		t.Errorf("API was contacted %d times, want 0", calls)
	}
	if _, ok := ix.Get(7); !ok {
		t.Error("slot disappeared from index on invalid student")
	}
}

func TestBookingService_UnknownSlot(t *testing.T) {
	svc := newBookingService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be contacted for unknown slot")
	}), loadedIndex(t), newFakeJournal())

	_, err := svc.Book(context.Background(), 99, model.StudentIdentity{ID: 42})
	if !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("Book() error = %v, want ErrSlotNotFound", err)
	}
}

func TestBookingService_RejectionKeepsSlot(t *testing.T) {
	ix := loadedIndex(t)
	journal := newFakeJournal()
	svc := newBookingService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("slot already taken"))
	}), ix, journal)

	_, err := svc.Book(context.Background(), 7, model.StudentIdentity{ID: 42})
	if !errors.Is(err, ErrBookingRejected) {
		t.Fatalf("Book() error = %v, want ErrBookingRejected", err)
	}
	// Сообщение внешнего API доходит до вызывающего дословно
	if want := "booking rejected: slot already taken"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	// Отклонённый слот остаётся доступным
	if _, ok := ix.Get(7); !ok {
		t.Error("slot removed from index on rejection")
	}
	if status, ok := journal.lastStatus(); !ok || status != model.BookingStatusRejected {
		t.Errorf("journal status = %q (%v), want rejected", status, ok)
	}
}

func TestBookingService_TransportFailureKeepsSlot(t *testing.T) {
	ix := loadedIndex(t)
	journal := newFakeJournal()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	api := client.NewAPIClient(srv.URL, time.Second, time.Minute, zap.NewNop())
	srv.Close() // API недоступен
	svc := NewBookingService(api, ix, journal, time.Second, zap.NewNop())

	_, err := svc.Book(context.Background(), 7, model.StudentIdentity{ID: 42})
	if !errors.Is(err, ErrAPIUnavailable) {
		t.Fatalf("Book() error = %v, want ErrAPIUnavailable", err)
	}
	if _, ok := ix.Get(7); !ok {
		t.Error("slot removed from index on transport failure")
	}
	if status, ok := journal.lastStatus(); !ok || status != model.BookingStatusFailed {
		t.Errorf("journal status = %q (%v), want failed", status, ok)
	}
}

func TestBookingService_JournalFailureDoesNotBlockBooking(t *testing.T) {
	ix := loadedIndex(t)
	journal := newFakeJournal()
	journal.failing = true
	svc := newBookingService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("booked"))
	}), ix, journal)

	rec, err := svc.Book(context.Background(), 7, model.StudentIdentity{ID: 42})
	if err != nil {
		t.Fatalf("Book() error = %v, want success despite journal failure", err)
	}
	if rec.Status != model.BookingStatusConfirmed {
		t.Errorf("record status = %q, want confirmed", rec.Status)
	}
}
