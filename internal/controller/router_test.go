package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/client"
	"github.com/dkurbatov/lesson_booker/internal/model"
	"github.com/dkurbatov/lesson_booker/internal/schedule"
	"github.com/dkurbatov/lesson_booker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type nopJournal struct{}

func (nopJournal) Create(ctx context.Context, rec *model.BookingRecord) error {
	return nil
}

func (nopJournal) UpdateStatus(ctx context.Context, key uuid.UUID, status model.BookingStatus, message string) error {
	return nil
}

// upstream поднимает поддельный внешний API уроков
func upstream(t *testing.T, bookStatus int, bookBody string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/AvailableLessons/all":
			json.NewEncoder(w).Encode([]map[string]any{
				{"LessonId": 7, "LessonDate": "2024-05-01", "LessonTime": "10:00", "DurationMinutes": 45, "Kind": "Piano"},
				{"LessonId": 8, "LessonDate": "2024-05-01", "LessonTime": "11:00", "Kind": "Violin"},
			})
		case r.URL.Path == "/api/Student/bookLesson":
			w.WriteHeader(bookStatus)
			w.Write([]byte(bookBody))
		case strings.HasSuffix(r.URL.Path, "/bookedLessons"), strings.HasSuffix(r.URL.Path, "/passedLessons"):
			json.NewEncoder(w).Encode([]map[string]any{
				{"LessonDate": "2024-04-01", "LessonTime": "10:00", "Kind": "Piano", "TeacherFirstName": "A", "TeacherLastName": "B"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, bookStatus int, bookBody string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := upstream(t, bookStatus, bookBody)
	api := client.NewAPIClient(srv.URL, 2*time.Second, time.Nanosecond, zap.NewNop())
	ix := schedule.NewIndex(time.UTC)
	logger := zap.NewNop()

	scheduleService := service.NewScheduleService(api, ix, logger)
	bookingService := service.NewBookingService(api, ix, nopJournal{}, 2*time.Second, logger)
	historyService := service.NewHistoryService(api, time.UTC, logger)

	router := NewRouter(scheduleService, bookingService, historyService, "test", logger)

	// Начальная загрузка расписания
	refresh := httptest.NewRecorder()
	router.ServeHTTP(refresh, httptest.NewRequest(http.MethodPost, "/api/v1/schedule/refresh", nil))
	if refresh.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200", refresh.Code)
	}

	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_ScheduleQueries(t *testing.T) {
	router := newTestRouter(t, http.StatusOK, "booked")

	w := doJSON(router, http.MethodGet, "/api/v1/schedule?date=2024-05-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("schedule status = %d, want 200", w.Code)
	}
	var resp struct {
		Slots []model.LessonSlot `json:"slots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Slots) != 2 {
		t.Errorf("slots = %d, want 2", len(resp.Slots))
	}

	w = doJSON(router, http.MethodGet, "/api/v1/schedule?date=2024-05-01&instrument=Violin", "")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Slots) != 1 || resp.Slots[0].Instrument != "Violin" {
		t.Errorf("filtered slots = %+v, want single Violin", resp.Slots)
	}

	if w := doJSON(router, http.MethodGet, "/api/v1/schedule", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", w.Code)
	}
	if w := doJSON(router, http.MethodGet, "/api/v1/schedule?date=bad", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/v1/schedule/instruments", "")
	if w.Code != http.StatusOK {
		t.Errorf("instruments status = %d, want 200", w.Code)
	}
}

func TestRouter_BookingFlow(t *testing.T) {
	router := newTestRouter(t, http.StatusOK, "booked")

	body := `{"slot_id":7,"student_id":42,"first_name":"Lena","last_name":"Katz"}`
	if w := doJSON(router, http.MethodPost, "/api/v1/bookings", body); w.Code != http.StatusOK {
		t.Fatalf("booking status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// Повторное бронирование того же слота: локально он уже удалён
	if w := doJSON(router, http.MethodPost, "/api/v1/bookings", body); w.Code != http.StatusNotFound {
		t.Errorf("double booking status = %d, want 404", w.Code)
	}

	invalid := `{"slot_id":8,"student_id":0}`
	if w := doJSON(router, http.MethodPost, "/api/v1/bookings", invalid); w.Code != http.StatusBadRequest {
		t.Errorf("invalid student status = %d, want 400", w.Code)
	}
}

func TestRouter_BookingRejectionPassesMessageThrough(t *testing.T) {
	router := newTestRouter(t, http.StatusConflict, "slot already taken")

	body := `{"slot_id":7,"student_id":42}`
	w := doJSON(router, http.MethodPost, "/api/v1/bookings", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("rejection status = %d, want 409", w.Code)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "slot already taken" {
		t.Errorf("message = %q, want upstream text verbatim", resp.Message)
	}
}

func TestRouter_History(t *testing.T) {
	router := newTestRouter(t, http.StatusOK, "booked")

	w := doJSON(router, http.MethodGet, "/api/v1/students/42/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", w.Code)
	}
	var resp struct {
		Lessons []model.HistoryEntry `json:"lessons"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Lessons) != 1 {
		t.Errorf("lessons = %d, want 1 (deduplicated)", len(resp.Lessons))
	}

	if w := doJSON(router, http.MethodGet, "/api/v1/students/abc/history", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad student id status = %d, want 400", w.Code)
	}
}
