package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkurbatov/lesson_booker/internal/model"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Пути внешнего API школы
const (
	pathAvailableLessons = "/api/AvailableLessons/all"
	pathBookLesson       = "/api/Student/bookLesson"
	pathBookedLessons    = "/api/Student/%d/bookedLessons"
	pathPassedLessons    = "/api/Student/%d/passedLessons"
)

// Ключи кэша ответов list-эндпоинтов
const (
	cacheKeyAvailable = "available"
	cacheKeyBooked    = "booked:%d"
	cacheKeyPassed    = "passed:%d"
)

const listRetryAttempts = 2

// APIClient клиент внешнего API уроков.
// GET-эндпоинты идемпотентны: их можно повторять и кэшировать на короткий TTL.
// Отправка бронирования не повторяется и не кэшируется никогда: повтор
// неоднозначно завершившегося POST может привести к двойной записи.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewAPIClient создаёт клиента для заданного базового URL
func NewAPIClient(baseURL string, timeout, cacheTTL time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.New(cacheTTL, 2*cacheTTL),
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// AvailableLessons получает все свободные уроки
func (c *APIClient) AvailableLessons(ctx context.Context) ([]model.RawLessonRecord, error) {
	return c.listLessons(ctx, pathAvailableLessons, cacheKeyAvailable)
}

// BookedLessons получает забронированные уроки студента
func (c *APIClient) BookedLessons(ctx context.Context, studentID int64) ([]model.RawLessonRecord, error) {
	return c.listLessons(ctx, fmt.Sprintf(pathBookedLessons, studentID), fmt.Sprintf(cacheKeyBooked, studentID))
}

// PassedLessons получает прошедшие уроки студента
func (c *APIClient) PassedLessons(ctx context.Context, studentID int64) ([]model.RawLessonRecord, error) {
	return c.listLessons(ctx, fmt.Sprintf(pathPassedLessons, studentID), fmt.Sprintf(cacheKeyPassed, studentID))
}

// SubmitBooking отправляет бронирование внешнему API.
// Ключ идемпотентности уходит в заголовке, чтобы сервер мог отсечь дубль.
// Ошибка возвращается только при сетевом сбое; любой HTTP-ответ
// превращается в BookingOutcome с текстом сервера как есть.
func (c *APIClient) SubmitBooking(ctx context.Context, req model.BookingRequest, key uuid.UUID) (model.BookingOutcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.BookingOutcome{}, fmt.Errorf("marshal booking request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathBookLesson, bytes.NewReader(body))
	if err != nil {
		return model.BookingOutcome{}, fmt.Errorf("build booking request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Idempotency-Key", key.String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.BookingOutcome{}, fmt.Errorf("submit booking: %w", err)
	}
	defer resp.Body.Close()

	// API отвечает простым текстом; он же показывается пользователю
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.BookingOutcome{}, fmt.Errorf("read booking response: %w", err)
	}

	return model.BookingOutcome{
		Success: resp.StatusCode >= 200 && resp.StatusCode < 300,
		Message: strings.TrimSpace(string(text)),
	}, nil
}

// InvalidateAvailable сбрасывает кэш свободных уроков.
// Вызывается после успешного бронирования, чтобы следующая полная
// загрузка не вернула только что занятый слот из кэша.
func (c *APIClient) InvalidateAvailable() {
	c.cache.Delete(cacheKeyAvailable)
}

func (c *APIClient) listLessons(ctx context.Context, path, cacheKey string) ([]model.RawLessonRecord, error) {
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]model.RawLessonRecord), nil
	}

	var records []model.RawLessonRecord
	backoff := retry.WithMaxRetries(listRetryAttempts, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		records, err = c.getRecords(ctx, path)
		if err != nil {
			c.logger.Warn("Lessons API request failed, will retry",
				zap.String("path", path),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, records, c.cacheTTL)
	return records, nil
}

func (c *APIClient) getRecords(ctx context.Context, path string) ([]model.RawLessonRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}

	var records []model.RawLessonRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}
