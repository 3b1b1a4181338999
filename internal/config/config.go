package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LessonsAPIURL   string
	DBDSN           string
	Environment     string
	ListenAddr      string
	TimeZone        string
	CacheTTL        time.Duration
	BookingTimeout  time.Duration
	RefreshInterval time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		LessonsAPIURL:   os.Getenv("LESSONS_API_URL"),
		DBDSN:           os.Getenv("DB_DSN"),
		Environment:     os.Getenv("ENV"),
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
		TimeZone:        os.Getenv("TZ_OVERRIDE"),
		CacheTTL:        durationEnv("CACHE_TTL_SECONDS", 30*time.Second),
		BookingTimeout:  durationEnv("BOOKING_TIMEOUT_SECONDS", 10*time.Second),
		RefreshInterval: durationEnv("REFRESH_INTERVAL_SECONDS", 5*time.Minute),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	// Обязательные поля
	if cfg.LessonsAPIURL == "" {
		return nil, fmt.Errorf("LESSONS_API_URL is required but not set")
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

// Location возвращает зону для ключей дат расписания.
// По умолчанию локальное настенное время процесса: именно так внешний
// фид группирует уроки по дням.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, raw, def)
		return def
	}
	return time.Duration(seconds) * time.Second
}
