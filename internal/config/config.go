package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Timezone is used for payloads that do not declare one.
	Timezone *time.Location

	// Engine tuning.
	Engine     domain.Settings
	PhraseMode string

	AssessCacheSize int

	// SQLitePath enables the assessment archive when set.
	SQLitePath string

	// Rate limit of the synchronous assess endpoint, in requests per second.
	AssessRateLimit float64
	AssessRateBurst int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	tzName := sharedcfg.EnvOrDefault("TIMEZONE", "Europe/Rome")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	engine, err := loadEngineSettings()
	if err != nil {
		return nil, err
	}

	rateLimit, err := parsePositiveFloat("ASSESS_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	rateBurst, err := parsePositiveInt("ASSESS_RATE_BURST", 10)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("ASSESS_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-forecasts"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "weather-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "lagoon-weather-risk"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		Timezone:   tz,
		Engine:     engine,
		PhraseMode: strings.ToLower(sharedcfg.EnvOrDefault("PHRASE_MODE", domain.PhraseModeRandom)),

		AssessCacheSize: cacheSize,
		SQLitePath:      os.Getenv("SQLITE_PATH"),
		AssessRateLimit: rateLimit,
		AssessRateBurst: rateBurst,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.PhraseMode != domain.PhraseModeRandom && cfg.PhraseMode != domain.PhraseModeFirst {
		return nil, errors.New("PHRASE_MODE must be random or first")
	}

	return cfg, nil
}

func loadEngineSettings() (domain.Settings, error) {
	s := domain.DefaultSettings()

	var err error
	if s.DefaultHoursToday, err = parsePositiveInt("DEFAULT_HOURS_TODAY", s.DefaultHoursToday); err != nil {
		return s, err
	}
	if s.AlertFutureStartHour, err = parseHour("ALERT_FUTURE_START_HOUR", s.AlertFutureStartHour); err != nil {
		return s, err
	}
	if s.AlertFutureEndHour, err = parseHour("ALERT_FUTURE_END_HOUR", s.AlertFutureEndHour); err != nil {
		return s, err
	}
	if s.SemaphoreStepFuture, err = parsePositiveInt("SEMAPHORE_STEP_FUTURE", s.SemaphoreStepFuture); err != nil {
		return s, err
	}
	if s.SevereConfidenceFloor, err = parsePositiveFloat("SEVERE_CONFIDENCE_FLOOR", s.SevereConfidenceFloor); err != nil {
		return s, err
	}

	if s.AlertFutureStartHour > s.AlertFutureEndHour {
		return s, errors.New("ALERT_FUTURE_START_HOUR must not be after ALERT_FUTURE_END_HOUR")
	}
	if s.SevereConfidenceFloor > 1 {
		return s, errors.New("invalid SEVERE_CONFIDENCE_FLOOR")
	}
	return s, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseHour(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 23 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
