package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
)

// Message headers understood by the transformer.
const (
	// TargetDateHeader selects the assessed day (YYYY-MM-DD); empty means today.
	TargetDateHeader = "target_date"
	// ExcludePastHeader set to "false" keeps today's past buckets in the narrative.
	ExcludePastHeader = "exclude_past"
)

// AssessTransformer implements Transformer by parsing the Open-Meteo payload
// and running the engine on it.
type AssessTransformer struct {
	engine   *domain.Engine
	fallback *time.Location
	logger   *slog.Logger
}

// NewTransformer creates an AssessTransformer around an engine. fallback is
// the zone of payloads that do not declare one; nil means UTC.
func NewTransformer(engine *domain.Engine, fallback *time.Location, logger *slog.Logger) *AssessTransformer {
	return &AssessTransformer{
		engine:   engine,
		fallback: fallback,
		logger:   logger,
	}
}

func (t *AssessTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Assessment, error) {
	forecast, err := domain.DecodeForecastIn(raw.Value, t.fallback)
	if err != nil {
		return domain.Assessment{}, err
	}

	target, err := targetDateOf(raw)
	if err != nil {
		return domain.Assessment{}, err
	}

	a := t.engine.Assess(forecast, domain.AssessRequest{
		TargetDate:       target,
		Now:              domain.Now(),
		ExcludePastHours: raw.Headers[ExcludePastHeader] != "false",
	})

	t.logger.Debug("forecast assessed",
		"location", a.Location,
		"target_date", a.TargetDate,
		"alert_type", a.AlertTypeOf(),
		"hours", len(a.Hours),
	)
	return a, nil
}

// targetDateOf returns the validated target_date header, or "" for today.
func targetDateOf(raw domain.RawEvent) (string, error) {
	target := strings.TrimSpace(raw.Headers[TargetDateHeader])
	if target == "" {
		return "", nil
	}
	if err := domain.ValidateTargetDate(target); err != nil {
		return "", fmt.Errorf("%s header: %w", TargetDateHeader, err)
	}
	return target, nil
}
