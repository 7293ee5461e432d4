package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by assessment stores when nothing matches a lookup.
var ErrNotFound = errors.New("assessment not found")

// AssessRequest is the input of Engine.Assess.
type AssessRequest struct {
	// TargetDate is YYYY-MM-DD in the forecast zone; empty means today.
	TargetDate       string
	Now              time.Time
	ExcludePastHours bool
}

// AssessedWindow describes the hours scored for the semaphores. The alert and
// the pattern cover every hour between From and To.
type AssessedWindow struct {
	From      time.Time `json:"from,omitzero"`
	To        time.Time `json:"to,omitzero"`
	StepHours int       `json:"step_hours"`
	Indices   []int     `json:"indices"`
}

// Assessment is the published result for one forecast and target date.
type Assessment struct {
	ID         string           `json:"id"`
	Location   string           `json:"location"`
	Latitude   float64          `json:"latitude"`
	Longitude  float64          `json:"longitude"`
	TargetDate string           `json:"target_date"`
	Window     AssessedWindow   `json:"window"`
	Pattern    PatternResult    `json:"pattern"`
	Alert      *AlertResult     `json:"alert"`
	Hours      []HourAssessment `json:"hours"`
	AssessedAt time.Time        `json:"assessed_at"`
}

// ValidateTargetDate checks the YYYY-MM-DD format of a target date.
func ValidateTargetDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid target date %q: %w", date, err)
	}
	return nil
}

// Assess resolves one hourly window for the target date. The alert and the
// pattern read every hour of it; the semaphores sample it every
// SemaphoreStepFuture hours on future days, starting from the same first hour.
func (e *Engine) Assess(f Forecast, req AssessRequest) Assessment {
	s := f.Series
	loc := seriesLocation(s, req.Now)
	now := req.Now.In(loc)
	target := req.TargetDate
	if target == "" {
		target = now.Format(DateLayout)
	}
	today := target == now.Format(DateLayout)

	var indices []int
	if w, err := e.DefaultWindow(target, today, loc); err == nil {
		w.StepHours = 1
		indices = e.windows.Resolve(s.Time, now, w)
	}

	step := 1
	if !today && e.settings.SemaphoreStepFuture > 1 {
		step = e.settings.SemaphoreStepFuture
	}
	sampled := sampleEvery(indices, step)

	var alert *AlertResult
	if len(indices) > 0 {
		var daily *int
		if !today {
			if c, ok := f.DailyCode(target); ok {
				daily = &c
			}
		}
		alert = e.Build(BuildRequest{
			Series:           s,
			TargetDate:       target,
			Now:              now,
			ExcludePastHours: req.ExcludePastHours,
			DailyCode:        daily,
			ForcedWindow:     indices,
		})
	}

	window := AssessedWindow{StepHours: step, Indices: sampled}
	if len(indices) > 0 {
		window.From = s.Observation(indices[0]).Time
		window.To = s.Observation(indices[len(indices)-1]).Time
	}
	if window.Indices == nil {
		window.Indices = []int{}
	}

	return Assessment{
		ID:         generateID(f.Location, f.Latitude, f.Longitude, target, now),
		Location:   f.Location,
		Latitude:   f.Latitude,
		Longitude:  f.Longitude,
		TargetDate: target,
		Window:     window,
		Pattern:    e.patterns.Analyze(s.Codes(indices), subset(s.Precipitation, indices), subset(s.PrecipitationProbability, indices)),
		Alert:      alert,
		Hours:      ScoreWindow(s, sampled),
		AssessedAt: now,
	}
}

// AlertTypeOf returns the alert type of a, or "none" when there is no alert.
func (a Assessment) AlertTypeOf() string {
	if a.Alert == nil {
		return "none"
	}
	return string(a.Alert.Type)
}

// SerializeAssessment marshals an Assessment into an OutputEvent keyed by ID.
func SerializeAssessment(a Assessment) (OutputEvent, error) {
	value, err := json.Marshal(a)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize assessment: %w", err)
	}

	return OutputEvent{
		Key:   []byte(a.ID),
		Value: value,
		Headers: map[string]string{
			"alert_type":  a.AlertTypeOf(),
			"target_date": a.TargetDate,
			"assessed_at": a.AssessedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
