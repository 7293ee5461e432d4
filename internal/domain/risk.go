package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// RiskLevel is an ordinal semaphore level.
type RiskLevel int

const (
	LevelGreen RiskLevel = iota
	LevelYellowLight
	LevelYellowDark
	LevelRed
	// LevelBlack is reserved for future extreme overrides and never produced.
	LevelBlack
)

var levelNames = [...]string{"green", "yellow_light", "yellow_dark", "red", "black"}

func (l RiskLevel) String() string {
	if l < LevelGreen || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// MarshalText encodes the level by name.
func (l RiskLevel) MarshalText() ([]byte, error) {
	if l < LevelGreen || int(l) >= len(levelNames) {
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText decodes a level name.
func (l *RiskLevel) UnmarshalText(text []byte) error {
	for i, name := range levelNames {
		if string(text) == name {
			*l = RiskLevel(i)
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", text)
}

// Category tags a reason so consumers can group or order it without
// inspecting the text.
type Category string

const (
	CategoryWind        Category = "wind"
	CategoryRain        Category = "rain"
	CategoryStorm       Category = "storm"
	CategoryVisibility  Category = "visibility"
	CategoryPressure    Category = "pressure"
	CategoryUV          Category = "uv"
	CategoryTemperature Category = "temperature"
	CategoryHumidity    Category = "humidity"
)

// Reason explains why a level or alert was raised.
type Reason struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// HourRisk is the level of one hour on one scale.
type HourRisk struct {
	Level   RiskLevel `json:"level"`
	Score   float64   `json:"score"`
	Reasons []Reason  `json:"reasons"`
}

// HourAssessment pairs the safety and comfort levels of one series hour.
type HourAssessment struct {
	Index   int       `json:"index"`
	Time    time.Time `json:"time"`
	Safety  HourRisk  `json:"safety"`
	Comfort HourRisk  `json:"comfort"`
}

// ScoreWindow scores each index independently.
func ScoreWindow(s HourlySeries, indices []int) []HourAssessment {
	out := make([]HourAssessment, 0, len(indices))
	for _, i := range indices {
		obs := s.Observation(i)
		out = append(out, HourAssessment{
			Index:   i,
			Time:    obs.Time,
			Safety:  ScoreSafety(obs),
			Comfort: ScoreComfort(obs),
		})
	}
	return out
}

// formatInt renders v rounded to the nearest integer.
func formatInt(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

// formatDecimal renders v with at most one decimal.
func formatDecimal(v float64) string {
	r := roundTo(v, 1)
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
