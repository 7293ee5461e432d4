package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// closingHour is the last local hour at which today's alert is still shown.
const closingHour = 22

// Settings tunes the engine.
type Settings struct {
	DefaultHoursToday     int
	AlertFutureStartHour  int
	AlertFutureEndHour    int
	SemaphoreStepFuture   int
	SevereConfidenceFloor float64
}

// DefaultSettings returns the production tuning.
func DefaultSettings() Settings {
	return Settings{
		DefaultHoursToday:     DefaultHoursToday,
		AlertFutureStartHour:  7,
		AlertFutureEndHour:    22,
		SemaphoreStepFuture:   3,
		SevereConfidenceFloor: DefaultSevereConfidenceFloor,
	}
}

// Engine is the alert orchestrator. It holds no per-request state and is
// safe for concurrent use when its Chooser is.
type Engine struct {
	settings Settings
	chooser  Chooser
	windows  WindowSelector
	patterns PatternAnalyzer
	narrator Narrator
}

// NewEngine creates an Engine. A nil chooser selects the first phrase of each pool.
func NewEngine(s Settings, c Chooser) *Engine {
	if c == nil {
		c = FirstChooser{}
	}
	patterns := PatternAnalyzer{SevereConfidenceFloor: s.SevereConfidenceFloor}
	return &Engine{
		settings: s,
		chooser:  c,
		windows:  WindowSelector{DefaultHoursToday: s.DefaultHoursToday},
		patterns: patterns,
		narrator: Narrator{Chooser: c, Patterns: patterns},
	}
}

// BuildRequest is the input of Engine.Build.
type BuildRequest struct {
	Series HourlySeries
	// TargetDate is YYYY-MM-DD in the series zone; empty means today.
	TargetDate       string
	Now              time.Time
	ExcludePastHours bool
	DailyCode        *int
	// ForcedWindow, when not empty, is used as the alert window verbatim.
	ForcedWindow []int
	// Window is used when ForcedWindow is empty. Nil selects the default window.
	Window *TimeWindow
}

type dayBucket struct {
	part     DayPart
	from, to int
}

var (
	dayBuckets = []dayBucket{
		{PartMorning, 7, 12},
		{PartAfternoon, 13, 18},
		{PartEvening, 19, 22},
	}
	// The night wraps around the target date: early hours first, then 23:00.
	nightBuckets = []dayBucket{
		{PartNight, 0, 6},
		{PartNight, 23, 23},
	}
)

// Build returns the alert for the target date with its narrative, or nil when
// there is nothing to show: the day is closed or the window is empty.
func (e *Engine) Build(req BuildRequest) *AlertResult {
	loc := seriesLocation(req.Series, req.Now)
	now := req.Now.In(loc)
	target := req.TargetDate
	if target == "" {
		target = now.Format(DateLayout)
	}
	today := target == now.Format(DateLayout)
	if today && now.Hour() > closingHour {
		return nil
	}

	window := e.alertWindow(req, target, now, today)
	if len(window) == 0 {
		return nil
	}

	s := req.Series
	first := s.Observation(window[0])
	hour := first.Time.In(loc).Hour()
	night := hour >= 21 || hour < 7

	alert := ClassifyAlert(AlertInput{
		WindSpeed:                first.WindSpeed,
		WindGusts:                first.WindGusts,
		WindDirection:            first.WindDirection,
		Humidity:                 first.Humidity,
		UVIndex:                  first.UVIndex,
		Pressure:                 first.Pressure,
		Precipitation:            subset(s.Precipitation, window),
		PrecipitationProbability: subset(s.PrecipitationProbability, window),
		Visibility:               subset(s.Visibility, window),
		Night:                    night,
		Today:                    today,
		ValidFrom:                first.Time.In(loc),
		ValidTo:                  s.Observation(window[len(window)-1]).Time.In(loc),
	}, e.chooser)
	alert = ApplyCriticalOverride(alert, s.Codes(window), req.DailyCode)
	alert.Narrative = e.narrative(s, target, loc, today && req.ExcludePastHours, now.Hour())
	return &alert
}

// DefaultWindow is the window used when the caller does not supply one: the
// next DefaultHoursToday hours for today, the configured daytime span
// otherwise.
func (e *Engine) DefaultWindow(targetDate string, today bool, loc *time.Location) (TimeWindow, error) {
	if today {
		return TimeWindow{HoursAhead: e.settings.DefaultHoursToday}, nil
	}
	return DayWindow(targetDate, e.settings.AlertFutureStartHour, e.settings.AlertFutureEndHour, loc)
}

func (e *Engine) alertWindow(req BuildRequest, target string, now time.Time, today bool) []int {
	if len(req.ForcedWindow) > 0 {
		return req.ForcedWindow
	}
	if req.Window != nil {
		return e.windows.Resolve(req.Series.Time, now, *req.Window)
	}
	w, err := e.DefaultWindow(target, today, now.Location())
	if err != nil {
		return nil
	}
	return e.windows.Resolve(req.Series.Time, now, w)
}

func (e *Engine) narrative(s HourlySeries, target string, loc *time.Location, skipPast bool, nowHour int) string {
	var paragraphs []string
	for _, b := range dayBuckets {
		if skipPast && !bucketOpen(b.part, nowHour) {
			continue
		}
		if p, ok := e.bucketParagraph(s, target, loc, b); ok {
			paragraphs = append(paragraphs, p)
		}
	}

	var night string
	for _, b := range nightBuckets {
		p, ok := e.bucketParagraph(s, target, loc, b)
		if !ok {
			continue
		}
		if night == "" {
			night = p
			continue
		}
		night = mergeNight(night, p)
	}
	if night != "" {
		paragraphs = append(paragraphs, night)
	}
	return strings.Join(paragraphs, "\n\n")
}

// bucketOpen reports whether a bucket of today is still worth describing.
func bucketOpen(part DayPart, hour int) bool {
	switch part {
	case PartMorning:
		return hour < 12
	case PartAfternoon:
		return hour < 18
	case PartEvening:
		return hour < 22
	default:
		return true
	}
}

func (e *Engine) bucketParagraph(s HourlySeries, target string, loc *time.Location, b dayBucket) (string, bool) {
	var idx []int
	for i, ts := range s.Time {
		local := ts.In(loc)
		if local.Format(DateLayout) != target {
			continue
		}
		if h := local.Hour(); h >= b.from && h <= b.to {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return "", false
	}
	return e.narrator.Paragraph(b.part, DayPartSlice{
		Codes:      s.Codes(idx),
		Temps:      subset(s.Temperature, idx),
		Gusts:      subset(s.WindGusts, idx),
		Winds:      subset(s.WindSpeed, idx),
		UVs:        subset(s.UVIndex, idx),
		Pressures:  subset(s.Pressure, idx),
		Precip:     subset(s.Precipitation, idx),
		PrecipProb: subset(s.PrecipitationProbability, idx),
	}), true
}

var sentenceSep = regexp.MustCompile(`\.\s*`)

// mergeNight appends a later night paragraph to an earlier one, dropping the
// repeated intro and any sentence already present.
func mergeNight(first, next string) string {
	return dedupeSentences(first + " " + capitalizeFirst(stripNightIntro(next)))
}

func stripNightIntro(s string) string {
	s = strings.TrimSpace(s)
	for _, intro := range partIntros[PartNight] {
		if rest, ok := strings.CutPrefix(s, intro); ok {
			return strings.TrimLeft(rest, " ,")
		}
	}
	return s
}

// dedupeSentences keeps the first occurrence of each sentence. Sentences that
// differ only by a night intro or case are duplicates.
func dedupeSentences(text string) string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range sentenceSep.Split(text, -1) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(stripNightIntro(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, ". ") + "."
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.English).String(string(r)) + s[size:]
}

func seriesLocation(s HourlySeries, now time.Time) *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return now.Location()
}
