package domain

import (
	"slices"
	"time"
)

// AlertType is the verdict of an alert.
type AlertType string

const (
	AlertOK      AlertType = "ok"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
)

// Icon tokens understood by the dashboard.
const (
	IconDanger     = "bi-exclamation-triangle-fill"
	IconWarning    = "bi-exclamation-triangle"
	IconNightRisk  = "bi-cloud-moon"
	IconClearDay   = "bi-sun-fill"
	IconClearNight = "bi-moon-stars-fill"
)

// alertStatHours is how many leading window hours feed the alert statistics.
const alertStatHours = 6

// Fixed lines appended by the critical-code override.
const (
	StormOverrideLine     = "Possible intense thunderstorms or hail expected"
	HeavyRainOverrideLine = "Heavy rain expected"
)

var (
	stormCodes     = []int{95, 96, 99}
	heavyRainCodes = []int{65}
)

// AlertResult is a synthesized alert. Lines[0] is the headline and Lines[1]
// the validity interval when known; Factors are the tagged reasons shown.
type AlertResult struct {
	Type      AlertType `json:"type"`
	Icon      string    `json:"icon"`
	Lines     []string  `json:"lines"`
	Factors   []Reason  `json:"factors"`
	ValidFrom time.Time `json:"valid_from,omitzero"`
	ValidTo   time.Time `json:"valid_to,omitzero"`
	Narrative string    `json:"narrative"`
}

// AlertInput carries the representative hour plus the window series the
// classifier aggregates.
type AlertInput struct {
	WindSpeed     Reading
	WindGusts     Reading
	WindDirection Reading
	Humidity      Reading
	UVIndex       Reading
	Pressure      Reading

	Precipitation            []Reading
	PrecipitationProbability []Reading
	Visibility               []Reading

	Night bool
	// Today selects the "today" headline pools over the future-day ones.
	Today     bool
	ValidFrom time.Time
	ValidTo   time.Time
}

var (
	dangerHeadlinesToday = []string{
		"Weather alert in progress",
		"Critical conditions in the next hours",
		"Adverse weather conditions",
	}
	dangerHeadlinesFuture = []string{
		"Weather alert for the day",
		"Critical conditions expected",
		"A day of adverse weather",
	}
	warningHeadlinesToday = []string{
		"Conditions to keep an eye on today",
		"Changeable weather",
		"Possible weather disturbances",
	}
	warningHeadlinesFuture = []string{
		"A day worth following",
		"Changeable weather expected",
		"Isolated events possible",
	}
	okHeadlinesNight = []string{
		"Calm and clear night",
		"Stable conditions overnight",
		"Favorable weather through the night",
	}
	okHeadlinesToday = []string{
		"Great conditions today",
		"A day of favorable weather",
		"Ideal weather for outdoor activities",
	}
	okHeadlinesFuture = []string{
		"Favorable forecast",
		"Settled weather ahead",
		"Ideal weather conditions",
	}
)

// ClassifyAlert decides the danger/warning/ok verdict. The narrative is left
// empty.
func ClassifyAlert(in AlertInput, c Chooser) AlertResult {
	risks, warnings := alertFactors(in)

	var interval []string
	if !in.ValidFrom.IsZero() && !in.ValidTo.IsZero() {
		interval = []string{in.ValidFrom.Format("15:04") + " - " + in.ValidTo.Format("15:04")}
	}

	res := AlertResult{ValidFrom: in.ValidFrom, ValidTo: in.ValidTo}
	switch {
	case len(risks) > 0:
		pool := dangerHeadlinesFuture
		if in.Today {
			pool = dangerHeadlinesToday
		}
		res.Type = AlertDanger
		res.Icon = IconDanger
		if in.Night {
			res.Icon = IconNightRisk
		}
		res.Factors = append(risks, warnings[:min(2, len(warnings))]...)

		res.Lines = append([]string{c.Choose(pool)}, interval...)

	case len(warnings) > 0:
		pool := warningHeadlinesFuture
		if in.Today {
			pool = warningHeadlinesToday
		}
		res.Type = AlertWarning
		res.Icon = IconWarning
		if in.Night {
			res.Icon = IconNightRisk
		}
		ordered := slices.Clone(warnings)
		slices.SortStableFunc(ordered, func(a, b Reason) int {
			return warningRank(a.Category) - warningRank(b.Category)
		})
		res.Factors = ordered[:min(3, len(ordered))]
		res.Lines = append([]string{c.Choose(pool)}, interval...)

	default:
		pool := okHeadlinesFuture
		switch {
		case in.Night:
			pool = okHeadlinesNight
		case in.Today:
			pool = okHeadlinesToday
		}
		res.Type = AlertOK
		res.Icon = IconClearDay
		if in.Night {
			res.Icon = IconClearNight
		}
		res.Factors = []Reason{}
		res.Lines = append([]string{c.Choose(pool)}, interval...)
	}

	for _, f := range res.Factors {
		res.Lines = append(res.Lines, f.Text)
	}
	return res
}

func warningRank(c Category) int {
	switch c {
	case CategoryWind:
		return 0
	case CategoryRain:
		return 1
	default:
		return 2
	}
}

// alertFactors splits the signals into danger-grade risks and lesser warnings.
func alertFactors(in AlertInput) (risks, warnings []Reason) {
	wind := in.WindSpeed.Or(0)
	gust := in.WindGusts.Or(0)
	from := ""
	if in.WindDirection.Valid {
		from = " from " + WindDirection(in.WindDirection.Value)
	}

	switch {
	case gust >= 60:
		risks = append(risks, Reason{CategoryWind, "Violent gusts up to " + formatInt(gust) + " km/h" + from})
	case gust >= 45:
		risks = append(risks, Reason{CategoryWind, "Strong gusts up to " + formatInt(gust) + " km/h" + from})
	case wind >= 35 && gust >= 35:
		risks = append(risks, Reason{CategoryWind, "Strong wind: " + formatInt(wind) + " km/h with gusts of " + formatInt(gust) + " km/h"})
	case wind >= 35 || gust >= 35:
		warnings = append(warnings, Reason{CategoryWind, "Strong wind: " + windRange(in.WindSpeed, in.WindGusts) + " km/h" + from})
	case wind >= 25 || gust >= 30:
		warnings = append(warnings, Reason{CategoryWind, "Sustained wind" + from + ": " + windRange(in.WindSpeed, in.WindGusts) + " km/h"})
	}

	precip := firstN(in.Precipitation, alertStatHours)
	_, maxPrecip, avgPrecip, _ := stats(precip)
	avgPrecip = roundTo(avgPrecip, 1)
	_, maxProb, _, _ := stats(firstN(in.PrecipitationProbability, alertStatHours))

	switch {
	case maxPrecip >= 8:
		risks = append(risks, Reason{CategoryRain, "Very heavy rain: " + formatDecimal(maxPrecip) + " mm/h expected"})
	case maxPrecip >= 5:
		risks = append(risks, Reason{CategoryRain, "Heavy rain: " + formatDecimal(maxPrecip) + " mm/h expected"})
	case maxPrecip >= 3 && maxProb >= 70:
		warnings = append(warnings, Reason{CategoryRain, "Moderate rain very likely: " + formatDecimal(maxPrecip) + " mm/h"})
	case maxPrecip >= 2 && maxProb >= 60:
		warnings = append(warnings, Reason{CategoryRain, "Possible showers: up to " + formatDecimal(maxPrecip) + " mm"})
	case maxProb >= 80 && avgPrecip >= 1:
		warnings = append(warnings, Reason{CategoryRain, "Widespread rain very likely"})
	}

	if minVis, _, _, ok := stats(firstN(in.Visibility, alertStatHours)); ok {
		km := formatDecimal(minVis / 1000)
		switch {
		case minVis < 1500:
			risks = append(risks, Reason{CategoryVisibility, "Severely reduced visibility: below " + km + " km"})
		case minVis < 5000:
			warnings = append(warnings, Reason{CategoryVisibility, "Reduced visibility: about " + km + " km"})
		}
	}

	if p := in.Pressure; p.Valid {
		switch {
		case p.Value < PressureCritical && (len(risks) > 0 || len(warnings) > 0):
			warnings = append(warnings, Reason{CategoryPressure, "Very low pressure: " + formatInt(p.Value) + " hPa"})
		case p.Value < PressureLow && maxPrecip >= 2:
			warnings = append(warnings, Reason{CategoryPressure, "Falling pressure: " + formatInt(p.Value) + " hPa"})
		}
	}

	if uv := in.UVIndex; uv.Valid && !in.Night {
		switch {
		case uv.Value >= 8:
			warnings = append(warnings, Reason{CategoryUV, "Very high UV index: " + formatDecimal(uv.Value)})
		case uv.Value >= 6.5:
			warnings = append(warnings, Reason{CategoryUV, "High UV index: sun protection recommended"})
		}
	}

	return risks, warnings
}

func windRange(wind, gust Reading) string {
	switch {
	case wind.Valid && gust.Valid:
		return formatInt(wind.Value) + "-" + formatInt(gust.Value)
	case gust.Valid:
		return formatInt(gust.Value)
	default:
		return formatInt(wind.Value)
	}
}

func firstN(s []Reading, n int) []Reading {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ApplyCriticalOverride escalates a non-danger alert to warning when storm or
// heavy-rain codes appear anywhere in the window or in the daily summary.
func ApplyCriticalOverride(alert AlertResult, windowCodes []int, dailyCode *int) AlertResult {
	codes := windowCodes
	if dailyCode != nil {
		codes = append(slices.Clone(windowCodes), *dailyCode)
	}

	storm := slices.ContainsFunc(codes, func(c int) bool { return slices.Contains(stormCodes, c) })
	heavy := slices.ContainsFunc(codes, func(c int) bool { return slices.Contains(heavyRainCodes, c) })
	if (!storm && !heavy) || alert.Type == AlertDanger {
		return alert
	}

	alert.Type = AlertWarning
	alert.Icon = IconWarning
	alert.Lines = slices.Clone(alert.Lines)
	alert.Factors = slices.Clone(alert.Factors)
	if storm {
		alert.Lines = append(alert.Lines, StormOverrideLine)
		alert.Factors = append(alert.Factors, Reason{CategoryStorm, StormOverrideLine})
	}
	if heavy {
		alert.Lines = append(alert.Lines, HeavyRainOverrideLine)
		alert.Factors = append(alert.Factors, Reason{CategoryRain, HeavyRainOverrideLine})
	}
	alert.Lines = dedupe(alert.Lines)
	alert.Factors = dedupeReasons(alert.Factors)
	return alert
}

func dedupe(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := lines[:0]
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func dedupeReasons(reasons []Reason) []Reason {
	seen := make(map[Reason]bool, len(reasons))
	out := reasons[:0]
	for _, r := range reasons {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
