package domain

import "time"

const (
	// DefaultHoursToday is the relative window length used for "today" when
	// no explicit length is configured.
	DefaultHoursToday = 12
	futureDayHours    = 24
)

// TimeWindow describes the hours of interest. It is absolute when both Start
// and End are set, otherwise relative to "now" for HoursAhead hours.
type TimeWindow struct {
	HoursAhead int
	Start      time.Time
	End        time.Time
	StepHours  int
	// FutureDay selects the full-day default when HoursAhead is not positive.
	FutureDay bool
}

// IsAbsolute reports whether the window has explicit bounds.
func (w TimeWindow) IsAbsolute() bool {
	return !w.Start.IsZero() && !w.End.IsZero()
}

// DayWindow returns the absolute window from startHour:00 to endHour:00 of
// date (YYYY-MM-DD) in loc, both ends inclusive.
func DayWindow(date string, startHour, endHour int, loc *time.Location) (TimeWindow, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return TimeWindow{}, err
	}
	return TimeWindow{
		Start:     time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc),
		End:       time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, loc),
		FutureDay: true,
	}, nil
}

// WindowSelector resolves a TimeWindow to series indices.
type WindowSelector struct {
	// DefaultHoursToday is the relative length used when HoursAhead is not
	// positive and the window is not a future day.
	DefaultHoursToday int
}

// Resolve returns the ascending indices of timestamps that fall inside the
// window, sampled every StepHours from the first match. It returns an empty
// slice when nothing matches.
func (s WindowSelector) Resolve(timestamps []time.Time, now time.Time, w TimeWindow) []int {
	start, end := s.bounds(now, w)

	indices := make([]int, 0, len(timestamps))
	for i, ts := range timestamps {
		if ts.Before(start) || ts.After(end) {
			continue
		}
		indices = append(indices, i)
	}

	return sampleEvery(indices, w.StepHours)
}

// sampleEvery keeps the indices whose offset from the first one is a multiple
// of step. The input slice is not modified.
func sampleEvery(indices []int, step int) []int {
	if step <= 1 || len(indices) <= 1 {
		return indices
	}
	first := indices[0]
	sampled := make([]int, 0, len(indices)/step+1)
	for _, i := range indices {
		if (i-first)%step == 0 {
			sampled = append(sampled, i)
		}
	}
	return sampled
}

func (s WindowSelector) bounds(now time.Time, w TimeWindow) (time.Time, time.Time) {
	if w.IsAbsolute() {
		loc := now.Location()
		return w.Start.In(loc), w.End.In(loc)
	}

	hours := w.HoursAhead
	if hours <= 0 {
		switch {
		case w.FutureDay:
			hours = futureDayHours
		case s.DefaultHoursToday > 0:
			hours = s.DefaultHoursToday
		default:
			hours = DefaultHoursToday
		}
	}
	return now, now.Add(time.Duration(hours) * time.Hour)
}
