package domain

import (
	"fmt"
	"time"
)

// CodeUnknown marks an hour without a weather code.
const CodeUnknown = -1

// HourlySeries holds parallel hourly forecast values. Every slice shares the
// length and index alignment of Time.
type HourlySeries struct {
	Location *time.Location

	Time                     []time.Time
	Code                     []int
	Temperature              []Reading
	ApparentTemperature      []Reading
	WindSpeed                []Reading // km/h
	WindGusts                []Reading // km/h
	WindDirection            []Reading // degrees
	Precipitation            []Reading // mm/h
	PrecipitationProbability []Reading // %
	Visibility               []Reading // m
	Humidity                 []Reading // %
	DewPoint                 []Reading // °C
	UVIndex                  []Reading
	Pressure                 []Reading // hPa
}

// Observation is one hour of an HourlySeries.
type Observation struct {
	Time                     time.Time
	Code                     int
	Temperature              Reading
	ApparentTemperature      Reading
	WindSpeed                Reading
	WindGusts                Reading
	WindDirection            Reading
	Precipitation            Reading
	PrecipitationProbability Reading
	Visibility               Reading
	Humidity                 Reading
	DewPoint                 Reading
	UVIndex                  Reading
	Pressure                 Reading
}

// Len returns the number of hours in the series.
func (s HourlySeries) Len() int {
	return len(s.Time)
}

// CodeAt returns the weather code at i, or CodeUnknown when out of range.
func (s HourlySeries) CodeAt(i int) int {
	if i < 0 || i >= len(s.Code) {
		return CodeUnknown
	}
	return s.Code[i]
}

// Codes returns the weather codes at the given indices.
func (s HourlySeries) Codes(indices []int) []int {
	out := make([]int, len(indices))
	for k, i := range indices {
		out[k] = s.CodeAt(i)
	}
	return out
}

// Observation returns hour i. Out-of-range fields are absent.
func (s HourlySeries) Observation(i int) Observation {
	var t time.Time
	if i >= 0 && i < len(s.Time) {
		t = s.Time[i]
	}
	return Observation{
		Time:                     t,
		Code:                     s.CodeAt(i),
		Temperature:              readingAt(s.Temperature, i),
		ApparentTemperature:      readingAt(s.ApparentTemperature, i),
		WindSpeed:                readingAt(s.WindSpeed, i),
		WindGusts:                readingAt(s.WindGusts, i),
		WindDirection:            readingAt(s.WindDirection, i),
		Precipitation:            readingAt(s.Precipitation, i),
		PrecipitationProbability: readingAt(s.PrecipitationProbability, i),
		Visibility:               readingAt(s.Visibility, i),
		Humidity:                 readingAt(s.Humidity, i),
		DewPoint:                 readingAt(s.DewPoint, i),
		UVIndex:                  readingAt(s.UVIndex, i),
		Pressure:                 readingAt(s.Pressure, i),
	}
}

// Validate reports the first slice whose length differs from Time.
func (s HourlySeries) Validate() error {
	n := len(s.Time)
	if len(s.Code) != n {
		return fmt.Errorf("weather_code has %d values, want %d", len(s.Code), n)
	}
	for _, f := range s.fields() {
		if len(f.values) != n {
			return fmt.Errorf("%s has %d values, want %d", f.name, len(f.values), n)
		}
	}
	return nil
}

type seriesField struct {
	name   string
	values []Reading
}

func (s HourlySeries) fields() []seriesField {
	return []seriesField{
		{"temperature_2m", s.Temperature},
		{"apparent_temperature", s.ApparentTemperature},
		{"wind_speed_10m", s.WindSpeed},
		{"wind_gusts_10m", s.WindGusts},
		{"wind_direction_10m", s.WindDirection},
		{"precipitation", s.Precipitation},
		{"precipitation_probability", s.PrecipitationProbability},
		{"visibility", s.Visibility},
		{"relative_humidity_2m", s.Humidity},
		{"dew_point_2m", s.DewPoint},
		{"uv_index", s.UVIndex},
		{"pressure_msl", s.Pressure},
	}
}

// DailySummary is one day of the daily forecast block.
type DailySummary struct {
	Date string // YYYY-MM-DD
	Code int
}

// Forecast is a parsed forecast payload.
type Forecast struct {
	Location  string
	Latitude  float64
	Longitude float64
	Series    HourlySeries
	Daily     []DailySummary
}

// DailyCode returns the daily summary weather code for date (YYYY-MM-DD).
func (f Forecast) DailyCode(date string) (int, bool) {
	for _, d := range f.Daily {
		if d.Date == date && d.Code != CodeUnknown {
			return d.Code, true
		}
	}
	return 0, false
}
