package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// LocalTimeLayout is the Open-Meteo timestamp format for hourly values.
	LocalTimeLayout = "2006-01-02T15:04"
	// DateLayout is the calendar date format used for target dates and daily values.
	DateLayout = "2006-01-02"
)

// Magnus formula coefficients for dew point over water.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// ErrEmptySeries is returned when a payload carries no hourly timestamps.
var ErrEmptySeries = errors.New("forecast has no hourly values")

// RawForecast is the Open-Meteo forecast payload as published by the collector.
// Hourly variables are nullable; an omitted variable is treated as all-absent.
type RawForecast struct {
	LocationName string    `json:"location_name,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timezone     string    `json:"timezone"`
	Hourly       RawHourly `json:"hourly"`
	Daily        RawDaily  `json:"daily"`
}

// RawHourly is the hourly block of a RawForecast.
type RawHourly struct {
	Time                     []string  `json:"time"`
	WeatherCode              []Reading `json:"weather_code"`
	Temperature              []Reading `json:"temperature_2m"`
	ApparentTemperature      []Reading `json:"apparent_temperature"`
	WindSpeed                []Reading `json:"wind_speed_10m"`
	WindGusts                []Reading `json:"wind_gusts_10m"`
	WindDirection            []Reading `json:"wind_direction_10m"`
	Precipitation            []Reading `json:"precipitation"`
	PrecipitationProbability []Reading `json:"precipitation_probability"`
	Visibility               []Reading `json:"visibility"`
	Humidity                 []Reading `json:"relative_humidity_2m"`
	DewPoint                 []Reading `json:"dew_point_2m"`
	UVIndex                  []Reading `json:"uv_index"`
	Pressure                 []Reading `json:"pressure_msl"`
}

// RawDaily is the daily block of a RawForecast.
type RawDaily struct {
	Time        []string  `json:"time"`
	WeatherCode []Reading `json:"weather_code"`
}

// ParseForecast deserializes a RawEvent's value into a Forecast.
func ParseForecast(raw RawEvent) (Forecast, error) {
	return DecodeForecast(raw.Value)
}

// DecodeForecast parses an Open-Meteo JSON payload into a Forecast. Hourly
// timestamps are interpreted in the payload's timezone (UTC when empty).
func DecodeForecast(data []byte) (Forecast, error) {
	return DecodeForecastIn(data, time.UTC)
}

// DecodeForecastIn is DecodeForecast with the zone used for payloads that do
// not declare one.
func DecodeForecastIn(data []byte, fallback *time.Location) (Forecast, error) {
	var rec RawForecast
	if err := json.Unmarshal(data, &rec); err != nil {
		return Forecast{}, fmt.Errorf("parse forecast: %w", err)
	}

	loc := fallback
	if loc == nil {
		loc = time.UTC
	}
	if tz := strings.TrimSpace(rec.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return Forecast{}, fmt.Errorf("parse forecast: timezone %q: %w", tz, err)
		}
		loc = l
	}

	series, err := buildSeries(rec.Hourly, loc)
	if err != nil {
		return Forecast{}, fmt.Errorf("parse forecast: %w", err)
	}

	daily, err := buildDaily(rec.Daily)
	if err != nil {
		return Forecast{}, fmt.Errorf("parse forecast: %w", err)
	}

	name := strings.TrimSpace(rec.LocationName)
	if name == "" {
		name = fmt.Sprintf("%.3f,%.3f", rec.Latitude, rec.Longitude)
	}

	return Forecast{
		Location:  name,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
		Series:    series,
		Daily:     daily,
	}, nil
}

func buildSeries(h RawHourly, loc *time.Location) (HourlySeries, error) {
	n := len(h.Time)
	if n == 0 {
		return HourlySeries{}, ErrEmptySeries
	}

	times := make([]time.Time, n)
	for i, s := range h.Time {
		t, err := time.ParseInLocation(LocalTimeLayout, s, loc)
		if err != nil {
			return HourlySeries{}, fmt.Errorf("hourly time[%d]: %w", i, err)
		}
		times[i] = t
	}

	s := HourlySeries{
		Location:                 loc,
		Time:                     times,
		Code:                     codesOf(orAbsent(h.WeatherCode, n)),
		Temperature:              orAbsent(h.Temperature, n),
		ApparentTemperature:      orAbsent(h.ApparentTemperature, n),
		WindSpeed:                orAbsent(h.WindSpeed, n),
		WindGusts:                orAbsent(h.WindGusts, n),
		WindDirection:            orAbsent(h.WindDirection, n),
		Precipitation:            orAbsent(h.Precipitation, n),
		PrecipitationProbability: orAbsent(h.PrecipitationProbability, n),
		Visibility:               orAbsent(h.Visibility, n),
		Humidity:                 orAbsent(h.Humidity, n),
		DewPoint:                 orAbsent(h.DewPoint, n),
		UVIndex:                  orAbsent(h.UVIndex, n),
		Pressure:                 orAbsent(h.Pressure, n),
	}
	if err := s.Validate(); err != nil {
		return HourlySeries{}, err
	}

	fillDewPoint(s.DewPoint, s.Temperature, s.Humidity)
	return s, nil
}

func buildDaily(d RawDaily) ([]DailySummary, error) {
	if len(d.WeatherCode) > 0 && len(d.WeatherCode) != len(d.Time) {
		return nil, fmt.Errorf("daily weather_code has %d values, want %d", len(d.WeatherCode), len(d.Time))
	}
	codes := codesOf(orAbsent(d.WeatherCode, len(d.Time)))
	out := make([]DailySummary, 0, len(d.Time))
	for i, date := range d.Time {
		out = append(out, DailySummary{Date: date, Code: codes[i]})
	}
	return out, nil
}

// orAbsent returns s, or n absent readings when the variable was omitted.
// A present variable of the wrong length is returned as-is so Validate can
// report it.
func orAbsent(s []Reading, n int) []Reading {
	if s == nil {
		return make([]Reading, n)
	}
	return s
}

func codesOf(s []Reading) []int {
	out := make([]int, len(s))
	for i, r := range s {
		if !r.Valid {
			out[i] = CodeUnknown
			continue
		}
		out[i] = int(math.Round(r.Value))
	}
	return out
}

// fillDewPoint derives absent dew points from temperature and humidity in place.
func fillDewPoint(dew, temp, humidity []Reading) {
	for i := range dew {
		if dew[i].Valid || !temp[i].Valid || !humidity[i].Valid {
			continue
		}
		dew[i] = DewPoint(temp[i].Value, humidity[i].Value)
	}
}

// DewPoint computes the dew point (°C, one decimal) with the Magnus formula.
// Humidity outside (0, 100] yields an absent reading.
func DewPoint(temperature, humidity float64) Reading {
	if humidity <= 0 || humidity > 100 {
		return Reading{}
	}
	alpha := (magnusA*temperature)/(magnusB+temperature) + math.Log(humidity/100)
	return Some(roundTo((magnusB*alpha)/(magnusA-alpha), 1))
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection converts degrees into a 16-point compass label.
func WindDirection(degrees float64) string {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	return compassPoints[int(math.Round(d/22.5))%16]
}

// roundTo rounds v to the given number of decimals, half away from zero.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// generateID produces a deterministic ID from the assessment's key fields.
// Replaying the same forecast for the same hour yields the same ID, so
// downstream stores can upsert idempotently.
func generateID(location string, lat, lon float64, targetDate string, hour time.Time) string {
	input := fmt.Sprintf("%s|%.4f|%.4f|%s|%s", location, lat, lon, targetDate, hour.Format("2006-01-02T15"))
	hash := sha256.Sum256([]byte(input))
	return "assess-" + hex.EncodeToString(hash[:8])
}
