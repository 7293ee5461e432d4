package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = `{
  "location_name": "Chioggia",
  "latitude": 45.219,
  "longitude": 12.279,
  "timezone": "Europe/Rome",
  "hourly": {
    "time": ["2025-06-10T00:00", "2025-06-10T01:00", "2025-06-10T02:00"],
    "weather_code": [0, null, 95],
    "temperature_2m": [20, 19.5, null],
    "wind_speed_10m": [10, 12, 30],
    "wind_gusts_10m": [15, 18, 65],
    "precipitation": [0, 0.2, 9],
    "relative_humidity_2m": [50, 0, 80],
    "pressure_msl": [1015, 1014, 1002]
  },
  "daily": {
    "time": ["2025-06-10", "2025-06-11"],
    "weather_code": [95, 3]
  }
}`

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

func jsonMarshal(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func TestParseForecast(t *testing.T) {
	t.Run("open-meteo payload", func(t *testing.T) {
		f, err := ParseForecast(RawEvent{Value: []byte(testPayload)})
		require.NoError(t, err)

		assert.Equal(t, "Chioggia", f.Location)
		assert.Equal(t, 45.219, f.Latitude)
		assert.Equal(t, 12.279, f.Longitude)

		s := f.Series
		require.Equal(t, 3, s.Len())
		assert.Equal(t, "Europe/Rome", s.Location.String())
		assert.Equal(t, time.Date(2025, 6, 10, 1, 0, 0, 0, rome).Unix(), s.Time[1].Unix())
		assert.Equal(t, []int{0, CodeUnknown, 95}, s.Code)
		assert.False(t, s.Temperature[2].Valid)
		assert.Equal(t, Some(65), s.WindGusts[2])

		// Omitted variables are all absent.
		assert.Len(t, s.Visibility, 3)
		assert.False(t, s.Visibility[0].Valid)

		code, ok := f.DailyCode("2025-06-10")
		require.True(t, ok)
		assert.Equal(t, 95, code)
	})

	t.Run("derives missing dew points", func(t *testing.T) {
		f, err := ParseForecast(RawEvent{Value: []byte(testPayload)})
		require.NoError(t, err)

		assert.Equal(t, Some(9.3), f.Series.DewPoint[0])
		// Humidity 0 is out of range, temperature absent at index 2.
		assert.False(t, f.Series.DewPoint[1].Valid)
		assert.False(t, f.Series.DewPoint[2].Valid)
	})

	t.Run("location falls back to coordinates", func(t *testing.T) {
		data := `{"latitude": 45.4371, "longitude": 12.3326, "hourly": {"time": ["2025-06-10T00:00"]}}`
		f, err := DecodeForecast([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, "45.437,12.333", f.Location)
		assert.Equal(t, time.UTC, f.Series.Location)
	})

	t.Run("fallback zone for payloads without timezone", func(t *testing.T) {
		data := `{"hourly": {"time": ["2025-06-10T09:00"]}}`
		f, err := DecodeForecastIn([]byte(data), rome)
		require.NoError(t, err)
		assert.Equal(t, rome, f.Series.Location)
		assert.Equal(t, time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC).Unix(), f.Series.Time[0].Unix())
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		data := `{"hourly": {"time": ["2025-06-10T00:00", "2025-06-10T01:00"], "precipitation": [0]}}`
		_, err := DecodeForecast([]byte(data))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "precipitation")
	})

	t.Run("no hourly values", func(t *testing.T) {
		_, err := DecodeForecast([]byte(`{"hourly": {"time": []}}`))
		require.ErrorIs(t, err, ErrEmptySeries)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		_, err := DecodeForecast([]byte(`{"hourly": {"time": ["10/06/2025 00:00"]}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hourly time[0]")
	})

	t.Run("unknown timezone", func(t *testing.T) {
		_, err := DecodeForecast([]byte(`{"timezone": "Mars/Olympus", "hourly": {"time": ["2025-06-10T00:00"]}}`))
		require.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseForecast(RawEvent{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse forecast")
	})
}

func TestDewPoint(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		humidity float64
		want     Reading
	}{
		{"mild", 20, 50, Some(9.3)},
		{"muggy", 25, 80, Some(21.3)},
		{"saturated", 15, 100, Some(15)},
		{"zero humidity", 20, 0, Reading{}},
		{"over 100", 20, 101, Reading{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DewPoint(tt.temp, tt.humidity))
		})
	}
}

func TestWindDirection(t *testing.T) {
	tests := []struct {
		degrees float64
		want    string
	}{
		{0, "N"},
		{22.5, "NNE"},
		{90, "E"},
		{225, "SW"},
		{337.5, "NNW"},
		{350, "N"},
		{360, "N"},
		{-90, "W"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, WindDirection(tt.degrees))
		})
	}
}

func TestGenerateID(t *testing.T) {
	hour := time.Date(2025, 6, 10, 10, 30, 0, 0, rome)

	id := generateID("Chioggia", 45.219, 12.279, testTargetDate, hour)
	assert.True(t, strings.HasPrefix(id, "assess-"))
	assert.Len(t, id, len("assess-")+16)

	t.Run("same hour is stable", func(t *testing.T) {
		assert.Equal(t, id, generateID("Chioggia", 45.219, 12.279, testTargetDate, hour.Add(20*time.Minute)))
	})

	t.Run("next hour differs", func(t *testing.T) {
		assert.NotEqual(t, id, generateID("Chioggia", 45.219, 12.279, testTargetDate, hour.Add(time.Hour)))
	})

	t.Run("target date differs", func(t *testing.T) {
		assert.NotEqual(t, id, generateID("Chioggia", 45.219, 12.279, "2025-06-11", hour))
	})
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mockClock := clockwork.NewFakeClockAt(fixedTime)

		SetClock(mockClock)
		assert.Equal(t, fixedTime, Now())

		SetClock(nil) // reset
	})

	t.Run("reset to real clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mockClock := clockwork.NewFakeClockAt(fixedTime)

		SetClock(mockClock)
		SetClock(nil)

		now := Now()
		assert.True(t, time.Since(now) < time.Second)
	})
}
