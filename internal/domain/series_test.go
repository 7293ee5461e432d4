package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTargetDate = "2025-06-10"

var rome = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		panic(err)
	}
	return loc
}()

// calmSeries returns n hours of calm, dry, mild weather starting at start.
func calmSeries(start time.Time, n int) HourlySeries {
	s := HourlySeries{
		Location:                 start.Location(),
		Time:                     make([]time.Time, n),
		Code:                     make([]int, n),
		Temperature:              make([]Reading, n),
		ApparentTemperature:      make([]Reading, n),
		WindSpeed:                make([]Reading, n),
		WindGusts:                make([]Reading, n),
		WindDirection:            make([]Reading, n),
		Precipitation:            make([]Reading, n),
		PrecipitationProbability: make([]Reading, n),
		Visibility:               make([]Reading, n),
		Humidity:                 make([]Reading, n),
		DewPoint:                 make([]Reading, n),
		UVIndex:                  make([]Reading, n),
		Pressure:                 make([]Reading, n),
	}
	for i := range n {
		s.Time[i] = start.Add(time.Duration(i) * time.Hour)
		s.Temperature[i] = Some(22)
		s.ApparentTemperature[i] = Some(22)
		s.WindSpeed[i] = Some(10)
		s.WindGusts[i] = Some(12)
		s.WindDirection[i] = Some(90)
		s.Precipitation[i] = Some(0)
		s.PrecipitationProbability[i] = Some(0)
		s.Visibility[i] = Some(20000)
		s.Humidity[i] = Some(60)
		s.DewPoint[i] = Some(12)
		s.UVIndex[i] = Some(3)
		s.Pressure[i] = Some(1018)
	}
	return s
}

// twoDays is a calm series covering testTargetDate and the following day.
func twoDays() HourlySeries {
	return calmSeries(time.Date(2025, 6, 10, 0, 0, 0, 0, rome), 48)
}

func TestHourlySeries_Observation(t *testing.T) {
	s := twoDays()
	s.WindGusts[5] = Some(40)

	t.Run("in range", func(t *testing.T) {
		obs := s.Observation(5)
		assert.Equal(t, s.Time[5], obs.Time)
		assert.Equal(t, Some(40), obs.WindGusts)
		assert.Equal(t, 0, obs.Code)
	})

	t.Run("out of range is absent", func(t *testing.T) {
		obs := s.Observation(100)
		assert.True(t, obs.Time.IsZero())
		assert.Equal(t, CodeUnknown, obs.Code)
		assert.False(t, obs.WindSpeed.Valid)
	})
}

func TestHourlySeries_Validate(t *testing.T) {
	s := twoDays()
	require.NoError(t, s.Validate())

	s.Pressure = s.Pressure[:10]
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pressure_msl")
}

func TestForecast_DailyCode(t *testing.T) {
	f := Forecast{Daily: []DailySummary{
		{Date: "2025-06-10", Code: 3},
		{Date: "2025-06-11", Code: CodeUnknown},
	}}

	code, ok := f.DailyCode("2025-06-10")
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	_, ok = f.DailyCode("2025-06-11")
	assert.False(t, ok)

	_, ok = f.DailyCode("2025-06-12")
	assert.False(t, ok)
}

func TestReading_JSON(t *testing.T) {
	var got []Reading
	require.NoError(t, jsonUnmarshal(`[1.5, null, 0]`, &got))
	assert.Equal(t, []Reading{Some(1.5), {}, Some(0)}, got)

	out, err := jsonMarshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, 0]`, out)
}

func TestStats(t *testing.T) {
	minV, maxV, avg, ok := stats([]Reading{Some(2), {}, Some(6), Some(1)})
	require.True(t, ok)
	assert.Equal(t, 1.0, minV)
	assert.Equal(t, 6.0, maxV)
	assert.Equal(t, 3.0, avg)

	_, _, _, ok = stats([]Reading{{}, {}})
	assert.False(t, ok)
}
