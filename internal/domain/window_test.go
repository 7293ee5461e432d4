package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyTimes(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func seq(from, to, step int) []int {
	var out []int
	for i := from; i <= to; i += step {
		out = append(out, i)
	}
	return out
}

func TestWindowSelector_Resolve(t *testing.T) {
	times := hourlyTimes(time.Date(2025, 6, 10, 0, 0, 0, 0, rome), 48)
	now := time.Date(2025, 6, 10, 10, 30, 0, 0, rome)
	sel := WindowSelector{DefaultHoursToday: 12}

	tests := []struct {
		name   string
		window TimeWindow
		want   []int
	}{
		{"relative hours ahead", TimeWindow{HoursAhead: 3}, []int{11, 12, 13}},
		{"today default", TimeWindow{}, seq(11, 22, 1)},
		{"future day default", TimeWindow{FutureDay: true}, seq(11, 34, 1)},
		{
			"absolute inclusive",
			TimeWindow{
				Start: time.Date(2025, 6, 10, 7, 0, 0, 0, rome),
				End:   time.Date(2025, 6, 10, 10, 0, 0, 0, rome),
			},
			[]int{7, 8, 9, 10},
		},
		{
			"absolute in another zone",
			TimeWindow{
				Start: time.Date(2025, 6, 10, 5, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
			},
			[]int{7, 8, 9, 10},
		},
		{
			"absolute with step",
			TimeWindow{
				Start:     time.Date(2025, 6, 11, 7, 0, 0, 0, rome),
				End:       time.Date(2025, 6, 11, 22, 0, 0, 0, rome),
				StepHours: 3,
			},
			[]int{31, 34, 37, 40, 43, 46},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sel.Resolve(times, now, tt.window))
		})
	}

	t.Run("start after all timestamps", func(t *testing.T) {
		w := TimeWindow{
			Start: time.Date(2025, 7, 1, 0, 0, 0, 0, rome),
			End:   time.Date(2025, 7, 1, 23, 0, 0, 0, rome),
		}
		got := sel.Resolve(times, now, w)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("zero selector uses package default", func(t *testing.T) {
		got := WindowSelector{}.Resolve(times, now, TimeWindow{})
		assert.Len(t, got, DefaultHoursToday)
	})
}

func TestWindowSelector_StepProperties(t *testing.T) {
	times := hourlyTimes(time.Date(2025, 6, 10, 0, 0, 0, 0, rome), 72)
	now := time.Date(2025, 6, 10, 5, 10, 0, 0, rome)
	sel := WindowSelector{}

	for _, hours := range []int{1, 5, 12, 30} {
		unsampled := sel.Resolve(times, now, TimeWindow{HoursAhead: hours})
		require.NotEmpty(t, unsampled)
		for k := 1; k < len(unsampled); k++ {
			assert.Equal(t, unsampled[k-1]+1, unsampled[k], "no gaps at step 1")
		}

		for _, step := range []int{2, 3, 4} {
			got := sel.Resolve(times, now, TimeWindow{HoursAhead: hours, StepHours: step})
			require.NotEmpty(t, got)
			assert.Equal(t, unsampled[0], got[0], "first hour always kept")
			for _, i := range got {
				assert.Zero(t, (i-got[0])%step)
			}
		}
	}
}

func TestSampleEvery(t *testing.T) {
	hourly := []int{31, 32, 33, 34, 35, 36, 37}

	got := sampleEvery(hourly, 3)
	assert.Equal(t, []int{31, 34, 37}, got)
	assert.Equal(t, []int{31, 32, 33, 34, 35, 36, 37}, hourly, "input untouched")

	assert.Equal(t, hourly, sampleEvery(hourly, 1))
	assert.Empty(t, sampleEvery(nil, 3))
}

func TestDayWindow(t *testing.T) {
	w, err := DayWindow("2025-06-11", 7, 22, rome)
	require.NoError(t, err)
	assert.True(t, w.IsAbsolute())
	assert.True(t, w.FutureDay)
	assert.Equal(t, time.Date(2025, 6, 11, 7, 0, 0, 0, rome), w.Start)
	assert.Equal(t, time.Date(2025, 6, 11, 22, 0, 0, 0, rome), w.End)

	_, err = DayWindow("11/06/2025", 7, 22, rome)
	assert.Error(t, err)
}
