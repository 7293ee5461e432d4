package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Reading is an optional hourly measurement. The zero value is absent.
type Reading struct {
	Value float64
	Valid bool
}

// Some returns a present reading.
func Some(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// Or returns the value when present, otherwise def.
func (r Reading) Or(def float64) float64 {
	if !r.Valid {
		return def
	}
	return r.Value
}

// UnmarshalJSON decodes a number, treating null as absent.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Some(v)
	return nil
}

// MarshalJSON encodes absent readings as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', -1, 64)), nil
}

// readingAt returns s[i], or an absent reading when i is out of range.
func readingAt(s []Reading, i int) Reading {
	if i < 0 || i >= len(s) {
		return Reading{}
	}
	return s[i]
}

// subset returns the readings at the given indices, preserving order.
func subset(s []Reading, indices []int) []Reading {
	out := make([]Reading, len(indices))
	for k, i := range indices {
		out[k] = readingAt(s, i)
	}
	return out
}

// stats summarizes the present values of a slice. ok is false when none are present.
func stats(s []Reading) (minV, maxV, avg float64, ok bool) {
	var sum float64
	n := 0
	for _, r := range s {
		if !r.Valid {
			continue
		}
		if n == 0 || r.Value < minV {
			minV = r.Value
		}
		if n == 0 || r.Value > maxV {
			maxV = r.Value
		}
		sum += r.Value
		n++
	}
	if n == 0 {
		return 0, 0, 0, false
	}
	return minV, maxV, sum / float64(n), true
}
