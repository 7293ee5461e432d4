// Command assess runs the risk engine offline on an Open-Meteo payload file
// and prints the assessment.
//
// Usage:
//
//	go run ./cmd/assess \
//	  -payload data/mock/forecast_chioggia_20250610.json \
//	  -date 2025-06-11 \
//	  -now 2025-06-10T10:30 \
//	  -format text
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "assess:", err)
		os.Exit(1)
	}
}

type options struct {
	payload     string
	date        string
	now         string
	tz          string
	phrases     string
	format      string
	includePast bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("assess", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.payload, "payload", "", "path to an Open-Meteo forecast JSON file")
	fs.StringVar(&o.date, "date", "", "target date YYYY-MM-DD (default today)")
	fs.StringVar(&o.now, "now", "", "reference time, RFC 3339 or 2006-01-02T15:04 in -tz (default wall clock)")
	fs.StringVar(&o.tz, "tz", "Europe/Rome", "zone for payloads without timezone and for -now")
	fs.StringVar(&o.phrases, "phrases", domain.PhraseModeFirst, "phrase selection: first or random")
	fs.StringVar(&o.format, "format", "json", "output format: json or text")
	fs.BoolVar(&o.includePast, "include-past", false, "keep today's past day parts in the narrative")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.payload == "" {
		return o, errors.New("-payload is required")
	}
	if o.format != "json" && o.format != "text" {
		return o, fmt.Errorf("unknown -format %q", o.format)
	}
	return o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return fmt.Errorf("-tz: %w", err)
	}

	now := domain.Now()
	if o.now != "" {
		if now, err = parseNow(o.now, loc); err != nil {
			return err
		}
	}

	if o.date != "" {
		if err := domain.ValidateTargetDate(o.date); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(o.payload)
	if err != nil {
		return err
	}
	forecast, err := domain.DecodeForecastIn(data, loc)
	if err != nil {
		return err
	}

	engine := domain.NewEngine(domain.DefaultSettings(), domain.NewChooser(o.phrases))
	a := engine.Assess(forecast, domain.AssessRequest{
		TargetDate:       o.date,
		Now:              now,
		ExcludePastHours: !o.includePast,
	})

	if o.format == "text" {
		return writeText(stdout, a)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

func parseNow(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(domain.LocalTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("-now: %w", err)
	}
	return t, nil
}

func writeText(w io.Writer, a domain.Assessment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%.3f, %.3f) %s\n", a.Location, a.Latitude, a.Longitude, a.TargetDate)
	fmt.Fprintf(&b, "pattern: %s/%s (confidence %.2f)\n", a.Pattern.Pattern, a.Pattern.Intensity, a.Pattern.Confidence)

	if a.Alert == nil {
		b.WriteString("alert: none\n")
	} else {
		fmt.Fprintf(&b, "alert: %s\n", a.Alert.Type)
		for _, l := range a.Alert.Lines {
			fmt.Fprintf(&b, "  %s\n", l)
		}
		if a.Alert.Narrative != "" {
			fmt.Fprintf(&b, "\n%s\n", a.Alert.Narrative)
		}
	}

	if len(a.Hours) > 0 {
		b.WriteString("\nhour   safety         comfort\n")
		for _, h := range a.Hours {
			fmt.Fprintf(&b, "%s  %-13s  %s\n", h.Time.Format("15:04"), h.Safety.Level, h.Comfort.Level)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
