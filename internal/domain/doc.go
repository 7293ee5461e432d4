// Package domain turns hourly Open-Meteo forecasts into weather risk
// assessments for the lagoon dashboard.
//
// # Data Source
//
// Forecast payloads originate from the Open-Meteo forecast API. The upstream
// collector fetches them for the configured location, optionally injects a
// "location_name" field, and publishes each payload as JSON to the Kafka
// source topic. Hourly times are local wall-clock strings ("2006-01-02T15:04")
// in the payload's "timezone"; any hourly value may be null.
//
// # Weather Codes
//
// Condition codes follow the WMO interpretation table used by Open-Meteo:
//
//	0, 1            clear          45, 48          fog
//	2, 3            cloudy         56, 57, 66, 67  freezing drizzle/rain
//	51, 53, 61, 80  light rain     71..77, 85, 86  snow
//	55, 63, 81      moderate rain  95, 96, 99      thunderstorm (hail on 96/99)
//	65, 82          heavy rain
//
// A missing code is stored as [CodeUnknown] and belongs to no category.
//
// # Engine
//
// The engine is a set of pure functions over an [HourlySeries] and an
// explicit reference instant:
//
//	WindowSelector     indices of the hours of interest ([WindowSelector.Resolve])
//	PatternAnalyzer    dominant pattern, severity first ([PatternAnalyzer.Analyze])
//	ScoreSafety        per-hour hazard level with reasons
//	ScoreComfort       per-hour discomfort level with reasons
//	ClassifyAlert      danger/warning/ok verdict for a representative hour
//	Narrator           one paragraph per day-part
//	Engine.Build       the merged alert for a target date
//	Engine.Assess      alert plus semaphore levels over one shared window
//
// Absent readings contribute nothing to any score. Values sitting exactly on a
// threshold fall into the more severe tier.
//
// # Risk Levels
//
//	Safety  (weighted total / 5.5):  <0.7 green | <1.4 yellow_light | <2.2 yellow_dark | red
//	Comfort (weighted total / 6.3):  <0.6 green | <1.3 yellow_light | <2.0 yellow_dark | red
//
// A single catastrophic safety factor (precipitation score ≥3.5, wind ≥4.0 or
// visibility ≥3.5) forces red regardless of the weighted total.
//
// # ID Generation
//
// Assessment IDs are deterministic SHA-256 hashes of
// location|lat|lon|target date|assessment hour, so replaying the same payload
// within the same hour produces the same ID. See [generateID].
package domain
