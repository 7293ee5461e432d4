package domain

// Safety weights and normalization divisor.
const (
	safetyWeightPrecip     = 2.2
	safetyWeightWind       = 1.0
	safetyWeightVisibility = 1.5
	safetyWeightPressure   = 0.8
	safetyDivisor          = 5.5

	windScoreCap   = 5.0
	gustExcessRate = 0.6
)

// PressureCritical and PressureLow are the hPa thresholds shared by the
// safety scorer and the alert classifier. Low pressure only counts together
// with another hazard.
const (
	PressureCritical = 995.0
	PressureLow      = 1005.0
)

// windScaleBounds are the upper bounds (km/h, exclusive) of the unified wind
// scale levels; windScaleScores holds the safety score of each level.
var (
	windScaleBounds = [...]float64{4, 11, 18, 25, 32, 40, 47, 54, 61, 68, 76, 86, 97, 104, 130}
	windScaleScores = [...]float64{0, 0.3, 0.7, 1.2, 1.8, 2.4, 3.0, 3.7, 4.2, 4.8, 5.5, 6.2, 7.0, 7.8, 8.5, 9.0}
)

// WindLevel returns the 0-15 level of speed on the unified wind scale.
func WindLevel(speed float64) int {
	for i, bound := range windScaleBounds {
		if speed < bound {
			return i
		}
	}
	return len(windScaleBounds)
}

func windScaleScore(speed float64) float64 {
	return windScaleScores[WindLevel(speed)]
}

// ScoreSafety rates the hazard of one hour.
func ScoreSafety(obs Observation) HourRisk {
	var reasons []Reason

	precipScore := 0.0
	if p := obs.Precipitation; p.Valid && p.Value > 0 {
		switch {
		case p.Value >= 8:
			precipScore = 4
			reasons = append(reasons, Reason{CategoryRain, "very heavy rain: " + formatDecimal(p.Value) + " mm/h"})
		case p.Value >= 5:
			precipScore = 3
			reasons = append(reasons, Reason{CategoryRain, "heavy rain: " + formatDecimal(p.Value) + " mm/h"})
		case p.Value >= 2.5:
			precipScore = 2
			reasons = append(reasons, Reason{CategoryRain, "steady rain: " + formatDecimal(p.Value) + " mm/h"})
		case p.Value >= 1:
			precipScore = 1
			if obs.WindSpeed.Valid && obs.WindSpeed.Value >= 20 {
				reasons = append(reasons, Reason{CategoryRain, "rain with strong wind"})
			}
		}
	}

	windScore, windReasons := safetyWind(obs.WindSpeed, obs.WindGusts)
	reasons = append(reasons, windReasons...)

	visScore := 0.0
	if v := obs.Visibility; v.Valid {
		km := roundTo(v.Value/1000, 1)
		switch {
		case km < 0.5:
			visScore = 4
			reasons = append(reasons, Reason{CategoryVisibility, "critical visibility: " + formatDecimal(km) + " km"})
		case km < 2:
			visScore = 3
			reasons = append(reasons, Reason{CategoryVisibility, "very poor visibility: " + formatDecimal(km) + " km"})
		case km < 5:
			visScore = 2
			reasons = append(reasons, Reason{CategoryVisibility, "reduced visibility: " + formatDecimal(km) + " km"})
		case km < 10:
			visScore = 1
			if precipScore >= 1 {
				reasons = append(reasons, Reason{CategoryVisibility, "limited visibility with rain"})
			}
		}
	}

	pressureScore := 0.0
	if pr := obs.Pressure; pr.Valid {
		switch {
		case pr.Value < PressureCritical && (precipScore >= 2 || windScore >= 2):
			pressureScore = 1.5
			reasons = append(reasons, Reason{CategoryPressure, "critical pressure: " + formatInt(pr.Value) + " hPa"})
		case pr.Value < PressureLow && (precipScore >= 1 || windScore >= 1.5):
			pressureScore = 0.8
			reasons = append(reasons, Reason{CategoryPressure, "very low pressure: " + formatInt(pr.Value) + " hPa"})
		}
	}

	total := (precipScore*safetyWeightPrecip +
		windScore*safetyWeightWind +
		visScore*safetyWeightVisibility +
		pressureScore*safetyWeightPressure) / safetyDivisor

	level := safetyLevel(total)
	if precipScore >= 3.5 || windScore >= 4.0 || visScore >= 3.5 {
		level = LevelRed
	}

	return HourRisk{Level: level, Score: total, Reasons: nonNil(reasons)}
}

// safetyWind combines mean wind with the gust excess over it, so gusts only
// add what the mean wind does not already account for.
func safetyWind(wind, gust Reading) (float64, []Reason) {
	var (
		score     float64
		windLevel float64
		reasons   []Reason
	)
	if wind.Valid {
		windLevel = windScaleScore(wind.Value)
		score = windLevel
		switch {
		case windLevel >= 3:
			reasons = append(reasons, Reason{CategoryWind, "very strong wind (" + formatInt(wind.Value) + " km/h)"})
		case windLevel >= 2:
			reasons = append(reasons, Reason{CategoryWind, "strong wind (" + formatInt(wind.Value) + " km/h)"})
		}
	}
	if gust.Valid {
		gustLevel := windScaleScore(gust.Value)
		score += max(0, gustLevel-score) * gustExcessRate
		switch {
		case gustLevel >= 4:
			reasons = append(reasons, Reason{CategoryWind, "violent gusts (" + formatInt(gust.Value) + " km/h)"})
		case gustLevel >= 3:
			reasons = append(reasons, Reason{CategoryWind, "intense gusts (" + formatInt(gust.Value) + " km/h)"})
		case gustLevel >= 2 && gustLevel > windLevel+1:
			reasons = append(reasons, Reason{CategoryWind, "significant gusts (" + formatInt(gust.Value) + " km/h)"})
		}
	}
	return min(score, windScoreCap), reasons
}

func safetyLevel(total float64) RiskLevel {
	switch {
	case total >= 2.2:
		return LevelRed
	case total >= 1.4:
		return LevelYellowDark
	case total >= 0.7:
		return LevelYellowLight
	default:
		return LevelGreen
	}
}

func nonNil(r []Reason) []Reason {
	if r == nil {
		return []Reason{}
	}
	return r
}
