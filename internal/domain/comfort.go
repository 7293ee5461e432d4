package domain

const (
	comfortWeightTemperature = 1.3
	comfortWeightHumidity    = 1.0
	comfortWeightDewPoint    = 1.2
	comfortWeightWind        = 0.8
	comfortWeightUV          = 0.9
	comfortWeightPrecip      = 1.1
	comfortDivisor           = 6.3
)

// ScoreComfort rates how unpleasant one hour feels. Apparent temperature
// falls back to air temperature when absent.
func ScoreComfort(obs Observation) HourRisk {
	var reasons []Reason

	tempScore := 0.0
	feels := obs.ApparentTemperature
	if !feels.Valid {
		feels = obs.Temperature
	}
	if feels.Valid {
		ta := feels.Value
		switch {
		case ta >= 38:
			tempScore = 4
			reasons = append(reasons, Reason{CategoryTemperature, "extreme heat: " + formatInt(ta) + "° feels like"})
		case ta >= 32:
			tempScore = 3
			reasons = append(reasons, Reason{CategoryTemperature, "very hot: " + formatInt(ta) + "° feels like"})
		case ta >= 28:
			tempScore = 2
			reasons = append(reasons, Reason{CategoryTemperature, "intense heat: " + formatInt(ta) + "° feels like"})
		case ta <= -5:
			tempScore = 3.5
			reasons = append(reasons, Reason{CategoryTemperature, "bitter cold: " + formatInt(ta) + "° feels like"})
		case ta <= 2:
			tempScore = 2.5
			reasons = append(reasons, Reason{CategoryTemperature, "intense cold: " + formatInt(ta) + "° feels like"})
		case ta <= 8:
			tempScore = 1.5
			reasons = append(reasons, Reason{CategoryTemperature, "cold: " + formatInt(ta) + "°"})
		}
	}

	humidityScore := 0.0
	if h := obs.Humidity; h.Valid {
		switch {
		case h.Value >= 95:
			humidityScore = 3
			reasons = append(reasons, Reason{CategoryHumidity, "oppressive humidity: " + formatInt(h.Value) + "%"})
		case h.Value >= 85:
			humidityScore = 2
			reasons = append(reasons, Reason{CategoryHumidity, "very humid: " + formatInt(h.Value) + "%"})
		case h.Value <= 15:
			humidityScore = 2.5
			reasons = append(reasons, Reason{CategoryHumidity, "very dry air: " + formatInt(h.Value) + "%"})
		case h.Value <= 25:
			humidityScore = 1.5
			reasons = append(reasons, Reason{CategoryHumidity, "dry air: " + formatInt(h.Value) + "%"})
		}
	}

	dewScore := 0.0
	if d := obs.DewPoint; d.Valid {
		switch {
		case d.Value >= 25:
			dewScore = 4
			reasons = append(reasons, Reason{CategoryHumidity, "unbearable mugginess (dew point " + formatInt(d.Value) + "°)"})
		case d.Value >= 22:
			dewScore = 3
			reasons = append(reasons, Reason{CategoryHumidity, "very muggy (dew point " + formatInt(d.Value) + "°)"})
		case d.Value >= 18:
			dewScore = 2
			reasons = append(reasons, Reason{CategoryHumidity, "muggy (dew point " + formatInt(d.Value) + "°)"})
		}
	}

	windScore := 0.0
	switch {
	case obs.WindSpeed.Valid && obs.WindSpeed.Value >= 30:
		windScore = 2.5
		reasons = append(reasons, Reason{CategoryWind, "bothersome wind: " + formatInt(obs.WindSpeed.Value) + " km/h"})
	case obs.WindGusts.Valid && obs.WindGusts.Value >= 40:
		windScore = 2
		reasons = append(reasons, Reason{CategoryWind, "disturbing gusts: " + formatInt(obs.WindGusts.Value) + " km/h"})
	}

	// UV is zero after sunset, so a positive value marks daylight.
	uvScore := 0.0
	if uv := obs.UVIndex; uv.Valid && uv.Value > 0 {
		switch {
		case uv.Value >= 9:
			uvScore = 3
			reasons = append(reasons, Reason{CategoryUV, "dangerous UV: " + formatDecimal(uv.Value)})
		case uv.Value >= 7:
			uvScore = 2
			reasons = append(reasons, Reason{CategoryUV, "very high UV: " + formatDecimal(uv.Value)})
		case uv.Value >= 5:
			uvScore = 1
			reasons = append(reasons, Reason{CategoryUV, "moderately high UV: " + formatDecimal(uv.Value)})
		}
	}

	precipScore := 0.0
	if p := obs.Precipitation; p.Valid {
		switch {
		case p.Value >= 2:
			precipScore = 2
			reasons = append(reasons, Reason{CategoryRain, "bothersome rain: " + formatDecimal(p.Value) + " mm/h"})
		case p.Value >= 0.5:
			precipScore = 1
			reasons = append(reasons, Reason{CategoryRain, "light but annoying rain"})
		}
	}

	total := (tempScore*comfortWeightTemperature +
		humidityScore*comfortWeightHumidity +
		dewScore*comfortWeightDewPoint +
		windScore*comfortWeightWind +
		uvScore*comfortWeightUV +
		precipScore*comfortWeightPrecip) / comfortDivisor

	return HourRisk{Level: comfortLevel(total), Score: total, Reasons: nonNil(reasons)}
}

func comfortLevel(total float64) RiskLevel {
	switch {
	case total >= 2.0:
		return LevelRed
	case total >= 1.3:
		return LevelYellowDark
	case total >= 0.6:
		return LevelYellowLight
	default:
		return LevelGreen
	}
}
