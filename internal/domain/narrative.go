package domain

import "strings"

// DayPart is a narrative segment of the day.
type DayPart string

const (
	PartMorning   DayPart = "morning"
	PartAfternoon DayPart = "afternoon"
	PartEvening   DayPart = "evening"
	PartNight     DayPart = "night"
)

// IsNight reports whether the part uses night phrasing.
func (p DayPart) IsNight() bool {
	return p == PartEvening || p == PartNight
}

func (p DayPart) label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// defaultPressure stands in for a day-part without pressure readings.
const defaultPressure = 1015.0

// DayPartSlice holds the values of one day-part, already subset from the series.
type DayPartSlice struct {
	Codes      []int
	Temps      []Reading
	Gusts      []Reading
	Winds      []Reading
	UVs        []Reading
	Pressures  []Reading
	Precip     []Reading
	PrecipProb []Reading
}

// Narrator writes day-part paragraphs.
type Narrator struct {
	Chooser  Chooser
	Patterns PatternAnalyzer
}

var partIntros = map[DayPart][]string{
	PartMorning:   {"In the morning", "During the early hours", "Through the morning"},
	PartAfternoon: {"In the afternoon", "During the afternoon", "Through the afternoon"},
	PartEvening:   {"In the evening", "Towards evening", "During the evening"},
	PartNight:     {"During the night", "Overnight", "Through the night"},
}

// Paragraph describes one day-part in a single sentence of at most three
// blocks: weather, wind, temperature, with a UV or pressure footnote when
// there is room.
func (n Narrator) Paragraph(part DayPart, s DayPartSlice) string {
	if len(s.Codes) == 0 || len(s.Temps) == 0 {
		return part.label() + " with variable conditions."
	}

	night := part.IsNight()
	intro := n.choose(partIntros[part])
	if intro == "" {
		intro = part.label()
	}

	analysis := n.Patterns.Analyze(s.Codes, s.Precip, s.PrecipProb)

	var blocks []string
	if p := n.weatherPhrase(analysis, night); p != "" {
		blocks = append(blocks, p)
	}

	_, maxGust, _, gustOK := stats(s.Gusts)
	_, _, avgWind, windOK := stats(s.Winds)
	if windOK || gustOK {
		if p := n.windPhrase(avgWind, maxGust, analysis.Intensity.IsSevere()); p != "" {
			blocks = append(blocks, p)
		}
	}

	if !night {
		blocks = append(blocks, n.tempPhrases(s.Temps)...)
	}

	if len(blocks) < 2 {
		_, _, avgUV, _ := stats(s.UVs)
		if !night && avgUV >= 7 {
			blocks = append(blocks, "a high UV index")
		}
		_, _, avgPressure, ok := stats(s.Pressures)
		if !ok {
			avgPressure = defaultPressure
		}
		if avgPressure < PressureLow && analysis.Pattern != PatternClear {
			blocks = append(blocks, "falling pressure")
		}
	}

	if len(blocks) > 3 {
		blocks = blocks[:3]
	}
	return intro + " " + joinBlocks(blocks) + "."
}

func joinBlocks(blocks []string) string {
	switch len(blocks) {
	case 0:
		return "stable conditions"
	case 1:
		return blocks[0]
	case 2:
		return blocks[0] + " with " + blocks[1]
	default:
		last := len(blocks) - 1
		return strings.Join(blocks[:last], ", ") + " and " + blocks[last]
	}
}

func (n Narrator) choose(candidates []string) string {
	if n.Chooser == nil {
		return FirstChooser{}.Choose(candidates)
	}
	return n.Chooser.Choose(candidates)
}

func (n Narrator) weatherPhrase(a PatternResult, night bool) string {
	pick := func(day, nightPool []string) string {
		if night {
			return n.choose(nightPool)
		}
		return n.choose(day)
	}

	switch a.Pattern {
	case PatternClear:
		if a.Confidence >= 0.7 {
			return pick(
				[]string{"clear and sunny skies", "stable, dry weather", "bright, ideal conditions", "sunshine all day long", "crisp, radiant air"},
				[]string{"clear, starry skies", "a calm, clear night", "undisturbed, stable conditions", "cloudless night skies"},
			)
		}
		return pick(
			[]string{"changeable weather with wide sunny spells", "sun and scattered clouds", "mostly fine conditions"},
			[]string{"mostly clear with thin high cloud", "clear spells with some cloud", "generally quiet conditions"},
		)

	case PatternCloudy:
		if a.Confidence >= 0.7 {
			return pick(
				[]string{"grey, overcast skies", "widespread persistent cloud", "extensive cloud cover"},
				[]string{"overcast, cloudy skies", "extensive cloud through the night", "leaden skies"},
			)
		}
		return n.choose([]string{"variable, patchy cloud", "scattered broken cloud", "partly cloudy skies", "cloud alternating with clear spells"})

	case PatternFog:
		return pick(
			[]string{"morning fog or persistent haze", "visibility reduced by fog", "damp, hazy air"},
			[]string{"night fog or widespread mist", "murky, damp air", "visibility hampered by fog banks"},
		)

	case PatternLightRain, PatternModerateRain, PatternHeavyRain:
		var rain string
		switch a.Intensity {
		case IntensityHeavy, IntensityExtreme:
			rain = n.choose([]string{"heavy, abundant rain", "strong, persistent precipitation", "intense downpours"})
		case IntensityModerate:
			rain = n.choose([]string{"steady moderate rain", "medium-intensity precipitation", "regular showers"})
		default:
			rain = n.choose([]string{"light, intermittent rain", "weak precipitation", "drizzle"})
		}
		switch {
		case a.MaxProb >= 80:
			return rain + " " + n.choose([]string{"likely everywhere", "across the whole area", "widespread"})
		case a.MaxProb >= 60:
			return rain + " " + n.choose([]string{"very likely", "expected with good probability", "expected"})
		default:
			return n.choose([]string{"possible", "probable", "a chance of"}) + " " + rain + " " + n.choose([]string{"at times", "in places", "here and there"})
		}

	case PatternStorms:
		if a.Intensity == IntensityExtreme {
			return n.choose([]string{"intense thunderstorms with possible hail", "violent, dangerous thunderstorm activity", "extreme convective weather"})
		}
		return n.choose([]string{"developing thunderstorm activity", "isolated but intense thunderstorms", "scattered convective showers"})

	case PatternSnow:
		switch a.Intensity {
		case IntensityHeavy, IntensityExtreme:
			return n.choose([]string{"heavy, abundant snowfall", "strong snowfall", "copious snow"})
		case IntensityModerate:
			return n.choose([]string{"moderate, steady snowfall", "medium-intensity snow", "continuous snowfall"})
		default:
			return n.choose([]string{"light, scattered snowfall", "weak snow or sleet", "intermittent snow"})
		}

	case PatternFreezing:
		return n.choose([]string{"freezing precipitation with a risk of ice", "dangerous freezing rain", "freezing rain and ice on the ground"})

	default:
		return pick(
			[]string{"variable, uncertain weather", "changeable conditions", "an unsettled picture"},
			[]string{"stable weather", "a quiet night", "calm conditions"},
		)
	}
}

// windPhrase describes wind. Under heavy precipitation wind is only
// mentioned when it is strong on its own.
func (n Narrator) windPhrase(wind, gust float64, severePrecip bool) string {
	if severePrecip && wind < 30 && gust < 40 {
		return ""
	}
	switch {
	case gust >= 60:
		return n.choose([]string{"violent gusts up to " + formatInt(gust) + " km/h", "stormy wind peaking at " + formatInt(gust) + " km/h", "gale conditions with extreme gusts"})
	case gust >= 45:
		return n.choose([]string{"strong gusts up to " + formatInt(gust) + " km/h", "intense wind with notable peaks", "strong, windy conditions"})
	case gust >= 30 && wind >= 20:
		return n.choose([]string{"sustained wind gusting to " + formatInt(gust) + " km/h", "steady, gusty wind", "brisk, irregular wind"})
	case wind >= 25:
		return n.choose([]string{"moderate, steady wind", "sustained but regular wind", "a persistent fresh breeze"})
	case wind >= 15:
		return n.choose([]string{"a pleasant breeze", "a moderate, agreeable breeze", "light wind keeping the air moving"})
	case wind < 8:
		return n.choose([]string{"calm, still air", "flat calm", "no significant wind"})
	default:
		return ""
	}
}

// tempPhrases returns the daytime temperature phrase and, when the range is
// wide, a temperature swing phrase.
func (n Narrator) tempPhrases(temps []Reading) []string {
	minT, maxT, avg, ok := stats(temps)
	if !ok {
		return nil
	}

	var pool []string
	switch {
	case avg >= 35:
		pool = []string{"scorching, oppressive temperatures", "extreme, dangerous heat", "unbearable heat"}
	case avg >= 30:
		pool = []string{"hot, sunny weather", "high summer temperatures", "intense but pleasant warmth"}
	case avg >= 25:
		pool = []string{"pleasant, mild temperatures", "comfortable warmth", "ideal temperatures for outdoor activities"}
	case avg >= 20:
		pool = []string{"mild, temperate weather", "gentle spring-like temperatures", "balanced temperatures"}
	case avg >= 15:
		pool = []string{"fresh, lively temperatures", "crisp but pleasant weather", "cool, invigorating air"}
	case avg >= 10:
		pool = []string{"cool, sharp weather", "moderate wintry temperatures", "cold but bearable air"}
	case avg >= 5:
		pool = []string{"cold, harsh temperatures", "severe wintry weather", "icy, biting air"}
	default:
		pool = []string{"bitter, polar weather", "freezing temperatures", "dangerous biting cold"}
	}
	phrases := []string{n.choose(pool)}

	switch spread := maxT - minT; {
	case spread >= 10:
		phrases = append(phrases, n.choose([]string{"large temperature swings", "marked temperature changes", "wide temperature range"}))
	case spread >= 8:
		phrases = append(phrases, n.choose([]string{"moderate temperature swings", "some temperature variation"}))
	}
	return phrases
}
