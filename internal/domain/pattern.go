package domain

// Pattern is the dominant weather category of a window.
type Pattern string

const (
	PatternClear        Pattern = "clear"
	PatternCloudy       Pattern = "cloudy"
	PatternFog          Pattern = "fog"
	PatternLightRain    Pattern = "light_rain"
	PatternModerateRain Pattern = "moderate_rain"
	PatternHeavyRain    Pattern = "heavy_rain"
	PatternStorms       Pattern = "storms"
	PatternSnow         Pattern = "snow"
	PatternFreezing     Pattern = "freezing"
	PatternStable       Pattern = "stable"
)

// Intensity grades precipitation severity independently of the pattern.
type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityHeavy    Intensity = "heavy"
	IntensityExtreme  Intensity = "extreme"
)

// DefaultSevereConfidenceFloor is the minimum confidence reported for storms
// and heavy rain.
const DefaultSevereConfidenceFloor = 0.8

var codeCategories = func() map[int]Pattern {
	table := map[Pattern][]int{
		PatternClear:        {0, 1},
		PatternCloudy:       {2, 3},
		PatternFog:          {45, 48},
		PatternLightRain:    {51, 53, 61, 80},
		PatternModerateRain: {55, 63, 81},
		PatternHeavyRain:    {65, 82},
		PatternStorms:       {95, 96, 99},
		PatternSnow:         {71, 73, 75, 77, 85, 86},
		PatternFreezing:     {56, 57, 66, 67},
	}
	m := make(map[int]Pattern)
	for p, codes := range table {
		for _, c := range codes {
			m[c] = p
		}
	}
	return m
}()

// CodeCategory returns the pattern category of a WMO code.
func CodeCategory(code int) (Pattern, bool) {
	p, ok := codeCategories[code]
	return p, ok
}

// PatternResult is the outcome of PatternAnalyzer.Analyze.
type PatternResult struct {
	Pattern    Pattern         `json:"pattern"`
	Intensity  Intensity       `json:"intensity"`
	Confidence float64         `json:"confidence"`
	MaxPrecip  float64         `json:"max_precip"`
	AvgPrecip  float64         `json:"avg_precip"`
	MaxProb    float64         `json:"max_prob"`
	AvgProb    float64         `json:"avg_prob"`
	Counts     map[Pattern]int `json:"counts,omitempty"`
}

// PatternAnalyzer classifies a window into one dominant pattern.
type PatternAnalyzer struct {
	// SevereConfidenceFloor raises the confidence of storms and heavy rain.
	// Zero uses DefaultSevereConfidenceFloor.
	SevereConfidenceFloor float64
}

// Analyze resolves the dominant pattern by severity first, so a single storm
// hour is never outvoted by clear hours.
func (a PatternAnalyzer) Analyze(codes []int, precip, precipProb []Reading) PatternResult {
	if len(codes) == 0 {
		return PatternResult{Pattern: PatternStable, Intensity: IntensityLight}
	}

	counts := make(map[Pattern]int)
	for _, c := range codes {
		if p, ok := codeCategories[c]; ok {
			counts[p]++
		}
	}

	_, maxPrecip, avgPrecip, _ := stats(precip)
	_, maxProb, avgProb, _ := stats(precipProb)

	var (
		dominant = PatternStable
		count    int
	)
	switch {
	case counts[PatternStorms] > 0:
		dominant, count = PatternStorms, counts[PatternStorms]
	case counts[PatternHeavyRain] > 0 || maxPrecip >= 6:
		dominant, count = PatternHeavyRain, max(counts[PatternHeavyRain], 1)
	case counts[PatternModerateRain] > 0 || (maxPrecip >= 3 && maxProb >= 60):
		dominant, count = PatternModerateRain, max(counts[PatternModerateRain], 1)
	case counts[PatternLightRain] > 0 || (maxPrecip >= 1 && maxProb >= 70):
		dominant, count = PatternLightRain, max(counts[PatternLightRain], 1)
	case counts[PatternSnow] > 0:
		dominant, count = PatternSnow, counts[PatternSnow]
	case counts[PatternFreezing] > 0:
		dominant, count = PatternFreezing, counts[PatternFreezing]
	default:
		// Ties keep the earlier category.
		for _, p := range []Pattern{PatternFog, PatternCloudy, PatternClear} {
			if counts[p] > count {
				dominant, count = p, counts[p]
			}
		}
	}

	confidence := float64(count) / float64(len(codes))
	if dominant == PatternStorms || dominant == PatternHeavyRain {
		confidence = max(confidence, a.floor())
	}

	return PatternResult{
		Pattern:    dominant,
		Intensity:  intensityOf(counts, maxPrecip, maxProb),
		Confidence: confidence,
		MaxPrecip:  maxPrecip,
		AvgPrecip:  avgPrecip,
		MaxProb:    maxProb,
		AvgProb:    avgProb,
		Counts:     counts,
	}
}

func (a PatternAnalyzer) floor() float64 {
	if a.SevereConfidenceFloor <= 0 {
		return DefaultSevereConfidenceFloor
	}
	return a.SevereConfidenceFloor
}

func intensityOf(counts map[Pattern]int, maxPrecip, maxProb float64) Intensity {
	switch {
	case counts[PatternStorms] > 0 || maxPrecip >= 8:
		return IntensityExtreme
	case counts[PatternHeavyRain] > 0 || maxPrecip >= 5 || (maxPrecip >= 3 && maxProb >= 80):
		return IntensityHeavy
	case counts[PatternModerateRain] > 0 || maxPrecip >= 2 || (maxPrecip >= 1 && maxProb >= 70):
		return IntensityModerate
	default:
		return IntensityLight
	}
}

// IsPrecipitation reports whether the pattern describes rain.
func (p Pattern) IsPrecipitation() bool {
	return p == PatternLightRain || p == PatternModerateRain || p == PatternHeavyRain
}

// IsSevere reports whether the intensity masks secondary narrative details.
func (i Intensity) IsSevere() bool {
	return i == IntensityHeavy || i == IntensityExtreme
}
