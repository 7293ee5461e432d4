package domain

import "math/rand/v2"

// Chooser picks one phrase from a pool of equivalent candidates.
type Chooser interface {
	Choose(candidates []string) string
}

// Phrase selection modes accepted by NewChooser.
const (
	PhraseModeRandom = "random"
	PhraseModeFirst  = "first"
)

// NewChooser returns the chooser for mode, defaulting to random selection.
func NewChooser(mode string) Chooser {
	if mode == PhraseModeFirst {
		return FirstChooser{}
	}
	return RandomChooser{}
}

// RandomChooser draws uniformly. It is safe for concurrent use.
type RandomChooser struct{}

func (RandomChooser) Choose(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rand.IntN(len(candidates))]
}

// FirstChooser always returns the first candidate, for reproducible output.
type FirstChooser struct{}

func (FirstChooser) Choose(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}
