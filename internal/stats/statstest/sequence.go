// Package statstest provides a scripted random source for deterministic tests.
package statstest

// Sequence returns a fixed series of floats, then repeats a fallback value.
// It satisfies stats.Source.
type Sequence struct {
	values   []float64
	fallback float64
	drawn    int
}

// NewSequence returns a Sequence that yields values in order and fallback afterwards.
func NewSequence(fallback float64, values ...float64) *Sequence {
	return &Sequence{values: values, fallback: fallback}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	defer func() { s.drawn++ }()
	if s.drawn < len(s.values) {
		return s.values[s.drawn]
	}
	return s.fallback
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int {
	return s.drawn
}
