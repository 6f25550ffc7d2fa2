// Package stats holds the numeric helpers shared by missions and the session:
// random perturbation of nominal values and display formatting.
package stats

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fudge factor bounds, applied as [FudgeLow, FudgeHigh).
const (
	FudgeLow  = 0.8
	FudgeHigh = 1.2
)

// Source yields uniform floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

var printer = message.NewPrinter(language.English)

// Fudge returns v scaled by a factor drawn uniformly from [0.8, 1.2).
func Fudge(rng Source, v float64) float64 {
	factor := FudgeLow + (FudgeHigh-FudgeLow)*rng.Float64()
	// keep the upper bound open
	if factor >= FudgeHigh {
		factor = math.Nextafter(FudgeHigh, 0)
	}
	return v * factor
}

// Round rounds v half away from zero at the given number of decimal places,
// working on the shortest decimal representation of v so that 999.995 becomes
// 1000 rather than falling to the binary value just below it.
func Round(v float64, places int) float64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= places {
		return v
	}

	end := dot + 1 + places
	if places == 0 {
		end = dot
	}
	truncated, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return v
	}
	if s[dot+1+places] >= '5' {
		step := math.Pow10(-places)
		if v < 0 {
			truncated -= step
		} else {
			truncated += step
		}
	}
	return truncated
}

// Format renders v rounded to two decimals with thousands separators,
// e.g. 1234567.891 becomes "1,234,567.89" and 0 becomes "0.00".
func Format(v float64) string {
	return printer.Sprintf("%.2f", Round(v, 2))
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
