package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OCAP2/missioncontrol/internal/stats/statstest"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"grouped millions", 1234567.891, "1,234,567.89"},
		{"zero", 0, "0.00"},
		{"half rounds up across a group", 999.995, "1,000.00"},
		{"average speed", 1500, "1,500.00"},
		{"estimated flight time", 6.4, "6.40"},
		{"distance goal", 160, "160.00"},
		{"fuel capacity", 1514100, "1,514,100.00"},
		{"small half", 0.005, "0.01"},
		{"below half", 2.344, "2.34"},
		{"no grouping under a thousand", 999.99, "999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "3", FormatCount(3))
	assert.Equal(t, "12,345", FormatCount(12345))
}

func TestRound(t *testing.T) {
	tests := []struct {
		input  float64
		places int
		want   float64
	}{
		{1.005, 2, 1.01},
		{1.004, 2, 1.0},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{160, 2, 160},
		{6.4, 2, 6.4},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round(tt.input, tt.places), 1e-9, "Round(%v, %d)", tt.input, tt.places)
	}
}

func TestFudge_Bounds(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		want float64
	}{
		{"lowest draw", 0, 1200},
		{"middle draw", 0.5, 1500},
		{"quarter draw", 0.25, 1350},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fudge(statstest.NewSequence(tt.draw), 1500)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFudge_UpperBoundOpen(t *testing.T) {
	got := Fudge(statstest.NewSequence(0.9999999999999999), 1500)
	assert.Less(t, got, 1500*FudgeHigh)
}

func TestFudge_RandomRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, v := range []float64{1500, 168233, 1, 0.5} {
		for i := 0; i < 1000; i++ {
			got := Fudge(rng, v)
			assert.GreaterOrEqual(t, got, FudgeLow*v)
			assert.Less(t, got, FudgeHigh*v)
		}
	}
}
