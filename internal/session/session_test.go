package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/OCAP2/missioncontrol/internal/console"
	"github.com/OCAP2/missioncontrol/internal/mission"
	"github.com/OCAP2/missioncontrol/internal/stats/statstest"
)

const allClear = "y\ny\ny\ny\n"

type spyRecorder struct {
	steps    []mission.Snapshot
	outcomes []mission.Snapshot
	onStep   func()
}

func (r *spyRecorder) RecordStep(_ context.Context, s mission.Snapshot) {
	r.steps = append(r.steps, s)
	if r.onStep != nil {
		r.onStep()
	}
}

func (r *spyRecorder) RecordOutcome(_ context.Context, s mission.Snapshot) {
	r.outcomes = append(r.outcomes, s)
}

// syncBuffer lets the test read output while the session is still writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestController(t *testing.T, script string, rng *statstest.Sequence, opts ...Option) (*Controller, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	term := console.New(strings.NewReader(script), &out)
	opts = append([]Option{WithMissionOptions(mission.WithRand(rng), mission.WithPace(0))}, opts...)

	c, err := New(term, opts...)
	require.NoError(t, err)
	return c, &out
}

func TestTotals_Add(t *testing.T) {
	var totals Totals

	totals.Add(mission.Snapshot{State: mission.Aborted})
	totals.Add(mission.Snapshot{State: mission.Exploded, FlightTime: 3.7})
	totals.Add(mission.Snapshot{State: mission.Succeeded, FlightTime: 7, TravelDistance: 175, FuelBurned: 1000})

	assert.Equal(t, 3, totals.Attempts)
	assert.Equal(t, 1, totals.Aborted)
	assert.Equal(t, 1, totals.Explosions)
	assert.Equal(t, 1, totals.Successes)
	assert.InDelta(t, 10.7, totals.FlightTime, 1e-9)
	assert.Equal(t, 175.0, totals.TravelDistance)
	assert.Equal(t, 1000.0, totals.FuelBurned)
}

func TestRun_TwoMissions(t *testing.T) {
	script := "Alpha\n" +
		"y\nn\n" + // second checklist item declined
		"n\n" + // no retry
		"y\n" + // another mission
		"Beta\n" +
		allClear +
		"n\n"
	// Beta: abort and explosion rolls miss, then every fudge factor is 0.8
	rng := statstest.NewSequence(0, 0.5, 0.5)
	c, out := newTestController(t, script, rng)

	require.NoError(t, c.Run(context.Background()))

	totals := c.Totals()
	assert.Equal(t, 2, totals.Attempts)
	assert.Equal(t, 1, totals.Aborted)
	assert.Equal(t, 0, totals.Explosions)
	assert.Equal(t, 1, totals.Successes)
	assert.Equal(t, 160.0, totals.TravelDistance)
	assert.Equal(t, 8.0, totals.FlightTime)
	assert.InDelta(t, 8*0.8*mission.EstimatedBurnRate, totals.FuelBurned, 1e-6)

	text := out.String()
	assert.Contains(t, text, "Welcome to Mission Control!")
	assert.Contains(t, text, "Executing mission: Alpha.")
	assert.Contains(t, text, "Executing mission: Beta.")
	assert.Contains(t, text, "Would you like to retry mission: Alpha? (y/n):")
	assert.Contains(t, text, "Session statistics:")
	assert.Contains(t, text, "  Distance traveled(km): 160.00")
	assert.Contains(t, text, "  Missions aborted:      1")
	assert.Contains(t, text, "  Explosions:            0")
	assert.Contains(t, text, "  Missions succeeded:    1")
	assert.Contains(t, text, "  Flight time(m):        8.00")

	assert.Equal(t, "Beta", c.Current().Name())
}

func TestRun_RetryAfterAbort(t *testing.T) {
	script := "Alpha\n" + allClear + "y\n" + allClear + "n\n"
	// first attempt hits the abort roll, second flies at nominal speed
	rng := statstest.NewSequence(0.5, 0.1)
	rec := &spyRecorder{}
	c, out := newTestController(t, script, rng, WithRecorder(rec))

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "Executing mission: Alpha."))
	assert.Contains(t, text, "The launch was aborted!")
	assert.Equal(t, 1, strings.Count(text, "Mission plan:"), "retry reuses the mission")

	totals := c.Totals()
	assert.Equal(t, 2, totals.Attempts)
	assert.Equal(t, 1, totals.Aborted)
	assert.Equal(t, 1, totals.Successes)
	assert.Equal(t, 175.0, totals.TravelDistance)
	assert.Equal(t, 7.0, totals.FlightTime)

	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, mission.Aborted, rec.outcomes[0].State)
	assert.Equal(t, 1, rec.outcomes[0].Attempt)
	assert.Equal(t, mission.Succeeded, rec.outcomes[1].State)
	assert.Equal(t, 2, rec.outcomes[1].Attempt)
	assert.Len(t, rec.steps, 7)
}

func TestRun_Explosion(t *testing.T) {
	script := "Bravo\n" + allClear + "n\n"
	rng := statstest.NewSequence(0, 0.5, 0.1, 0.5)
	c, out := newTestController(t, script, rng)

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "The rocket exploded! Mission: Bravo failed.")
	assert.NotContains(t, text, "retry mission")

	totals := c.Totals()
	assert.Equal(t, 1, totals.Explosions)
	assert.Equal(t, 0, totals.Aborted)
	assert.InDelta(t, 3.7, totals.FlightTime, 1e-9)
	assert.Zero(t, totals.TravelDistance)
}

func TestRun_AbortedWithoutRetry(t *testing.T) {
	script := "Charlie\n" + "n\n" + "n\n" + "n\n"
	c, out := newTestController(t, script, statstest.NewSequence(0))

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 1, c.Totals().Aborted)
	assert.Equal(t, 1, strings.Count(out.String(), "Executing mission: Charlie."))
}

func TestRun_InputClosed(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "before mission name", script: ""},
		{name: "during checklist", script: "Delta\ny\n"},
		{name: "at another mission prompt", script: "Delta\nn\nn\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestController(t, tt.script, statstest.NewSequence(0.5))

			err := c.Run(context.Background())
			require.ErrorIs(t, err, console.ErrInputClosed)
			assert.Contains(t, out.String(), "Session statistics:")
		})
	}
}

func TestRun_CanceledMidFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &spyRecorder{onStep: cancel}
	c, out := newTestController(t, "Echo\n"+allClear, statstest.NewSequence(0.5), WithRecorder(rec))

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	totals := c.Totals()
	assert.Equal(t, 1, totals.Attempts)
	assert.Equal(t, 50.0, totals.TravelDistance)
	assert.Equal(t, 2.0, totals.FlightTime)
	assert.Zero(t, totals.Successes)
	assert.Zero(t, totals.Aborted)
	assert.Zero(t, totals.Explosions)

	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, mission.Flying, rec.outcomes[0].State)
	assert.Contains(t, out.String(), "  Distance traveled(km): 50.00")
}

func TestRun_CanceledAtPrompt(t *testing.T) {
	tests := []struct {
		name   string
		script string
		prompt string
	}{
		{name: "mission name", script: "", prompt: "Please provide a name for the mission:"},
		{name: "checklist", script: "Golf\ny\n", prompt: "Disengage release structure? (y/n):"},
		{name: "retry", script: "Golf\nn\n", prompt: "Would you like to retry mission: Golf? (y/n):"},
		{name: "another mission", script: "Golf\nn\nn\n", prompt: "Would you like to initiate another mission? (y/n):"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the pipe stays open, so only cancellation can end the wait
			pr, pw := io.Pipe()
			t.Cleanup(func() { _ = pw.Close() })
			if tt.script != "" {
				go func() { _, _ = io.WriteString(pw, tt.script) }()
			}

			out := &syncBuffer{}
			term := console.New(pr, out)
			c, err := New(term, WithMissionOptions(mission.WithRand(statstest.NewSequence(0.5)), mission.WithPace(0)))
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- c.Run(ctx) }()

			require.Eventually(t, func() bool {
				return strings.Contains(out.String(), tt.prompt)
			}, time.Second, 5*time.Millisecond)
			cancel()

			select {
			case err := <-done:
				require.ErrorIs(t, err, context.Canceled)
			case <-time.After(time.Second):
				t.Fatal("session kept waiting for input after cancellation")
			}
			assert.Contains(t, out.String(), "Session statistics:")
		})
	}
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]float64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	values := map[string]float64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					values[m.Name] += dp.Value
				}
			}
		}
	}
	return values
}

func TestRun_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	script := "Alpha\n" + allClear + "y\n" + allClear + "n\n" +
		"y\n" + "Bravo\n" + allClear + "n\n"
	// Alpha aborts on the roll, then flies 7 nominal steps; Bravo explodes
	draws := []float64{0.1}
	for i := 0; i < 2+7*2; i++ {
		draws = append(draws, 0.5)
	}
	draws = append(draws, 0.5, 0.1)
	rng := statstest.NewSequence(0.5, draws...)
	c, _ := newTestController(t, script, rng, WithMeterProvider(mp))

	require.NoError(t, c.Run(context.Background()))

	values := collectMetrics(t, reader)
	assert.Equal(t, 3.0, values["mission.attempts"])
	assert.Equal(t, 1.0, values["mission.aborts"])
	assert.Equal(t, 1.0, values["mission.successes"])
	assert.Equal(t, 1.0, values["mission.explosions"])
	assert.Equal(t, 175.0, values["mission.distance"])
}

func TestRun_RepromptsUnclearAnswer(t *testing.T) {
	script := "Foxtrot\n" + "n\n" + "maybe\n" + "n\n" + "n\n"
	c, out := newTestController(t, script, statstest.NewSequence(0))

	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), console.RetryPrompt)
}
