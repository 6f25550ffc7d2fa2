// Package mission models a single rocket launch attempt: the pre-launch
// checklist, the abort and explosion rolls, and the minute-by-minute flight
// toward low earth orbit.
package mission

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/OCAP2/missioncontrol/internal/console"
	"github.com/OCAP2/missioncontrol/internal/stats"
)

// Nominal mission constants
const (
	TravelDistanceGoal    = 160.0       // kilometers
	PayloadCapacity       = 50_000.0    // kilograms
	FuelCapacity          = 1_514_100.0 // liters
	EstimatedBurnRate     = 168_233.0   // liters/minute
	EstimatedAverageSpeed = 1500.0      // kilometers/hour

	// Time is distance / speed, times 60 to get minutes.
	EstimatedFlightTime = TravelDistanceGoal / EstimatedAverageSpeed * 60.0 // minutes
)

// Outcome rolls, checked once the checklist passes
const (
	AbortChance     = 0.33
	ExplosionChance = 0.20
)

// TimeIncrement is the simulated flight time per step, in minutes.
const TimeIncrement = 1.0

// DefaultPace is the real delay between flight steps.
const DefaultPace = time.Second

// Checklist is the ordered pre-launch confirmation sequence.
var Checklist = []string{
	"Enable stage 1 afterburner? (y/n):",
	"Disengage release structure? (y/n):",
	"Perform cross-checks? (y/n):",
	"Go for Launch? (y/n):",
}

// ErrNotPlanned is returned when a launch is attempted on a mission that
// already flew, aborted or exploded without being reset.
var ErrNotPlanned = errors.New("mission is not in planned state")

// Snapshot is a point-in-time copy of a mission's counters.
type Snapshot struct {
	Name           string
	Attempt        int
	State          State
	FlightTime     float64 // minutes
	TravelDistance float64 // kilometers
	FuelBurned     float64 // liters
	Speed          float64 // kilometers/hour, last step
}

// Recorder receives flight telemetry. Implementations must not block the flight.
type Recorder interface {
	RecordStep(ctx context.Context, s Snapshot)
	RecordOutcome(ctx context.Context, s Snapshot)
}

// Mission is a single launch attempt.
type Mission struct {
	name string

	flightTime     float64
	fuelBurned     float64
	travelDistance float64
	speed          float64
	state          State
	attempt        int

	term     console.Terminal
	rng      stats.Source
	pace     time.Duration
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Mission.
type Option func(*Mission)

// WithRand sets the random source used for rolls and fudging.
func WithRand(rng stats.Source) Option {
	return func(m *Mission) {
		m.rng = rng
	}
}

// WithPace sets the delay between flight steps. Zero disables pacing.
func WithPace(d time.Duration) Option {
	return func(m *Mission) {
		m.pace = d
	}
}

// WithRecorder attaches a telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Mission) {
		m.recorder = r
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mission) {
		m.logger = l
	}
}

// New creates a planned mission and prints its plan to term.
func New(name string, term console.Terminal, opts ...Option) *Mission {
	m := &Mission{
		name:   name,
		term:   term,
		pace:   DefaultPace,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m.Reset()
	m.printPlan()
	return m
}

// Reset returns the mission to the planned state with zeroed counters so it
// can be retried under the same name. The attempt counter is kept.
func (m *Mission) Reset() {
	m.flightTime = 0
	m.travelDistance = 0
	m.fuelBurned = 0
	m.speed = 0
	m.state = Planned
}

// Name returns the mission name.
func (m *Mission) Name() string { return m.name }

// State returns the current lifecycle state.
func (m *Mission) State() State { return m.state }

// Aborted reports whether the last attempt was aborted.
func (m *Mission) Aborted() bool { return m.state == Aborted }

// Exploded reports whether the last attempt ended in an explosion.
func (m *Mission) Exploded() bool { return m.state == Exploded }

// Attempt returns how many times the launch procedure has been started.
func (m *Mission) Attempt() int { return m.attempt }

// FlightTime returns accumulated flight minutes.
func (m *Mission) FlightTime() float64 { return m.flightTime }

// TravelDistance returns accumulated kilometers.
func (m *Mission) TravelDistance() float64 { return m.travelDistance }

// FuelBurned returns accumulated liters burned.
func (m *Mission) FuelBurned() float64 { return m.fuelBurned }

// Snapshot returns a copy of the mission's counters and state.
func (m *Mission) Snapshot() Snapshot {
	return Snapshot{
		Name:           m.name,
		Attempt:        m.attempt,
		State:          m.state,
		FlightTime:     m.flightTime,
		TravelDistance: m.travelDistance,
		FuelBurned:     m.fuelBurned,
		Speed:          m.speed,
	}
}
