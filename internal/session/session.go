// Package session drives a run of mission control: it creates missions from
// player input, retries aborted launches on request and keeps session totals.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/missioncontrol/internal/console"
	"github.com/OCAP2/missioncontrol/internal/mission"
	"github.com/OCAP2/missioncontrol/internal/stats"
)

// Controller runs one session of mission control.
type Controller struct {
	term        console.Terminal
	missionOpts []mission.Option
	recorder    mission.Recorder
	logger      *slog.Logger
	meters      metric.MeterProvider
	metrics     *metrics

	totals  Totals
	current *mission.Mission
}

// Option configures a Controller.
type Option func(*Controller)

// WithMissionOptions sets options applied to every mission the session creates.
func WithMissionOptions(opts ...mission.Option) Option {
	return func(c *Controller) {
		c.missionOpts = append(c.missionOpts, opts...)
	}
}

// WithRecorder attaches a telemetry recorder to the session and its missions.
func WithRecorder(r mission.Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithMeterProvider sets where mission counters are recorded. Without it the
// global OTel meter provider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Controller) {
		c.meters = mp
	}
}

// New creates a session controller talking to term.
func New(term console.Terminal, opts ...Option) (*Controller, error) {
	c := &Controller{
		term:   term,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	mt, err := newMetrics(c.meters)
	if err != nil {
		return nil, err
	}
	c.metrics = mt

	return c, nil
}

// Totals returns the running session totals.
func (c *Controller) Totals() Totals {
	return c.totals
}

// Current returns the mission being executed, or nil before the first one.
func (c *Controller) Current() *mission.Mission {
	return c.current
}

// Run prints the welcome banner, loops over missions until the player
// declines another one, then prints the session statistics. The report is
// printed even when the loop ends on an error.
func (c *Controller) Run(ctx context.Context) error {
	fmt.Fprintln(c.term)
	fmt.Fprintln(c.term, "Welcome to Mission Control!")

	err := c.missionLoop(ctx)
	c.printSessionStatistics()

	if err != nil {
		c.logger.Error("Session ended early", "error", err)
		return err
	}
	c.logger.Info("Session finished", "attempts", c.totals.Attempts)
	return nil
}

func (c *Controller) missionLoop(ctx context.Context) error {
	for {
		fmt.Fprintln(c.term)
		name, err := c.term.Ask(ctx, "Please provide a name for the mission:")
		if err != nil {
			return fmt.Errorf("reading mission name: %w", err)
		}

		c.current = mission.New(name, c.term, c.missionOptions()...)
		if err := c.executeMission(ctx); err != nil {
			return err
		}

		fmt.Fprintln(c.term)
		again, err := console.Affirm(ctx, c.term, "Would you like to initiate another mission? (y/n):")
		if err != nil {
			return fmt.Errorf("asking for another mission: %w", err)
		}
		if !again {
			return nil
		}
	}
}

func (c *Controller) missionOptions() []mission.Option {
	opts := append([]mission.Option{mission.WithLogger(c.logger)}, c.missionOpts...)
	if c.recorder != nil {
		opts = append(opts, mission.WithRecorder(c.recorder))
	}
	return opts
}

// executeMission launches the current mission, retrying while it aborts and
// the player asks for another try.
func (c *Controller) executeMission(ctx context.Context) error {
	m := c.current
	for {
		fmt.Fprintln(c.term)
		fmt.Fprintf(c.term, "Executing mission: %s.\n", m.Name())

		err := m.ExecuteLaunchProcedure(ctx)
		if err != nil {
			// a flight cut short still burned fuel
			if m.State() == mission.Flying {
				c.updateSessionStatistics(ctx, m)
			}
			return fmt.Errorf("executing mission %q: %w", m.Name(), err)
		}
		c.updateSessionStatistics(ctx, m)

		switch {
		case m.Exploded():
			c.explosionProtocol(m)
			return nil
		case m.Aborted():
			retry, err := c.missionAbortProtocol(ctx, m)
			if err != nil {
				return err
			}
			if !retry {
				return nil
			}
			m.Reset()
		default:
			return nil
		}
	}
}

// explosionProtocol reports a catastrophic failure; there is nothing to do
// but move on to the next mission.
func (c *Controller) explosionProtocol(m *mission.Mission) {
	fmt.Fprintln(c.term)
	fmt.Fprintf(c.term, "The rocket exploded! Mission: %s failed.\n", m.Name())
}

// missionAbortProtocol offers the player a retry of an aborted mission.
func (c *Controller) missionAbortProtocol(ctx context.Context, m *mission.Mission) (bool, error) {
	fmt.Fprintln(c.term)
	fmt.Fprintln(c.term, "The launch was aborted!")
	fmt.Fprintln(c.term)

	retry, err := console.Affirm(ctx, c.term, fmt.Sprintf("Would you like to retry mission: %s? (y/n):", m.Name()))
	if err != nil {
		return false, fmt.Errorf("asking for retry: %w", err)
	}
	return retry, nil
}

func (c *Controller) updateSessionStatistics(ctx context.Context, m *mission.Mission) {
	s := m.Snapshot()
	c.totals.Add(s)
	c.metrics.record(ctx, s)
	if c.recorder != nil {
		c.recorder.RecordOutcome(ctx, s)
	}
	c.logger.Info("Attempt recorded",
		"outcome", s.State.String(),
		"travelDistance", s.TravelDistance,
		"fuelBurned", s.FuelBurned,
		"flightTime", s.FlightTime,
	)
}

func (c *Controller) printSessionStatistics() {
	t := c.totals
	fmt.Fprintln(c.term)
	fmt.Fprintln(c.term, "Session statistics:")
	fmt.Fprintf(c.term, "  Distance traveled(km): %s\n", stats.Format(t.TravelDistance))
	fmt.Fprintf(c.term, "  Missions aborted:      %s\n", stats.FormatCount(t.Aborted))
	fmt.Fprintf(c.term, "  Explosions:            %s\n", stats.FormatCount(t.Explosions))
	fmt.Fprintf(c.term, "  Missions succeeded:    %s\n", stats.FormatCount(t.Successes))
	fmt.Fprintf(c.term, "  Fuel burned(liters):   %s\n", stats.Format(t.FuelBurned))
	fmt.Fprintf(c.term, "  Flight time(m):        %s\n", stats.Format(t.FlightTime))
}
