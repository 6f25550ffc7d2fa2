package mission

import (
	"context"
	"fmt"
	"time"

	"github.com/OCAP2/missioncontrol/internal/console"
	"github.com/OCAP2/missioncontrol/internal/stats"
)

// ExecuteLaunchProcedure runs the checklist dialog and, if every item is
// confirmed, rolls for abort and explosion before flying to orbit. A declined
// item aborts the attempt with no rolls. The returned error is only for input
// failures, cancellation, or launching a mission that is not planned.
func (m *Mission) ExecuteLaunchProcedure(ctx context.Context) error {
	if m.state != Planned {
		return fmt.Errorf("launching %q in state %s: %w", m.name, m.state, ErrNotPlanned)
	}
	m.attempt++

	fmt.Fprintln(m.term)
	for _, item := range Checklist {
		ok, err := console.Affirm(ctx, m.term, item)
		if err != nil {
			return fmt.Errorf("checklist %q: %w", item, err)
		}
		if !ok {
			m.state = Aborted
			m.logger.Info("Launch aborted by checklist", "item", item)
			return nil
		}
	}

	if m.checkForAbort() {
		return nil
	}
	if m.checkForExplosion() {
		return nil
	}

	return m.launch(ctx)
}

// checkForAbort triggers an abort on 33% of launches.
func (m *Mission) checkForAbort() bool {
	if m.rng.Float64() < AbortChance {
		m.state = Aborted
		m.logger.Info("Launch aborted by abort roll")
		return true
	}
	return false
}

// checkForExplosion triggers an explosion on 20% of launches that were not
// already aborted. The flight time is back-filled to a point mid-flight.
func (m *Mission) checkForExplosion() bool {
	if m.rng.Float64() < ExplosionChance {
		m.state = Exploded
		m.flightTime = 1 + m.rng.Float64()*(EstimatedFlightTime-1)
		m.logger.Info("Rocket exploded", "flightTime", m.flightTime)
		return true
	}
	return false
}

func (m *Mission) launch(ctx context.Context) error {
	m.state = Flying
	fmt.Fprintln(m.term)
	fmt.Fprintf(m.term, "Launched! %s is away, en route to low earth orbit.\n", m.name)

	for m.travelDistance < TravelDistanceGoal {
		if err := m.flyRocket(ctx); err != nil {
			return err
		}
		m.printStatistics()
		if m.recorder != nil {
			m.recorder.RecordStep(ctx, m.Snapshot())
		}
	}

	m.state = Succeeded
	m.logger.Info("Mission reached orbit",
		"flightTime", m.flightTime,
		"travelDistance", m.travelDistance,
		"fuelBurned", m.fuelBurned,
	)
	fmt.Fprintln(m.term)
	fmt.Fprintf(m.term, "Mission Success! %s has safely arrived in low earth orbit.\n", m.name)
	return nil
}

// flyRocket advances one time increment. Time moves first, so the speed read
// in the same step always sees a non-zero flight time.
func (m *Mission) flyRocket(ctx context.Context) error {
	m.flightTime += TimeIncrement

	m.speed = m.averageSpeed()
	m.travelDistance += m.speed / 60.0 * TimeIncrement

	m.fuelBurned += m.burnRate() * TimeIncrement

	return m.wait(ctx)
}

// averageSpeed returns a fudged speed in km/h, or 0 before any flight time.
func (m *Mission) averageSpeed() float64 {
	if m.flightTime == 0 {
		return 0
	}
	return stats.Fudge(m.rng, EstimatedAverageSpeed)
}

// burnRate returns a fudged burn rate in liters/minute.
func (m *Mission) burnRate() float64 {
	return stats.Fudge(m.rng, EstimatedBurnRate)
}

func (m *Mission) wait(ctx context.Context) error {
	if m.pace <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(m.pace)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
