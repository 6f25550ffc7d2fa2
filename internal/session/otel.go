package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/OCAP2/missioncontrol/internal/mission"
)

const instrumentationName = "github.com/OCAP2/missioncontrol/internal/session"

func meter(mp metric.MeterProvider) metric.Meter {
	if mp == nil {
		return otel.Meter(instrumentationName)
	}
	return mp.Meter(instrumentationName)
}

type metrics struct {
	attempts   metric.Int64Counter
	aborts     metric.Int64Counter
	explosions metric.Int64Counter
	successes  metric.Int64Counter
	distance   metric.Float64Counter
}

// newMetrics records through mp, or the global OTel meter when mp is nil.
func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	m := meter(mp)
	mt := &metrics{}

	var err error
	mt.attempts, err = m.Int64Counter(
		"mission.attempts",
		metric.WithDescription("Launch procedures started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating attempts counter: %w", err)
	}

	mt.aborts, err = m.Int64Counter(
		"mission.aborts",
		metric.WithDescription("Launch attempts aborted by checklist or abort roll"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating aborts counter: %w", err)
	}

	mt.explosions, err = m.Int64Counter(
		"mission.explosions",
		metric.WithDescription("Launch attempts that exploded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating explosions counter: %w", err)
	}

	mt.successes, err = m.Int64Counter(
		"mission.successes",
		metric.WithDescription("Missions that reached low earth orbit"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating successes counter: %w", err)
	}

	mt.distance, err = m.Float64Counter(
		"mission.distance",
		metric.WithDescription("Distance traveled"),
		metric.WithUnit("km"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating distance counter: %w", err)
	}

	return mt, nil
}

func (mt *metrics) record(ctx context.Context, s mission.Snapshot) {
	attrs := metric.WithAttributes(attribute.String("mission", s.Name))

	mt.attempts.Add(ctx, 1, attrs)
	mt.distance.Add(ctx, s.TravelDistance, attrs)

	switch s.State {
	case mission.Aborted:
		mt.aborts.Add(ctx, 1, attrs)
	case mission.Exploded:
		mt.explosions.Add(ctx, 1, attrs)
	case mission.Succeeded:
		mt.successes.Add(ctx, 1, attrs)
	}
}
