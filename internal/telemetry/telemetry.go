// Package telemetry streams flight steps and mission outcomes to InfluxDB.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/OCAP2/missioncontrol/internal/config"
	"github.com/OCAP2/missioncontrol/internal/mission"
)

// Measurement names
const (
	StepMeasurement    = "flight_step"
	OutcomeMeasurement = "mission_outcome"
)

// retention for the telemetry bucket
const retentionSeconds = 60 * 60 * 24 * 30

// ErrDisabled is returned by Connect when telemetry is switched off in config.
var ErrDisabled = errors.New("influx telemetry disabled")

var _ mission.Recorder = (*Manager)(nil)

// Manager handles the InfluxDB connection and writes. Until Connect succeeds
// every Record call is a no-op.
type Manager struct {
	Client  influxdb2.Client
	Writer  influxdb2_api.WriteAPI
	IsValid bool
	Config  config.InfluxConfig
	Logger  zerolog.Logger
	now     func() time.Time
}

// NewManager creates a new telemetry manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	return &Manager{
		Config: cfg,
		Logger: log,
		now:    time.Now,
	}
}

// Connect establishes a connection to InfluxDB. An unreachable server is not
// an error: the manager stays invalid and telemetry is dropped.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.Config.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.Config.URL(),
		m.Config.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("url", m.Config.URL()).
			Msg("InfluxDB unreachable, flight telemetry disabled")
		return nil
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.IsValid = true
	m.Logger.Info().Str("bucket", m.Config.Bucket).Msg("InfluxDB client initialized")

	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgName := m.Config.Org

	// ensure org exists
	org, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		org, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			return fmt.Errorf("creating organization %s: %w", orgName, err)
		}
	}

	// ensure bucket exists with 30 day retention
	_, err = m.Client.BucketsAPI().FindBucketByName(ctx, m.Config.Bucket)
	if err != nil {
		m.Logger.Info().Str("bucket", m.Config.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, org, m.Config.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			return fmt.Errorf("creating bucket %s: %w", m.Config.Bucket, err)
		}
	}

	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.Config.Org, m.Config.Bucket)

	errorsCh := m.Writer.Errors()
	go func() {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.Config.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}()
}

// RecordStep writes one flight step.
func (m *Manager) RecordStep(_ context.Context, s mission.Snapshot) {
	if !m.IsValid {
		return
	}
	m.Writer.WritePoint(StepPoint(s, m.now()))
}

// RecordOutcome writes the final state of a launch attempt.
func (m *Manager) RecordOutcome(_ context.Context, s mission.Snapshot) {
	if !m.IsValid {
		return
	}
	m.Writer.WritePoint(OutcomePoint(s, m.now()))
}

// Close flushes pending points and closes the client.
func (m *Manager) Close() {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	m.IsValid = false
}

// StepPoint builds the point for one flight step.
func StepPoint(s mission.Snapshot, ts time.Time) *influxdb2_write.Point {
	return addFields(influxdb2_write.NewPointWithMeasurement(StepMeasurement), s).
		AddTag("mission", s.Name).
		SetTime(ts)
}

// OutcomePoint builds the point for a finished launch attempt.
func OutcomePoint(s mission.Snapshot, ts time.Time) *influxdb2_write.Point {
	return addFields(influxdb2_write.NewPointWithMeasurement(OutcomeMeasurement), s).
		AddTag("mission", s.Name).
		AddTag("outcome", s.State.String()).
		SetTime(ts)
}

func addFields(p *influxdb2_write.Point, s mission.Snapshot) *influxdb2_write.Point {
	return p.
		AddField("flight_time_min", s.FlightTime).
		AddField("travel_distance_km", s.TravelDistance).
		AddField("fuel_burned_l", s.FuelBurned).
		AddField("speed_kmh", s.Speed).
		AddField("attempt", s.Attempt)
}
