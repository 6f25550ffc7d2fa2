package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/OCAP2/missioncontrol/internal/config"
	"github.com/OCAP2/missioncontrol/internal/console"
	"github.com/OCAP2/missioncontrol/internal/logging"
	"github.com/OCAP2/missioncontrol/internal/mission"
	intOtel "github.com/OCAP2/missioncontrol/internal/otel"
	"github.com/OCAP2/missioncontrol/internal/session"
	"github.com/OCAP2/missioncontrol/internal/telemetry"
)

// ConfigDirEnv overrides the directory searched for the config file.
const ConfigDirEnv = config.EnvPrefix + "_CONFIGDIR"

var (
	// SessionStartTime names the session log file
	SessionStartTime = time.Now()

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger
)

func main() {
	os.Exit(run())
}

func run() int {
	SlogManager = logging.NewSlogManager(os.Stderr)
	SlogManager.Setup(nil, "info")
	Logger = SlogManager.Logger()

	configDir := getConfigDir()
	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err, "dir", configDir)
	}

	logCfg := config.GetLoggingConfig()

	var logFile *os.File
	if logCfg.LogsDir != "" {
		f, err := logging.OpenLogFile(logCfg.LogsDir, SessionStartTime)
		if err != nil {
			Logger.Error("Failed to create/open log file!", "error", err, "dir", logCfg.LogsDir)
		} else {
			logFile = f
			defer logFile.Close()
		}
	}

	var extra []slog.Handler
	if gl := config.GetGraylogConfig(); gl.Enabled {
		h, closer, err := logging.NewGraylogHandler(gl.Address, logCfg.Level)
		if err != nil {
			Logger.Error("Failed to connect Graylog output", "error", err, "address", gl.Address)
		} else {
			extra = append(extra, h)
			defer closer.Close()
		}
	}

	// a nil *os.File must not reach Setup as a non-nil io.Writer
	var fileWriter io.Writer
	if logFile != nil {
		fileWriter = logFile
	}
	SlogManager.Setup(fileWriter, logCfg.Level, extra...)
	Logger = SlogManager.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	influx := telemetry.NewManager(telemetryLogger(logFile, logCfg.Level), config.GetInfluxConfig())
	if err := influx.Connect(ctx); err != nil && !errors.Is(err, telemetry.ErrDisabled) {
		Logger.Error("Failed to set up InfluxDB telemetry", "error", err)
	}
	defer influx.Close()

	otelProvider := newOTelProvider(logFile)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			Logger.Error("Failed to shut down OTel provider", "error", err)
		}
	}()

	flight := config.GetFlightConfig()
	seed := flight.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	Logger.Info("Session starting", "seed", seed, "pace", flight.PaceInterval)

	term := console.New(os.Stdin, os.Stdout)
	opts := []session.Option{
		session.WithLogger(Logger),
		session.WithMeterProvider(otelProvider.MeterProvider()),
		session.WithMissionOptions(
			mission.WithRand(rand.New(rand.NewSource(seed))),
			mission.WithPace(flight.PaceInterval),
		),
	}
	if influx.IsValid {
		opts = append(opts, session.WithRecorder(influx))
	}

	ctrl, err := session.New(term, opts...)
	if err != nil {
		Logger.Error("Failed to create session", "error", err)
		return 1
	}

	// Set up dynamic state callbacks for logging
	SlogManager.CurrentMission = func() (string, int) {
		if m := ctrl.Current(); m != nil {
			return m.Name(), m.Attempt()
		}
		return "", 0
	}

	if err := ctrl.Run(ctx); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(os.Stderr, "interrupted, ending session")
		case errors.Is(err, console.ErrInputClosed):
			fmt.Fprintln(os.Stderr, "input closed, ending session")
		}
		return 1
	}
	return 0
}

// newOTelProvider exports metrics to the session log, or stderr without one.
// A provider that cannot be built falls back to a disabled one.
func newOTelProvider(logFile *os.File) *intOtel.Provider {
	mc := config.GetMetricsConfig()

	var w io.Writer = os.Stderr
	if logFile != nil {
		w = logFile
	}

	p, err := intOtel.New(intOtel.Config{
		Enabled:     mc.Enabled,
		ServiceName: mc.ServiceName,
		Interval:    mc.Interval,
		Writer:      w,
	})
	if err != nil {
		Logger.Error("Failed to initialize OTel provider", "error", err)
		p, _ = intOtel.New(intOtel.Config{})
		return p
	}
	if p.Enabled() {
		Logger.Info("OTel metrics enabled", "interval", mc.Interval)
	}
	return p
}

// getConfigDir returns the override directory, else the executable's folder.
func getConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// telemetryLogger writes to the session log when there is one; otherwise
// only warnings reach stderr so the game output stays clean.
func telemetryLogger(file *os.File, level string) zerolog.Logger {
	if file == nil {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
			Level(zerolog.WarnLevel).
			With().Timestamp().Str("component", "telemetry").Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(file).Level(lvl).
		With().Timestamp().Str("component", "telemetry").Logger()
}
