package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// SlogManager manages slog-based logging for the mission control session.
type SlogManager struct {
	logger  *slog.Logger
	console io.Writer

	// CurrentMission, when set, stamps every record with the mission and
	// attempt being executed. It may be set after Setup.
	CurrentMission MissionSource
}

// NewSlogManager creates a new slog-based logging manager. console receives
// warnings and errors only; it is usually stderr because stdout belongs to the game.
func NewSlogManager(console io.Writer) *SlogManager {
	return &SlogManager{console: console}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handlerOptions(lvl slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// Setup initializes the logging system with console, optional file and any
// extra handlers (Graylog). A nil file disables file output.
func (m *SlogManager) Setup(file io.Writer, level string, extra ...slog.Handler) {
	lvl := parseLevel(level)

	var handlers []slog.Handler

	if m.console != nil {
		consoleLvl := lvl
		if consoleLvl < slog.LevelWarn {
			consoleLvl = slog.LevelWarn
		}
		handlers = append(handlers, slog.NewTextHandler(m.console, handlerOptions(consoleLvl)))
	}

	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOptions(lvl)))
	}

	handlers = append(handlers, extra...)

	m.logger = slog.New(NewMissionHandler(NewMultiHandler(handlers...), m.currentMission))
	m.logger.Info("Logging initialized", "level", level)
}

func (m *SlogManager) currentMission() (string, int) {
	if m.CurrentMission == nil {
		return "", 0
	}
	return m.CurrentMission()
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}
