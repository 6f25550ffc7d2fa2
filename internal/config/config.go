package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "missioncontrol.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. MISSIONCONTROL_FLIGHT_PACEINTERVAL.
const EnvPrefix = "MISSIONCONTROL"

// FlightConfig holds flight simulation settings
type FlightConfig struct {
	PaceInterval time.Duration `json:"paceInterval" mapstructure:"paceInterval"`
	Seed         int64         `json:"seed" mapstructure:"seed"`
}

// LoggingConfig holds operational logging settings
type LoggingConfig struct {
	Level   string `json:"logLevel" mapstructure:"logLevel"`
	LogsDir string `json:"logsDir" mapstructure:"logsDir"`
}

// InfluxConfig holds InfluxDB telemetry settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL returns the server URL built from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// MetricsConfig holds OpenTelemetry metrics export settings
type MetricsConfig struct {
	Enabled     bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName string        `json:"serviceName" mapstructure:"serviceName"`
	Interval    time.Duration `json:"interval" mapstructure:"interval"`
}

// GraylogConfig holds GELF output settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// SetDefaults registers default values. Load calls it; it is exported so
// callers that skip the file can still rely on the defaults.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")

	viper.SetDefault("flight.paceInterval", "1s")
	viper.SetDefault("flight.seed", 0)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "mission-control")
	viper.SetDefault("influx.bucket", "mission_data")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.serviceName", "missioncontrol")
	viper.SetDefault("metrics.interval", "30s")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults and
// environment overrides stay in effect even when the file cannot be read.
func Load(configDir string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetFlightConfig returns the flight simulation settings.
func GetFlightConfig() FlightConfig {
	return FlightConfig{
		PaceInterval: viper.GetDuration("flight.paceInterval"),
		Seed:         viper.GetInt64("flight.seed"),
	}
}

// GetLoggingConfig returns the logging settings.
func GetLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:   viper.GetString("logLevel"),
		LogsDir: viper.GetString("logsDir"),
	}
}

// GetInfluxConfig returns the InfluxDB telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the Graylog settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetMetricsConfig returns the OpenTelemetry metrics settings.
func GetMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:     viper.GetBool("metrics.enabled"),
		ServiceName: viper.GetString("metrics.serviceName"),
		Interval:    viper.GetDuration("metrics.interval"),
	}
}
