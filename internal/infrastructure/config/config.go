package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the DAB broker. deviceId,
// deviceAddress, and the broker URI itself stay CLI-positional; this file
// covers only the ambient settings a deployment may want to tune without
// touching the command line: logging, the optional telemetry sink, and
// MQTT session timing. The InfluxDB URL and token and the log level and
// format can also be overridden by environment variables; the MQTT timing
// settings cannot.
type Config struct {
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MQTTConfig contains MQTT session timing settings. The broker URI,
// clientId, and cleanSession policy are fixed in code and are not
// configurable here.
type MQTTConfig struct {
	KeepAliveSeconds    int `yaml:"keep_alive_seconds"`
	DrainTimeoutSeconds int `yaml:"drain_timeout_seconds"`
	PublishTimeoutMS    int `yaml:"publish_timeout_ms"`
}

// InfluxDBConfig contains InfluxDB connection settings for the optional
// telemetry sink used by the reference adapter (internal/adapter/panel).
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DAB_SECTION_KEY. If path is
// empty, Load returns the defaults without touching the filesystem — the
// broker is fully usable with no config file at all.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults: a 20s keep-alive
// and a 10s disconnect drain.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			KeepAliveSeconds:    20,
			DrainTimeoutSeconds: 10,
			PublishTimeoutMS:    5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern: DAB_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DAB_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("DAB_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("DAB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DAB_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.KeepAliveSeconds <= 0 {
		errs = append(errs, "mqtt.keep_alive_seconds must be positive")
	}
	if c.MQTT.DrainTimeoutSeconds <= 0 {
		errs = append(errs, "mqtt.drain_timeout_seconds must be positive")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// KeepAlive returns the MQTT keep-alive interval as a Duration.
func (c *Config) KeepAlive() time.Duration {
	return time.Duration(c.MQTT.KeepAliveSeconds) * time.Second
}

// DrainTimeout returns the disconnect drain period as a Duration.
func (c *Config) DrainTimeout() time.Duration {
	return time.Duration(c.MQTT.DrainTimeoutSeconds) * time.Second
}

// PublishTimeout returns the per-publish write timeout as a Duration.
func (c *Config) PublishTimeout() time.Duration {
	return time.Duration(c.MQTT.PublishTimeoutMS) * time.Millisecond
}
