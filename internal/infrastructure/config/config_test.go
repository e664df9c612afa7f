package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt:
  keep_alive_seconds: 30
influxdb:
  enabled: true
  url: "http://localhost:8086"
logging:
  level: "debug"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.KeepAliveSeconds != 30 {
		t.Errorf("MQTT.KeepAliveSeconds = %d, want 30", cfg.MQTT.KeepAliveSeconds)
	}
	if cfg.InfluxDB.URL != "http://localhost:8086" {
		t.Errorf("InfluxDB.URL = %q, want %q", cfg.InfluxDB.URL, "http://localhost:8086")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_NoPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.MQTT.KeepAliveSeconds != 20 {
		t.Errorf("MQTT.KeepAliveSeconds = %d, want default 20", cfg.MQTT.KeepAliveSeconds)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt:
  keep_alive_seconds: 0
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for non-positive keep_alive_seconds, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				MQTT: MQTTConfig{KeepAliveSeconds: 20, DrainTimeoutSeconds: 10},
			},
			wantErr: false,
		},
		{
			name: "non-positive keep-alive",
			config: &Config{
				MQTT: MQTTConfig{KeepAliveSeconds: 0, DrainTimeoutSeconds: 10},
			},
			wantErr: true,
		},
		{
			name: "non-positive drain timeout",
			config: &Config{
				MQTT: MQTTConfig{KeepAliveSeconds: 20, DrainTimeoutSeconds: 0},
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			config: &Config{
				MQTT:     MQTTConfig{KeepAliveSeconds: 20, DrainTimeoutSeconds: 10},
				InfluxDB: InfluxDBConfig{Enabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := &Config{
		MQTT: MQTTConfig{
			KeepAliveSeconds:    20,
			DrainTimeoutSeconds: 10,
			PublishTimeoutMS:    5000,
		},
	}

	if got := cfg.KeepAlive().Seconds(); got != 20 {
		t.Errorf("KeepAlive() = %v, want 20", got)
	}
	if got := cfg.DrainTimeout().Seconds(); got != 10 {
		t.Errorf("DrainTimeout() = %v, want 10", got)
	}
	if got := cfg.PublishTimeout().Milliseconds(); got != 5000 {
		t.Errorf("PublishTimeout() = %v, want 5000", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("DAB_INFLUXDB_URL", "http://influx.example.com")
	t.Setenv("DAB_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("DAB_LOG_LEVEL", "debug")
	t.Setenv("DAB_LOG_FORMAT", "text")

	applyEnvOverrides(cfg)

	if cfg.InfluxDB.URL != "http://influx.example.com" {
		t.Errorf("InfluxDB.URL = %q, want %q", cfg.InfluxDB.URL, "http://influx.example.com")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.KeepAliveSeconds != 20 {
		t.Errorf("defaultConfig MQTT.KeepAliveSeconds = %d, want 20", cfg.MQTT.KeepAliveSeconds)
	}
	if cfg.MQTT.DrainTimeoutSeconds != 10 {
		t.Errorf("defaultConfig MQTT.DrainTimeoutSeconds = %d, want 10", cfg.MQTT.DrainTimeoutSeconds)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("defaultConfig Logging.Level = %q, want info", cfg.Logging.Level)
	}
}
