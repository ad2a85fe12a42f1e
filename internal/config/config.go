// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Modes accepted by acquisition.mode.
const (
	ModeRealtime = "realtime"
	ModeRecorded = "recorded"
)

type Config struct {
	Device      DeviceConfig      `yaml:"device"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Output      OutputConfig      `yaml:"output"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Port      string `yaml:"port"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// SyncClock sets the instrument clock from the host at connect time.
	SyncClock bool `yaml:"sync_clock"`
}

// ---- ACQUISITION ----

type AcquisitionConfig struct {
	Mode string `yaml:"mode"`

	// Realtime only.
	IntervalMs int     `yaml:"interval_ms"`
	DurationS  float64 `yaml:"duration_s"` // 0 = unbounded

	MaxRetries int `yaml:"max_retries"`
}

// ---- OUTPUT ----

type OutputConfig struct {
	File string `yaml:"file"` // empty = auto-generated, timestamped
	Dir  string `yaml:"dir"`
}

// ---- METRICS ----

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = metrics endpoint disabled
}

// Load reads and parses a runfile. Validation and normalization are
// separate, explicit steps.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
