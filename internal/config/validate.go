// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.Port == "" {
		return fmt.Errorf("device.port is required")
	}
	if cfg.Device.TimeoutMs < 0 {
		return fmt.Errorf("device.timeout_ms must be >= 0, got %d", cfg.Device.TimeoutMs)
	}

	// ------------------------------------------------------------
	// ACQUISITION
	// ------------------------------------------------------------

	switch cfg.Acquisition.Mode {
	case "", ModeRealtime:
		if cfg.Acquisition.IntervalMs < 0 {
			return fmt.Errorf("acquisition.interval_ms must be >= 0, got %d", cfg.Acquisition.IntervalMs)
		}
		if cfg.Acquisition.DurationS < 0 {
			return fmt.Errorf("acquisition.duration_s must be >= 0, got %g", cfg.Acquisition.DurationS)
		}

	case ModeRecorded:
		// Pacing is dictated by how fast the device yields stored
		// samples; a configured interval or duration is a mistake, not
		// something to silently ignore.
		if cfg.Acquisition.IntervalMs != 0 {
			return fmt.Errorf("acquisition.interval_ms applies to realtime mode only")
		}
		if cfg.Acquisition.DurationS != 0 {
			return fmt.Errorf("acquisition.duration_s applies to realtime mode only")
		}

	default:
		return fmt.Errorf("acquisition.mode must be %q or %q, got %q", ModeRealtime, ModeRecorded, cfg.Acquisition.Mode)
	}

	if cfg.Acquisition.MaxRetries < 0 {
		return fmt.Errorf("acquisition.max_retries must be >= 0, got %d", cfg.Acquisition.MaxRetries)
	}

	return nil
}
