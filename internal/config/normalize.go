// internal/config/normalize.go
package config

// Default values applied by Normalize.
const (
	DefaultTimeoutMs  = 2000
	DefaultIntervalMs = 1000
	DefaultMaxRetries = 3
	DefaultOutputDir  = "."
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.TimeoutMs == 0 {
		cfg.Device.TimeoutMs = DefaultTimeoutMs
	}

	if cfg.Acquisition.Mode == "" {
		cfg.Acquisition.Mode = ModeRealtime
	}
	if cfg.Acquisition.Mode == ModeRealtime && cfg.Acquisition.IntervalMs == 0 {
		cfg.Acquisition.IntervalMs = DefaultIntervalMs
	}
	if cfg.Acquisition.MaxRetries == 0 {
		cfg.Acquisition.MaxRetries = DefaultMaxRetries
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
}
