// internal/acquire/session.go
package acquire

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/floriangmeiner/thermal-logger/internal/device"
	"github.com/floriangmeiner/thermal-logger/internal/observability"
)

// defaultMaxRetries bounds per-command retries after a timeout or I/O
// error. A momentary missed poll must not abort a long-running log.
const defaultMaxRetries = 3

// instrument is the exact device contract the sessions drive.
type instrument interface {
	ReadRealTime() (device.Sample, error)
	StartRecordedDump() error
	NextRecordedFrame() ([]device.Sample, error)
}

// Config is the validated runtime config of one session. The caller
// parses and validates user input; the session trusts it.
type Config struct {
	Mode Mode

	// Interval is the realtime sampling period, measured sample start
	// to sample start. Ignored in recorded mode.
	Interval time.Duration

	// Duration bounds the realtime run; zero means unbounded. Ignored
	// in recorded mode.
	Duration time.Duration

	// MaxRetries bounds per-command retries (default 3).
	MaxRetries int
}

// Summary is the terminal report of a run: what state it ended in, how
// many samples reached the consumer first, and why it ended.
type Summary struct {
	RunID   string
	Mode    Mode
	State   State
	Samples int
	Err     error
}

// String fulfils the Stringer interface
func (s Summary) String() string {
	if s.Err != nil {
		return fmt.Sprintf("run %s (%s): %s after %d samples: %v", s.RunID, s.Mode, s.State, s.Samples, s.Err)
	}
	return fmt.Sprintf("run %s (%s): %s after %d samples", s.RunID, s.Mode, s.State, s.Samples)
}

// Session executes one acquisition run over one exclusively-owned
// device connection. It is the only writer on that connection.
type Session struct {
	cfg     Config
	dev     instrument
	logger  device.Logger
	metrics *observability.Metrics
	runID   string
}

// WithLogger sets a logger.
func WithLogger(logger device.Logger) func(*Session) {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics sets the acquisition metrics.
func WithMetrics(m *observability.Metrics) func(*Session) {
	return func(s *Session) {
		s.metrics = m
	}
}

// New instantiates a session with immutable config, executing
// functional options, if any.
func New(cfg Config, dev instrument, options ...func(*Session)) (*Session, error) {
	if dev == nil {
		return nil, errors.New("acquire: instrument required")
	}
	if cfg.Mode == ModeRealtime && cfg.Interval <= 0 {
		return nil, errors.New("acquire: realtime interval must be > 0")
	}
	if cfg.Mode == ModeRecorded && (cfg.Interval != 0 || cfg.Duration != 0) {
		return nil, errors.New("acquire: interval/duration apply to realtime mode only")
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New("acquire: max retries must be >= 0")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	return &Session{
		cfg:    cfg,
		dev:    dev,
		logger: &device.NullLogger{},
		runID:  uuid.NewString(),
	}, nil
}

// RunID returns the identifier attached to this run's samples and logs.
func (s *Session) RunID() string {
	return s.runID
}
