// internal/acquire/runner.go
package acquire

import (
	"context"

	"github.com/floriangmeiner/thermal-logger/internal/device"
)

// Run executes the session's state machine and emits samples on out.
//
// Emission is lazy and non-restartable: each sample is sent exactly
// once on the (typically unbuffered) channel and never buffered beyond
// the current step. The consumer must drain out until Run returns;
// there is exactly one producer. Cancellation is cooperative and
// observed only at inter-sample boundaries, never mid-exchange, so the
// device's own state machine is never left mid-frame.
func (s *Session) Run(ctx context.Context, out chan<- device.Sample) Summary {
	switch s.cfg.Mode {
	case ModeRecorded:
		return s.runRecorded(ctx, out)
	default:
		return s.runRealtime(ctx, out)
	}
}

// emit hands one finished sample to the consumer and updates counters.
// A fully-decoded sample is always delivered, even if cancellation has
// already been requested; the stop is honored at the next boundary.
func (s *Session) emit(out chan<- device.Sample, sample device.Sample, sum *Summary) {
	out <- sample

	invalid := 0
	for _, ch := range sample.Channels {
		if !ch.Valid {
			invalid++
		}
	}
	s.metrics.SampleEmitted(invalid)
	sum.Samples++
}
