// internal/acquire/recorded.go
package acquire

import (
	"context"
	"errors"
	"fmt"

	"github.com/floriangmeiner/thermal-logger/internal/device"
)

// runRecorded drives Idle -> Downloading -> {Stopped, Complete, Failed}.
//
// The protocol has no stored-sample count command: discovery is the
// stream itself. One dump command, then frames until the device goes
// silent. Sequence numbers are assigned 1..N in device order. Samples
// already emitted are never retracted; a Failed summary tells the
// caller the dataset is truncated.
func (s *Session) runRecorded(ctx context.Context, out chan<- device.Sample) Summary {
	sum := Summary{RunID: s.runID, Mode: ModeRecorded, State: StateDownloading}

	s.logger.Infof("run %s: downloading recorded samples", s.runID)

	if err := s.dev.StartRecordedDump(); err != nil {
		sum.State = StateFailed
		sum.Err = fmt.Errorf("acquire: start dump: %w", err)
		return sum
	}

	seq := 0

	for {
		// Cancellation boundary: between frames.
		select {
		case <-ctx.Done():
			sum.State = StateStopped
			return sum
		default:
		}

		samples, err := s.nextFrameWithRetry()
		if errors.Is(err, device.ErrEndOfData) {
			// Covers the zero-samples case too: silence right after the
			// dump command completes an empty download.
			sum.State = StateComplete
			return sum
		}
		if err != nil {
			if isDecodeError(err) {
				// Framing may be desynchronized; resyncing mid-dump is
				// not possible, so the download aborts.
				s.metrics.DecodeError()
			}
			sum.State = StateFailed
			sum.Err = err
			return sum
		}

		for _, sample := range samples {
			seq++
			sample.Seq = seq
			s.emit(out, sample, &sum)
		}
	}
}

// nextFrameWithRetry reads one dump frame, retrying I/O errors up to
// the configured bound. End-of-data and decode errors pass through
// untouched: the former is not an error and the latter cannot be cured
// by rereading a desynchronized stream.
func (s *Session) nextFrameWithRetry() ([]device.Sample, error) {
	var last error

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.Retry()
			s.logger.Warnf("run %s: retrying frame read (%d/%d) after: %v", s.runID, attempt, s.cfg.MaxRetries, last)
		}

		samples, err := s.dev.NextRecordedFrame()
		if err == nil || errors.Is(err, device.ErrEndOfData) || isDecodeError(err) {
			return samples, err
		}
		last = err
	}

	return nil, fmt.Errorf("acquire: frame read retries exhausted: %w", last)
}
