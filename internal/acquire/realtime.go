// internal/acquire/realtime.go
package acquire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/floriangmeiner/thermal-logger/internal/device"
)

// runRealtime drives Idle -> Sampling -> {Stopped, Expired, Failed}.
//
// Pacing contract: the cadence is measured sample start to sample
// start. Each poll deadline is derived from the previous deadline, not
// from "now", so time spent on I/O and decode does not stretch the
// requested interval.
func (s *Session) runRealtime(ctx context.Context, out chan<- device.Sample) Summary {
	sum := Summary{RunID: s.runID, Mode: ModeRealtime, State: StateSampling}

	begin := time.Now()
	next := begin

	s.logger.Infof("run %s: sampling every %s", s.runID, s.cfg.Interval)

	for {
		// Duration expiry is a graceful stop; the last partial interval
		// is not force-sampled.
		if s.cfg.Duration > 0 && time.Since(begin) >= s.cfg.Duration {
			sum.State = StateExpired
			return sum
		}

		// Cancellation boundary: before the command goes out.
		select {
		case <-ctx.Done():
			sum.State = StateStopped
			return sum
		default:
		}

		sample, err := s.pollWithRetry()
		switch {
		case err == nil:
			s.emit(out, sample, &sum)

		case isDecodeError(err):
			// Fatal for this sample only; cadence is kept.
			s.logger.Warnf("run %s: skipping sample: %v", s.runID, err)
			s.metrics.DecodeError()

		default:
			sum.State = StateFailed
			sum.Err = err
			return sum
		}

		next = next.Add(s.cfg.Interval)
		if !s.sleepUntil(ctx, next) {
			sum.State = StateStopped
			return sum
		}
	}
}

// pollWithRetry issues one realtime query, retrying timeouts and I/O
// errors up to the configured bound. A successful retry is invisible to
// the consumer. Decode errors are not retried.
func (s *Session) pollWithRetry() (device.Sample, error) {
	var last error

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.Retry()
			s.logger.Warnf("run %s: retrying poll (%d/%d) after: %v", s.runID, attempt, s.cfg.MaxRetries, last)
		}

		start := time.Now()
		sample, err := s.dev.ReadRealTime()
		if err == nil {
			s.metrics.ObservePoll(time.Since(start).Seconds())
			return sample, nil
		}
		if isDecodeError(err) {
			return device.Sample{}, err
		}
		last = err
	}

	return device.Sample{}, fmt.Errorf("acquire: poll retries exhausted: %w", last)
}

// sleepUntil waits for the next scheduled poll. Returns false when the
// session was cancelled during the wait.
func (s *Session) sleepUntil(ctx context.Context, deadline time.Time) bool {
	wait := time.Until(deadline)
	if wait <= 0 {
		// Poll overran the interval; resume immediately but still honor
		// a pending stop.
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func isDecodeError(err error) bool {
	var dErr *device.DecodeError
	return errors.As(err, &dErr)
}
