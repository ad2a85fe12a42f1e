// internal/acquire/state.go
package acquire

// Mode selects which acquisition state machine a session runs.
type Mode int

const (
	// ModeRealtime polls the live channels at a fixed cadence.
	ModeRealtime Mode = iota

	// ModeRecorded downloads the samples stored in device memory.
	ModeRecorded
)

// String fulfils the Stringer interface
func (m Mode) String() string {
	switch m {
	case ModeRealtime:
		return "realtime"
	case ModeRecorded:
		return "recorded"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of an acquisition session.
//
// Realtime: Idle -> Sampling -> {Stopped, Expired, Failed}
// Recorded: Idle -> Downloading -> {Stopped, Complete, Failed}
type State int

const (

	// StateIdle is active before Run is called.
	StateIdle State = iota

	// StateSampling is active while the realtime loop polls the device.
	StateSampling

	// StateDownloading is active while recorded samples are streaming in.
	StateDownloading

	// StateStopped is terminal: external cancellation, observed at an
	// inter-sample boundary.
	StateStopped

	// StateExpired is terminal: the configured duration elapsed. A
	// graceful stop, not a failure.
	StateExpired

	// StateComplete is terminal: the device reported end of recorded
	// data.
	StateComplete

	// StateFailed is terminal: transport failure beyond the retry
	// bound, or a desynchronized recorded stream.
	StateFailed
)

// String fulfils the Stringer interface
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StateDownloading:
		return "downloading"
	case StateStopped:
		return "stopped"
	case StateExpired:
		return "expired"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
