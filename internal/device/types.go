// internal/device/types.go
package device

import (
	"fmt"
	"strings"
	"time"
)

// NumChannels is the probe count of the instrument. Protocol-locked.
const NumChannels = 4

// Reading is one probe's measurement: either a Celsius value or the
// explicit invalid state the device reports for a disconnected/faulted
// probe. Never coerced to zero, never dropped.
type Reading struct {
	Celsius float64
	Valid   bool
}

// Invalid is the sentinel reading for a channel the device flagged with
// its error marker.
func Invalid() Reading {
	return Reading{}
}

// String fulfils the Stringer interface.
func (r Reading) String() string {
	if !r.Valid {
		return "ERROR"
	}
	return fmt.Sprintf("%.1f°C", r.Celsius)
}

// Sample is one acquisition event across all four channels. Exactly one
// of Time (realtime mode) or Seq (recorded mode, 1-based) is set; the
// active mode is fixed for a whole session.
type Sample struct {
	Time time.Time
	Seq  int

	Channels [NumChannels]Reading
}

// String fulfils the Stringer interface.
func (s Sample) String() string {
	parts := make([]string, 0, NumChannels)
	for i, ch := range s.Channels {
		parts = append(parts, fmt.Sprintf("CH%d=%s", i+1, ch))
	}
	return strings.Join(parts, " ")
}

// Info is the immutable identity the instrument reports to the identify
// command, e.g. model "TA612", version "V3.30".
type Info struct {
	Model   string
	Version string
}

// String fulfils the Stringer interface.
func (i Info) String() string {
	return i.Model + " " + i.Version
}
