// internal/device/frame.go
package device

import (
	"fmt"
)

// ---- FRAME LAYOUT (LOCKED) ----
//
// Request (PC -> device):
//   0-1  Header AA 55
//   2    Instruction
//   3    Frame length (everything except the 2 header bytes)
//   4+   Payload (optional)
//   last Checksum (sum of all preceding bytes, low 8 bits)
//
// Response (device -> PC): identical, header 55 AA.

const (
	reqHead0 byte = 0xAA
	reqHead1 byte = 0x55

	respHead0 byte = 0x55
	respHead1 byte = 0xAA
)

// ---- INSTRUCTIONS ----

const (
	cmdIdentify byte = 0x00 // stop logging, report model + firmware
	cmdRealTime byte = 0x01 // query current readings of all channels
	cmdRecorded byte = 0x02 // dump device-resident recorded samples
	cmdTimeSync byte = 0x03 // set device clock
	cmdSetFunc  byte = 0x04 // set device function parameters (unused)
)

// errorMarker is the raw channel word the device reports for a
// disconnected or faulted probe.
const errorMarker uint16 = 0x6D60

// bytesPerSample is the width of one recorded sample in a dump payload.
const bytesPerSample = 2 * NumChannels

// DecodeError reports a frame that does not match the expected
// structure. Distinct from a per-channel error marker, which is valid
// protocol data.
type DecodeError struct {
	Reason string
	Raw    []byte
}

func (e *DecodeError) Error() string {
	if len(e.Raw) == 0 {
		return "device: decode: " + e.Reason
	}
	return fmt.Sprintf("device: decode: %s (raw % X)", e.Reason, e.Raw)
}

func decodeErrf(raw []byte, format string, args ...interface{}) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), Raw: raw}
}

// checksum is the low 8 bits of the byte sum.
func checksum(b []byte) byte {
	var sum int
	for _, v := range b {
		sum += int(v)
	}
	return byte(sum & 0xFF)
}

// encodeCommand builds a request frame for one instruction.
func encodeCommand(instruction byte, payload []byte) []byte {
	frame := make([]byte, 0, 5+len(payload))
	frame = append(frame, reqHead0, reqHead1, instruction)
	frame = append(frame, byte(3+len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, checksum(frame))
	return frame
}

// u16le reads a little-endian 16-bit word.
func u16le(lo, hi byte) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

// decodeReading maps one raw channel word to a Reading. Only the
// device's designated error marker produces the invalid sentinel.
func decodeReading(raw uint16) Reading {
	if raw == errorMarker {
		return Invalid()
	}
	return Reading{Celsius: float64(raw) / 10.0, Valid: true}
}

// decodeChannels parses one 8-byte channel block.
func decodeChannels(payload []byte) ([NumChannels]Reading, error) {
	var out [NumChannels]Reading
	if len(payload) < bytesPerSample {
		return out, decodeErrf(payload, "channel block too short: %d bytes", len(payload))
	}
	for ch := 0; ch < NumChannels; ch++ {
		out[ch] = decodeReading(u16le(payload[2*ch], payload[2*ch+1]))
	}
	return out, nil
}
