// internal/device/client_test.go
package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floriangmeiner/thermal-logger/internal/transport"
)

// fakeConn feeds a scripted byte stream to the client and records every
// command frame it sends. An exhausted stream times out, like a device
// that has gone silent.
type fakeConn struct {
	stream []byte
	sent   [][]byte
	closed bool
}

func (f *fakeConn) Send(p []byte) error {
	f.sent = append(f.sent, append([]byte(nil), p...))
	return nil
}

func (f *fakeConn) Receive(n int, _ time.Duration) ([]byte, error) {
	if len(f.stream) < n {
		return nil, transport.ErrTimeout
	}
	out := f.stream[:n]
	f.stream = f.stream[n:]
	return out, nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// respFrame builds a well-formed device response.
func respFrame(instruction byte, payload []byte) []byte {
	f := []byte{0x55, 0xAA, instruction, byte(3 + len(payload))}
	f = append(f, payload...)
	return append(f, checksum(f))
}

// realtimePayload packs four raw channel words little-endian.
func realtimePayload(raw [NumChannels]uint16) []byte {
	out := make([]byte, 0, bytesPerSample)
	for _, w := range raw {
		out = append(out, byte(w&0xFF), byte(w>>8))
	}
	return out
}

// ---- tests ----

func TestConnect_ParsesIdentity(t *testing.T) {
	// Captured identify response of a TA612 running firmware 3.30.
	conn := &fakeConn{stream: []byte{0x55, 0xAA, 0x00, 0x07, 0x64, 0x02, 0x4A, 0x01, 0xB7}}
	c := NewClient(conn)

	info, err := c.Connect()
	require.NoError(t, err)
	assert.Equal(t, "TA612", info.Model)
	assert.Equal(t, "V3.30", info.Version)
	require.NotNil(t, c.Info())

	require.Len(t, conn.sent, 1)
	assert.Equal(t, []byte{0xAA, 0x55, 0x00, 0x03, 0x02}, conn.sent[0])
}

func TestConnect_SilentDevice(t *testing.T) {
	c := NewClient(&fakeConn{})

	_, err := c.Connect()
	require.ErrorIs(t, err, ErrNoDevice)
}

func TestReadRealTime_MixedChannels(t *testing.T) {
	// Captured realtime response: CH1 22.5°C, CH2..CH4 disconnected.
	conn := &fakeConn{stream: []byte{
		0x55, 0xAA, 0x01, 0x0B, 0xE1, 0x00, 0x60, 0x6D, 0x60, 0x6D, 0x60, 0x6D, 0x53,
	}}
	c := NewClient(conn)

	s, err := c.ReadRealTime()
	require.NoError(t, err)
	assert.False(t, s.Time.IsZero())
	assert.Equal(t, Reading{Celsius: 22.5, Valid: true}, s.Channels[0])
	assert.Equal(t, Invalid(), s.Channels[1])
	assert.Equal(t, Invalid(), s.Channels[2])
	assert.Equal(t, Invalid(), s.Channels[3])
}

func TestReadRealTime_BadHeaderIsDecodeError(t *testing.T) {
	conn := &fakeConn{stream: []byte{0xDE, 0xAD, 0x01, 0x0B, 0, 0, 0, 0, 0, 0, 0, 0, 0}}
	c := NewClient(conn)

	_, err := c.ReadRealTime()
	var dErr *DecodeError
	require.ErrorAs(t, err, &dErr)
}

func TestReadRealTime_TruncatedFrameIsDecodeError(t *testing.T) {
	// Header and meta arrive, then the line goes dead mid-frame.
	conn := &fakeConn{stream: []byte{0x55, 0xAA, 0x01, 0x0B, 0xE1}}
	c := NewClient(conn)

	_, err := c.ReadRealTime()
	var dErr *DecodeError
	require.ErrorAs(t, err, &dErr, "mid-frame timeout must not look like a plain timeout")
}

func TestReadRealTime_WrongInstruction(t *testing.T) {
	conn := &fakeConn{stream: respFrame(cmdIdentify, []byte{0x64, 0x02, 0x4A, 0x01})}
	c := NewClient(conn)

	_, err := c.ReadRealTime()
	var dErr *DecodeError
	require.ErrorAs(t, err, &dErr)
}

func TestNextRecordedFrame_MultiSampleFrame(t *testing.T) {
	payload := append(
		realtimePayload([NumChannels]uint16{235, 241, errorMarker, 229}),
		realtimePayload([NumChannels]uint16{236, 240, errorMarker, 230})...,
	)
	conn := &fakeConn{stream: respFrame(cmdRecorded, payload)}
	c := NewClient(conn)

	require.NoError(t, c.StartRecordedDump())
	assert.Equal(t, []byte{0xAA, 0x55, 0x02, 0x03, 0x04}, conn.sent[0])

	samples, err := c.NextRecordedFrame()
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 23.5, samples[0].Channels[0].Celsius)
	assert.False(t, samples[0].Channels[2].Valid)
	assert.Equal(t, 23.0, samples[1].Channels[3].Celsius)

	// Silence after the last frame ends the dump.
	_, err = c.NextRecordedFrame()
	assert.ErrorIs(t, err, ErrEndOfData)
}

func TestNextRecordedFrame_IgnoresTrailingFragment(t *testing.T) {
	payload := append(
		realtimePayload([NumChannels]uint16{235, 241, 250, 229}),
		0xE1, 0x00, // incomplete trailing sample
	)
	conn := &fakeConn{stream: respFrame(cmdRecorded, payload)}
	c := NewClient(conn)

	samples, err := c.NextRecordedFrame()
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestSyncTime_RoundTrip(t *testing.T) {
	conn := &fakeConn{stream: respFrame(cmdTimeSync, nil)}
	c := NewClient(conn)

	at := time.Date(2025, 8, 23, 14, 30, 0, 0, time.UTC)
	require.NoError(t, c.SyncTime(at))

	require.Len(t, conn.sent, 1)
	sent := conn.sent[0]
	assert.Equal(t, byte(cmdTimeSync), sent[2])
	assert.Equal(t, []byte{25, 8, 23, 14, 30, 0}, sent[4:10])
}
