// internal/transport/transport_test.go
package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/goburrow/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort scripts the underlying serial handle. Each entry in chunks is
// returned by one Read call; a nil chunk simulates one slice timeout.
type fakePort struct {
	chunks   [][]byte
	writes   [][]byte
	writeErr error
	shortBy  int
	closed   bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, serial.ErrTimeout
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	if chunk == nil {
		return 0, serial.ErrTimeout
	}
	n := copy(p, chunk)
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p) - f.shortBy, nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func (f *fakePort) Open(*serial.Config) error { return nil }

// ---- tests ----

func TestReceive_AssemblesAcrossReads(t *testing.T) {
	port := &fakePort{chunks: [][]byte{{0x55}, nil, {0xAA, 0x01}, {0x0B}}}
	c := newConn(port)

	got, err := c.Receive(4, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x55, 0xAA, 0x01, 0x0B}, got)
}

func TestReceive_TimeoutDiscardsPartial(t *testing.T) {
	port := &fakePort{chunks: [][]byte{{0x55}}}
	c := newConn(port)

	got, err := c.Receive(4, 10*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, got, "timeout must not return a partial result")
}

func TestSend_ShortWrite(t *testing.T) {
	port := &fakePort{shortBy: 1}
	c := newConn(port)

	err := c.Send([]byte{0xAA, 0x55, 0x00, 0x03, 0x02})
	require.Error(t, err)
}

func TestSend_WriteError(t *testing.T) {
	port := &fakePort{writeErr: errors.New("device unplugged")}
	c := newConn(port)

	err := c.Send([]byte{0xAA, 0x55})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestClose_Idempotent(t *testing.T) {
	port := &fakePort{}
	c := newConn(port)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, port.closed)

	_, err := c.Receive(1, time.Millisecond)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Send(nil), ErrClosed)
}
