// internal/transport/transport.go
package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/serial"
)

// Line discipline of the instrument. These values define the link and
// MUST NOT be configurable.
const (
	BaudRate = 9600
	DataBits = 8
	StopBits = 1
	Parity   = "N"
)

// readSlice is the granularity of the underlying port reads. Receive
// accumulates slices until its own deadline, so per-call timeouts work
// on a fixed-timeout serial handle.
const readSlice = 50 * time.Millisecond

// settleDelay gives the USB-serial adapter time to flush its buffers
// after open before the first command goes out.
const settleDelay = 100 * time.Millisecond

// ErrTimeout is returned by Receive when the requested byte count did
// not arrive before the deadline. Partial bytes are discarded; the
// caller re-synchronizes at the frame level.
var ErrTimeout = errors.New("transport: read timeout")

// ErrClosed is returned on use after Close.
var ErrClosed = errors.New("transport: connection closed")

// Config is the minimal transport config.
type Config struct {
	// Port is the serial device path (e.g. /dev/ttyUSB0, COM3).
	Port string
}

// Conn owns one open serial handle. It is single-owner: the protocol is
// strictly request/response and no concurrent callers are permitted.
type Conn struct {
	port   serial.Port
	closed bool
}

// Open establishes the serial line at the fixed line discipline.
// It fails if the port cannot be opened; device liveness is probed one
// layer up via the identify command.
func Open(cfg Config) (*Conn, error) {
	if cfg.Port == "" {
		return nil, errors.New("transport: port required")
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Port,
		BaudRate: BaudRate,
		DataBits: DataBits,
		StopBits: StopBits,
		Parity:   Parity,
		Timeout:  readSlice,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", cfg.Port, err)
	}

	time.Sleep(settleDelay)

	return &Conn{port: port}, nil
}

// newConn wraps an already-open port. Test seam.
func newConn(port serial.Port) *Conn {
	return &Conn{port: port}
}

// Send writes one command frame. Short writes are errors.
func (c *Conn) Send(p []byte) error {
	if c == nil || c.closed {
		return ErrClosed
	}

	n, err := c.port.Write(p)
	if err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("transport: short write: %d of %d bytes", n, len(p))
	}
	return nil
}

// Receive blocks until exactly n bytes arrive or timeout elapses.
// On timeout it returns ErrTimeout and no partial result, so the caller
// can decide whether to retry or abort.
func (c *Conn) Receive(n int, timeout time.Duration) ([]byte, error) {
	if c == nil || c.closed {
		return nil, ErrClosed
	}

	buf := make([]byte, n)
	got := 0
	deadline := time.Now().Add(timeout)

	for got < n {
		read, err := c.port.Read(buf[got:])
		got += read

		switch {
		case err == nil:
			// keep accumulating

		case errors.Is(err, serial.ErrTimeout):
			if time.Now().After(deadline) {
				return nil, ErrTimeout
			}

		default:
			return nil, fmt.Errorf("transport: read: %w", err)
		}
	}

	return buf, nil
}

// Close releases the serial handle. Idempotent: sessions call it on
// every termination path.
func (c *Conn) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.closed = true
	return c.port.Close()
}
