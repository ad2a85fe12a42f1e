// internal/writer/csv_test.go
package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floriangmeiner/thermal-logger/internal/device"
)

func sampleAt(ts time.Time) device.Sample {
	return device.Sample{
		Time: ts,
		Channels: [device.NumChannels]device.Reading{
			{Celsius: 23.5, Valid: true},
			{Celsius: 24.1, Valid: true},
			{}, // disconnected probe
			{Celsius: 22.9, Valid: true},
		},
	}
}

func TestCSV_RealtimeRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSV(&buf, false)

	ts := time.Date(2025, 8, 23, 14, 30, 0, 123456000, time.UTC)
	require.NoError(t, w.Write(sampleAt(ts)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,ch1_celsius,ch2_celsius,ch3_celsius,ch4_celsius", lines[0])
	assert.Equal(t, "2025-08-23T14:30:00.123456,23.5,24.1,ERROR,22.9", lines[1])
}

func TestCSV_RecordedRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSV(&buf, true)

	s := sampleAt(time.Time{})
	s.Seq = 1
	require.NoError(t, w.Write(s))
	s.Seq = 2
	require.NoError(t, w.Write(s))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "sample_num,ch1_celsius,ch2_celsius,ch3_celsius,ch4_celsius", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,"))
}

func TestCSV_FlushesPerRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSV(&buf, false)

	require.NoError(t, w.Write(sampleAt(time.Now())))
	assert.NotZero(t, buf.Len(), "rows must be visible without an explicit final flush")
}

func TestCSV_TimestampsSortLexically(t *testing.T) {
	base := time.Date(2025, 8, 23, 23, 59, 59, 900000000, time.UTC)
	earlier := base.Format(TimestampLayout)
	later := base.Add(200 * time.Millisecond).Format(TimestampLayout)

	assert.Less(t, earlier, later)
}
