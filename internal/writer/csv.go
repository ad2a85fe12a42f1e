// internal/writer/csv.go
package writer

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/floriangmeiner/thermal-logger/internal/device"
)

// TimestampLayout renders realtime stamps lossless and sortable with
// sub-second precision.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// errorToken is the literal rendered for a channel the device flagged
// invalid/disconnected.
const errorToken = "ERROR"

// Writer consumes the session's sample sequence.
type Writer interface {
	Write(s device.Sample) error
}

// CSVWriter renders samples as CSV rows, one row per sample, flushed
// per row so a crash or cancellation never loses delivered samples.
type CSVWriter struct {
	csv         *csv.Writer
	recorded    bool
	wroteHeader bool
}

// NewCSV creates a writer for one acquisition run. recorded selects the
// sample_num addressing column instead of timestamp.
func NewCSV(w io.Writer, recorded bool) *CSVWriter {
	return &CSVWriter{
		csv:      csv.NewWriter(w),
		recorded: recorded,
	}
}

// Write renders one sample. The header is emitted lazily before the
// first row.
func (cw *CSVWriter) Write(s device.Sample) error {
	if !cw.wroteHeader {
		if err := cw.csv.Write(cw.header()); err != nil {
			return err
		}
		cw.wroteHeader = true
	}

	row := make([]string, 0, 1+device.NumChannels)
	if cw.recorded {
		row = append(row, strconv.Itoa(s.Seq))
	} else {
		row = append(row, s.Time.Format(TimestampLayout))
	}
	for _, ch := range s.Channels {
		row = append(row, renderReading(ch))
	}

	if err := cw.csv.Write(row); err != nil {
		return err
	}
	cw.csv.Flush()
	return cw.csv.Error()
}

func (cw *CSVWriter) header() []string {
	header := make([]string, 0, 1+device.NumChannels)
	if cw.recorded {
		header = append(header, "sample_num")
	} else {
		header = append(header, "timestamp")
	}
	for ch := 1; ch <= device.NumChannels; ch++ {
		header = append(header, "ch"+strconv.Itoa(ch)+"_celsius")
	}
	return header
}

func renderReading(r device.Reading) string {
	if !r.Valid {
		return errorToken
	}
	return strconv.FormatFloat(r.Celsius, 'f', 1, 64)
}
