package report

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/nao1215/linkboard/internal/model"
)

// CSVHeader is the exact header row of the broken-link export.
var CSVHeader = []string{
	"Status Code", "URL", "Locale", "Error Type", "Source", "Last Checked", "Latency (ms)",
}

// ExportFilename returns the download name of an export made at t.
func ExportFilename(t time.Time) string {
	return "broken-links-" + t.UTC().Format("2006-01-02") + ".csv"
}

// CSVWriter writes broken-link records as CSV.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// WriteLinks writes the header and one row per record, in the given order.
// An empty slice produces a header-only file.
func (w *CSVWriter) WriteLinks(links []model.BrokenLink) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)

	if err := out.Write(CSVHeader); err != nil {
		return cw.n, err
	}
	for _, l := range links {
		row := []string{
			l.StatusCode.Display(),
			l.URL,
			l.Locale,
			l.ErrorType,
			l.Source,
			l.LastCheckedDisplay(),
			l.LatencyDisplay(),
		}
		if err := out.Write(row); err != nil {
			return cw.n, err
		}
	}

	out.Flush()
	return cw.n, out.Error()
}
