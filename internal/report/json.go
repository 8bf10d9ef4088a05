package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/model"
	"github.com/nao1215/linkboard/internal/pipeline"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *Summary) (int, error) {
	return w.WriteValue(summary)
}

// WriteComparison outputs the comparison in JSON format.
func (w *JSONWriter) WriteComparison(comparison *analytics.Comparison) (int, error) {
	return w.WriteValue(comparison)
}

// LinksPage is the JSON form of one page of the broken-link table.
type LinksPage struct {
	Query      QueryJSON           `json:"query"`
	Total      int                 `json:"total"`
	Unfiltered int                 `json:"unfiltered"`
	Pagination pipeline.Pagination `json:"pagination"`
	Links      []model.BrokenLink  `json:"links"`
}

// QueryJSON is the JSON form of a pipeline.Query.
type QueryJSON struct {
	Locale    string `json:"locale,omitempty"`
	Status    string `json:"status,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
	Search    string `json:"search,omitempty"`
	Scope     string `json:"scope"`
	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction"`
}

// NewLinksPage converts a pipeline view.
func NewLinksPage(view *pipeline.View) *LinksPage {
	q := view.Query
	return &LinksPage{
		Query: QueryJSON{
			Locale:    q.Locale,
			Status:    q.Status,
			ErrorType: q.ErrorType,
			Search:    q.Search,
			Scope:     string(q.Scope),
			Sort:      string(q.Sort),
			Direction: string(q.Direction),
		},
		Total:      view.Total(),
		Unfiltered: view.Unfiltered,
		Pagination: view.Pagination,
		Links:      view.Page,
	}
}

// WriteLinks outputs the visible page of a table view.
func (w *JSONWriter) WriteLinks(view *pipeline.View) (int, error) {
	return w.WriteValue(NewLinksPage(view))
}

// WriteValue marshals v to JSON and writes it with a trailing newline.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
