package output

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

type jsonEntry struct {
	BaseURL         string  `json:"base_url"`
	Word            string  `json:"word_tested"`
	URL             string  `json:"url"`
	StatusCode      *int    `json:"status_code"`
	ResponseJSON    any     `json:"response_json"`
	ResponseContent *string `json:"response_content"`
	Error           string  `json:"error,omitempty"`
}

type jsonReport struct {
	RunID          string            `json:"run_id,omitempty"`
	BaseURL        string            `json:"base_url"`
	TotalRequests  int               `json:"total_requests"`
	FailedCount    int               `json:"failed"`
	DurationMS     int64             `json:"duration_ms"`
	RequestsPerSec float64           `json:"requests_per_sec"`
	Histogram      scanner.Histogram `json:"histogram"`
	Results        []jsonEntry       `json:"results"`
}

// JSONWriter buffers results and writes a single JSON report on WriteFooter.
type JSONWriter struct {
	w       io.Writer
	closer  io.Closer
	entries []jsonEntry
}

// NewJSONWriter creates a JSON output writer. An empty outputFile writes to stdout.
func NewJSONWriter(outputFile string) (*JSONWriter, error) {
	w, closer, err := openOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{w: w, closer: closer, entries: []jsonEntry{}}, nil
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteResult(result *scanner.ScanResult) error {
	entry := jsonEntry{
		BaseURL: result.BaseURL,
		Word:    result.Word,
		URL:     result.URL,
	}
	// Left as a nil interface so a missing body encodes as null.
	if result.JSON != nil {
		entry.ResponseJSON = result.JSON
	}
	if result.Failed() {
		entry.Error = result.Err.Error()
	} else {
		status := result.StatusCode
		entry.StatusCode = &status
	}
	if result.Body != nil {
		body := string(result.Body)
		entry.ResponseContent = &body
	}
	j.entries = append(j.entries, entry)
	return nil
}

func (j *JSONWriter) WriteFooter(summary Summary) error {
	hist := summary.Histogram
	if hist == nil {
		hist = scanner.Histogram{}
	}
	report := jsonReport{
		RunID:          summary.RunID,
		BaseURL:        summary.BaseURL,
		TotalRequests:  summary.TotalRequests,
		FailedCount:    summary.FailedCount,
		DurationMS:     summary.Duration.Milliseconds(),
		RequestsPerSec: summary.RequestsPerSec,
		Histogram:      hist,
		Results:        j.entries,
	}
	if err := json.MarshalWrite(j.w, report,
		json.Deterministic(true),
		jsontext.AllowInvalidUTF8(true),
		jsontext.AllowDuplicateNames(true),
		jsontext.WithIndent("  "),
	); err != nil {
		return err
	}
	_, err := io.WriteString(j.w, "\n")
	return err
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
