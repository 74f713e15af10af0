package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

// CSVHeader is the column order of the delimited output.
var CSVHeader = []string{"base_url", "word_tested", "url", "status_code", "response_json", "response_content"}

// CSVWriter writes one ';'-delimited row per result.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer. An empty outputFile writes to stdout.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
	w, closer, err := openOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return newCSVWriter(w, closer), nil
}

func newCSVWriter(w io.Writer, closer io.Closer) *CSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return &CSVWriter{w: cw, closer: closer}
}

func (c *CSVWriter) WriteHeader() error {
	return c.w.Write(CSVHeader)
}

// WriteResult leaves status, JSON and content empty for failed probes. The
// JSON column carries the compacted body exactly as the server sent it.
func (c *CSVWriter) WriteResult(result *scanner.ScanResult) error {
	var status, body string
	if !result.Failed() {
		status = strconv.Itoa(result.StatusCode)
	}
	if result.Body != nil {
		body = string(result.Body)
	}
	return c.w.Write([]string{
		result.BaseURL,
		result.Word,
		result.URL,
		status,
		string(result.JSON),
		body,
	})
}

func (c *CSVWriter) WriteFooter(_ Summary) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
