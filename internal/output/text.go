package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorDim    = "\033[2m"
)

// TextWriter writes one colored line per result.
type TextWriter struct {
	w       io.Writer
	status  io.Writer // footer destination
	closer  io.Closer
	noColor bool
	quiet   bool
}

// NewTextWriter creates a text output writer. If outputFile is empty, stdout
// is used. noColor disables ANSI escape codes.
func NewTextWriter(outputFile string, noColor, quiet bool) (*TextWriter, error) {
	w, closer, err := openOutput(outputFile)
	if err != nil {
		return nil, err
	}
	if outputFile != "" {
		// Files never get escape codes.
		noColor = true
	}
	return &TextWriter{w: w, status: os.Stderr, closer: closer, noColor: noColor, quiet: quiet}, nil
}

func (t *TextWriter) WriteHeader() error {
	if t.quiet {
		return nil
	}
	dim, reset := colorDim, colorReset
	if t.noColor {
		dim, reset = "", ""
	}
	_, err := fmt.Fprintf(t.w, "%sCode      Size  URL%s\n", dim, reset)
	return err
}

func (t *TextWriter) WriteResult(result *scanner.ScanResult) error {
	reset := colorReset
	if t.noColor {
		reset = ""
	}

	if result.Failed() {
		_, err := fmt.Fprintf(t.w, "%sERR%s         -  %s  (%v)\n",
			t.color(colorRed), reset, result.URL, result.Err)
		return err
	}

	jsonMark := ""
	if result.JSON != nil {
		jsonMark = "  [json]"
	}
	_, err := fmt.Fprintf(t.w, "%s%3d%s  %8d  %s%s\n",
		t.colorForStatus(result.StatusCode), result.StatusCode, reset,
		len(result.Body),
		result.URL,
		jsonMark,
	)
	return err
}

func (t *TextWriter) WriteFooter(summary Summary) error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(t.status,
		"\nCompleted: %d requests | Failed: %d | Duration: %s | %.1f req/s\n",
		summary.TotalRequests,
		summary.FailedCount,
		summary.Duration.Round(time.Millisecond),
		summary.RequestsPerSec,
	)
	return err
}

func (t *TextWriter) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *TextWriter) color(c string) string {
	if t.noColor {
		return ""
	}
	return c
}

func (t *TextWriter) colorForStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return t.color(colorGreen)
	case code >= 300 && code < 400:
		return t.color(colorCyan)
	case code >= 400 && code < 500:
		return t.color(colorYellow)
	case code >= 500:
		return t.color(colorRed)
	default:
		return ""
	}
}
