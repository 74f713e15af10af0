package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

// Summary holds aggregate run information handed to WriteFooter.
type Summary struct {
	RunID          string
	BaseURL        string
	TotalRequests  int
	FailedCount    int
	Histogram      scanner.Histogram
	Duration       time.Duration
	RequestsPerSec float64
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader() error
	WriteResult(result *scanner.ScanResult) error
	WriteFooter(summary Summary) error
	Close() error
}

// openOutput opens path for writing, creating parent directories. An empty
// path selects stdout, which is never closed.
func openOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
