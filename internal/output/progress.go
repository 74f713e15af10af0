package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Progress tracks and displays probe progress.
type Progress struct {
	total     int
	completed atomic.Int64
	failed    atomic.Int64
	start     time.Time
	out       io.Writer
	done      chan struct{}
	stopOnce  sync.Once
	finished  chan struct{}
	quiet     bool
}

// NewProgress creates a progress tracker that prints to out. Call Start() to
// begin display updates.
func NewProgress(out io.Writer, total int, quiet bool) *Progress {
	return &Progress{
		total:    total,
		start:    time.Now(),
		out:      out,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		quiet:    quiet,
	}
}

// Start begins periodically printing progress.
func (p *Progress) Start() {
	if p.quiet {
		close(p.finished)
		return
	}
	go func() {
		defer close(p.finished)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.print()
			case <-p.done:
				p.print()
				fmt.Fprint(p.out, "\n")
				return
			}
		}
	}()
}

// Increment records a completed probe.
func (p *Progress) Increment(failed bool) {
	p.completed.Add(1)
	if failed {
		p.failed.Add(1)
	}
}

// Completed returns the number of probes recorded so far.
func (p *Progress) Completed() int64 { return p.completed.Load() }

// Failed returns the number of failed probes recorded so far.
func (p *Progress) Failed() int64 { return p.failed.Load() }

// Stop ends the progress display and waits for the final line to be printed.
// It must be called after Start.
func (p *Progress) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	<-p.finished
}

func (p *Progress) print() {
	completed := p.completed.Load()
	elapsed := time.Since(p.start).Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(completed) / elapsed
	}

	pct := float64(0)
	if p.total > 0 {
		pct = float64(completed) / float64(p.total) * 100
	}

	eta := ""
	if rate > 0 && completed < int64(p.total) {
		remaining := float64(int64(p.total)-completed) / rate
		eta = fmt.Sprintf("ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	fmt.Fprintf(p.out, "\r\033[K[%3.0f%%] %d/%d | %.0f req/s | Failed: %d | %s",
		pct, completed, p.total, rate, p.failed.Load(), eta)
}
