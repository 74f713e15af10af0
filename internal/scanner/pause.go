package scanner

import (
	"context"
	"sync"
	"time"
)

// Gate holds probes before they start while a run is paused. Probes already
// in flight are not interrupted.
type Gate struct {
	mu          sync.Mutex
	open        chan struct{} // closed while running
	paused      bool
	pausedSince time.Time
	totalPaused time.Duration
}

// NewGate returns an open gate.
func NewGate() *Gate {
	g := &Gate{open: make(chan struct{})}
	close(g.open)
	return g
}

// Wait blocks while the gate is closed. It returns ctx.Err() if the context
// ends first.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Toggle flips between paused and running and returns the new paused state.
func (g *Gate) Toggle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		g.totalPaused += time.Since(g.pausedSince)
		g.paused = false
		close(g.open)
	} else {
		g.paused = true
		g.pausedSince = time.Now()
		g.open = make(chan struct{})
	}
	return g.paused
}

// Paused reports whether the gate is currently closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// PausedDuration is the accumulated pause time, including an ongoing pause.
func (g *Gate) PausedDuration() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.totalPaused
	if g.paused {
		d += time.Since(g.pausedSince)
	}
	return d
}
