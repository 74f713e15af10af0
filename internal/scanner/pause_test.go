package scanner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateWaitWhenOpen(t *testing.T) {
	g := NewGate()
	done := make(chan struct{})
	go func() {
		_ = g.Wait(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() blocked on an open gate")
	}
}

func TestGateToggle(t *testing.T) {
	g := NewGate()
	if g.Paused() {
		t.Fatal("expected open gate initially")
	}
	if !g.Toggle() {
		t.Fatal("Toggle should return true (paused)")
	}
	if !g.Paused() {
		t.Fatal("expected paused after Toggle")
	}
	if g.Toggle() {
		t.Fatal("Toggle should return false (resumed)")
	}
	if g.Paused() {
		t.Fatal("expected running after second Toggle")
	}
}

func TestGateBlocksAndReleases(t *testing.T) {
	g := NewGate()
	g.Toggle()

	var reached atomic.Int32
	var passed atomic.Int32
	var wg sync.WaitGroup

	const n = 5
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reached.Add(1)
			if err := g.Wait(context.Background()); err == nil {
				passed.Add(1)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	if reached.Load() != n {
		t.Fatalf("expected %d goroutines at the gate, got %d", n, reached.Load())
	}
	if passed.Load() != 0 {
		t.Fatalf("expected no goroutine past a closed gate, got %d", passed.Load())
	}

	g.Toggle()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutines were not released after resume")
	}
	if passed.Load() != n {
		t.Fatalf("expected %d released, got %d", n, passed.Load())
	}
}

func TestGateWaitHonorsContext(t *testing.T) {
	g := NewGate()
	g.Toggle()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestGatePausedDuration(t *testing.T) {
	g := NewGate()

	g.Toggle()
	time.Sleep(50 * time.Millisecond)
	g.Toggle()

	g.Toggle()
	time.Sleep(50 * time.Millisecond)
	g.Toggle()

	total := g.PausedDuration()
	if total < 80*time.Millisecond || total > 500*time.Millisecond {
		t.Fatalf("expected ~100ms accumulated pause, got %s", total)
	}
}
