package runner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

func TestWatchKeysTogglesOnEnterAndSpace(t *testing.T) {
	gate := scanner.NewGate()
	var status bytes.Buffer
	interrupted := 0

	watchKeys(strings.NewReader("x\r"), gate, &status, func() { interrupted++ })
	assert.True(t, gate.Paused())
	assert.Contains(t, status.String(), "Paused, press Enter or Space to resume")

	watchKeys(strings.NewReader(" "), gate, &status, func() { interrupted++ })
	assert.False(t, gate.Paused())
	assert.Contains(t, status.String(), "Resumed,")

	watchKeys(strings.NewReader("\nq"), gate, &status, func() { interrupted++ })
	assert.True(t, gate.Paused())
	assert.Zero(t, interrupted)
}

func TestWatchKeysStopsOnCtrlC(t *testing.T) {
	gate := scanner.NewGate()
	interrupted := 0

	// Keys after Ctrl+C are never read.
	watchKeys(strings.NewReader("a\x03 "), gate, &bytes.Buffer{}, func() { interrupted++ })
	assert.Equal(t, 1, interrupted)
	assert.False(t, gate.Paused())
}

func TestWatchKeysIgnoresOtherKeys(t *testing.T) {
	gate := scanner.NewGate()
	var status bytes.Buffer

	watchKeys(strings.NewReader("abc\t\x1b"), gate, &status, func() { t.Fatal("unexpected interrupt") })
	assert.False(t, gate.Paused())
	assert.Empty(t, status.String())
}
