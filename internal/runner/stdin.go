package runner

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

const keyCtrlC = 0x03

// startStdinToggle puts a terminal stdin into raw mode and watches it for
// pause keys. The returned gate holds new requests while paused; cleanup
// restores the terminal. A non-terminal stdin yields a nil gate.
func startStdinToggle(quiet bool) (gate *scanner.Gate, cleanup func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		if !quiet {
			fmt.Fprintf(stderr, "[!] Could not enable raw terminal: %v\n", err)
		}
		return nil, func() {}
	}
	// Raw input only: keep \n to \r\n translation on output.
	fixOutputProcessing(fd)

	restore := func() { _ = term.Restore(fd, oldState) }

	status := stderr
	if quiet {
		status = io.Discard
	}

	gate = scanner.NewGate()
	go watchKeys(os.Stdin, gate, status, func() {
		// Raw mode swallows the terminal's own SIGINT, so raise it here.
		restore()
		if err := sendInterrupt(); err != nil {
			fmt.Fprintf(stderr, "[!] Could not interrupt run: %v\n", err)
		}
	})
	return gate, restore
}

// watchKeys reads single bytes from r until it fails or Ctrl+C arrives.
// Enter and Space toggle gate and report the new state on status; Ctrl+C
// calls interrupt and stops watching. Other keys are ignored.
func watchKeys(r io.Reader, gate *scanner.Gate, status io.Writer, interrupt func()) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			switch buf[0] {
			case keyCtrlC:
				interrupt()
				return
			case '\r', '\n', ' ':
				if gate.Toggle() {
					fmt.Fprint(status, "\r\033[K[*] Paused, press Enter or Space to resume\n")
				} else {
					fmt.Fprintf(status, "\r\033[K[*] Resumed, %s paused so far\n", gate.PausedDuration().Round(100*time.Millisecond))
				}
			}
		}
		if err != nil {
			return
		}
	}
}
