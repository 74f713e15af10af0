//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package runner

import "golang.org/x/sys/unix"

// sendInterrupt raises SIGINT against this process so the NotifyContext set
// up by the command cancels the run exactly as a terminal Ctrl+C would.
func sendInterrupt() error {
	return unix.Kill(unix.Getpid(), unix.SIGINT)
}
