//go:build windows

package runner

// fixOutputProcessing is a no-op: console raw mode on Windows leaves output
// translation alone.
func fixOutputProcessing(fd int) {}
