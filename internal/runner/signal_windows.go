//go:build windows

package runner

import "golang.org/x/sys/windows"

// sendInterrupt delivers a console Ctrl+C to the process group, which the Go
// runtime turns into os.Interrupt.
func sendInterrupt() error {
	return windows.GenerateConsoleCtrlEvent(windows.CTRL_C_EVENT, 0)
}
