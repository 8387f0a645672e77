//go:build windows

// Package process terminates the headless browser started for printing.
package process

import (
	"os/exec"
	"strconv"
)

// KillBrowserTree kills pid and its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
// Non-positive pids are ignored.
func KillBrowserTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Kill() already stopped the main process.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
