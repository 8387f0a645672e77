//go:build !windows

// Package process terminates the headless browser started for printing.
package process

import "syscall"

// KillBrowserTree sends SIGKILL to the process group of pid, taking the
// browser's renderer and GPU children with it. Non-positive pids are
// ignored because -0 and -1 address the caller's own group and every
// process.
func KillBrowserTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Kill() already stopped the main process.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
