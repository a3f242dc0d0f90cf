//go:build windows

package osthread

import "golang.org/x/sys/windows"

// ID returns the Win32 thread id of the caller.
func ID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
