//go:build linux

package osthread

import "golang.org/x/sys/unix"

// ID returns the kernel thread id of the caller.
func ID() uint64 {
	return uint64(unix.Gettid())
}
