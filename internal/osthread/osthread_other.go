//go:build !linux && !windows

package osthread

import (
	"bytes"
	"runtime"
	"strconv"
)

// ID falls back to the goroutine id where the platform offers no portable
// thread id. For a goroutine locked to its thread the two identify the
// same execution context.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
