// Package osthread reports the identity of the calling OS thread.
//
// Goroutines migrate between threads unless they call runtime.LockOSThread,
// so an ID is only stable for a locked goroutine.
package osthread
