// Package surface wraps backend pixel buffers and GPU textures.
//
// Each wrapper carries two reference counts. Usage is this package's own
// advisory counter: Ref and Deref move it and nothing else, and it never
// decides when memory is released. The backend keeps the authoritative
// count on pixel buffers, which Surface.Destroy consults before freeing.
// Textures have no backend count and Texture.Destroy always frees.
package surface

import "math"

// MaxUsage is where Usage saturates.
const MaxUsage = math.MaxInt32

// Usage is an advisory reference count. The zero value is ready to use.
// It is not safe for concurrent use.
type Usage struct {
	n int32
}

// Ref increments the count. It reports false, leaving the count
// unchanged, when the count is already MaxUsage.
func (u *Usage) Ref() bool {
	if u.n == MaxUsage {
		return false
	}
	u.n++
	return true
}

// Deref decrements the count. It reports false, leaving the count at
// zero, when there was nothing to release.
func (u *Usage) Deref() bool {
	if u.n <= 0 {
		return false
	}
	u.n--
	return true
}

// Count returns the current count.
func (u *Usage) Count() int { return int(u.n) }
