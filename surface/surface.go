package surface

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
)

var errNoAllocator = errors.New("surface: no pixel allocator")

// Surface owns a backend pixel buffer. A Surface without a buffer is
// null; every method except IsNull, Destroy, Handle and Equal panics with
// graphics.ErrNotInitialised on a null Surface.
//
// Surface is not safe for concurrent use.
type Surface struct {
	usage  Usage
	alloc  graphics.PixelAllocator
	handle graphics.PixelHandle
	locked int
	id     string
}

func newSurface(alloc graphics.PixelAllocator) *Surface {
	return &Surface{alloc: alloc, id: uuid.NewString()}
}

func (s *Surface) log() *slog.Logger {
	return graphics.Logger().With("component", "surface", "id", s.id)
}

// NewSurface returns a null Surface.
func NewSurface() *Surface {
	return newSurface(nil)
}

// NewSurfaceSize allocates a width x height 32bpp buffer using the host
// byte order masks. It panics if the backend cannot allocate it.
func NewSurfaceSize(alloc graphics.PixelAllocator, width, height int) *Surface {
	s := newSurface(alloc)
	s.handle = s.create(width, height)
	s.mustHandle()
	return s
}

// AdoptSurface wraps a buffer allocated elsewhere and takes a backend
// reference on it. alloc is used by Resize and may be nil if the Surface
// is never resized.
func AdoptSurface(alloc graphics.PixelAllocator, handle graphics.PixelHandle) *Surface {
	if handle == nil {
		panic(fmt.Errorf("adopt surface: %w", graphics.ErrNotInitialised))
	}
	s := newSurface(alloc)
	s.handle = handle
	handle.Retain()
	return s
}

// DecodeSurface decodes an image from src. When freeSrc is set and src is
// an io.Closer it is closed afterwards. A decode failure is logged and
// leaves the Surface null.
func DecodeSurface(alloc graphics.PixelAllocator, src io.Reader, freeSrc bool) *Surface {
	return DecodeSurfaceTyped(alloc, src, freeSrc, "")
}

// DecodeSurfaceTyped is DecodeSurface with an explicit format such as
// "png" or "bmp" (case is ignored). An empty format sniffs the data.
func DecodeSurfaceTyped(alloc graphics.PixelAllocator, src io.Reader, freeSrc bool, format string) *Surface {
	s := newSurface(alloc)
	var (
		h   graphics.PixelHandle
		err = errNoAllocator
	)
	if alloc != nil {
		h, err = alloc.DecodePixelBuffer(src, format)
	}
	if freeSrc {
		if c, ok := src.(io.Closer); ok {
			c.Close()
		}
	}
	if err != nil {
		s.log().Error("failed to decode image", "format", format, "err", err)
		s.clearError()
		return s
	}
	s.handle = h
	return s
}

// LoadSurface decodes the image file at path. A failure is logged and
// leaves the Surface null.
func LoadSurface(alloc graphics.PixelAllocator, path string) *Surface {
	s := newSurface(alloc)
	if alloc == nil {
		s.log().Error("failed to load image", "path", path, "err", errNoAllocator)
		return s
	}
	h, err := alloc.LoadPixelBuffer(path)
	if err != nil {
		s.log().Error("failed to load image", "path", path, "err", err)
		s.clearError()
		return s
	}
	s.handle = h
	return s
}

func (s *Surface) create(width, height int) graphics.PixelHandle {
	if s.alloc == nil {
		s.log().Error("failed to create pixel buffer", "w", width, "h", height, "err", errNoAllocator)
		return nil
	}
	h, err := s.alloc.CreatePixelBuffer(width, height, graphics.DefaultDepth, graphics.DefaultMasks())
	if err != nil {
		s.log().Error("failed to create pixel buffer", "w", width, "h", height, "err", err)
		s.clearError()
		return nil
	}
	return h
}

// clearError drops the backend error once it has been logged, when the
// allocator is a full backend.
func (s *Surface) clearError() {
	if b, ok := s.alloc.(graphics.Backend); ok {
		b.ClearError()
	}
}

// IsNull reports whether the Surface owns no buffer.
func (s *Surface) IsNull() bool {
	return s == nil || s.handle == nil
}

func (s *Surface) mustHandle() graphics.PixelHandle {
	if s.IsNull() {
		panic(fmt.Errorf("surface: %w", graphics.ErrNotInitialised))
	}
	return s.handle
}

// Equal reports whether both Surfaces own the same buffer.
func (s *Surface) Equal(other *Surface) bool {
	var a, b graphics.PixelHandle
	if s != nil {
		a = s.handle
	}
	if other != nil {
		b = other.handle
	}
	return a == b
}

// Ref takes an advisory reference. It never affects when memory is freed.
func (s *Surface) Ref() {
	s.mustHandle()
	if !s.usage.Ref() {
		s.log().Warn("reference count overflow", "max", MaxUsage)
	}
}

// Deref drops an advisory reference.
func (s *Surface) Deref() {
	s.mustHandle()
	if !s.usage.Deref() {
		s.log().Warn("dereferenced with no references left", "refs", s.usage.Count())
	}
}

// RefCount returns the advisory reference count.
func (s *Surface) RefCount() int { return s.usage.Count() }

// BackendRefCount returns the backend's own count on the buffer.
func (s *Surface) BackendRefCount() int { return s.mustHandle().RefCount() }

// Destroy drops this Surface's backend reference and frees the buffer
// once no backend reference remains. Either way the Surface becomes null.
// Destroy on a null Surface does nothing.
func (s *Surface) Destroy() {
	if s.IsNull() {
		return
	}
	log := s.log()
	h := s.handle
	for ; s.locked > 0; s.locked-- {
		h.Unlock()
	}
	n := h.Release()

	if refs := s.usage.Count(); refs > 0 {
		log.Warn("destroyed while still referenced", "refs", refs)
	}
	if n > 0 {
		log.Warn("pixel buffer not freed, backend still holds references", "backend_refs", n)
	} else {
		h.Free()
	}
	s.handle = nil
}

// Resize replaces the buffer with a scaled copy of width x height. The
// Surface must not be locked. On any failure the old buffer is kept.
//
// The old buffer is freed even if someone else holds a backend reference
// to it; their handle is then invalid.
func (s *Surface) Resize(width, height int) error {
	old := s.mustHandle()
	log := s.log()
	if s.locked > 0 {
		log.Error("cannot resize a locked surface", "w", width, "h", height)
		return fmt.Errorf("resize: %w", graphics.ErrLocked)
	}
	nh := s.create(width, height)
	if nh == nil {
		return fmt.Errorf("resize to %dx%d: allocation failed", width, height)
	}
	if err := old.BlitScaled(nh); err != nil {
		log.Warn("scaled blit failed during resize", "w", width, "h", height, "err", err)
		nh.Free()
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	if n := old.RefCount(); n > 1 {
		log.Warn("resizing a pixel buffer other holders still reference", "backend_refs", n)
	}
	s.handle = nh
	old.Free()
	return nil
}

// ResizeRect resizes to the width and height of r.
func (s *Surface) ResizeRect(r geom.Rect) error {
	return s.Resize(r.W, r.H)
}

// Lock makes the pixels safe to access directly. Pair it with Unlock.
func (s *Surface) Lock() {
	h := s.mustHandle()
	if err := h.Lock(); err != nil {
		s.log().Warn("failed to lock surface", "err", err)
		return
	}
	s.locked++
}

func (s *Surface) Unlock() {
	h := s.mustHandle()
	if s.locked == 0 {
		return
	}
	h.Unlock()
	s.locked--
}

// MustLock reports whether the pixels may only be touched while locked.
func (s *Surface) MustLock() bool { return s.mustHandle().MustLock() }

// Locked reports whether Lock is in effect.
func (s *Surface) Locked() bool { return s.locked > 0 }

func (s *Surface) SetRLE(enable bool) {
	if err := s.mustHandle().SetRLE(enable); err != nil {
		s.log().Warn("failed to set RLE", "enable", enable, "err", err)
	}
}

func (s *Surface) SetAlphaMod(alpha uint8) {
	if err := s.mustHandle().SetAlphaMod(alpha); err != nil {
		s.log().Warn("failed to set alpha mod", "alpha", alpha, "err", err)
	}
}

func (s *Surface) SetBlendMode(mode graphics.BlendMode) {
	if err := s.mustHandle().SetBlendMode(mode); err != nil {
		s.log().Warn("failed to set blend mode", "mode", mode, "err", err)
	}
}

func (s *Surface) SetColorMod(c geom.Color) {
	if err := s.mustHandle().SetColorMod(c); err != nil {
		s.log().Warn("failed to set color mod", "color", c, "err", err)
	}
}

func (s *Surface) AlphaMod() uint8 {
	a, err := s.mustHandle().AlphaMod()
	if err != nil {
		s.log().Error("failed to get alpha mod", "err", err)
	}
	return a
}

func (s *Surface) BlendMode() graphics.BlendMode {
	m, err := s.mustHandle().BlendMode()
	if err != nil {
		s.log().Error("failed to get blend mode", "err", err)
	}
	return m
}

func (s *Surface) ColorMod() geom.Color {
	c, err := s.mustHandle().ColorMod()
	if err != nil {
		s.log().Error("failed to get color mod", "err", err)
	}
	return c
}

// Handle returns the backend buffer, nil for a null Surface.
func (s *Surface) Handle() graphics.PixelHandle {
	if s == nil {
		return nil
	}
	return s.handle
}

func (s *Surface) Width() int          { return s.mustHandle().Width() }
func (s *Surface) Height() int         { return s.mustHandle().Height() }
func (s *Surface) Pitch() int          { return s.mustHandle().Pitch() }
func (s *Surface) Pixels() []byte      { return s.mustHandle().Pixels() }
func (s *Surface) ClipRect() geom.Rect { return s.mustHandle().ClipRect() }
