// Package graphics defines the capabilities a windowing/rendering backend
// hands to the game loop and to the resource wrappers. Nothing in here talks
// to a native library; see sdlbackend, glfwcontext and headless for that.
package graphics

import (
	"image"
	"io"
	"time"

	"github.com/richinsley/tiledl/geom"
)

// Backend is the injected replacement for process-wide library state.
// A Game queries it instead of asking the native library whether video was
// initialised, so tests can fake presence and absence deterministically.
type Backend interface {
	PixelAllocator

	// VideoInitialized reports whether the video subsystem is up. Init and
	// Quit of the subsystem belong to the caller and must bracket every Game.
	VideoInitialized() bool

	CreateWindow(title string, width, height int, flags WindowFlags) (Window, error)
	CreateRenderer(win Window, deviceIndex int, flags RendererFlags) (Renderer, error)

	// SetContextAttribute sets an attribute used by the next CreateContext.
	SetContextAttribute(attr ContextAttr, value int) error
	CreateContext(win Window) (Context, error)
	SetSwapInterval(interval int) error

	// PumpEvents gathers pending input into the event queue. PollEvent pops
	// one event from it and reports false when the queue is empty.
	PumpEvents()
	PollEvent() (Event, bool)

	// Error returns the pending backend error string, "" when none.
	Error() string
	ClearError()

	// Ticks is a monotonic clock starting at backend initialisation.
	Ticks() time.Duration
	Delay(d time.Duration)

	// ThreadID identifies the calling OS thread.
	ThreadID() uint64
}

// Window is a top-level native window.
type Window interface {
	SetBordered(bordered bool)
	SetFullscreen(mode FullscreenMode) error
	SetSize(width, height int)
	Size() (width, height int)
	Destroy()
}

// Context is a graphics (GL) context bound to a window.
type Context interface {
	MakeCurrent(win Window) error
	Delete()
}

// Renderer issues draw calls for one window. Draw calls are best effort:
// callers log a failure and carry on with the frame.
type Renderer interface {
	SetDrawColor(c geom.Color) error
	Clear() error
	DrawLine(from, to geom.Point) error
	FillRect(r geom.Rect) error
	// Copy draws tex. A nil src means the whole texture, a nil dst the whole target.
	Copy(tex TextureHandle, src, dst *geom.Rect) error
	Present()

	// CreateTexture uploads the pixels of src into a renderer-owned texture.
	CreateTexture(src PixelHandle) (TextureHandle, error)

	// ReadPixels reads back the current target.
	ReadPixels() (*image.NRGBA, error)
	Destroy()
}

// PixelAllocator creates CPU-side pixel buffers.
type PixelAllocator interface {
	CreatePixelBuffer(width, height, depth int, masks ChannelMasks) (PixelHandle, error)
	// DecodePixelBuffer decodes an image. An empty format sniffs the data,
	// otherwise format names the decoder to use ("png", "bmp", ...).
	DecodePixelBuffer(src io.Reader, format string) (PixelHandle, error)
	LoadPixelBuffer(path string) (PixelHandle, error)
}

// PixelHandle is a backend pixel buffer. The backend keeps its own
// reference count on it: new buffers start at 1, Retain and Release adjust
// it, and Free releases the memory whatever the count says.
//
// Pixels are 32 bits per pixel laid out R, G, B, A in memory.
type PixelHandle interface {
	Width() int
	Height() int
	Pitch() int
	Pixels() []byte

	RefCount() int
	Retain()
	// Release decrements the count and returns the new value. It never frees.
	Release() int
	Free()

	Lock() error
	Unlock()
	MustLock() bool
	// BlitScaled scales the whole buffer onto the whole of dst.
	BlitScaled(dst PixelHandle) error

	ClipRect() geom.Rect
	SetRLE(enable bool) error
	SetAlphaMod(alpha uint8) error
	AlphaMod() (uint8, error)
	SetBlendMode(mode BlendMode) error
	BlendMode() (BlendMode, error)
	SetColorMod(c geom.Color) error
	ColorMod() (geom.Color, error)
}

// TextureInfo is what a texture query reports.
type TextureInfo struct {
	Format uint32
	Access TextureAccess
	Width  int
	Height int
}

// TextureHandle is a renderer-owned GPU texture. It carries no reference
// count of its own; Destroy always releases it.
type TextureHandle interface {
	Query() (TextureInfo, error)
	Update(rect *geom.Rect, pixels []byte, pitch int) error
	Lock(rect *geom.Rect) (pixels []byte, pitch int, err error)
	Unlock()
	SetAlphaMod(alpha uint8) error
	AlphaMod() (uint8, error)
	SetBlendMode(mode BlendMode) error
	BlendMode() (BlendMode, error)
	SetColorMod(c geom.Color) error
	ColorMod() (geom.Color, error)
	Destroy() error
}
