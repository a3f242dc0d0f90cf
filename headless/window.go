package headless

import (
	"fmt"
	"sync"

	"github.com/richinsley/tiledl/graphics"
)

// Window is an off-screen window. Its framebuffer belongs to the renderer.
type Window struct {
	backend *Backend

	mu         sync.Mutex
	title      string
	width      int
	height     int
	flags      graphics.WindowFlags
	bordered   bool
	fullscreen graphics.FullscreenMode
	destroyed  bool
}

var _ graphics.Window = (*Window)(nil)

func (w *Window) SetBordered(bordered bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bordered = bordered
}

func (w *Window) SetFullscreen(mode graphics.FullscreenMode) error {
	if w.backend.fail(OpSetFullscreen) {
		return fmt.Errorf("set fullscreen %s: %s", mode, w.backend.Error())
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fullscreen = mode
	return nil
}

func (w *Window) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
}

func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Bordered reports the current border state.
func (w *Window) Bordered() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bordered
}

// Fullscreen reports the current fullscreen mode.
func (w *Window) Fullscreen() graphics.FullscreenMode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fullscreen
}

// Title returns the title the window was created with.
func (w *Window) Title() string { return w.title }

// Destroyed reports whether Destroy has run.
func (w *Window) Destroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

func (w *Window) Destroy() {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.mu.Unlock()
	w.backend.track(&w.backend.live.windows, -1)
}

// Context is a stand-in graphics context.
type Context struct {
	backend *Backend
	window  *Window

	mu      sync.Mutex
	current bool
	deleted bool
}

var _ graphics.Context = (*Context)(nil)

func (c *Context) MakeCurrent(win graphics.Window) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return graphics.ErrFreed
	}
	if w, ok := win.(*Window); !ok || w != c.window {
		return fmt.Errorf("context belongs to another window")
	}
	c.current = true
	return nil
}

// Deleted reports whether Delete has run.
func (c *Context) Deleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleted
}

func (c *Context) Delete() {
	c.mu.Lock()
	if c.deleted {
		c.mu.Unlock()
		return
	}
	c.deleted = true
	c.current = false
	c.mu.Unlock()
	c.backend.track(&c.backend.live.contexts, -1)
}
