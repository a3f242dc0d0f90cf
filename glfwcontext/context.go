// Package glfwcontext is a graphics.Backend over GLFW and OpenGL. Windows
// carry their own GL context, draw calls go through package renderer, and
// pixel buffers live in CPU memory.
//
// GLFW must be driven from the main thread: call Init, CreateWindow and the
// renderer's Present there. Input arrives through window callbacks while
// Present pumps events, and waits in a queue that PollEvent drains from any
// goroutine.
package glfwcontext

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/headless"
	"github.com/richinsley/tiledl/internal/osthread"
	"github.com/richinsley/tiledl/renderer"
)

type Backend struct {
	pixels *headless.Backend
	inited atomic.Bool

	mu     sync.Mutex
	events []graphics.Event
	err    string
	attrs  map[graphics.ContextAttr]int
}

var _ graphics.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		pixels: headless.New(),
		attrs:  make(map[graphics.ContextAttr]int),
	}
}

// Init locks the caller to its OS thread and initialises GLFW. Must be
// called from the main thread.
func (b *Backend) Init() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		b.setError("glfw init: %v", err)
		return err
	}
	b.inited.Store(true)
	graphics.Logger().Info("GLFW initialized", "version", glfw.GetVersionString())
	return nil
}

// Quit shuts GLFW down. Must be called from the main thread.
func (b *Backend) Quit() {
	if !b.inited.Swap(false) {
		return
	}
	glfw.Terminate()
	graphics.Logger().Info("GLFW terminated")
}

func (b *Backend) VideoInitialized() bool {
	return b.inited.Load()
}

func (b *Backend) setError(format string, args ...any) {
	b.SetError(fmt.Sprintf(format, args...))
}

// SetError records msg as the pending error.
func (b *Backend) SetError(msg string) {
	b.mu.Lock()
	b.err = msg
	b.mu.Unlock()
}

func (b *Backend) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Backend) ClearError() {
	b.mu.Lock()
	b.err = ""
	b.mu.Unlock()
}

// protect runs fn and turns a GLFW panic into an error. The binding panics
// on errors it treats as unrecoverable.
func (b *Backend) protect(what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", what, r)
			b.SetError(err.Error())
		}
	}()
	fn()
	return nil
}

var glfwHints = map[graphics.ContextAttr]glfw.Hint{
	graphics.AttrRedSize:            glfw.RedBits,
	graphics.AttrGreenSize:          glfw.GreenBits,
	graphics.AttrBlueSize:           glfw.BlueBits,
	graphics.AttrAlphaSize:          glfw.AlphaBits,
	graphics.AttrDoubleBuffer:       glfw.DoubleBuffer,
	graphics.AttrMultisampleSamples: glfw.Samples,
}

// SetContextAttribute records a framebuffer hint. GLFW fixes a context's
// attributes when its window is created, so hints apply to later windows.
func (b *Backend) SetContextAttribute(attr graphics.ContextAttr, value int) error {
	if _, ok := glfwHints[attr]; !ok && attr != graphics.AttrMultisampleBuffers {
		b.setError("glfw: unknown context attribute %v", attr)
		return fmt.Errorf("unknown context attribute %v", attr)
	}
	b.mu.Lock()
	b.attrs[attr] = value
	b.mu.Unlock()
	return nil
}

func (b *Backend) applyHints(flags graphics.WindowFlags) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	b.mu.Lock()
	for attr, value := range b.attrs {
		if hint, ok := glfwHints[attr]; ok {
			glfw.WindowHint(hint, value)
		}
	}
	if v, ok := b.attrs[graphics.AttrMultisampleBuffers]; ok && v == 0 {
		glfw.WindowHint(glfw.Samples, 0)
	}
	b.mu.Unlock()

	glfw.WindowHint(glfw.Resizable, btoi(flags&graphics.WindowResizable != 0))
	glfw.WindowHint(glfw.Decorated, btoi(flags&graphics.WindowBorderless == 0))
	glfw.WindowHint(glfw.Visible, btoi(flags&graphics.WindowHidden == 0))
}

func (b *Backend) CreateWindow(title string, width, height int, flags graphics.WindowFlags) (graphics.Window, error) {
	if !b.inited.Load() {
		b.setError("glfw: video not initialised")
		return nil, graphics.ErrNoVideo
	}
	b.applyHints(flags)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		b.setError("glfw create window: %v", err)
		return nil, err
	}
	w := &Window{backend: b, window: win}
	w.listen()

	switch {
	case flags&graphics.WindowFullscreenDesktop == graphics.WindowFullscreenDesktop:
		err = w.SetFullscreen(graphics.FullscreenDesktop)
	case flags&graphics.WindowFullscreen != 0:
		err = w.SetFullscreen(graphics.Fullscreen)
	}
	if err != nil {
		logger().Warn("window created windowed", "err", err)
	}
	logger().Info("window created", "title", title, "width", width, "height", height, "flags", flags)
	return w, nil
}

func (b *Backend) CreateRenderer(win graphics.Window, deviceIndex int, flags graphics.RendererFlags) (graphics.Renderer, error) {
	w, ok := win.(*Window)
	if !ok || w == nil || w.destroyed {
		b.setError("glfw: renderer needs a live glfw window, got %T", win)
		return nil, errors.New("create renderer: invalid window")
	}
	r, err := renderer.New(w)
	if err != nil {
		b.SetError(err.Error())
		return nil, err
	}
	if flags&graphics.RendererPresentVSync != 0 {
		if err := b.SetSwapInterval(1); err != nil {
			logger().Warn("vsync unavailable", "err", err)
		}
	}
	return r, nil
}

func (b *Backend) CreateContext(win graphics.Window) (graphics.Context, error) {
	w, ok := win.(*Window)
	if !ok || w == nil || w.destroyed {
		b.setError("glfw: context needs a live glfw window, got %T", win)
		return nil, errors.New("create context: invalid window")
	}
	return &Context{window: w}, nil
}

func (b *Backend) SetSwapInterval(interval int) error {
	if !b.inited.Load() {
		return graphics.ErrNoVideo
	}
	if glfw.GetCurrentContext() == nil {
		b.setError("glfw: no current context for swap interval")
		return errors.New("set swap interval: no current context")
	}
	return b.protect("set swap interval", func() {
		glfw.SwapInterval(interval)
	})
}

// PumpEvents does nothing: GLFW events are pumped by Present on the main
// thread and queued for PollEvent.
func (b *Backend) PumpEvents() {}

func (b *Backend) PollEvent() (graphics.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return graphics.Event{}, false
	}
	e := b.events[0]
	b.events = b.events[1:]
	return e, true
}

func (b *Backend) push(e graphics.Event) {
	e.Timestamp = b.Ticks()
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *Backend) Ticks() time.Duration {
	if !b.inited.Load() {
		return 0
	}
	return time.Duration(glfw.GetTime() * float64(time.Second))
}

func (b *Backend) Delay(d time.Duration) {
	time.Sleep(d)
}

func (b *Backend) ThreadID() uint64 {
	return osthread.ID()
}

func (b *Backend) CreatePixelBuffer(width, height, depth int, masks graphics.ChannelMasks) (graphics.PixelHandle, error) {
	return b.pixels.CreatePixelBuffer(width, height, depth, masks)
}

func (b *Backend) DecodePixelBuffer(src io.Reader, format string) (graphics.PixelHandle, error) {
	return b.pixels.DecodePixelBuffer(src, format)
}

func (b *Backend) LoadPixelBuffer(path string) (graphics.PixelHandle, error) {
	return b.pixels.LoadPixelBuffer(path)
}

// Context is the GL context GLFW created along with its window.
type Context struct {
	window  *Window
	deleted bool
}

func (c *Context) MakeCurrent(win graphics.Window) error {
	w, ok := win.(*Window)
	if !ok || w == nil || w.destroyed {
		return errors.New("make current: invalid window")
	}
	if c.deleted || w != c.window {
		return errors.New("make current: context does not belong to this window")
	}
	w.MakeCurrent()
	return nil
}

// Delete forgets the context. The native context lives as long as its window.
func (c *Context) Delete() {
	c.deleted = true
}

func btoi(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func logger() *slog.Logger {
	return graphics.Logger().With("component", "glfw")
}
