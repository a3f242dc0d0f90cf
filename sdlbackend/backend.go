// Package sdlbackend implements graphics.Backend with SDL2 and SDL_image.
//
// SDL wants window, renderer and event calls on the main thread. Present
// pumps the native event queue on the render thread; PumpEvents and
// PollEvent only drain what was gathered there, so the game's update
// goroutine never touches the event pump.
package sdlbackend

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/img"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/internal/osthread"
)

// Backend is stateless; SDL keeps the state. Init and Quit bracket the
// lifetime of every Game built on it.
type Backend struct{}

var _ graphics.Backend = Backend{}

func New() Backend { return Backend{} }

// Init starts the SDL video subsystem and the PNG/JPEG/TIFF/WebP loaders.
func (Backend) Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl init: %w", err)
	}
	if err := img.Init(img.INIT_PNG | img.INIT_JPG | img.INIT_TIF | img.INIT_WEBP); err != nil {
		graphics.Logger().Warn("some SDL_image loaders are unavailable", "err", err)
	}
	return nil
}

func (Backend) Quit() {
	img.Quit()
	sdl.Quit()
}

func (Backend) VideoInitialized() bool {
	return sdl.WasInit(sdl.INIT_VIDEO) != 0
}

func (Backend) CreateWindow(title string, width, height int, flags graphics.WindowFlags) (graphics.Window, error) {
	w, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), uint32(flags))
	if err != nil {
		return nil, fmt.Errorf("create window %q: %w", title, err)
	}
	return &Window{w: w}, nil
}

func (Backend) CreateRenderer(win graphics.Window, deviceIndex int, flags graphics.RendererFlags) (graphics.Renderer, error) {
	w, ok := win.(*Window)
	if !ok {
		return nil, fmt.Errorf("create renderer: foreign window %T", win)
	}
	r, err := sdl.CreateRenderer(w.w, deviceIndex, uint32(flags))
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &Renderer{r: r}, nil
}

var glAttrs = map[graphics.ContextAttr]sdl.GLattr{
	graphics.AttrRedSize:            sdl.GL_RED_SIZE,
	graphics.AttrGreenSize:          sdl.GL_GREEN_SIZE,
	graphics.AttrBlueSize:           sdl.GL_BLUE_SIZE,
	graphics.AttrAlphaSize:          sdl.GL_ALPHA_SIZE,
	graphics.AttrDoubleBuffer:       sdl.GL_DOUBLEBUFFER,
	graphics.AttrMultisampleBuffers: sdl.GL_MULTISAMPLEBUFFERS,
	graphics.AttrMultisampleSamples: sdl.GL_MULTISAMPLESAMPLES,
}

func (Backend) SetContextAttribute(attr graphics.ContextAttr, value int) error {
	a, ok := glAttrs[attr]
	if !ok {
		return fmt.Errorf("unknown context attribute %v", attr)
	}
	return sdl.GLSetAttribute(a, value)
}

func (Backend) CreateContext(win graphics.Window) (graphics.Context, error) {
	w, ok := win.(*Window)
	if !ok {
		return nil, fmt.Errorf("create context: foreign window %T", win)
	}
	ctx, err := w.w.GLCreateContext()
	if err != nil {
		return nil, fmt.Errorf("create GL context: %w", err)
	}
	return &Context{ctx: ctx}, nil
}

func (Backend) SetSwapInterval(interval int) error {
	return sdl.GLSetSwapInterval(interval)
}

// PumpEvents does nothing: Present pumps on the render thread.
func (Backend) PumpEvents() {}

func (Backend) PollEvent() (graphics.Event, bool) {
	var buf [1]sdl.Event
	n, err := sdl.PeepEvents(buf[:], sdl.GETEVENT, sdl.FIRSTEVENT, sdl.LASTEVENT)
	if err != nil || n == 0 {
		return graphics.Event{}, false
	}
	return convertEvent(buf[0]), true
}

func (Backend) Error() string {
	if err := sdl.GetError(); err != nil {
		return err.Error()
	}
	return ""
}

func (Backend) ClearError() { sdl.ClearError() }

func (Backend) Ticks() time.Duration {
	return time.Duration(sdl.GetTicks()) * time.Millisecond
}

func (Backend) Delay(d time.Duration) {
	sdl.Delay(uint32(d / time.Millisecond))
}

func (Backend) ThreadID() uint64 { return osthread.ID() }

// Window wraps an SDL window.
type Window struct {
	w *sdl.Window
}

// Native returns the SDL window.
func (w *Window) Native() *sdl.Window { return w.w }

func (w *Window) SetBordered(bordered bool) { w.w.SetBordered(bordered) }

func (w *Window) SetFullscreen(mode graphics.FullscreenMode) error {
	var flags uint32
	switch mode {
	case graphics.Windowed:
	case graphics.Fullscreen:
		flags = sdl.WINDOW_FULLSCREEN
	case graphics.FullscreenDesktop:
		flags = sdl.WINDOW_FULLSCREEN_DESKTOP
	default:
		return fmt.Errorf("invalid fullscreen mode %v", mode)
	}
	return w.w.SetFullscreen(flags)
}

func (w *Window) SetSize(width, height int) { w.w.SetSize(int32(width), int32(height)) }

func (w *Window) Size() (int, int) {
	width, height := w.w.GetSize()
	return int(width), int(height)
}

func (w *Window) Destroy() {
	if w.w == nil {
		return
	}
	w.w.Destroy()
	w.w = nil
}

// Context wraps an SDL GL context.
type Context struct {
	ctx sdl.GLContext
}

func (c *Context) MakeCurrent(win graphics.Window) error {
	w, ok := win.(*Window)
	if !ok {
		return fmt.Errorf("make current: foreign window %T", win)
	}
	return w.w.GLMakeCurrent(c.ctx)
}

func (c *Context) Delete() {
	if c.ctx == nil {
		return
	}
	sdl.GLDeleteContext(c.ctx)
	c.ctx = nil
}
