// Package headless is a software backend with no display. Windows are
// plain framebuffers, pixel buffers live in Go memory and every failure a
// native library could report can be injected, which makes it the backend
// the game loop and resource wrappers are tested against.
package headless

import (
	"fmt"
	"sync"
	"time"

	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/internal/osthread"
)

// Op names a backend call that can be made to fail.
type Op string

const (
	OpCreateWindow      Op = "create-window"
	OpCreateRenderer    Op = "create-renderer"
	OpCreateContext     Op = "create-context"
	OpSetAttribute      Op = "set-attribute"
	OpSwapInterval      Op = "swap-interval"
	OpSetFullscreen     Op = "set-fullscreen"
	OpCreatePixelBuffer Op = "create-pixel-buffer"
	OpBlitScaled        Op = "blit-scaled"
	OpLock              Op = "lock"
	OpCreateTexture     Op = "create-texture"
	OpDraw              Op = "draw"
)

// Backend implements graphics.Backend in memory. The zero value is not
// usable; call New.
type Backend struct {
	mu       sync.Mutex
	video    bool
	err      string
	failing  map[Op]bool
	attrs    map[graphics.ContextAttr]int
	interval int
	pending  []graphics.Event
	queue    []graphics.Event
	start    time.Time

	live struct {
		windows, renderers, contexts, pixels, textures int
	}
}

var _ graphics.Backend = (*Backend)(nil)

// New returns a backend whose video subsystem is not yet initialised.
func New() *Backend {
	return &Backend{
		failing: make(map[Op]bool),
		attrs:   make(map[graphics.ContextAttr]int),
		start:   time.Now(),
	}
}

// Init brings the video subsystem up.
func (b *Backend) Init() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.video = true
	b.start = time.Now()
}

// Quit shuts the video subsystem down. Objects created earlier stay valid
// for their owners to release.
func (b *Backend) Quit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.video = false
	b.pending = nil
	b.queue = nil
}

// SetFailure makes every later call of op fail (or succeed again).
func (b *Backend) SetFailure(op Op, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fail {
		b.failing[op] = true
	} else {
		delete(b.failing, op)
	}
}

// fail reports whether op is set to fail and, if so, records the backend
// error string the way a native library would.
func (b *Backend) fail(op Op) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.failing[op] {
		return false
	}
	b.err = fmt.Sprintf("headless: %s failed", op)
	return true
}

func (b *Backend) setError(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = fmt.Sprintf(format, args...)
}

// PushEvent queues an event for the next PumpEvents.
func (b *Backend) PushEvent(e graphics.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e.Timestamp == 0 {
		e.Timestamp = time.Since(b.start)
	}
	b.pending = append(b.pending, e)
}

// Attribute returns the value last set for attr.
func (b *Backend) Attribute(attr graphics.ContextAttr) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attrs[attr]
}

// SwapInterval returns the interval last set.
func (b *Backend) SwapInterval() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.interval
}

// Live reports how many objects of each kind are allocated and not yet released.
func (b *Backend) Live() (windows, renderers, contexts, pixels, textures int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l := b.live
	return l.windows, l.renderers, l.contexts, l.pixels, l.textures
}

func (b *Backend) track(counter *int, delta int) {
	b.mu.Lock()
	*counter += delta
	b.mu.Unlock()
}

func (b *Backend) VideoInitialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.video
}

func (b *Backend) CreateWindow(title string, width, height int, flags graphics.WindowFlags) (graphics.Window, error) {
	if !b.VideoInitialized() {
		b.setError("headless: video subsystem not initialised")
		return nil, graphics.ErrNoVideo
	}
	if width <= 0 || height <= 0 {
		b.setError("headless: invalid window size %dx%d", width, height)
		return nil, fmt.Errorf("invalid window size %dx%d", width, height)
	}
	if b.fail(OpCreateWindow) {
		return nil, fmt.Errorf("create window %q: %s", title, b.Error())
	}
	w := &Window{
		backend:  b,
		title:    title,
		width:    width,
		height:   height,
		flags:    flags,
		bordered: flags&graphics.WindowBorderless == 0,
	}
	b.track(&b.live.windows, 1)
	return w, nil
}

func (b *Backend) CreateRenderer(win graphics.Window, deviceIndex int, flags graphics.RendererFlags) (graphics.Renderer, error) {
	w, ok := win.(*Window)
	if !ok || w == nil || w.Destroyed() {
		b.setError("headless: invalid window")
		return nil, fmt.Errorf("create renderer: invalid window")
	}
	if b.fail(OpCreateRenderer) {
		return nil, fmt.Errorf("create renderer: %s", b.Error())
	}
	b.track(&b.live.renderers, 1)
	return newRenderer(b, w), nil
}

func (b *Backend) SetContextAttribute(attr graphics.ContextAttr, value int) error {
	if b.fail(OpSetAttribute) {
		return fmt.Errorf("set %s: %s", attr, b.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attrs[attr] = value
	return nil
}

func (b *Backend) CreateContext(win graphics.Window) (graphics.Context, error) {
	w, ok := win.(*Window)
	if !ok || w == nil || w.Destroyed() {
		b.setError("headless: invalid window")
		return nil, fmt.Errorf("create context: invalid window")
	}
	if b.fail(OpCreateContext) {
		return nil, fmt.Errorf("create context: %s", b.Error())
	}
	b.track(&b.live.contexts, 1)
	return &Context{backend: b, window: w}, nil
}

func (b *Backend) SetSwapInterval(interval int) error {
	if b.fail(OpSwapInterval) {
		return fmt.Errorf("swap interval %d: %s", interval, b.Error())
	}
	if interval < -1 || interval > 1 {
		b.setError("headless: unsupported swap interval %d", interval)
		return fmt.Errorf("unsupported swap interval %d", interval)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interval = interval
	return nil
}

func (b *Backend) PumpEvents() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, b.pending...)
	b.pending = b.pending[:0]
}

func (b *Backend) PollEvent() (graphics.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return graphics.Event{}, false
	}
	e := b.queue[0]
	b.queue = b.queue[1:]
	return e, true
}

func (b *Backend) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Backend) ClearError() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = ""
}

// SetError records a backend error, as a failing native call would.
func (b *Backend) SetError(msg string) {
	b.setError("%s", msg)
}

func (b *Backend) Ticks() time.Duration {
	b.mu.Lock()
	start := b.start
	b.mu.Unlock()
	return time.Since(start)
}

func (b *Backend) Delay(d time.Duration) {
	time.Sleep(d)
}

func (b *Backend) ThreadID() uint64 {
	return osthread.ID()
}
