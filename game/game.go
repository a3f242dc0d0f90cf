// Package game runs a two-goroutine game loop over a graphics backend.
//
// Start spawns one update goroutine, which pumps events and calls the
// Event and Update hooks, and turns the calling goroutine into the render
// loop. The loops share nothing but an atomic shutdown flag and whatever
// the game itself hands across, for instance through Shared. Native
// windowing libraries want all of this on the main OS thread, so the
// caller of Init and Start should be locked with runtime.LockOSThread.
package game

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/options"
)

// DefaultTickDelay is how long the update loop sleeps after each tick.
const DefaultTickDelay = time.Millisecond

// FrameSink receives every rendered frame before it is presented.
type FrameSink interface {
	WriteFrame(frame *image.NRGBA) error
}

// Option configures a Game.
type Option func(*Game)

// WithTickDelay sets the fixed sleep after each update tick.
func WithTickDelay(d time.Duration) Option {
	return func(g *Game) { g.tickDelay = d }
}

// WithFrameSink copies each frame to sink. A sink that returns an error
// is dropped.
func WithFrameSink(sink FrameSink) Option {
	return func(g *Game) { g.sink = sink }
}

// WithBackground sets the initial clear colour.
func WithBackground(c geom.Color) Option {
	return func(g *Game) { g.background.Store(c) }
}

// Game is the loop controller. Create it with New, then Init, Start and,
// once Start has returned, Close.
type Game struct {
	backend   graphics.Backend
	hooks     Hooks
	id        string
	tickDelay time.Duration
	sink      FrameSink

	initialized  atomic.Bool
	shuttingDown atomic.Bool
	initThread   uint64
	background   Shared[geom.Color]

	window   graphics.Window
	renderer graphics.Renderer
	context  graphics.Context

	settingsMu     sync.Mutex
	windowSettings options.WindowSettings
	renderSettings options.RenderSettings

	update  sync.WaitGroup
	spawned atomic.Bool
}

// New returns an uninitialised Game. A nil hooks panics on first use, as
// UnimplementedHooks does.
func New(backend graphics.Backend, hooks Hooks, opts ...Option) *Game {
	if hooks == nil {
		hooks = UnimplementedHooks{}
	}
	g := &Game{
		backend:        backend,
		hooks:          hooks,
		id:             uuid.NewString(),
		tickDelay:      DefaultTickDelay,
		windowSettings: options.DefaultWindowSettings(),
		renderSettings: options.DefaultRenderSettings(),
	}
	g.background.Store(geom.Black)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) log() *slog.Logger {
	return graphics.Logger().With("component", "game", "id", g.id)
}

// clearError logs failure together with the pending backend error and
// clears it so it does not leak into later calls.
func (g *Game) clearError(level slog.Level, msg string, args ...any) {
	args = append(args, "backend_error", g.backend.Error())
	g.log().Log(context.Background(), level, msg, args...)
	g.backend.ClearError()
}

// Init creates the window, the renderer and the graphics context, in that
// order. A failed step destroys whatever was created before it.
//
// Initialising twice is allowed but leaks the first window and renderer.
func (g *Game) Init(title string, width, height int, windowFlags graphics.WindowFlags, deviceIndex int, rendererFlags graphics.RendererFlags) Status {
	log := g.log()
	if g.initialized.Load() {
		log.Warn("game is already initialised, the previous window and renderer will leak")
	}

	if !g.backend.VideoInitialized() {
		g.clearError(slog.LevelError, "cannot init a game when the video subsystem is not initialised")
		return StatusNoVideo
	}

	win, err := g.backend.CreateWindow(title, width, height, windowFlags)
	if err != nil {
		g.clearError(slog.LevelError, "failed to create a window", "flags", windowFlags, "err", err)
		return StatusWindowFailed
	}
	log.Info("created window", "title", title, "w", width, "h", height, "flags", windowFlags)

	ren, err := g.backend.CreateRenderer(win, deviceIndex, rendererFlags)
	if err != nil {
		win.Destroy()
		g.clearError(slog.LevelError, "failed to create a renderer", "flags", rendererFlags, "err", err)
		return StatusRendererFailed
	}
	log.Info("created renderer", "device", deviceIndex, "flags", rendererFlags)

	for _, attr := range []graphics.ContextAttr{
		graphics.AttrRedSize, graphics.AttrGreenSize, graphics.AttrBlueSize, graphics.AttrAlphaSize,
	} {
		if err := g.backend.SetContextAttribute(attr, 8); err != nil {
			g.clearError(slog.LevelWarn, "failed to set context attribute", "attr", attr, "err", err)
		}
	}
	ctx, err := g.backend.CreateContext(win)
	if err != nil {
		ren.Destroy()
		win.Destroy()
		g.clearError(slog.LevelError, "failed to create a graphics context", "err", err)
		return StatusContextFailed
	}
	if err := ctx.MakeCurrent(win); err != nil {
		g.clearError(slog.LevelWarn, "failed to make the graphics context current", "err", err)
	}
	log.Info("created graphics context")

	g.window, g.renderer, g.context = win, ren, ctx
	g.settingsMu.Lock()
	g.windowSettings.Width = width
	g.windowSettings.Height = height
	g.settingsMu.Unlock()

	g.initThread = g.backend.ThreadID()
	log.Info("initialised", "thread", g.initThread)
	g.initialized.Store(true)
	return StatusOK
}

// Start applies the settings, spawns the update goroutine and runs the
// render loop until Stop is called, then waits for the update goroutine to
// return. It returns at once if the game is not initialised.
func (g *Game) Start() {
	log := g.log()
	if !g.initialized.Load() {
		log.Error("cannot start a game that is not initialised")
		return
	}

	g.settingsMu.Lock()
	g.renderSettings.VSync = 0
	g.renderSettings.Antialias = true
	g.renderSettings.Samples = 8
	g.settingsMu.Unlock()

	g.ApplySettings()
	// An update loop left over from a previous Start must exit before the
	// flag is cleared.
	g.update.Wait()
	g.shuttingDown.Store(false)

	g.update.Add(1)
	g.spawned.Store(true)
	go func() {
		defer g.update.Done()
		g.updateLoop()
	}()
	log.Debug("spawned update loop")

	g.renderLoop()
	g.update.Wait()
	g.spawned.Store(false)
}

// Stop asks both loops to exit after their current iteration. It is safe
// to call from any goroutine, hooks included.
func (g *Game) Stop() {
	g.shuttingDown.Store(true)
}

// Close stops the loops, waits for the update goroutine to return and
// releases the context, the renderer and the window, in that order. It
// must not be called from a hook or while Start is still running. Close
// on a game that was never initialised, or twice, does nothing.
func (g *Game) Close() {
	if !g.initialized.Load() {
		return
	}
	g.shuttingDown.Store(true)
	g.initialized.Store(false)

	if g.spawned.Load() {
		g.update.Wait()
		g.spawned.Store(false)
	}

	if g.context != nil {
		g.context.Delete()
		g.context = nil
	}
	g.renderer.Destroy()
	g.window.Destroy()
	g.log().Debug("closed")
}

func (g *Game) Initialized() bool  { return g.initialized.Load() }
func (g *Game) ShuttingDown() bool { return g.shuttingDown.Load() }

// InitThread is the OS thread Init ran on.
func (g *Game) InitThread() uint64 { return g.initThread }

func (g *Game) Background() geom.Color     { return g.background.Load() }
func (g *Game) SetBackground(c geom.Color) { g.background.Store(c) }

func (g *Game) Backend() graphics.Backend   { return g.backend }
func (g *Game) Window() graphics.Window     { return g.window }
func (g *Game) Renderer() graphics.Renderer { return g.renderer }
func (g *Game) Context() graphics.Context   { return g.context }

// Equal reports whether both games drive the same window and renderer.
func (g *Game) Equal(other *Game) bool {
	return g.window == other.window && g.renderer == other.renderer
}
