package game

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/headless"
	"github.com/richinsley/tiledl/options"
)

// syncBuffer is a bytes.Buffer both loops can log into.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLog(t *testing.T) *syncBuffer {
	t.Helper()
	orig := graphics.Logger()
	t.Cleanup(func() { graphics.SetLogger(orig) })
	buf := &syncBuffer{}
	graphics.SetLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return buf
}

// lockThread pins the test goroutine, as a real main would.
func lockThread(t *testing.T) {
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
}

func videoBackend(t *testing.T) *headless.Backend {
	t.Helper()
	b := headless.New()
	b.Init()
	t.Cleanup(b.Quit)
	return b
}

func initGame(t *testing.T, b *headless.Backend, hooks Hooks, opts ...Option) *Game {
	t.Helper()
	g := New(b, hooks, opts...)
	if st := g.Init("test", 1, 1, graphics.WindowHidden, -1, 0); st != StatusOK {
		t.Fatalf("Init() = %v", st)
	}
	t.Cleanup(g.Close)
	return g
}

// stopAfter renders n frames and then stops the game.
func stopAfter(n int) func(*Game, graphics.Renderer) {
	var frames int
	return func(g *Game, _ graphics.Renderer) {
		frames++
		if frames >= n {
			g.Stop()
		}
	}
}

func TestInitWithoutVideo(t *testing.T) {
	captureLog(t)
	b := headless.New()
	g := New(b, nil)
	if st := g.Init("test", 1, 1, graphics.WindowHidden, -1, 0); st != StatusNoVideo {
		t.Fatalf("Init() = %v, want %v", st, StatusNoVideo)
	}
	if g.Initialized() {
		t.Error("Initialized() true after failed Init")
	}
	if b.Error() != "" {
		t.Errorf("backend error not cleared: %q", b.Error())
	}
	g.Close()
}

func TestInit(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	g := initGame(t, b, nil)

	if !g.Initialized() {
		t.Fatal("Initialized() false")
	}
	if g.InitThread() != b.ThreadID() {
		t.Errorf("InitThread() = %d, want %d", g.InitThread(), b.ThreadID())
	}
	if ws := g.WindowSettings(); ws.Width != 1 || ws.Height != 1 {
		t.Errorf("window settings not recorded: %+v", ws)
	}
	for _, attr := range []graphics.ContextAttr{
		graphics.AttrRedSize, graphics.AttrGreenSize, graphics.AttrBlueSize, graphics.AttrAlphaSize,
	} {
		if v := b.Attribute(attr); v != 8 {
			t.Errorf("%v = %d, want 8", attr, v)
		}
	}
	if w, r, c, _, _ := b.Live(); w != 1 || r != 1 || c != 1 {
		t.Errorf("Live() = %d,%d,%d", w, r, c)
	}
}

func TestInitFailureTearsDown(t *testing.T) {
	tests := []struct {
		op   headless.Op
		want Status
	}{
		{headless.OpCreateWindow, StatusWindowFailed},
		{headless.OpCreateRenderer, StatusRendererFailed},
		{headless.OpCreateContext, StatusContextFailed},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			buf := captureLog(t)
			b := videoBackend(t)
			b.SetFailure(tt.op, true)
			g := New(b, nil)

			if st := g.Init("test", 1, 1, graphics.WindowHidden, -1, 0); st != tt.want {
				t.Fatalf("Init() = %v, want %v", st, tt.want)
			}
			if g.Initialized() {
				t.Error("Initialized() true after failure")
			}
			if w, r, c, _, _ := b.Live(); w != 0 || r != 0 || c != 0 {
				t.Errorf("leaked window/renderer/context: %d,%d,%d", w, r, c)
			}
			if b.Error() != "" {
				t.Errorf("backend error not cleared: %q", b.Error())
			}
			if !strings.Contains(buf.String(), string(tt.op)+" failed") {
				t.Errorf("backend error string not logged: %q", buf.String())
			}
		})
	}
}

func TestReinitWarns(t *testing.T) {
	lockThread(t)
	buf := captureLog(t)
	b := videoBackend(t)
	g := initGame(t, b, nil)
	first := g.Window()

	if st := g.Init("again", 2, 2, graphics.WindowHidden, -1, 0); st != StatusOK {
		t.Fatalf("second Init() = %v", st)
	}
	if !strings.Contains(buf.String(), "already initialised") {
		t.Errorf("missing re-init warning: %q", buf.String())
	}
	if g.Window() == first {
		t.Error("second Init kept the first window")
	}
	first.Destroy()
}

func TestTwoGames(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	a := New(b, nil)
	c := New(b, nil)
	if a.Init("a", 1, 1, graphics.WindowHidden, -1, 0) != StatusOK || c.Init("c", 1, 1, graphics.WindowHidden, -1, 0) != StatusOK {
		t.Fatal("Init failed")
	}
	if a.Equal(c) {
		t.Error("distinct games compare equal")
	}
	if !a.Equal(a) {
		t.Error("game not equal to itself")
	}
	a.Close()
	c.Close()
	c.Close()
	if w, r, ctx, _, _ := b.Live(); w != 0 || r != 0 || ctx != 0 {
		t.Errorf("Live() after close = %d,%d,%d", w, r, ctx)
	}
}

func TestStartUninitialised(t *testing.T) {
	buf := captureLog(t)
	var called atomic.Bool
	g := New(videoBackend(t), HookFuncs{
		UpdateFunc: func(*Game) { called.Store(true) },
		RenderFunc: func(*Game, graphics.Renderer) { called.Store(true) },
	})

	done := make(chan struct{})
	go func() {
		g.Start()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start on an uninitialised game blocked")
	}
	if called.Load() || g.spawned.Load() {
		t.Error("Start spawned loops without Init")
	}
	if !strings.Contains(buf.String(), "not initialised") {
		t.Errorf("missing log: %q", buf.String())
	}
}

func TestCloseJoinsUpdateLoop(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	var inUpdate, updated atomic.Bool
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(*Game) {
			inUpdate.Store(true)
			time.Sleep(20 * time.Millisecond)
			updated.Store(true)
			inUpdate.Store(false)
		},
		RenderFunc: func(g *Game, _ graphics.Renderer) {
			if updated.Load() {
				g.Stop()
			}
		},
	})

	g.Start()
	g.Close()
	if inUpdate.Load() {
		t.Fatal("Close returned while the update hook was still running")
	}
	if g.Initialized() || !g.ShuttingDown() {
		t.Error("Close did not reset state")
	}
	if w, r, c, _, _ := b.Live(); w != 0 || r != 0 || c != 0 {
		t.Errorf("Live() after close = %d,%d,%d", w, r, c)
	}
}

func TestRestartRunsOneUpdateLoop(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	var running, peak atomic.Int32
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(*Game) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(30 * time.Millisecond)
			running.Add(-1)
		},
		RenderFunc: func(g *Game, _ graphics.Renderer) { g.Stop() },
	})

	g.Start()
	if n := running.Load(); n != 0 {
		t.Fatalf("Start returned with %d update hooks running", n)
	}
	g.Start()
	g.Close()
	if p := peak.Load(); p > 1 {
		t.Errorf("%d update loops ran at once", p)
	}
}

func TestStartAppliesRenderDefaults(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(*Game) {},
		RenderFunc: stopAfter(1),
	})
	b.SetSwapInterval(1)

	g.Start()
	rs := g.RenderSettings()
	if rs.VSync != 0 || !rs.Antialias || rs.Samples != 8 {
		t.Errorf("render settings after Start = %+v", rs)
	}
	if b.SwapInterval() != 0 {
		t.Errorf("swap interval = %d, want 0", b.SwapInterval())
	}
	if b.Attribute(graphics.AttrMultisampleSamples) != 8 || b.Attribute(graphics.AttrMultisampleBuffers) != 1 {
		t.Error("multisample attributes not applied")
	}
}

func TestEventsReachHook(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	var got []graphics.Event
	var mu sync.Mutex
	g := initGame(t, b, HookFuncs{
		EventFunc: func(g *Game, e graphics.Event) {
			mu.Lock()
			got = append(got, e)
			mu.Unlock()
			if e.Kind == graphics.EventKeyDown && e.Key == graphics.KeyEscape {
				g.Stop()
			}
		},
		UpdateFunc: func(*Game) {},
		RenderFunc: func(*Game, graphics.Renderer) {},
	})
	b.PushEvent(graphics.Event{Kind: graphics.EventMouseMotion, X: 3, Y: 4})
	b.PushEvent(graphics.Event{Kind: graphics.EventKeyDown, Key: graphics.KeyEscape})
	b.PushEvent(graphics.Event{Kind: graphics.EventKeyUp, Key: graphics.KeyEscape})

	g.Start()
	g.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("dispatched %d events, want 2 (draining stops at shutdown)", len(got))
	}
	if got[0].Kind != graphics.EventMouseMotion || got[0].X != 3 {
		t.Errorf("first event = %+v", got[0])
	}
}

func TestUpdateLoopClearsBackendError(t *testing.T) {
	lockThread(t)
	buf := captureLog(t)
	b := videoBackend(t)
	var ticks atomic.Int32
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(g *Game) {
			if ticks.Add(1) == 1 {
				b.SetError("texture went missing")
			}
		},
		RenderFunc: func(g *Game, _ graphics.Renderer) {
			if ticks.Load() >= 3 {
				g.Stop()
			}
		},
	})

	g.Start()
	g.Close()
	if b.Error() != "" {
		t.Errorf("backend error left pending: %q", b.Error())
	}
	if !strings.Contains(buf.String(), "texture went missing") {
		t.Errorf("backend error not logged: %q", buf.String())
	}
}

func TestRenderClearsToBackground(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	bg := geom.RGB(10, 20, 30)
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(*Game) {},
		RenderFunc: stopAfter(2),
	}, WithBackground(geom.White))
	g.SetBackground(bg)

	g.Start()
	r := g.Renderer().(*headless.Renderer)
	if r.Frames() != 2 {
		t.Errorf("presented %d frames, want 2", r.Frames())
	}
	if got := geom.FromColor(r.Frame().At(0, 0)); got != bg {
		t.Errorf("frame cleared to %v, want %v", got, bg)
	}
}

func TestDrawFailuresDoNotAbortFrame(t *testing.T) {
	lockThread(t)
	captureLog(t)
	b := videoBackend(t)
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(*Game) {},
		RenderFunc: stopAfter(3),
	})
	b.SetFailure(headless.OpDraw, true)

	g.Start()
	if n := g.Renderer().(*headless.Renderer).Frames(); n != 3 {
		t.Errorf("presented %d frames, want 3", n)
	}
}

type recordingSink struct {
	frames []*image.NRGBA
	fail   bool
}

func (s *recordingSink) WriteFrame(f *image.NRGBA) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.frames = append(s.frames, f)
	return nil
}

func TestFrameSink(t *testing.T) {
	lockThread(t)
	b := videoBackend(t)
	sink := &recordingSink{}
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(*Game) {},
		RenderFunc: stopAfter(4),
	}, WithFrameSink(sink), WithBackground(geom.RGB(0, 0, 255)))

	g.Start()
	if len(sink.frames) != 4 {
		t.Fatalf("sink got %d frames, want 4", len(sink.frames))
	}
	if got := geom.FromColor(sink.frames[0].At(0, 0)); got != geom.RGB(0, 0, 255) {
		t.Errorf("recorded pixel = %v", got)
	}
}

func TestFailingFrameSinkIsDropped(t *testing.T) {
	lockThread(t)
	buf := captureLog(t)
	b := videoBackend(t)
	g := initGame(t, b, HookFuncs{
		UpdateFunc: func(*Game) {},
		RenderFunc: stopAfter(3),
	}, WithFrameSink(&recordingSink{fail: true}))

	g.Start()
	if g.sink != nil {
		t.Error("failing sink kept")
	}
	if strings.Count(buf.String(), "frame sink failed") != 1 {
		t.Errorf("want exactly one sink failure log: %q", buf.String())
	}
}

func TestApplyRenderSettingsOffInitThread(t *testing.T) {
	lockThread(t)
	buf := captureLog(t)
	b := videoBackend(t)
	g := initGame(t, b, nil)

	rs := options.DefaultRenderSettings()
	rs.Antialias = true
	rs.Samples = 4
	rs.VSync = -1
	g.SetRenderSettings(rs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		g.ApplyRenderSettings()
	}()
	<-done

	if b.Attribute(graphics.AttrMultisampleSamples) != 0 || b.SwapInterval() != 0 {
		t.Error("render settings applied from another thread")
	}
	if !strings.Contains(buf.String(), "wrong thread") {
		t.Errorf("missing thread-affinity error: %q", buf.String())
	}

	g.ApplyRenderSettings()
	if b.Attribute(graphics.AttrMultisampleSamples) != 4 || b.SwapInterval() != -1 {
		t.Error("render settings not applied on the init thread")
	}
}

func TestApplyWindowSettings(t *testing.T) {
	lockThread(t)
	buf := captureLog(t)
	b := videoBackend(t)

	pending := New(b, nil)
	pending.ApplyWindowSettings()

	g := initGame(t, b, nil)
	g.SetWindowSettings(options.WindowSettings{
		Bordered:   false,
		Fullscreen: graphics.FullscreenDesktop,
		Width:      320,
		Height:     200,
	})
	g.ApplyWindowSettings()

	w := g.Window().(*headless.Window)
	if w.Bordered() || w.Fullscreen() != graphics.FullscreenDesktop {
		t.Errorf("bordered=%v fullscreen=%v", w.Bordered(), w.Fullscreen())
	}
	if width, height := w.Size(); width != 320 || height != 200 {
		t.Errorf("size %dx%d", width, height)
	}

	b.SetFailure(headless.OpSetFullscreen, true)
	g.ApplyWindowSettings()
	if b.Error() != "" {
		t.Error("fullscreen failure left the backend error set")
	}
	if !strings.Contains(buf.String(), "failed to apply fullscreen") {
		t.Errorf("missing fullscreen failure log: %q", buf.String())
	}
}

func TestUnimplementedHooksPanic(t *testing.T) {
	g := New(headless.New(), nil)
	calls := map[string]func(){
		"event":        func() { UnimplementedHooks{}.Event(g, graphics.Event{}) },
		"update":       func() { UnimplementedHooks{}.Update(g) },
		"render":       func() { UnimplementedHooks{}.Render(g, nil) },
		"nil func":     func() { HookFuncs{}.Update(g) },
		"default hook": func() { g.hooks.Render(g, nil) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			defer func() {
				err, _ := recover().(error)
				if !errors.Is(err, ErrHookNotImplemented) {
					t.Errorf("recovered %v, want ErrHookNotImplemented", err)
				}
			}()
			call()
		})
	}
}
