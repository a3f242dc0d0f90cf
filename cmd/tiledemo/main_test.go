package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/richinsley/tiledl/game"
	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/headless"
	"github.com/richinsley/tiledl/options"
)

func parse(t *testing.T, args ...string) (*options.DemoOptions, map[string]bool) {
	t.Helper()
	fs := flag.NewFlagSet("tiledemo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts, set, err := parseFlags(fs, args)
	if err != nil {
		t.Fatal(err)
	}
	return opts, set
}

func TestResolveSettingsDefaults(t *testing.T) {
	opts, set := parse(t)
	s, err := resolveSettings(opts, set, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s != options.Default() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestResolveSettingsLayers(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "demo.yaml")
	doc := "window:\n  width: 1024\n  height: 768\n  bordered: false\nrender:\n  vsync: 0\n"
	if err := os.WriteFile(cfg, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, set := parse(t, "-config", cfg, "-height", "700", "-fullscreen", "fullscreen-desktop", "-samples", "4")
	s, err := resolveSettings(opts, set, options.NewStore(nil))
	if err != nil {
		t.Fatal(err)
	}
	if s.Window.Width != 1024 || s.Window.Height != 700 || s.Window.Bordered {
		t.Errorf("window = %+v", s.Window)
	}
	if s.Window.Fullscreen != graphics.FullscreenDesktop {
		t.Errorf("fullscreen = %v", s.Window.Fullscreen)
	}
	if s.Render.VSync != 0 || !s.Render.Antialias || s.Render.Samples != 4 {
		t.Errorf("render = %+v", s.Render)
	}
}

func TestResolveSettingsRejectsInvalid(t *testing.T) {
	opts, set := parse(t, "-vsync", "3")
	if _, err := resolveSettings(opts, set, nil); err == nil {
		t.Fatal("vsync 3 accepted")
	}
	opts, set = parse(t, "-fullscreen", "sideways")
	if _, err := resolveSettings(opts, set, nil); err == nil {
		t.Fatal("unknown fullscreen mode accepted")
	}
}

func TestOpenBackend(t *testing.T) {
	b, err := openBackend("headless")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Quit()
	if !b.VideoInitialized() {
		t.Error("headless backend not initialised")
	}
	if _, err := openBackend("vulkan"); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name     string
		window   options.WindowSettings
		render   options.RenderSettings
		wantWin  graphics.WindowFlags
		wantRend graphics.RendererFlags
	}{
		{
			name:     "defaults",
			window:   options.DefaultWindowSettings(),
			render:   options.DefaultRenderSettings(),
			wantWin:  graphics.WindowShown | graphics.WindowOpenGL,
			wantRend: graphics.RendererAccelerated | graphics.RendererPresentVSync,
		},
		{
			name:     "borderless resizable no vsync",
			window:   options.WindowSettings{Resizable: true},
			render:   options.RenderSettings{},
			wantWin:  graphics.WindowShown | graphics.WindowOpenGL | graphics.WindowBorderless | graphics.WindowResizable,
			wantRend: graphics.RendererAccelerated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowFlags(tt.window); got != tt.wantWin {
				t.Errorf("windowFlags = %#x, want %#x", got, tt.wantWin)
			}
			if got := rendererFlags(tt.render); got != tt.wantRend {
				t.Errorf("rendererFlags = %#x, want %#x", got, tt.wantRend)
			}
		})
	}
}

func TestDemoRunsHeadless(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b := headless.New()
	b.Init()
	defer b.Quit()

	render := options.RenderSettings{VSync: 0, DoubleBuffer: true, Antialias: true, Samples: 2}
	d := newDemo(b, b, render, 50*time.Millisecond)
	g := game.New(b, d)
	if status := g.Init("demo", 128, 96, graphics.WindowHidden, -1, 0); status != game.StatusOK {
		t.Fatalf("Init = %v", status)
	}
	b.PushEvent(graphics.Event{Kind: graphics.EventKeyDown, Key: graphics.KeySpace})

	done := make(chan struct{})
	go func() {
		time.Sleep(5 * time.Second)
		select {
		case <-done:
		default:
			g.Stop()
		}
	}()
	g.Start()
	close(done)

	if g.RenderSettings() != render {
		t.Errorf("render settings = %+v, want the demo's %+v", g.RenderSettings(), render)
	}
	if got := b.Attribute(graphics.AttrMultisampleSamples); got != 2 {
		t.Errorf("samples attribute = %d, want 2", got)
	}
	if g.Background() != palette[1] {
		t.Errorf("background = %v, want %v after space", g.Background(), palette[1])
	}
	if d.tex.IsNull() {
		t.Fatal("sprite texture was not created")
	}
	r := g.Renderer().(*headless.Renderer)
	if r.Frames() == 0 {
		t.Fatal("no frames presented")
	}
	frame := r.Frame()
	if c := geom.FromColor(frame.At(64, 48)); c == palette[1] {
		t.Errorf("centre pixel %v should be covered by the sprite", c)
	}

	d.release()
	g.Close()
	if _, _, _, pixels, textures := b.Live(); pixels != 0 || textures != 0 {
		t.Errorf("leaked %d pixel buffers and %d textures", pixels, textures)
	}
}
