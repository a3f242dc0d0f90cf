package game

import (
	"log/slog"

	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/options"
)

func (g *Game) SetWindowSettings(s options.WindowSettings) {
	g.settingsMu.Lock()
	defer g.settingsMu.Unlock()
	g.windowSettings = s
}

func (g *Game) SetRenderSettings(s options.RenderSettings) {
	g.settingsMu.Lock()
	defer g.settingsMu.Unlock()
	g.renderSettings = s
}

func (g *Game) WindowSettings() options.WindowSettings {
	g.settingsMu.Lock()
	defer g.settingsMu.Unlock()
	return g.windowSettings
}

func (g *Game) RenderSettings() options.RenderSettings {
	g.settingsMu.Lock()
	defer g.settingsMu.Unlock()
	return g.renderSettings
}

// ApplySettings applies the window settings, then the render settings.
func (g *Game) ApplySettings() {
	g.ApplyWindowSettings()
	g.ApplyRenderSettings()
}

// ApplyWindowSettings pushes the window settings to the window. It does
// nothing before Init. Screensaver and Resizable are not applied.
func (g *Game) ApplyWindowSettings() {
	if !g.initialized.Load() {
		return
	}
	s := g.WindowSettings()
	g.window.SetBordered(s.Bordered)
	if err := g.window.SetFullscreen(s.Fullscreen); err != nil {
		g.clearError(slog.LevelError, "failed to apply fullscreen", "mode", s.Fullscreen, "err", err)
	}
	g.window.SetSize(s.Width, s.Height)
}

// ApplyRenderSettings sets the context attributes and the swap interval,
// and recreates the graphics context if there is none. It must run on the
// thread Init ran on; anywhere else it logs an error and changes nothing.
func (g *Game) ApplyRenderSettings() {
	if tid := g.backend.ThreadID(); tid != g.initThread {
		g.log().Error("applying render settings on the wrong thread", "want", g.initThread, "got", tid)
		return
	}
	if !g.initialized.Load() {
		return
	}
	s := g.RenderSettings()

	for _, a := range []struct {
		attr  graphics.ContextAttr
		value int
	}{
		{graphics.AttrDoubleBuffer, btoi(s.DoubleBuffer)},
		{graphics.AttrMultisampleBuffers, btoi(s.Antialias)},
		{graphics.AttrMultisampleSamples, s.Samples},
	} {
		if err := g.backend.SetContextAttribute(a.attr, a.value); err != nil {
			g.clearError(slog.LevelWarn, "failed to set context attribute", "attr", a.attr, "value", a.value, "err", err)
		}
	}

	if err := g.backend.SetSwapInterval(s.VSync); err != nil {
		g.clearError(slog.LevelWarn, "failed to apply vsync", "vsync", s.VSync, "err", err)
	}

	if g.context == nil {
		ctx, err := g.backend.CreateContext(g.window)
		if err != nil {
			g.clearError(slog.LevelError, "failed to recreate the graphics context", "err", err)
			return
		}
		g.context = ctx
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
