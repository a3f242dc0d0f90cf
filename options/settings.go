// Package options holds the window and render settings a game applies,
// their on-disk formats, and the command line of the demo.
package options

import (
	"fmt"

	"github.com/richinsley/tiledl/graphics"
)

// WindowSettings describes the window a game wants. Screensaver and
// Resizable are carried for configuration files but not applied.
type WindowSettings struct {
	Bordered    bool                    `yaml:"bordered" toml:"bordered"`
	Fullscreen  graphics.FullscreenMode `yaml:"fullscreen" toml:"fullscreen"`
	Screensaver bool                    `yaml:"screensaver" toml:"screensaver"`
	Resizable   bool                    `yaml:"resizable" toml:"resizable"`
	Width       int                     `yaml:"width" toml:"width"`
	Height      int                     `yaml:"height" toml:"height"`
}

// RenderSettings describes the graphics context. VSync has swap interval
// semantics: 0 off, 1 on, -1 adaptive.
type RenderSettings struct {
	VSync        int  `yaml:"vsync" toml:"vsync"`
	DoubleBuffer bool `yaml:"doublebuffer" toml:"doublebuffer"`
	Antialias    bool `yaml:"antialias" toml:"antialias"`
	Samples      int  `yaml:"samples" toml:"samples"`
}

// Settings is the document stored in configuration files.
type Settings struct {
	Window WindowSettings `yaml:"window" toml:"window"`
	Render RenderSettings `yaml:"render" toml:"render"`
}

func DefaultWindowSettings() WindowSettings {
	return WindowSettings{
		Bordered:   true,
		Fullscreen: graphics.Windowed,
		Width:      800,
		Height:     600,
	}
}

func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		VSync:        1,
		DoubleBuffer: true,
	}
}

func Default() Settings {
	return Settings{Window: DefaultWindowSettings(), Render: DefaultRenderSettings()}
}

// Validate rejects values no backend can apply.
func (s Settings) Validate() error {
	w := s.Window
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", w.Width, w.Height)
	}
	if w.Fullscreen < graphics.Windowed || w.Fullscreen > graphics.FullscreenDesktop {
		return fmt.Errorf("invalid fullscreen mode %d", int(w.Fullscreen))
	}
	r := s.Render
	if r.VSync < -1 || r.VSync > 1 {
		return fmt.Errorf("vsync %d must be -1, 0 or 1", r.VSync)
	}
	if r.Antialias && r.Samples <= 0 {
		return fmt.Errorf("antialias needs a positive sample count, got %d", r.Samples)
	}
	return nil
}
