package main

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/richinsley/tiledl/game"
	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/options"
	"github.com/richinsley/tiledl/surface"
)

const tileSize = 32

var palette = []geom.Color{
	geom.RGB(24, 26, 32),
	geom.RGB(40, 60, 90),
	geom.RGB(70, 30, 60),
	geom.RGB(20, 70, 50),
}

// demo draws a scrolling tile grid with a sprite in the middle. Space cycles
// the background, Escape or closing the window quits.
type demo struct {
	alloc    graphics.PixelAllocator
	render   options.RenderSettings
	duration time.Duration
	timer    *game.Timer

	// pending is set until the render hook has applied the user's render
	// settings; Start installs its own defaults first.
	pending atomic.Bool
	ticks   atomic.Int64
	scroll  atomic.Int64
	color   int

	sprite *surface.Surface
	tex    *surface.Texture
}

func newDemo(alloc graphics.PixelAllocator, clock game.Clock, render options.RenderSettings, duration time.Duration) *demo {
	d := &demo{
		alloc:    alloc,
		render:   render,
		duration: duration,
		timer:    game.NewTimer(clock),
	}
	d.pending.Store(true)
	return d
}

func (d *demo) Event(g *game.Game, e graphics.Event) {
	switch e.Kind {
	case graphics.EventQuit, graphics.EventWindowClose:
		g.Stop()
	case graphics.EventKeyDown:
		switch e.Key {
		case graphics.KeyEscape:
			g.Stop()
		case graphics.KeySpace:
			if !e.Repeat {
				d.color = (d.color + 1) % len(palette)
				g.SetBackground(palette[d.color])
			}
		}
	case graphics.EventWindowResized:
		log.Printf("window resized to %dx%d", e.X, e.Y)
	}
}

func (d *demo) Update(g *game.Game) {
	if d.ticks.Add(1) == 1 {
		d.timer.Start()
	}
	d.scroll.Store(int64(d.timer.CurrentDelta() / (20 * time.Millisecond)))
	if d.duration > 0 && d.timer.CurrentDelta() >= d.duration {
		g.Stop()
	}
}

func (d *demo) Render(g *game.Game, r graphics.Renderer) {
	if d.pending.Swap(false) {
		g.SetRenderSettings(d.render)
		g.ApplyRenderSettings()
		d.loadSprite(r)
	}

	w, h := g.Window().Size()
	offset := int(d.scroll.Load() % tileSize)
	for y := -tileSize; y < h; y += tileSize {
		for x := -tileSize; x < w; x += tileSize {
			if ((x+y)/tileSize)%2 == 0 {
				continue
			}
			_ = r.SetDrawColor(geom.RGBA(255, 255, 255, 24))
			_ = r.FillRect(geom.R(x+offset, y+offset, tileSize, tileSize))
		}
	}
	_ = r.SetDrawColor(geom.RGB(230, 180, 40))
	_ = r.DrawLine(geom.Pt(0, h/2), geom.Pt(w-1, h/2))

	if d.tex != nil && !d.tex.IsNull() {
		dst := geom.R(w/2-tileSize, h/2-tileSize, 2*tileSize, 2*tileSize)
		_ = r.Copy(d.tex.Handle(), nil, &dst)
	}
}

// loadSprite builds a small checkered sprite in a pixel buffer and uploads it.
func (d *demo) loadSprite(r graphics.Renderer) {
	d.sprite = surface.NewSurfaceSize(d.alloc, 8, 8)
	d.sprite.Lock()
	pix, pitch := d.sprite.Pixels(), d.sprite.Pitch()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := geom.RGB(220, 60, 60)
			if (x+y)%2 == 0 {
				c = geom.RGB(250, 240, 230)
			}
			off := y*pitch + x*4
			pix[off], pix[off+1], pix[off+2], pix[off+3] = c.R, c.G, c.B, c.A
		}
	}
	d.sprite.Unlock()
	d.tex = surface.NewTexture(r, d.sprite)
}

// release frees the sprite. Call it before the game is closed.
func (d *demo) release() {
	if d.tex != nil {
		d.tex.Destroy()
	}
	if d.sprite != nil && !d.sprite.IsNull() {
		d.sprite.Destroy()
	}
}
