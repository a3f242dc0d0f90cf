package game

import (
	"context"

	"github.com/richinsley/tiledl/graphics"
)

func (g *Game) updateLoop() {
	log := g.log()
	log.Debug("started update loop", "thread", g.backend.ThreadID())
	ctx := context.Background()
	tick := NewTimer(g.backend)

	for !g.shuttingDown.Load() {
		tick.Start()

		g.backend.PumpEvents()
		for !g.shuttingDown.Load() {
			e, ok := g.backend.PollEvent()
			if !ok {
				break
			}
			g.hooks.Event(g, e)
		}

		g.hooks.Update(g)

		if msg := g.backend.Error(); msg != "" {
			log.Error("backend error", "err", msg)
			g.backend.ClearError()
		}

		g.backend.Delay(g.tickDelay)
		tick.Stop()
		if log.Enabled(ctx, graphics.LevelTrace) {
			log.Log(ctx, graphics.LevelTrace, "update", "tick_time", tick.Delta())
		}
	}
	log.Debug("update loop exited")
}

func (g *Game) renderLoop() {
	log := g.log()
	ctx := context.Background()
	frame, render := NewTimer(g.backend), NewTimer(g.backend)

	frame.Start()
	for !g.shuttingDown.Load() {
		render.Start()
		if err := g.renderer.SetDrawColor(g.background.Load()); err != nil {
			g.drawFailed("set draw color", err)
		}
		if err := g.renderer.Clear(); err != nil {
			g.drawFailed("clear", err)
		}
		g.hooks.Render(g, g.renderer)
		render.Stop()

		if g.sink != nil {
			g.writeFrame()
		}
		g.renderer.Present()

		frame.Stop()
		if log.Enabled(ctx, graphics.LevelTrace) {
			log.Log(ctx, graphics.LevelTrace, "frame", "frame_time", frame.Delta(), "render_time", render.Delta())
		}
		frame.Start()
	}
	log.Debug("render loop exited")
}

// drawFailed logs a failed draw call. The frame carries on.
func (g *Game) drawFailed(call string, err error) {
	g.log().Debug("draw call failed", "call", call, "err", err, "backend_error", g.backend.Error())
	g.backend.ClearError()
}

func (g *Game) writeFrame() {
	img, err := g.renderer.ReadPixels()
	if err == nil {
		err = g.sink.WriteFrame(img)
	}
	if err != nil {
		g.log().Error("frame sink failed, no longer recording", "err", err)
		g.sink = nil
	}
}
