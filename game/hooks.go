package game

import (
	"errors"
	"fmt"

	"github.com/richinsley/tiledl/graphics"
)

// ErrHookNotImplemented is the panic value of the UnimplementedHooks methods.
var ErrHookNotImplemented = errors.New("game: hook not implemented")

// Hooks is what a concrete game supplies. Event and Update run on the
// update goroutine, Render on the goroutine that called Start.
type Hooks interface {
	Event(g *Game, e graphics.Event)
	Update(g *Game)
	Render(g *Game, r graphics.Renderer)
}

// UnimplementedHooks panics from every method. Embed it and override the
// hooks the game uses; reaching one that was not overridden is a bug.
type UnimplementedHooks struct{}

func (UnimplementedHooks) Event(*Game, graphics.Event) {
	panic(fmt.Errorf("Event: %w", ErrHookNotImplemented))
}

func (UnimplementedHooks) Update(*Game) {
	panic(fmt.Errorf("Update: %w", ErrHookNotImplemented))
}

func (UnimplementedHooks) Render(*Game, graphics.Renderer) {
	panic(fmt.Errorf("Render: %w", ErrHookNotImplemented))
}

// HookFuncs adapts plain functions to Hooks. A nil field behaves like
// UnimplementedHooks.
type HookFuncs struct {
	EventFunc  func(g *Game, e graphics.Event)
	UpdateFunc func(g *Game)
	RenderFunc func(g *Game, r graphics.Renderer)
}

func (h HookFuncs) Event(g *Game, e graphics.Event) {
	if h.EventFunc == nil {
		UnimplementedHooks{}.Event(g, e)
	}
	h.EventFunc(g, e)
}

func (h HookFuncs) Update(g *Game) {
	if h.UpdateFunc == nil {
		UnimplementedHooks{}.Update(g)
	}
	h.UpdateFunc(g)
}

func (h HookFuncs) Render(g *Game, r graphics.Renderer) {
	if h.RenderFunc == nil {
		UnimplementedHooks{}.Render(g, r)
	}
	h.RenderFunc(g, r)
}
