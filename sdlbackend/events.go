package sdlbackend

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/richinsley/tiledl/graphics"
)

var keys = map[sdl.Keycode]graphics.Key{
	sdl.K_ESCAPE:    graphics.KeyEscape,
	sdl.K_RETURN:    graphics.KeyEnter,
	sdl.K_SPACE:     graphics.KeySpace,
	sdl.K_TAB:       graphics.KeyTab,
	sdl.K_BACKSPACE: graphics.KeyBackspace,
	sdl.K_UP:        graphics.KeyUp,
	sdl.K_DOWN:      graphics.KeyDown,
	sdl.K_LEFT:      graphics.KeyLeft,
	sdl.K_RIGHT:     graphics.KeyRight,
	sdl.K_F1:        graphics.KeyF1,
	sdl.K_F11:       graphics.KeyF11,
}

func convertEvent(ev sdl.Event) graphics.Event {
	e := graphics.Event{
		Timestamp: time.Duration(ev.GetTimestamp()) * time.Millisecond,
		Native:    ev,
	}
	switch t := ev.(type) {
	case *sdl.QuitEvent:
		e.Kind = graphics.EventQuit
	case *sdl.KeyboardEvent:
		e.Kind = graphics.EventKeyUp
		if t.Type == sdl.KEYDOWN {
			e.Kind = graphics.EventKeyDown
		}
		e.Key = keys[t.Keysym.Sym]
		e.Scancode = int(t.Keysym.Scancode)
		e.Repeat = t.Repeat != 0
	case *sdl.MouseMotionEvent:
		e.Kind = graphics.EventMouseMotion
		e.X, e.Y = int(t.X), int(t.Y)
	case *sdl.MouseButtonEvent:
		e.Kind = graphics.EventMouseButtonUp
		if t.Type == sdl.MOUSEBUTTONDOWN {
			e.Kind = graphics.EventMouseButtonDown
		}
		e.X, e.Y = int(t.X), int(t.Y)
		e.Button = int(t.Button)
	case *sdl.MouseWheelEvent:
		e.Kind = graphics.EventMouseWheel
		e.X, e.Y = int(t.X), int(t.Y)
	case *sdl.WindowEvent:
		switch t.Event {
		case sdl.WINDOWEVENT_RESIZED:
			e.Kind = graphics.EventWindowResized
			e.X, e.Y = int(t.Data1), int(t.Data2)
		case sdl.WINDOWEVENT_CLOSE:
			e.Kind = graphics.EventWindowClose
		}
	}
	return e
}
