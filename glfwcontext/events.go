package glfwcontext

import (
	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/tiledl/graphics"
)

var keys = map[glfw.Key]graphics.Key{
	glfw.KeyEscape:    graphics.KeyEscape,
	glfw.KeyEnter:     graphics.KeyEnter,
	glfw.KeySpace:     graphics.KeySpace,
	glfw.KeyTab:       graphics.KeyTab,
	glfw.KeyBackspace: graphics.KeyBackspace,
	glfw.KeyUp:        graphics.KeyUp,
	glfw.KeyDown:      graphics.KeyDown,
	glfw.KeyLeft:      graphics.KeyLeft,
	glfw.KeyRight:     graphics.KeyRight,
	glfw.KeyF1:        graphics.KeyF1,
	glfw.KeyF11:       graphics.KeyF11,
}

func keyEvent(key glfw.Key, scancode int, action glfw.Action) graphics.Event {
	e := graphics.Event{
		Kind:     graphics.EventKeyDown,
		Key:      keys[key],
		Scancode: scancode,
		Repeat:   action == glfw.Repeat,
	}
	if action == glfw.Release {
		e.Kind = graphics.EventKeyUp
	}
	return e
}

// buttonEvent numbers buttons from 1 for the left button, as SDL does.
func buttonEvent(button glfw.MouseButton, action glfw.Action, x, y int) graphics.Event {
	e := graphics.Event{
		Kind:   graphics.EventMouseButtonDown,
		Button: int(button) + 1,
		X:      x,
		Y:      y,
	}
	if action == glfw.Release {
		e.Kind = graphics.EventMouseButtonUp
	}
	return e
}
