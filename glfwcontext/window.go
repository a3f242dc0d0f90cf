package glfwcontext

import (
	"errors"
	"fmt"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/renderer"
)

// Window is a GLFW window and the render target of its GL context.
type Window struct {
	backend   *Backend
	window    *glfw.Window
	mode      graphics.FullscreenMode
	windowedX int
	windowedY int
	windowedW int
	windowedH int
	destroyed bool
}

var (
	_ graphics.Window = (*Window)(nil)
	_ renderer.Target = (*Window)(nil)
)

// listen routes the window's callbacks into the backend event queue.
func (w *Window) listen() {
	b := w.backend
	w.window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, _ glfw.ModifierKey) {
		b.push(keyEvent(key, scancode, action))
	})
	w.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		b.push(graphics.Event{Kind: graphics.EventMouseMotion, X: int(x), Y: int(y)})
	})
	w.window.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		x, y := win.GetCursorPos()
		b.push(buttonEvent(button, action, int(x), int(y)))
	})
	w.window.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		b.push(graphics.Event{Kind: graphics.EventMouseWheel, X: int(xoff), Y: int(yoff)})
	})
	w.window.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		b.push(graphics.Event{Kind: graphics.EventWindowResized, X: width, Y: height})
	})
	w.window.SetCloseCallback(func(_ *glfw.Window) {
		b.push(graphics.Event{Kind: graphics.EventWindowClose})
		b.push(graphics.Event{Kind: graphics.EventQuit})
	})
}

func (w *Window) SetBordered(bordered bool) {
	if w.destroyed {
		return
	}
	_ = w.backend.protect("set bordered", func() {
		w.window.SetAttrib(glfw.Decorated, btoi(bordered))
	})
}

func (w *Window) SetFullscreen(mode graphics.FullscreenMode) error {
	if w.destroyed {
		return errors.New("set fullscreen: window destroyed")
	}
	if mode == w.mode {
		return nil
	}
	if mode < graphics.Windowed || mode > graphics.FullscreenDesktop {
		w.backend.setError("glfw: invalid fullscreen mode %d", int(mode))
		return fmt.Errorf("invalid fullscreen mode %d", int(mode))
	}

	if mode == graphics.Windowed {
		err := w.backend.protect("leave fullscreen", func() {
			w.window.SetMonitor(nil, w.windowedX, w.windowedY, w.windowedW, w.windowedH, 0)
		})
		if err == nil {
			w.mode = mode
		}
		return err
	}

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		w.backend.setError("glfw: no monitor for fullscreen")
		return errors.New("set fullscreen: no monitor")
	}
	vm := monitor.GetVideoMode()
	if w.mode == graphics.Windowed {
		w.windowedX, w.windowedY = w.window.GetPos()
		w.windowedW, w.windowedH = w.window.GetSize()
	}
	width, height := w.window.GetSize()
	if mode == graphics.FullscreenDesktop {
		width, height = vm.Width, vm.Height
	}
	err := w.backend.protect("enter fullscreen", func() {
		w.window.SetMonitor(monitor, 0, 0, width, height, vm.RefreshRate)
	})
	if err == nil {
		w.mode = mode
	}
	return err
}

func (w *Window) SetSize(width, height int) {
	if w.destroyed {
		return
	}
	w.window.SetSize(width, height)
}

func (w *Window) Size() (int, int) {
	if w.destroyed {
		return 0, 0
	}
	return w.window.GetSize()
}

func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.window.Destroy()
}

// Native returns the underlying *glfw.Window.
func (w *Window) Native() *glfw.Window {
	return w.window
}

// MakeCurrent makes the window's context current on the calling thread.
func (w *Window) MakeCurrent() {
	w.window.MakeContextCurrent()
}

// DetachCurrent makes no context current on the calling thread.
func (w *Window) DetachCurrent() {
	glfw.DetachCurrentContext()
}

func (w *Window) EndFrame() {
	w.window.SwapBuffers()
	glfw.PollEvents()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

func (w *Window) IsGLES() bool {
	// GLFW does not provide a direct way to check if the context is GLES.
	return false
}

func (w *Window) SetError(msg string) {
	w.backend.SetError(msg)
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}
