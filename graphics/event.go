package graphics

import "time"

// EventKind classifies an input or window event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventQuit
	EventKeyDown
	EventKeyUp
	EventMouseMotion
	EventMouseButtonDown
	EventMouseButtonUp
	EventMouseWheel
	EventWindowResized
	EventWindowClose
)

func (k EventKind) String() string {
	switch k {
	case EventQuit:
		return "quit"
	case EventKeyDown:
		return "key-down"
	case EventKeyUp:
		return "key-up"
	case EventMouseMotion:
		return "mouse-motion"
	case EventMouseButtonDown:
		return "mouse-down"
	case EventMouseButtonUp:
		return "mouse-up"
	case EventMouseWheel:
		return "mouse-wheel"
	case EventWindowResized:
		return "window-resized"
	case EventWindowClose:
		return "window-close"
	}
	return "unknown"
}

// Key is a backend-neutral key code. Keys a backend cannot map arrive as
// KeyUnknown with the native code in Event.Scancode.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF11
)

// Event is one entry of the backend event queue.
type Event struct {
	Kind      EventKind
	Timestamp time.Duration

	Key      Key
	Scancode int
	Repeat   bool

	// X and Y hold the pointer position, the wheel delta, or the new window size.
	X, Y   int
	Button int

	// Native is the backend's own event value, when it has one.
	Native any
}
