package game

import "strconv"

// Status is the result of Init.
type Status int

const (
	StatusNoVideo        Status = -1
	StatusOK             Status = 0
	StatusWindowFailed   Status = 1
	StatusRendererFailed Status = 2
	StatusContextFailed  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoVideo:
		return "video not initialised"
	case StatusWindowFailed:
		return "window creation failed"
	case StatusRendererFailed:
		return "renderer creation failed"
	case StatusContextFailed:
		return "context creation failed"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}
