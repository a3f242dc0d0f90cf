package graphics

import (
	"fmt"
	"strconv"
	"strings"
)

// WindowFlags values match SDL2's SDL_WindowFlags so the SDL backend can
// pass them through untouched.
type WindowFlags uint32

const (
	WindowFullscreen        WindowFlags = 0x00000001
	WindowOpenGL            WindowFlags = 0x00000002
	WindowShown             WindowFlags = 0x00000004
	WindowHidden            WindowFlags = 0x00000008
	WindowBorderless        WindowFlags = 0x00000010
	WindowResizable         WindowFlags = 0x00000020
	WindowFullscreenDesktop WindowFlags = WindowFullscreen | 0x00001000
)

// RendererFlags values match SDL2's SDL_RendererFlags.
type RendererFlags uint32

const (
	RendererSoftware      RendererFlags = 0x00000001
	RendererAccelerated   RendererFlags = 0x00000002
	RendererPresentVSync  RendererFlags = 0x00000004
	RendererTargetTexture RendererFlags = 0x00000008
)

// FullscreenMode selects how a window occupies the display.
type FullscreenMode int

const (
	Windowed FullscreenMode = iota
	Fullscreen
	FullscreenDesktop
)

var fullscreenNames = [...]string{"windowed", "fullscreen", "fullscreen-desktop"}

func (m FullscreenMode) String() string {
	if m < 0 || int(m) >= len(fullscreenNames) {
		return "FullscreenMode(" + strconv.Itoa(int(m)) + ")"
	}
	return fullscreenNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m FullscreenMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(fullscreenNames) {
		return nil, fmt.Errorf("invalid fullscreen mode %d", int(m))
	}
	return []byte(fullscreenNames[m]), nil
}

// UnmarshalText accepts the mode names as well as the numeric values 0-2.
func (m *FullscreenMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range fullscreenNames {
		if s == name {
			*m = FullscreenMode(i)
			return nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(fullscreenNames) {
		*m = FullscreenMode(n)
		return nil
	}
	return fmt.Errorf("unknown fullscreen mode %q", s)
}

// ContextAttr is a graphics context attribute set before context creation.
type ContextAttr int

const (
	AttrRedSize ContextAttr = iota
	AttrGreenSize
	AttrBlueSize
	AttrAlphaSize
	AttrDoubleBuffer
	AttrMultisampleBuffers
	AttrMultisampleSamples
)

func (a ContextAttr) String() string {
	switch a {
	case AttrRedSize:
		return "red_size"
	case AttrGreenSize:
		return "green_size"
	case AttrBlueSize:
		return "blue_size"
	case AttrAlphaSize:
		return "alpha_size"
	case AttrDoubleBuffer:
		return "doublebuffer"
	case AttrMultisampleBuffers:
		return "multisamplebuffers"
	case AttrMultisampleSamples:
		return "multisamplesamples"
	}
	return "ContextAttr(" + strconv.Itoa(int(a)) + ")"
}

// BlendMode is how a pixel buffer or texture is combined with its target.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdd
	BlendMod
)

// TextureAccess describes how a texture may be updated.
type TextureAccess int

const (
	AccessStatic TextureAccess = iota
	AccessStreaming
	AccessTarget
)
