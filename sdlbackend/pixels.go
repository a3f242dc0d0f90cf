package sdlbackend

import (
	"fmt"
	"io"

	"github.com/veandco/go-sdl2/img"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
)

// PixelBuffer wraps an SDL surface. SDL's own refcount on the surface is
// the backend count.
type PixelBuffer struct {
	s *sdl.Surface
}

var _ graphics.PixelHandle = (*PixelBuffer)(nil)

// Native returns the SDL surface.
func (p *PixelBuffer) Native() *sdl.Surface { return p.s }

func (Backend) CreatePixelBuffer(width, height, depth int, masks graphics.ChannelMasks) (graphics.PixelHandle, error) {
	s, err := sdl.CreateRGBSurface(0, int32(width), int32(height), int32(depth), masks.R, masks.G, masks.B, masks.A)
	if err != nil {
		return nil, fmt.Errorf("create surface %dx%d: %w", width, height, err)
	}
	return &PixelBuffer{s: s}, nil
}

func (Backend) DecodePixelBuffer(src io.Reader, format string) (graphics.PixelHandle, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	rw, err := sdl.RWFromMem(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	var s *sdl.Surface
	if format == "" {
		s, err = img.LoadRW(rw, true)
	} else {
		s, err = img.LoadTypedRW(rw, true, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return toRGBA32(s)
}

func (Backend) LoadPixelBuffer(path string) (graphics.PixelHandle, error) {
	s, err := img.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return toRGBA32(s)
}

// toRGBA32 converts a decoded surface to the R, G, B, A byte layout every
// PixelHandle uses.
func toRGBA32(s *sdl.Surface) (graphics.PixelHandle, error) {
	if s.Format.Format == sdl.PIXELFORMAT_RGBA32 {
		return &PixelBuffer{s: s}, nil
	}
	conv, err := s.ConvertFormat(sdl.PIXELFORMAT_RGBA32, 0)
	s.Free()
	if err != nil {
		return nil, fmt.Errorf("convert to RGBA32: %w", err)
	}
	return &PixelBuffer{s: conv}, nil
}

func (p *PixelBuffer) Width() int     { return int(p.s.W) }
func (p *PixelBuffer) Height() int    { return int(p.s.H) }
func (p *PixelBuffer) Pitch() int     { return int(p.s.Pitch) }
func (p *PixelBuffer) Pixels() []byte { return p.s.Pixels() }

func (p *PixelBuffer) RefCount() int { return int(p.s.RefCount) }
func (p *PixelBuffer) Retain()       { p.s.RefCount++ }

func (p *PixelBuffer) Release() int {
	p.s.RefCount--
	return int(p.s.RefCount)
}

// Free releases the surface. SDL_FreeSurface itself only frees at a
// count of at most one, so the count is forced down first.
func (p *PixelBuffer) Free() {
	if p.s == nil {
		return
	}
	p.s.RefCount = 1
	p.s.Free()
	p.s = nil
}

func (p *PixelBuffer) Lock() error    { return p.s.Lock() }
func (p *PixelBuffer) Unlock()        { p.s.Unlock() }
func (p *PixelBuffer) MustLock() bool { return p.s.MustLock() }

func (p *PixelBuffer) BlitScaled(dst graphics.PixelHandle) error {
	d, ok := dst.(*PixelBuffer)
	if !ok {
		return fmt.Errorf("blit: foreign destination %T", dst)
	}
	return p.s.BlitScaled(nil, d.s, nil)
}

func (p *PixelBuffer) ClipRect() geom.Rect {
	r := p.s.ClipRect
	return geom.R(int(r.X), int(r.Y), int(r.W), int(r.H))
}

func (p *PixelBuffer) SetRLE(enable bool) error       { return p.s.SetRLE(enable) }
func (p *PixelBuffer) SetAlphaMod(alpha uint8) error  { return p.s.SetAlphaMod(alpha) }
func (p *PixelBuffer) AlphaMod() (uint8, error)       { return p.s.GetAlphaMod() }
func (p *PixelBuffer) SetColorMod(c geom.Color) error { return p.s.SetColorMod(c.R, c.G, c.B) }

func (p *PixelBuffer) SetBlendMode(mode graphics.BlendMode) error {
	bm, err := toSDLBlend(mode)
	if err != nil {
		return err
	}
	return p.s.SetBlendMode(bm)
}

func (p *PixelBuffer) BlendMode() (graphics.BlendMode, error) {
	bm, err := p.s.GetBlendMode()
	if err != nil {
		return graphics.BlendNone, err
	}
	return fromSDLBlend(bm), nil
}

func (p *PixelBuffer) ColorMod() (geom.Color, error) {
	r, g, b, err := p.s.GetColorMod()
	return geom.RGB(r, g, b), err
}

func toSDLBlend(mode graphics.BlendMode) (sdl.BlendMode, error) {
	switch mode {
	case graphics.BlendNone:
		return sdl.BLENDMODE_NONE, nil
	case graphics.BlendAlpha:
		return sdl.BLENDMODE_BLEND, nil
	case graphics.BlendAdd:
		return sdl.BLENDMODE_ADD, nil
	case graphics.BlendMod:
		return sdl.BLENDMODE_MOD, nil
	}
	return 0, fmt.Errorf("invalid blend mode %d", mode)
}

func fromSDLBlend(bm sdl.BlendMode) graphics.BlendMode {
	switch bm {
	case sdl.BLENDMODE_BLEND:
		return graphics.BlendAlpha
	case sdl.BLENDMODE_ADD:
		return graphics.BlendAdd
	case sdl.BLENDMODE_MOD:
		return graphics.BlendMod
	}
	return graphics.BlendNone
}
