package sdlbackend

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
)

// Renderer wraps an SDL renderer.
type Renderer struct {
	r *sdl.Renderer
}

var _ graphics.Renderer = (*Renderer)(nil)

func sdlRect(r *geom.Rect) *sdl.Rect {
	if r == nil {
		return nil
	}
	return &sdl.Rect{X: int32(r.X), Y: int32(r.Y), W: int32(r.W), H: int32(r.H)}
}

func (r *Renderer) SetDrawColor(c geom.Color) error { return r.r.SetDrawColor(c.R, c.G, c.B, c.A) }
func (r *Renderer) Clear() error                    { return r.r.Clear() }

func (r *Renderer) DrawLine(from, to geom.Point) error {
	return r.r.DrawLine(int32(from.X), int32(from.Y), int32(to.X), int32(to.Y))
}

func (r *Renderer) FillRect(rect geom.Rect) error {
	return r.r.FillRect(sdlRect(&rect))
}

func (r *Renderer) Copy(tex graphics.TextureHandle, src, dst *geom.Rect) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("copy: foreign texture %T", tex)
	}
	return r.r.Copy(t.t, sdlRect(src), sdlRect(dst))
}

// Present shows the frame and pumps the native event queue, which SDL
// only allows on this thread.
func (r *Renderer) Present() {
	r.r.Present()
	sdl.PumpEvents()
}

func (r *Renderer) CreateTexture(src graphics.PixelHandle) (graphics.TextureHandle, error) {
	p, ok := src.(*PixelBuffer)
	if !ok {
		return nil, fmt.Errorf("create texture: foreign pixel buffer %T", src)
	}
	t, err := r.r.CreateTextureFromSurface(p.s)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	return &Texture{t: t}, nil
}

func (r *Renderer) ReadPixels() (*image.NRGBA, error) {
	w, h, err := r.r.GetOutputSize()
	if err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	if len(img.Pix) == 0 {
		return img, nil
	}
	if err := r.r.ReadPixels(nil, sdl.PIXELFORMAT_RGBA32, unsafe.Pointer(&img.Pix[0]), img.Stride); err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	return img, nil
}

func (r *Renderer) Destroy() {
	if r.r == nil {
		return
	}
	r.r.Destroy()
	r.r = nil
}

// Texture wraps an SDL texture.
type Texture struct {
	t *sdl.Texture
}

var _ graphics.TextureHandle = (*Texture)(nil)

func (t *Texture) Query() (graphics.TextureInfo, error) {
	format, access, w, h, err := t.t.Query()
	if err != nil {
		return graphics.TextureInfo{}, err
	}
	return graphics.TextureInfo{
		Format: format,
		Access: graphics.TextureAccess(access),
		Width:  int(w),
		Height: int(h),
	}, nil
}

func (t *Texture) Update(rect *geom.Rect, pixels []byte, pitch int) error {
	if len(pixels) == 0 {
		return fmt.Errorf("texture update: no pixels")
	}
	return t.t.Update(sdlRect(rect), unsafe.Pointer(&pixels[0]), pitch)
}

func (t *Texture) Lock(rect *geom.Rect) ([]byte, int, error) {
	return t.t.Lock(sdlRect(rect))
}

func (t *Texture) Unlock()                       { t.t.Unlock() }
func (t *Texture) SetAlphaMod(alpha uint8) error { return t.t.SetAlphaMod(alpha) }
func (t *Texture) AlphaMod() (uint8, error)      { return t.t.GetAlphaMod() }

func (t *Texture) SetBlendMode(mode graphics.BlendMode) error {
	bm, err := toSDLBlend(mode)
	if err != nil {
		return err
	}
	return t.t.SetBlendMode(bm)
}

func (t *Texture) BlendMode() (graphics.BlendMode, error) {
	bm, err := t.t.GetBlendMode()
	if err != nil {
		return graphics.BlendNone, err
	}
	return fromSDLBlend(bm), nil
}

func (t *Texture) SetColorMod(c geom.Color) error { return t.t.SetColorMod(c.R, c.G, c.B) }

func (t *Texture) ColorMod() (geom.Color, error) {
	r, g, b, err := t.t.GetColorMod()
	return geom.RGB(r, g, b), err
}

func (t *Texture) Destroy() error {
	if t.t == nil {
		return graphics.ErrFreed
	}
	err := t.t.Destroy()
	t.t = nil
	return err
}
