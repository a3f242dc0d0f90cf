package headless

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
)

// Renderer draws into an NRGBA framebuffer the size of its window.
type Renderer struct {
	backend *Backend
	window  *Window

	mu        sync.Mutex
	fb        *image.NRGBA
	color     geom.Color
	frames    int
	presented *image.NRGBA
	destroyed bool
}

var _ graphics.Renderer = (*Renderer)(nil)

func newRenderer(b *Backend, w *Window) *Renderer {
	width, height := w.Size()
	return &Renderer{
		backend: b,
		window:  w,
		fb:      image.NewNRGBA(image.Rect(0, 0, width, height)),
		color:   geom.Black,
	}
}

// target returns the framebuffer, reallocating it when the window was
// resized since the last frame. Callers hold r.mu.
func (r *Renderer) target() *image.NRGBA {
	width, height := r.window.Size()
	if r.fb.Rect.Dx() != width || r.fb.Rect.Dy() != height {
		r.fb = image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	return r.fb
}

func (r *Renderer) draw(what string) error {
	if r.destroyed {
		return fmt.Errorf("%s: %w", what, graphics.ErrFreed)
	}
	if r.backend.fail(OpDraw) {
		return fmt.Errorf("%s: %s", what, r.backend.Error())
	}
	return nil
}

func (r *Renderer) SetDrawColor(c geom.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.draw("set draw color"); err != nil {
		return err
	}
	r.color = c
	return nil
}

// DrawColor returns the current draw colour.
func (r *Renderer) DrawColor() geom.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.color
}

func (r *Renderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.draw("clear"); err != nil {
		return err
	}
	fb := r.target()
	draw.Draw(fb, fb.Bounds(), image.NewUniform(r.color.NRGBA()), image.Point{}, draw.Src)
	return nil
}

func (r *Renderer) DrawLine(from, to geom.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.draw("draw line"); err != nil {
		return err
	}
	fb := r.target()
	c := r.color.NRGBA()

	// Bresenham
	dx, dy := abs(to.X-from.X), -abs(to.Y-from.Y)
	sx, sy := sign(to.X-from.X), sign(to.Y-from.Y)
	e := dx + dy
	x, y := from.X, from.Y
	for {
		if image.Pt(x, y).In(fb.Rect) {
			fb.SetNRGBA(x, y, c)
		}
		if x == to.X && y == to.Y {
			return nil
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (r *Renderer) FillRect(rect geom.Rect) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.draw("fill rect"); err != nil {
		return err
	}
	fb := r.target()
	draw.Draw(fb, rect.Image(), image.NewUniform(r.color.NRGBA()), image.Point{}, draw.Over)
	return nil
}

func (r *Renderer) Copy(tex graphics.TextureHandle, src, dst *geom.Rect) error {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		r.backend.setError("headless: foreign texture %T", tex)
		return fmt.Errorf("copy: foreign texture %T", tex)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.draw("copy"); err != nil {
		return err
	}
	fb := r.target()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return fmt.Errorf("copy: %w", graphics.ErrFreed)
	}
	sr := t.img.Bounds()
	if src != nil {
		sr = src.Image().Intersect(sr)
	}
	dr := fb.Bounds()
	if dst != nil {
		dr = dst.Image()
	}
	op := draw.Over
	if t.blend == graphics.BlendNone {
		op = draw.Src
	}
	var opts *draw.Options
	if t.alpha != 255 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: t.alpha})}
	}
	draw.ApproxBiLinear.Scale(fb, dr, t.img, sr, op, opts)
	return nil
}

// Present ends the frame and keeps a copy of it for Frame.
func (r *Renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.frames++
	fb := r.target()
	r.presented = image.NewNRGBA(fb.Rect)
	copy(r.presented.Pix, fb.Pix)
}

// Frames reports how many frames were presented.
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Frame returns the last presented frame, nil before the first Present.
func (r *Renderer) Frame() *image.NRGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presented
}

func (r *Renderer) CreateTexture(src graphics.PixelHandle) (graphics.TextureHandle, error) {
	p, ok := src.(*PixelBuffer)
	if !ok || p == nil || p.Freed() {
		r.backend.setError("headless: invalid texture source")
		return nil, fmt.Errorf("create texture: invalid source")
	}
	if r.backend.fail(OpCreateTexture) {
		return nil, fmt.Errorf("create texture: %s", r.backend.Error())
	}
	p.mu.Lock()
	img := image.NewNRGBA(p.img.Rect)
	copy(img.Pix, p.img.Pix)
	alpha, blend, mod := p.alpha, p.blend, p.colorMod
	p.mu.Unlock()

	r.backend.track(&r.backend.live.textures, 1)
	return &Texture{
		backend:  r.backend,
		img:      img,
		alpha:    alpha,
		blend:    blend,
		colorMod: mod,
	}, nil
}

func (r *Renderer) ReadPixels() (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return nil, graphics.ErrFreed
	}
	fb := r.target()
	out := image.NewNRGBA(fb.Rect)
	copy(out.Pix, fb.Pix)
	return out, nil
}

// Destroyed reports whether Destroy was called.
func (r *Renderer) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

func (r *Renderer) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	r.mu.Unlock()
	r.backend.track(&r.backend.live.renderers, -1)
}

// Texture is a static texture holding a copy of its source pixels.
type Texture struct {
	backend *Backend

	mu        sync.Mutex
	img       *image.NRGBA
	locked    bool
	alpha     uint8
	blend     graphics.BlendMode
	colorMod  geom.Color
	destroyed bool
}

var _ graphics.TextureHandle = (*Texture)(nil)

func (t *Texture) Query() (graphics.TextureInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return graphics.TextureInfo{}, graphics.ErrFreed
	}
	return graphics.TextureInfo{
		Format: graphics.FormatRGBA32,
		Access: graphics.AccessStatic,
		Width:  t.img.Rect.Dx(),
		Height: t.img.Rect.Dy(),
	}, nil
}

func (t *Texture) Update(rect *geom.Rect, pixels []byte, pitch int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return graphics.ErrFreed
	}
	area := t.img.Rect
	if rect != nil {
		area = rect.Image().Intersect(area)
	}
	rowBytes := area.Dx() * 4
	if pitch < rowBytes || len(pixels) < pitch*(area.Dy()-1)+rowBytes {
		t.backend.setError("headless: texture update buffer too small")
		return fmt.Errorf("texture update: buffer too small")
	}
	for y := 0; y < area.Dy(); y++ {
		off := t.img.PixOffset(area.Min.X, area.Min.Y+y)
		copy(t.img.Pix[off:off+rowBytes], pixels[y*pitch:y*pitch+rowBytes])
	}
	return nil
}

// Lock only works on streaming textures, and every texture here is static.
func (t *Texture) Lock(rect *geom.Rect) ([]byte, int, error) {
	t.backend.setError("headless: texture is not streamable")
	return nil, 0, fmt.Errorf("texture lock: not a streaming texture")
}

func (t *Texture) Unlock() {}

func (t *Texture) SetAlphaMod(alpha uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alpha = alpha
	return nil
}

func (t *Texture) AlphaMod() (uint8, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alpha, nil
}

func (t *Texture) SetBlendMode(mode graphics.BlendMode) error {
	if mode < graphics.BlendNone || mode > graphics.BlendMod {
		t.backend.setError("headless: invalid blend mode %d", mode)
		return fmt.Errorf("invalid blend mode %d", mode)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.blend = mode
	return nil
}

func (t *Texture) BlendMode() (graphics.BlendMode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blend, nil
}

func (t *Texture) SetColorMod(c geom.Color) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.colorMod = geom.RGB(c.R, c.G, c.B)
	return nil
}

func (t *Texture) ColorMod() (geom.Color, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.colorMod, nil
}

// Destroyed reports whether Destroy was called.
func (t *Texture) Destroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

func (t *Texture) Destroy() error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return graphics.ErrFreed
	}
	t.destroyed = true
	t.mu.Unlock()
	t.backend.track(&t.backend.live.textures, -1)
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
