package headless

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
)

// PixelBuffer is an in-memory 32bpp RGBA buffer with a backend-side
// reference count, modelled on SDL surfaces: it starts at 1 and only
// Free releases the memory.
type PixelBuffer struct {
	backend *Backend

	mu       sync.Mutex
	img      *image.NRGBA
	refcount int
	locked   int
	freed    bool
	rle      bool
	alpha    uint8
	blend    graphics.BlendMode
	colorMod geom.Color
}

var _ graphics.PixelHandle = (*PixelBuffer)(nil)

func (b *Backend) newPixelBuffer(img *image.NRGBA) *PixelBuffer {
	b.track(&b.live.pixels, 1)
	return &PixelBuffer{
		backend:  b,
		img:      img,
		refcount: 1,
		alpha:    255,
		blend:    graphics.BlendAlpha,
		colorMod: geom.White,
	}
}

func (b *Backend) CreatePixelBuffer(width, height, depth int, masks graphics.ChannelMasks) (graphics.PixelHandle, error) {
	if width <= 0 || height <= 0 {
		b.setError("headless: invalid pixel buffer size %dx%d", width, height)
		return nil, fmt.Errorf("invalid pixel buffer size %dx%d", width, height)
	}
	if depth != graphics.DefaultDepth || masks != graphics.DefaultMasks() {
		b.setError("headless: unsupported pixel format depth=%d masks=%+v", depth, masks)
		return nil, fmt.Errorf("unsupported pixel format depth=%d", depth)
	}
	if b.fail(OpCreatePixelBuffer) {
		return nil, fmt.Errorf("create pixel buffer: %s", b.Error())
	}
	return b.newPixelBuffer(image.NewNRGBA(image.Rect(0, 0, width, height))), nil
}

// Image exposes the backing image. It aliases the buffer's memory.
func (p *PixelBuffer) Image() *image.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.img
}

// Freed reports whether the memory has been released.
func (p *PixelBuffer) Freed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freed
}

func (p *PixelBuffer) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return 0
	}
	return p.img.Rect.Dx()
}

func (p *PixelBuffer) Height() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return 0
	}
	return p.img.Rect.Dy()
}

func (p *PixelBuffer) Pitch() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return 0
	}
	return p.img.Stride
}

func (p *PixelBuffer) Pixels() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return nil
	}
	return p.img.Pix
}

func (p *PixelBuffer) RefCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refcount
}

func (p *PixelBuffer) Retain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refcount++
}

func (p *PixelBuffer) Release() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refcount--
	return p.refcount
}

func (p *PixelBuffer) Free() {
	p.mu.Lock()
	if p.freed {
		p.mu.Unlock()
		return
	}
	p.freed = true
	p.img = nil
	p.mu.Unlock()
	p.backend.track(&p.backend.live.pixels, -1)
}

func (p *PixelBuffer) Lock() error {
	if p.backend.fail(OpLock) {
		return fmt.Errorf("lock: %s", p.backend.Error())
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.freed {
		return graphics.ErrFreed
	}
	p.locked++
	return nil
}

func (p *PixelBuffer) Unlock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locked > 0 {
		p.locked--
	}
}

// Locked reports whether a Lock is outstanding.
func (p *PixelBuffer) Locked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locked > 0
}

// MustLock mirrors SDL: only RLE-accelerated buffers need locking.
func (p *PixelBuffer) MustLock() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rle
}

func (p *PixelBuffer) BlitScaled(dst graphics.PixelHandle) error {
	d, ok := dst.(*PixelBuffer)
	if !ok || d == nil {
		p.backend.setError("headless: blit target is not a headless pixel buffer")
		return fmt.Errorf("blit: foreign destination %T", dst)
	}
	if p.backend.fail(OpBlitScaled) {
		return fmt.Errorf("blit: %s", p.backend.Error())
	}

	p.mu.Lock()
	src, srcLocked, srcFreed := p.img, p.locked > 0, p.freed
	p.mu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case srcFreed || d.freed:
		p.backend.setError("headless: blit on a freed pixel buffer")
		return graphics.ErrFreed
	case srcLocked || d.locked > 0:
		p.backend.setError("headless: surfaces must not be locked during blit")
		return graphics.ErrLocked
	}
	draw.ApproxBiLinear.Scale(d.img, d.img.Bounds(), src, src.Bounds(), draw.Src, nil)
	return nil
}

func (p *PixelBuffer) ClipRect() geom.Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return geom.Rect{}
	}
	return geom.FromImage(p.img.Rect)
}

func (p *PixelBuffer) SetRLE(enable bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rle = enable
	return nil
}

func (p *PixelBuffer) SetAlphaMod(alpha uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alpha = alpha
	return nil
}

func (p *PixelBuffer) AlphaMod() (uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alpha, nil
}

func (p *PixelBuffer) SetBlendMode(mode graphics.BlendMode) error {
	if mode < graphics.BlendNone || mode > graphics.BlendMod {
		p.backend.setError("headless: invalid blend mode %d", mode)
		return fmt.Errorf("invalid blend mode %d", mode)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blend = mode
	return nil
}

func (p *PixelBuffer) BlendMode() (graphics.BlendMode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blend, nil
}

func (p *PixelBuffer) SetColorMod(c geom.Color) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colorMod = geom.RGB(c.R, c.G, c.B)
	return nil
}

func (p *PixelBuffer) ColorMod() (geom.Color, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colorMod, nil
}

// Fill paints r with c. It is a test and demo helper, not part of the
// PixelHandle contract.
func (p *PixelBuffer) Fill(r geom.Rect, c geom.Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return
	}
	draw.Draw(p.img, r.Image(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

// At returns the colour at (x, y).
func (p *PixelBuffer) At(x, y int) geom.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.img == nil {
		return geom.Color{}
	}
	return geom.FromColor(p.img.NRGBAAt(x, y))
}

// toNRGBA copies any image into a fresh NRGBA buffer anchored at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
