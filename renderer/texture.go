package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
)

// Texture is an RGBA8 GL texture owned by a Renderer. It is released with
// its renderer if not destroyed first.
type Texture struct {
	owner    *Renderer
	id       uint32
	width    int
	height   int
	alpha    uint8
	blend    graphics.BlendMode
	colorMod geom.Color
}

var _ graphics.TextureHandle = (*Texture)(nil)

func newTexture(r *Renderer, width, height int) *Texture {
	t := &Texture{
		owner:    r,
		width:    width,
		height:   height,
		alpha:    255,
		blend:    graphics.BlendAlpha,
		colorMod: geom.White,
	}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// upload writes rows of pitch bytes into area of the texture.
func (t *Texture) upload(area geom.Rect, pixels []byte, pitch int) error {
	rowBytes := area.W * 4
	if pitch < rowBytes || pitch%4 != 0 || len(pixels) < pitch*(area.H-1)+rowBytes {
		return t.owner.fail("texture update: buffer too small or misaligned (pitch %d, %d bytes)", pitch, len(pixels))
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(pitch/4))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(area.X), int32(area.Y), int32(area.W), int32(area.H), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t.owner.check("texture update")
}

func (t *Texture) release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func (t *Texture) Query() (graphics.TextureInfo, error) {
	if t.id == 0 {
		return graphics.TextureInfo{}, graphics.ErrFreed
	}
	return graphics.TextureInfo{
		Format: graphics.FormatRGBA32,
		Access: graphics.AccessStatic,
		Width:  t.width,
		Height: t.height,
	}, nil
}

func (t *Texture) Update(rect *geom.Rect, pixels []byte, pitch int) error {
	if t.id == 0 {
		return graphics.ErrFreed
	}
	area := geom.R(0, 0, t.width, t.height)
	if rect != nil {
		area = geom.FromImage(rect.Image().Intersect(area.Image()))
	}
	if area.Empty() {
		return nil
	}
	return t.upload(area, pixels, pitch)
}

// Lock only works on streaming textures, and every texture here is static.
func (t *Texture) Lock(rect *geom.Rect) ([]byte, int, error) {
	return nil, 0, t.owner.fail("texture lock: not a streaming texture")
}

func (t *Texture) Unlock() {}

func (t *Texture) SetAlphaMod(alpha uint8) error {
	t.alpha = alpha
	return nil
}

func (t *Texture) AlphaMod() (uint8, error) {
	return t.alpha, nil
}

func (t *Texture) SetBlendMode(mode graphics.BlendMode) error {
	if mode < graphics.BlendNone || mode > graphics.BlendMod {
		return t.owner.fail("invalid blend mode %d", mode)
	}
	t.blend = mode
	return nil
}

func (t *Texture) BlendMode() (graphics.BlendMode, error) {
	return t.blend, nil
}

func (t *Texture) SetColorMod(c geom.Color) error {
	t.colorMod = geom.RGB(c.R, c.G, c.B)
	return nil
}

func (t *Texture) ColorMod() (geom.Color, error) {
	return t.colorMod, nil
}

func (t *Texture) Destroy() error {
	if t.id == 0 {
		return fmt.Errorf("destroy texture: %w", graphics.ErrFreed)
	}
	t.release()
	if t.owner != nil && t.owner.textures != nil {
		delete(t.owner.textures, t)
	}
	return nil
}
