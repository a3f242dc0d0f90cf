package surface

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
)

// Texture owns a renderer texture uploaded from a Surface. The texture is
// independent of its source once created. Like Surface, a null Texture
// panics with graphics.ErrNotInitialised on everything except IsNull,
// Destroy, Handle and Equal.
type Texture struct {
	usage  Usage
	owner  graphics.Renderer
	handle graphics.TextureHandle
	info   graphics.TextureInfo
	id     string
}

func (t *Texture) log() *slog.Logger {
	return graphics.Logger().With("component", "texture", "id", t.id)
}

// NewTexture uploads src through r. A failed upload is logged and leaves
// the Texture null.
func NewTexture(r graphics.Renderer, src *Surface) *Texture {
	t := &Texture{id: uuid.NewString()}
	if r == nil || src.IsNull() {
		t.log().Error("cannot create texture without a renderer and a source surface")
		return t
	}
	h, err := r.CreateTexture(src.Handle())
	if err != nil {
		t.log().Error("failed to create texture", "source", src.id, "err", err)
		return t
	}
	t.owner = r
	t.handle = h
	t.Query()
	return t
}

func (t *Texture) IsNull() bool {
	return t == nil || t.handle == nil
}

func (t *Texture) mustHandle() graphics.TextureHandle {
	if t.IsNull() {
		panic(fmt.Errorf("texture: %w", graphics.ErrNotInitialised))
	}
	return t.handle
}

// Equal reports whether both Textures own the same backend texture.
func (t *Texture) Equal(other *Texture) bool {
	var a, b graphics.TextureHandle
	if t != nil {
		a = t.handle
	}
	if other != nil {
		b = other.handle
	}
	return a == b
}

func (t *Texture) Ref() {
	t.mustHandle()
	if !t.usage.Ref() {
		t.log().Warn("reference count overflow", "max", MaxUsage)
	}
}

func (t *Texture) Deref() {
	t.mustHandle()
	if !t.usage.Deref() {
		t.log().Warn("dereferenced with no references left", "refs", t.usage.Count())
	}
}

func (t *Texture) RefCount() int { return t.usage.Count() }

// Destroy releases the backend texture regardless of the reference count.
func (t *Texture) Destroy() {
	if t.IsNull() {
		return
	}
	log := t.log()
	if refs := t.usage.Count(); refs != 0 {
		log.Warn("destroyed while still referenced", "refs", refs)
	}
	if err := t.handle.Destroy(); err != nil {
		log.Error("failed to destroy texture", "err", err)
	}
	t.handle = nil
	t.owner = nil
}

// Query refreshes and returns the cached format, access and size.
func (t *Texture) Query() graphics.TextureInfo {
	info, err := t.mustHandle().Query()
	if err != nil {
		t.log().Error("failed to query texture", "err", err)
		return t.info
	}
	t.info = info
	return info
}

// Update replaces the pixels inside rect, or the whole texture when rect is nil.
func (t *Texture) Update(rect *geom.Rect, pixels []byte, pitch int) error {
	if err := t.mustHandle().Update(rect, pixels, pitch); err != nil {
		t.log().Warn("failed to update texture", "err", err)
		return err
	}
	return nil
}

// Lock gives write access to a streaming texture.
func (t *Texture) Lock(rect *geom.Rect) ([]byte, int, error) {
	px, pitch, err := t.mustHandle().Lock(rect)
	if err != nil {
		t.log().Warn("failed to lock texture", "err", err)
	}
	return px, pitch, err
}

func (t *Texture) Unlock() { t.mustHandle().Unlock() }

func (t *Texture) SetAlphaMod(alpha uint8) {
	if err := t.mustHandle().SetAlphaMod(alpha); err != nil {
		t.log().Warn("failed to set alpha mod", "alpha", alpha, "err", err)
	}
}

func (t *Texture) SetBlendMode(mode graphics.BlendMode) {
	if err := t.mustHandle().SetBlendMode(mode); err != nil {
		t.log().Warn("failed to set blend mode", "mode", mode, "err", err)
	}
}

func (t *Texture) SetColorMod(c geom.Color) {
	if err := t.mustHandle().SetColorMod(c); err != nil {
		t.log().Warn("failed to set color mod", "color", c, "err", err)
	}
}

func (t *Texture) AlphaMod() uint8 {
	a, err := t.mustHandle().AlphaMod()
	if err != nil {
		t.log().Error("failed to get alpha mod", "err", err)
	}
	return a
}

func (t *Texture) BlendMode() graphics.BlendMode {
	m, err := t.mustHandle().BlendMode()
	if err != nil {
		t.log().Error("failed to get blend mode", "err", err)
	}
	return m
}

func (t *Texture) ColorMod() geom.Color {
	c, err := t.mustHandle().ColorMod()
	if err != nil {
		t.log().Error("failed to get color mod", "err", err)
	}
	return c
}

// Owner returns the renderer the texture was created with.
func (t *Texture) Owner() graphics.Renderer { return t.owner }

func (t *Texture) Handle() graphics.TextureHandle {
	if t == nil {
		return nil
	}
	return t.handle
}

func (t *Texture) Format() uint32                 { t.mustHandle(); return t.info.Format }
func (t *Texture) Access() graphics.TextureAccess { t.mustHandle(); return t.info.Access }
func (t *Texture) Width() int                     { t.mustHandle(); return t.info.Width }
func (t *Texture) Height() int                    { t.mustHandle(); return t.info.Height }
