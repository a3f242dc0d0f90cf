package surface

import (
	"errors"
	"strings"
	"testing"

	"github.com/richinsley/tiledl/geom"
	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/headless"
)

func newRenderer(t *testing.T) (*headless.Backend, graphics.Renderer) {
	t.Helper()
	b := headless.New()
	b.Init()
	w, err := b.CreateWindow("texture", 8, 8, graphics.WindowHidden)
	if err != nil {
		t.Fatal(err)
	}
	r, err := b.CreateRenderer(w, -1, graphics.RendererSoftware)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Destroy()
		w.Destroy()
		b.Quit()
	})
	return b, r
}

func TestNewTexture(t *testing.T) {
	b, r := newRenderer(t)
	src := NewSurfaceSize(b, 4, 3)
	tex := NewTexture(r, src)
	src.Destroy()

	if tex.IsNull() {
		t.Fatal("texture upload failed")
	}
	if tex.Width() != 4 || tex.Height() != 3 || tex.Access() != graphics.AccessStatic {
		t.Errorf("cached info %dx%d access %v", tex.Width(), tex.Height(), tex.Access())
	}
	if tex.Owner() != r {
		t.Error("Owner() is not the creating renderer")
	}
	tex.SetAlphaMod(128)
	if tex.AlphaMod() != 128 {
		t.Errorf("AlphaMod() = %d", tex.AlphaMod())
	}
	tex.SetColorMod(geom.RGB(1, 2, 3))
	if tex.ColorMod() != geom.RGB(1, 2, 3) {
		t.Errorf("ColorMod() = %v", tex.ColorMod())
	}
	tex.Destroy()
}

func TestTextureDestroyIgnoresRefCount(t *testing.T) {
	buf := captureLog(t)
	b, r := newRenderer(t)
	src := NewSurfaceSize(b, 2, 2)
	defer src.Destroy()
	tex := NewTexture(r, src)
	h := tex.Handle().(*headless.Texture)

	tex.Ref()
	tex.Ref()
	tex.Destroy()

	if !h.Destroyed() {
		t.Error("texture with references was not released")
	}
	if !tex.IsNull() || tex.Owner() != nil {
		t.Error("Destroy left the wrapper live")
	}
	if _, _, _, _, n := b.Live(); n != 0 {
		t.Errorf("live textures = %d", n)
	}
	if !strings.Contains(buf.String(), "destroyed while still referenced") {
		t.Errorf("missing warning: %q", buf.String())
	}
}

func TestNewTextureFailure(t *testing.T) {
	captureLog(t)
	b, r := newRenderer(t)
	src := NewSurfaceSize(b, 2, 2)
	defer src.Destroy()

	b.SetFailure(headless.OpCreateTexture, true)
	tex := NewTexture(r, src)
	if !tex.IsNull() {
		t.Fatal("texture created despite backend failure")
	}
	tex.Destroy()
	defer func() {
		if err, _ := recover().(error); !errors.Is(err, graphics.ErrNotInitialised) {
			t.Errorf("recovered %v", err)
		}
	}()
	tex.Width()
}

func TestTextureUpdate(t *testing.T) {
	b, r := newRenderer(t)
	src := NewSurfaceSize(b, 2, 1)
	defer src.Destroy()
	tex := NewTexture(r, src)
	defer tex.Destroy()

	px := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	if err := tex.Update(nil, px, 8); err != nil {
		t.Fatal(err)
	}
	dst := geom.R(0, 0, 8, 8)
	if err := r.Copy(tex.Handle(), &geom.Rect{X: 0, Y: 0, W: 1, H: 1}, &dst); err != nil {
		t.Fatal(err)
	}
	img, err := r.ReadPixels()
	if err != nil {
		t.Fatal(err)
	}
	if got := geom.FromColor(img.At(4, 4)); got != geom.RGB(255, 0, 0) {
		t.Errorf("pixel = %v, want red", got)
	}
	captureLog(t)
	if err := tex.Update(nil, px[:4], 8); err == nil {
		t.Error("short update buffer accepted")
	}
}
