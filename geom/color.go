package geom

import (
	"fmt"
	"image/color"
)

// Color is an 8-bit per channel, non-premultiplied RGBA colour.
type Color struct {
	R, G, B, A uint8
}

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA returns a colour with the given alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts any image/color value.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// NRGBA returns c in the layout image.NRGBA stores.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

func (c Color) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", c.R, c.G, c.B, c.A)
}
