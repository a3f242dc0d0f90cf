package geom

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned rectangle given by its top-left corner and size,
// the layout native 2D backends use.
type Rect struct {
	X, Y, W, H int
}

func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// FromImage converts an image.Rectangle.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Size returns the width and height as a Point.
func (r Rect) Size() Point { return Point{r.W, r.H} }

func (r Rect) String() string {
	return fmt.Sprintf("{x:%d,y:%d,w:%d,h:%d}", r.X, r.Y, r.W, r.H)
}
