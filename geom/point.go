package geom

import (
	"fmt"
	"image"
	"math"
)

// Point is an integer position in pixels.
type Point struct {
	X, Y int
}

func Pt(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Image converts p to an image.Point.
func (p Point) Image() image.Point { return image.Point{X: p.X, Y: p.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Vector is a 2D float vector used for motion and directions.
type Vector struct {
	X, Y float64
}

func Vec(x, y float64) Vector { return Vector{X: x, Y: y} }

func (v Vector) Add(w Vector) Vector    { return Vector{v.X + w.X, v.Y + w.Y} }
func (v Vector) Sub(w Vector) Vector    { return Vector{v.X - w.X, v.Y - w.Y} }
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s} }
func (v Vector) Dot(w Vector) float64   { return v.X*w.X + v.Y*w.Y }
func (v Vector) Len() float64           { return math.Hypot(v.X, v.Y) }
func (v Vector) Point() Point           { return Point{int(math.Round(v.X)), int(math.Round(v.Y))} }
func (v Vector) String() string         { return fmt.Sprintf("(%g,%g)", v.X, v.Y) }

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func (v Vector) Normalize() Vector {
	l := v.Len()
	if l == 0 {
		return Vector{}
	}
	return Vector{v.X / l, v.Y / l}
}
