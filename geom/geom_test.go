package geom

import (
	"image"
	"image/color"
	"testing"
)

func TestColorRoundTrip(t *testing.T) {
	c := RGBA(10, 20, 30, 128)
	if got := FromColor(c.NRGBA()); got != c {
		t.Errorf("FromColor(NRGBA()) = %v, want %v", got, c)
	}
	if got := FromColor(color.White); got != White {
		t.Errorf("FromColor(color.White) = %v, want %v", got, White)
	}
}

func TestRectImage(t *testing.T) {
	r := R(5, 6, 10, 20)
	ir := r.Image()
	if ir != image.Rect(5, 6, 15, 26) {
		t.Fatalf("Image() = %v", ir)
	}
	if back := FromImage(ir); back != r {
		t.Errorf("FromImage(Image()) = %v, want %v", back, r)
	}
}

func TestRectContains(t *testing.T) {
	r := R(0, 0, 4, 4)
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(0, 0), true},
		{Pt(3, 3), true},
		{Pt(4, 0), false},
		{Pt(-1, 2), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("%v.Contains(%v) = %v, want %v", r, tt.p, got, tt.want)
		}
	}
	if !R(0, 0, 0, 5).Empty() {
		t.Error("zero-width rect should be empty")
	}
}

func TestVector(t *testing.T) {
	v := Vec(3, 4)
	if v.Len() != 5 {
		t.Errorf("Len() = %g, want 5", v.Len())
	}
	n := v.Normalize()
	if n.X != 0.6 || n.Y != 0.8 {
		t.Errorf("Normalize() = %v", n)
	}
	if (Vector{}).Normalize() != (Vector{}) {
		t.Error("zero vector should normalize to zero")
	}
	if p := Vec(1.6, -2.4).Point(); p != Pt(2, -2) {
		t.Errorf("Point() = %v", p)
	}
}
