package renderer

import (
	"testing"

	"github.com/richinsley/tiledl/geom"
)

func TestNDCRect(t *testing.T) {
	tests := []struct {
		name string
		r    geom.Rect
		want [4]float32
	}{
		{"whole target", geom.R(0, 0, 100, 50), [4]float32{-1, -1, 1, 1}},
		{"top-left quarter", geom.R(0, 0, 50, 25), [4]float32{-1, 0, 0, 1}},
		{"bottom-right quarter", geom.R(50, 25, 50, 25), [4]float32{0, -1, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ndcRect(tt.r, 100, 50); got != tt.want {
				t.Errorf("ndcRect(%v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestNDCLineUsesPixelCentres(t *testing.T) {
	got := ndcLine(geom.Pt(0, 0), geom.Pt(3, 3), 4, 4)
	want := [4]float32{-0.75, 0.75, 0.75, -0.75}
	if got != want {
		t.Fatalf("ndcLine = %v, want %v", got, want)
	}
}

func TestFragRectFlipsY(t *testing.T) {
	got := fragRect(geom.R(10, 0, 20, 5), 30)
	want := [4]float32{10, 25, 20, 5}
	if got != want {
		t.Fatalf("fragRect = %v, want %v", got, want)
	}
}

func TestTexRect(t *testing.T) {
	got := texRect(geom.R(2, 4, 2, 4), 8, 8)
	want := [4]float32{0.25, 0.5, 0.25, 0.5}
	if got != want {
		t.Fatalf("texRect = %v, want %v", got, want)
	}
}

func TestFlipRows(t *testing.T) {
	// Two rows of one pixel each, bottom row first as GL returns them.
	src := []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}
	img := flipRows(src, 1, 2)
	if c := img.NRGBAAt(0, 0); c.R != 5 || c.A != 8 {
		t.Errorf("top row = %v, want the last row read back", c)
	}
	if c := img.NRGBAAt(0, 1); c.R != 1 || c.A != 4 {
		t.Errorf("bottom row = %v, want the first row read back", c)
	}
}

func TestModColor(t *testing.T) {
	got := modColor(geom.RGB(255, 0, 51), 0)
	want := [4]float32{1, 0, 0.2, 0}
	if got != want {
		t.Fatalf("modColor = %v, want %v", got, want)
	}
}
