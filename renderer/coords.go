package renderer

import (
	"image"

	"github.com/richinsley/tiledl/geom"
)

// Draw calls take pixel coordinates with a top-left origin. GL wants
// normalised device coordinates for vertices and a bottom-left origin for
// gl_FragCoord; these helpers do the conversions.

// ndcRect returns r as (x0, y0, x1, y1) in NDC for a fbW x fbH target.
func ndcRect(r geom.Rect, fbW, fbH int) [4]float32 {
	return [4]float32{
		ndcX(float32(r.X), fbW),
		ndcY(float32(r.Y+r.H), fbH),
		ndcX(float32(r.X+r.W), fbW),
		ndcY(float32(r.Y), fbH),
	}
}

// ndcLine returns the segment between the centres of two pixels.
func ndcLine(from, to geom.Point, fbW, fbH int) [4]float32 {
	return [4]float32{
		ndcX(float32(from.X)+0.5, fbW),
		ndcY(float32(from.Y)+0.5, fbH),
		ndcX(float32(to.X)+0.5, fbW),
		ndcY(float32(to.Y)+0.5, fbH),
	}
}

func ndcX(x float32, fbW int) float32 { return 2*x/float32(fbW) - 1 }
func ndcY(y float32, fbH int) float32 { return 1 - 2*y/float32(fbH) }

// fragRect returns r as (x, y, w, h) with a bottom-left origin.
func fragRect(r geom.Rect, fbH int) [4]float32 {
	return [4]float32{float32(r.X), float32(fbH - r.Y - r.H), float32(r.W), float32(r.H)}
}

// texRect returns src as (u, v, du, dv) in texture coordinates.
func texRect(src geom.Rect, texW, texH int) [4]float32 {
	return [4]float32{
		float32(src.X) / float32(texW),
		float32(src.Y) / float32(texH),
		float32(src.W) / float32(texW),
		float32(src.H) / float32(texH),
	}
}

// flipRows copies bottom-up RGBA rows as read back from GL into a
// top-down image.
func flipRows(src []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	stride := width * 4
	for y := 0; y < height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], src[(height-1-y)*stride:(height-y)*stride])
	}
	return img
}

// modColor folds a colour mod and alpha mod into one multiplier.
func modColor(c geom.Color, alpha uint8) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(alpha) / 255,
	}
}

func colorVec(c geom.Color) [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}
