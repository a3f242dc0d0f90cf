package headless

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/richinsley/tiledl/graphics"
)

var decoders = map[string]func(io.Reader) (image.Image, error){
	"png":  png.Decode,
	"jpg":  jpeg.Decode,
	"jpeg": jpeg.Decode,
	"gif":  gif.Decode,
	"bmp":  bmp.Decode,
	"tif":  tiff.Decode,
	"tiff": tiff.Decode,
	"webp": webp.Decode,
}

// DecodeImage decodes src. An empty format sniffs the data through the
// image package registry; any other value selects the decoder by name.
func DecodeImage(src io.Reader, format string) (*image.NRGBA, error) {
	var (
		img image.Image
		err error
	)
	if format == "" {
		img, _, err = image.Decode(src)
	} else {
		dec, ok := decoders[strings.ToLower(format)]
		if !ok {
			return nil, fmt.Errorf("unsupported image format %q", format)
		}
		img, err = dec(src)
	}
	if err != nil {
		return nil, err
	}
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n, nil
	}
	return toNRGBA(img), nil
}

func (b *Backend) DecodePixelBuffer(src io.Reader, format string) (graphics.PixelHandle, error) {
	if src == nil {
		b.setError("headless: nil image source")
		return nil, fmt.Errorf("decode: nil source")
	}
	img, err := DecodeImage(src, format)
	if err != nil {
		b.setError("headless: decode: %v", err)
		return nil, fmt.Errorf("decode: %w", err)
	}
	return b.newPixelBuffer(img), nil
}

func (b *Backend) LoadPixelBuffer(path string) (graphics.PixelHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		b.setError("headless: %v", err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()
	return b.DecodePixelBuffer(f, "")
}
