package surface

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// Image returns the pixels as an image aliasing the buffer memory.
func (s *Surface) Image() *image.NRGBA {
	h := s.mustHandle()
	return &image.NRGBA{
		Pix:    h.Pixels(),
		Stride: h.Pitch(),
		Rect:   image.Rect(0, 0, h.Width(), h.Height()),
	}
}

func (s *Surface) encode(w io.Writer, format string, enc func(io.Writer, image.Image) error) error {
	if s.MustLock() && !s.Locked() {
		s.Lock()
		defer s.Unlock()
	}
	if err := enc(w, s.Image()); err != nil {
		s.log().Warn("failed to save image", "format", format, "err", err)
		return fmt.Errorf("save %s: %w", format, err)
	}
	return nil
}

func (s *Surface) encodeFile(path, format string, enc func(io.Writer, image.Image) error) (err error) {
	s.mustHandle()
	f, err := os.Create(path)
	if err != nil {
		s.log().Warn("failed to save image", "format", format, "path", path, "err", err)
		return fmt.Errorf("save %s: %w", format, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("save %s: %w", format, cerr)
		}
	}()
	return s.encode(f, format, enc)
}

// SaveBMP writes the pixels to w as a BMP.
func (s *Surface) SaveBMP(w io.Writer) error {
	return s.encode(w, "bmp", bmp.Encode)
}

// SaveBMPFile writes the pixels to the file at path as a BMP.
func (s *Surface) SaveBMPFile(path string) error {
	return s.encodeFile(path, "bmp", bmp.Encode)
}

// SavePNG writes the pixels to w as a PNG.
func (s *Surface) SavePNG(w io.Writer) error {
	return s.encode(w, "png", png.Encode)
}

// SavePNGFile writes the pixels to the file at path as a PNG.
func (s *Surface) SavePNGFile(path string) error {
	return s.encodeFile(path, "png", png.Encode)
}
