package encoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

func TestConfigValidate(t *testing.T) {
	ok := Config{OutputFile: "out.mp4", Width: 640, Height: 480, FPS: 30}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"hevc", func(c *Config) { c.Codec = "hevc" }, false},
		{"no file", func(c *Config) { c.OutputFile = "" }, true},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"odd height", func(c *Config) { c.Height = 481 }, true},
		{"no fps", func(c *Config) { c.FPS = 0 }, true},
		{"bad codec", func(c *Config) { c.Codec = "vp9" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ok
			tt.mutate(&c)
			if err := c.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
		not  []string
	}{
		{
			name: "h264",
			cfg:  Config{OutputFile: "out.mp4", Width: 640, Height: 480, FPS: 30},
			want: []string{"-f rawvideo", "-pix_fmt rgba", "-s 640x480", "-framerate 30", "-i pipe:", "-c:v libx264", "out.mp4", "-y"},
			not:  []string{"hvc1"},
		},
		{
			name: "hevc mp4",
			cfg:  Config{OutputFile: "clip.MP4", Width: 320, Height: 240, FPS: 60, Codec: "hevc"},
			want: []string{"-c:v libx265", "-tag:v hvc1", "-framerate 60"},
		},
		{
			name: "hevc mkv",
			cfg:  Config{OutputFile: "clip.mkv", Width: 320, Height: 240, FPS: 60, Codec: "hevc"},
			want: []string{"-c:v libx265"},
			not:  []string{"hvc1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := strings.Join(tt.cfg.command(nil).Compile().Args, " ")
			for _, w := range tt.want {
				if !strings.Contains(args, w) {
					t.Errorf("args %q missing %q", args, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(args, n) {
					t.Errorf("args %q should not contain %q", args, n)
				}
			}
		})
	}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestRecorderPipesFrames(t *testing.T) {
	var got bytes.Buffer
	r, err := newRecorder(Config{OutputFile: "x.mp4", Width: 2, Height: 2, FPS: 1}, func(_ *ffmpeg.Stream, in io.Reader) error {
		_, err := io.Copy(&got, in)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	red := color.NRGBA{R: 255, A: 255}
	if err := r.WriteFrame(solid(2, 2, red)); err != nil {
		t.Fatal(err)
	}
	// A sub-image with a wider stride is packed.
	big := solid(4, 2, color.NRGBA{G: 255, A: 255})
	if err := r.WriteFrame(big.SubImage(image.Rect(2, 0, 4, 2)).(*image.NRGBA)); err != nil {
		t.Fatal(err)
	}
	// A frame of the wrong size is scaled.
	if err := r.WriteFrame(solid(8, 8, red)); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	if r.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", r.Frames())
	}
	data := got.Bytes()
	if len(data) != 3*2*2*4 {
		t.Fatalf("ffmpeg received %d bytes, want %d", len(data), 3*2*2*4)
	}
	if !bytes.Equal(data[:4], []byte{255, 0, 0, 255}) {
		t.Errorf("first pixel = %v", data[:4])
	}
	if !bytes.Equal(data[16:20], []byte{0, 255, 0, 255}) {
		t.Errorf("second frame pixel = %v", data[16:20])
	}
	if !bytes.Equal(data[32:36], []byte{255, 0, 0, 255}) {
		t.Errorf("scaled frame pixel = %v", data[32:36])
	}

	if err := r.WriteFrame(solid(2, 2, red)); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteFrame after Close = %v, want ErrClosed", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestRecorderEncoderFailure(t *testing.T) {
	boom := errors.New("boom")
	r, err := newRecorder(Config{OutputFile: "x.mp4", Width: 2, Height: 2, FPS: 1}, func(*ffmpeg.Stream, io.Reader) error {
		return boom
	})
	if err != nil {
		t.Fatal(err)
	}

	var writeErr error
	for i := 0; i < 100 && writeErr == nil; i++ {
		writeErr = r.WriteFrame(solid(2, 2, color.NRGBA{A: 255}))
	}
	if !errors.Is(writeErr, boom) {
		t.Fatalf("WriteFrame never reported the encoder failure, last error %v", writeErr)
	}
	if err := r.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close() = %v, want boom", err)
	}
}

func TestNewRecorderRejectsBadConfig(t *testing.T) {
	if _, err := NewRecorder(Config{}); err == nil {
		t.Fatal("NewRecorder accepted an empty config")
	}
}
