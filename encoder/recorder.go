// Package encoder records rendered frames to a video file by piping raw
// RGBA frames into an ffmpeg process.
package encoder

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/image/draw"

	"github.com/richinsley/tiledl/graphics"
)

// numBuffers is how many frames may queue between the render loop and ffmpeg.
const numBuffers = 4

var (
	// ErrClosed is returned by WriteFrame after Close.
	ErrClosed = errors.New("encoder: recorder closed")

	errExited = errors.New("encoder: ffmpeg exited")
)

// Config describes the output video.
type Config struct {
	OutputFile string
	Width      int
	Height     int
	FPS        int
	Codec      string // "h264" or "hevc"
	FfmpegPath string
}

func (c Config) validate() error {
	switch {
	case c.OutputFile == "":
		return errors.New("encoder: no output file")
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("encoder: invalid frame size %dx%d", c.Width, c.Height)
	case c.Width%2 != 0 || c.Height%2 != 0:
		return fmt.Errorf("encoder: frame size %dx%d must be even for yuv420p", c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("encoder: invalid frame rate %d", c.FPS)
	case c.Codec != "" && c.Codec != "h264" && c.Codec != "hevc":
		return fmt.Errorf("encoder: unsupported codec %q", c.Codec)
	}
	return nil
}

func (c Config) getArgs() (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", c.Width, c.Height),
		"framerate": strconv.Itoa(c.FPS),
	}

	outputArgs = ffmpeg.KwArgs{
		"pix_fmt": "yuv420p",
	}
	if c.Codec == "hevc" {
		outputArgs["c:v"] = "libx265"
		if strings.HasSuffix(strings.ToLower(c.OutputFile), ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	} else {
		outputArgs["c:v"] = "libx264"
	}
	return
}

func (c Config) command(input io.Reader) *ffmpeg.Stream {
	inputArgs, outputArgs := c.getArgs()
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(c.OutputFile, outputArgs).
		OverWriteOutput().WithInput(input)
	if c.FfmpegPath != "" {
		cmd = cmd.SetFfmpegPath(c.FfmpegPath)
	}
	return cmd
}

// Recorder is a frame sink feeding ffmpeg. Frames of another size than the
// configured one are scaled to fit.
type Recorder struct {
	cfg    Config
	pw     *io.PipeWriter
	frames chan []byte
	wrote  chan struct{}
	errc   chan error
	log    *slog.Logger

	// sendMu keeps Close from closing frames under a pending send.
	sendMu sync.RWMutex

	mu     sync.Mutex
	closed bool
	err    error
	count  int64

	closeOnce sync.Once
	closeErr  error
}

// NewRecorder starts ffmpeg and returns a recorder feeding it.
func NewRecorder(cfg Config) (*Recorder, error) {
	return newRecorder(cfg, func(s *ffmpeg.Stream, _ io.Reader) error {
		return s.ErrorToStdOut().Run()
	})
}

// newRecorder starts run in the background; input is the stream ffmpeg
// reads frames from.
func newRecorder(cfg Config, run func(cmd *ffmpeg.Stream, input io.Reader) error) (*Recorder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	r := &Recorder{
		cfg:    cfg,
		pw:     pw,
		frames: make(chan []byte, numBuffers),
		wrote:  make(chan struct{}),
		errc:   make(chan error, 1),
		log:    graphics.Logger().With("component", "recorder", "id", uuid.NewString()),
	}
	cmd := cfg.command(pr)

	go func() {
		err := run(cmd, pr)
		// Unblock the writer if ffmpeg went away early.
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.CloseWithError(errExited)
		}
		r.errc <- err
	}()
	go r.writeLoop()

	r.log.Info("recording", "file", cfg.OutputFile, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "fps", cfg.FPS, "codec", cfg.Codec)
	return r, nil
}

func (r *Recorder) writeLoop() {
	defer close(r.wrote)
	for buf := range r.frames {
		if r.failed() != nil {
			continue
		}
		if _, err := r.pw.Write(buf); err != nil {
			r.mu.Lock()
			r.err = fmt.Errorf("failed to write frame to ffmpeg: %w", err)
			r.mu.Unlock()
			r.log.Error("encoder pipe broken", "err", err)
		}
	}
	r.pw.Close()
}

func (r *Recorder) failed() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// WriteFrame queues a copy of img for encoding. It blocks while the queue
// is full and fails once the encoder has failed or the recorder is closed.
func (r *Recorder) WriteFrame(img *image.NRGBA) error {
	r.sendMu.RLock()
	defer r.sendMu.RUnlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return err
	}
	r.count++
	r.mu.Unlock()

	r.frames <- r.pack(img)
	return nil
}

// pack returns the frame as tightly packed rows at the configured size.
func (r *Recorder) pack(img *image.NRGBA) []byte {
	w, h := r.cfg.Width, r.cfg.Height
	if img.Rect.Dx() != w || img.Rect.Dy() != h {
		scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(scaled, scaled.Rect, img, img.Rect, draw.Src, nil)
		return scaled.Pix
	}
	rowBytes := w * 4
	buf := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(buf[y*rowBytes:(y+1)*rowBytes], img.Pix[off:off+rowBytes])
	}
	return buf
}

// Frames reports how many frames were accepted.
func (r *Recorder) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close flushes the queued frames, closes ffmpeg's input and waits for it
// to finish writing the file.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.sendMu.Lock()
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.frames)
		r.sendMu.Unlock()
		<-r.wrote

		runErr := <-r.errc
		writeErr := r.failed()
		if runErr != nil && errors.Is(writeErr, runErr) {
			writeErr = nil
		}
		r.closeErr = errors.Join(writeErr, runErr)
		r.log.Info("recording finished", "frames", r.Frames(), "err", r.closeErr)
	})
	return r.closeErr
}
