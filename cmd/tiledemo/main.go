package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/richinsley/tiledl/encoder"
	"github.com/richinsley/tiledl/game"
	"github.com/richinsley/tiledl/glfwcontext"
	"github.com/richinsley/tiledl/graphics"
	"github.com/richinsley/tiledl/headless"
	"github.com/richinsley/tiledl/options"
	"github.com/richinsley/tiledl/sdlbackend"
)

// backend is a graphics.Backend whose video subsystem the demo brackets.
type backend interface {
	graphics.Backend
	Quit()
}

func openBackend(name string) (backend, error) {
	switch name {
	case "sdl":
		b := sdlbackend.New()
		if err := b.Init(); err != nil {
			return nil, err
		}
		return b, nil
	case "glfw":
		b := glfwcontext.New()
		if err := b.Init(); err != nil {
			return nil, fmt.Errorf("glfw init: %w", err)
		}
		return b, nil
	case "headless":
		b := headless.New()
		b.Init()
		return b, nil
	}
	return nil, fmt.Errorf("unknown backend %q (want sdl, glfw or headless)", name)
}

func parseFlags(fs *flag.FlagSet, args []string) (*options.DemoOptions, map[string]bool, error) {
	opts := &options.DemoOptions{
		Help:       fs.Bool("help", false, "Show help message"),
		Backend:    fs.String("backend", "sdl", "Backend: sdl, glfw or headless"),
		Config:     fs.String("config", "", "YAML or TOML settings file"),
		Title:      fs.String("title", "tiledemo", "Window title"),
		Width:      fs.Int("width", 800, "Window width"),
		Height:     fs.Int("height", 600, "Window height"),
		Fullscreen: fs.String("fullscreen", "windowed", "windowed, fullscreen or fullscreen-desktop"),
		VSync:      fs.Int("vsync", 1, "Swap interval: 0 off, 1 on, -1 adaptive"),
		Samples:    fs.Int("samples", 0, "Multisample count, 0 disables antialiasing"),
		Duration:   fs.Float64("duration", 0, "Seconds to run, 0 runs until the window closes"),
		OutputFile: fs.String("output", "", "Record frames to this video file"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		Codec:      fs.String("codec", "h264", "Recording codec: h264 or hevc"),
		FfmpegPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Persist:    fs.Bool("persist", false, "Remember the settings for the next run"),
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return opts, set, nil
}

// resolveSettings layers the saved settings, the config file and the flags
// given explicitly, in that order.
func resolveSettings(opts *options.DemoOptions, set map[string]bool, store *options.Store) (options.Settings, error) {
	s := options.Default()
	if store != nil {
		s = store.Settings()
	}
	if *opts.Config != "" {
		loaded, err := options.LoadFile(*opts.Config)
		if err != nil {
			return s, err
		}
		s = loaded
	}
	if set["width"] {
		s.Window.Width = *opts.Width
	}
	if set["height"] {
		s.Window.Height = *opts.Height
	}
	if set["fullscreen"] {
		if err := s.Window.Fullscreen.UnmarshalText([]byte(*opts.Fullscreen)); err != nil {
			return s, err
		}
	}
	if set["vsync"] {
		s.Render.VSync = *opts.VSync
	}
	if set["samples"] {
		s.Render.Samples = *opts.Samples
		s.Render.Antialias = *opts.Samples > 0
	}
	return s, s.Validate()
}

func windowFlags(s options.WindowSettings) graphics.WindowFlags {
	flags := graphics.WindowShown | graphics.WindowOpenGL
	if !s.Bordered {
		flags |= graphics.WindowBorderless
	}
	if s.Resizable {
		flags |= graphics.WindowResizable
	}
	return flags
}

func rendererFlags(s options.RenderSettings) graphics.RendererFlags {
	flags := graphics.RendererAccelerated
	if s.VSync != 0 {
		flags |= graphics.RendererPresentVSync
	}
	return flags
}

func run(opts *options.DemoOptions, settings options.Settings) error {
	b, err := openBackend(*opts.Backend)
	if err != nil {
		return err
	}
	defer b.Quit()

	var gameOpts []game.Option
	var rec *encoder.Recorder
	if *opts.OutputFile != "" {
		rec, err = encoder.NewRecorder(encoder.Config{
			OutputFile: *opts.OutputFile,
			Width:      settings.Window.Width,
			Height:     settings.Window.Height,
			FPS:        *opts.FPS,
			Codec:      *opts.Codec,
			FfmpegPath: *opts.FfmpegPath,
		})
		if err != nil {
			return err
		}
		gameOpts = append(gameOpts, game.WithFrameSink(rec))
	}

	d := newDemo(b, b, settings.Render, time.Duration(*opts.Duration*float64(time.Second)))
	g := game.New(b, d, gameOpts...)
	if status := g.Init(*opts.Title, settings.Window.Width, settings.Window.Height,
		windowFlags(settings.Window), -1, rendererFlags(settings.Render)); status != game.StatusOK {
		if rec != nil {
			rec.Close()
		}
		return fmt.Errorf("init failed: %v", status)
	}
	g.SetWindowSettings(settings.Window)

	log.Println("Starting render loop...")
	g.Start()
	d.release()
	g.Close()

	if rec != nil {
		if err := rec.Close(); err != nil {
			return fmt.Errorf("recording failed: %w", err)
		}
		log.Printf("Successfully recorded %d frames to %s", rec.Frames(), *opts.OutputFile)
	}
	return nil
}

func init() {
	runtime.LockOSThread()
}

func main() {
	opts, set, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if *opts.Help {
		fmt.Println("tiledl demo")
		flag.PrintDefaults()
		return
	}

	var store *options.Store
	if *opts.Persist {
		store, err = options.OpenStore("tiledemo")
		if err != nil {
			log.Printf("Warning: settings will not persist: %v", err)
		}
	}

	settings, err := resolveSettings(opts, set, store)
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	if err := run(opts, settings); err != nil {
		log.Fatalf("tiledemo: %v", err)
	}

	if store != nil {
		store.Set(settings)
		if err := store.Save(); err != nil {
			log.Printf("Warning: failed to save settings: %v", err)
		}
	}
}
