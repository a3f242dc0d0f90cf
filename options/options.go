package options

// DemoOptions holds the command line of cmd/tiledemo.
type DemoOptions struct {
	Help       *bool
	Backend    *string // "sdl", "glfw" or "headless"
	Config     *string // YAML or TOML settings file
	Title      *string
	Width      *int
	Height     *int
	Fullscreen *string // windowed, fullscreen or fullscreen-desktop
	VSync      *int
	Samples    *int
	Duration   *float64 // seconds to run, 0 runs until the window closes
	OutputFile *string  // record presented frames to this file through ffmpeg
	FPS        *int     // recording frame rate
	Codec      *string
	FfmpegPath *string
	Persist    *bool // remember the applied settings for the next run
}
