package options

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quasilyte/gdata/v2"

	"github.com/richinsley/tiledl/graphics"
)

const yamlDoc = `
window:
  bordered: false
  fullscreen: fullscreen-desktop
  width: 1024
  height: 768
render:
  vsync: 0
  antialias: true
  samples: 4
`

const tomlDoc = `
[window]
bordered = false
fullscreen = "fullscreen-desktop"
width = 1024
height = 768

[render]
vsync = 0
antialias = true
samples = 4
`

func TestYAMLAndTOMLAgree(t *testing.T) {
	y, err := Decode(strings.NewReader(yamlDoc), FormatYAML)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	tm, err := Decode(strings.NewReader(tomlDoc), FormatTOML)
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	if y != tm {
		t.Fatalf("yaml %+v != toml %+v", y, tm)
	}
	if y.Window.Fullscreen != graphics.FullscreenDesktop || y.Window.Width != 1024 {
		t.Errorf("window = %+v", y.Window)
	}
	// doublebuffer is absent from both documents and keeps its default.
	if !y.Render.DoubleBuffer {
		t.Error("missing key did not keep its default")
	}
}

func TestDecodeEmptyYAMLGivesDefaults(t *testing.T) {
	s, err := Decode(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if s != Default() {
		t.Errorf("got %+v, want defaults", s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"defaults", func(*Settings) {}, true},
		{"zero width", func(s *Settings) { s.Window.Width = 0 }, false},
		{"bad fullscreen", func(s *Settings) { s.Window.Fullscreen = 7 }, false},
		{"vsync 2", func(s *Settings) { s.Render.VSync = 2 }, false},
		{"adaptive vsync", func(s *Settings) { s.Render.VSync = -1 }, true},
		{"antialias without samples", func(s *Settings) { s.Render.Antialias = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			if err := s.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Default()
	want.Window.Fullscreen = graphics.Fullscreen
	want.Render.Samples = 8
	want.Render.Antialias = true

	for _, name := range []string{"game.yaml", "game.yml", "game.toml"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, want); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := LoadFile(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: got %+v, want %+v", name, got, want)
		}
	}

	data, _ := os.ReadFile(filepath.Join(dir, "game.yaml"))
	if !bytes.Contains(data, []byte("fullscreen: fullscreen")) {
		t.Errorf("fullscreen mode not written by name:\n%s", data)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "game.ini")); err == nil {
		t.Error("unknown extension accepted")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("window:\n  fullscreen: sideways\n"), 0o644)
	if _, err := LoadFile(bad); err == nil {
		t.Error("unknown fullscreen mode accepted")
	}
}

func TestStoreInMemory(t *testing.T) {
	s := NewStore(nil)
	if s.Persistent() {
		t.Error("nil manager store claims persistence")
	}
	custom := Default()
	custom.Window.Width = 320
	s.Set(custom)
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if s.Settings() != custom {
		t.Error("Set did not take effect")
	}
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if s.Settings() != Default() {
		t.Error("in-memory Load should fall back to defaults")
	}
}

func TestStorePersists(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	m, err := gdata.Open(gdata.Config{AppName: "tiledl_store_test"})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}
	s := NewStore(m)
	if s.Settings() != Default() {
		t.Fatalf("fresh store = %+v", s.Settings())
	}
	custom := Default()
	custom.Window.Bordered = false
	custom.Render.VSync = -1
	s.Set(custom)
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	again := NewStore(m)
	if again.Settings() != custom {
		t.Errorf("reloaded %+v, want %+v", again.Settings(), custom)
	}
}
