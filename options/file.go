package options

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a settings file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown settings file extension %q", filepath.Ext(path))
}

// Decode reads settings from r. Keys missing from the document keep their
// default values.
func Decode(r io.Reader, format Format) (Settings, error) {
	s := Default()
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&s); err != nil && err != io.EOF {
			return s, fmt.Errorf("decode yaml settings: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
			return s, fmt.Errorf("decode toml settings: %w", err)
		}
	default:
		return s, fmt.Errorf("unknown settings format %q", format)
	}
	return s, s.Validate()
}

// Encode writes s to w.
func Encode(w io.Writer, s Settings, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml settings: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("encode toml settings: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown settings format %q", format)
}

// LoadFile reads a YAML or TOML settings file chosen by extension.
func LoadFile(path string) (Settings, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Default(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("load settings: %w", err)
	}
	s, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SaveFile writes s to path in the format its extension names.
func SaveFile(path string, s Settings) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, s, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
