package options

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/richinsley/tiledl/graphics"
)

const (
	settingsObject   = "settings"
	settingsProperty = "last"
)

// Store persists the last applied settings in the per-user data directory.
// With a nil manager it keeps settings in memory only.
type Store struct {
	manager  *gdata.Manager
	settings Settings
}

// OpenStore opens the data directory for appName. If that fails the store
// still works, in memory, and the error says why.
func OpenStore(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return NewStore(nil), fmt.Errorf("open settings store: %w", err)
	}
	return NewStore(m), nil
}

// NewStore wraps manager, which may be nil, and loads any saved settings.
// Unreadable saved settings are logged and replaced by the defaults.
func NewStore(manager *gdata.Manager) *Store {
	s := &Store{manager: manager, settings: Default()}
	if err := s.Load(); err != nil {
		graphics.Logger().Warn("failed to load saved settings, using defaults", "err", err)
	}
	return s
}

// Persistent reports whether settings survive the process.
func (s *Store) Persistent() bool { return s.manager != nil }

func (s *Store) Load() error {
	if s.manager == nil || !s.manager.ObjectPropExists(settingsObject, settingsProperty) {
		s.settings = Default()
		return nil
	}
	data, err := s.manager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		s.settings = Default()
		return fmt.Errorf("load settings: %w", err)
	}
	loaded := Default()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		s.settings = Default()
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		s.settings = Default()
		return fmt.Errorf("saved settings: %w", err)
	}
	s.settings = loaded
	return nil
}

func (s *Store) Save() error {
	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.manager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) Settings() Settings { return s.settings }

// Set replaces the settings in memory; call Save to persist them.
func (s *Store) Set(settings Settings) { s.settings = settings }
