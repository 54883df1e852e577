package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Store is the live holder of the configuration. Reads never block; writes
// are serialized.
type Store struct {
	current atomic.Pointer[Config]
	path    string
	writeMu sync.Mutex
}

// NewStore creates a store holding cfg. The path is where Save writes, and may
// be empty.
func NewStore(cfg Config, path string) *Store {
	s := &Store{path: path}
	c := cfg.Clone()
	s.current.Store(&c)

	return s
}

// Load returns a copy of the current configuration.
func (s *Store) Load() Config {
	return s.current.Load().Clone()
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// Update applies fn to a copy of the current configuration, clamps it and
// makes it current.
func (s *Store) Update(fn func(c *Config)) Config {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	c := s.current.Load().Clone()
	fn(&c)
	c.Clamp()
	s.current.Store(&c)

	return c.Clone()
}

// Replace makes cfg current.
func (s *Store) Replace(cfg Config) {
	s.Update(func(c *Config) { *c = cfg.Clone() })
}

// ResetDefaults restores the shipped configuration.
func (s *Store) ResetDefaults() Config {
	return s.Update(func(c *Config) { *c = Defaults() })
}

// Save writes the current configuration to the store's path.
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("config store has no path")
	}

	data, err := Encode(s.Load())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	return nil
}
