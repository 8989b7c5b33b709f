// Package receipt records how an optional executable was last acquired.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Receipt describes a successful acquisition.
type Receipt struct {
	Name        string    `toml:"name"`
	Strategy    string    `toml:"strategy"`
	Version     string    `toml:"version,omitempty"`
	URL         string    `toml:"url,omitempty"`
	Path        string    `toml:"path"`
	SHA256      string    `toml:"sha256,omitempty"`
	InstalledAt time.Time `toml:"installed_at"`
}

// Store reads and writes receipts in a state directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the receipt file for name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("receipt-%s.toml", name))
}

// Save writes r, replacing any previous receipt for the same name.
func (s *Store) Save(r *Receipt) error {
	if r == nil || r.Name == "" {
		return fmt.Errorf("receipt name is required")
	}
	if strings.ContainsRune(r.Name, os.PathSeparator) {
		return fmt.Errorf("invalid receipt name: %q", r.Name)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	path := s.Path(r.Name)
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create receipt: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode receipt: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close receipt: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename receipt: %w", err)
	}
	return nil
}

// Load returns the receipt for name, or nil if none has been written.
func (s *Store) Load(name string) (*Receipt, error) {
	path := s.Path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var r Receipt
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return nil, fmt.Errorf("decode receipt %s: %w", path, err)
	}
	return &r, nil
}
