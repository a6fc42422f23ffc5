package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/nowbar/internal/shared"
)

// DefaultTokenPath is the token file location relative to the working directory.
const DefaultTokenPath = "tokens.json"

// Store persists a single Record as a JSON file.
//
// Saves go through a temp file and rename so a crash mid-write never leaves a
// truncated record behind.
type Store struct {
	path string
}

// NewStore creates a Store backed by the file at path, or [DefaultTokenPath] when empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultTokenPath
	}
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored record. A missing file surfaces [fs.ErrNotExist]
// through the error chain, which callers treat as "not logged in".
func (s *Store) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no stored token: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: corrupt token file: %v", shared.ErrStoreFailed, err)
	}

	return &record, nil
}

// Save writes the record atomically: marshal, write a temp file in the same
// directory, then rename over the target.
func (s *Store) Save(record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}

	return nil
}

// Clear removes the stored record. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", shared.ErrStoreFailed, err)
	}
	return nil
}
