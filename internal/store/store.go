// Package store persists ordered record sequences as JSON files in a data directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

var (
	// ErrParse is returned when a stored file exists but does not hold a valid sequence.
	ErrParse = errors.New("malformed store file")
	// ErrIO is returned when a stored file cannot be read or written.
	ErrIO = errors.New("store i/o failure")
)

// Store reads and writes named record sequences under a single directory.
// Each name maps to <dir>/<name>.json.
type Store struct {
	dir    string
	logger *logrus.Entry
}

// Open returns a Store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory %s: %v", ErrIO, dir, err)
	}
	return &Store{
		dir:    dir,
		logger: logging.NewLogger("devdash-store"),
	}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path used for name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the sequence saved under name. A missing file yields an empty
// sequence; content that is not a JSON array of T yields ErrParse.
func Load[T any](s *Store, name string) ([]T, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("file", path).Debug("No store file, starting empty")
			return []T{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if records == nil {
		// "null" decodes to a nil slice
		records = []T{}
	}
	return records, nil
}

// Save replaces the sequence stored under name. The write goes to a
// temporary file in the same directory which is then renamed over the
// destination, so readers see either the old or the new content.
func Save[T any](s *Store, name string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrIO, name, err)
	}

	path := s.Path(name)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	s.logger.WithField("file", path).WithField("records", len(records)).Debug("Saved store file")
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		tmpFile = nil
		return err
	}

	tmpFile = nil
	return nil
}
