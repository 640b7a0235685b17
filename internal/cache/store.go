package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const (
	// PagesPrefix prefixes every language directory name.
	PagesPrefix = "pages."
	// PageExt is the page file extension.
	PageExt = ".md"
	// StateFile holds archive digests and sync timestamps.
	StateFile = "state.json"

	generationsDir = ".generations"
	locksDir       = ".locks"
	trashDir       = ".trash"
)

// Config holds configuration for a Store.
type Config struct {
	// Dir is the cache root.
	Dir string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Clock defaults to RealClock.
	Clock Clock
}

// Store is the page cache rooted at one directory.
type Store struct {
	dir   string
	fs    afero.Fs
	clock Clock

	// stateMu serializes state read-modify-write within the process.
	stateMu sync.Mutex
}

// NewStore creates a store. The directory is created lazily on first write.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache dir is required")
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}

	return &Store{
		dir:   filepath.Clean(cfg.Dir),
		fs:    cfg.Fs,
		clock: cfg.Clock,
	}, nil
}

// Dir returns the cache root.
func (s *Store) Dir() string {
	return s.dir
}

// Fs returns the filesystem the store writes to.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Clock returns the store's clock.
func (s *Store) Clock() Clock {
	return s.clock
}

// LangDir returns the path of a language's page tree.
func (s *Store) LangDir(lang string) string {
	return filepath.Join(s.dir, PagesPrefix+lang)
}

// PagePath returns where a page would live in the cache.
func (s *Store) PagePath(c Candidate, command string) string {
	return filepath.Join(s.LangDir(c.Language), c.Platform.String(), command+PageExt)
}

// Exists reports whether the cache directory exists.
func (s *Store) Exists() bool {
	ok, _ := afero.DirExists(s.fs, s.dir)
	return ok
}

// HasLanguage reports whether pages for lang are installed.
func (s *Store) HasLanguage(lang string) bool {
	ok, _ := afero.DirExists(s.fs, s.LangDir(lang))
	return ok
}

// Clean removes every page tree, staging artifact and the state file. The
// next update downloads everything again.
func (s *Store) Clean() error {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}

	var errs []error
	for _, e := range entries {
		name := e.Name()
		if !isCacheEntry(name) {
			continue
		}
		if err := s.fs.RemoveAll(filepath.Join(s.dir, name)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func isCacheEntry(name string) bool {
	switch name {
	case StateFile, StateFile + ".tmp", generationsDir, locksDir, trashDir:
		return true
	}
	return strings.HasPrefix(name, PagesPrefix) || strings.HasPrefix(name, "."+PagesPrefix)
}
