package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Stage creates an empty generation directory for lang. The caller extracts
// into it and then calls Publish or Discard.
func (s *Store) Stage(lang string) (string, error) {
	dir := filepath.Join(s.dir, generationsDir, lang+"-"+uuid.New().String())
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create generation directory: %w", err)
	}
	return dir, nil
}

// CreateDownload creates a temporary file for an archive download of lang.
// It lives next to the generations so Prune and Clean sweep leftovers.
func (s *Store) CreateDownload(lang string) (afero.File, error) {
	dir := filepath.Join(s.dir, generationsDir)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create generation directory: %w", err)
	}

	path := filepath.Join(dir, lang+"-"+uuid.New().String()+downloadExt)
	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create download file: %w", err)
	}
	return f, nil
}

// Discard removes a staged generation or download that was never published.
func (s *Store) Discard(staged string) error {
	if err := s.fs.RemoveAll(staged); err != nil {
		return fmt.Errorf("remove generation %s: %w", filepath.Base(staged), err)
	}
	return nil
}

// Publish makes a staged generation the live page tree of lang and removes
// the previous one. The caller must hold the language lock.
func (s *Store) Publish(lang, staged string) error {
	pointer := s.LangDir(lang)

	if linker, ok := s.fs.(afero.Linker); ok {
		err := s.publishLink(linker, pointer, staged)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errNoSymlink) {
			return err
		}
	}

	return s.publishRename(lang, pointer, staged)
}

var errNoSymlink = errors.New("symlinks not supported")

const downloadExt = ".zip"

// publishLink replaces the pointer symlink with one rename.
func (s *Store) publishLink(linker afero.Linker, pointer, staged string) error {
	target, err := filepath.Rel(s.dir, staged)
	if err != nil {
		return fmt.Errorf("relative generation path: %w", err)
	}

	tmpLink := filepath.Join(s.dir, "."+filepath.Base(pointer)+"."+uuid.New().String())
	if err := linker.SymlinkIfPossible(target, tmpLink); err != nil {
		return errNoSymlink
	}

	previous, isLink := s.readPointer(pointer)
	if !isLink {
		// A plain directory from the rename fallback cannot be replaced by a
		// symlink rename; move it out of the way first.
		if ok, _ := afero.DirExists(s.fs, pointer); ok {
			aside := filepath.Join(s.dir, trashDir, filepath.Base(pointer)+"-"+uuid.New().String())
			if err := s.fs.MkdirAll(filepath.Dir(aside), 0o755); err != nil {
				_ = s.fs.Remove(tmpLink)
				return fmt.Errorf("create trash directory: %w", err)
			}
			if err := s.fs.Rename(pointer, aside); err != nil {
				_ = s.fs.Remove(tmpLink)
				return fmt.Errorf("move old pages aside: %w", err)
			}
			previous = aside
		}
	}

	if err := s.fs.Rename(tmpLink, pointer); err != nil {
		_ = s.fs.Remove(tmpLink)
		return fmt.Errorf("swap %s: %w", filepath.Base(pointer), err)
	}
	s.syncDir(s.dir)

	if previous != "" && previous != staged {
		_ = s.fs.RemoveAll(previous)
	}
	return nil
}

// publishRename moves the old tree aside and renames the new one into place.
// The window between the two renames is the only time the language is absent.
func (s *Store) publishRename(lang, pointer, staged string) error {
	var aside string
	if ok, _ := afero.Exists(s.fs, pointer); ok {
		aside = filepath.Join(s.dir, trashDir, lang+"-"+uuid.New().String())
		if err := s.fs.MkdirAll(filepath.Dir(aside), 0o755); err != nil {
			return fmt.Errorf("create trash directory: %w", err)
		}
		if err := s.fs.Rename(pointer, aside); err != nil {
			return fmt.Errorf("move old pages aside: %w", err)
		}
	}

	if err := s.fs.Rename(staged, pointer); err != nil {
		if aside != "" {
			_ = s.fs.Rename(aside, pointer)
		}
		return fmt.Errorf("swap %s: %w", filepath.Base(pointer), err)
	}
	s.syncDir(s.dir)

	if aside != "" {
		_ = s.fs.RemoveAll(aside)
	}
	return nil
}

// Prune removes generations and trash of lang that nothing points to. They
// are left behind by interrupted updates. The caller must hold the language
// lock.
func (s *Store) Prune(lang string) error {
	live, _ := s.readPointer(s.LangDir(lang))

	var errs []error
	for _, root := range []string{generationsDir, trashDir} {
		dir := filepath.Join(s.dir, root)
		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("read %s: %w", root, err))
			continue
		}

		for _, e := range entries {
			if !generationOf(e.Name(), lang) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if path == live {
				continue
			}
			if err := s.fs.RemoveAll(path); err != nil {
				errs = append(errs, err)
			}
		}
	}

	// Temporary links from an interrupted swap.
	if entries, err := afero.ReadDir(s.fs, s.dir); err == nil {
		prefix := "." + PagesPrefix + lang + "."
		for _, e := range entries {
			if name := e.Name(); strings.HasPrefix(name, prefix) && isUUID(strings.TrimPrefix(name, prefix)) {
				_ = s.fs.Remove(filepath.Join(s.dir, name))
			}
		}
	}

	return errors.Join(errs...)
}

// generationOf reports whether a generation, download or trash entry belongs
// to lang. Names are <lang>-<uuid>[.zip] or pages.<lang>-<uuid>.
func generationOf(name, lang string) bool {
	name = strings.TrimSuffix(strings.TrimPrefix(name, PagesPrefix), downloadExt)
	rest, ok := strings.CutPrefix(name, lang+"-")
	return ok && isUUID(rest)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

// readPointer resolves the pages.<lang> symlink to an absolute generation
// path. isLink is false when the pointer is missing or a plain directory.
func (s *Store) readPointer(pointer string) (target string, isLink bool) {
	lstater, ok := s.fs.(afero.Lstater)
	if !ok {
		return "", false
	}
	info, _, err := lstater.LstatIfPossible(pointer)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return "", false
	}

	reader, ok := s.fs.(afero.LinkReader)
	if !ok {
		return "", false
	}
	target, err = reader.ReadlinkIfPossible(pointer)
	if err != nil {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(pointer), target)
	}
	return filepath.Clean(target), true
}

// syncDir flushes directory metadata for durability. Errors are ignored:
// not every filesystem supports syncing directories.
func (s *Store) syncDir(dir string) {
	df, err := s.fs.Open(dir)
	if err != nil {
		return
	}
	_ = df.Sync()
	df.Close()
}
