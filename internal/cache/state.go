package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// StateVersion is the current state.json schema version.
const StateVersion = 1

// State is the persisted sync bookkeeping.
type State struct {
	Version int `json:"version"`
	// CheckedAt is the last time a full manifest comparison finished with no failures.
	CheckedAt time.Time `json:"checked_at,omitzero"`
	// Archives maps archive file names to the digest of the installed archive.
	Archives map[string]string `json:"archives"`
	// Languages records per-language sync results.
	Languages map[string]LanguageState `json:"languages"`
}

// LanguageState is the result of the last successful sync of one language.
type LanguageState struct {
	SyncedAt time.Time `json:"synced_at"`
	Pages    int       `json:"pages"`
}

func newState() *State {
	return &State{
		Version:   StateVersion,
		Archives:  make(map[string]string),
		Languages: make(map[string]LanguageState),
	}
}

// LastUpdate returns the most recent sync or check time.
func (st *State) LastUpdate() (time.Time, bool) {
	var last time.Time
	for _, l := range st.Languages {
		if l.SyncedAt.After(last) {
			last = l.SyncedAt
		}
	}
	if st.CheckedAt.After(last) {
		last = st.CheckedAt
	}
	return last, !last.IsZero()
}

// LoadState reads state.json. A missing file yields an empty state.
func (s *Store) LoadState() (*State, error) {
	data, err := afero.ReadFile(s.fs, s.statePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newState(), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	st := newState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if st.Archives == nil {
		st.Archives = make(map[string]string)
	}
	if st.Languages == nil {
		st.Languages = make(map[string]LanguageState)
	}
	return st, nil
}

// UpdateState applies fn to the current state and saves the result. Updates
// are serialized within the process and across processes by state.lock.
func (s *Store) UpdateState(ctx context.Context, fn func(*State) error) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	lock, err := s.AcquireLock(ctx, "state")
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := s.LoadState()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.saveState(st)
}

// saveState writes the state to disk atomically.
// Uses write-then-rename pattern for atomicity.
func (s *Store) saveState(st *State) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	finalPath := s.statePath()
	tmpPath := finalPath + ".tmp"

	st.Version = StateVersion
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temporary state file: %w", err)
	}

	// Atomic rename
	if err := s.fs.Rename(tmpPath, finalPath); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("rename state file: %w", err)
	}

	s.syncDir(s.dir)
	return nil
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, StateFile)
}

// Age returns the time since the last update. ok is false when the cache
// has never been synced, which always counts as stale.
func (s *Store) Age() (age time.Duration, ok bool, err error) {
	st, err := s.LoadState()
	if err != nil {
		return 0, false, err
	}
	last, ok := st.LastUpdate()
	if !ok {
		return 0, false, nil
	}
	age = s.clock.Now().Sub(last)
	if age < 0 {
		age = 0
	}
	return age, true, nil
}

// IsStale reports whether the cache is at least maxAge old or was never synced.
func (s *Store) IsStale(maxAge time.Duration) (bool, error) {
	age, ok, err := s.Age()
	if err != nil {
		return true, err
	}
	return !ok || age >= maxAge, nil
}
