package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	StaleLockThreshold = 10 * time.Minute

	lockPollInterval = 100 * time.Millisecond
	// lockRefreshInterval keeps a held lock's timestamp well inside the
	// stale threshold during long downloads.
	lockRefreshInterval = StaleLockThreshold / 3

	lockTimestampKey = "timestamp="
)

var (
	ErrLockExists = errors.New("cache lock exists: another update may be in progress")
)

// Lock is an exclusive lock file under <dir>/.locks. While held, its
// timestamp is rewritten every lockRefreshInterval.
type Lock struct {
	fs    afero.Fs
	path  string
	file  afero.File
	clock Clock

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// TryLock attempts to acquire the named lock once.
// Uses O_CREATE|O_EXCL for atomic lock creation.
func (s *Store) TryLock(name string) (*Lock, error) {
	dir := filepath.Join(s.dir, locksDir)
	if err := s.fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, name+".lock")

	file, err := s.fs.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		// Lock exists - check if it's stale
		if !s.isLockStale(lockPath) {
			return nil, ErrLockExists
		}
		// Remove stale lock and retry once
		_ = s.fs.Remove(lockPath)
		file, err = s.fs.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err != nil {
			return nil, ErrLockExists
		}
	}

	lock := &Lock{fs: s.fs, path: lockPath, file: file, clock: s.clock}
	if err := lock.refresh(); err != nil {
		file.Close()
		_ = s.fs.Remove(lockPath)
		return nil, err
	}

	lock.stop = make(chan struct{})
	lock.done = make(chan struct{})
	go lock.keepAlive(lockRefreshInterval)

	return lock, nil
}

// AcquireLock waits until the named lock is free or ctx is done.
func (s *Store) AcquireLock(ctx context.Context, name string) (*Lock, error) {
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		lock, err := s.TryLock(name)
		if !errors.Is(err, ErrLockExists) {
			return lock, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s lock: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

// refresh rewrites the lock metadata (PID and timestamp).
func (l *Lock) refresh() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	data := fmt.Sprintf("pid=%d\n%s%s\n", os.Getpid(), lockTimestampKey, l.clock.Now().UTC().Format(time.RFC3339))
	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("write lock data: %w", err)
	}
	if _, err := l.file.WriteAt([]byte(data), 0); err != nil {
		return fmt.Errorf("write lock data: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync lock file: %w", err)
	}
	return nil
}

func (l *Lock) keepAlive(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			_ = l.refresh()
		}
	}
}

// Release releases the lock.
func (l *Lock) Release() error {
	if l.stop != nil {
		close(l.stop)
		<-l.done
		l.stop = nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := l.fs.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}

	return nil
}

// isLockStale reports whether the timestamp recorded in a lock file is older
// than the stale lock threshold. Files without a readable timestamp fall
// back to their modification time.
func (s *Store) isLockStale(lockPath string) bool {
	stamp, ok := s.lockTimestamp(lockPath)
	if !ok {
		info, err := s.fs.Stat(lockPath)
		if err != nil {
			return false
		}
		stamp = info.ModTime()
	}
	return s.clock.Now().Sub(stamp) > StaleLockThreshold
}

func (s *Store) lockTimestamp(lockPath string) (time.Time, bool) {
	data, err := afero.ReadFile(s.fs, lockPath)
	if err != nil {
		return time.Time{}, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		value, ok := strings.CutPrefix(strings.TrimSpace(line), lockTimestampKey)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, value)
		return t, err == nil
	}
	return time.Time{}, false
}
