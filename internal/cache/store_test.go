package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/tldr/internal/platform"
)

// noLinkFs hides afero.Linker so Publish takes the rename fallback.
type noLinkFs struct {
	afero.Fs
}

func newOsStore(t *testing.T, fs afero.Fs) *Store {
	t.Helper()
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s, err := NewStore(Config{Dir: filepath.Join(t.TempDir(), "tldr"), Fs: fs})
	require.NoError(t, err)
	return s
}

// stage writes pages into a fresh generation of lang.
func stage(t *testing.T, s *Store, lang string, pages map[string]string) string {
	t.Helper()
	dir, err := s.Stage(lang)
	require.NoError(t, err)
	for name, content := range pages {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, s.fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(s.fs, path, []byte(content), 0o644))
	}
	return dir
}

func readPage(t *testing.T, s *Store, lang string, p platform.Platform, cmd string) string {
	t.Helper()
	data, err := afero.ReadFile(s.fs, s.PagePath(Candidate{Language: lang, Platform: p}, cmd))
	require.NoError(t, err)
	return string(data)
}

func TestNewStore(t *testing.T) {
	_, err := NewStore(Config{})
	assert.Error(t, err)

	s, err := NewStore(Config{Dir: "/tmp/x/"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", s.Dir())
	assert.IsType(t, RealClock{}, s.Clock())
}

func TestPublishSymlink(t *testing.T) {
	s := newOsStore(t, nil)
	assert.False(t, s.Exists())

	first := stage(t, s, "en", map[string]string{"common/tar.md": "v1"})
	require.NoError(t, s.Publish("en", first))

	target, isLink := s.readPointer(s.LangDir("en"))
	require.True(t, isLink, "pages.en should be a symlink")
	assert.Equal(t, first, target)
	assert.Equal(t, "v1", readPage(t, s, "en", platform.Common, "tar"))

	second := stage(t, s, "en", map[string]string{"common/tar.md": "v2"})
	require.NoError(t, s.Publish("en", second))

	assert.Equal(t, "v2", readPage(t, s, "en", platform.Common, "tar"))
	_, err := os.Stat(first)
	assert.True(t, os.IsNotExist(err), "previous generation should be removed")
}

func TestPublishRenameFallback(t *testing.T) {
	s := newOsStore(t, noLinkFs{afero.NewOsFs()})

	first := stage(t, s, "fr", map[string]string{"linux/ls.md": "v1"})
	require.NoError(t, s.Publish("fr", first))
	assert.Equal(t, "v1", readPage(t, s, "fr", platform.Linux, "ls"))

	info, err := os.Lstat(s.LangDir("fr"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "fallback publishes a plain directory")

	second := stage(t, s, "fr", map[string]string{"linux/ls.md": "v2"})
	require.NoError(t, s.Publish("fr", second))
	assert.Equal(t, "v2", readPage(t, s, "fr", platform.Linux, "ls"))

	trash, _ := afero.ReadDir(s.fs, filepath.Join(s.dir, trashDir))
	assert.Empty(t, trash, "old tree should be deleted after the swap")
}

func TestPublishReplacesPlainDirectory(t *testing.T) {
	plain := newOsStore(t, noLinkFs{afero.NewOsFs()})
	require.NoError(t, plain.Publish("en", stage(t, plain, "en", map[string]string{"common/a.md": "old"})))

	s, err := NewStore(Config{Dir: plain.Dir()})
	require.NoError(t, err)
	require.NoError(t, s.Publish("en", stage(t, s, "en", map[string]string{"common/a.md": "new"})))

	_, isLink := s.readPointer(s.LangDir("en"))
	assert.True(t, isLink)
	assert.Equal(t, "new", readPage(t, s, "en", platform.Common, "a"))
}

func TestDiscard(t *testing.T) {
	s := newOsStore(t, nil)
	dir := stage(t, s, "en", map[string]string{"common/a.md": "x"})
	require.NoError(t, s.Discard(dir))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.False(t, s.HasLanguage("en"))
}

func TestPrune(t *testing.T) {
	s := newOsStore(t, nil)

	live := stage(t, s, "en", map[string]string{"common/a.md": "x"})
	require.NoError(t, s.Publish("en", live))

	stray := stage(t, s, "en", map[string]string{"common/a.md": "partial"})
	other := stage(t, s, "fr", map[string]string{"common/a.md": "in flight"})

	require.NoError(t, s.Prune("en"))

	assert.DirExists(t, live)
	assert.NoDirExists(t, stray)
	assert.DirExists(t, other, "generations of other languages are left alone")
}

func TestClean(t *testing.T) {
	s := newOsStore(t, nil)
	require.NoError(t, s.Clean(), "cleaning a missing cache is not an error")

	require.NoError(t, s.Publish("en", stage(t, s, "en", map[string]string{"common/a.md": "x"})))
	require.NoError(t, s.UpdateState(context.Background(), func(st *State) error {
		st.Archives["tldr-pages.en.zip"] = "abc"
		return nil
	}))
	keep := filepath.Join(s.Dir(), "config.lua")
	require.NoError(t, os.WriteFile(keep, []byte("-- user file"), 0o644))

	require.NoError(t, s.Clean())

	assert.False(t, s.HasLanguage("en"))
	assert.NoFileExists(t, filepath.Join(s.Dir(), StateFile))
	assert.NoDirExists(t, filepath.Join(s.Dir(), generationsDir))
	assert.FileExists(t, keep, "unrelated files are kept")

	st, err := s.LoadState()
	require.NoError(t, err)
	assert.Empty(t, st.Archives)
}

func TestLock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewStore(Config{Dir: "/cache", Fs: afero.NewMemMapFs(), Clock: TestClock{FixedTime: now}})
	require.NoError(t, err)

	lock, err := s.TryLock("en")
	require.NoError(t, err)

	_, err = s.TryLock("en")
	assert.ErrorIs(t, err, ErrLockExists)

	other, err := s.TryLock("fr")
	require.NoError(t, err, "different languages lock independently")
	require.NoError(t, other.Release())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.AcquireLock(ctx, "en")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release(), "double release is harmless")

	lock, err = s.AcquireLock(context.Background(), "en")
	require.NoError(t, err)
	defer lock.Release()
}

func TestLockStale(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewStore(Config{Dir: "/cache", Fs: fs})
	require.NoError(t, err)

	first, err := s.TryLock("en")
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Release() })

	// The same cache seen from a process whose clock is past the threshold.
	later, err := NewStore(Config{Dir: "/cache", Fs: fs, Clock: TestClock{FixedTime: time.Now().Add(StaleLockThreshold + time.Minute)}})
	require.NoError(t, err)

	lock, err := later.TryLock("en")
	require.NoError(t, err, "stale lock should be taken over")
	require.NoError(t, lock.Release())
}

// stepClock is a settable clock shared by a store and its locks.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLockStaleUsesRecordedTimestamp(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	lockPath := filepath.Join("/cache", locksDir, "en.lock")

	tests := []struct {
		name      string
		stamp     time.Time
		wantTaken bool
	}{
		{"recent timestamp is respected", now.Add(-time.Minute), false},
		{"old timestamp is stale", now.Add(-StaleLockThreshold - time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, fs.MkdirAll(filepath.Dir(lockPath), 0o700))
			data := "pid=1\ntimestamp=" + tt.stamp.Format(time.RFC3339) + "\n"
			require.NoError(t, afero.WriteFile(fs, lockPath, []byte(data), 0o600))

			// The file's mtime is the real time, far from the store clock.
			s, err := NewStore(Config{Dir: "/cache", Fs: fs, Clock: TestClock{FixedTime: now}})
			require.NoError(t, err)

			lock, err := s.TryLock("en")
			if !tt.wantTaken {
				assert.ErrorIs(t, err, ErrLockExists)
				return
			}
			require.NoError(t, err)
			require.NoError(t, lock.Release())
		})
	}
}

func TestLockRefreshKeepsLongHolderAlive(t *testing.T) {
	fs := afero.NewMemMapFs()
	clock := &stepClock{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := NewStore(Config{Dir: "/cache", Fs: fs, Clock: clock})
	require.NoError(t, err)

	lock, err := s.TryLock("en")
	require.NoError(t, err)
	defer lock.Release()

	// A download running past the stale threshold refreshes its lock.
	clock.Add(StaleLockThreshold + time.Minute)
	require.NoError(t, lock.refresh())

	other, err := NewStore(Config{Dir: "/cache", Fs: fs, Clock: TestClock{FixedTime: clock.Now().Add(time.Minute)}})
	require.NoError(t, err)
	_, err = other.TryLock("en")
	assert.ErrorIs(t, err, ErrLockExists)
}

func TestCreateDownloadPruned(t *testing.T) {
	s := newOsStore(t, nil)

	f, err := s.CreateDownload("en")
	require.NoError(t, err)
	_, err = f.WriteString("partial")
	require.NoError(t, err)
	name := f.Name()
	require.NoError(t, f.Close())

	assert.FileExists(t, name)
	require.NoError(t, s.Prune("en"))
	assert.NoFileExists(t, name)
}
