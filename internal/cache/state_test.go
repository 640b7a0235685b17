package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	s := newOsStore(t, nil)

	st, err := s.LoadState()
	require.NoError(t, err)
	assert.Equal(t, StateVersion, st.Version)
	assert.Empty(t, st.Languages)

	synced := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.UpdateState(context.Background(), func(st *State) error {
		st.Archives["tldr-pages.en.zip"] = "abc"
		st.Languages["en"] = LanguageState{SyncedAt: synced, Pages: 42}
		return nil
	}))

	st, err = s.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "abc", st.Archives["tldr-pages.en.zip"])
	assert.Equal(t, 42, st.Languages["en"].Pages)
	assert.True(t, synced.Equal(st.Languages["en"].SyncedAt))
	assert.True(t, st.CheckedAt.IsZero())

	assert.NoFileExists(t, s.statePath()+".tmp")
}

func TestUpdateStateError(t *testing.T) {
	s := newOsStore(t, nil)
	boom := errors.New("boom")

	err := s.UpdateState(context.Background(), func(st *State) error {
		st.Archives["x"] = "y"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := s.LoadState()
	require.NoError(t, err)
	assert.Empty(t, st.Archives, "failed update must not be saved")
}

func TestUpdateStateConcurrent(t *testing.T) {
	s := newOsStore(t, nil)
	langs := []string{"de", "en", "es", "fr", "it", "ja", "ko", "pl"}

	var wg sync.WaitGroup
	for _, lang := range langs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.UpdateState(context.Background(), func(st *State) error {
				st.Languages[lang] = LanguageState{SyncedAt: time.Now(), Pages: 1}
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := s.LoadState()
	require.NoError(t, err)
	assert.Len(t, st.Languages, len(langs), "no update may be lost")
}

func TestLoadStateCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewStore(Config{Dir: "/cache", Fs: fs})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/cache/"+StateFile, []byte("{not json"), 0o644))

	_, err = s.LoadState()
	assert.Error(t, err)
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		state     func(st *State)
		maxAge    time.Duration
		wantAge   time.Duration
		wantOK    bool
		wantStale bool
	}{
		{
			name:      "never_synced",
			state:     func(st *State) {},
			maxAge:    time.Hour,
			wantOK:    false,
			wantStale: true,
		},
		{
			name: "newest_language_wins",
			state: func(st *State) {
				st.Languages["en"] = LanguageState{SyncedAt: now.Add(-48 * time.Hour)}
				st.Languages["fr"] = LanguageState{SyncedAt: now.Add(-2 * time.Hour)}
			},
			maxAge:    3 * time.Hour,
			wantAge:   2 * time.Hour,
			wantOK:    true,
			wantStale: false,
		},
		{
			name: "checked_at_counts",
			state: func(st *State) {
				st.Languages["en"] = LanguageState{SyncedAt: now.Add(-48 * time.Hour)}
				st.CheckedAt = now.Add(-time.Hour)
			},
			maxAge:    24 * time.Hour,
			wantAge:   time.Hour,
			wantOK:    true,
			wantStale: false,
		},
		{
			name: "exactly_max_age_is_stale",
			state: func(st *State) {
				st.CheckedAt = now.Add(-336 * time.Hour)
			},
			maxAge:    336 * time.Hour,
			wantAge:   336 * time.Hour,
			wantOK:    true,
			wantStale: true,
		},
		{
			name: "future_timestamp_clamped",
			state: func(st *State) {
				st.CheckedAt = now.Add(time.Hour)
			},
			maxAge:    time.Hour,
			wantAge:   0,
			wantOK:    true,
			wantStale: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(Config{Dir: "/cache", Fs: afero.NewMemMapFs(), Clock: TestClock{FixedTime: now}})
			require.NoError(t, err)
			require.NoError(t, s.UpdateState(context.Background(), func(st *State) error {
				tt.state(st)
				return nil
			}))

			age, ok, err := s.Age()
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAge, age)

			stale, err := s.IsStale(tt.maxAge)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStale, stale)
		})
	}
}
