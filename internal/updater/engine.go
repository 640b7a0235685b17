// Package updater keeps the page cache in sync with the mirror.
//
// A sync compares the mirror's checksum listing with the digests recorded
// for the installed archives and downloads only the languages that changed.
// Each changed archive is downloaded, verified against its published
// SHA-256, extracted into a fresh generation and published with an atomic
// swap. Languages are independent: a failure in one is recorded in the
// report and never stops the others.
package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ZebulonRouseFrantzich/tldr/internal/archive"
	"github.com/ZebulonRouseFrantzich/tldr/internal/cache"
	"github.com/ZebulonRouseFrantzich/tldr/internal/manifest"
)

// DefaultParallelism bounds concurrent archive downloads.
const DefaultParallelism = 4

// Source retrieves resources from the mirror. *archive.Fetcher implements it.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Download(ctx context.Context, name string, w io.Writer) (sum string, size int64, err error)
}

// Policy controls when and how a sync runs.
type Policy struct {
	// MaxAge is the cache age at which an automatic sync is due.
	MaxAge time.Duration
	// Force syncs regardless of age.
	Force bool
	// Offline disables all network access.
	Offline bool
	// Parallelism bounds concurrent downloads. Zero means DefaultParallelism.
	Parallelism int
}

// Config holds the engine dependencies.
type Config struct {
	Store  *cache.Store
	Source Source
	// Keyring, when set, requires a valid signature on the checksum listing.
	Keyring *manifest.Keyring
	Logger  zerolog.Logger
}

// Engine runs cache syncs.
type Engine struct {
	store   *cache.Store
	source  Source
	keyring *manifest.Keyring
	log     zerolog.Logger
}

// NewEngine creates a sync engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}

	return &Engine{
		store:   cfg.Store,
		source:  cfg.Source,
		keyring: cfg.Keyring,
		log:     cfg.Logger,
	}, nil
}

// Sync brings the requested languages (plus English) up to date.
func (e *Engine) Sync(ctx context.Context, languages []string, policy Policy) *Report {
	report := &Report{}

	if policy.Offline {
		report.Skipped, report.SkipReason = true, SkipOffline
		return report
	}

	if !policy.Force {
		stale, err := e.store.IsStale(policy.MaxAge)
		if err != nil {
			e.log.Warn().Err(err).Msg("could not read cache state, updating")
		}
		if !stale {
			report.Skipped, report.SkipReason = true, SkipFresh
			return report
		}
	}

	remote, err := e.fetchManifest(ctx)
	if err != nil {
		report.ManifestErr = err
		return report
	}

	state, err := e.store.LoadState()
	if err != nil {
		report.ManifestErr = err
		return report
	}

	diff := manifest.Compare(remote, state.Archives, languages, e.store.HasLanguage)
	report.Unchanged = append(report.Unchanged, diff.Unchanged...)
	report.Unavailable = diff.Unavailable
	if len(diff.Unavailable) > 0 {
		available := strings.Join(remote.Languages(), ", ")
		for _, lang := range diff.Unavailable {
			e.log.Warn().Str("lang", lang).Msgf("'%s' is not available on the mirror (available: %s)", manifest.ArchiveName(lang), available)
		}
	}
	if diff.Empty() {
		e.log.Debug().Msg("all archives up to date")
	}

	parallelism := policy.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	var g errgroup.Group
	g.SetLimit(parallelism)
	for _, lang := range diff.Changed {
		sum, _ := remote.Sum(lang)
		g.Go(func() error {
			if err := e.syncLanguage(ctx, lang, sum, report); err != nil {
				e.log.Error().Str("lang", lang).Err(err).Msg("update failed")
				report.addFailure(lang, err)
			}
			// Failures are isolated per language.
			return nil
		})
	}
	_ = g.Wait()

	report.sort()

	if len(report.Failures) == 0 {
		now := e.store.Clock().Now()
		err := e.store.UpdateState(ctx, func(st *cache.State) error {
			st.CheckedAt = now
			return nil
		})
		if err != nil {
			e.log.Warn().Err(err).Msg("could not record update check")
		}
	}

	return report
}

// fetchManifest downloads, optionally authenticates and parses the
// checksum listing.
func (e *Engine) fetchManifest(ctx context.Context) (manifest.Manifest, error) {
	e.log.Debug().Str("file", manifest.ChecksumsFile).Msg("fetching checksums")

	data, err := e.source.Fetch(ctx, manifest.ChecksumsFile)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if e.keyring != nil {
		sig, err := e.source.Fetch(ctx, manifest.SignatureFile)
		if err != nil {
			return nil, &NetworkError{Err: fmt.Errorf("signature: %w", err)}
		}
		if err := e.keyring.Verify(data, sig); err != nil {
			return nil, err
		}
		e.log.Debug().Msg("checksum signature verified")
	}

	m, err := manifest.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("parse %s: %w", manifest.ChecksumsFile, err)}
	}
	return m, nil
}

// syncLanguage downloads, verifies, extracts and publishes one archive.
func (e *Engine) syncLanguage(ctx context.Context, lang, expected string, report *Report) error {
	name := manifest.ArchiveName(lang)
	log := e.log.With().Str("lang", lang).Logger()

	lock, err := e.store.AcquireLock(ctx, lang)
	if err != nil {
		return &ExtractError{Language: lang, Err: err}
	}
	defer lock.Release()

	if err := e.store.Prune(lang); err != nil {
		log.Debug().Err(err).Msg("could not prune old generations")
	}

	// Another process may have installed this archive while we waited.
	if st, err := e.store.LoadState(); err == nil {
		if strings.EqualFold(st.Archives[name], expected) && e.store.HasLanguage(lang) {
			report.addUnchanged(lang)
			return nil
		}
	}

	existing, _ := e.store.PageCount(lang)

	file, err := e.store.CreateDownload(lang)
	if err != nil {
		return &ExtractError{Language: lang, Err: err}
	}
	defer func() {
		file.Close()
		_ = e.store.Discard(file.Name())
	}()

	log.Info().Msgf("downloading '%s'...", name)
	report.addDownload()

	actual, size, err := e.source.Download(ctx, name, file)
	if err != nil {
		return &NetworkError{Language: lang, Err: err}
	}

	if err := archive.Verify(actual, expected); err != nil {
		return &ChecksumMismatchError{Language: lang, Expected: expected, Actual: actual}
	}

	staged, err := e.store.Stage(lang)
	if err != nil {
		return &ExtractError{Language: lang, Err: err}
	}

	pages, err := archive.NewExtractor(e.store.Fs()).Extract(file, size, staged)
	if err == nil && pages == 0 {
		err = errors.New("archive contains no pages")
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = e.store.Discard(staged)
		return &ExtractError{Language: lang, Err: err}
	}

	if err := e.store.Publish(lang, staged); err != nil {
		_ = e.store.Discard(staged)
		return &ExtractError{Language: lang, Err: err}
	}

	now := e.store.Clock().Now()
	err = e.store.UpdateState(context.WithoutCancel(ctx), func(st *cache.State) error {
		st.Archives[name] = strings.ToLower(expected)
		st.Languages[lang] = cache.LanguageState{SyncedAt: now, Pages: pages}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record update of '%s': %w", lang, err)
	}

	log.Info().Msgf("extracted 'pages.%s': %d pages, %d new", lang, pages, pages-existing)
	report.addUpdated(LanguageUpdate{Language: lang, Pages: pages, NewPages: pages - existing})
	return nil
}
