package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/tldr/internal/archive"
	"github.com/ZebulonRouseFrantzich/tldr/internal/cache"
	"github.com/ZebulonRouseFrantzich/tldr/internal/config"
	"github.com/ZebulonRouseFrantzich/tldr/internal/locale"
	"github.com/ZebulonRouseFrantzich/tldr/internal/manifest"
	"github.com/ZebulonRouseFrantzich/tldr/internal/page"
	"github.com/ZebulonRouseFrantzich/tldr/internal/platform"
	"github.com/ZebulonRouseFrantzich/tldr/internal/render"
	"github.com/ZebulonRouseFrantzich/tldr/internal/termout"
	"github.com/ZebulonRouseFrantzich/tldr/internal/updater"
)

const pageRequestURL = "https://github.com/tldr-pages/tldr/issues/new?template=page_request.yml"

// session is one invocation with its config resolved.
type session struct {
	app   *app
	cfg   *config.Config
	opts  *options
	mode  termout.ColorMode
	store *cache.Store
	langs locale.Resolution
	log   zerolog.Logger

	// updateErr is the failure of an explicit --update, if any.
	updateErr error
	updated   bool
}

func (a *app) newSession(ctx context.Context, cfg *config.Config, o *options, mode termout.ColorMode) (*session, error) {
	store, err := cache.NewStore(cache.Config{
		Dir:   cfg.Cache.Dir,
		Fs:    afero.NewOsFs(),
		Clock: a.clock,
	})
	if err != nil {
		return nil, err
	}

	langs := locale.Resolve(locale.Input{
		Override:   o.languages,
		Configured: cfg.Cache.Languages,
		Env:        locale.EnvFromOS(),
	})
	a.log.Debug().Strs("languages", langs.Languages).Str("cache", store.Dir()).Msg("session")

	return &session{
		app:   a,
		cfg:   cfg,
		opts:  o,
		mode:  mode,
		store: store,
		langs: langs,
		log:   a.log,
	}, nil
}

func (s *session) platform(ctx context.Context) (platform.Platform, error) {
	return platform.Resolve(ctx, s.opts.platform, s.app.detector)
}

func (s *session) engine() (*updater.Engine, error) {
	var keyring *manifest.Keyring
	if s.cfg.Cache.Keyring != "" {
		k, err := manifest.LoadKeyring(s.cfg.Cache.Keyring)
		if err != nil {
			return nil, &config.ValidationError{Field: "cache.keyring", Message: err.Error()}
		}
		keyring = k
	}

	source := archive.NewFetcher(archive.FetcherConfig{
		Mirror:    s.cfg.Cache.Mirror,
		UserAgent: "tldr-go/" + Version,
		Client:    s.app.client,
	})

	return updater.NewEngine(updater.Config{
		Store:   s.store,
		Source:  source,
		Keyring: keyring,
		Logger:  s.log,
	})
}

// sync runs one cache sync and logs its outcome.
func (s *session) sync(ctx context.Context, force bool) (*updater.Report, error) {
	eng, err := s.engine()
	if err != nil {
		return nil, err
	}

	report := eng.Sync(ctx, s.langs.Languages, updater.Policy{
		MaxAge:  s.cfg.Cache.MaxAgeDuration(),
		Force:   force,
		Offline: s.opts.offline,
	})
	s.updated = true

	switch {
	case report.Skipped:
		s.log.Debug().Msgf("update skipped: %s", report.SkipReason)
	case len(report.Updated) > 0:
		s.log.Info().Msgf("cache updated: %d pages, %d new", report.TotalPages(), report.NewPages())
	case report.Err() == nil:
		s.log.Info().Msg(updater.SkipFresh)
	}
	return report, nil
}

// update handles --update.
func (s *session) update(ctx context.Context) error {
	report, err := s.sync(ctx, true)
	if err != nil {
		return err
	}
	if err := report.Err(); err != nil {
		s.updateErr = err
		return &updateError{err: err}
	}
	return nil
}

// autoUpdate syncs when the cache is older than max_age.
func (s *session) autoUpdate(ctx context.Context) error {
	report, err := s.sync(ctx, false)
	if err != nil {
		return err
	}
	return report.Err()
}

// ensureCache downloads pages when nothing is installed yet. The returned
// error of a failed download is the update error; the cache stays empty.
func (s *session) ensureCache(ctx context.Context) (syncErr error, err error) {
	langs, err := s.store.Languages()
	if err != nil {
		return nil, err
	}
	if len(langs) > 0 {
		return s.updateErr, nil
	}
	if s.opts.offline {
		return nil, &cache.OfflineEmptyCacheError{Dir: s.store.Dir()}
	}
	if s.updated {
		return s.updateErr, nil
	}

	s.log.Info().Msg("page cache is empty, downloading pages")
	report, err := s.sync(ctx, true)
	if err != nil {
		return nil, err
	}
	return report.Err(), nil
}

func (s *session) warnIfStale() {
	stale, err := s.store.IsStale(s.cfg.Cache.MaxAgeDuration())
	if err != nil || !stale {
		return
	}
	age, _, _ := s.store.Age()
	s.log.Warn().Msgf("cache is stale (last update %s ago), run 'tldr --update' without --offline", formatAge(age))
}

// showPage finds, renders and prints one page.
func (s *session) showPage(ctx context.Context, name string) error {
	plat, err := s.platform(ctx)
	if err != nil {
		return err
	}

	langs, err := s.store.Languages()
	if err != nil {
		return err
	}
	wasEmpty := len(langs) == 0

	syncErr, err := s.ensureCache(ctx)
	if err != nil {
		return err
	}

	deferred := false
	switch {
	case wasEmpty, s.updated:
	case s.opts.offline:
		s.warnIfStale()
	case s.cfg.Cache.AutoUpdate && s.cfg.Cache.DeferAutoUpdate:
		deferred = true
	case s.cfg.Cache.AutoUpdate:
		syncErr = s.autoUpdate(ctx)
	}

	match, err := s.store.Lookup(name, cache.Candidates(s.langs.Languages, plat))
	if err != nil {
		var notFound *cache.PageNotFoundError
		if errors.As(err, &notFound) {
			notFound.Explicit = s.langs.Explicit
			if syncErr != nil {
				s.log.Warn().Msg(err.Error())
				return &updateError{err: syncErr}
			}
			s.hintOtherPlatforms(name, plat)
		}
		return err
	}
	if syncErr != nil {
		s.log.Warn().Msgf("cache update failed, showing the cached page: %v", syncErr)
	}

	s.log.Debug().Str("path", match.Path).Msg("page found")
	src, err := afero.ReadFile(s.store.Fs(), match.Path)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}
	if err := s.display(src, match.Platform, match.Path); err != nil {
		return err
	}

	if deferred {
		if err := s.autoUpdate(ctx); err != nil {
			s.log.Warn().Msgf("cache update failed: %v", err)
		}
	}
	return nil
}

func (s *session) hintOtherPlatforms(name string, plat platform.Platform) {
	others := s.store.FindOtherPlatforms(name, s.langs.Languages, plat)
	if len(others) > 0 {
		names := make([]string, len(others))
		for i, p := range others {
			names[i] = p.String()
		}
		s.log.Warn().Msgf("'%s' exists for other platforms: %s (use --platform)", name, strings.Join(names, ", "))
		return
	}
	s.log.Info().Msgf("try 'tldr --update', or request the page: %s", pageRequestURL)
}

// display renders src for the terminal and writes it to stdout.
func (s *session) display(src []byte, plat platform.Platform, path string) error {
	r := render.New(s.cfg.RenderOptions(), termout.Width(s.app.outFile))

	var out *render.Output
	if s.cfg.Output.RawMarkdown {
		out = r.RenderRaw(src)
	} else {
		p, err := page.Parse(bytes.NewReader(src))
		if err != nil {
			return fmt.Errorf("'%s': %w", path, err)
		}
		var title string
		if plat != "" && !plat.IsCommon() {
			title = plat.String()
		}
		out = r.Render(p, title)
	}

	w := termout.NewWriter(s.app.stdout, termout.UseColor(s.mode, s.app.outFile, s.app.getenv))
	return w.Write(out)
}

// renderFile handles --render. The platform is taken from the parent
// directory name when it is one.
func (s *session) renderFile(path string) error {
	src, err := afero.ReadFile(afero.NewOsFs(), path)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	var plat platform.Platform
	if abs, err := filepath.Abs(path); err == nil {
		if p, err := platform.Parse(filepath.Base(filepath.Dir(abs))); err == nil {
			plat = p
		}
	}
	return s.display(src, plat, path)
}

func (s *session) cleanCache() error {
	if err := s.store.Clean(); err != nil {
		return fmt.Errorf("clean cache: %w", err)
	}
	s.log.Info().Msgf("cache in '%s' removed", s.store.Dir())
	return nil
}

func (s *session) info() error {
	info, err := s.store.Info()
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cache: %s\n", info.Dir)
	if info.Synced {
		fmt.Fprintf(&b, "Last update: %s ago\n", formatAge(info.Age))
	} else {
		b.WriteString("Last update: never\n")
	}

	if len(info.Languages) == 0 {
		b.WriteString("Installed languages: none\n")
	} else {
		b.WriteString("Installed languages:\n")
		for _, l := range info.Languages {
			fmt.Fprintf(&b, "  %-8s %6d pages", l.Language, l.Pages)
			if !l.SyncedAt.IsZero() {
				fmt.Fprintf(&b, "  (synced %s)", l.SyncedAt.Format(time.DateOnly))
			}
			b.WriteByte('\n')
		}
	}
	fmt.Fprintf(&b, "Total: %d pages\n", info.Total)

	_, err = fmt.Fprint(s.app.stdout, b.String())
	return err
}

func (s *session) listLanguages() error {
	langs, err := s.store.Languages()
	if err != nil {
		return err
	}
	return s.printList(langs)
}

func (s *session) listPlatforms(ctx context.Context) error {
	if err := s.requireCache(ctx); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, lang := range s.langs.Languages {
		platforms, err := s.store.Platforms(lang)
		if err != nil {
			return err
		}
		for _, p := range platforms {
			seen[p] = true
		}
	}
	return s.printList(sortedNames(seen))
}

// list handles --list (current platform and common) and --list-all.
func (s *session) list(ctx context.Context, all bool) error {
	if err := s.requireCache(ctx); err != nil {
		return err
	}

	plat, err := s.platform(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, lang := range s.langs.Languages {
		var names []string
		if all {
			names, err = s.store.ListAll(lang)
		} else {
			names, err = s.store.ListPages(lang, plat, platform.Common)
		}
		if err != nil {
			return err
		}
		for _, n := range names {
			seen[n] = true
		}
	}
	return s.printList(sortedNames(seen))
}

// requireCache fills an empty cache; listing an empty cache after a failed
// download is an update failure.
func (s *session) requireCache(ctx context.Context) error {
	syncErr, err := s.ensureCache(ctx)
	if err != nil {
		return err
	}
	langs, err := s.store.Languages()
	if err != nil {
		return err
	}
	if len(langs) == 0 && syncErr != nil {
		return &updateError{err: syncErr}
	}
	return nil
}

func (s *session) printList(names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(s.app.stdout, strings.Join(names, "\n"))
	return err
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// formatAge renders a duration in the largest whole unit.
func formatAge(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	switch {
	case d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/time.Minute), "minute")
	}
}
