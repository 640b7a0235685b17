package cache

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/tldr/internal/platform"
)

// Languages returns the installed languages, sorted.
func (s *Store) Languages() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if s.Exists() {
			return nil, fmt.Errorf("read cache dir: %w", err)
		}
		return nil, nil
	}

	var langs []string
	for _, e := range entries {
		lang, ok := strings.CutPrefix(e.Name(), PagesPrefix)
		if ok && lang != "" && s.HasLanguage(lang) {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs, nil
}

// Platforms returns the platform directories of a language, sorted.
func (s *Store) Platforms(lang string) ([]string, error) {
	matches, err := s.glob(lang, "*")
	if err != nil {
		return nil, err
	}

	langFs := s.langFs(lang)
	var platforms []string
	for _, m := range matches {
		if ok, _ := afero.DirExists(langFs, m); ok {
			platforms = append(platforms, m)
		}
	}
	sort.Strings(platforms)
	return platforms, nil
}

// ListPages returns the page names of a language available on the given
// platforms, deduplicated and sorted.
func (s *Store) ListPages(lang string, platforms ...platform.Platform) ([]string, error) {
	names := make(map[string]bool)
	for _, p := range platforms {
		matches, err := s.glob(lang, p.String()+"/*"+PageExt)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			names[pageName(m)] = true
		}
	}
	return sortedKeys(names), nil
}

// ListAll returns every page name of a language across platforms.
func (s *Store) ListAll(lang string) ([]string, error) {
	matches, err := s.glob(lang, "*/*"+PageExt)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(matches))
	for _, m := range matches {
		names[pageName(m)] = true
	}
	return sortedKeys(names), nil
}

// PageCount returns the number of page files of a language, counting the
// same command on different platforms separately.
func (s *Store) PageCount(lang string) (int, error) {
	matches, err := s.glob(lang, "*/*"+PageExt)
	return len(matches), err
}

// LanguageInfo is one row of the cache report.
type LanguageInfo struct {
	Language string
	Pages    int
	SyncedAt time.Time
}

// Info summarizes the cache.
type Info struct {
	Dir       string
	Age       time.Duration
	Synced    bool
	Languages []LanguageInfo
	Total     int
}

// Info gathers the cache report.
func (s *Store) Info() (*Info, error) {
	info := &Info{Dir: s.dir}

	age, ok, err := s.Age()
	if err != nil {
		return nil, err
	}
	info.Age, info.Synced = age, ok

	st, err := s.LoadState()
	if err != nil {
		return nil, err
	}

	langs, err := s.Languages()
	if err != nil {
		return nil, err
	}
	for _, lang := range langs {
		n, err := s.PageCount(lang)
		if err != nil {
			return nil, err
		}
		info.Languages = append(info.Languages, LanguageInfo{
			Language: lang,
			Pages:    n,
			SyncedAt: st.Languages[lang].SyncedAt,
		})
		info.Total += n
	}
	return info, nil
}

func (s *Store) langFs(lang string) afero.Fs {
	return afero.NewBasePathFs(s.fs, s.LangDir(lang))
}

func (s *Store) glob(lang, pattern string) ([]string, error) {
	if !s.HasLanguage(lang) {
		return nil, nil
	}
	matches, err := doublestar.Glob(afero.NewIOFS(s.langFs(lang)), pattern)
	if err != nil {
		return nil, fmt.Errorf("list pages.%s: %w", lang, err)
	}
	return matches, nil
}

func pageName(match string) string {
	return strings.TrimSuffix(path.Base(match), PageExt)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
