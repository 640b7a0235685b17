package cache

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/tldr/internal/platform"
)

// Candidate is one (language, platform) location a page may live in.
type Candidate struct {
	Language string
	Platform platform.Platform
}

func (c Candidate) String() string {
	return c.Language + "/" + c.Platform.String()
}

// Candidates returns the search order for a page: languages outer, and for
// each language the specific platform before common.
func Candidates(languages []string, p platform.Platform) []Candidate {
	platforms := []platform.Platform{p, platform.Common}
	if p == "" || p.IsCommon() {
		platforms = []platform.Platform{platform.Common}
	}

	out := make([]Candidate, 0, len(languages)*len(platforms))
	for _, lang := range languages {
		for _, pl := range platforms {
			out = append(out, Candidate{Language: lang, Platform: pl})
		}
	}
	return out
}

// Match is a page found in the cache.
type Match struct {
	Candidate
	Command string
	Path    string
}

// PageNotFoundError is returned when no candidate holds the page.
type PageNotFoundError struct {
	Command    string
	Candidates []Candidate
	// Explicit is set when the languages were forced on the command line.
	Explicit bool
}

func (e *PageNotFoundError) Error() string {
	tried := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		tried[i] = c.String()
	}
	msg := fmt.Sprintf("page '%s' not found in cache (searched %s)", e.Command, strings.Join(tried, ", "))
	if e.Explicit {
		msg += "; no fallback to English because languages were given explicitly"
	}
	return msg
}

// OfflineEmptyCacheError is returned when offline mode is requested and no
// page has ever been cached.
type OfflineEmptyCacheError struct {
	Dir string
}

func (e *OfflineEmptyCacheError) Error() string {
	return fmt.Sprintf("offline mode: cache in '%s' is empty, run an update first", e.Dir)
}

// Lookup returns the first candidate that holds command.
func (s *Store) Lookup(command string, candidates []Candidate) (*Match, error) {
	notFound := &PageNotFoundError{Command: command, Candidates: candidates}
	if !validCommand(command) {
		return nil, notFound
	}

	for _, c := range candidates {
		path := s.PagePath(c, command)
		if isFile(s.fs, path) {
			return &Match{Candidate: c, Command: command, Path: path}, nil
		}
	}
	return nil, notFound
}

// FindOtherPlatforms lists platforms other than exclude (and common) that
// have the page in any of the languages.
func (s *Store) FindOtherPlatforms(command string, languages []string, exclude platform.Platform) []platform.Platform {
	if !validCommand(command) {
		return nil
	}

	var found []platform.Platform
	for _, p := range platform.All {
		if p == exclude || p.IsCommon() {
			continue
		}
		for _, lang := range languages {
			if isFile(s.fs, s.PagePath(Candidate{Language: lang, Platform: p}, command)) {
				found = append(found, p)
				break
			}
		}
	}
	return found
}

// validCommand rejects names that would resolve outside a platform directory.
func validCommand(command string) bool {
	return command != "" && command != "." && command != ".." && !strings.ContainsAny(command, `/\`)
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
