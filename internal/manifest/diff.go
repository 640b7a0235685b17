package manifest

import (
	"sort"
	"strings"
)

// Diff is the outcome of comparing the remote manifest with local state.
type Diff struct {
	// Changed lists languages whose archive must be downloaded.
	Changed []string
	// Unchanged lists languages already up to date.
	Unchanged []string
	// Unavailable lists requested languages the mirror does not publish.
	Unavailable []string
}

// Empty reports whether nothing needs downloading.
func (d Diff) Empty() bool {
	return len(d.Changed) == 0
}

// Compare selects the archives to download for the requested languages.
// English is always considered. stored holds the digest of the last installed
// archive per archive name; present reports whether a language's pages exist
// locally. A language is changed when the remote digest differs from the
// stored one, when there is no stored digest, or when its pages are missing.
func Compare(remote Manifest, stored map[string]string, languages []string, present func(lang string) bool) Diff {
	var d Diff
	for _, lang := range Requested(languages) {
		sum, ok := remote.Sum(lang)
		if !ok {
			d.Unavailable = append(d.Unavailable, lang)
			continue
		}

		old, known := stored[ArchiveName(lang)]
		switch {
		case !known, !strings.EqualFold(old, sum):
			d.Changed = append(d.Changed, lang)
		case present != nil && !present(lang):
			d.Changed = append(d.Changed, lang)
		default:
			d.Unchanged = append(d.Unchanged, lang)
		}
	}
	return d
}

// Requested normalizes a language list for syncing: English added,
// duplicates and empty entries removed, sorted.
func Requested(languages []string) []string {
	seen := map[string]bool{"en": true}
	out := []string{"en"}
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
