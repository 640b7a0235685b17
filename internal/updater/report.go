package updater

import (
	"errors"
	"sort"
	"sync"
)

// Skip reasons.
const (
	SkipOffline = "offline mode"
	SkipFresh   = "cache is up to date"
)

// LanguageUpdate describes one language that was downloaded and installed.
type LanguageUpdate struct {
	Language string
	Pages    int
	// NewPages is the page count difference with the replaced tree.
	NewPages int
}

// Failure is a per-language sync failure.
type Failure struct {
	Language string
	Err      error
}

// Report is the outcome of one Sync call.
type Report struct {
	Skipped    bool
	SkipReason string

	Updated     []LanguageUpdate
	Unchanged   []string
	Unavailable []string
	Failures    []Failure

	// ManifestErr is set when the checksum listing could not be fetched or
	// verified. Nothing else is attempted in that case.
	ManifestErr error

	// Downloads counts archive downloads started.
	Downloads int

	mu sync.Mutex
}

// Err joins every failure of the sync, or returns nil.
func (r *Report) Err() error {
	errs := []error{r.ManifestErr}
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// TotalPages sums the pages of all updated languages.
func (r *Report) TotalPages() int {
	n := 0
	for _, u := range r.Updated {
		n += u.Pages
	}
	return n
}

// NewPages sums the page count differences of all updated languages.
func (r *Report) NewPages() int {
	n := 0
	for _, u := range r.Updated {
		n += u.NewPages
	}
	return n
}

func (r *Report) addUpdated(u LanguageUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updated = append(r.Updated, u)
}

func (r *Report) addUnchanged(lang string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Unchanged = append(r.Unchanged, lang)
}

func (r *Report) addFailure(lang string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, Failure{Language: lang, Err: err})
}

func (r *Report) addDownload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Downloads++
}

// sort orders per-language results; completion order is not meaningful.
func (r *Report) sort() {
	sort.Slice(r.Updated, func(i, j int) bool { return r.Updated[i].Language < r.Updated[j].Language })
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].Language < r.Failures[j].Language })
	sort.Strings(r.Unchanged)
	sort.Strings(r.Unavailable)
}
