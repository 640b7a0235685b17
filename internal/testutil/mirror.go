package testutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
)

// ZipArchive builds a page archive in memory. Keys are slash-separated paths
// inside the archive, e.g. "linux/ls.md".
func ZipArchive(t testing.TB, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// SHA256Hex returns the lowercase hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Checksums renders a sha256sum-style listing for the given files.
func Checksums(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s  %s\n", SHA256Hex(files[name]), name)
	}
	return []byte(b.String())
}

// Mirror is an in-process page mirror. It serves per-language archives and a
// checksum listing generated from them, and counts requests per file.
type Mirror struct {
	Server *httptest.Server

	mu        sync.Mutex
	files     map[string][]byte
	failing   map[string]int
	checksums []byte
	hits      map[string]int
	agents    []string
}

// NewMirror starts a mirror that is shut down when the test ends.
func NewMirror(t testing.TB) *Mirror {
	t.Helper()

	m := &Mirror{
		files:   make(map[string][]byte),
		failing: make(map[string]int),
		hits:    make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the mirror base URL.
func (m *Mirror) URL() string {
	return m.Server.URL
}

// Publish replaces the archive for lang and returns its bytes.
func (m *Mirror) Publish(t testing.TB, lang string, pages map[string]string) []byte {
	t.Helper()
	data := ZipArchive(t, pages)
	m.SetFile("tldr-pages."+lang+".zip", data)
	return data
}

// SetFile serves arbitrary content under name.
func (m *Mirror) SetFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
}

// SetChecksums overrides the generated checksum listing.
func (m *Mirror) SetChecksums(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checksums = data
}

// Fail makes requests for name answer with status.
func (m *Mirror) Fail(name string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[name] = status
}

// Hits returns how many times name was requested.
func (m *Mirror) Hits(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[name]
}

// ArchiveHits returns the number of archive downloads across all languages.
func (m *Mirror) ArchiveHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for name, n := range m.hits {
		if strings.HasSuffix(name, ".zip") {
			total += n
		}
	}
	return total
}

// UserAgents returns the User-Agent header of every request so far.
func (m *Mirror) UserAgents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.agents...)
}

func (m *Mirror) serve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")

	m.mu.Lock()
	m.hits[name]++
	m.agents = append(m.agents, r.Header.Get("User-Agent"))
	status, failing := m.failing[name]
	data, ok := m.files[name]
	if name == "tldr.sha256sums" {
		data, ok = m.checksums, true
		if data == nil {
			archives := make(map[string][]byte)
			for n, content := range m.files {
				if strings.HasSuffix(n, ".zip") {
					archives[n] = content
				}
			}
			data = Checksums(archives)
		}
	}
	m.mu.Unlock()

	switch {
	case failing:
		http.Error(w, http.StatusText(status), status)
	case !ok:
		http.NotFound(w, r)
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	}
}
