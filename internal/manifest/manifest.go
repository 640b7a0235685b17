// Package manifest handles the remote integrity listing of page archives.
//
// The mirror publishes one checksum file covering every archive, in the
// format produced by sha256sum:
//
//	4c3a...e1  tldr-pages.en.zip
//	9b0f...77  tldr-pages.fr.zip
//
// Only per-language archives (tldr-pages.<lang>.zip) are kept. The combined
// tldr.zip and tldr-pages.zip bundles and any non-zip resource are ignored.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const (
	// ChecksumsFile is the name of the checksum resource under the mirror.
	ChecksumsFile = "tldr.sha256sums"
	// SignatureFile is the detached OpenPGP signature of ChecksumsFile.
	SignatureFile = ChecksumsFile + ".asc"

	archivePrefix = "tldr-pages."
	archiveSuffix = ".zip"
)

// Manifest maps archive file names to their hex SHA-256 digest.
type Manifest map[string]string

// ArchiveName returns the archive file name for a language.
func ArchiveName(lang string) string {
	return archivePrefix + lang + archiveSuffix
}

// Language returns the language of a per-language archive name.
// ok is false for any other resource.
func Language(name string) (lang string, ok bool) {
	rest, ok := strings.CutPrefix(name, archivePrefix)
	if !ok {
		return "", false
	}
	// tldr-pages.zip shares both affixes but names no language.
	lang, ok = strings.CutSuffix(rest, archiveSuffix)
	if !ok || lang == "" || strings.ContainsAny(lang, "./\\") {
		return "", false
	}
	return lang, true
}

// Parse reads a checksum listing. Blank lines are skipped; any other line
// must have a digest followed by a file name.
func Parse(r io.Reader) (Manifest, error) {
	m := make(Manifest)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected \"<sha256> <file>\", got %q", lineNum, line)
		}

		sum := strings.ToLower(fields[0])
		if !isHexDigest(sum) {
			return nil, fmt.Errorf("line %d: invalid sha256 digest %q", lineNum, fields[0])
		}

		// sha256sum marks binary mode with a leading '*'.
		name := path.Base(strings.TrimPrefix(fields[1], "*"))
		if _, ok := Language(name); !ok {
			continue
		}
		m[name] = sum
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read checksums: %w", err)
	}

	return m, nil
}

// Languages returns the languages present in the manifest, sorted.
func (m Manifest) Languages() []string {
	langs := make([]string, 0, len(m))
	for name := range m {
		if lang, ok := Language(name); ok {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// Sum returns the digest recorded for a language.
func (m Manifest) Sum(lang string) (string, bool) {
	sum, ok := m[ArchiveName(lang)]
	return sum, ok
}

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
