package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// PageExt is the extension of page files inside an archive.
const PageExt = ".md"

// Extractor handles archive extraction
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates an extractor writing to fs.
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{fs: fs}
}

// Extract unpacks a page archive into destDir and returns the number of pages
// written. Directory entries and files outside a platform directory are
// skipped. Entries escaping destDir fail the whole extraction.
func (e *Extractor) Extract(r io.ReaderAt, size int64, destDir string) (int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("open zip: %w", err)
	}

	if err := e.fs.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create dest dir: %w", err)
	}

	cleanDest := filepath.Clean(destDir)
	pages := 0

	for _, f := range zr.File {
		name := f.Name
		if strings.HasSuffix(name, "/") || f.FileInfo().IsDir() {
			continue
		}
		if !strings.Contains(name, "/") {
			continue
		}

		// Security check: prevent path traversal
		target := filepath.Join(cleanDest, filepath.FromSlash(name))
		if path.IsAbs(name) || hasParentRef(name) || !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return pages, fmt.Errorf("illegal file path: %s", name)
		}

		if err := e.extractFile(f, target); err != nil {
			return pages, err
		}

		if strings.HasSuffix(name, PageExt) {
			pages++
		}
	}

	return pages, nil
}

func (e *Extractor) extractFile(f *zip.File, target string) error {
	if err := e.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	out, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}

func hasParentRef(name string) bool {
	for _, seg := range strings.Split(strings.ReplaceAll(name, "\\", "/"), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
