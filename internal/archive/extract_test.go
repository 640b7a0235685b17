package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/tldr/internal/testutil"
)

func extract(t *testing.T, fs afero.Fs, files map[string]string, dest string) (int, error) {
	t.Helper()
	data := testutil.ZipArchive(t, files)
	return NewExtractor(fs).Extract(bytes.NewReader(data), int64(len(data)), dest)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		wantPages int
		wantFiles []string
		skipped   []string
	}{
		{
			name: "platform_pages",
			files: map[string]string{
				"common/tar.md": "# tar",
				"linux/ls.md":   "# ls",
				"osx/ls.md":     "# ls",
			},
			wantPages: 3,
			wantFiles: []string{"common/tar.md", "linux/ls.md", "osx/ls.md"},
		},
		{
			name: "root_files_skipped",
			files: map[string]string{
				"LICENSE.md":    "license",
				"index.json":    "{}",
				"common/git.md": "# git",
			},
			wantPages: 1,
			wantFiles: []string{"common/git.md"},
			skipped:   []string{"LICENSE.md", "index.json"},
		},
		{
			name: "directory_entries_skipped",
			files: map[string]string{
				"common/":       "",
				"common/cat.md": "# cat",
			},
			wantPages: 1,
			wantFiles: []string{"common/cat.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			dest := "/staging/en"

			pages, err := extract(t, fs, tt.files, dest)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if pages != tt.wantPages {
				t.Errorf("pages = %d, want %d", pages, tt.wantPages)
			}

			for _, name := range tt.wantFiles {
				content, err := afero.ReadFile(fs, filepath.Join(dest, name))
				if err != nil {
					t.Errorf("file %s was not extracted: %v", name, err)
					continue
				}
				if string(content) != tt.files[name] {
					t.Errorf("content mismatch for %s:\ngot:  %q\nwant: %q", name, content, tt.files[name])
				}
			}

			for _, name := range tt.skipped {
				if ok, _ := afero.Exists(fs, filepath.Join(dest, name)); ok {
					t.Errorf("file %s should have been skipped", name)
				}
			}
		})
	}
}

func TestExtract_PathTraversal(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{name: "parent_directory", entry: "common/../../evil.md"},
		{name: "leading_parent", entry: "../outside/evil.md"},
		{name: "absolute", entry: "/tmp/evil.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dest := filepath.Join(root, "staging")
			fs := afero.NewOsFs()

			_, err := extract(t, fs, map[string]string{tt.entry: "pwned"}, dest)
			if err == nil {
				t.Fatal("expected error for path traversal")
			}

			if _, err := os.Stat(filepath.Join(root, "evil.md")); !os.IsNotExist(err) {
				t.Error("file escaped the destination directory")
			}
		})
	}
}

func TestExtract_CorruptedArchive(t *testing.T) {
	data := []byte("this is not a zip archive")
	_, err := NewExtractor(afero.NewMemMapFs()).Extract(bytes.NewReader(data), int64(len(data)), "/dest")
	if err == nil {
		t.Error("expected error for corrupted archive")
	}
}
