package testutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/tldr/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	if got := os.Getenv("TLDR_CONFIG"); got != env.ConfigFile {
		t.Errorf("TLDR_CONFIG = %q, want %q", got, env.ConfigFile)
	}
	if got := os.Getenv("LANG"); got != "C" {
		t.Errorf("LANG = %q, want C", got)
	}

	if _, err := os.Stat(filepath.Dir(env.ConfigFile)); os.IsNotExist(err) {
		t.Errorf("config directory %s does not exist", filepath.Dir(env.ConfigFile))
	}

	for _, p := range []string{env.ConfigFile, env.CacheDir} {
		if !filepath.IsAbs(p) {
			t.Errorf("path %s is not absolute", p)
		}
		if !strings.HasPrefix(p, env.Root) {
			t.Errorf("path %s is outside %s", p, env.Root)
		}
	}

	// The cache directory is created lazily by the store.
	if _, err := os.Stat(env.CacheDir); !os.IsNotExist(err) {
		t.Errorf("cache directory should not exist yet, stat error = %v", err)
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	dir1 := testutil.SetupTestEnv(t).Root

	t.Run("subtest", func(t *testing.T) {
		dir2 := testutil.SetupTestEnv(t).Root

		if dir1 == dir2 {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}
