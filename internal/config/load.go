package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Locate returns the config file path: $TLDR_CONFIG when set, otherwise
// <user config dir>/tldr/config.lua.
func Locate() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, AppName, DefaultConfigName), nil
}

// Load reads the config at path. When path is not a regular file the
// defaults are used and found is false. A leading ~ in cache.dir and
// cache.keyring is expanded.
func (p *Parser) Load(ctx context.Context, path string) (cfg *Config, found bool, err error) {
	info, statErr := os.Stat(path)
	if statErr == nil && info.Mode().IsRegular() {
		cfg, err = p.ParseFile(ctx, path)
		if err != nil {
			return nil, true, err
		}
		found = true
	} else {
		cfg = Default(p.cacheDir)
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.Cache.Dir = ExpandHome(cfg.Cache.Dir, home)
		cfg.Cache.Keyring = ExpandHome(cfg.Cache.Keyring, home)
	}
	return cfg, found, nil
}
