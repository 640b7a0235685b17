package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/tldr/internal/render"
	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

// Config is the complete client configuration. It is built once per process
// and not modified afterwards.
type Config struct {
	Cache  CacheConfig
	Output OutputConfig
	Indent IndentConfig
	Style  StyleConfig
}

// CacheConfig controls the page cache and its updates.
type CacheConfig struct {
	// Dir is the cache directory; a leading ~ is expanded by Load.
	Dir    string
	Mirror string
	// AutoUpdate syncs the cache when it is older than MaxAge hours.
	AutoUpdate bool
	// DeferAutoUpdate runs the automatic sync after the page is shown.
	DeferAutoUpdate bool
	MaxAge          int
	Languages       []string
	// Keyring, when set, is an OpenPGP keyring used to verify the
	// checksum listing.
	Keyring string
}

// MaxAgeDuration converts MaxAge to a duration.
func (c CacheConfig) MaxAgeDuration() time.Duration {
	return time.Duration(c.MaxAge) * time.Hour
}

// OutputConfig controls page layout.
type OutputConfig struct {
	ShowTitle     bool
	PlatformTitle bool
	ShowHyphens   bool
	ExamplePrefix string
	// LineLength is the wrap width; 0 means the terminal width.
	LineLength  int
	Compact     bool
	OptionStyle string
	RawMarkdown bool
}

// IndentConfig holds the leading spaces of each line kind.
type IndentConfig struct {
	Title       int
	Description int
	Bullet      int
	Example     int
}

// StyleConfig holds the style of each page element.
type StyleConfig struct {
	Title       style.Spec
	Description style.Spec
	Bullet      style.Spec
	Example     style.Spec
	URL         style.Spec
	InlineCode  style.Spec
	Placeholder style.Spec
}

// Specs returns the styles keyed by element.
func (s StyleConfig) Specs() map[style.Element]style.Spec {
	return map[style.Element]style.Spec{
		style.ElementTitle:       s.Title,
		style.ElementDescription: s.Description,
		style.ElementBullet:      s.Bullet,
		style.ElementExample:     s.Example,
		style.ElementURL:         s.URL,
		style.ElementInlineCode:  s.InlineCode,
		style.ElementPlaceholder: s.Placeholder,
	}
}

func (s *StyleConfig) spec(e style.Element) *style.Spec {
	switch e {
	case style.ElementTitle:
		return &s.Title
	case style.ElementDescription:
		return &s.Description
	case style.ElementBullet:
		return &s.Bullet
	case style.ElementExample:
		return &s.Example
	case style.ElementURL:
		return &s.URL
	case style.ElementInlineCode:
		return &s.InlineCode
	case style.ElementPlaceholder:
		return &s.Placeholder
	default:
		return nil
	}
}

// Default returns the built-in configuration with the cache in cacheDir.
func Default(cacheDir string) *Config {
	d := style.DefaultSpecs()
	return &Config{
		Cache: CacheConfig{
			Dir:        cacheDir,
			Mirror:     DefaultMirror,
			AutoUpdate: true,
			MaxAge:     DefaultMaxAgeHours,
		},
		Output: OutputConfig{
			ShowTitle:     true,
			ExamplePrefix: DefaultExamplePrefix,
			OptionStyle:   render.OptionLong.String(),
		},
		Indent: IndentConfig{Title: 2, Description: 2, Bullet: 2, Example: 4},
		Style: StyleConfig{
			Title:       d[style.ElementTitle],
			Description: d[style.ElementDescription],
			Bullet:      d[style.ElementBullet],
			Example:     d[style.ElementExample],
			URL:         d[style.ElementURL],
			InlineCode:  d[style.ElementInlineCode],
			Placeholder: d[style.ElementPlaceholder],
		},
	}
}

// DefaultCacheDir returns <user cache dir>/tldr.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(dir, AppName)
}

// RenderOptions converts the output, indent and style sections.
func (c *Config) RenderOptions() render.Options {
	optStyle, _ := render.ParseOptionStyle(c.Output.OptionStyle)
	return render.Options{
		ShowTitle:     c.Output.ShowTitle,
		PlatformTitle: c.Output.PlatformTitle,
		ShowHyphens:   c.Output.ShowHyphens,
		ExamplePrefix: c.Output.ExamplePrefix,
		LineLength:    c.Output.LineLength,
		Compact:       c.Output.Compact,
		Raw:           c.Output.RawMarkdown,
		OptionStyle:   optStyle,
		Indent: render.Indent{
			Title:       c.Indent.Title,
			Description: c.Indent.Description,
			Bullet:      c.Indent.Bullet,
			Example:     c.Indent.Example,
		},
		Styles: style.NewSet(c.Style.Specs()),
	}
}

// Validate checks values that the Lua types alone cannot rule out.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Cache.Dir) == "" {
		return &ValidationError{Field: "cache.dir", Message: "cannot be empty"}
	}
	if err := validateMirror(c.Cache.Mirror); err != nil {
		return &ValidationError{Field: "cache.mirror", Message: err.Error()}
	}
	if c.Cache.MaxAge < 0 {
		return &ValidationError{Field: "cache.max_age", Message: fmt.Sprintf("must not be negative (got %d)", c.Cache.MaxAge)}
	}

	if len(c.Cache.Languages) > MaxLanguages {
		return &ValidationError{
			Field:   "cache.languages",
			Message: fmt.Sprintf("too many languages (%d), maximum is %d", len(c.Cache.Languages), MaxLanguages),
		}
	}
	for i, lang := range c.Cache.Languages {
		if err := ValidateLanguage(lang); err != nil {
			return &ValidationError{Field: fmt.Sprintf("cache.languages[%d]", i+1), Message: err.Error()}
		}
	}

	if c.Output.LineLength < 0 {
		return &ValidationError{Field: "output.line_length", Message: "must not be negative"}
	}
	if _, err := render.ParseOptionStyle(c.Output.OptionStyle); err != nil {
		return &ValidationError{Field: "output.option_style", Message: err.Error()}
	}

	indents := map[string]int{
		"indent.title":       c.Indent.Title,
		"indent.description": c.Indent.Description,
		"indent.bullet":      c.Indent.Bullet,
		"indent.example":     c.Indent.Example,
	}
	for field, n := range indents {
		if n < 0 {
			return &ValidationError{Field: field, Message: "must not be negative"}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// ValidateLanguage accepts tags like "de", "pt_BR" or "zh_TW".
func ValidateLanguage(lang string) error {
	if lang == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if len(lang) > 16 {
		return fmt.Errorf("language too long: %q", lang)
	}
	for _, r := range lang {
		ok := r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("invalid language %q", lang)
		}
	}
	return nil
}

// validateMirror requires an http or https base URL.
func validateMirror(mirror string) error {
	if mirror == "" {
		return fmt.Errorf("mirror cannot be empty")
	}

	u, err := url.Parse(mirror)
	if err != nil {
		return fmt.Errorf("invalid mirror URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("mirror URL must use https:// or http:// scheme (got: %s)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("mirror URL has no host")
	}

	return nil
}

// ExpandHome replaces a leading ~ with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}
