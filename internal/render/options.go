package render

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

// DefaultWidth is used when neither a line length nor a terminal width is known.
const DefaultWidth = 80

// OptionStyle selects how {{[short|long]}} option placeholders are shown.
type OptionStyle int

const (
	OptionLong OptionStyle = iota
	OptionShort
	OptionBoth
)

func (o OptionStyle) String() string {
	switch o {
	case OptionShort:
		return "short"
	case OptionBoth:
		return "both"
	default:
		return "long"
	}
}

// ParseOptionStyle parses "short", "long" or "both".
func ParseOptionStyle(s string) (OptionStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "":
		return OptionLong, nil
	case "short":
		return OptionShort, nil
	case "both":
		return OptionBoth, nil
	default:
		return OptionLong, fmt.Errorf("invalid option style %q (possible values: short, long, both)", s)
	}
}

// Indent holds the number of leading spaces for each line kind.
type Indent struct {
	Title       int
	Description int
	Bullet      int
	Example     int
}

// Options controls page layout. The zero value renders with no indentation
// and no title.
type Options struct {
	ShowTitle     bool
	PlatformTitle bool
	ShowHyphens   bool
	ExamplePrefix string
	// LineLength is the wrap width. Zero means the terminal width.
	LineLength  int
	Compact     bool
	Raw         bool
	OptionStyle OptionStyle
	Indent      Indent
	Styles      style.Set
}

// DefaultOptions mirrors the built-in configuration defaults.
func DefaultOptions() Options {
	return Options{
		ShowTitle:     true,
		ExamplePrefix: "- ",
		OptionStyle:   OptionLong,
		Indent:        Indent{Title: 2, Description: 2, Bullet: 2, Example: 4},
		Styles:        style.NewSet(style.DefaultSpecs()),
	}
}
