// Package termout writes rendered pages to a terminal or a plain stream.
package termout

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/tldr/internal/render"
	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

// ColorMode is the user's color preference.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (possible values: auto, always, never)", s)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// UseColor decides whether output to f is colored. In auto mode color is used
// when f is a terminal and NO_COLOR is unset or empty.
func UseColor(mode ColorMode, f *os.File, getenv func(string) string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(f)
}

// Width returns the column count of the terminal behind f, or zero when f is
// not a terminal.
func Width(f *os.File) int {
	if !IsTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

// Writer encodes rendered output.
type Writer struct {
	out   io.Writer
	color bool
	cache map[style.Style]*color.Color
}

// NewWriter creates a writer. When useColor is false segments are written as
// plain text.
func NewWriter(out io.Writer, useColor bool) *Writer {
	return &Writer{out: out, color: useColor, cache: make(map[style.Style]*color.Color)}
}

// Write writes every line of o followed by a newline.
func (w *Writer) Write(o *render.Output) error {
	bw := bufio.NewWriter(w.out)
	for _, line := range o.Lines {
		for _, seg := range line {
			if _, err := bw.WriteString(w.encode(seg)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w *Writer) encode(seg render.Segment) string {
	if !w.color || seg.Style.Plain() {
		return seg.Text
	}
	c, ok := w.cache[seg.Style]
	if !ok {
		c = color.New(Attributes(seg.Style)...)
		c.EnableColor()
		w.cache[seg.Style] = c
	}
	return c.Sprint(seg.Text)
}

// Attributes converts s into SGR parameters.
func Attributes(s style.Style) []color.Attribute {
	var attrs []color.Attribute
	attrs = append(attrs, colorAttrs(s.Foreground, false)...)
	attrs = append(attrs, colorAttrs(s.Background, true)...)
	if s.Bold {
		attrs = append(attrs, color.Bold)
	}
	if s.Dim {
		attrs = append(attrs, color.Faint)
	}
	if s.Italic {
		attrs = append(attrs, color.Italic)
	}
	if s.Underline {
		attrs = append(attrs, color.Underline)
	}
	if s.Strikethrough {
		attrs = append(attrs, color.CrossedOut)
	}
	return attrs
}

func colorAttrs(c style.Color, background bool) []color.Attribute {
	base, hi, ext := color.FgBlack, color.FgHiBlack, color.Attribute(38)
	if background {
		base, hi, ext = color.BgBlack, color.BgHiBlack, color.Attribute(48)
	}

	switch c.Kind {
	case style.ColorNamed:
		if !c.Name.Valid() {
			return nil
		}
		if c.Name >= style.BrightBlack {
			return []color.Attribute{hi + color.Attribute(c.Name-style.BrightBlack)}
		}
		return []color.Attribute{base + color.Attribute(c.Name)}
	case style.Color256:
		return []color.Attribute{ext, 5, color.Attribute(c.Index)}
	case style.ColorRGB, style.ColorHex:
		return []color.Attribute{ext, 2, color.Attribute(c.R), color.Attribute(c.G), color.Attribute(c.B)}
	default:
		return nil
	}
}
