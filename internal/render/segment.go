package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

// Segment is a run of text sharing one style.
type Segment struct {
	Text    string
	Element style.Element
	Style   style.Style
}

// Line is one output line.
type Line []Segment

// Text returns the line without styling.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Width returns the display width of the line.
func (l Line) Width() int {
	w := 0
	for _, s := range l {
		w += runewidth.StringWidth(s.Text)
	}
	return w
}

// Output is a rendered page.
type Output struct {
	Lines []Line
}

// String returns the page as plain text, one newline per line.
func (o *Output) String() string {
	var b strings.Builder
	for _, l := range o.Lines {
		b.WriteString(l.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// merge joins adjacent segments with the same element.
func merge(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Element == s.Element && out[n-1].Style == s.Style {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}
