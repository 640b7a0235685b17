// Package render lays out parsed pages as styled lines.
//
// The renderer turns a page into lines of segments, each tagged with the page
// element it came from and the resolved style of that element. It never
// produces escape sequences; the output writer decides how styles reach the
// terminal.
package render

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ZebulonRouseFrantzich/tldr/internal/page"
	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

// Renderer renders pages with fixed options.
type Renderer struct {
	opts   Options
	styles style.Set
	width  int
}

// New creates a renderer. termWidth is the terminal width in columns, or zero
// when unknown; it applies only when opts.LineLength is zero.
func New(opts Options, termWidth int) *Renderer {
	w := opts.LineLength
	if w <= 0 {
		w = termWidth
	}
	if w <= 0 {
		w = DefaultWidth
	}

	styles := opts.Styles
	if styles == nil {
		styles = style.NewSet(nil)
	}

	return &Renderer{opts: opts, styles: styles, width: w}
}

// Width returns the wrap width in columns.
func (r *Renderer) Width() int {
	return r.width
}

// Render lays out p. platform names the directory the page was found in and
// is shown after the title when PlatformTitle is set; it may be empty.
func (r *Renderer) Render(p *page.Page, platform string) *Output {
	out := &Output{}

	for _, l := range p.Lines {
		switch l.Kind {
		case page.Title:
			if !r.opts.ShowTitle {
				continue
			}
			r.blank(out)
			title := l.Text
			if r.opts.PlatformTitle && platform != "" {
				title += " (" + platform + ")"
			}
			out.Lines = append(out.Lines, finish([]Segment{
				r.indent(r.opts.Indent.Title),
				r.seg(title, style.ElementTitle),
			}))
		case page.Description:
			lead := []Segment{r.indent(r.opts.Indent.Description)}
			out.Lines = append(out.Lines, wrap(lead, lead, r.prose(l.Text, style.ElementDescription), r.width)...)
		case page.Bullet:
			lead := []Segment{r.indent(r.opts.Indent.Bullet)}
			cont := lead
			if r.opts.ShowHyphens {
				prefix := r.opts.ExamplePrefix
				lead = append(lead, r.seg(prefix, style.ElementBullet))
				cont = []Segment{r.indent(r.opts.Indent.Bullet + runewidth.StringWidth(prefix))}
			}
			out.Lines = append(out.Lines, wrap(lead, cont, r.prose(l.Text, style.ElementBullet), r.width)...)
		case page.Example:
			lead := []Segment{r.indent(r.opts.Indent.Example)}
			out.Lines = append(out.Lines, wrap(lead, lead, r.example(l.Text), r.width)...)
		case page.Blank:
			r.blank(out)
		}
	}

	r.blank(out)
	return out
}

// RenderRaw emits the page source unchanged, one plain line per source line.
func (r *Renderer) RenderRaw(src []byte) *Output {
	out := &Output{}
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if text == "" {
			out.Lines = append(out.Lines, Line{})
			continue
		}
		out.Lines = append(out.Lines, Line{{Text: text, Element: style.ElementNone}})
	}
	return out
}

func (r *Renderer) blank(out *Output) {
	if !r.opts.Compact {
		out.Lines = append(out.Lines, Line{})
	}
}

func (r *Renderer) indent(n int) Segment {
	if n < 0 {
		n = 0
	}
	return Segment{Text: strings.Repeat(" ", n), Element: style.ElementNone}
}
