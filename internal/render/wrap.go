package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// word is a run of non-space text, possibly spanning several styles, and the
// spaces that precede it.
type word struct {
	sep   []Segment
	parts []Segment
}

func split(segs []Segment) []word {
	var words []word
	cur := word{}
	inWord := false

	for _, s := range segs {
		text := s.Text
		for text != "" {
			if text[0] == ' ' {
				if inWord {
					words = append(words, cur)
					cur = word{}
					inWord = false
				}
				n := len(text) - len(strings.TrimLeft(text, " "))
				cur.sep = append(cur.sep, Segment{Text: text[:n], Element: s.Element, Style: s.Style})
				text = text[n:]
				continue
			}
			i := strings.IndexByte(text, ' ')
			if i < 0 {
				i = len(text)
			}
			cur.parts = append(cur.parts, Segment{Text: text[:i], Element: s.Element, Style: s.Style})
			inWord = true
			text = text[i:]
		}
	}
	if inWord {
		words = append(words, cur)
	}
	return words
}

func width(segs []Segment) int {
	w := 0
	for _, s := range segs {
		w += runewidth.StringWidth(s.Text)
	}
	return w
}

// wrap lays out segs after lead, breaking at spaces so that no line exceeds
// limit columns unless a single word is wider. Continuation lines start with
// cont. Spaces at line breaks are dropped.
func wrap(lead, cont []Segment, segs []Segment, limit int) []Line {
	var lines []Line
	line := append([]Segment(nil), lead...)
	col := width(lead)
	start := true

	for _, w := range split(segs) {
		sw, ww := width(w.sep), width(w.parts)
		if !start && col+sw+ww > limit {
			lines = append(lines, finish(line))
			line = append([]Segment(nil), cont...)
			col = width(cont)
			start = true
		}
		if !start {
			line = append(line, w.sep...)
			col += sw
		}
		line = append(line, w.parts...)
		col += ww
		start = false
	}
	return append(lines, finish(line))
}

// finish merges segments and trims trailing spaces.
func finish(segs []Segment) Line {
	segs = merge(segs)
	for len(segs) > 0 {
		last := &segs[len(segs)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		segs = segs[:len(segs)-1]
	}
	return Line(segs)
}
