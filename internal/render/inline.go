package render

import (
	"strings"

	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

func (r *Renderer) seg(text string, e style.Element) Segment {
	return Segment{Text: text, Element: e, Style: r.styles.Get(e)}
}

// prose splits description and bullet text into inline code, URLs and text
// of the base element.
func (r *Renderer) prose(text string, base style.Element) []Segment {
	var segs []Segment
	for i, part := range strings.Split(text, "`") {
		if i%2 == 1 {
			segs = append(segs, r.seg(part, style.ElementInlineCode))
			continue
		}
		segs = append(segs, r.urls(part, base)...)
	}
	return segs
}

// urls highlights <http...> links, dropping the angle brackets, and bare
// http:// or https:// words.
func (r *Renderer) urls(text string, base style.Element) []Segment {
	var segs []Segment
	for text != "" {
		start := strings.Index(text, "<http")
		if start >= 0 {
			if end := strings.IndexByte(text[start:], '>'); end >= 0 {
				segs = append(segs, r.bare(text[:start], base)...)
				segs = append(segs, r.seg(text[start+1:start+end], style.ElementURL))
				text = text[start+end+1:]
				continue
			}
		}
		segs = append(segs, r.bare(text, base)...)
		break
	}
	return segs
}

func (r *Renderer) bare(text string, base style.Element) []Segment {
	var segs []Segment
	for text != "" {
		start := indexURL(text)
		if start < 0 {
			segs = append(segs, r.seg(text, base))
			break
		}
		end := start + strings.IndexAny(text[start:]+" ", " \t")
		url := strings.TrimRight(text[start:end], ".,;:!?)'\"")
		segs = append(segs, r.seg(text[:start], base), r.seg(url, style.ElementURL))
		text = text[start+len(url):]
	}
	return segs
}

func indexURL(s string) int {
	for off := 0; ; {
		i := strings.Index(s[off:], "http")
		if i < 0 {
			return -1
		}
		i += off
		rest := s[i:]
		if (strings.HasPrefix(rest, "https://") || strings.HasPrefix(rest, "http://")) &&
			(i == 0 || s[i-1] == ' ' || s[i-1] == '(' || s[i-1] == '\t') {
			return i
		}
		off = i + 4
	}
}

// example splits an example command into placeholders and literal text.
func (r *Renderer) example(text string) []Segment {
	var segs []Segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, r.seg(lit.String(), style.ElementExample))
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, `\{\{`):
			lit.WriteString("{{")
			i += 4
		case strings.HasPrefix(rest, `\}\}`):
			lit.WriteString("}}")
			i += 4
		case strings.HasPrefix(rest, "{{"):
			end := strings.Index(rest[2:], "}}")
			if end < 0 {
				lit.WriteString(rest)
				i = len(text)
				continue
			}
			end += 2
			for end+2 < len(rest) && rest[end+2] == '}' {
				end++
			}
			flush()
			segs = append(segs, r.placeholder(rest[2:end])...)
			i += end + 2
		default:
			lit.WriteByte(text[i])
			i++
		}
	}
	flush()
	return segs
}

func (r *Renderer) placeholder(inner string) []Segment {
	if len(inner) >= 2 && inner[0] == '[' && inner[len(inner)-1] == ']' && strings.Contains(inner, "|") {
		short, long, _ := strings.Cut(inner[1:len(inner)-1], "|")
		switch r.opts.OptionStyle {
		case OptionShort:
			return []Segment{r.seg(short, style.ElementExample)}
		case OptionLong:
			return []Segment{r.seg(long, style.ElementExample)}
		default:
			return []Segment{r.seg(inner, style.ElementPlaceholder)}
		}
	}
	return []Segment{r.seg(inner, style.ElementPlaceholder)}
}
