package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/tldr/internal/page"
	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

const tarPage = "# tar\n" +
	"\n" +
	"> Archiving utility.\n" +
	"> More information: <https://www.gnu.org/software/tar>.\n" +
	"\n" +
	"- Create an archive and write it to a `file`:\n" +
	"\n" +
	"`tar {{[-c|--create]}} {{[-f|--file]}} {{path/to/target.tar}} {{path/to/file1 path/to/file2 ...}}`\n"

func parse(t *testing.T, src string) *page.Page {
	t.Helper()
	p, err := page.ParseString(src)
	require.NoError(t, err)
	return p
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.LineLength = 200
	return opts
}

func TestRender(t *testing.T) {
	out := New(testOptions(), 0).Render(parse(t, tarPage), "common")

	want := strings.Join([]string{
		"",
		"  tar",
		"",
		"  Archiving utility.",
		"  More information: https://www.gnu.org/software/tar.",
		"",
		"  Create an archive and write it to a file:",
		"",
		"    tar --create --file path/to/target.tar path/to/file1 path/to/file2 ...",
		"",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestRenderSegments(t *testing.T) {
	out := New(testOptions(), 0).Render(parse(t, tarPage), "")

	find := func(text string) Segment {
		for _, l := range out.Lines {
			for _, s := range l {
				if s.Text == text {
					return s
				}
			}
		}
		t.Fatalf("segment %q not found", text)
		return Segment{}
	}

	assert.Equal(t, style.ElementTitle, find("tar").Element)
	assert.Equal(t, style.ElementURL, find("https://www.gnu.org/software/tar").Element)
	assert.Equal(t, style.ElementInlineCode, find("file").Element)
	assert.Equal(t, style.ElementPlaceholder, find("path/to/target.tar").Element)
	assert.Equal(t, style.ElementPlaceholder, find("path/to/file1 path/to/file2 ...").Element)

	url := find("https://www.gnu.org/software/tar")
	assert.Equal(t, style.Named(style.Red), url.Style.Foreground)
	assert.True(t, url.Style.Italic)
}

func TestOptionStyle(t *testing.T) {
	tests := []struct {
		name    string
		style   OptionStyle
		want    string
		element style.Element
	}{
		{name: "short", style: OptionShort, want: "-c", element: style.ElementExample},
		{name: "long", style: OptionLong, want: "--create", element: style.ElementExample},
		{name: "both", style: OptionBoth, want: "[-c|--create]", element: style.ElementPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.OptionStyle = tt.style
			r := New(opts, 0)

			segs := r.example("tar {{[-c|--create]}}")
			require.Len(t, segs, 2)
			assert.Equal(t, "tar ", segs[0].Text)
			assert.Equal(t, tt.want, segs[1].Text)
			assert.Equal(t, tt.element, segs[1].Element)
		})
	}
}

func TestExamplePlaceholders(t *testing.T) {
	r := New(testOptions(), 0)

	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "plain",
			input: "ls -la",
			want:  []Segment{r.seg("ls -la", style.ElementExample)},
		},
		{
			name:  "escaped_braces",
			input: `echo \{\{{{name}}\}\}`,
			want: []Segment{
				r.seg("echo {{", style.ElementExample),
				r.seg("name", style.ElementPlaceholder),
				r.seg("}}", style.ElementExample),
			},
		},
		{
			name:  "triple_closing_brace",
			input: "awk {{'{print $1}'}}}",
			want: []Segment{
				r.seg("awk ", style.ElementExample),
				r.seg("'{print $1}'}", style.ElementPlaceholder),
			},
		},
		{
			name:  "unterminated_placeholder",
			input: "cmd {{oops",
			want:  []Segment{r.seg("cmd {{oops", style.ElementExample)},
		},
		{
			name:  "brackets_without_pipe",
			input: "{{[file]}}",
			want:  []Segment{r.seg("[file]", style.ElementPlaceholder)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.example(tt.input))
		})
	}
}

func TestProseURLs(t *testing.T) {
	r := New(testOptions(), 0)

	segs := r.prose("See https://example.com/docs, or <http://a.b>.", style.ElementDescription)
	assert.Equal(t, []Segment{
		r.seg("See ", style.ElementDescription),
		r.seg("https://example.com/docs", style.ElementURL),
		r.seg(", or ", style.ElementDescription),
		r.seg("http://a.b", style.ElementURL),
		r.seg(".", style.ElementDescription),
	}, merge(segs))
}

func TestWrapWidthBound(t *testing.T) {
	desc := "> " + strings.Repeat("lorem ipsum dolor sit amet ", 12)
	bullet := "- " + strings.Repeat("consectetur adipiscing elit ", 10)
	example := "`" + strings.Repeat("cmd {{arg}} --flag ", 10) + "`"
	src := "# wide\n\n" + desc + "\n\n" + bullet + "\n\n" + example + "\n"

	for _, width := range []int{20, 33, 40, 80} {
		opts := DefaultOptions()
		opts.LineLength = width
		opts.ShowHyphens = true
		out := New(opts, 0).Render(parse(t, src), "")

		for _, l := range out.Lines {
			assert.LessOrEqual(t, l.Width(), width, "width %d: %q", width, l.Text())
			assert.Equal(t, strings.TrimRight(l.Text(), " "), l.Text())
		}
	}
}

func TestWrapContinuationIndent(t *testing.T) {
	opts := DefaultOptions()
	opts.LineLength = 20
	opts.ShowHyphens = true
	opts.ExamplePrefix = "* "
	out := New(opts, 0).Render(parse(t, "- one two three four five six\n"), "")

	assert.Equal(t, "  * one two three\n    four five six\n\n", out.String())
}

func TestWrapLongWordUnsplit(t *testing.T) {
	opts := DefaultOptions()
	opts.LineLength = 10
	long := strings.Repeat("x", 30)
	out := New(opts, 0).Render(parse(t, "> a "+long+" b\n"), "")

	texts := make([]string, 0, len(out.Lines))
	for _, l := range out.Lines {
		texts = append(texts, l.Text())
	}
	assert.Equal(t, []string{"  a", "  " + long, "  b", ""}, texts)
}

func TestWrapWideRunes(t *testing.T) {
	opts := DefaultOptions()
	opts.LineLength = 10
	out := New(opts, 0).Render(parse(t, "> 日本語 日本語\n"), "")

	require.Len(t, out.Lines, 3)
	assert.Equal(t, "  日本語", out.Lines[0].Text())
	assert.Equal(t, 8, out.Lines[0].Width())
}

func TestCompact(t *testing.T) {
	p := parse(t, tarPage)

	full := New(testOptions(), 0).Render(p, "")
	opts := testOptions()
	opts.Compact = true
	compact := New(opts, 0).Render(p, "")

	var nonBlank []Line
	for _, l := range full.Lines {
		if len(l) > 0 {
			nonBlank = append(nonBlank, l)
		}
	}
	assert.Equal(t, nonBlank, compact.Lines)
}

func TestTitleOptions(t *testing.T) {
	p := parse(t, "# ls\n> List files.\n")

	opts := testOptions()
	opts.PlatformTitle = true
	out := New(opts, 0).Render(p, "linux")
	assert.Equal(t, "  ls (linux)", out.Lines[1].Text())

	opts.ShowTitle = false
	out = New(opts, 0).Render(p, "linux")
	assert.Equal(t, "  List files.\n\n", out.String())
}

func TestHyphens(t *testing.T) {
	p := parse(t, "- List files:\n")

	out := New(testOptions(), 0).Render(p, "")
	assert.Equal(t, "  List files:", out.Lines[0].Text())

	opts := testOptions()
	opts.ShowHyphens = true
	out = New(opts, 0).Render(p, "")
	assert.Equal(t, "  - List files:", out.Lines[0].Text())
	assert.Equal(t, style.ElementBullet, out.Lines[0][1].Element)
}

func TestRenderRaw(t *testing.T) {
	src := "# tar\r\n\n`tar {{[-c|--create]}}`\n"
	out := New(testOptions(), 0).RenderRaw([]byte(src))
	assert.Equal(t, "# tar\n\n`tar {{[-c|--create]}}`\n", out.String())
	for _, l := range out.Lines {
		for _, s := range l {
			assert.Equal(t, style.ElementNone, s.Element)
		}
	}
}

func TestNewWidth(t *testing.T) {
	assert.Equal(t, 50, New(Options{LineLength: 50}, 120).Width())
	assert.Equal(t, 120, New(Options{}, 120).Width())
	assert.Equal(t, DefaultWidth, New(Options{}, 0).Width())
}

func TestParseOptionStyle(t *testing.T) {
	for in, want := range map[string]OptionStyle{"short": OptionShort, "LONG": OptionLong, "both": OptionBoth, "": OptionLong} {
		got, err := ParseOptionStyle(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if in != "" && in != "LONG" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParseOptionStyle("medium")
	assert.Error(t, err)
}
