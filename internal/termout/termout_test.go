package termout

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/tldr/internal/render"
	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

func output() *render.Output {
	title := style.Resolve(style.ElementTitle, style.Spec{Color: style.Named(style.Magenta), Attributes: style.Attributes{Bold: true}})
	return &render.Output{Lines: []render.Line{
		{},
		{{Text: "  "}, {Text: "tar", Element: style.ElementTitle, Style: title}},
	}}
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, false).Write(output()))
	assert.Equal(t, "\n  tar\n", buf.String())
}

func TestWriteColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, true).Write(output()))
	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "\n  \x1b[35;1mtar\x1b["), "got %q", got)
	assert.True(t, strings.HasSuffix(got, "m\n"), "got %q", got)
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name  string
		style style.Style
		want  []color.Attribute
	}{
		{name: "plain", style: style.Style{}, want: nil},
		{name: "named", style: style.Style{Foreground: style.Named(style.Red)}, want: []color.Attribute{color.FgRed}},
		{name: "bright", style: style.Style{Foreground: style.Named(style.BrightCyan)}, want: []color.Attribute{color.FgHiCyan}},
		{name: "background", style: style.Style{Background: style.Named(style.Blue)}, want: []color.Attribute{color.BgBlue}},
		{name: "palette", style: style.Style{Foreground: style.Index(208)}, want: []color.Attribute{38, 5, 208}},
		{name: "rgb_background", style: style.Style{Background: style.RGB(1, 2, 3)}, want: []color.Attribute{48, 2, 1, 2, 3}},
		{
			name:  "attributes",
			style: style.Style{Attributes: style.Attributes{Bold: true, Dim: true, Italic: true, Underline: true, Strikethrough: true}},
			want:  []color.Attribute{color.Bold, color.Faint, color.Italic, color.Underline, color.CrossedOut},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Attributes(tt.style))
		})
	}
}

func TestUseColor(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	env := func(v string) func(string) string {
		return func(string) string { return v }
	}

	assert.True(t, UseColor(ColorAlways, f, env("1")))
	assert.False(t, UseColor(ColorNever, f, env("")))
	assert.False(t, UseColor(ColorAuto, f, env("")), "regular file is not a terminal")
	assert.False(t, UseColor(ColorAuto, nil, env("")))
	assert.Equal(t, 0, Width(f))
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"auto": ColorAuto, "always": ColorAlways, "never": ColorNever, "": ColorAuto} {
		got, err := ParseColorMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
	assert.Equal(t, "never", ColorNever.String())
}
