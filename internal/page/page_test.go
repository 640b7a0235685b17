package page

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tarPage = `# tar

> Archiving utility.
> More information: <https://www.gnu.org/software/tar>.

- Create an archive from files:

` + "`tar cf {{path/to/target.tar}} {{path/to/file1 path/to/file2 ...}}`" + `

- Extract an archive in a target directory:

    tar xf {{path/to/source.tar}} --directory={{path/to/directory}}
`

func TestParse(t *testing.T) {
	p, err := ParseString(tarPage)
	require.NoError(t, err)

	kinds := make([]Kind, len(p.Lines))
	for i, l := range p.Lines {
		kinds[i] = l.Kind
	}
	assert.Equal(t, []Kind{
		Title, Blank, Description, Description, Blank,
		Bullet, Blank, Example, Blank, Bullet, Blank, Example,
	}, kinds)

	assert.Equal(t, Line{Kind: Title, Number: 1, Text: "tar"}, p.Lines[0])
	assert.Equal(t, "More information: <https://www.gnu.org/software/tar>.", p.Lines[3].Text)
	assert.Equal(t, "Create an archive from files:", p.Lines[5].Text)
	assert.Equal(t, "tar cf {{path/to/target.tar}} {{path/to/file1 path/to/file2 ...}}", p.Lines[7].Text)
	assert.Equal(t, 8, p.Lines[7].Number)
	assert.Equal(t, "tar xf {{path/to/source.tar}} --directory={{path/to/directory}}", p.Lines[11].Text)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantText string
		wantErr  bool
	}{
		{name: "title", input: "# git commit", wantKind: Title, wantText: "git commit"},
		{name: "description", input: "> Commit files.", wantKind: Description, wantText: "Commit files."},
		{name: "bullet", input: "- Commit staged files:", wantKind: Bullet, wantText: "Commit staged files:"},
		{name: "backtick_example", input: "`git commit -m {{message}}`", wantKind: Example, wantText: "git commit -m {{message}}"},
		{name: "empty_backtick_example", input: "``", wantKind: Example, wantText: ""},
		{name: "tab_example", input: "\tgit status", wantKind: Example, wantText: "git status"},
		{name: "space_example", input: "    git status", wantKind: Example, wantText: "git status"},
		{name: "trailing_whitespace", input: "> Text.   \t\r", wantKind: Description, wantText: "Text."},
		{name: "whitespace_only", input: "   \t", wantKind: Blank},
		{name: "unterminated_example", input: "`git status", wantErr: true},
		{name: "single_backtick", input: "`", wantErr: true},
		{name: "unknown_marker", input: "Not a recognized marker", wantErr: true},
		{name: "hash_without_space", input: "#title", wantErr: true},
		{name: "short_indent", input: "  git status", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := parseLine(7, tt.input)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Equal(t, 7, err.Line)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.wantKind, line.Kind)
			assert.Equal(t, tt.wantText, line.Text)
			assert.Equal(t, 7, line.Number)
		})
	}
}

func TestParseSyntaxErrorLine3(t *testing.T) {
	input := "# ls\n\nNot a recognized marker\n\n> List files.\n"

	p, err := ParseString(input)
	assert.Nil(t, p)

	errs, ok := AsSyntaxErrors(err)
	require.True(t, ok, "error = %v", err)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Line)
	assert.Equal(t, "Not a recognized marker", errs[0].Text)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseCollectsAllErrors(t *testing.T) {
	input := strings.Join([]string{
		"# cmd",
		"bad one",
		"> ok",
		"`unterminated",
		"",
		"bad two",
	}, "\n")

	_, err := ParseString(input)
	errs, ok := AsSyntaxErrors(err)
	require.True(t, ok)

	lines := make([]int, len(errs))
	for i, e := range errs {
		lines[i] = e.Line
	}
	assert.Equal(t, []int{2, 4, 6}, lines)
	assert.Equal(t, reasonBacktick, errs[1].Reason)

	var single *SyntaxError
	require.True(t, errors.As(err, &single))
	assert.Equal(t, 2, single.Line)
}

func TestParseBOMAndCRLF(t *testing.T) {
	p, err := ParseString("\ufeff# cat\r\n\r\n> Print files.\r\n")
	require.NoError(t, err)
	assert.Equal(t, Line{Kind: Title, Number: 1, Text: "cat"}, p.Lines[0])
	assert.Equal(t, Blank, p.Lines[1].Kind)
	assert.Equal(t, "Print files.", p.Lines[2].Text)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "example", Example.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
