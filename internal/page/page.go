// Package page parses the markdown dialect of tldr pages.
//
// A page is a sequence of lines, each of exactly one kind:
//
//	# title
//	> description
//	- example description
//	`example command`
//
// Examples may also be written indented by four spaces or a tab. Blank lines
// separate sections. Every other non-blank line is a syntax error; Parse
// reports all of them at once.
package page

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind is the type of a page line.
type Kind int

const (
	Blank Kind = iota
	Title
	Description
	Bullet
	Example
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Title:
		return "title"
	case Description:
		return "description"
	case Bullet:
		return "bullet"
	case Example:
		return "example"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Line markers.
const (
	TitlePrefix       = "# "
	DescriptionPrefix = "> "
	BulletPrefix      = "- "
	ExampleDelimiter  = "`"
)

// Line is one parsed line. Text excludes the marker; for examples it is the
// command without backticks or indentation.
type Line struct {
	Kind   Kind
	Number int
	Text   string
}

// Page is a parsed page.
type Page struct {
	Lines []Line
}

// SyntaxError reports a line that does not follow the page grammar.
type SyntaxError struct {
	// Line is 1-based.
	Line   int
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// SyntaxErrors collects every syntax error of one page.
type SyntaxErrors []*SyntaxError

func (es SyntaxErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("invalid page (%d error(s)):\n%s", len(es), strings.Join(msgs, "\n"))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (es SyntaxErrors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

const (
	reasonPrefix   = "every non-empty line must begin with '# ', '> ', '- ' or '`'"
	reasonBacktick = "every line with an example must end with a backtick '`'"

	maxLineSize = 1024 * 1024
)

// Parse reads a page. When the text violates the grammar the error is a
// SyntaxErrors value listing every offending line.
func Parse(r io.Reader) (*Page, error) {
	p := &Page{}
	var errs SyntaxErrors

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	num := 0
	for scanner.Scan() {
		num++
		text := scanner.Text()
		if num == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}

		line, err := parseLine(num, text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.Lines = append(p.Lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

// ParseString parses page text held in memory.
func ParseString(s string) (*Page, error) {
	return Parse(strings.NewReader(s))
}

func parseLine(num int, raw string) (Line, *SyntaxError) {
	text := strings.TrimRightFunc(raw, isSpace)

	switch {
	case text == "":
		return Line{Kind: Blank, Number: num}, nil
	case strings.HasPrefix(text, TitlePrefix):
		return Line{Kind: Title, Number: num, Text: strings.TrimPrefix(text, TitlePrefix)}, nil
	case strings.HasPrefix(text, DescriptionPrefix):
		return Line{Kind: Description, Number: num, Text: strings.TrimPrefix(text, DescriptionPrefix)}, nil
	case strings.HasPrefix(text, BulletPrefix):
		return Line{Kind: Bullet, Number: num, Text: strings.TrimPrefix(text, BulletPrefix)}, nil
	case strings.HasPrefix(text, ExampleDelimiter):
		inner := strings.TrimPrefix(text, ExampleDelimiter)
		if !strings.HasSuffix(inner, ExampleDelimiter) {
			return Line{}, &SyntaxError{Line: num, Text: text, Reason: reasonBacktick}
		}
		return Line{Kind: Example, Number: num, Text: strings.TrimSuffix(inner, ExampleDelimiter)}, nil
	case strings.HasPrefix(text, "    "), strings.HasPrefix(text, "\t"):
		return Line{Kind: Example, Number: num, Text: strings.TrimLeftFunc(text, isSpace)}, nil
	default:
		return Line{}, &SyntaxError{Line: num, Text: text, Reason: reasonPrefix}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}

// AsSyntaxErrors extracts collected syntax errors from err.
func AsSyntaxErrors(err error) (SyntaxErrors, bool) {
	var errs SyntaxErrors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
