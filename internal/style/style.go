// Package style maps configured style descriptions for page elements to
// abstract text styles. It knows nothing about terminals; encoding a Style as
// escape sequences is the job of the output writer.
package style

// Element is a kind of rendered page text that carries its own style.
type Element int

const (
	// ElementNone marks unstyled text such as indentation.
	ElementNone Element = iota
	ElementTitle
	ElementDescription
	ElementBullet
	ElementExample
	ElementURL
	ElementInlineCode
	ElementPlaceholder
)

// Elements lists every styleable element in config order.
var Elements = []Element{
	ElementTitle,
	ElementDescription,
	ElementBullet,
	ElementExample,
	ElementURL,
	ElementInlineCode,
	ElementPlaceholder,
}

// String returns the config key of the element.
func (e Element) String() string {
	switch e {
	case ElementTitle:
		return "title"
	case ElementDescription:
		return "description"
	case ElementBullet:
		return "bullet"
	case ElementExample:
		return "example"
	case ElementURL:
		return "url"
	case ElementInlineCode:
		return "inline_code"
	case ElementPlaceholder:
		return "placeholder"
	default:
		return "none"
	}
}

// Attributes is the fixed set of boolean text attributes.
type Attributes struct {
	Bold          bool
	Underline     bool
	Italic        bool
	Dim           bool
	Strikethrough bool
}

// Any reports whether at least one attribute is set.
func (a Attributes) Any() bool {
	return a.Bold || a.Underline || a.Italic || a.Dim || a.Strikethrough
}

// Spec is a configured style for one element.
type Spec struct {
	Color      Color
	Background Color
	Attributes
}

// Style is the resolved style of a rendered segment.
type Style struct {
	Element    Element
	Foreground Color
	Background Color
	Attributes
}

// Plain reports whether s changes nothing about how text is displayed.
func (s Style) Plain() bool {
	return s.Foreground.IsDefault() && s.Background.IsDefault() && !s.Attributes.Any()
}

// Resolve turns a configured Spec into the Style applied to element. It never
// fails: malformed colors fall back to the terminal default.
func Resolve(element Element, spec Spec) Style {
	return Style{
		Element:    element,
		Foreground: spec.Color.normalize(),
		Background: spec.Background.normalize(),
		Attributes: spec.Attributes,
	}
}

// Set holds the resolved style of every element.
type Set map[Element]Style

// NewSet resolves specs for each element. Elements missing from specs get a
// plain style.
func NewSet(specs map[Element]Spec) Set {
	set := make(Set, len(Elements))
	for _, e := range Elements {
		set[e] = Resolve(e, specs[e])
	}
	return set
}

// Get returns the style of e, or a plain style for unknown elements.
func (s Set) Get(e Element) Style {
	if st, ok := s[e]; ok {
		return st
	}
	return Style{Element: e}
}

// DefaultSpecs returns the built-in style of every element.
func DefaultSpecs() map[Element]Spec {
	return map[Element]Spec{
		ElementTitle:       {Color: Named(Magenta), Attributes: Attributes{Bold: true}},
		ElementDescription: {Color: Named(Magenta)},
		ElementBullet:      {Color: Named(Green)},
		ElementExample:     {Color: Named(Cyan)},
		ElementURL:         {Color: Named(Red), Attributes: Attributes{Italic: true}},
		ElementInlineCode:  {Color: Named(Yellow), Attributes: Attributes{Italic: true}},
		ElementPlaceholder: {Color: Named(Red), Attributes: Attributes{Italic: true}},
	}
}
