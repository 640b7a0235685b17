package style

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorKind tags the variant held by a Color.
type ColorKind int

const (
	// ColorDefault leaves the terminal's default color in place.
	ColorDefault ColorKind = iota
	// ColorNamed is one of the 16 standard terminal colors.
	ColorNamed
	// Color256 is an index into the 256-color palette.
	Color256
	// ColorRGB is a 24-bit color given as three components.
	ColorRGB
	// ColorHex is a 24-bit color given as a hex string.
	ColorHex
)

// String returns the string representation of the color kind
func (k ColorKind) String() string {
	switch k {
	case ColorDefault:
		return "default"
	case ColorNamed:
		return "named"
	case Color256:
		return "color256"
	case ColorRGB:
		return "rgb"
	case ColorHex:
		return "hex"
	default:
		return "unknown"
	}
}

// Name identifies one of the 16 standard terminal colors.
type Name int

const (
	Black Name = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

// names maps config spellings to named colors.
var names = map[string]Name{
	"black":          Black,
	"red":            Red,
	"green":          Green,
	"yellow":         Yellow,
	"blue":           Blue,
	"magenta":        Magenta,
	"cyan":           Cyan,
	"white":          White,
	"bright_black":   BrightBlack,
	"bright_red":     BrightRed,
	"bright_green":   BrightGreen,
	"bright_yellow":  BrightYellow,
	"bright_blue":    BrightBlue,
	"bright_magenta": BrightMagenta,
	"bright_cyan":    BrightCyan,
	"bright_white":   BrightWhite,
}

// String returns the config spelling of the name.
func (n Name) String() string {
	for k, v := range names {
		if v == n {
			return k
		}
	}
	return "default"
}

// Valid reports whether n is one of the 16 standard colors.
func (n Name) Valid() bool {
	return n >= Black && n <= BrightWhite
}

// Color is a closed variant over the supported color spaces. Only the fields
// belonging to Kind are meaningful.
type Color struct {
	Kind  ColorKind
	Name  Name
	Index uint8
	R     uint8
	G     uint8
	B     uint8
	// Hex keeps the original spelling of a ColorHex value.
	Hex string
}

// Default returns the terminal default color.
func Default() Color {
	return Color{Kind: ColorDefault}
}

// Named returns a standard terminal color.
func Named(n Name) Color {
	return Color{Kind: ColorNamed, Name: n}
}

// Index returns a 256-palette color.
func Index(i uint8) Color {
	return Color{Kind: Color256, Index: i}
}

// RGB returns a 24-bit color.
func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// Hex parses a 24-bit color written as six hex digits, optionally prefixed with '#'.
func Hex(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q: expected 6 hexadecimal digits, optionally prefixed with '#'", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	return Color{
		Kind: ColorHex,
		R:    uint8(v >> 16),
		G:    uint8(v >> 8),
		B:    uint8(v),
		Hex:  s,
	}, nil
}

// ParseName parses a named color. "default" yields the default color.
func ParseName(s string) (Color, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" || key == "default" {
		return Default(), nil
	}
	if n, ok := names[key]; ok {
		return Named(n), nil
	}
	return Color{}, fmt.Errorf("unknown color name %q", s)
}

// ParseColor parses the string forms accepted in the config: a color name,
// "default", or a '#'-prefixed hex value.
func ParseColor(s string) (Color, error) {
	if strings.HasPrefix(s, "#") {
		return Hex(s)
	}
	return ParseName(s)
}

// IsDefault reports whether c leaves the terminal color untouched.
func (c Color) IsDefault() bool {
	return c.Kind == ColorDefault
}

// String renders c in the form accepted by ParseColor where possible.
func (c Color) String() string {
	switch c.Kind {
	case ColorNamed:
		return c.Name.String()
	case Color256:
		return strconv.Itoa(int(c.Index))
	case ColorRGB:
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	case ColorHex:
		if c.Hex != "" {
			return c.Hex
		}
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	default:
		return "default"
	}
}

// normalize degrades malformed values to the terminal default.
func (c Color) normalize() Color {
	switch c.Kind {
	case ColorDefault, Color256, ColorRGB:
		return c
	case ColorNamed:
		if c.Name.Valid() {
			return c
		}
	case ColorHex:
		if c.Hex == "" {
			return c
		}
		if parsed, err := Hex(c.Hex); err == nil {
			return parsed
		}
	}
	return Default()
}
