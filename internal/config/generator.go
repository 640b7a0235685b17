package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

// Generator generates Lua configuration code from a Config.
type Generator struct {
	indent string // Indentation string (default: two spaces)
	home   string
}

// NewGenerator creates a Lua config generator. Paths under home are written
// with a leading ~; home may be empty.
func NewGenerator(home string) *Generator {
	return &Generator{
		indent: "  ",
		home:   home,
	}
}

// Generate renders config as a Lua file that Parser reads back unchanged.
func (g *Generator) Generate(config *Config) string {
	var buf bytes.Buffer

	buf.WriteString("-- tldr configuration\n")
	buf.WriteString("-- A read-only `platform` table describes the host (platform.is_linux, platform.name, ...).\n\n")
	buf.WriteString(luaGlobalTldr + " = {\n")

	c := config.Cache
	g.open(&buf, luaSectionCache)
	g.field(&buf, luaFieldDir, g.quoteLuaString(g.tilde(c.Dir)))
	g.field(&buf, luaFieldMirror, g.quoteLuaString(c.Mirror))
	g.field(&buf, luaFieldAutoUpdate, boolString(c.AutoUpdate))
	g.field(&buf, luaFieldDeferAutoUpdate, boolString(c.DeferAutoUpdate))
	g.comment(&buf, "hours")
	g.field(&buf, luaFieldMaxAge, fmt.Sprint(c.MaxAge))
	g.comment(&buf, "empty: detect from LANG and LANGUAGE")
	g.field(&buf, luaFieldLanguages, g.list(c.Languages))
	g.comment(&buf, "OpenPGP keyring that must sign tldr.sha256sums; empty disables verification")
	g.field(&buf, luaFieldKeyring, g.quoteLuaString(g.tilde(c.Keyring)))
	g.close(&buf)

	o := config.Output
	g.open(&buf, luaSectionOutput)
	g.field(&buf, luaFieldShowTitle, boolString(o.ShowTitle))
	g.field(&buf, luaFieldPlatformTitle, boolString(o.PlatformTitle))
	g.field(&buf, luaFieldShowHyphens, boolString(o.ShowHyphens))
	g.field(&buf, luaFieldExamplePrefix, g.quoteLuaString(o.ExamplePrefix))
	g.comment(&buf, "0: terminal width")
	g.field(&buf, luaFieldLineLength, fmt.Sprint(o.LineLength))
	g.field(&buf, luaFieldCompact, boolString(o.Compact))
	g.comment(&buf, "short, long or both")
	g.field(&buf, luaFieldOptionStyle, g.quoteLuaString(o.OptionStyle))
	g.field(&buf, luaFieldRawMarkdown, boolString(o.RawMarkdown))
	g.close(&buf)

	i := config.Indent
	g.open(&buf, luaSectionIndent)
	g.field(&buf, luaFieldTitle, fmt.Sprint(i.Title))
	g.field(&buf, luaFieldDescription, fmt.Sprint(i.Description))
	g.field(&buf, luaFieldBullet, fmt.Sprint(i.Bullet))
	g.field(&buf, luaFieldExample, fmt.Sprint(i.Example))
	g.close(&buf)

	g.open(&buf, luaSectionStyle)
	specs := config.Style.Specs()
	for _, e := range style.Elements {
		g.field(&buf, e.String(), g.spec(specs[e]))
	}
	g.close(&buf)

	buf.WriteString("}\n")
	return buf.String()
}

func (g *Generator) open(buf *bytes.Buffer, name string) {
	buf.WriteString(g.indent)
	buf.WriteString(name)
	buf.WriteString(" = {\n")
}

func (g *Generator) close(buf *bytes.Buffer) {
	buf.WriteString(g.indent)
	buf.WriteString("},\n")
}

func (g *Generator) field(buf *bytes.Buffer, key, value string) {
	buf.WriteString(g.indent)
	buf.WriteString(g.indent)
	buf.WriteString(key)
	buf.WriteString(" = ")
	buf.WriteString(value)
	buf.WriteString(",\n")
}

func (g *Generator) comment(buf *bytes.Buffer, text string) {
	buf.WriteString(g.indent)
	buf.WriteString(g.indent)
	buf.WriteString("-- ")
	buf.WriteString(text)
	buf.WriteString("\n")
}

func (g *Generator) list(items []string) string {
	if len(items) == 0 {
		return "{}"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = g.quoteLuaString(s)
	}
	return "{ " + strings.Join(quoted, ", ") + " }"
}

func (g *Generator) spec(s style.Spec) string {
	var parts []string
	if !s.Color.IsDefault() {
		parts = append(parts, luaFieldColor+" = "+g.color(s.Color))
	}
	if !s.Background.IsDefault() {
		parts = append(parts, luaFieldBackground+" = "+g.color(s.Background))
	}
	attrs := []struct {
		name string
		on   bool
	}{
		{luaFieldBold, s.Bold},
		{luaFieldUnderline, s.Underline},
		{luaFieldItalic, s.Italic},
		{luaFieldDim, s.Dim},
		{luaFieldStrikethrough, s.Strikethrough},
	}
	for _, a := range attrs {
		if a.on {
			parts = append(parts, a.name+" = true")
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (g *Generator) color(c style.Color) string {
	switch c.Kind {
	case style.Color256:
		return fmt.Sprint(c.Index)
	case style.ColorRGB:
		return fmt.Sprintf("{ %s = { %d, %d, %d } }", luaFieldRGB, c.R, c.G, c.B)
	case style.ColorHex:
		return g.quoteLuaString(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	default:
		return g.quoteLuaString(c.String())
	}
}

func (g *Generator) tilde(path string) string {
	if g.home == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(g.home, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	if rel == "." {
		return "~"
	}
	return "~/" + filepath.ToSlash(rel)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
