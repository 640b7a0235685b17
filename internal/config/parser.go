package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/tldr/internal/platform"
	"github.com/ZebulonRouseFrantzich/tldr/internal/style"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	cacheDir string
}

// NewParser creates a config parser. The detector feeds the platform table;
// it may be nil, in which case the table is not defined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, cacheDir: DefaultCacheDir()}
}

// WithCacheDir sets the cache directory used when the config does not name one.
func (p *Parser) WithCacheDir(dir string) *Parser {
	cp := *p
	cp.cacheDir = dir
	return &cp
}

// ParseFile reads and parses the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config '%s': %w", path, err)
	}
	if len(data) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("'%s' exceeds %d bytes", path, MaxConfigSize),
		}
	}

	cfg, err := p.ParseString(ctx, string(data))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ParseError{Message: "config evaluation aborted", Detail: ctxErr.Error()}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	cfg := Default(p.cacheDir)
	if err := extractConfig(L, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Path    string
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("'%s': %s: %s", e.Path, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig overlays the global "tldr" table onto cfg. A missing table
// leaves the defaults.
func extractConfig(L *lua.LState, cfg *Config) error {
	root := L.GetGlobal(luaGlobalTldr)
	switch root.Type() {
	case lua.LTNil:
		return nil
	case lua.LTTable:
	default:
		return &ParseError{
			Message: "missing or invalid 'tldr' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)

	if err := checkKeys(table, "", luaSectionCache, luaSectionOutput, luaSectionIndent, luaSectionStyle); err != nil {
		return err
	}

	sections := []struct {
		name    string
		extract func(t *lua.LTable, cfg *Config) error
	}{
		{luaSectionCache, extractCache},
		{luaSectionOutput, extractOutput},
		{luaSectionIndent, extractIndent},
		{luaSectionStyle, extractStyle},
	}
	for _, s := range sections {
		t, err := section(table, s.name, s.name)
		if err != nil {
			return err
		}
		if t == nil {
			continue
		}
		if err := s.extract(t, cfg); err != nil {
			return err
		}
	}
	return nil
}

func section(parent *lua.LTable, name, field string) (*lua.LTable, error) {
	v := parent.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return nil, nil
	case lua.LTTable:
		return v.(*lua.LTable), nil
	default:
		return nil, typeError(field, "table", v)
	}
}

// extractCache extracts the cache section.
func extractCache(t *lua.LTable, cfg *Config) error {
	const sec = luaSectionCache
	if err := checkKeys(t, sec, luaFieldDir, luaFieldMirror, luaFieldAutoUpdate, luaFieldDeferAutoUpdate,
		luaFieldMaxAge, luaFieldLanguages, luaFieldKeyring); err != nil {
		return err
	}

	c := &cfg.Cache
	return firstErr(
		getString(t, sec, luaFieldDir, &c.Dir),
		getString(t, sec, luaFieldMirror, &c.Mirror),
		getBool(t, sec, luaFieldAutoUpdate, &c.AutoUpdate),
		getBool(t, sec, luaFieldDeferAutoUpdate, &c.DeferAutoUpdate),
		getInt(t, sec, luaFieldMaxAge, &c.MaxAge),
		getStrings(t, sec, luaFieldLanguages, &c.Languages),
		getString(t, sec, luaFieldKeyring, &c.Keyring),
	)
}

// extractOutput extracts the output section.
func extractOutput(t *lua.LTable, cfg *Config) error {
	const sec = luaSectionOutput
	if err := checkKeys(t, sec, luaFieldShowTitle, luaFieldPlatformTitle, luaFieldShowHyphens, luaFieldExamplePrefix,
		luaFieldLineLength, luaFieldCompact, luaFieldOptionStyle, luaFieldRawMarkdown); err != nil {
		return err
	}

	o := &cfg.Output
	return firstErr(
		getBool(t, sec, luaFieldShowTitle, &o.ShowTitle),
		getBool(t, sec, luaFieldPlatformTitle, &o.PlatformTitle),
		getBool(t, sec, luaFieldShowHyphens, &o.ShowHyphens),
		getString(t, sec, luaFieldExamplePrefix, &o.ExamplePrefix),
		getInt(t, sec, luaFieldLineLength, &o.LineLength),
		getBool(t, sec, luaFieldCompact, &o.Compact),
		getString(t, sec, luaFieldOptionStyle, &o.OptionStyle),
		getBool(t, sec, luaFieldRawMarkdown, &o.RawMarkdown),
	)
}

// extractIndent extracts the indent section.
func extractIndent(t *lua.LTable, cfg *Config) error {
	const sec = luaSectionIndent
	if err := checkKeys(t, sec, luaFieldTitle, luaFieldDescription, luaFieldBullet, luaFieldExample); err != nil {
		return err
	}

	i := &cfg.Indent
	return firstErr(
		getInt(t, sec, luaFieldTitle, &i.Title),
		getInt(t, sec, luaFieldDescription, &i.Description),
		getInt(t, sec, luaFieldBullet, &i.Bullet),
		getInt(t, sec, luaFieldExample, &i.Example),
	)
}

// extractStyle extracts the style section. Each element present replaces the
// default style of that element.
func extractStyle(t *lua.LTable, cfg *Config) error {
	keys := make([]string, len(style.Elements))
	for i, e := range style.Elements {
		keys[i] = e.String()
	}
	if err := checkKeys(t, luaSectionStyle, keys...); err != nil {
		return err
	}

	for _, e := range style.Elements {
		field := luaSectionStyle + "." + e.String()
		st, err := section(t, e.String(), field)
		if err != nil {
			return err
		}
		if st == nil {
			continue
		}
		spec, err := extractSpec(st, field)
		if err != nil {
			return err
		}
		*cfg.Style.spec(e) = spec
	}
	return nil
}

func extractSpec(t *lua.LTable, field string) (style.Spec, error) {
	var spec style.Spec
	if err := checkKeys(t, field, luaFieldColor, luaFieldBackground, luaFieldBold, luaFieldUnderline,
		luaFieldItalic, luaFieldDim, luaFieldStrikethrough); err != nil {
		return spec, err
	}

	var err error
	if spec.Color, err = extractColor(t.RawGetString(luaFieldColor), field+"."+luaFieldColor); err != nil {
		return spec, err
	}
	if spec.Background, err = extractColor(t.RawGetString(luaFieldBackground), field+"."+luaFieldBackground); err != nil {
		return spec, err
	}

	a := &spec.Attributes
	err = firstErr(
		getBool(t, field, luaFieldBold, &a.Bold),
		getBool(t, field, luaFieldUnderline, &a.Underline),
		getBool(t, field, luaFieldItalic, &a.Italic),
		getBool(t, field, luaFieldDim, &a.Dim),
		getBool(t, field, luaFieldStrikethrough, &a.Strikethrough),
	)
	return spec, err
}

// extractColor accepts a name or "#rrggbb" string, a palette index, or a
// table with one of rgb, hex or color256.
func extractColor(v lua.LValue, field string) (style.Color, error) {
	invalid := func(format string, args ...any) (style.Color, error) {
		return style.Color{}, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
	}

	switch v.Type() {
	case lua.LTNil:
		return style.Default(), nil
	case lua.LTString:
		c, err := style.ParseColor(v.String())
		if err != nil {
			return invalid("%v", err)
		}
		return c, nil
	case lua.LTNumber:
		n, ok := byteValue(v)
		if !ok {
			return invalid("palette index must be an integer from 0 to 255, got %s", v.String())
		}
		return style.Index(n), nil
	case lua.LTTable:
	default:
		return invalid("expected color name, number or table, got %s", v.Type())
	}

	t := v.(*lua.LTable)
	if err := checkKeys(t, field, luaFieldRGB, luaFieldHex, luaFieldColor256); err != nil {
		return style.Color{}, err
	}

	var kinds []string
	t.ForEach(func(k, _ lua.LValue) { kinds = append(kinds, k.String()) })
	if len(kinds) != 1 {
		return invalid("expected exactly one of rgb, hex or color256")
	}

	switch kinds[0] {
	case luaFieldRGB:
		rgb, ok := t.RawGetString(luaFieldRGB).(*lua.LTable)
		if !ok || rgb.Len() != 3 {
			return invalid("rgb must be a list of three numbers")
		}
		var c [3]uint8
		for i := range c {
			n, ok := byteValue(rgb.RawGetInt(i + 1))
			if !ok {
				return invalid("rgb components must be integers from 0 to 255")
			}
			c[i] = n
		}
		return style.RGB(c[0], c[1], c[2]), nil
	case luaFieldHex:
		s, ok := t.RawGetString(luaFieldHex).(lua.LString)
		if !ok {
			return invalid("hex must be a string")
		}
		c, err := style.Hex(string(s))
		if err != nil {
			return invalid("%v", err)
		}
		return c, nil
	default:
		n, ok := byteValue(t.RawGetString(luaFieldColor256))
		if !ok {
			return invalid("color256 must be an integer from 0 to 255")
		}
		return style.Index(n), nil
	}
}

func byteValue(v lua.LValue) (uint8, bool) {
	n, ok := v.(lua.LNumber)
	if !ok || float64(n) != float64(int(n)) || n < 0 || n > 255 {
		return 0, false
	}
	return uint8(n), true
}

// checkKeys rejects keys outside allowed.
func checkKeys(t *lua.LTable, field string, allowed ...string) error {
	var unknown []string
	t.ForEach(func(k, _ lua.LValue) {
		key := k.String()
		for _, a := range allowed {
			if k.Type() == lua.LTString && key == a {
				return
			}
		}
		unknown = append(unknown, key)
	})
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	if field == "" {
		field = luaGlobalTldr
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("unknown field(s) %s (expected one of: %s)", strings.Join(unknown, ", "), strings.Join(allowed, ", ")),
	}
}

func typeError(field, want string, v lua.LValue) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("expected %s, got %s", want, v.Type())}
}

func getString(t *lua.LTable, sec, key string, dst *string) error {
	v := t.RawGetString(key)
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		*dst = string(v)
		return nil
	default:
		return typeError(sec+"."+key, "string", v)
	}
}

func getBool(t *lua.LTable, sec, key string, dst *bool) error {
	v := t.RawGetString(key)
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		*dst = bool(v)
		return nil
	default:
		return typeError(sec+"."+key, "boolean", v)
	}
}

func getInt(t *lua.LTable, sec, key string, dst *int) error {
	v := t.RawGetString(key)
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LNumber:
		if float64(v) != float64(int(v)) {
			return &ValidationError{Field: sec + "." + key, Message: fmt.Sprintf("expected integer, got %s", v.String())}
		}
		*dst = int(v)
		return nil
	default:
		return typeError(sec+"."+key, "number", v)
	}
}

// getStrings reads an array of strings. Nil holes from platform conditionals
// are skipped.
func getStrings(t *lua.LTable, sec, key string, dst *[]string) error {
	v := t.RawGetString(key)
	if v.Type() == lua.LTNil {
		return nil
	}
	list, ok := v.(*lua.LTable)
	if !ok {
		return typeError(sec+"."+key, "list of strings", v)
	}

	var out []string
	var bad error
	list.ForEach(func(_, item lua.LValue) {
		if bad != nil {
			return
		}
		s, ok := item.(lua.LString)
		if !ok {
			bad = typeError(sec+"."+key, "list of strings", item)
			return
		}
		out = append(out, string(s))
	})
	if bad != nil {
		return bad
	}
	*dst = out
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// FormatError formats a config error for user display. In verbose mode the
// raw Lua error is shown in full.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		prefix := parseErr.Message
		if parseErr.Path != "" {
			prefix = fmt.Sprintf("'%s': %s", parseErr.Path, parseErr.Message)
		}
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", prefix, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", prefix, detail)
	}
	return err.Error()
}
