package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalTldr = "tldr"

	luaSectionCache  = "cache"
	luaSectionOutput = "output"
	luaSectionIndent = "indent"
	luaSectionStyle  = "style"

	luaFieldDir             = "dir"
	luaFieldMirror          = "mirror"
	luaFieldAutoUpdate      = "auto_update"
	luaFieldDeferAutoUpdate = "defer_auto_update"
	luaFieldMaxAge          = "max_age"
	luaFieldLanguages       = "languages"
	luaFieldKeyring         = "keyring"

	luaFieldShowTitle     = "show_title"
	luaFieldPlatformTitle = "platform_title"
	luaFieldShowHyphens   = "show_hyphens"
	luaFieldExamplePrefix = "example_prefix"
	luaFieldLineLength    = "line_length"
	luaFieldCompact       = "compact"
	luaFieldOptionStyle   = "option_style"
	luaFieldRawMarkdown   = "raw_markdown"

	luaFieldTitle       = "title"
	luaFieldDescription = "description"
	luaFieldBullet      = "bullet"
	luaFieldExample     = "example"

	luaFieldColor         = "color"
	luaFieldBackground    = "background"
	luaFieldBold          = "bold"
	luaFieldUnderline     = "underline"
	luaFieldItalic        = "italic"
	luaFieldDim           = "dim"
	luaFieldStrikethrough = "strikethrough"

	luaFieldRGB      = "rgb"
	luaFieldHex      = "hex"
	luaFieldColor256 = "color256"
)

// Resource limits for config evaluation.
const (
	// MaxConfigSize is the largest config file accepted.
	MaxConfigSize = 1 << 20
	// ParseTimeout bounds Lua execution when the context has no deadline.
	ParseTimeout = 5 * time.Second
	// MaxLanguages bounds cache.languages.
	MaxLanguages = 64
)

// Defaults from the upstream client.
const (
	DefaultMirror        = "https://github.com/tldr-pages/tldr/releases/latest/download"
	DefaultMaxAgeHours   = 24 * 7 * 2
	DefaultExamplePrefix = "- "
	DefaultConfigName    = "config.lua"
	AppName              = "tldr"
	// EnvConfig overrides the config file location.
	EnvConfig = "TLDR_CONFIG"
)
