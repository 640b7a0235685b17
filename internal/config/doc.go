// Package config loads the client configuration from a sandboxed Lua file.
//
// # Overview
//
// The config file is plain Lua executed by gopher-lua. It must assign a global
// table named "tldr" holding up to four sections:
//
//	tldr = {
//	  cache = {
//	    dir = "~/.cache/tldr",
//	    mirror = "https://github.com/tldr-pages/tldr/releases/latest/download",
//	    auto_update = true,
//	    defer_auto_update = false,
//	    max_age = 336,               -- hours
//	    languages = { "de", "fr" },
//	    keyring = "",                -- OpenPGP keyring for checksum signatures
//	  },
//	  output = {
//	    show_title = true,
//	    platform_title = false,
//	    show_hyphens = false,
//	    example_prefix = "- ",
//	    line_length = 0,             -- 0: terminal width
//	    compact = false,
//	    option_style = "long",       -- short, long or both
//	    raw_markdown = false,
//	  },
//	  indent = { title = 2, description = 2, bullet = 2, example = 4 },
//	  style = {
//	    title = { color = "magenta", bold = true },
//	    url = { color = { rgb = { 255, 0, 0 } }, italic = true },
//	    placeholder = { color = 208, background = "#202020" },
//	  },
//	}
//
// Missing sections and keys keep their defaults. A style entry that is
// present replaces the whole default style of that element. Unknown keys are
// rejected.
//
// # Colors
//
// A color is a name ("red", "bright_blue", "default"), a "#rrggbb" string, a
// palette index 0-255, or a table with exactly one of rgb, hex or color256.
//
// # Platform Conditionals
//
// A read-only "platform" table describes the host, so one file can serve
// several machines:
//
//	tldr = {
//	  output = { compact = platform.is_windows },
//	}
//
// # Sandbox
//
// The os, io, debug and module loading functions are removed before the file
// runs, and execution is bounded by ParseTimeout.
//
// # Errors
//
// Lua errors are reported as *ParseError; well-formed files with bad values as
// *ValidationError.
package config
