// Package logging provides structured logging using zerolog.
//
// The CLI logs human-readable diagnostics to stderr ("info: ...",
// "warning: ..."); stdout is reserved for rendered pages. Loggers are values
// passed to the components that need them, never package globals.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Level represents log levels.
type Level = zerolog.Level

// Log levels exposed for convenience.
const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Color enables colored level prefixes.
	Color bool
}

// New builds a logger from cfg.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	output := zerolog.ConsoleWriter{
		Out:         cfg.Output,
		NoColor:     !cfg.Color,
		PartsOrder:  []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: levelFormatter(cfg.Color),
	}

	return zerolog.New(output).Level(cfg.Level)
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// LevelFor maps the CLI verbosity flags to a level. Quiet wins over verbose.
func LevelFor(quiet, verbose bool) Level {
	switch {
	case quiet:
		return ErrorLevel
	case verbose:
		return DebugLevel
	default:
		return InfoLevel
	}
}

var levelNames = map[string]string{
	zerolog.LevelDebugValue: "debug:",
	zerolog.LevelInfoValue:  "info:",
	zerolog.LevelWarnValue:  "warning:",
	zerolog.LevelErrorValue: "error:",
}

func levelFormatter(colored bool) zerolog.Formatter {
	colors := map[string]*color.Color{}
	if colored {
		colors = map[string]*color.Color{
			zerolog.LevelDebugValue: color.New(color.FgBlue, color.Bold),
			zerolog.LevelInfoValue:  color.New(color.FgCyan, color.Bold),
			zerolog.LevelWarnValue:  color.New(color.FgYellow, color.Bold),
			zerolog.LevelErrorValue: color.New(color.FgRed, color.Bold),
		}
		for _, c := range colors {
			c.EnableColor()
		}
	}

	return func(i interface{}) string {
		level, _ := i.(string)
		name, ok := levelNames[level]
		if !ok {
			name = fmt.Sprintf("%s:", level)
		}
		if c, ok := colors[level]; ok {
			return c.Sprint(name)
		}
		return name
	}
}
