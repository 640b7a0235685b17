package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ZebulonRouseFrantzich/tldr/internal/cache"
	"github.com/ZebulonRouseFrantzich/tldr/internal/config"
	"github.com/ZebulonRouseFrantzich/tldr/internal/logging"
	"github.com/ZebulonRouseFrantzich/tldr/internal/platform"
	"github.com/ZebulonRouseFrantzich/tldr/internal/termout"
)

// app carries the process environment the commands run against.
type app struct {
	stdout io.Writer
	stderr io.Writer
	// outFile and errFile back stdout and stderr when they are files; they
	// drive color and width detection.
	outFile *os.File
	errFile *os.File

	getenv   func(string) string
	detector platform.Detector
	client   *http.Client
	clock    cache.Clock

	log zerolog.Logger
}

func newApp() *app {
	return &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		outFile:  os.Stdout,
		errFile:  os.Stderr,
		getenv:   os.Getenv,
		detector: platform.NewDetector(),
		log:      logging.Nop(),
	}
}

// run executes the command line and returns the exit status.
func (a *app) run(ctx context.Context, args []string) int {
	cmd := newRootCmd(a)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	code := exitCode(err)
	a.report(err, code)
	return code
}

// report prints err on stderr. The logger may not exist yet when flag
// parsing failed.
func (a *app) report(err error, code int) {
	log := a.log
	if log.GetLevel() == zerolog.Disabled {
		log = logging.New(logging.Config{
			Level:  logging.ErrorLevel,
			Output: a.stderr,
			Color:  termout.UseColor(termout.ColorAuto, a.errFile, a.getenv),
		})
	}

	msg := err.Error()
	if code == exitConfig {
		msg = config.FormatError(err, log.GetLevel() <= zerolog.DebugLevel)
	}
	log.Error().Msg(msg)

	if code == exitUsage {
		fmt.Fprintln(a.stderr, "Run 'tldr --help' for usage.")
	}
}

// execute is the root command action.
func (a *app) execute(ctx context.Context, o *options, args []string) error {
	if err := o.validate(); err != nil {
		return err
	}

	mode, err := termout.ParseColorMode(o.color)
	if err != nil {
		return &usageError{err: err}
	}

	a.log = logging.New(logging.Config{
		Level:  logging.LevelFor(o.quiet, o.verbose),
		Output: a.stderr,
		Color:  termout.UseColor(mode, a.errFile, a.getenv),
	})

	if o.platform != "" {
		if _, err := platform.Parse(o.platform); err != nil {
			return &usageError{err: err}
		}
	}

	for _, lang := range o.languages {
		if err := config.ValidateLanguage(lang); err != nil {
			return &usageError{err: fmt.Errorf("--language %q: %w", lang, err)}
		}
	}

	if len(args) == 0 && !o.hasAction() {
		return &usageError{err: errors.New("no page name given")}
	}

	// Actions that need no config.
	switch {
	case o.genConfig:
		return a.genConfig()
	case o.configPath:
		return a.configPath()
	}

	cfg, err := a.loadConfig(ctx, o)
	if err != nil {
		return err
	}
	applyOverrides(cfg, o)

	s, err := a.newSession(ctx, cfg, o, mode)
	if err != nil {
		return err
	}

	switch {
	case o.render != "":
		return s.renderFile(o.render)
	case o.cleanCache:
		return s.cleanCache()
	case o.info:
		return s.info()
	}

	if o.update {
		if err := s.update(ctx); err != nil {
			if len(args) == 0 {
				return err
			}
			a.log.Warn().Msg(err.Error())
		}
	}

	switch {
	case o.listLanguages:
		return s.listLanguages()
	case o.listPlatforms:
		return s.listPlatforms(ctx)
	case o.list:
		return s.list(ctx, false)
	case o.listAll:
		return s.list(ctx, true)
	}

	if len(args) == 0 {
		return nil
	}
	return s.showPage(ctx, commandName(args))
}

// loadConfig reads the config file. A --config path that is not a file is
// ignored with a warning.
func (a *app) loadConfig(ctx context.Context, o *options) (*config.Config, error) {
	path := o.config
	if path == "" {
		located, err := config.Locate()
		if err != nil {
			a.log.Warn().Err(err).Msg("using default config")
			return a.defaultConfig(ctx)
		}
		path = located
	}

	cfg, found, err := config.NewParser(a.detector).Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if found {
		a.log.Debug().Str("path", path).Msg("config loaded")
	} else if o.config != "" {
		a.log.Warn().Msgf("'%s': not a file, using the default config", o.config)
	}
	return cfg, nil
}

func (a *app) defaultConfig(ctx context.Context) (*config.Config, error) {
	cfg, _, err := config.NewParser(a.detector).Load(ctx, "")
	return cfg, err
}

// applyOverrides lets command-line flags win over the config file.
func applyOverrides(cfg *config.Config, o *options) {
	switch {
	case o.compact:
		cfg.Output.Compact = true
	case o.noCompact:
		cfg.Output.Compact = false
	}
	switch {
	case o.raw:
		cfg.Output.RawMarkdown = true
	case o.noRaw:
		cfg.Output.RawMarkdown = false
	}
}

func (a *app) genConfig() error {
	home, _ := os.UserHomeDir()
	cfg := config.Default(config.DefaultCacheDir())
	_, err := io.WriteString(a.stdout, config.NewGenerator(home).Generate(cfg))
	return err
}

// configPath prints the default config location and creates its directory.
func (a *app) configPath() error {
	path, err := config.Locate()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, path)
	return err
}

// commandName joins the words of a multi-word command with dashes.
func commandName(args []string) string {
	return strings.ToLower(strings.Join(args, "-"))
}
