package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds the parsed command-line flags.
type options struct {
	update        bool
	list          bool
	listAll       bool
	listPlatforms bool
	listLanguages bool
	info          bool
	render        string
	cleanCache    bool
	genConfig     bool
	configPath    bool

	platform  string
	languages []string
	offline   bool
	compact   bool
	noCompact bool
	raw       bool
	noRaw     bool
	quiet     bool
	verbose   bool
	color     string
	config    string
}

func newRootCmd(a *app) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "tldr [flags] <command...>",
		Short: "Simplified, community-driven man pages",
		Long: `tldr shows short, example-driven help pages for command-line tools.

Pages are downloaded from a mirror of the tldr-pages project and cached
locally. Words of a multi-word command are joined with dashes, so
'tldr git commit' shows the page for git-commit.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd.Context(), &o, args)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("tldr %s\n", Version))
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.SetNormalizeFunc(normalizeFlag)

	flags.BoolVarP(&o.update, "update", "u", false, "Update the page cache")
	flags.BoolVarP(&o.list, "list", "l", false, "List pages for the current platform")
	flags.BoolVarP(&o.listAll, "list-all", "a", false, "List pages for all platforms")
	flags.BoolVar(&o.listPlatforms, "list-platforms", false, "List available platforms")
	flags.BoolVar(&o.listLanguages, "list-languages", false, "List installed languages")
	flags.BoolVarP(&o.info, "info", "i", false, "Show cache information")
	flags.StringVarP(&o.render, "render", "r", "", "Render the page in `FILE`")
	flags.BoolVar(&o.cleanCache, "clean-cache", false, "Remove the page cache")
	flags.BoolVar(&o.genConfig, "gen-config", false, "Print the default config")
	flags.BoolVar(&o.configPath, "config-path", false, "Print the default config path and create the config directory")

	flags.StringVarP(&o.platform, "platform", "p", "", "Show pages for `PLATFORM` (linux, osx, windows, ...)")
	flags.StringArrayVarP(&o.languages, "language", "L", nil, "Show pages in `LANGUAGE`; repeatable, disables the English fallback")
	flags.BoolVarP(&o.offline, "offline", "o", false, "Do not update the cache, even if it is stale")
	flags.BoolVarP(&o.compact, "compact", "c", false, "Strip empty lines from output")
	flags.BoolVar(&o.noCompact, "no-compact", false, "Do not strip empty lines from output")
	flags.BoolVarP(&o.raw, "raw", "R", false, "Print pages in raw markdown")
	flags.BoolVar(&o.noRaw, "no-raw", false, "Render pages instead of printing raw markdown")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Suppress status messages and warnings")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Print debug messages")
	flags.StringVar(&o.color, "color", "auto", "Use colors: `WHEN` is auto, always or never")
	flags.StringVar(&o.config, "config", "", "Use the config in `FILE`")

	return cmd
}

// validate rejects contradictory flags.
func (o *options) validate() error {
	pairs := []struct {
		a, b   bool
		na, nb string
	}{
		{o.compact, o.noCompact, "--compact", "--no-compact"},
		{o.raw, o.noRaw, "--raw", "--no-raw"},
		{o.quiet, o.verbose, "--quiet", "--verbose"},
	}
	for _, p := range pairs {
		if p.a && p.b {
			return &usageError{err: fmt.Errorf("%s cannot be used with %s", p.na, p.nb)}
		}
	}
	return nil
}

// hasAction reports whether a flag requests something other than a page.
func (o *options) hasAction() bool {
	return o.update || o.list || o.listAll || o.listPlatforms || o.listLanguages ||
		o.info || o.render != "" || o.cleanCache || o.genConfig || o.configPath
}

// normalizeFlag accepts underscores in long flag names (--list_all).
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
