package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"shopswipe/internal/app"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagValues struct {
	catalog  string
	dataDir  string
	logPath  string
	style    string
	motion   string
	mouse    string
	autoplay time.Duration
	ascii    bool
	debug    bool
	demo     string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs the root command and reports any error on stderr, including
// flag and configuration errors cobra itself stays silent about.
func execute(args []string, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "shopswipe:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var fv flagValues
	cmd := &cobra.Command{
		Use:           "shopswipe",
		Short:         "Browse a product catalog and fill a cart from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), fv, nil)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&fv.catalog, "catalog", "", "catalog YAML file (default: built-in demo catalog)")
	f.StringVar(&fv.dataDir, "data-dir", "", "directory for the state database")
	f.StringVar(&fv.logPath, "log", "", "write JSON logs to this file")
	f.StringVar(&fv.style, "style", "", "theme: midnight, daylight or receipt")
	f.StringVar(&fv.motion, "motion", "", "animation level: full, reduced or off")
	f.StringVar(&fv.mouse, "mouse", "", "mouse handling: off, scoped or full")
	f.DurationVar(&fv.autoplay, "autoplay", 0, "autoplay interval, overriding the catalog")
	f.BoolVar(&fv.ascii, "ascii", false, "draw with ASCII only")
	f.BoolVar(&fv.debug, "debug", false, "log carousel diagnostics to stderr")
	f.StringVar(&fv.demo, "demo", "", "replay a scripted gesture scenario on start")
	return cmd
}

// resolveConfig layers defaults, SHOPSWIPE_* variables, then any flag the
// user actually set.
func resolveConfig(flags *pflag.FlagSet, fv flagValues, environ map[string]string) (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := app.LoadEnv(&cfg, environ); err != nil {
		return cfg, err
	}
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("catalog", func() { cfg.CatalogPath = fv.catalog })
	set("data-dir", func() { cfg.DataDir = fv.dataDir })
	set("log", func() { cfg.LogPath = fv.logPath })
	set("style", func() { cfg.UI.StyleVariant = fv.style })
	set("motion", func() { cfg.UI.MotionLevel = fv.motion })
	set("mouse", func() { cfg.UI.MouseScope = fv.mouse })
	set("autoplay", func() { cfg.Autoplay = fv.autoplay })
	set("ascii", func() { cfg.ASCIIOnly = fv.ascii })
	set("debug", func() { cfg.Debug = fv.debug })
	set("demo", func() { cfg.DemoScenario = fv.demo })

	// Style stays empty here when unset so the saved theme can apply.
	style := cfg.UI.StyleVariant
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.UI.StyleVariant = style
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(ctx)
}
