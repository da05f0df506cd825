package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shadertree/internal/config"
	"github.com/HugoDaniel/shadertree/internal/dispatch"
	"github.com/HugoDaniel/shadertree/internal/logging"
	"github.com/HugoDaniel/shadertree/internal/metrics"
	"github.com/HugoDaniel/shadertree/pkg/api"
)

// app holds the flag values and the runtime state shared by every
// subcommand of one command tree.
type app struct {
	flags struct {
		config       string
		noConfig     bool
		logLevel     string
		logFormat    string
		detectCycles bool
		maxDepth     int
		metricsFile  string
		json         bool

		noResolveArraySizes bool
		noPrune             bool
	}

	options config.Options
	logger  *slog.Logger
	metrics *metrics.Collector
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.Discard()}

	root := &cobra.Command{
		Use:   "shadertree",
		Short: "shadertree - shader tree traversal and constant folding",
		Long: `shadertree parses HLSL-style shader source into a syntax tree and runs
the tree tools over it:
  - constant expression evaluation with scope-aware variable lookup
  - array size resolution and empty statement pruning
  - syntax and constant checks over many files, optionally on every save`,
		Version:           fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.config, "config", "", "use specific config `file`")
	flags.BoolVar(&a.flags.noConfig, "no-config", false, "ignore config files")
	flags.StringVar(&a.flags.logLevel, "log-level", "info", "log `level`: debug, info, warn, error")
	flags.StringVar(&a.flags.logFormat, "log-format", "auto", "log `format`: auto, text, json")
	flags.BoolVar(&a.flags.detectCycles, "detect-cycles", true, "report recursive constant references")
	flags.IntVar(&a.flags.maxDepth, "max-depth", 64, "bound constant reference chains, 0 for no bound")
	flags.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to `file` on exit")
	flags.BoolVar(&a.flags.json, "json", false, "print results as JSON")

	root.AddCommand(
		a.newEvalCmd(),
		a.newDumpCmd(),
		a.newFoldCmd(),
		a.newCheckCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration, merges the flags over it and installs
// the logger and the metrics collector.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	switch {
	case a.flags.noConfig:
	case a.flags.config != "":
		path = a.flags.config
		cfg, err = config.LoadFile(path)
	default:
		var wd string
		if wd, err = os.Getwd(); err == nil {
			cfg, path, err = config.Load(wd)
		}
	}
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	var cli config.MergeOptions
	if changed("log-level") {
		cli.LogLevel = &a.flags.logLevel
	}
	if changed("log-format") {
		cli.LogFormat = &a.flags.logFormat
	}
	if changed("detect-cycles") {
		cli.DetectCycles = &a.flags.detectCycles
	}
	if changed("max-depth") {
		cli.MaxDepth = &a.flags.maxDepth
	}
	if changed("metrics-file") {
		cli.MetricsFile = &a.flags.metricsFile
	}
	cli.NoResolveArraySizes = a.flags.noResolveArraySizes
	cli.NoPrune = a.flags.noPrune

	a.options = cfg.Merge(cli)
	if err := a.options.Validate(); err != nil {
		return err
	}

	a.logger, err = logging.New(logging.Options{
		Level:  a.options.LogLevel,
		Format: a.options.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if path != "" {
		a.logger.Debug("config loaded", "path", path)
	}

	a.metrics = metrics.NewCollector(a.options.MetricsNamespace, nil)
	dispatch.SetLogger(a.logger)
	dispatch.SetObserver(a.metrics)
	return nil
}

// run wraps a subcommand so that the metrics file is written once it
// returns, whether it failed or not.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		dispatch.SetObserver(nil)
		return errors.Join(err, a.writeMetrics())
	}
}

func (a *app) writeMetrics() error {
	if a.metrics == nil || a.options.MetricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteToTextfile(a.options.MetricsFile); err != nil {
		return err
	}
	a.logger.Debug("metrics written", "path", a.options.MetricsFile)
	return nil
}

// evalOptions returns the evaluator settings with logging and metrics
// attached.
func (a *app) evalOptions() api.EvalOptions {
	opts := a.options.EvalOptions()
	opts.Logger = a.logger
	if a.metrics != nil {
		opts.OnEvaluate = func(r api.EvalResult) {
			a.metrics.Observe(r.OK, severities(r.Diagnostics)...)
		}
	}
	return opts
}

func (a *app) foldOptions() api.FoldOptions {
	opts := a.options.FoldOptions()
	opts.EvalOptions = a.evalOptions()
	return opts
}
