package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/HugoDaniel/shadertree/pkg/api"
)

// checkReport is the outcome of checking one file.
type checkReport struct {
	File               string           `json:"file"`
	Declarations       int              `json:"declarations"`
	ResolvedArraySizes int              `json:"resolvedArraySizes"`
	Diagnostics        []api.Diagnostic `json:"diagnostics,omitempty"`
	Error              string           `json:"error,omitempty"`
}

func (r checkReport) failed() bool {
	if r.Error != "" {
		return true
	}
	for _, d := range r.Diagnostics {
		if d.Severity == "error" {
			return true
		}
	}
	return false
}

func (a *app) newCheckCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Check shaders for syntax and constant errors",
		Long: `Parse every file and resolve its constant array sizes, reporting syntax
errors and constants that cannot be folded. Files are checked in parallel.

With --watch, the files are checked again whenever they change until the
command is interrupted.

Examples:
  shadertree check shaders/*.hlsl
  shadertree check --json shaders/*.hlsl
  shadertree check --watch --metrics-file shadertree.prom shaders/*.hlsl`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, watch)
		}),
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "check again whenever a file changes")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, files []string, watch bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reports, err := a.checkFiles(ctx, files)
	if err != nil {
		return err
	}
	a.printReports(cmd.OutOrStdout(), reports)

	failed := 0
	for _, r := range reports {
		if r.failed() {
			failed++
		}
	}

	if watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		// The exit status reflects the first pass.
		err := watchFiles(ctx, files, a.logger, func(file string) {
			report := a.checkFile(file)
			a.printReports(cmd.OutOrStdout(), []checkReport{report})
			if err := a.writeMetrics(); err != nil {
				a.logger.Error("failed to write metrics", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(reports))
	}
	return nil
}

// checkFiles checks every file concurrently. Reports are returned in the
// order of files; only cancellation of ctx is an error.
func (a *app) checkFiles(ctx context.Context, files []string) ([]checkReport, error) {
	reports := make([]checkReport, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = a.checkFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (a *app) checkFile(file string) checkReport {
	report := checkReport{File: file}

	source, err := readSource(file, nil)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	parsed := api.Parse(source)
	if len(parsed.Errors) > 0 {
		report.Diagnostics = parsed.Errors
		return report
	}
	report.Declarations = parsed.Shader.Declarations()

	opts := a.foldOptions()
	opts.KeepEmptyStatements = true
	result := api.Fold(parsed.Shader, opts)
	report.ResolvedArraySizes = result.ResolvedArraySizes
	report.Diagnostics = result.Diagnostics

	a.logger.Debug("file checked",
		"file", file,
		"declarations", report.Declarations,
		"diagnostics", len(report.Diagnostics),
	)
	return report
}

func (a *app) printReports(w io.Writer, reports []checkReport) {
	if a.flags.json {
		if err := api.Encode(w, reports); err != nil {
			a.logger.Error("failed to write output", "error", err)
		}
		return
	}

	for _, r := range reports {
		switch {
		case r.Error != "":
			fmt.Fprintf(w, "%s: %s\n", r.File, r.Error)
		case len(r.Diagnostics) > 0:
			printDiagnostics(w, r.File, r.Diagnostics)
		default:
			fmt.Fprintf(w, "%s: ok\n", r.File)
		}
	}
}
