package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shadertree/pkg/api"
)

func (a *app) newEvalCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Fold a constant expression",
		Long: `Fold a constant expression to a number.

With --file, the top-level declarations of the shader are in scope, so the
expression may refer to its constants.

Examples:
  shadertree eval "(1 << 4) * 3"
  shadertree eval --file lighting.hlsl "MAX_LIGHTS * 2"
  shadertree eval --json "float(7) / 2"`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.runEval(cmd, file, args[0])
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "shader `file` whose declarations are in scope (- for stdin)")
	return cmd
}

func (a *app) runEval(cmd *cobra.Command, file, expression string) error {
	opts := a.evalOptions()

	name := "<expression>"
	var r api.EvalResult
	if file != "" {
		name = file
		shader, err := parseFile(file, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		r = api.EvaluateIn(shader, expression, opts)
	} else {
		r = api.Evaluate(expression, opts)
	}

	if a.flags.json {
		if err := api.Encode(cmd.OutOrStdout(), r); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		printDiagnostics(cmd.ErrOrStderr(), name, r.Diagnostics)
		if r.OK {
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(r.Value))
		}
	}

	if !r.OK {
		return errors.New("expression is not constant")
	}
	return nil
}
