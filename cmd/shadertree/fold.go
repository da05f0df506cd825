package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shadertree/pkg/api"
)

func (a *app) newFoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fold <file>",
		Short: "Fold constant array sizes and prune empty statements",
		Long: `Run the tree transforms over a shader and print the folded tree.

Array dimensions written as constant expressions are replaced by their
value, and stray ';' statements are removed from statement lists. Either
step can be turned off here or in the config file.

Examples:
  shadertree fold lighting.hlsl
  shadertree fold --no-prune lighting.hlsl
  cat lighting.hlsl | shadertree fold --json -`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.runFold(cmd, args[0])
		}),
	}
	cmd.Flags().BoolVar(&a.flags.noResolveArraySizes, "no-resolve-array-sizes", false, "leave array dimensions as written")
	cmd.Flags().BoolVar(&a.flags.noPrune, "no-prune", false, "leave empty statements in place")
	return cmd
}

func (a *app) runFold(cmd *cobra.Command, file string) error {
	shader, err := parseFile(file, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	result := api.Fold(shader, a.foldOptions())
	a.logger.Info("shader folded",
		"file", displayName(file),
		"resolved_array_sizes", result.ResolvedArraySizes,
		"pruned_statements", result.PrunedStatements,
		"diagnostics", len(result.Diagnostics),
	)

	if a.flags.json {
		if err := api.Encode(cmd.OutOrStdout(), result); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		printDiagnostics(cmd.ErrOrStderr(), file, result.Diagnostics)
		fmt.Fprint(cmd.OutOrStdout(), result.Tree)
	}

	if result.HasErrors() {
		return fmt.Errorf("%s: some array sizes could not be resolved", displayName(file))
	}
	return nil
}
