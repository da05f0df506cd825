package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HugoDaniel/shadertree/pkg/api"
)

func (a *app) newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the syntax tree of a shader",
		Long: `Print the syntax tree of a shader as an indented outline, one node per
line. Use - to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.runDump(cmd, args[0])
		}),
	}
}

func (a *app) runDump(cmd *cobra.Command, file string) error {
	shader, err := parseFile(file, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if a.flags.json {
		out := struct {
			File string `json:"file"`
			Tree string `json:"tree"`
		}{displayName(file), shader.Dump()}
		if err := api.Encode(cmd.OutOrStdout(), out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), shader.Dump())
	return nil
}
