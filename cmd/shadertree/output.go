package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/HugoDaniel/shadertree/pkg/api"
)

// readSource reads path, or stdin when path is "-". A nil stdin means
// os.Stdin.
func readSource(path string, stdin io.Reader) (string, error) {
	if stdin == nil {
		stdin = os.Stdin
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// parseFile reads and parses path. Syntax errors are printed to w and
// turned into an error.
func parseFile(path string, stdin io.Reader, w io.Writer) (*api.Shader, error) {
	source, err := readSource(path, stdin)
	if err != nil {
		return nil, err
	}
	result := api.Parse(source)
	if len(result.Errors) > 0 {
		printDiagnostics(w, path, result.Errors)
		return nil, fmt.Errorf("%s: %d syntax error(s)", displayName(path), len(result.Errors))
	}
	return result.Shader, nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	return path
}

// printDiagnostics writes one line per diagnostic in the usual
// file:line:column form.
func printDiagnostics(w io.Writer, path string, diags []api.Diagnostic) {
	name := displayName(path)
	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s", name, d.Line, d.Column, d.Severity, d.Message)
		if d.Code != "" {
			fmt.Fprintf(w, " [%s]", d.Code)
		}
		fmt.Fprintln(w)
	}
}

func severities(diags []api.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Severity
	}
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
