// Command shadertree parses HLSL-style shader source, folds constant
// expressions and reports what it finds.
//
// Usage:
//
//	shadertree eval [--file <shader>] <expression>
//	shadertree dump <shader>
//	shadertree fold [--no-resolve-array-sizes] [--no-prune] <shader>
//	shadertree check [--watch] <shader>...
//	shadertree version
//
// Global options:
//
//	--config <file>        Use specific config file
//	--no-config            Ignore config files
//	--log-level <level>    debug, info, warn or error
//	--log-format <format>  auto, text or json
//	--detect-cycles        Report recursive constant references (default true)
//	--max-depth <n>        Bound constant reference chains, 0 for no bound
//	--metrics-file <file>  Write Prometheus metrics to file on exit
//	--json                 Print results as JSON
//
// Config file:
//
//	shadertree looks for shadertree.yaml, .shadertree.yaml or
//	shadertree.yml in the current directory and parent directories.
//	Config file options are overridden by CLI flags.
//
// Example shadertree.yaml:
//
//	log:
//	  level: debug
//	evaluator:
//	  detectCycles: true
//	  maxDepth: 32
//	transform:
//	  pruneEmpty: false
//	metrics:
//	  file: /var/lib/node_exporter/shadertree.prom
package main

import (
	"context"
	"fmt"
	"os"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
