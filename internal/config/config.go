// Package config handles loading shadertree configuration from files.
//
// Configuration is a YAML file named shadertree.yaml or .shadertree.yaml.
// The file is searched for in the given directory and its parents.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/HugoDaniel/shadertree/internal/evaluator"
	"github.com/HugoDaniel/shadertree/pkg/api"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Transform TransformConfig `yaml:"transform"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level *string `yaml:"level,omitempty"`

	// Format is auto, text or json. Auto picks text on a terminal.
	Format *string `yaml:"format,omitempty"`
}

type EvaluatorConfig struct {
	// DetectCycles reports recursive constant references instead of
	// following them until MaxDepth (default true)
	DetectCycles *bool `yaml:"detectCycles,omitempty"`

	// MaxDepth bounds constant reference chains; 0 removes the bound
	MaxDepth *int `yaml:"maxDepth,omitempty"`
}

type TransformConfig struct {
	// ResolveArraySizes folds array dimensions in fold output (default true)
	ResolveArraySizes *bool `yaml:"resolveArraySizes,omitempty"`

	// PruneEmpty removes empty statements in fold output (default true)
	PruneEmpty *bool `yaml:"pruneEmpty,omitempty"`
}

type MetricsConfig struct {
	// Namespace prefixes every metric name
	Namespace *string `yaml:"namespace,omitempty"`

	// File receives the metrics in text exposition format on exit
	File *string `yaml:"file,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"shadertree.yaml",
	".shadertree.yaml",
	"shadertree.yml",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Options is a fully resolved configuration.
type Options struct {
	LogLevel  string
	LogFormat string

	DetectCycles bool
	MaxDepth     int

	ResolveArraySizes bool
	PruneEmpty        bool

	MetricsNamespace string
	MetricsFile      string
}

// DefaultOptions returns the configuration used when nothing is set.
func DefaultOptions() Options {
	return Options{
		LogLevel:          "info",
		LogFormat:         "auto",
		DetectCycles:      true,
		MaxDepth:          evaluator.DefaultMaxDepth,
		ResolveArraySizes: true,
		PruneEmpty:        true,
		MetricsNamespace:  "shadertree",
	}
}

// ToOptions converts a Config to Options, using defaults for unset fields.
// A nil Config yields the defaults.
func (c *Config) ToOptions() Options {
	opts := DefaultOptions()
	if c == nil {
		return opts
	}

	set(&opts.LogLevel, c.Log.Level)
	set(&opts.LogFormat, c.Log.Format)
	set(&opts.DetectCycles, c.Evaluator.DetectCycles)
	set(&opts.MaxDepth, c.Evaluator.MaxDepth)
	set(&opts.ResolveArraySizes, c.Transform.ResolveArraySizes)
	set(&opts.PruneEmpty, c.Transform.PruneEmpty)
	set(&opts.MetricsNamespace, c.Metrics.Namespace)
	set(&opts.MetricsFile, c.Metrics.File)
	return opts
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// MergeOptions holds CLI flags (nil means not specified on CLI).
type MergeOptions struct {
	LogLevel     *string
	LogFormat    *string
	DetectCycles *bool
	MaxDepth     *int
	MetricsFile  *string

	NoResolveArraySizes bool
	NoPrune             bool
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) Options {
	opts := c.ToOptions()

	set(&opts.LogLevel, cli.LogLevel)
	set(&opts.LogFormat, cli.LogFormat)
	set(&opts.DetectCycles, cli.DetectCycles)
	set(&opts.MaxDepth, cli.MaxDepth)
	set(&opts.MetricsFile, cli.MetricsFile)
	if cli.NoResolveArraySizes {
		opts.ResolveArraySizes = false
	}
	if cli.NoPrune {
		opts.PruneEmpty = false
	}
	return opts
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Validate reports the first invalid setting.
func (o Options) Validate() error {
	if !slices.Contains(logLevels, o.LogLevel) {
		return fmt.Errorf("config: log.level %q must be one of %v", o.LogLevel, logLevels)
	}
	if !slices.Contains(logFormats, o.LogFormat) {
		return fmt.Errorf("config: log.format %q must be one of %v", o.LogFormat, logFormats)
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("config: evaluator.maxDepth must not be negative, got %d", o.MaxDepth)
	}
	return nil
}

// EvalOptions returns the evaluator settings of o. A maxDepth of zero
// removes the bound.
func (o Options) EvalOptions() api.EvalOptions {
	depth := o.MaxDepth
	if depth == 0 {
		depth = -1
	}
	return api.EvalOptions{
		DisableCycleDetection: !o.DetectCycles,
		MaxDepth:              depth,
	}
}

// FoldOptions returns the transform settings of o.
func (o Options) FoldOptions() api.FoldOptions {
	return api.FoldOptions{
		EvalOptions:         o.EvalOptions(),
		KeepArraySizes:      !o.ResolveArraySizes,
		KeepEmptyStatements: !o.PruneEmpty,
	}
}
