package config

import (
	"fmt"

	"github.com/ludo-technologies/lshdedup/internal/constants"
)

// DedupConfig is the resolved configuration of one run. Every field holds a
// concrete value; unset file entries have already been filled from defaults.
type DedupConfig struct {
	Input       InputConfig       `mapstructure:"input" toml:"input" yaml:"input" json:"input"`
	LSH         LSHConfig         `mapstructure:"lsh" toml:"lsh" yaml:"lsh" json:"lsh"`
	Output      OutputConfig      `mapstructure:"output" toml:"output" yaml:"output" json:"output"`
	Performance PerformanceConfig `mapstructure:"performance" toml:"performance" yaml:"performance" json:"performance"`
}

// InputConfig selects and parses record files
type InputConfig struct {
	Paths           []string `mapstructure:"paths" toml:"paths" yaml:"paths" json:"paths"`
	Recursive       bool     `mapstructure:"recursive" toml:"recursive" yaml:"recursive" json:"recursive"`
	IncludePatterns []string `mapstructure:"include_patterns" toml:"include_patterns" yaml:"include_patterns" json:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" toml:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`

	// Zero-based column positions
	IDColumn   int    `mapstructure:"id_column" toml:"id_column" yaml:"id_column" json:"id_column"`
	TextColumn int    `mapstructure:"text_column" toml:"text_column" yaml:"text_column" json:"text_column"`
	HasHeader  bool   `mapstructure:"has_header" toml:"has_header" yaml:"has_header" json:"has_header"`
	Delimiter  string `mapstructure:"delimiter" toml:"delimiter" yaml:"delimiter" json:"delimiter"`
}

// LSHConfig holds the engine parameters
type LSHConfig struct {
	NumPerm   int     `mapstructure:"num_perm" toml:"num_perm" yaml:"num_perm" json:"num_perm"`
	NumBands  int     `mapstructure:"num_bands" toml:"num_bands" yaml:"num_bands" json:"num_bands"`
	Threshold float64 `mapstructure:"threshold" toml:"threshold" yaml:"threshold" json:"threshold"`

	// RawCandidates links every pair sharing a band and ignores Threshold
	RawCandidates bool `mapstructure:"raw_candidates" toml:"raw_candidates" yaml:"raw_candidates" json:"raw_candidates"`

	// Seed makes permutations reproducible; nil draws fresh ones per run
	Seed *uint64 `mapstructure:"seed" toml:"seed,omitempty" yaml:"seed,omitempty" json:"seed,omitempty"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format        string `mapstructure:"format" toml:"format" yaml:"format" json:"format"`
	Directory     string `mapstructure:"directory" toml:"directory" yaml:"directory" json:"directory"`
	ShowAllGroups bool   `mapstructure:"show_all_groups" toml:"show_all_groups" yaml:"show_all_groups" json:"show_all_groups"`
}

// PerformanceConfig bounds resource use
type PerformanceConfig struct {
	Workers        int `mapstructure:"workers" toml:"workers" yaml:"workers" json:"workers"` // 0 means GOMAXPROCS
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// DefaultDedupConfig returns the built-in configuration
func DefaultDedupConfig() *DedupConfig {
	return &DedupConfig{
		Input: InputConfig{
			Paths:           []string{"."},
			Recursive:       true,
			IncludePatterns: append([]string(nil), constants.DefaultIncludePatterns...),
			ExcludePatterns: []string{},
			IDColumn:        constants.DefaultIDColumn,
			TextColumn:      constants.DefaultTextColumn,
			HasHeader:       constants.DefaultHasHeader,
		},
		LSH: LSHConfig{
			NumPerm:   constants.DefaultNumPerm,
			NumBands:  constants.DefaultNumBands,
			Threshold: constants.DefaultThreshold,
		},
		Output: OutputConfig{
			Format:    "text",
			Directory: constants.DefaultOutputDir,
		},
		Performance: PerformanceConfig{
			TimeoutSeconds: constants.DefaultTimeoutSeconds,
		},
	}
}

var validFormats = map[string]bool{"text": true, "json": true, "yaml": true, "csv": true}

// Validate checks the configuration for values the engine cannot run with
func (c *DedupConfig) Validate() error {
	if c.LSH.NumPerm <= 0 {
		return fmt.Errorf("lsh.num_perm must be positive, got %d", c.LSH.NumPerm)
	}
	if c.LSH.NumBands <= 0 {
		return fmt.Errorf("lsh.num_bands must be positive, got %d", c.LSH.NumBands)
	}
	if c.LSH.NumPerm%c.LSH.NumBands != 0 {
		return fmt.Errorf("lsh.num_bands %d does not evenly divide lsh.num_perm %d", c.LSH.NumBands, c.LSH.NumPerm)
	}
	if !(c.LSH.Threshold >= 0 && c.LSH.Threshold <= 1) {
		return fmt.Errorf("lsh.threshold must be between 0.0 and 1.0, got %g", c.LSH.Threshold)
	}
	if c.Input.IDColumn < 0 || c.Input.TextColumn < 0 {
		return fmt.Errorf("input columns must be >= 0")
	}
	if c.Output.Format != "" && !validFormats[c.Output.Format] {
		return fmt.Errorf("output.format %q is not one of text, json, yaml, csv", c.Output.Format)
	}
	if c.Performance.Workers < 0 {
		return fmt.Errorf("performance.workers must be >= 0")
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0")
	}
	return nil
}

// EffectiveThreshold returns nil when raw candidates are requested
func (c *LSHConfig) EffectiveThreshold() *float64 {
	if c.RawCandidates {
		return nil
	}
	t := c.Threshold
	return &t
}
