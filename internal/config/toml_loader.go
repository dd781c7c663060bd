package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/lshdedup/internal/constants"
	"github.com/pelletier/go-toml/v2"
)

// DedupTomlConfig mirrors .lshdedup.toml. Pointer fields distinguish an
// absent key from an explicit zero.
type DedupTomlConfig struct {
	Input       TomlInputConfig       `toml:"input"`
	LSH         TomlLSHConfig         `toml:"lsh"`
	Output      TomlOutputConfig      `toml:"output"`
	Performance TomlPerformanceConfig `toml:"performance"`
}

type TomlInputConfig struct {
	Paths           []string `toml:"paths"`
	Recursive       *bool    `toml:"recursive"`
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	IDColumn        *int     `toml:"id_column"`
	TextColumn      *int     `toml:"text_column"`
	HasHeader       *bool    `toml:"has_header"`
	Delimiter       *string  `toml:"delimiter"`
}

type TomlLSHConfig struct {
	NumPerm       *int     `toml:"num_perm"`
	NumBands      *int     `toml:"num_bands"`
	Threshold     *float64 `toml:"threshold"`
	RawCandidates *bool    `toml:"raw_candidates"`
	Seed          *uint64  `toml:"seed"`
}

type TomlOutputConfig struct {
	Format        *string `toml:"format"`
	Directory     *string `toml:"directory"`
	ShowAllGroups *bool   `toml:"show_all_groups"`
}

type TomlPerformanceConfig struct {
	Workers        *int `toml:"workers"`
	TimeoutSeconds *int `toml:"timeout_seconds"`
}

// TomlConfigLoader discovers and reads .lshdedup.toml
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig walks up from startDir to the nearest .lshdedup.toml and merges
// it over the defaults. With no file found the defaults are returned.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*DedupConfig, error) {
	path, err := l.FindConfigFile(startDir)
	if err != nil {
		return DefaultDedupConfig(), nil
	}
	return l.LoadConfigFile(path)
}

// LoadConfigFile reads one TOML file and merges it over the defaults
func (l *TomlConfigLoader) LoadConfigFile(path string) (*DedupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Parse(data)
}

// Parse decodes TOML content and merges it over the defaults
func (l *TomlConfigLoader) Parse(data []byte) (*DedupConfig, error) {
	var file DedupTomlConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}

	cfg := DefaultDedupConfig()
	l.merge(cfg, &file)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile walks up the directory tree from startDir looking for .lshdedup.toml
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		configPath := filepath.Join(dir, constants.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// merge copies every key present in the file over cfg
func (l *TomlConfigLoader) merge(cfg *DedupConfig, file *DedupTomlConfig) {
	// Input
	if len(file.Input.Paths) > 0 {
		cfg.Input.Paths = file.Input.Paths
	}
	if file.Input.Recursive != nil {
		cfg.Input.Recursive = *file.Input.Recursive
	}
	if len(file.Input.IncludePatterns) > 0 {
		cfg.Input.IncludePatterns = file.Input.IncludePatterns
	}
	if file.Input.ExcludePatterns != nil {
		cfg.Input.ExcludePatterns = file.Input.ExcludePatterns
	}
	setInt(&cfg.Input.IDColumn, file.Input.IDColumn)
	setInt(&cfg.Input.TextColumn, file.Input.TextColumn)
	if file.Input.HasHeader != nil {
		cfg.Input.HasHeader = *file.Input.HasHeader
	}
	if file.Input.Delimiter != nil {
		cfg.Input.Delimiter = *file.Input.Delimiter
	}

	// LSH
	setInt(&cfg.LSH.NumPerm, file.LSH.NumPerm)
	setInt(&cfg.LSH.NumBands, file.LSH.NumBands)
	if file.LSH.Threshold != nil {
		cfg.LSH.Threshold = *file.LSH.Threshold
	}
	if file.LSH.RawCandidates != nil {
		cfg.LSH.RawCandidates = *file.LSH.RawCandidates
	}
	if file.LSH.Seed != nil {
		seed := *file.LSH.Seed
		cfg.LSH.Seed = &seed
	}

	// Output
	if file.Output.Format != nil {
		cfg.Output.Format = *file.Output.Format
	}
	if file.Output.Directory != nil {
		cfg.Output.Directory = *file.Output.Directory
	}
	if file.Output.ShowAllGroups != nil {
		cfg.Output.ShowAllGroups = *file.Output.ShowAllGroups
	}

	// Performance
	setInt(&cfg.Performance.Workers, file.Performance.Workers)
	setInt(&cfg.Performance.TimeoutSeconds, file.Performance.TimeoutSeconds)
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
