package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/config"
	"github.com/ludo-technologies/lshdedup/internal/constants"
	"github.com/spf13/viper"
)

// ConfigurationLoaderImpl resolves run configuration. The discovered
// .lshdedup.toml is read with go-toml; an explicit --config file (TOML, YAML
// or JSON) and LSHDEDUP_* environment variables are layered on top through
// viper.
type ConfigurationLoaderImpl struct {
	toml *config.TomlConfigLoader
}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{toml: config.NewTomlConfigLoader()}
}

// LoadConfig resolves defaults < discovered .lshdedup.toml < configPath < environment
func (c *ConfigurationLoaderImpl) LoadConfig(configPath, startDir string) (*domain.DedupRequest, error) {
	cfg, err := c.LoadDedupConfig(configPath, startDir)
	if err != nil {
		return nil, err
	}
	return ConfigToRequest(cfg), nil
}

// LoadDedupConfig is LoadConfig without the conversion to a request
func (c *ConfigurationLoaderImpl) LoadDedupConfig(configPath, startDir string) (*config.DedupConfig, error) {
	if startDir == "" {
		startDir = "."
	}
	base, err := c.toml.LoadConfig(startDir)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("failed to load %s", constants.ConfigFileName), err)
	}

	v := viper.New()
	setViperDefaults(v, base)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// seed has no default, so AutomaticEnv alone would never look it up
	_ = v.BindEnv("lsh.seed", constants.EnvPrefix+"_LSH_SEED")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("failed to read config file %s", configPath), err)
		}
	}

	cfg := *base
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, domain.NewConfigError("failed to decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}
	return &cfg, nil
}

func setViperDefaults(v *viper.Viper, cfg *config.DedupConfig) {
	v.SetDefault("input.paths", cfg.Input.Paths)
	v.SetDefault("input.recursive", cfg.Input.Recursive)
	v.SetDefault("input.include_patterns", cfg.Input.IncludePatterns)
	v.SetDefault("input.exclude_patterns", cfg.Input.ExcludePatterns)
	v.SetDefault("input.id_column", cfg.Input.IDColumn)
	v.SetDefault("input.text_column", cfg.Input.TextColumn)
	v.SetDefault("input.has_header", cfg.Input.HasHeader)
	v.SetDefault("input.delimiter", cfg.Input.Delimiter)

	v.SetDefault("lsh.num_perm", cfg.LSH.NumPerm)
	v.SetDefault("lsh.num_bands", cfg.LSH.NumBands)
	v.SetDefault("lsh.threshold", cfg.LSH.Threshold)
	v.SetDefault("lsh.raw_candidates", cfg.LSH.RawCandidates)
	if cfg.LSH.Seed != nil {
		v.SetDefault("lsh.seed", *cfg.LSH.Seed)
	}

	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.directory", cfg.Output.Directory)
	v.SetDefault("output.show_all_groups", cfg.Output.ShowAllGroups)

	v.SetDefault("performance.workers", cfg.Performance.Workers)
	v.SetDefault("performance.timeout_seconds", cfg.Performance.TimeoutSeconds)
}

// ConfigToRequest converts resolved configuration to a dedup request
func ConfigToRequest(cfg *config.DedupConfig) *domain.DedupRequest {
	format := domain.OutputFormat(cfg.Output.Format)
	if format == "" {
		format = domain.OutputFormatText
	}
	var seed *uint64
	if cfg.LSH.Seed != nil {
		seed = domain.Uint64Ptr(*cfg.LSH.Seed)
	}

	return &domain.DedupRequest{
		Paths:           append([]string(nil), cfg.Input.Paths...),
		Recursive:       cfg.Input.Recursive,
		IncludePatterns: append([]string(nil), cfg.Input.IncludePatterns...),
		ExcludePatterns: append([]string(nil), cfg.Input.ExcludePatterns...),
		IDColumn:        cfg.Input.IDColumn,
		TextColumn:      cfg.Input.TextColumn,
		HasHeader:       cfg.Input.HasHeader,
		Delimiter:       cfg.Input.Delimiter,
		NumPerm:         cfg.LSH.NumPerm,
		NumBands:        cfg.LSH.NumBands,
		Threshold:       cfg.LSH.EffectiveThreshold(),
		Seed:            seed,
		Workers:         cfg.Performance.Workers,
		OutputFormat:    format,
		OutputDir:       cfg.Output.Directory,
		ShowAllGroups:   cfg.Output.ShowAllGroups,
		TimeoutSeconds:  cfg.Performance.TimeoutSeconds,
	}
}
