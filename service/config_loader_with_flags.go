package service

import (
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/config"
)

// ConfigurationLoaderWithFlags wraps configuration loading with explicit flag
// tracking, so that only flags the user actually typed override file values
type ConfigurationLoaderWithFlags struct {
	loader      *ConfigurationLoaderImpl
	flagTracker *config.FlagTracker
}

// NewConfigurationLoaderWithFlags creates a loader that merges only explicit flags
func NewConfigurationLoaderWithFlags(explicitFlags map[string]bool) *ConfigurationLoaderWithFlags {
	return &ConfigurationLoaderWithFlags{
		loader:      NewConfigurationLoader(),
		flagTracker: config.NewFlagTrackerWithFlags(explicitFlags),
	}
}

// LoadConfig resolves file and environment configuration
func (cl *ConfigurationLoaderWithFlags) LoadConfig(configPath, startDir string) (*domain.DedupRequest, error) {
	return cl.loader.LoadConfig(configPath, startDir)
}

// MergeConfig merges CLI flags with configuration file, respecting explicit flags
func (cl *ConfigurationLoaderWithFlags) MergeConfig(base *domain.DedupRequest, override *domain.DedupRequest) *domain.DedupRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	ft := cl.flagTracker
	merged := *base

	// Paths come from command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	// Input
	merged.Recursive = ft.MergeBool(merged.Recursive, override.Recursive, "recursive")
	merged.IncludePatterns = ft.MergeStringSlice(merged.IncludePatterns, override.IncludePatterns, "include")
	merged.ExcludePatterns = ft.MergeStringSlice(merged.ExcludePatterns, override.ExcludePatterns, "exclude")
	merged.IDColumn = ft.MergeInt(merged.IDColumn, override.IDColumn, "id-column")
	merged.TextColumn = ft.MergeInt(merged.TextColumn, override.TextColumn, "text-column")
	merged.HasHeader = ft.MergeBool(merged.HasHeader, override.HasHeader, "header")
	merged.Delimiter = ft.MergeString(merged.Delimiter, override.Delimiter, "delimiter")

	// Engine
	merged.NumPerm = ft.MergeInt(merged.NumPerm, override.NumPerm, "num-perm")
	merged.NumBands = ft.MergeInt(merged.NumBands, override.NumBands, "num-bands")
	merged.Threshold = ft.MergeFloat64Ptr(merged.Threshold, override.Threshold, "threshold")
	// --raw clears the threshold; --raw=false only turns off raw mode from
	// the file and never replaces a configured threshold
	if ft.WasSet("raw") && (override.Threshold == nil || merged.Threshold == nil) {
		merged.Threshold = override.Threshold
	}
	merged.Seed = ft.MergeUint64Ptr(merged.Seed, override.Seed, "seed")
	merged.Workers = ft.MergeInt(merged.Workers, override.Workers, "workers")

	// Output: any of the format flags selects the override format
	if ft.WasSet("format") || ft.WasSet("json") || ft.WasSet("csv") || ft.WasSet("yaml") {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	merged.OutputDir = ft.MergeString(merged.OutputDir, override.OutputDir, "output-dir")
	merged.ShowAllGroups = ft.MergeBool(merged.ShowAllGroups, override.ShowAllGroups, "show-all")
	merged.ShowProgress = override.ShowProgress

	merged.TimeoutSeconds = ft.MergeInt(merged.TimeoutSeconds, override.TimeoutSeconds, "timeout")
	merged.ConfigPath = override.ConfigPath

	return &merged
}
