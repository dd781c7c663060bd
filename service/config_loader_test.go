package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigurationLoader_Defaults(t *testing.T) {
	req, err := NewConfigurationLoader().LoadConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 64, req.NumPerm)
	assert.Equal(t, 16, req.NumBands)
	require.NotNil(t, req.Threshold)
	assert.Equal(t, 0.49, *req.Threshold)
	assert.Equal(t, 0, req.IDColumn)
	assert.Equal(t, 1, req.TextColumn)
	assert.False(t, req.HasHeader)
	assert.Nil(t, req.Seed)
	assert.Equal(t, domain.OutputFormatText, req.OutputFormat)
	assert.NotEmpty(t, req.IncludePatterns)
}

func TestConfigurationLoader_DiscoveredToml(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ".lshdedup.toml", `
[input]
has_header = true
text_column = 2

[lsh]
num_perm = 128
num_bands = 32
seed = 7
`)
	nested := filepath.Join(root, "data", "2024")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	req, err := NewConfigurationLoader().LoadConfig("", nested)
	require.NoError(t, err)

	assert.True(t, req.HasHeader)
	assert.Equal(t, 2, req.TextColumn)
	assert.Equal(t, 128, req.NumPerm)
	assert.Equal(t, 32, req.NumBands)
	require.NotNil(t, req.Seed)
	assert.Equal(t, uint64(7), *req.Seed)
}

func TestConfigurationLoader_ExplicitFileOverridesDiscovered(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ".lshdedup.toml", "[lsh]\nnum_bands = 32\nthreshold = 0.3\n")
	explicit := writeConfig(t, root, "ci/dedup.yaml", `
lsh:
  num_bands: 8
output:
  format: csv
  show_all_groups: true
`)

	req, err := NewConfigurationLoader().LoadConfig(explicit, root)
	require.NoError(t, err)

	assert.Equal(t, 8, req.NumBands, "explicit file wins")
	require.NotNil(t, req.Threshold)
	assert.Equal(t, 0.3, *req.Threshold, "discovered value survives where the explicit file is silent")
	assert.Equal(t, domain.OutputFormatCSV, req.OutputFormat)
	assert.True(t, req.ShowAllGroups)
}

func TestConfigurationLoader_JSONFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "cfg.json", `{"lsh": {"raw_candidates": true}, "performance": {"workers": 3}}`)

	req, err := NewConfigurationLoader().LoadConfig(path, filepath.Dir(path))
	require.NoError(t, err)
	assert.Nil(t, req.Threshold)
	assert.Equal(t, 3, req.Workers)
}

func TestConfigurationLoader_EnvironmentOverrides(t *testing.T) {
	root := t.TempDir()
	explicit := writeConfig(t, root, "cfg.toml", "[lsh]\nnum_bands = 8\n")
	t.Setenv("LSHDEDUP_LSH_NUM_BANDS", "32")
	t.Setenv("LSHDEDUP_LSH_SEED", "99")
	t.Setenv("LSHDEDUP_INPUT_HAS_HEADER", "true")

	req, err := NewConfigurationLoader().LoadConfig(explicit, root)
	require.NoError(t, err)

	assert.Equal(t, 32, req.NumBands)
	assert.True(t, req.HasHeader)
	require.NotNil(t, req.Seed)
	assert.Equal(t, uint64(99), *req.Seed)
}

func TestConfigurationLoader_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := NewConfigurationLoader().LoadConfig(filepath.Join(root, "missing.toml"), root)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeConfigError))

	bad := writeConfig(t, root, "bad.toml", "[lsh]\nnum_bands = 7\n")
	_, err = NewConfigurationLoader().LoadConfig(bad, root)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeConfigError))
	assert.Contains(t, err.Error(), "does not evenly divide")

	brokenDir := t.TempDir()
	writeConfig(t, brokenDir, ".lshdedup.toml", "[lsh\nnum_perm = ")
	_, err = NewConfigurationLoader().LoadConfig("", brokenDir)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeConfigError))
}

func TestConfigurationLoaderWithFlags_MergeConfig(t *testing.T) {
	base := domain.DefaultDedupRequest()
	base.NumBands = 32
	base.HasHeader = true
	base.Seed = domain.Uint64Ptr(3)

	override := domain.DefaultDedupRequest()
	override.Paths = []string{"input.csv"}
	override.NumBands = 8
	override.HasHeader = false
	override.Threshold = domain.Float64Ptr(0.8)
	override.Seed = nil
	override.OutputFormat = domain.OutputFormatJSON
	override.OutputPath = "out.json"

	loader := NewConfigurationLoaderWithFlags(map[string]bool{"num-bands": true, "json": true})
	merged := loader.MergeConfig(base, override)

	assert.Equal(t, []string{"input.csv"}, merged.Paths)
	assert.Equal(t, 8, merged.NumBands, "explicit flag wins")
	assert.True(t, merged.HasHeader, "unset flag keeps file value")
	require.NotNil(t, merged.Threshold)
	assert.Equal(t, 0.49, *merged.Threshold)
	require.NotNil(t, merged.Seed)
	assert.Equal(t, uint64(3), *merged.Seed)
	assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat)
	assert.Equal(t, "out.json", merged.OutputPath)
	assert.Equal(t, 32, base.NumBands, "base is not mutated")
}

func TestConfigurationLoaderWithFlags_RawAndThreshold(t *testing.T) {
	base := domain.DefaultDedupRequest()

	override := domain.DefaultDedupRequest()
	override.Threshold = nil
	merged := NewConfigurationLoaderWithFlags(map[string]bool{"raw": true}).MergeConfig(base, override)
	assert.Nil(t, merged.Threshold)

	override.Threshold = domain.Float64Ptr(0.7)
	merged = NewConfigurationLoaderWithFlags(map[string]bool{"threshold": true}).MergeConfig(base, override)
	require.NotNil(t, merged.Threshold)
	assert.Equal(t, 0.7, *merged.Threshold)
}

func TestConfigurationLoaderWithFlags_RawFalseKeepsFileThreshold(t *testing.T) {
	base := domain.DefaultDedupRequest()
	base.Threshold = domain.Float64Ptr(0.8)

	override := domain.DefaultDedupRequest()
	merged := NewConfigurationLoaderWithFlags(map[string]bool{"raw": true}).MergeConfig(base, override)
	require.NotNil(t, merged.Threshold)
	assert.Equal(t, 0.8, *merged.Threshold)

	// raw_candidates in the file is turned off by an explicit false
	base.Threshold = nil
	merged = NewConfigurationLoaderWithFlags(map[string]bool{"raw": true}).MergeConfig(base, override)
	require.NotNil(t, merged.Threshold)
	assert.Equal(t, 0.49, *merged.Threshold)
}

func TestConfigurationLoaderWithFlags_NilInputs(t *testing.T) {
	loader := NewConfigurationLoaderWithFlags(nil)
	req := domain.DefaultDedupRequest()

	assert.Same(t, req, loader.MergeConfig(nil, req))
	assert.Same(t, req, loader.MergeConfig(req, nil))
}
