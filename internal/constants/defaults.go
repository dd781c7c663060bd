package constants

// Engine defaults. The banding of 16 bands of 4 rows puts the steepest point
// of the candidate curve at (1/16)^(1/4) = 0.5, just above DefaultThreshold.
const (
	// DefaultNumPerm is the MinHash signature length
	DefaultNumPerm = 64

	// DefaultNumBands is the number of LSH band tables
	DefaultNumBands = 16

	// DefaultThreshold is the minimum estimated similarity for two records to be linked
	DefaultThreshold = 0.49
)

// Input defaults
const (
	DefaultIDColumn   = 0
	DefaultTextColumn = 1
	DefaultHasHeader  = false
)

// Output and discovery defaults
const (
	// ConfigFileName is the project configuration file discovered by walking up from the input
	ConfigFileName = ".lshdedup.toml"

	// EnvPrefix prefixes environment overrides, e.g. LSHDEDUP_LSH_NUM_BANDS
	EnvPrefix = "LSHDEDUP"

	// DefaultOutputDir receives non-text reports when no output path is given
	DefaultOutputDir = ".lshdedup/reports"

	// DefaultTimeoutSeconds bounds a whole run; 0 disables the limit
	DefaultTimeoutSeconds = 0
)

// DefaultIncludePatterns select the record files picked up from directories
var DefaultIncludePatterns = []string{
	"**/*.csv",
	"**/*.tsv",
	"**/*.csv.gz",
	"**/*.csv.zst",
	"**/*.csv.lz4",
}

// CurveSamples are the similarities at which the stats command evaluates
// the candidate probability curve
var CurveSamples = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
