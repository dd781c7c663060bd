package domain

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ludo-technologies/lshdedup/internal/constants"
)

// Record is one input row. Its internal id is its position in the
// concatenated input and is assigned by the reader's output order.
type Record struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// ReadOptions controls how record files are parsed
type ReadOptions struct {
	IDColumn   int
	TextColumn int
	HasHeader  bool
	Delimiter  string // empty selects by extension: tab for .tsv, comma otherwise
}

// DedupRequest represents a request for near-duplicate grouping
type DedupRequest struct {
	// Input parameters
	Paths           []string `json:"paths" yaml:"paths"`
	Recursive       bool     `json:"recursive" yaml:"recursive"`
	IncludePatterns []string `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns" yaml:"exclude_patterns"`
	IDColumn        int      `json:"id_column" yaml:"id_column"`
	TextColumn      int      `json:"text_column" yaml:"text_column"`
	HasHeader       bool     `json:"has_header" yaml:"has_header"`
	Delimiter       string   `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// Engine configuration
	NumPerm   int      `json:"num_perm" yaml:"num_perm"`
	NumBands  int      `json:"num_bands" yaml:"num_bands"`
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"` // nil links raw LSH candidates
	Seed      *uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`           // nil draws fresh permutations
	Workers   int      `json:"workers" yaml:"workers"`

	// Output configuration. OutputDir receives timestamped reports when
	// OutputPath is empty.
	OutputFormat  OutputFormat `json:"output_format" yaml:"output_format"`
	OutputWriter  io.Writer    `json:"-" yaml:"-"`
	OutputPath    string       `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	OutputDir     string       `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	ShowAllGroups bool         `json:"show_all_groups" yaml:"show_all_groups"` // include singletons in text output
	ShowProgress  bool         `json:"-" yaml:"-"`

	// Execution limits
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`

	// Configuration file
	ConfigPath string `json:"config_path,omitempty" yaml:"config_path,omitempty"`
}

// DedupRow is one output row: a record and the group it landed in
type DedupRow struct {
	InternalID int    `json:"internal_id" yaml:"internal_id"`
	RecordID   string `json:"record_id" yaml:"record_id"`
	Text       string `json:"text" yaml:"text"`
	GroupID    int    `json:"group_id" yaml:"group_id"`
	GroupSize  int    `json:"group_size" yaml:"group_size"`
}

// DedupGroup lists the internal ids of one duplicate group, ascending
type DedupGroup struct {
	ID      int   `json:"id" yaml:"id"`
	Size    int   `json:"size" yaml:"size"`
	Members []int `json:"members" yaml:"members"`
}

// IsDuplicate reports whether the group holds more than one record
func (g DedupGroup) IsDuplicate() bool { return g.Size > 1 }

// DedupStatistics summarizes a run
type DedupStatistics struct {
	FilesRead         int   `json:"files_read" yaml:"files_read"`
	TotalRecords      int   `json:"total_records" yaml:"total_records"`
	UniqueGroups      int   `json:"unique_groups" yaml:"unique_groups"`
	DuplicatesRemoved int   `json:"duplicates_removed" yaml:"duplicates_removed"`
	DuplicateGroups   int   `json:"duplicate_groups" yaml:"duplicate_groups"`
	LargestGroup      int   `json:"largest_group" yaml:"largest_group"`
	BuildDurationMs   int64 `json:"build_duration_ms" yaml:"build_duration_ms"`
	GroupDurationMs   int64 `json:"group_duration_ms" yaml:"group_duration_ms"`
}

// EngineParameters records the engine settings a run used
type EngineParameters struct {
	NumPerm         int      `json:"num_perm" yaml:"num_perm"`
	NumBands        int      `json:"num_bands" yaml:"num_bands"`
	BandSize        int      `json:"band_size" yaml:"band_size"`
	Threshold       *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Seed            *uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
	ApproxThreshold float64  `json:"approx_threshold" yaml:"approx_threshold"`
}

// DedupResponse represents the result of near-duplicate grouping
type DedupResponse struct {
	RunID       string           `json:"run_id" yaml:"run_id"`
	Groups      []DedupGroup     `json:"groups" yaml:"groups"`
	Rows        []DedupRow       `json:"rows" yaml:"rows"`
	Statistics  DedupStatistics  `json:"statistics" yaml:"statistics"`
	Parameters  EngineParameters `json:"parameters" yaml:"parameters"`
	Files       []string         `json:"files,omitempty" yaml:"files,omitempty"`
	Duration    int64            `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string           `json:"generated_at" yaml:"generated_at"`
	Version     string           `json:"version" yaml:"version"`
}

// DuplicateGroupsOnly returns the groups with more than one member
func (r *DedupResponse) DuplicateGroupsOnly() []DedupGroup {
	out := make([]DedupGroup, 0)
	for _, g := range r.Groups {
		if g.IsDuplicate() {
			out = append(out, g)
		}
	}
	return out
}

// DedupService defines the interface for the grouping engine
type DedupService interface {
	// Deduplicate groups records into near-duplicate sets
	Deduplicate(ctx context.Context, req *DedupRequest, records []Record) (*DedupResponse, error)

	// Query returns the indexed records similar to a text that is not in the index
	Query(ctx context.Context, req *QueryRequest, records []Record) (*QueryResponse, error)

	// Compare estimates the similarity of two texts
	Compare(ctx context.Context, req *CompareRequest) (*CompareResponse, error)

	// IndexStats builds an index over records and reports its shape
	IndexStats(ctx context.Context, req *StatsRequest, records []Record) (*StatsResponse, error)
}

// RecordReader defines the interface for locating and parsing input files
type RecordReader interface {
	// CollectInputFiles expands paths into the record files to read
	CollectInputFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// ReadRecords parses files in order and concatenates their rows
	ReadRecords(ctx context.Context, files []string, opts ReadOptions) ([]Record, error)
}

// DedupOutputFormatter defines the interface for formatting engine results
type DedupOutputFormatter interface {
	FormatDedupResponse(response *DedupResponse, format OutputFormat, showAll bool, writer io.Writer) error
	FormatQueryResponse(response *QueryResponse, format OutputFormat, writer io.Writer) error
	FormatCompareResponse(response *CompareResponse, format OutputFormat, writer io.Writer) error
	FormatStatsResponse(response *StatsResponse, format OutputFormat, writer io.Writer) error
}

// DedupConfigurationLoader defines the interface for loading configuration
type DedupConfigurationLoader interface {
	// LoadConfig resolves defaults, the .lshdedup.toml discovered from
	// startDir, the explicit configPath (may be empty) and environment
	// overrides, in increasing precedence
	LoadConfig(configPath, startDir string) (*DedupRequest, error)

	// MergeConfig applies explicitly set command-line values over base
	MergeConfig(base *DedupRequest, override *DedupRequest) *DedupRequest
}

// Validation methods

// Validate validates a dedup request
func (req *DedupRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewValidationError("paths cannot be empty")
	}
	if err := req.ValidateEngine(); err != nil {
		return err
	}
	if err := req.ReadOptions().Validate(); err != nil {
		return err
	}
	if req.OutputFormat != "" && !req.OutputFormat.IsValid() {
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}
	if req.TimeoutSeconds < 0 {
		return NewValidationError("timeout_seconds must be >= 0")
	}
	return nil
}

// ValidateEngine checks the engine parameters only. Band layout problems are
// configuration errors and are reported before any input is read.
func (req *DedupRequest) ValidateEngine() error {
	if req.NumPerm <= 0 {
		return NewConfigError(fmt.Sprintf("num_perm must be positive, got %d", req.NumPerm), nil)
	}
	if req.NumBands <= 0 {
		return NewConfigError(fmt.Sprintf("num_bands must be positive, got %d", req.NumBands), nil)
	}
	if req.NumPerm%req.NumBands != 0 {
		return NewConfigError(
			fmt.Sprintf("num_bands %d does not evenly divide num_perm %d", req.NumBands, req.NumPerm), nil)
	}
	if req.Threshold != nil && !(*req.Threshold >= 0.0 && *req.Threshold <= 1.0) {
		return NewValidationError("threshold must be between 0.0 and 1.0")
	}
	if req.Workers < 0 {
		return NewValidationError("workers must be >= 0")
	}
	return nil
}

// ReadOptions extracts the parsing options of the request
func (req *DedupRequest) ReadOptions() ReadOptions {
	return ReadOptions{
		IDColumn:   req.IDColumn,
		TextColumn: req.TextColumn,
		HasHeader:  req.HasHeader,
		Delimiter:  req.Delimiter,
	}
}

// Validate validates read options
func (o ReadOptions) Validate() error {
	if o.IDColumn < 0 {
		return NewValidationError("id_column must be >= 0")
	}
	if o.TextColumn < 0 {
		return NewValidationError("text_column must be >= 0")
	}
	if o.Delimiter != "" && utf8.RuneCountInString(o.Delimiter) != 1 {
		return NewValidationError("delimiter must be a single character")
	}
	return nil
}

// DefaultDedupRequest returns a default dedup request
func DefaultDedupRequest() *DedupRequest {
	return &DedupRequest{
		Paths:           []string{"."},
		Recursive:       true,
		IncludePatterns: append([]string(nil), constants.DefaultIncludePatterns...),
		ExcludePatterns: []string{},
		IDColumn:        constants.DefaultIDColumn,
		TextColumn:      constants.DefaultTextColumn,
		HasHeader:       constants.DefaultHasHeader,
		NumPerm:         constants.DefaultNumPerm,
		NumBands:        constants.DefaultNumBands,
		Threshold:       Float64Ptr(constants.DefaultThreshold),
		OutputFormat:    OutputFormatText,
		OutputDir:       constants.DefaultOutputDir,
		TimeoutSeconds:  constants.DefaultTimeoutSeconds,
	}
}

// Helper functions for optional values

// Float64Ptr creates a pointer to a float64 value
func Float64Ptr(f float64) *float64 {
	return &f
}

// Uint64Ptr creates a pointer to a uint64 value
func Uint64Ptr(v uint64) *uint64 {
	return &v
}
