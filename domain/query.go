package domain

import "io"

// QueryRequest looks up one text against an index built from the request's inputs
type QueryRequest struct {
	DedupRequest

	Text string `json:"text" yaml:"text"`
	Raw  bool   `json:"raw" yaml:"raw"` // ignore the threshold and return every LSH candidate
}

// Validate validates a query request
func (req *QueryRequest) Validate() error {
	if req.Text == "" {
		return NewValidationError("query text cannot be empty")
	}
	return req.DedupRequest.Validate()
}

// QueryMatch is one indexed record returned for a query
type QueryMatch struct {
	InternalID int     `json:"internal_id" yaml:"internal_id"`
	RecordID   string  `json:"record_id" yaml:"record_id"`
	Text       string  `json:"text" yaml:"text"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// QueryResponse holds the matches for a query, ascending by internal id
type QueryResponse struct {
	RunID        string       `json:"run_id" yaml:"run_id"`
	Text         string       `json:"text" yaml:"text"`
	Threshold    *float64     `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Matches      []QueryMatch `json:"matches" yaml:"matches"`
	TotalRecords int          `json:"total_records" yaml:"total_records"`
	Duration     int64        `json:"duration_ms" yaml:"duration_ms"`
}

// CompareRequest estimates the similarity of two standalone texts
type CompareRequest struct {
	Text1        string       `json:"text1" yaml:"text1"`
	Text2        string       `json:"text2" yaml:"text2"`
	NumPerm      int          `json:"num_perm" yaml:"num_perm"`
	Seed         *uint64      `json:"seed,omitempty" yaml:"seed,omitempty"`
	OutputFormat OutputFormat `json:"output_format" yaml:"output_format"`
	OutputWriter io.Writer    `json:"-" yaml:"-"`
}

// Validate validates a compare request
func (req *CompareRequest) Validate() error {
	if req.NumPerm <= 0 {
		return NewConfigError("num_perm must be positive", nil)
	}
	if req.OutputFormat != "" && !req.OutputFormat.IsValid() {
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}
	return nil
}

// CompareResponse reports the MinHash estimate next to the exact Jaccard value
type CompareResponse struct {
	Estimated     float64 `json:"estimated" yaml:"estimated"`
	Exact         float64 `json:"exact" yaml:"exact"`
	AbsoluteError float64 `json:"absolute_error" yaml:"absolute_error"`
	NumPerm       int     `json:"num_perm" yaml:"num_perm"`
	Tokens1       int     `json:"tokens1" yaml:"tokens1"`
	Tokens2       int     `json:"tokens2" yaml:"tokens2"`
}

// StatsRequest builds an index over the request's inputs and describes it
type StatsRequest struct {
	DedupRequest

	// Target, when set, asks for the band count whose curve midpoint is closest to it
	Target *float64 `json:"target,omitempty" yaml:"target,omitempty"`
}

// Validate validates a stats request
func (req *StatsRequest) Validate() error {
	if req.Target != nil && !(*req.Target >= 0.0 && *req.Target <= 1.0) {
		return NewValidationError("target must be between 0.0 and 1.0")
	}
	return req.DedupRequest.Validate()
}

// IndexStatistics describes band bucket occupancy
type IndexStatistics struct {
	NumRecords       int     `json:"num_records" yaml:"num_records"`
	NumPerm          int     `json:"num_perm" yaml:"num_perm"`
	NumBands         int     `json:"num_bands" yaml:"num_bands"`
	BandSize         int     `json:"band_size" yaml:"band_size"`
	NumBuckets       int     `json:"num_buckets" yaml:"num_buckets"`
	SharedBuckets    int     `json:"shared_buckets" yaml:"shared_buckets"`
	MinBucketSize    int     `json:"min_bucket_size" yaml:"min_bucket_size"`
	MaxBucketSize    int     `json:"max_bucket_size" yaml:"max_bucket_size"`
	AvgBucketSize    float64 `json:"avg_bucket_size" yaml:"avg_bucket_size"`
	MedianBucketSize float64 `json:"median_bucket_size" yaml:"median_bucket_size"`
	StdDevBucketSize float64 `json:"stddev_bucket_size" yaml:"stddev_bucket_size"`
	ApproxThreshold  float64 `json:"approx_threshold" yaml:"approx_threshold"`
}

// CurvePoint is the chance that a pair of the given similarity becomes a candidate
type CurvePoint struct {
	Similarity           float64 `json:"similarity" yaml:"similarity"`
	CandidateProbability float64 `json:"candidate_probability" yaml:"candidate_probability"`
}

// BandSuggestion is the band layout closest to a target threshold
type BandSuggestion struct {
	Target          float64 `json:"target" yaml:"target"`
	NumBands        int     `json:"num_bands" yaml:"num_bands"`
	BandSize        int     `json:"band_size" yaml:"band_size"`
	ApproxThreshold float64 `json:"approx_threshold" yaml:"approx_threshold"`
}

// ThresholdRates evaluates the band layout at the configured threshold.
// FalsePositiveRate is the chance that a pair at the threshold, and so just
// short of it, is still compared; FalseNegativeRate is the chance that such
// a pair shares no band and is missed.
type ThresholdRates struct {
	Threshold         float64 `json:"threshold" yaml:"threshold"`
	FalsePositiveRate float64 `json:"false_positive_rate" yaml:"false_positive_rate"`
	FalseNegativeRate float64 `json:"false_negative_rate" yaml:"false_negative_rate"`
}

// StatsResponse reports index shape and the banding curve
type StatsResponse struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	Index      IndexStatistics `json:"index" yaml:"index"`
	Curve      []CurvePoint    `json:"curve" yaml:"curve"`
	Rates      *ThresholdRates `json:"threshold_rates,omitempty" yaml:"threshold_rates,omitempty"`
	Suggestion *BandSuggestion `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Duration   int64           `json:"duration_ms" yaml:"duration_ms"`
}
