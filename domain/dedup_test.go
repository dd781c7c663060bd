package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *DedupRequest {
	req := DefaultDedupRequest()
	req.Paths = []string{"records.csv"}
	return req
}

func TestDedupRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*DedupRequest)
		wantCode string
	}{
		{"defaults", func(r *DedupRequest) {}, ""},
		{"empty paths", func(r *DedupRequest) { r.Paths = nil }, ErrCodeInvalidInput},
		{"bands do not divide", func(r *DedupRequest) { r.NumBands = 7 }, ErrCodeConfigError},
		{"zero perm", func(r *DedupRequest) { r.NumPerm = 0 }, ErrCodeConfigError},
		{"negative bands", func(r *DedupRequest) { r.NumBands = -4 }, ErrCodeConfigError},
		{"threshold above one", func(r *DedupRequest) { r.Threshold = Float64Ptr(1.2) }, ErrCodeInvalidInput},
		{"threshold negative", func(r *DedupRequest) { r.Threshold = Float64Ptr(-0.1) }, ErrCodeInvalidInput},
		{"threshold NaN", func(r *DedupRequest) { r.Threshold = Float64Ptr(math.NaN()) }, ErrCodeInvalidInput},
		{"nil threshold", func(r *DedupRequest) { r.Threshold = nil }, ""},
		{"threshold bounds inclusive", func(r *DedupRequest) { r.Threshold = Float64Ptr(1.0) }, ""},
		{"negative id column", func(r *DedupRequest) { r.IDColumn = -1 }, ErrCodeInvalidInput},
		{"negative text column", func(r *DedupRequest) { r.TextColumn = -1 }, ErrCodeInvalidInput},
		{"multi character delimiter", func(r *DedupRequest) { r.Delimiter = ";;" }, ErrCodeInvalidInput},
		{"tab delimiter", func(r *DedupRequest) { r.Delimiter = "\t" }, ""},
		{"unknown format", func(r *DedupRequest) { r.OutputFormat = "html" }, ErrCodeUnsupportedFormat},
		{"negative workers", func(r *DedupRequest) { r.Workers = -1 }, ErrCodeInvalidInput},
		{"negative timeout", func(r *DedupRequest) { r.TimeoutSeconds = -5 }, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(req)
			err := req.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestDedupRequest_BandErrorMessage(t *testing.T) {
	req := validRequest()
	req.NumPerm, req.NumBands = 64, 7

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_bands 7 does not evenly divide num_perm 64")
}

func TestDefaultDedupRequest(t *testing.T) {
	req := DefaultDedupRequest()

	assert.Equal(t, 64, req.NumPerm)
	assert.Equal(t, 16, req.NumBands)
	require.NotNil(t, req.Threshold)
	assert.Equal(t, 0.49, *req.Threshold)
	assert.Equal(t, 0, req.IDColumn)
	assert.Equal(t, 1, req.TextColumn)
	assert.False(t, req.HasHeader)
	assert.Nil(t, req.Seed)
	assert.Equal(t, OutputFormatText, req.OutputFormat)
	assert.NotEmpty(t, req.IncludePatterns)
}

func TestDefaultDedupRequest_IndependentSlices(t *testing.T) {
	a := DefaultDedupRequest()
	b := DefaultDedupRequest()
	a.IncludePatterns[0] = "changed"

	assert.NotEqual(t, "changed", b.IncludePatterns[0])
}

func TestDedupResponse_DuplicateGroupsOnly(t *testing.T) {
	resp := &DedupResponse{Groups: []DedupGroup{
		{ID: 0, Size: 2, Members: []int{0, 1}},
		{ID: 1, Size: 1, Members: []int{2}},
		{ID: 2, Size: 3, Members: []int{3, 4, 5}},
	}}

	dups := resp.DuplicateGroupsOnly()
	require.Len(t, dups, 2)
	assert.Equal(t, 0, dups[0].ID)
	assert.Equal(t, 2, dups[1].ID)

	assert.Empty(t, (&DedupResponse{}).DuplicateGroupsOnly())
}

func TestQueryRequest_Validate(t *testing.T) {
	req := &QueryRequest{DedupRequest: *validRequest()}
	assert.True(t, HasCode(req.Validate(), ErrCodeInvalidInput))

	req.Text = "the cat sat"
	assert.NoError(t, req.Validate())
}

func TestCompareRequest_Validate(t *testing.T) {
	assert.True(t, HasCode((&CompareRequest{NumPerm: 0}).Validate(), ErrCodeConfigError))
	assert.True(t, HasCode((&CompareRequest{NumPerm: 64, OutputFormat: "xml"}).Validate(), ErrCodeUnsupportedFormat))
	assert.NoError(t, (&CompareRequest{NumPerm: 64}).Validate())
}

func TestStatsRequest_Validate(t *testing.T) {
	req := &StatsRequest{DedupRequest: *validRequest(), Target: Float64Ptr(1.5)}
	assert.Error(t, req.Validate())

	req.Target = Float64Ptr(math.NaN())
	assert.Error(t, req.Validate())

	req.Target = Float64Ptr(0.7)
	assert.NoError(t, req.Validate())
}

func TestDomainError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRowParseError("data.csv", 12, cause)

	assert.Equal(t, "[PARSE_ERROR] failed to parse data.csv:12: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(err, ErrCodeParseError))
	assert.False(t, HasCode(cause, ErrCodeParseError))

	internal := NewInternalError("partition check failed", nil)
	assert.Equal(t, "[INTERNAL_ERROR] partition check failed", internal.Error())
}

func TestOutputFormat_IsValid(t *testing.T) {
	for _, f := range SupportedOutputFormats {
		assert.True(t, f.IsValid())
	}
	assert.False(t, OutputFormat("html").IsValid())
	assert.False(t, OutputFormat("").IsValid())
}
