package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCategorizer_DomainCodes(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		name string
		err  error
		want domain.ErrorCategory
	}{
		{"config", domain.NewConfigError("num_bands 7 does not evenly divide num_perm 64", nil), domain.ErrorCategoryConfig},
		{"validation", domain.NewValidationError("paths cannot be empty"), domain.ErrorCategoryInput},
		{"missing file", domain.NewFileNotFoundError("a.csv", nil), domain.ErrorCategoryInput},
		{"row", domain.NewRowParseError("a.csv", 3, errors.New("missing column")), domain.ErrorCategoryProcessing},
		{"internal", domain.NewInternalError("partition check failed", nil), domain.ErrorCategoryProcessing},
		{"format", domain.NewUnsupportedFormatError("html"), domain.ErrorCategoryOutput},
		{"wrapped", fmt.Errorf("dedupe: %w", domain.NewConfigError("bad", nil)), domain.ErrorCategoryConfig},
		{"deadline", fmt.Errorf("reading: %w", context.DeadlineExceeded), domain.ErrorCategoryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizer.Categorize(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Category)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestErrorCategorizer_Patterns(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		msg  string
		want domain.ErrorCategory
	}{
		{"operation timed out", domain.ErrorCategoryTimeout},
		{"failed to read toml", domain.ErrorCategoryConfig},
		{"open data.csv: no such file or directory", domain.ErrorCategoryInput},
		{"cannot create report", domain.ErrorCategoryOutput},
		{"zstd: failed to decompress block", domain.ErrorCategoryProcessing},
		{"something odd", domain.ErrorCategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got := categorizer.Categorize(errors.New(tt.msg))
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestErrorCategorizer_Nil(t *testing.T) {
	assert.Nil(t, NewErrorCategorizer().Categorize(nil))
}

func TestErrorCategorizer_UnknownKeepsMessage(t *testing.T) {
	got := NewErrorCategorizer().Categorize(errors.New("something odd"))
	assert.Equal(t, "something odd", got.Message)
}

func TestErrorCategorizer_Suggestions(t *testing.T) {
	categorizer := NewErrorCategorizer()
	categories := []domain.ErrorCategory{
		domain.ErrorCategoryInput,
		domain.ErrorCategoryConfig,
		domain.ErrorCategoryTimeout,
		domain.ErrorCategoryOutput,
		domain.ErrorCategoryProcessing,
		domain.ErrorCategoryUnknown,
	}
	for _, c := range categories {
		assert.NotEmpty(t, categorizer.GetRecoverySuggestions(c), string(c))
	}
	assert.Equal(t, []string{"Check the error message for more details"},
		categorizer.GetRecoverySuggestions(domain.ErrorCategory("other")))
}
