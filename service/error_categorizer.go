package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/lshdedup/domain"
)

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns lists message fragments per category, checked in
// order, for errors that carry no domain code
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"timed out",
			"deadline",
			"context canceled",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"num_perm",
			"num_bands",
			"toml",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no input files",
			"no such file",
			"file not found",
			"permission denied",
			"directory",
		}},
		{domain.ErrorCategoryOutput, []string{
			"output",
			"write",
			"cannot create",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"parse",
			"record",
			"column",
			"decompress",
			"internal",
		}},
	}
}

// categoryForCode maps domain error codes to categories
var categoryForCode = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
	domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
	domain.ErrCodeInternalError:     domain.ErrorCategoryProcessing,
	domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
	domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
	domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
}

// Categorize determines the category of an error. Domain codes win over
// message patterns.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := domain.ErrorCategoryUnknown
	var de domain.DomainError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		category = domain.ErrorCategoryTimeout
	case errors.As(err, &de):
		if c, ok := categoryForCode[de.Code]; ok {
			category = c
		}
	default:
		errMsg := strings.ToLower(err.Error())
		for _, cp := range ec.patterns {
			if containsAnyPattern(errMsg, cp.patterns) {
				category = cp.category
				break
			}
		}
	}

	message := err.Error()
	if category != domain.ErrorCategoryUnknown {
		message = ec.getCategoryMessage(category)
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the paths exist and contain .csv or .tsv files",
			"Compressed inputs must end in .gz, .zst or .lz4",
			"Use --include to widen the file patterns",
		},
		domain.ErrorCategoryConfig: {
			"num_bands must evenly divide num_perm",
			"Try: lshdedup init to generate a valid .lshdedup.toml",
			"Try: lshdedup stats --target 0.5 to pick a band count",
		},
		domain.ErrorCategoryTimeout: {
			"Increase --timeout or set it to 0 to disable it",
			"Lower --num-perm to shorten signature computation",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output path",
			"Supported formats are text, json, yaml and csv",
		},
		domain.ErrorCategoryProcessing: {
			"Check --id-column and --text-column against the file layout",
			"Use --header when the first row holds column names",
			"Use --delimiter for files that are not comma separated",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to locate input files",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Grouping timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Failed while reading or grouping records",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An unexpected error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
