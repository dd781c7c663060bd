package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/lshdedup/domain"
)

// OutputFormatResolver resolves output format and file extension from flags.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine evaluates the shorthand format flags and returns the selected
// format and extension. At most one of json/csv/yaml may be true; if none
// are, text is selected and the extension is empty.
func (r *OutputFormatResolver) Determine(json, csv, yaml bool) (domain.OutputFormat, string, error) {
	formatCount := 0
	format := domain.OutputFormatText

	if json {
		formatCount++
		format = domain.OutputFormatJSON
	}
	if csv {
		formatCount++
		format = domain.OutputFormatCSV
	}
	if yaml {
		formatCount++
		format = domain.OutputFormatYAML
	}

	if formatCount > 1 {
		return "", "", fmt.Errorf("only one output format flag can be specified")
	}
	return format, r.Extension(format), nil
}

// Parse resolves a --format value such as "JSON" or "yml"
func (r *OutputFormatResolver) Parse(value string) (domain.OutputFormat, string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "yml" {
		v = string(domain.OutputFormatYAML)
	}
	if v == "" {
		v = string(domain.OutputFormatText)
	}
	format := domain.OutputFormat(v)
	if !format.IsValid() {
		return "", "", domain.NewUnsupportedFormatError(value)
	}
	return format, r.Extension(format), nil
}

// Extension returns the report file extension for a format; text has none
func (r *OutputFormatResolver) Extension(format domain.OutputFormat) string {
	if format == domain.OutputFormatText {
		return ""
	}
	return string(format)
}
