package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"text/template"

	"github.com/ludo-technologies/lshdedup/internal/constants"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from the constants package.
type DefaultConfigValues struct {
	IncludePatterns []string
	IDColumn        int
	TextColumn      int
	HasHeader       bool
	NumPerm         int
	NumBands        int
	Threshold       float64
	ApproxThreshold float64
	OutputDir       string
	TimeoutSeconds  int
}

func newDefaultConfigValues() DefaultConfigValues {
	rows := constants.DefaultNumPerm / constants.DefaultNumBands
	return DefaultConfigValues{
		IncludePatterns: constants.DefaultIncludePatterns,
		IDColumn:        constants.DefaultIDColumn,
		TextColumn:      constants.DefaultTextColumn,
		HasHeader:       constants.DefaultHasHeader,
		NumPerm:         constants.DefaultNumPerm,
		NumBands:        constants.DefaultNumBands,
		Threshold:       constants.DefaultThreshold,
		ApproxThreshold: math.Pow(1.0/float64(constants.DefaultNumBands), 1.0/float64(rows)),
		OutputDir:       constants.DefaultOutputDir,
		TimeoutSeconds:  constants.DefaultTimeoutSeconds,
	}
}

// GenerateDefaultConfigTOML renders the default config template and returns
// the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}
