package mcp

import (
	"io"

	"github.com/ludo-technologies/lshdedup/app"
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/logger"
	"github.com/ludo-technologies/lshdedup/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	reader     domain.RecordReader
	configPath string
	log        *logger.Logger
}

// NewDependencies constructs the dependency set. configPath may be empty to
// rely on .lshdedup.toml discovery from each tool's path.
func NewDependencies(configPath string, log *logger.Logger) *Dependencies {
	if log == nil {
		log = logger.Noop()
	}
	return &Dependencies{
		reader:     service.NewFileReader().WithLogger(log),
		configPath: configPath,
		log:        log,
	}
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BuildUseCase assembles a fresh DedupUseCase for one tool call. Only the
// arguments named in explicit override file configuration.
func (d *Dependencies) BuildUseCase(explicit map[string]bool) (*app.DedupUseCase, error) {
	// MCP owns stdout, so status lines and progress are suppressed
	return app.NewDedupUseCaseBuilder().
		WithService(service.NewDedupService(nil, d.log)).
		WithRecordReader(d.reader).
		WithFormatter(service.NewDedupOutputFormatter()).
		WithConfigLoader(service.NewConfigurationLoaderWithFlags(explicit)).
		WithOutputWriter(service.NewFileOutputWriter(io.Discard)).
		WithLogger(d.log).
		Build()
}
