package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/logger"
	"github.com/ludo-technologies/lshdedup/service"
)

// Report names used for timestamped output files
const (
	reportDedupe = "dedupe"
	reportQuery  = "query"
	reportStats  = "stats"
)

// StdoutPath as an output path forces non-text reports onto the output writer
const StdoutPath = "-"

// DedupUseCase orchestrates reading record files, running the grouping
// engine and writing the report
type DedupUseCase struct {
	service      domain.DedupService
	reader       domain.RecordReader
	formatter    domain.DedupOutputFormatter
	configLoader domain.DedupConfigurationLoader
	output       domain.ReportWriter
	log          *logger.Logger
	now          func() time.Time
}

// NewDedupUseCase creates a new dedup use case
func NewDedupUseCase(
	service domain.DedupService,
	reader domain.RecordReader,
	formatter domain.DedupOutputFormatter,
	configLoader domain.DedupConfigurationLoader,
	output domain.ReportWriter,
	log *logger.Logger,
) *DedupUseCase {
	if log == nil {
		log = logger.Noop()
	}
	return &DedupUseCase{
		service:      service,
		reader:       reader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       output,
		log:          log.WithComponent("usecase"),
		now:          time.Now,
	}
}

// Execute groups the records found under req.Paths and writes the report
func (uc *DedupUseCase) Execute(ctx context.Context, req domain.DedupRequest) error {
	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return err
	}
	if err := finalReq.Validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, finalReq.TimeoutSeconds)
	defer cancel()

	records, err := uc.readRecords(ctx, finalReq)
	if err != nil {
		return timeoutError(err, finalReq.TimeoutSeconds)
	}

	response, err := uc.service.Deduplicate(ctx, finalReq, records)
	if err != nil {
		return timeoutError(err, finalReq.TimeoutSeconds)
	}

	uc.log.InfoContext(ctx, "grouping finished",
		"run_id", response.RunID,
		"records", response.Statistics.TotalRecords,
		"groups", response.Statistics.UniqueGroups,
		"duplicates", response.Statistics.DuplicatesRemoved,
	)

	return uc.writeReport(finalReq, reportDedupe, func(w io.Writer) error {
		return uc.formatter.FormatDedupResponse(response, finalReq.OutputFormat, finalReq.ShowAllGroups, w)
	})
}

// Query looks up req.Text against an index built from req.Paths
func (uc *DedupUseCase) Query(ctx context.Context, req domain.QueryRequest) error {
	merged, err := uc.loadAndMergeConfig(req.DedupRequest)
	if err != nil {
		return err
	}
	req.DedupRequest = *merged
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, req.TimeoutSeconds)
	defer cancel()

	records, err := uc.readRecords(ctx, &req.DedupRequest)
	if err != nil {
		return timeoutError(err, req.TimeoutSeconds)
	}

	response, err := uc.service.Query(ctx, &req, records)
	if err != nil {
		return timeoutError(err, req.TimeoutSeconds)
	}

	return uc.writeReport(&req.DedupRequest, reportQuery, func(w io.Writer) error {
		return uc.formatter.FormatQueryResponse(response, req.OutputFormat, w)
	})
}

// Compare estimates the similarity of two texts. It reads no files and
// always writes to req.OutputWriter.
func (uc *DedupUseCase) Compare(ctx context.Context, req domain.CompareRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.OutputFormat == "" {
		req.OutputFormat = domain.OutputFormatText
	}

	response, err := uc.service.Compare(ctx, &req)
	if err != nil {
		return err
	}

	return uc.output.Write(req.OutputWriter, "", req.OutputFormat, func(w io.Writer) error {
		return uc.formatter.FormatCompareResponse(response, req.OutputFormat, w)
	})
}

// Stats builds an index over req.Paths and reports bucket occupancy and the
// candidate probability curve
func (uc *DedupUseCase) Stats(ctx context.Context, req domain.StatsRequest) error {
	merged, err := uc.loadAndMergeConfig(req.DedupRequest)
	if err != nil {
		return err
	}
	req.DedupRequest = *merged
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, req.TimeoutSeconds)
	defer cancel()

	records, err := uc.readRecords(ctx, &req.DedupRequest)
	if err != nil {
		return timeoutError(err, req.TimeoutSeconds)
	}

	response, err := uc.service.IndexStats(ctx, &req, records)
	if err != nil {
		return timeoutError(err, req.TimeoutSeconds)
	}

	return uc.writeReport(&req.DedupRequest, reportStats, func(w io.Writer) error {
		return uc.formatter.FormatStatsResponse(response, req.OutputFormat, w)
	})
}

// loadAndMergeConfig resolves file configuration discovered from the first
// input path and applies the request's explicit values over it
func (uc *DedupUseCase) loadAndMergeConfig(req domain.DedupRequest) (*domain.DedupRequest, error) {
	if uc.configLoader == nil {
		return &req, nil
	}

	startDir := "."
	if len(req.Paths) > 0 {
		startDir = req.Paths[0]
	}
	base, err := uc.configLoader.LoadConfig(req.ConfigPath, startDir)
	if err != nil {
		return nil, err
	}
	return uc.configLoader.MergeConfig(base, &req), nil
}

func (uc *DedupUseCase) readRecords(ctx context.Context, req *domain.DedupRequest) ([]domain.Record, error) {
	files, err := ResolveRecordFiles(uc.reader, req)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		uc.log.WarnContext(ctx, "no record files matched", "paths", req.Paths)
		return []domain.Record{}, nil
	}

	start := uc.now()
	records, err := uc.reader.ReadRecords(ctx, files, req.ReadOptions())
	if err != nil {
		return nil, err
	}
	uc.log.LogPhase(ctx, "read", uc.now().Sub(start), "files", len(files), "records", len(records))
	return records, nil
}

// writeReport sends the report to the output path, a timestamped file in
// the output directory for non-text formats, or the output writer
func (uc *DedupUseCase) writeReport(req *domain.DedupRequest, command string, writeFunc func(io.Writer) error) error {
	path := uc.reportPath(req, command)
	return uc.output.Write(req.OutputWriter, path, req.OutputFormat, writeFunc)
}

func (uc *DedupUseCase) reportPath(req *domain.DedupRequest, command string) string {
	switch {
	case req.OutputPath == StdoutPath:
		return ""
	case req.OutputPath != "":
		return req.OutputPath
	case req.OutputFormat != domain.OutputFormatText && req.OutputDir != "":
		return service.TimestampedReportPath(req.OutputDir, command, string(req.OutputFormat), uc.now())
	default:
		return ""
	}
}

func withTimeout(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

func timeoutError(err error, seconds int) error {
	if seconds > 0 && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("run exceeded the %ds timeout: %w", seconds, err)
	}
	return err
}

// DedupUseCaseBuilder provides a builder pattern for creating DedupUseCase
type DedupUseCaseBuilder struct {
	service      domain.DedupService
	reader       domain.RecordReader
	formatter    domain.DedupOutputFormatter
	configLoader domain.DedupConfigurationLoader
	output       domain.ReportWriter
	log          *logger.Logger
}

// NewDedupUseCaseBuilder creates a new builder
func NewDedupUseCaseBuilder() *DedupUseCaseBuilder {
	return &DedupUseCaseBuilder{}
}

// WithService sets the grouping engine
func (b *DedupUseCaseBuilder) WithService(service domain.DedupService) *DedupUseCaseBuilder {
	b.service = service
	return b
}

// WithRecordReader sets the record reader
func (b *DedupUseCaseBuilder) WithRecordReader(reader domain.RecordReader) *DedupUseCaseBuilder {
	b.reader = reader
	return b
}

// WithFormatter sets the output formatter
func (b *DedupUseCaseBuilder) WithFormatter(formatter domain.DedupOutputFormatter) *DedupUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *DedupUseCaseBuilder) WithConfigLoader(configLoader domain.DedupConfigurationLoader) *DedupUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer
func (b *DedupUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *DedupUseCaseBuilder {
	b.output = output
	return b
}

// WithLogger sets the logger
func (b *DedupUseCaseBuilder) WithLogger(log *logger.Logger) *DedupUseCaseBuilder {
	b.log = log
	return b
}

// Build creates the DedupUseCase. The formatter and report writer default
// to the service implementations; the configuration loader is optional.
func (b *DedupUseCaseBuilder) Build() (*DedupUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("dedup service is required")
	}
	if b.reader == nil {
		return nil, fmt.Errorf("record reader is required")
	}
	if b.formatter == nil {
		b.formatter = service.NewDedupOutputFormatter()
	}
	if b.output == nil {
		b.output = service.NewFileOutputWriter(nil)
	}

	return NewDedupUseCase(b.service, b.reader, b.formatter, b.configLoader, b.output, b.log), nil
}
