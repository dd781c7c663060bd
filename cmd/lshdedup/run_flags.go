package main

import (
	"fmt"
	"os"

	"github.com/ludo-technologies/lshdedup/app"
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/constants"
	"github.com/ludo-technologies/lshdedup/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runFlags are the input, engine and output flags shared by the commands
// that build an index over record files
type runFlags struct {
	// Input
	recursive       bool
	includePatterns []string
	excludePatterns []string
	idColumn        int
	textColumn      int
	header          bool
	delimiter       string

	// Engine
	numPerm   int
	numBands  int
	threshold float64
	raw       bool
	seed      uint64
	workers   int

	// Output; only one of json/csv/yaml may be set
	format     string
	json       bool
	csv        bool
	yaml       bool
	output     string
	outputDir  string
	noProgress bool

	timeout int
}

func newRunFlags() *runFlags {
	return &runFlags{
		recursive:  true,
		idColumn:   constants.DefaultIDColumn,
		textColumn: constants.DefaultTextColumn,
		header:     constants.DefaultHasHeader,
		numPerm:    constants.DefaultNumPerm,
		numBands:   constants.DefaultNumBands,
		threshold:  constants.DefaultThreshold,
		format:     string(domain.OutputFormatText),
		outputDir:  constants.DefaultOutputDir,
		timeout:    constants.DefaultTimeoutSeconds,
	}
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	// Input flags
	fs.BoolVarP(&f.recursive, "recursive", "r", f.recursive, "Descend into subdirectories")
	fs.StringSliceVar(&f.includePatterns, "include", constants.DefaultIncludePatterns, "Glob patterns selecting record files in directories")
	fs.StringSliceVar(&f.excludePatterns, "exclude", nil, "Glob patterns excluding record files")
	fs.IntVar(&f.idColumn, "id-column", f.idColumn, "Zero-based column holding the record id")
	fs.IntVar(&f.textColumn, "text-column", f.textColumn, "Zero-based column holding the record text")
	fs.BoolVar(&f.header, "header", f.header, "Skip the first row of every file")
	fs.StringVar(&f.delimiter, "delimiter", "", "Field delimiter (default: tab for .tsv, comma otherwise)")

	// Engine flags
	fs.IntVar(&f.numPerm, "num-perm", f.numPerm, "MinHash signature length")
	fs.IntVar(&f.numBands, "num-bands", f.numBands, "Number of LSH bands; must divide --num-perm")
	fs.Float64VarP(&f.threshold, "threshold", "t", f.threshold, "Minimum estimated similarity to link two records (0.0-1.0)")
	fs.BoolVar(&f.raw, "raw", false, "Link every LSH candidate and ignore --threshold")
	fs.Uint64Var(&f.seed, "seed", 0, "Seed for reproducible permutations (default: random)")
	fs.IntVar(&f.workers, "workers", 0, "Worker goroutines (default: number of CPUs)")

	// Output flags
	fs.StringVarP(&f.format, "format", "f", f.format, "Output format: text, json, yaml or csv")
	fs.BoolVar(&f.json, "json", false, "Write a JSON report")
	fs.BoolVar(&f.csv, "csv", false, "Write a CSV report")
	fs.BoolVar(&f.yaml, "yaml", false, "Write a YAML report")
	fs.StringVarP(&f.output, "output", "o", "", "Report path; '-' writes non-text reports to stdout")
	fs.StringVar(&f.outputDir, "output-dir", f.outputDir, "Directory for timestamped non-text reports")
	fs.BoolVar(&f.noProgress, "no-progress", false, "Disable the progress bar")

	fs.IntVar(&f.timeout, "timeout", f.timeout, "Abort the run after this many seconds (0 disables)")
}

// outputFormat resolves --format and the shorthand format flags
func (f *runFlags) outputFormat(cmd *cobra.Command) (domain.OutputFormat, error) {
	resolver := service.NewOutputFormatResolver()
	shorthand := f.json || f.csv || f.yaml
	if shorthand && cmd.Flags().Changed("format") {
		return "", fmt.Errorf("--format cannot be combined with --json, --csv or --yaml")
	}
	if shorthand {
		format, _, err := resolver.Determine(f.json, f.csv, f.yaml)
		return format, err
	}
	format, _, err := resolver.Parse(f.format)
	return format, err
}

// toRequest builds the command-line half of a request; file configuration
// is merged over it by the use case, honoring only explicit flags
func (f *runFlags) toRequest(cmd *cobra.Command, paths []string) (*domain.DedupRequest, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	format, err := f.outputFormat(cmd)
	if err != nil {
		return nil, err
	}

	var threshold *float64
	if !f.raw {
		threshold = domain.Float64Ptr(f.threshold)
	}
	var seed *uint64
	if cmd.Flags().Changed("seed") {
		seed = domain.Uint64Ptr(f.seed)
	}
	configPath, _ := cmd.Flags().GetString("config")

	return &domain.DedupRequest{
		Paths:           paths,
		Recursive:       f.recursive,
		IncludePatterns: f.includePatterns,
		ExcludePatterns: f.excludePatterns,
		IDColumn:        f.idColumn,
		TextColumn:      f.textColumn,
		HasHeader:       f.header,
		Delimiter:       f.delimiter,
		NumPerm:         f.numPerm,
		NumBands:        f.numBands,
		Threshold:       threshold,
		Seed:            seed,
		Workers:         f.workers,
		OutputFormat:    format,
		OutputWriter:    cmd.OutOrStdout(),
		OutputPath:      f.output,
		OutputDir:       f.outputDir,
		ShowProgress:    !f.noProgress,
		TimeoutSeconds:  f.timeout,
		ConfigPath:      configPath,
	}, nil
}

// newUseCase wires the services behind one command invocation. The returned
// cleanup releases the progress bar.
func newUseCase(cmd *cobra.Command, workers int) (*app.DedupUseCase, func(), error) {
	log := newLogger(cmd)
	progress := service.NewProgressManager()
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		progress.SetWriter(w)
	}

	reader := service.NewFileReader().WithWorkers(workers).WithLogger(log)
	useCase, err := app.NewDedupUseCaseBuilder().
		WithService(service.NewDedupService(progress, log)).
		WithRecordReader(reader).
		WithFormatter(service.NewDedupOutputFormatter()).
		WithConfigLoader(service.NewConfigurationLoaderWithFlags(GetExplicitFlags(cmd))).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithLogger(log).
		Build()
	if err != nil {
		return nil, nil, err
	}
	return useCase, progress.Close, nil
}
