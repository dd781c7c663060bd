package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/logger"
	"github.com/pierrec/lz4/v4"
)

// rows between context checks while parsing
const cancelCheckInterval = 4096

// FileReaderImpl implements domain.RecordReader for delimited text files,
// optionally compressed with gzip, zstd or lz4.
type FileReaderImpl struct {
	executor domain.ParallelExecutor
	workers  int
	log      *logger.Logger
}

// NewFileReader creates a record reader that parses files on a bounded pool
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{
		executor: NewParallelExecutor(),
		log:      logger.Noop(),
	}
}

// WithWorkers bounds how many files are parsed at once; zero keeps the default
func (f *FileReaderImpl) WithWorkers(n int) *FileReaderImpl {
	f.workers = n
	return f
}

// WithLogger sets the logger used for skipped inputs
func (f *FileReaderImpl) WithLogger(l *logger.Logger) *FileReaderImpl {
	if l != nil {
		f.log = l
	}
	return f
}

// CollectInputFiles expands paths into record files. Directories are walked
// in lexical order; files named explicitly are kept unless excluded.
func (f *FileReaderImpl) CollectInputFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			if !f.isExcluded(path, path, excludePatterns) {
				add(path)
			}
			continue
		}

		dirFiles, err := f.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		for _, file := range dirFiles {
			add(file)
		}
	}

	return files, nil
}

func (f *FileReaderImpl) collectFromDirectory(root string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			f.log.LogSkipped(context.Background(), path, err.Error())
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") || f.isExcluded(path, rel, excludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if f.isIncluded(rel, includePatterns) && !f.isExcluded(path, rel, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(root, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}
	return files, nil
}

// isIncluded matches rel, a slash separated path below the walk root
func (f *FileReaderImpl) isIncluded(rel string, includePatterns []string) bool {
	if len(includePatterns) == 0 {
		return true
	}
	base := filepath.Base(rel)
	for _, pattern := range includePatterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (f *FileReaderImpl) isExcluded(path, rel string, excludePatterns []string) bool {
	slashPath := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range excludePatterns {
		for _, candidate := range []string{rel, slashPath, base} {
			if matched, _ := doublestar.Match(pattern, candidate); matched {
				return true
			}
		}
	}
	return false
}

// ReadRecords parses every file and concatenates the rows in file order, so a
// record's position in the result is its internal id.
func (f *FileReaderImpl) ReadRecords(ctx context.Context, files []string, opts domain.ReadOptions) ([]domain.Record, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []domain.Record{}, nil
	}

	perFile := make([][]domain.Record, len(files))
	tasks := make([]domain.ExecutableTask, len(files))
	for i, file := range files {
		tasks[i] = NewSimpleTask(file, true, func(ctx context.Context) (interface{}, error) {
			records, err := f.readFile(ctx, file, opts)
			if err != nil {
				return nil, err
			}
			perFile[i] = records
			return len(records), nil
		})
	}

	if f.workers > 0 {
		f.executor.SetMaxConcurrency(f.workers)
	}
	if err := f.executor.Execute(ctx, tasks); err != nil {
		return nil, err
	}

	total := 0
	for _, records := range perFile {
		total += len(records)
	}
	out := make([]domain.Record, 0, total)
	for _, records := range perFile {
		out = append(out, records...)
	}
	return out, nil
}

func (f *FileReaderImpl) readFile(ctx context.Context, path string, opts domain.ReadOptions) ([]domain.Record, error) {
	stream, err := openRecordStream(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	r := csv.NewReader(stream)
	r.Comma = delimiterFor(path, opts.Delimiter)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	need := max(opts.IDColumn, opts.TextColumn) + 1
	var records []domain.Record
	for row := 0; ; row++ {
		if row%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, domain.NewRowParseError(path, pe.StartLine, pe.Err)
			}
			return nil, domain.NewParseError(path, err)
		}

		line, _ := r.FieldPos(0)
		if row == 0 && opts.HasHeader {
			continue
		}
		if len(fields) < need {
			return nil, domain.NewRowParseError(path, line,
				fmt.Errorf("row has %d fields, need at least %d", len(fields), need))
		}

		records = append(records, domain.Record{
			ID:     fields[opts.IDColumn],
			Text:   fields[opts.TextColumn],
			Source: path,
			Line:   line,
		})
	}
	return records, nil
}

// compression suffixes understood by openRecordStream
var compressionSuffixes = []string{".gz", ".zst", ".lz4"}

// openRecordStream opens path and layers a decompressor chosen by extension
func openRecordStream(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, domain.NewParseError(path, fmt.Errorf("gzip: %w", err))
		}
		return &layeredReader{Reader: zr, closers: []io.Closer{zr, file}}, nil
	case ".zst":
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, domain.NewParseError(path, fmt.Errorf("zstd: %w", err))
		}
		rc := dec.IOReadCloser()
		return &layeredReader{Reader: rc, closers: []io.Closer{rc, file}}, nil
	case ".lz4":
		return &layeredReader{Reader: lz4.NewReader(file), closers: []io.Closer{file}}, nil
	default:
		return file, nil
	}
}

// layeredReader closes a decompressor and the file beneath it
type layeredReader struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredReader) Close() error {
	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// delimiterFor returns the explicit delimiter, or tab for .tsv files
// (after any compression suffix) and comma otherwise
func delimiterFor(path, explicit string) rune {
	if explicit != "" {
		return []rune(explicit)[0]
	}
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range compressionSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}
