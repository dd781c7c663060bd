package app

import "github.com/ludo-technologies/lshdedup/domain"

// ResolveRecordFiles expands the request's input paths into the ordered list
// of record files to read.
//
// Files named directly are kept even when they miss the include patterns;
// directories are filtered by include and exclude patterns and descend only
// when the request is recursive. An empty result is not an error: the run
// proceeds with no records and reports zero groups.
func ResolveRecordFiles(reader domain.RecordReader, req *domain.DedupRequest) ([]string, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewValidationError("paths cannot be empty")
	}

	files, err := reader.CollectInputFiles(
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, err
	}

	return files, nil
}
