package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/analyzer"
	"github.com/ludo-technologies/lshdedup/internal/constants"
	"github.com/ludo-technologies/lshdedup/internal/logger"
	"github.com/ludo-technologies/lshdedup/internal/version"
)

// DedupServiceImpl implements domain.DedupService on top of the MinHash LSH
// index and the duplicate group builder
type DedupServiceImpl struct {
	progress domain.ProgressManager
	log      *logger.Logger
	now      func() time.Time
}

// NewDedupService creates a new dedup service.
// progress can be nil - the service can work without progress reporting
func NewDedupService(progress domain.ProgressManager, log *logger.Logger) *DedupServiceImpl {
	if log == nil {
		log = logger.Noop()
	}
	return &DedupServiceImpl{
		progress: progress,
		log:      log.WithComponent("dedup"),
		now:      time.Now,
	}
}

// Deduplicate indexes records and partitions them into near-duplicate groups
func (s *DedupServiceImpl) Deduplicate(ctx context.Context, req *domain.DedupRequest, records []domain.Record) (resp *domain.DedupResponse, err error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("dedup request cannot be nil", nil)
	}
	if err := req.ValidateEngine(); err != nil {
		return nil, err
	}
	defer recoverInternal(&err)

	start := s.now()
	runID := uuid.NewString()
	log := s.log.WithRun(runID)

	idx, buildElapsed, err := s.buildIndex(ctx, "Indexing records", req, records)
	if err != nil {
		return nil, err
	}
	log.LogPhase(ctx, "index", buildElapsed, "records", len(records), "bands", req.NumBands)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("grouping cancelled: %w", err)
	}

	groupStart := s.now()
	groups := analyzer.BuildDuplicateGroups(idx, req.Threshold)
	groupElapsed := s.now().Sub(groupStart)
	log.LogPhase(ctx, "group", groupElapsed, "groups", len(groups))

	rows := buildRows(groups, records)
	summary := analyzer.SummarizeGroups(groups)
	files := distinctSources(records)

	resp = &domain.DedupResponse{
		RunID:  runID,
		Groups: toDomainGroups(groups),
		Rows:   rows,
		Statistics: domain.DedupStatistics{
			FilesRead:         len(files),
			TotalRecords:      len(records),
			UniqueGroups:      summary.TotalGroups,
			DuplicatesRemoved: summary.DuplicatesFound,
			DuplicateGroups:   summary.DuplicateGroups,
			LargestGroup:      summary.LargestGroup,
			BuildDurationMs:   buildElapsed.Milliseconds(),
			GroupDurationMs:   groupElapsed.Milliseconds(),
		},
		Parameters:  engineParameters(req),
		Files:       files,
		Duration:    s.now().Sub(start).Milliseconds(),
		GeneratedAt: s.now().Format(time.RFC3339),
		Version:     version.Short(),
	}
	return resp, nil
}

// Query returns the indexed records whose estimated similarity to req.Text
// reaches the threshold. The text itself is never added to the index.
func (s *DedupServiceImpl) Query(ctx context.Context, req *domain.QueryRequest, records []domain.Record) (resp *domain.QueryResponse, err error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("query request cannot be nil", nil)
	}
	if req.Text == "" {
		return nil, domain.NewValidationError("query text cannot be empty")
	}
	if err := req.ValidateEngine(); err != nil {
		return nil, err
	}
	defer recoverInternal(&err)

	start := s.now()
	runID := uuid.NewString()

	idx, elapsed, err := s.buildIndex(ctx, "Indexing for query", &req.DedupRequest, records)
	if err != nil {
		return nil, err
	}
	s.log.WithRun(runID).LogPhase(ctx, "index", elapsed, "records", len(records))

	threshold := req.Threshold
	if req.Raw {
		threshold = nil
	}

	sig := idx.MinHasher().SignatureOf(req.Text)
	ids := idx.Query(sig, threshold)
	matches := make([]domain.QueryMatch, len(ids))
	for i, id := range ids {
		matches[i] = domain.QueryMatch{
			InternalID: id,
			RecordID:   records[id].ID,
			Text:       records[id].Text,
			Similarity: analyzer.EstimateJaccardSimilarity(sig, idx.Signature(id)),
		}
	}

	return &domain.QueryResponse{
		RunID:        runID,
		Text:         req.Text,
		Threshold:    threshold,
		Matches:      matches,
		TotalRecords: len(records),
		Duration:     s.now().Sub(start).Milliseconds(),
	}, nil
}

// Compare estimates the similarity of two texts and reports the exact
// Jaccard similarity of their token sets next to it
func (s *DedupServiceImpl) Compare(ctx context.Context, req *domain.CompareRequest) (*domain.CompareResponse, error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("compare request cannot be nil", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var perms *analyzer.PermutationSet
	var err error
	if req.Seed != nil {
		perms, err = analyzer.NewSeededPermutationSet(req.NumPerm, *req.Seed)
	} else {
		perms, err = analyzer.NewRandomPermutationSet(req.NumPerm)
	}
	if err != nil {
		return nil, domain.NewConfigError("failed to draw permutations", err)
	}

	hasher := analyzer.NewMinHasher(perms)
	tokens1 := analyzer.Tokenize(req.Text1)
	tokens2 := analyzer.Tokenize(req.Text2)
	estimated := analyzer.EstimateJaccardSimilarity(hasher.ComputeSignature(tokens1), hasher.ComputeSignature(tokens2))
	exact := analyzer.ComputeJaccardSimilarity(tokens1, tokens2)

	diff := estimated - exact
	if diff < 0 {
		diff = -diff
	}
	return &domain.CompareResponse{
		Estimated:     estimated,
		Exact:         exact,
		AbsoluteError: diff,
		NumPerm:       req.NumPerm,
		Tokens1:       len(uniqueTokens(tokens1)),
		Tokens2:       len(uniqueTokens(tokens2)),
	}, nil
}

// IndexStats builds an index over records and describes its buckets and
// the candidate probability curve of its band layout
func (s *DedupServiceImpl) IndexStats(ctx context.Context, req *domain.StatsRequest, records []domain.Record) (resp *domain.StatsResponse, err error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("stats request cannot be nil", nil)
	}
	if err := req.ValidateEngine(); err != nil {
		return nil, err
	}
	if req.Target != nil && !(*req.Target >= 0 && *req.Target <= 1) {
		return nil, domain.NewValidationError("target must be between 0.0 and 1.0")
	}
	defer recoverInternal(&err)

	start := s.now()
	runID := uuid.NewString()

	idx, elapsed, err := s.buildIndex(ctx, "Indexing for stats", &req.DedupRequest, records)
	if err != nil {
		return nil, err
	}
	s.log.WithRun(runID).LogPhase(ctx, "index", elapsed, "records", len(records))

	curve := make([]domain.CurvePoint, len(constants.CurveSamples))
	for i, sim := range constants.CurveSamples {
		curve[i] = domain.CurvePoint{Similarity: sim, CandidateProbability: idx.CandidateProbability(sim)}
	}

	resp = &domain.StatsResponse{
		RunID: runID,
		Index: domain.IndexStatistics(idx.Stats()),
		Curve: curve,
	}
	if req.Threshold != nil {
		t := *req.Threshold
		resp.Rates = &domain.ThresholdRates{
			Threshold:         t,
			FalsePositiveRate: idx.EstimateFalsePositiveRate(t),
			FalseNegativeRate: idx.EstimateFalseNegativeRate(t),
		}
	}
	if req.Target != nil {
		cfg := analyzer.ComputeOptimalBandParameters(req.NumPerm, *req.Target)
		resp.Suggestion = &domain.BandSuggestion{
			Target:          *req.Target,
			NumBands:        cfg.NumBands,
			BandSize:        cfg.BandSize(),
			ApproxThreshold: analyzer.ApproxThreshold(cfg.NumBands, cfg.BandSize()),
		}
	}
	resp.Duration = s.now().Sub(start).Milliseconds()
	return resp, nil
}

func (s *DedupServiceImpl) buildIndex(ctx context.Context, label string, req *domain.DedupRequest, records []domain.Record) (*analyzer.LSHIndex, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("indexing cancelled: %w", err)
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}

	config := analyzer.LSHConfig{NumPerm: req.NumPerm, NumBands: req.NumBands, Workers: req.Workers}
	var opts []analyzer.BuildOption
	if req.Seed != nil {
		opts = append(opts, analyzer.WithSeed(*req.Seed))
	}

	showProgress := s.progress != nil && req.ShowProgress && len(texts) > 0
	if showProgress {
		s.progress.SetDescription(label)
		s.progress.Initialize(len(texts))
		s.progress.Start()
		opts = append(opts, analyzer.WithProgress(s.progress.Update))
	}

	start := s.now()
	idx, err := analyzer.BuildLSHIndex(texts, config, opts...)
	if showProgress {
		s.progress.Complete(err == nil)
	}
	if err != nil {
		if errors.Is(err, analyzer.ErrInvalidBandConfig) {
			return nil, 0, domain.NewConfigError("invalid band configuration", err)
		}
		return nil, 0, domain.NewAnalysisError("failed to build LSH index", err)
	}
	return idx, s.now().Sub(start), nil
}

// recoverInternal turns the engine's consistency panics into INTERNAL_ERROR.
// Any other panic keeps unwinding.
func recoverInternal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok &&
		(errors.Is(err, analyzer.ErrInternalConsistency) || errors.Is(err, analyzer.ErrPartitionViolation)) {
		*errp = domain.NewInternalError("grouping invariant violated", err)
		return
	}
	panic(r)
}

// buildRows flattens groups into output rows. A record id emitted twice, or
// one never emitted, is an engine defect and panics.
func buildRows(groups []analyzer.DuplicateGroup, records []domain.Record) []domain.DedupRow {
	emitted := make([]bool, len(records))
	rows := make([]domain.DedupRow, 0, len(records))
	for _, g := range groups {
		for _, id := range g.Members {
			if emitted[id] {
				panic(fmt.Errorf("%w: record %d emitted twice", analyzer.ErrInternalConsistency, id))
			}
			emitted[id] = true
			rows = append(rows, domain.DedupRow{
				InternalID: id,
				RecordID:   records[id].ID,
				Text:       records[id].Text,
				GroupID:    g.ID,
				GroupSize:  g.Size(),
			})
		}
	}
	if len(rows) != len(records) {
		panic(fmt.Errorf("%w: %d of %d records emitted", analyzer.ErrInternalConsistency, len(rows), len(records)))
	}
	return rows
}

func toDomainGroups(groups []analyzer.DuplicateGroup) []domain.DedupGroup {
	out := make([]domain.DedupGroup, len(groups))
	for i, g := range groups {
		out[i] = domain.DedupGroup{ID: g.ID, Size: g.Size(), Members: g.Members}
	}
	return out
}

func distinctSources(records []domain.Record) []string {
	var files []string
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Source != "" && !seen[r.Source] {
			seen[r.Source] = true
			files = append(files, r.Source)
		}
	}
	return files
}

func engineParameters(req *domain.DedupRequest) domain.EngineParameters {
	bandSize := req.NumPerm / req.NumBands
	return domain.EngineParameters{
		NumPerm:         req.NumPerm,
		NumBands:        req.NumBands,
		BandSize:        bandSize,
		Threshold:       req.Threshold,
		Seed:            req.Seed,
		ApproxThreshold: analyzer.ApproxThreshold(req.NumBands, bandSize),
	}
}

func uniqueTokens(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
