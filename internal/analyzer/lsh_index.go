package analyzer

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// signatureBatch is the number of records one build worker hashes per task
	signatureBatch = 256

	// Candidate lists shorter than this are filtered inline
	minParallelCandidates = 64

	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// LSHConfig holds configuration parameters for LSH
type LSHConfig struct {
	NumPerm  int // Signature length
	NumBands int // Number of band tables; must divide NumPerm
	Workers  int // Worker pool bound; <= 0 means GOMAXPROCS
}

// Validate checks that the signature splits into equal bands
func (c LSHConfig) Validate() error {
	if c.NumPerm <= 0 {
		return fmt.Errorf("%w: num_perm must be positive, got %d", ErrInvalidBandConfig, c.NumPerm)
	}
	if c.NumBands <= 0 {
		return fmt.Errorf("%w: num_bands must be positive, got %d", ErrInvalidBandConfig, c.NumBands)
	}
	if c.NumPerm%c.NumBands != 0 {
		return fmt.Errorf("%w: num_bands %d does not evenly divide num_perm %d",
			ErrInvalidBandConfig, c.NumBands, c.NumPerm)
	}
	return nil
}

// BandSize returns the number of signature positions per band
func (c LSHConfig) BandSize() int {
	if c.NumBands <= 0 {
		return 0
	}
	return c.NumPerm / c.NumBands
}

func (c LSHConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ProgressFunc receives build progress. It may be called from several goroutines.
type ProgressFunc func(done, total int)

// BuildOption customizes BuildLSHIndex
type BuildOption func(*buildOptions)

type buildOptions struct {
	perms    *PermutationSet
	source   RandomSource
	seed     *uint64
	progress ProgressFunc
}

// WithPermutations uses an existing permutation set
func WithPermutations(perms *PermutationSet) BuildOption {
	return func(o *buildOptions) { o.perms = perms }
}

// WithRandomSource draws the permutation set from src
func WithRandomSource(src RandomSource) BuildOption {
	return func(o *buildOptions) { o.source = src }
}

// WithSeed draws the permutation set from a generator seeded with seed
func WithSeed(seed uint64) BuildOption {
	return func(o *buildOptions) { o.seed = &seed }
}

// WithProgress reports signature computation progress
func WithProgress(fn ProgressFunc) BuildOption {
	return func(o *buildOptions) { o.progress = fn }
}

// LSHIndex implements Locality Sensitive Hashing with banding technique.
// It is built once by BuildLSHIndex and is read-only afterwards, so
// queries may run concurrently without locking.
type LSHIndex struct {
	config     LSHConfig
	hasher     *MinHasher
	signatures []Signature           // internal id -> signature
	bands      []map[uint64][]uint32 // band index -> band hash -> ids (ascending)
}

// BuildLSHIndex computes a signature for every text and inserts each record
// into the band tables. The internal id of texts[i] is i.
func BuildLSHIndex(texts []string, config LSHConfig, opts ...BuildOption) (*LSHIndex, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	perms, err := o.permutations(config.NumPerm)
	if err != nil {
		return nil, err
	}

	idx := &LSHIndex{
		config:     config,
		hasher:     NewMinHasher(perms),
		signatures: make([]Signature, len(texts)),
		bands:      make([]map[uint64][]uint32, config.NumBands),
	}
	for i := range idx.bands {
		idx.bands[i] = make(map[uint64][]uint32)
	}

	idx.computeSignatures(texts, o.progress)

	// Insertion runs in id order so every bucket list stays ascending.
	for id, sig := range idx.signatures {
		idx.addToBuckets(uint32(id), sig)
	}

	return idx, nil
}

func (o *buildOptions) permutations(numPerm int) (*PermutationSet, error) {
	switch {
	case o.perms != nil:
		if o.perms.Len() != numPerm {
			return nil, fmt.Errorf("%w: permutation set has %d entries, num_perm is %d",
				ErrInvalidBandConfig, o.perms.Len(), numPerm)
		}
		return o.perms, nil
	case o.source != nil:
		return NewPermutationSet(numPerm, o.source)
	case o.seed != nil:
		return NewSeededPermutationSet(numPerm, *o.seed)
	default:
		return NewRandomPermutationSet(numPerm)
	}
}

// computeSignatures fills idx.signatures using a bounded worker pool.
// Each task writes a disjoint id range.
func (idx *LSHIndex) computeSignatures(texts []string, progress ProgressFunc) {
	total := len(texts)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(idx.config.workers())
	for lo := 0; lo < total; lo += signatureBatch {
		g.Go(func() error {
			hi := min(lo+signatureBatch, total)
			for id := lo; id < hi; id++ {
				idx.signatures[id] = idx.hasher.SignatureOf(texts[id])
			}
			n := done.Add(int64(hi - lo))
			if progress != nil {
				progress(int(n), total)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// addToBuckets appends id to the bucket of each of its bands
func (idx *LSHIndex) addToBuckets(id uint32, sig Signature) {
	bandSize := idx.config.BandSize()
	for band, table := range idx.bands {
		h := bandHash(sig[band*bandSize : (band+1)*bandSize])
		table[h] = append(table[h], id)
	}
}

// bandHash is 64-bit FNV-1a over the band values written little-endian
func bandHash(band Signature) uint64 {
	h := uint64(fnvOffset64)
	for _, v := range band {
		for shift := 0; shift < 32; shift += 8 {
			h ^= uint64(byte(v >> shift))
			h *= fnvPrime64
		}
	}
	return h
}

// Candidates returns the ids sharing at least one band with sig, ascending
func (idx *LSHIndex) Candidates(sig Signature) []int {
	return toInts(idx.candidateBitmap(sig).ToArray())
}

func (idx *LSHIndex) candidateBitmap(sig Signature) *roaring.Bitmap {
	idx.checkLength(sig)

	bandSize := idx.config.BandSize()
	candidates := roaring.New()
	for band, table := range idx.bands {
		h := bandHash(sig[band*bandSize : (band+1)*bandSize])
		if ids, ok := table[h]; ok {
			candidates.AddMany(ids)
		}
	}
	return candidates
}

// Query returns candidate ids for sig, ascending. A nil threshold returns
// the raw candidate set; otherwise only candidates whose estimated
// similarity is >= *threshold are kept.
func (idx *LSHIndex) Query(sig Signature, threshold *float64) []int {
	candidates := idx.candidateBitmap(sig).ToArray()
	if threshold == nil {
		return toInts(candidates)
	}
	return idx.filterByThreshold(sig, candidates, *threshold)
}

// QueryText computes the signature of text with this index's permutations and queries it
func (idx *LSHIndex) QueryText(text string, threshold *float64) []int {
	return idx.Query(idx.hasher.SignatureOf(text), threshold)
}

// filterByThreshold evaluates every candidate independently. Workers write
// to disjoint slots of keep, so no locking is needed.
func (idx *LSHIndex) filterByThreshold(sig Signature, candidates []uint32, threshold float64) []int {
	keep := make([]bool, len(candidates))
	check := func(lo, hi int) {
		for k := lo; k < hi; k++ {
			keep[k] = EstimateJaccardSimilarity(sig, idx.signatureFor(candidates[k])) >= threshold
		}
	}

	if len(candidates) < minParallelCandidates {
		check(0, len(candidates))
	} else {
		workers := idx.config.workers()
		chunk := (len(candidates) + workers - 1) / workers
		var g errgroup.Group
		g.SetLimit(workers)
		for lo := 0; lo < len(candidates); lo += chunk {
			g.Go(func() error {
				check(lo, min(lo+chunk, len(candidates)))
				return nil
			})
		}
		_ = g.Wait()
	}

	result := make([]int, 0, len(candidates))
	for k, ok := range keep {
		if ok {
			result = append(result, int(candidates[k]))
		}
	}
	return result
}

// signatureFor looks up a stored signature; a missing id means the
// band tables and the signature table disagree.
func (idx *LSHIndex) signatureFor(id uint32) Signature {
	if int(id) >= len(idx.signatures) || idx.signatures[id] == nil {
		panic(fmt.Errorf("%w: candidate id %d absent from signature table", ErrInternalConsistency, id))
	}
	return idx.signatures[id]
}

func (idx *LSHIndex) checkLength(sig Signature) {
	if len(sig) != idx.config.NumPerm {
		panic(fmt.Errorf("%w: query signature has %d values, index expects %d",
			ErrInternalConsistency, len(sig), idx.config.NumPerm))
	}
}

// Signature retrieves the stored signature for an internal id
func (idx *LSHIndex) Signature(id int) Signature {
	return idx.signatureFor(uint32(id))
}

// Size returns the number of records in the index
func (idx *LSHIndex) Size() int { return len(idx.signatures) }

// Config returns the LSH configuration
func (idx *LSHIndex) Config() LSHConfig { return idx.config }

// BandSize returns the number of signature positions per band
func (idx *LSHIndex) BandSize() int { return idx.config.BandSize() }

// MinHasher returns the hasher bound to this index's permutation set
func (idx *LSHIndex) MinHasher() *MinHasher { return idx.hasher }

// LSHIndexStats provides statistics about the LSH index.
// Bucket counts are taken across all bands; SharedBuckets counts buckets
// holding more than one id.
type LSHIndexStats struct {
	NumRecords       int     `json:"num_records" yaml:"num_records"`
	NumPerm          int     `json:"num_perm" yaml:"num_perm"`
	NumBands         int     `json:"num_bands" yaml:"num_bands"`
	BandSize         int     `json:"band_size" yaml:"band_size"`
	NumBuckets       int     `json:"num_buckets" yaml:"num_buckets"`
	SharedBuckets    int     `json:"shared_buckets" yaml:"shared_buckets"`
	MinBucketSize    int     `json:"min_bucket_size" yaml:"min_bucket_size"`
	MaxBucketSize    int     `json:"max_bucket_size" yaml:"max_bucket_size"`
	AvgBucketSize    float64 `json:"avg_bucket_size" yaml:"avg_bucket_size"`
	MedianBucketSize float64 `json:"median_bucket_size" yaml:"median_bucket_size"`
	StdDevBucketSize float64 `json:"stddev_bucket_size" yaml:"stddev_bucket_size"`
	ApproxThreshold  float64 `json:"approx_threshold" yaml:"approx_threshold"`
}

// Stats returns statistics about the index
func (idx *LSHIndex) Stats() LSHIndexStats {
	stats := LSHIndexStats{
		NumRecords:      len(idx.signatures),
		NumPerm:         idx.config.NumPerm,
		NumBands:        idx.config.NumBands,
		BandSize:        idx.config.BandSize(),
		ApproxThreshold: ApproxThreshold(idx.config.NumBands, idx.config.BandSize()),
	}

	sizes := make([]float64, 0)
	for _, table := range idx.bands {
		for _, ids := range table {
			sizes = append(sizes, float64(len(ids)))
			if len(ids) > 1 {
				stats.SharedBuckets++
			}
		}
	}
	stats.NumBuckets = len(sizes)
	if len(sizes) == 0 {
		return stats
	}

	sort.Float64s(sizes)
	stats.MinBucketSize = int(floats.Min(sizes))
	stats.MaxBucketSize = int(floats.Max(sizes))
	if len(sizes) > 1 {
		stats.AvgBucketSize, stats.StdDevBucketSize = stat.MeanStdDev(sizes, nil)
	} else {
		stats.AvgBucketSize = sizes[0]
	}

	// Median bucket size
	if len(sizes)%2 == 0 {
		mid := len(sizes) / 2
		stats.MedianBucketSize = (sizes[mid-1] + sizes[mid]) / 2.0
	} else {
		stats.MedianBucketSize = sizes[len(sizes)/2]
	}

	return stats
}

// CandidateProbability is the chance that two records with true similarity s
// share at least one band: 1 - (1 - s^r)^b
func (idx *LSHIndex) CandidateProbability(s float64) float64 {
	return CandidateProbability(s, idx.config.NumBands, idx.config.BandSize())
}

// EstimateFalsePositiveRate estimates how often a pair with true similarity s
// (below the filtering threshold) still becomes a candidate
func (idx *LSHIndex) EstimateFalsePositiveRate(trueSimilarity float64) float64 {
	return idx.CandidateProbability(trueSimilarity)
}

// EstimateFalseNegativeRate estimates how often a pair with true similarity s
// shares no band and is never compared
func (idx *LSHIndex) EstimateFalseNegativeRate(trueSimilarity float64) float64 {
	return 1.0 - idx.CandidateProbability(trueSimilarity)
}

// CandidateProbability evaluates the banding S-curve for b bands of r rows
func CandidateProbability(s float64, bands, rows int) float64 {
	if s <= 0 {
		return 0.0
	}
	if s >= 1 {
		return 1.0
	}
	probBandMatches := math.Pow(s, float64(rows))
	return 1.0 - math.Pow(1.0-probBandMatches, float64(bands))
}

func toInts(ids []uint32) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
