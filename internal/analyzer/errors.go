package analyzer

import "errors"

var (
	// ErrInvalidBandConfig is returned when num_perm/num_bands cannot form equal bands
	ErrInvalidBandConfig = errors.New("invalid LSH band configuration")

	// ErrInternalConsistency marks a broken index invariant. It is only ever
	// raised through panic.
	ErrInternalConsistency = errors.New("internal consistency violation")

	// ErrPartitionViolation marks duplicate groups that do not partition the id universe
	ErrPartitionViolation = errors.New("duplicate groups do not form a partition")
)
