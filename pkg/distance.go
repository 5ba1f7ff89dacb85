package imgdupehash

import (
	"fmt"
	"math"
)

// HammingDistance counts the positions where corresponding characters
// of two equal-length fingerprints differ. For the default hash size
// of 8 the maximum distance is 16, the length of the hex string.
// Comparing fingerprints of unequal length returns ErrLengthMismatch;
// the shorter input is never padded or the longer truncated.
func HammingDistance(a, b Fingerprint) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d characters", ErrLengthMismatch, len(a), len(b))
	}
	distance := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			distance++
		}
	}
	return distance, nil
}

// ThresholdFromPercentage maps a similarity percentage (0-100) to the
// maximum allowable Hamming distance over the fingerprint's character
// width of 2*hashSize. The mapping is inverted: 100 means "exact
// matches only" (threshold 0) and 0 accepts anything (threshold
// 2*hashSize).
//
// Halfway values round away from zero (math.Round), so e.g.
// hashSize=8, percentage=21.875 gives distance 13, not 12.
func ThresholdFromPercentage(percentage float64, hashSize int) (int, error) {
	if err := ValidateHashSize(hashSize); err != nil {
		return 0, err
	}
	if percentage < 0 || percentage > 100 {
		return 0, fmt.Errorf("%w: similarity percentage %v outside [0,100]", ErrInvalidConfig, percentage)
	}
	width := float64(2 * hashSize)
	return int(math.Round(width - percentage/100*width)), nil
}
