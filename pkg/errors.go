package imgdupehash

import "errors"

// Error kinds reported by the package. Callers should test with
// errors.Is; most errors returned here wrap one of these with context.
var (
	// ErrDecode indicates an image could not be decoded or converted.
	// Per-file decode failures are recoverable: the scanner logs them
	// and skips the file without aborting the batch.
	ErrDecode = errors.New("image decode failed")

	// ErrInvalidConfig indicates a configuration value was rejected
	// (hash size not a positive multiple of 8, similarity percentage
	// outside [0,100], unknown clustering mode, ...). Fatal before any
	// processing begins.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLengthMismatch indicates two fingerprints of unequal length
	// were compared. A correctly built table uses one hash size for
	// every entry, so this is a programming error rather than a data
	// error; it fails the comparison, not the run.
	ErrLengthMismatch = errors.New("fingerprint length mismatch")
)
