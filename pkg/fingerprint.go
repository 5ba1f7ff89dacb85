package imgdupehash

import (
	"encoding/hex"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultHashSize is the default square grid dimension for the
// difference hash. An 8x8 grid yields a 64-bit fingerprint rendered as
// 16 lowercase hex characters.
const DefaultHashSize = 8

// Fingerprint is the perceptual summary of an image: the difference
// hash rendered as a lowercase hexadecimal string. Fingerprints are
// only comparable when produced with the same hash size.
type Fingerprint string

// String returns the fingerprint's hex representation.
func (f Fingerprint) String() string {
	return string(f)
}

// FingerprintHexLength returns the number of hex characters a
// fingerprint computed with the given hash size contains
// (hashSize*hashSize bits, two characters per byte).
func FingerprintHexLength(hashSize int) int {
	return hashSize * hashSize / 4
}

// ValidateHashSize validates that a hash size is a positive multiple
// of 8, which the byte packing of the fingerprint requires.
func ValidateHashSize(hashSize int) error {
	if hashSize <= 0 || hashSize%8 != 0 {
		return fmt.Errorf("%w: hash size must be a positive multiple of 8, got %d", ErrInvalidConfig, hashSize)
	}
	return nil
}

// ComputeFingerprint computes the difference hash of a decoded image.
//
// The image is reduced to grayscale (BT.601 luma), resized to a
// (hashSize+1) x hashSize grid with Lanczos resampling, and each pixel
// is compared against its immediate right neighbour: the bit is set
// iff the left pixel is strictly brighter. The fixed grid deliberately
// distorts the aspect ratio so fingerprints are independent of the
// input's resolution and shape. Comparison bits are emitted in
// row-major order and packed least-significant-bit first within each
// byte.
//
// The function is pure: the same pixel data and hash size always yield
// the same fingerprint.
func ComputeFingerprint(img image.Image, hashSize int) (Fingerprint, error) {
	if err := ValidateHashSize(hashSize); err != nil {
		return "", err
	}
	if img == nil {
		return "", fmt.Errorf("%w: nil image", ErrDecode)
	}

	gray := imaging.Grayscale(img)
	grid := imaging.Resize(gray, hashSize+1, hashSize, imaging.Lanczos)
	if b := grid.Bounds(); b.Dx() != hashSize+1 || b.Dy() != hashSize {
		return "", fmt.Errorf("%w: resample produced %dx%d grid, want %dx%d",
			ErrDecode, b.Dx(), b.Dy(), hashSize+1, hashSize)
	}

	difference := make([]bool, 0, hashSize*hashSize)
	for row := 0; row < hashSize; row++ {
		for col := 0; col < hashSize; col++ {
			// Grayscale output has R == G == B, so one channel is the luma.
			left := grid.NRGBAAt(col, row).R
			right := grid.NRGBAAt(col+1, row).R
			difference = append(difference, left > right)
		}
	}

	return packDifference(difference), nil
}

// packDifference packs comparison bits into a hex fingerprint. Bits
// are grouped into bytes of 8 in emission order, least-significant bit
// first within each byte.
func packDifference(difference []bool) Fingerprint {
	packed := make([]byte, len(difference)/8)
	for index, value := range difference {
		if value {
			packed[index/8] |= 1 << uint(index%8)
		}
	}
	return Fingerprint(hex.EncodeToString(packed))
}
