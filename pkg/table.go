package imgdupehash

import (
	"fmt"
	"strings"
	"sync"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// fingerprintKey is a skiplist record holding one distinct fingerprint.
// The file lists live in the table's maps; the skiplist only keeps the
// keys sorted so iteration and report output are deterministic.
type fingerprintKey struct {
	fp Fingerprint
}

// tableContext tags skiplist entries with the batch they belong to
const tableContext = "batch"

// FingerprintTable maps fingerprints to the set of file identifiers
// that hashed to them. It is built once per run by the scanner and is
// never mutated after clustering begins. Every file identifier appears
// under exactly one fingerprint, and every fingerprint in the table
// was produced with the same hash size.
//
// Insertion is mutex-guarded so concurrent hash workers can share one
// table.
type FingerprintTable struct {
	mu       sync.Mutex
	hashSize int
	index    *zcsl.ZeroCopySkiplist[fingerprintKey, string, string]
	files    map[Fingerprint][]string
	byFile   map[string]Fingerprint
}

// NewFingerprintTable creates an empty table for fingerprints of the
// given hash size.
func NewFingerprintTable(hashSize int) (*FingerprintTable, error) {
	if err := ValidateHashSize(hashSize); err != nil {
		return nil, err
	}

	getKey := func(k *fingerprintKey) string {
		return string(k.fp)
	}
	getSize := func(k *fingerprintKey) int {
		return len(k.fp)
	}
	index := zcsl.MakeZeroCopySkiplist[fingerprintKey, string, string](
		16,
		getKey,
		getSize,
		strings.Compare,
	)

	return &FingerprintTable{
		hashSize: hashSize,
		index:    index,
		files:    make(map[Fingerprint][]string),
		byFile:   make(map[string]Fingerprint),
	}, nil
}

// HashSize returns the hash size every fingerprint in the table was
// produced with.
func (t *FingerprintTable) HashSize() int {
	return t.hashSize
}

// Add records that path hashed to fp. A fingerprint of the wrong
// length for the table's hash size is rejected with ErrLengthMismatch,
// and a path may only be added once.
func (t *FingerprintTable) Add(fp Fingerprint, path string) error {
	if want := FingerprintHexLength(t.hashSize); len(fp) != want {
		return fmt.Errorf("%w: fingerprint has %d characters, table expects %d", ErrLengthMismatch, len(fp), want)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.byFile[path]; ok {
		return fmt.Errorf("file %q already recorded under fingerprint %s", path, prev)
	}
	t.byFile[path] = fp

	if _, ok := t.files[fp]; !ok {
		t.index.Insert(&fingerprintKey{fp: fp}, tableContext)
	}
	t.files[fp] = append(t.files[fp], path)

	return nil
}

// Files returns a copy of the file identifiers recorded under fp, in
// insertion order. The result is nil for an unknown fingerprint.
func (t *FingerprintTable) Files(fp Fingerprint) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, ok := t.files[fp]
	if !ok {
		return nil
	}
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}

// Len returns the number of distinct fingerprints in the table.
func (t *FingerprintTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.Length()
}

// FileCount returns the number of file identifiers in the table.
func (t *FingerprintTable) FileCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byFile)
}

// Fingerprints returns all distinct fingerprints in sorted order.
func (t *FingerprintTable) Fingerprints() []Fingerprint {
	var keys []Fingerprint
	t.ForEach(func(fp Fingerprint, files []string) bool {
		keys = append(keys, fp)
		return true
	})
	return keys
}

// ForEach iterates the table in sorted fingerprint order, calling the
// callback with each fingerprint and a copy of its file list. The
// callback returns false to stop iteration. ForEach must not be called
// while hash workers are still inserting.
func (t *FingerprintTable) ForEach(callback func(fp Fingerprint, files []string) bool) {
	for current := t.index.First(); current != nil; current = current.Next() {
		key := current.Item()
		if key == nil {
			continue
		}
		if !callback(key.fp, t.Files(key.fp)) {
			break
		}
	}
}
