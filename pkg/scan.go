package imgdupehash

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	// Decoder registration for every extension the scanner recognizes.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp"
)

// ============================================================================
// TYPE DEFINITIONS
// ============================================================================

// scannedImage represents an image file found during filesystem scanning
type scannedImage struct {
	Path    string // path as joined from the scan root argument
	RelPath string // path relative to the scan root, for logging
}

// ScanStats summarises one scan pass
type ScanStats struct {
	Scanned int // recognized image files found
	Hashed  int // files fingerprinted and added to the table
	Skipped int // files skipped because they could not be decoded
}

// errScanInterrupted aborts the filesystem walk when shutdown is requested
var errScanInterrupted = errors.New("scan interrupted by shutdown")

// ImageScanner walks a directory tree, fingerprints every recognized
// image and feeds a FingerprintTable. Extension filtering and
// skip-on-decode-error both live here; the fingerprint and clustering
// engines never touch the filesystem.
type ImageScanner struct {
	RootDir    string
	hashSize   int
	extensions map[string]bool
	workers    int
}

// fingerprintManager coordinates the fingerprint worker pool
type fingerprintManager struct {
	jobChan      chan *scannedImage
	wg           sync.WaitGroup
	shutdownChan <-chan struct{}

	statsMu sync.Mutex
	stats   ScanStats
}

// ============================================================================
// SCANNER
// ============================================================================

// NewImageScanner creates a scanner for rootDir using the given
// configuration. The configuration is validated up front: invalid
// values reject the scanner before any filesystem work starts.
func NewImageScanner(rootDir string, config *Config) (*ImageScanner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	extensions := make(map[string]bool)
	for _, ext := range config.GetScanConfig().Extensions {
		extensions["."+ext] = true
	}

	return &ImageScanner{
		RootDir:    filepath.Clean(rootDir),
		hashSize:   config.GetFingerprintConfig().HashSize,
		extensions: extensions,
		workers:    config.GetPerformanceConfig().HashWorkers,
	}, nil
}

// BuildTable scans the root directory and returns a freshly built
// fingerprint table. Convenience wrapper around ScanInto.
func (is *ImageScanner) BuildTable(shutdownChan <-chan struct{}) (*FingerprintTable, *ScanStats, error) {
	table, err := NewFingerprintTable(is.hashSize)
	if err != nil {
		return nil, nil, err
	}
	stats, err := is.ScanInto(table, shutdownChan)
	if err != nil {
		return nil, nil, err
	}
	return table, stats, nil
}

// ScanInto walks the root directory and inserts a fingerprint for
// every decodable image into table. Decode failures are logged and
// skipped, never fatal. Files are streamed to a pool of fingerprint
// workers as the walk finds them; the shutdown channel is checked at
// per-file granularity. On interruption the partially built table
// must be discarded, not queried.
func (is *ImageScanner) ScanInto(table *FingerprintTable, shutdownChan <-chan struct{}) (*ScanStats, error) {
	defer VerboseEnter()()

	if table.HashSize() != is.hashSize {
		return nil, fmt.Errorf("%w: table hash size %d does not match scanner hash size %d", ErrLengthMismatch, table.HashSize(), is.hashSize)
	}

	VerboseLog(1, "Scanning %s", is.RootDir)

	manager := newFingerprintManager(is.workers, shutdownChan)
	for i := 0; i < is.workers; i++ {
		manager.wg.Add(1)
		go manager.fingerprintWorker(is, table)
	}

	walkErr := is.walkImages(manager.jobChan, shutdownChan)
	close(manager.jobChan)
	manager.wg.Wait()

	if walkErr != nil {
		return nil, walkErr
	}

	stats := manager.snapshotStats()
	VerboseLog(1, "Scan of %s complete: %d image files, %d hashed, %d skipped",
		is.RootDir, stats.Scanned, stats.Hashed, stats.Skipped)
	return &stats, nil
}

// walkImages streams recognized image files to jobChan in sorted
// (lexicographic) walk order
func (is *ImageScanner) walkImages(jobChan chan<- *scannedImage, shutdownChan <-chan struct{}) error {
	return filepath.WalkDir(is.RootDir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-shutdownChan:
			return errScanInterrupted
		default:
		}

		if err != nil {
			// Inaccessible paths are skipped, not fatal
			VerboseLog(2, "Skipping inaccessible path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !is.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		relPath, err := filepath.Rel(is.RootDir, path)
		if err != nil {
			relPath = path
		}
		if IsDebugEnabled("scan") {
			VerboseLog(3, "walkImages: found image file %s", relPath)
		}
		// The send also watches shutdown so the walk cannot block on a
		// pool that has already exited.
		select {
		case jobChan <- &scannedImage{Path: path, RelPath: relPath}:
		case <-shutdownChan:
			return errScanInterrupted
		}
		return nil
	})
}

// ============================================================================
// FINGERPRINT JOB MANAGEMENT
// ============================================================================

// newFingerprintManager creates the worker pool state
func newFingerprintManager(numWorkers int, shutdownChan <-chan struct{}) *fingerprintManager {
	return &fingerprintManager{
		jobChan:      make(chan *scannedImage, 100),
		shutdownChan: shutdownChan,
	}
}

// fingerprintWorker decodes and fingerprints queued files and inserts
// the results into the shared table
func (fm *fingerprintManager) fingerprintWorker(is *ImageScanner, table *FingerprintTable) {
	defer fm.wg.Done()

	for {
		select {
		case job, ok := <-fm.jobChan:
			if !ok {
				return
			}

			fm.countScanned()
			if IsDebugEnabled("scan") {
				VerboseLog(3, "fingerprintWorker: hashing %s", job.RelPath)
			}

			fp, err := HashImageFile(job.Path, is.hashSize)
			if err != nil {
				// Per-file decode errors never abort the batch
				VerboseLog(1, "Could not hash %s: %v", job.Path, err)
				fm.countSkipped()
				continue
			}

			if err := table.Add(fp, job.Path); err != nil {
				VerboseLog(1, "Could not record %s: %v", job.Path, err)
				fm.countSkipped()
				continue
			}
			fm.countHashed()

		case <-fm.shutdownChan:
			return
		}
	}
}

func (fm *fingerprintManager) countScanned() {
	fm.statsMu.Lock()
	fm.stats.Scanned++
	fm.statsMu.Unlock()
}

func (fm *fingerprintManager) countHashed() {
	fm.statsMu.Lock()
	fm.stats.Hashed++
	fm.statsMu.Unlock()
}

func (fm *fingerprintManager) countSkipped() {
	fm.statsMu.Lock()
	fm.stats.Skipped++
	fm.statsMu.Unlock()
}

func (fm *fingerprintManager) snapshotStats() ScanStats {
	fm.statsMu.Lock()
	defer fm.statsMu.Unlock()
	return fm.stats
}

// ============================================================================
// SINGLE-FILE HASHING
// ============================================================================

// HashImageFile opens, decodes and fingerprints a single image file.
// Animated GIFs decode to their first frame only; later frames are not
// considered. Undecodable files return an error wrapping ErrDecode.
func HashImageFile(path string, hashSize int) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open %s: %v", ErrDecode, path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode %s: %v", ErrDecode, path, err)
	}

	return ComputeFingerprint(img, hashSize)
}
