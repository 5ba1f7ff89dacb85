// Package imgdupehash finds visually similar and duplicate raster
// images in a directory tree by computing a perceptual difference hash
// (dHash) per image and grouping files whose fingerprints are close
// under a Hamming distance threshold.
//
// # Core API
//
// Scan a directory and build the fingerprint table:
//
//	cfg, err := imgdupehash.LoadConfig(dir)
//	scanner, err := imgdupehash.NewImageScanner(dir, cfg)
//	table, stats, err := scanner.BuildTable(nil)
//
// Group the results:
//
//	duplicates := imgdupehash.FindDuplicates(table)
//	threshold, err := cfg.AllowableDistance()
//	similars, err := imgdupehash.FindSimilar(table, threshold, imgdupehash.ClusterPairwise, nil)
//
// Write the reports:
//
//	reporter, err := imgdupehash.NewReporter(reportDir, "human")
//	path, err := reporter.WriteDuplicates(duplicates)
//
// # Fingerprints
//
// A fingerprint is the dHash of an image rendered as a lowercase hex
// string: the image is grayscaled, resized to (hashSize+1) x hashSize
// with Lanczos resampling, and each pixel compared against its right
// neighbour. Identical pixel content always produces an identical
// fingerprint regardless of the source format. Fingerprints computed
// with different hash sizes are not comparable.
//
// # Clustering modes
//
// Duplicate groups are files sharing one identical fingerprint and are
// reported independently of any threshold. Similar groups merge
// fingerprints within the configured distance, either one group per
// qualifying pair (pairwise, the historical behaviour, where a file
// can appear in several groups) or transitively closed so each file
// lands in exactly one group. The mode is explicit configuration; the
// two behaviours genuinely differ and neither is a silent default for
// the other.
//
// # Configuration
//
// Configuration lives in an ini file (.imgdupes/config) with the
// sections [fingerprint], [similarity], [scan], [output], [verbose]
// and [performance]; see LoadConfig. Verbosity:
//
//	imgdupehash.SetVerboseLevel(2)
//	imgdupehash.SetDebugFlags("scan")
package imgdupehash
