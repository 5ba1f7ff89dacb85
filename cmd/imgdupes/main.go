package main

import (
	"fmt"
	"os"

	imgdupehash "github.com/mattkeenan/imgdupehash/pkg"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	// Handle help and version early
	if os.Args[1] == "--help" || os.Args[1] == "-h" || os.Args[1] == "help" {
		showHelp()
		return
	}
	if os.Args[1] == "--version" {
		fmt.Printf("imgdupes %s\n", version)
		return
	}

	args, err := parseArguments(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgdupes: %v\n", err)
		os.Exit(1)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "imgdupes: %v\n", err)
		os.Exit(1)
	}
}

func run(args *arguments) error {
	// Config lives under the first scanned directory; flags override it
	config, err := imgdupehash.LoadConfig(args.Directories[0])
	if err != nil {
		return err
	}
	if err := config.ApplyOverrides(args.configOverrides()); err != nil {
		return err
	}

	// Reject bad configuration before any filesystem work
	if err := config.Validate(); err != nil {
		return err
	}

	verbose := config.GetVerboseConfig()
	imgdupehash.SetVerboseLevel(verbose.Level)
	imgdupehash.SetDebugFlags(verbose.Debug)

	mode, err := imgdupehash.ParseClusteringMode(config.GetSimilarityConfig().Clustering)
	if err != nil {
		return err
	}
	threshold, err := config.AllowableDistance()
	if err != nil {
		return err
	}

	shutdownChan := setupSignalHandler()

	// One shared table across every scanned directory
	table, err := imgdupehash.NewFingerprintTable(config.GetFingerprintConfig().HashSize)
	if err != nil {
		return err
	}

	var total imgdupehash.ScanStats
	for _, dir := range args.Directories {
		scanner, err := imgdupehash.NewImageScanner(dir, config)
		if err != nil {
			return err
		}
		stats, err := scanner.ScanInto(table, shutdownChan)
		if err != nil {
			return err
		}
		total.Scanned += stats.Scanned
		total.Hashed += stats.Hashed
		total.Skipped += stats.Skipped
	}

	imgdupehash.VerboseLog(1, "Cross-matching %d fingerprints (threshold %d, %s mode)",
		table.Len(), threshold, mode)

	duplicates := imgdupehash.FindDuplicates(table)
	similars, err := imgdupehash.FindSimilar(table, threshold, mode, shutdownChan)
	if err != nil {
		return err
	}

	output := config.GetOutputConfig()
	reporter, err := imgdupehash.NewReporter(output.ReportDir, output.Format)
	if err != nil {
		return err
	}
	duplicatePath, err := reporter.WriteDuplicates(duplicates)
	if err != nil {
		return err
	}
	similarPath, err := reporter.WriteSimilar(similars)
	if err != nil {
		return err
	}

	fmt.Printf("Scanned %d image files (%d hashed, %d skipped)\n", total.Scanned, total.Hashed, total.Skipped)
	fmt.Printf("Duplicate groups: %d (%s)\n", len(duplicates), duplicatePath)
	fmt.Printf("Similar groups:   %d (%s)\n", len(similars), similarPath)
	return nil
}

func showUsage() {
	fmt.Fprintf(os.Stderr, "Usage: imgdupes [options] <directory>...\n")
	fmt.Fprintf(os.Stderr, "Try 'imgdupes --help' for more information.\n")
}

func showHelp() {
	fmt.Printf("imgdupes - find visually similar and duplicate images\n\n")
	fmt.Printf("Usage: imgdupes [options] <directory>...\n\n")

	fmt.Printf("FINGERPRINTING:\n")
	fmt.Printf("  --hash-size N        Fingerprint grid dimension, positive multiple of 8 (default 8)\n")
	fmt.Printf("  --workers N          Concurrent fingerprint workers (default 4)\n")
	fmt.Printf("  --extensions LIST    Comma-separated extensions to scan\n")
	fmt.Printf("                       (default jpg,jpeg,jpe,jfif,png,gif,bmp,pgm,pbm,ppm)\n\n")

	fmt.Printf("MATCHING:\n")
	fmt.Printf("  --similarity P       Similarity percentage 0-100; 100 = exact matches only (default 100)\n")
	fmt.Printf("  --distance N         Maximum Hamming distance; overrides --similarity\n")
	fmt.Printf("  --mode MODE          Similar-group clustering: pairwise (reference behaviour,\n")
	fmt.Printf("                       files may appear in several groups) or transitive\n")
	fmt.Printf("                       (each file in exactly one group) (default pairwise)\n\n")

	fmt.Printf("OUTPUT:\n")
	fmt.Printf("  --format FORMAT      Report format: human, json (default human)\n")
	fmt.Printf("  --report-dir DIR     Directory for report files (default .)\n\n")

	fmt.Printf("GENERAL:\n")
	fmt.Printf("  --verbose N, -v N    Verbose level 0-3\n")
	fmt.Printf("  --debug FLAGS        Comma-separated debug flags (e.g. scan)\n")
	fmt.Printf("  --config-override K:V  Raw config override (e.g. hash_size:16)\n")
	fmt.Printf("  --help, -h           Show this help\n")
	fmt.Printf("  --version            Show version\n\n")

	fmt.Printf("Reports are written as %s and %s.\n",
		imgdupehash.DuplicateReportName, imgdupehash.SimilarReportName)
}
