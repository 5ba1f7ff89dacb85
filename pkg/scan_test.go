package imgdupehash

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG encodes img to path
func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
}

// scanTestConfig loads a default config rooted in its own directory so
// the scanned tree only contains what the test puts there
func scanTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	return cfg
}

func TestScanInto_GroupsIdenticalImages(t *testing.T) {
	rootDir := t.TempDir()
	writePNG(t, filepath.Join(rootDir, "one.png"), uniformImage(40, 30, color.Gray{Y: 128}))
	writePNG(t, filepath.Join(rootDir, "two.png"), uniformImage(40, 30, color.Gray{Y: 128}))
	writePNG(t, filepath.Join(rootDir, "other.png"), bandedImage(9, 10, 80))

	scanner, err := NewImageScanner(rootDir, scanTestConfig(t))
	if err != nil {
		t.Fatalf("NewImageScanner failed: %v", err)
	}
	table, stats, err := scanner.BuildTable(nil)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	if stats.Scanned != 3 || stats.Hashed != 3 || stats.Skipped != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if table.FileCount() != 3 {
		t.Errorf("Expected 3 files in table, got %d", table.FileCount())
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 distinct fingerprints, got %d", table.Len())
	}

	groups := FindDuplicates(table)
	if len(groups) != 1 {
		t.Fatalf("Expected one duplicate group, got %+v", groups)
	}
	if groups[0].Count != 2 {
		t.Errorf("Duplicate group count = %d, want 2", groups[0].Count)
	}
	for _, file := range groups[0].Files {
		if filepath.Base(file) == "other.png" {
			t.Errorf("other.png must not be in the duplicate group: %+v", groups[0])
		}
	}
}

func TestScanInto_SkipsUndecodable(t *testing.T) {
	rootDir := t.TempDir()
	writePNG(t, filepath.Join(rootDir, "good.png"), uniformImage(20, 20, color.Gray{Y: 64}))
	if err := os.WriteFile(filepath.Join(rootDir, "broken.jpg"), []byte("not an image"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	scanner, err := NewImageScanner(rootDir, scanTestConfig(t))
	if err != nil {
		t.Fatalf("NewImageScanner failed: %v", err)
	}
	table, stats, err := scanner.BuildTable(nil)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	// The broken file is counted but never aborts the batch
	if stats.Scanned != 2 || stats.Hashed != 1 || stats.Skipped != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if table.FileCount() != 1 {
		t.Errorf("Expected 1 file in table, got %d", table.FileCount())
	}
}

func TestScanInto_IgnoresUnrecognizedExtensions(t *testing.T) {
	rootDir := t.TempDir()
	writePNG(t, filepath.Join(rootDir, "image.png"), uniformImage(20, 20, color.Gray{Y: 64}))
	if err := os.WriteFile(filepath.Join(rootDir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(rootDir, "noext"), []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	scanner, err := NewImageScanner(rootDir, scanTestConfig(t))
	if err != nil {
		t.Fatalf("NewImageScanner failed: %v", err)
	}
	_, stats, err := scanner.BuildTable(nil)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	if stats.Scanned != 1 {
		t.Errorf("Expected 1 scanned file, got %d", stats.Scanned)
	}
}

func TestScanInto_RecursesSubdirectories(t *testing.T) {
	rootDir := t.TempDir()
	writePNG(t, filepath.Join(rootDir, "top.png"), uniformImage(20, 20, color.Gray{Y: 64}))
	writePNG(t, filepath.Join(rootDir, "a", "nested.png"), uniformImage(20, 20, color.Gray{Y: 64}))
	writePNG(t, filepath.Join(rootDir, "a", "b", "deep.png"), uniformImage(20, 20, color.Gray{Y: 64}))

	scanner, err := NewImageScanner(rootDir, scanTestConfig(t))
	if err != nil {
		t.Fatalf("NewImageScanner failed: %v", err)
	}
	table, stats, err := scanner.BuildTable(nil)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	if stats.Hashed != 3 {
		t.Errorf("Expected 3 hashed files, got %d", stats.Hashed)
	}
	groups := FindDuplicates(table)
	if len(groups) != 1 || groups[0].Count != 3 {
		t.Fatalf("Expected one duplicate group of 3, got %+v", groups)
	}
}

func TestHashImageFile_MatchesComputeFingerprint(t *testing.T) {
	rootDir := t.TempDir()
	img := bandedImage(9, 10, 80)
	path := filepath.Join(rootDir, "banded.png")
	writePNG(t, path, img)

	fromFile, err := HashImageFile(path, 8)
	if err != nil {
		t.Fatalf("HashImageFile failed: %v", err)
	}
	fromImage, err := ComputeFingerprint(img, 8)
	if err != nil {
		t.Fatalf("ComputeFingerprint failed: %v", err)
	}
	if fromFile != fromImage {
		t.Errorf("HashImageFile = %s, ComputeFingerprint = %s", fromFile, fromImage)
	}
}

func TestHashImageFile_DecodeFailure(t *testing.T) {
	rootDir := t.TempDir()
	path := filepath.Join(rootDir, "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := HashImageFile(path, 8); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
	if _, err := HashImageFile(filepath.Join(rootDir, "missing.png"), 8); !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode for missing file, got %v", err)
	}
}

func TestScanInto_Interrupted(t *testing.T) {
	rootDir := t.TempDir()
	writePNG(t, filepath.Join(rootDir, "one.png"), uniformImage(20, 20, color.Gray{Y: 64}))

	scanner, err := NewImageScanner(rootDir, scanTestConfig(t))
	if err != nil {
		t.Fatalf("NewImageScanner failed: %v", err)
	}

	shutdown := make(chan struct{})
	close(shutdown)
	if _, _, err := scanner.BuildTable(shutdown); err == nil {
		t.Error("Expected error when shutdown channel is closed")
	}
}

func TestNewImageScanner_InvalidConfig(t *testing.T) {
	cfg := scanTestConfig(t)
	if err := cfg.ApplyOverrides([]string{"hash_size:12"}); err != nil {
		t.Fatalf("ApplyOverrides failed: %v", err)
	}
	if _, err := NewImageScanner(t.TempDir(), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestScanInto_TableHashSizeMismatch(t *testing.T) {
	scanner, err := NewImageScanner(t.TempDir(), scanTestConfig(t))
	if err != nil {
		t.Fatalf("NewImageScanner failed: %v", err)
	}
	table, err := NewFingerprintTable(16)
	if err != nil {
		t.Fatalf("NewFingerprintTable failed: %v", err)
	}
	if _, err := scanner.ScanInto(table, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
}
