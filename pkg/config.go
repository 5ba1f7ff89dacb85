package imgdupehash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the imgdupes configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// FingerprintConfig represents fingerprint engine configuration
type FingerprintConfig struct {
	HashSize int // Square grid dimension, positive multiple of 8 (default: 8)
}

// SimilarityConfig represents similarity matching configuration
type SimilarityConfig struct {
	Percentage float64 // Similarity percentage 0-100; 100 = exact matches only (default: 100)
	Distance   int     // Explicit Hamming distance threshold; overrides Percentage when >= 0 (default: -1)
	Clustering string  // Clustering mode: pairwise, transitive (default: pairwise)
}

// ScanConfig represents directory scanning configuration
type ScanConfig struct {
	Extensions []string // Recognized file extensions, without leading dot
}

// OutputConfig represents report output configuration
type OutputConfig struct {
	Format    string // Report format: human, json (default: human)
	ReportDir string // Directory report files are written into (default: ".")
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int // Number of concurrent fingerprint workers (default: 4)
}

// defaultExtensions are the file extensions the scanner recognizes,
// matching the decoders the package registers.
var defaultExtensions = []string{"jpg", "jpeg", "jpe", "jfif", "png", "gif", "bmp", "pgm", "pbm", "ppm"}

// LoadConfig loads configuration from the .imgdupes/config file under
// baseDir, creating a default config on first use.
func LoadConfig(baseDir string) (*Config, error) {
	configDir := filepath.Join(baseDir, ".imgdupes")
	configPath := filepath.Join(configDir, "config")

	cfg := &Config{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	} else {
		iniFile, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ini = iniFile
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section string
		key     string
		value   string
	}{
		{"fingerprint", "hash_size", "8"},
		{"similarity", "percentage", "100"},
		{"similarity", "distance", "-1"},
		{"similarity", "clustering", "pairwise"},
		{"scan", "extensions", strings.Join(defaultExtensions, ",")},
		{"output", "format", "human"},
		{"output", "report_dir", "."},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
		{"performance", "hash_workers", "4"},
	}

	for _, d := range defaults {
		section := c.ini.Section(d.section)
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}

	return nil
}

// GetFingerprintConfig returns the fingerprint configuration
func (c *Config) GetFingerprintConfig() *FingerprintConfig {
	fingerprintConfig := &FingerprintConfig{
		HashSize: DefaultHashSize, // fallback default
	}

	if c.ini.HasSection("fingerprint") {
		section := c.ini.Section("fingerprint")
		if section.HasKey("hash_size") {
			if hashSize, err := section.Key("hash_size").Int(); err == nil {
				fingerprintConfig.HashSize = hashSize
			}
		}
	}

	return fingerprintConfig
}

// GetSimilarityConfig returns the similarity configuration
func (c *Config) GetSimilarityConfig() *SimilarityConfig {
	similarityConfig := &SimilarityConfig{
		Percentage: 100,        // fallback default: exact matches only
		Distance:   -1,         // fallback default: derive from percentage
		Clustering: "pairwise", // fallback default
	}

	if c.ini.HasSection("similarity") {
		section := c.ini.Section("similarity")
		if section.HasKey("percentage") {
			if percentage, err := section.Key("percentage").Float64(); err == nil {
				similarityConfig.Percentage = percentage
			}
		}
		if section.HasKey("distance") {
			if distance, err := section.Key("distance").Int(); err == nil {
				similarityConfig.Distance = distance
			}
		}
		if section.HasKey("clustering") {
			if clustering := section.Key("clustering").String(); clustering != "" {
				similarityConfig.Clustering = clustering
			}
		}
	}

	return similarityConfig
}

// GetScanConfig returns the scan configuration
func (c *Config) GetScanConfig() *ScanConfig {
	scanConfig := &ScanConfig{
		Extensions: defaultExtensions, // fallback default
	}

	if c.ini.HasSection("scan") {
		section := c.ini.Section("scan")
		if section.HasKey("extensions") {
			if raw := section.Key("extensions").String(); raw != "" {
				var extensions []string
				for _, ext := range strings.Split(raw, ",") {
					ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
					if ext != "" {
						extensions = append(extensions, ext)
					}
				}
				if len(extensions) > 0 {
					scanConfig.Extensions = extensions
				}
			}
		}
	}

	return scanConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Format:    "human", // fallback default
		ReportDir: ".",     // fallback default
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			if format := section.Key("format").String(); format != "" {
				outputConfig.Format = format
			}
		}
		if section.HasKey("report_dir") {
			if reportDir := section.Key("report_dir").String(); reportDir != "" {
				outputConfig.ReportDir = reportDir
			}
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Level: 0,  // fallback default
		Debug: "", // fallback default
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: 4, // fallback default
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
	}

	return performanceConfig
}

// AllowableDistance resolves the effective Hamming distance threshold:
// an explicit similarity.distance wins when set (>= 0), otherwise the
// threshold is derived from similarity.percentage.
func (c *Config) AllowableDistance() (int, error) {
	similarity := c.GetSimilarityConfig()
	hashSize := c.GetFingerprintConfig().HashSize

	if similarity.Distance >= 0 {
		if similarity.Distance > 2*hashSize {
			return 0, fmt.Errorf("%w: hamming distance %d exceeds fingerprint width %d", ErrInvalidConfig, similarity.Distance, 2*hashSize)
		}
		return similarity.Distance, nil
	}

	return ThresholdFromPercentage(similarity.Percentage, hashSize)
}

// Validate checks every configured value so invalid configuration is
// rejected before any scanning starts.
func (c *Config) Validate() error {
	if err := ValidateHashSize(c.GetFingerprintConfig().HashSize); err != nil {
		return err
	}
	similarity := c.GetSimilarityConfig()
	if err := ValidatePercentage(similarity.Percentage); err != nil {
		return err
	}
	if _, err := ParseClusteringMode(similarity.Clustering); err != nil {
		return err
	}
	if _, err := c.AllowableDistance(); err != nil {
		return err
	}
	if err := ValidateOutputFormat(c.GetOutputConfig().Format); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(c.GetVerboseConfig().Level); err != nil {
		return err
	}
	if err := ValidateHashWorkers(c.GetPerformanceConfig().HashWorkers); err != nil {
		return err
	}
	return nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	return c.ini.SaveTo(c.configPath)
}

// ApplyOverrides applies command-line overrides to the in-memory
// configuration. Accepts strings like "hash_size:16", "percentage:95",
// "clustering:transitive". Overrides are not persisted.
func (c *Config) ApplyOverrides(overrides []string) error {
	sections := map[string]string{
		"hash_size":    "fingerprint",
		"percentage":   "similarity",
		"distance":     "similarity",
		"clustering":   "similarity",
		"extensions":   "scan",
		"format":       "output",
		"report_dir":   "output",
		"level":        "verbose",
		"debug":        "verbose",
		"hash_workers": "performance",
	}

	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		sectionName, ok := sections[key]
		if !ok {
			return fmt.Errorf("unsupported override key '%s' (supported: hash_size, percentage, distance, clustering, extensions, format, report_dir, level, debug, hash_workers)", key)
		}
		c.ini.Section(sectionName).Key(key).SetValue(value)
	}

	return nil
}

// ValidatePercentage validates that a similarity percentage lies in [0,100]
func ValidatePercentage(percentage float64) error {
	if percentage < 0 || percentage > 100 {
		return fmt.Errorf("%w: similarity percentage %v outside [0,100]", ErrInvalidConfig, percentage)
	}
	return nil
}

// ValidateOutputFormat validates that a report format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "human", "json":
		return nil
	default:
		return fmt.Errorf("%w: unsupported output format: %s (supported: human, json)", ErrInvalidConfig, format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("%w: invalid verbose level: %d (supported: 0-3)", ErrInvalidConfig, level)
	}
	return nil
}

// ValidateHashWorkers validates that the fingerprint worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("%w: hash workers must be at least 1, got: %d", ErrInvalidConfig, workers)
	}
	if workers > 64 {
		return fmt.Errorf("%w: hash workers should not exceed 64, got: %d", ErrInvalidConfig, workers)
	}
	return nil
}
