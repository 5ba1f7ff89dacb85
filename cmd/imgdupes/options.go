package main

import (
	"fmt"
	"strconv"
	"strings"
)

// arguments holds the parsed command line
type arguments struct {
	Directories  []string
	HashSize     int     // -1 = use config
	Percentage   float64 // -1 = use config
	Distance     int     // -1 = use config
	Mode         string  // "" = use config
	Format       string  // "" = use config
	ReportDir    string  // "" = use config
	Extensions   string  // "" = use config
	Workers      int     // -1 = use config
	VerboseLevel int     // -1 = use config
	DebugFlags   string  // "" = use config
	Overrides    []string
}

// parseArguments parses the command line into an arguments struct.
// Flags may appear before or between directory arguments.
func parseArguments(args []string) (*arguments, error) {
	parsed := &arguments{
		HashSize:     -1,
		Percentage:   -1,
		Distance:     -1,
		Workers:      -1,
		VerboseLevel: -1,
	}

	i := 0
	next := func(flag string) (string, error) {
		i++
		if i >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[i], nil
	}

	for ; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--hash-size":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			hashSize, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid hash size '%s'", value)
			}
			parsed.HashSize = hashSize
		case "--similarity":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			percentage, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid similarity percentage '%s'", value)
			}
			parsed.Percentage = percentage
		case "--distance":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			distance, err := strconv.Atoi(value)
			if err != nil || distance < 0 {
				return nil, fmt.Errorf("invalid hamming distance '%s'", value)
			}
			parsed.Distance = distance
		case "--mode":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			parsed.Mode = value
		case "--format":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			parsed.Format = value
		case "--report-dir":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			parsed.ReportDir = value
		case "--extensions":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			parsed.Extensions = value
		case "--workers":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			workers, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid worker count '%s'", value)
			}
			parsed.Workers = workers
		case "--verbose", "-v":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			level, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid verbose level '%s'", value)
			}
			parsed.VerboseLevel = level
		case "--debug":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			parsed.DebugFlags = value
		case "--config-override":
			value, err := next(arg)
			if err != nil {
				return nil, err
			}
			parsed.Overrides = append(parsed.Overrides, value)
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			parsed.Directories = append(parsed.Directories, arg)
		}
	}

	if len(parsed.Directories) == 0 {
		return nil, fmt.Errorf("no directories specified")
	}
	if parsed.Percentage >= 0 && parsed.Distance >= 0 {
		return nil, fmt.Errorf("--similarity and --distance are mutually exclusive")
	}

	return parsed, nil
}

// configOverrides converts parsed flags into config override strings
func (a *arguments) configOverrides() []string {
	var overrides []string
	if a.HashSize >= 0 {
		overrides = append(overrides, fmt.Sprintf("hash_size:%d", a.HashSize))
	}
	if a.Percentage >= 0 {
		overrides = append(overrides, fmt.Sprintf("percentage:%v", a.Percentage))
		overrides = append(overrides, "distance:-1")
	}
	if a.Distance >= 0 {
		overrides = append(overrides, fmt.Sprintf("distance:%d", a.Distance))
	}
	if a.Mode != "" {
		overrides = append(overrides, "clustering:"+a.Mode)
	}
	if a.Format != "" {
		overrides = append(overrides, "format:"+a.Format)
	}
	if a.ReportDir != "" {
		overrides = append(overrides, "report_dir:"+a.ReportDir)
	}
	if a.Extensions != "" {
		overrides = append(overrides, "extensions:"+a.Extensions)
	}
	if a.Workers >= 0 {
		overrides = append(overrides, fmt.Sprintf("hash_workers:%d", a.Workers))
	}
	if a.VerboseLevel >= 0 {
		overrides = append(overrides, fmt.Sprintf("level:%d", a.VerboseLevel))
	}
	if a.DebugFlags != "" {
		overrides = append(overrides, "debug:"+a.DebugFlags)
	}
	return append(overrides, a.Overrides...)
}
