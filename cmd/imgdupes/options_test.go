package main

import (
	"reflect"
	"testing"
)

func TestParseArguments_Defaults(t *testing.T) {
	parsed, err := parseArguments([]string{"photos"})
	if err != nil {
		t.Fatalf("parseArguments failed: %v", err)
	}
	if !reflect.DeepEqual(parsed.Directories, []string{"photos"}) {
		t.Errorf("Directories = %v, want [photos]", parsed.Directories)
	}
	if parsed.HashSize != -1 || parsed.Percentage != -1 || parsed.Distance != -1 ||
		parsed.Workers != -1 || parsed.VerboseLevel != -1 {
		t.Errorf("Numeric flags should default to -1: %+v", parsed)
	}
	if parsed.Mode != "" || parsed.Format != "" || parsed.ReportDir != "" ||
		parsed.Extensions != "" || parsed.DebugFlags != "" {
		t.Errorf("String flags should default to empty: %+v", parsed)
	}
	if len(parsed.configOverrides()) != 0 {
		t.Errorf("No flags should mean no overrides, got %v", parsed.configOverrides())
	}
}

func TestParseArguments_AllFlags(t *testing.T) {
	parsed, err := parseArguments([]string{
		"--hash-size", "16",
		"--similarity", "87.5",
		"--mode", "transitive",
		"--format", "json",
		"--report-dir", "/tmp/reports",
		"--extensions", "png,gif",
		"--workers", "2",
		"-v", "2",
		"--debug", "scan",
		"--config-override", "level:1",
		"photos", "more-photos",
	})
	if err != nil {
		t.Fatalf("parseArguments failed: %v", err)
	}

	if !reflect.DeepEqual(parsed.Directories, []string{"photos", "more-photos"}) {
		t.Errorf("Directories = %v", parsed.Directories)
	}
	if parsed.HashSize != 16 || parsed.Percentage != 87.5 || parsed.Workers != 2 || parsed.VerboseLevel != 2 {
		t.Errorf("Unexpected parsed values: %+v", parsed)
	}
	if parsed.Mode != "transitive" || parsed.Format != "json" || parsed.ReportDir != "/tmp/reports" {
		t.Errorf("Unexpected parsed values: %+v", parsed)
	}

	want := []string{
		"hash_size:16",
		"percentage:87.5",
		"distance:-1",
		"clustering:transitive",
		"format:json",
		"report_dir:/tmp/reports",
		"extensions:png,gif",
		"hash_workers:2",
		"level:2",
		"debug:scan",
		"level:1",
	}
	if got := parsed.configOverrides(); !reflect.DeepEqual(got, want) {
		t.Errorf("configOverrides = %v, want %v", got, want)
	}
}

func TestParseArguments_DistanceFlag(t *testing.T) {
	parsed, err := parseArguments([]string{"--distance", "3", "photos"})
	if err != nil {
		t.Fatalf("parseArguments failed: %v", err)
	}
	if parsed.Distance != 3 {
		t.Errorf("Distance = %d, want 3", parsed.Distance)
	}
	if want := []string{"distance:3"}; !reflect.DeepEqual(parsed.configOverrides(), want) {
		t.Errorf("configOverrides = %v, want %v", parsed.configOverrides(), want)
	}
}

func TestParseArguments_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no directories", []string{}},
		{"flags only", []string{"--format", "json"}},
		{"unknown flag", []string{"--bogus", "photos"}},
		{"missing value", []string{"photos", "--hash-size"}},
		{"non-numeric hash size", []string{"--hash-size", "big", "photos"}},
		{"non-numeric similarity", []string{"--similarity", "most", "photos"}},
		{"negative distance", []string{"--distance", "-1", "photos"}},
		{"similarity and distance together", []string{"--similarity", "90", "--distance", "3", "photos"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArguments(tt.args); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}

func TestParseArguments_FlagsBetweenDirectories(t *testing.T) {
	parsed, err := parseArguments([]string{"first", "--format", "json", "second"})
	if err != nil {
		t.Fatalf("parseArguments failed: %v", err)
	}
	if !reflect.DeepEqual(parsed.Directories, []string{"first", "second"}) {
		t.Errorf("Directories = %v, want [first second]", parsed.Directories)
	}
	if parsed.Format != "json" {
		t.Errorf("Format = %s, want json", parsed.Format)
	}
}
