package imgdupehash

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/vectorio"
	"golang.org/x/sys/unix"
)

// Report file names, kept from the original tool so downstream
// scripts keep working.
const (
	DuplicateReportName = "imgdupes_duplicate_images.txt"
	SimilarReportName   = "imgdupes_similar_images.txt"
)

// maxIovecsPerWritev caps a single writev call; Linux IOV_MAX is 1024
const maxIovecsPerWritev = 1024

// Reporter renders duplicate and similar groups into report files.
// Format "human" writes each group as newline-joined paths separated
// by a blank line; "json" writes the group slices as JSON.
type Reporter struct {
	Dir    string
	Format string
}

// NewReporter creates a reporter writing into dir with the given format
func NewReporter(dir, format string) (*Reporter, error) {
	if err := ValidateOutputFormat(format); err != nil {
		return nil, err
	}
	return &Reporter{Dir: dir, Format: strings.ToLower(format)}, nil
}

// WriteDuplicates writes the duplicate-group report and returns its path
func (r *Reporter) WriteDuplicates(groups []DuplicateGroup) (string, error) {
	path := filepath.Join(r.Dir, DuplicateReportName)

	var lines [][]byte
	if r.Format == "json" {
		data, err := marshalReport(groups)
		if err != nil {
			return "", fmt.Errorf("failed to marshal duplicate report: %w", err)
		}
		lines = [][]byte{data}
	} else {
		for _, group := range groups {
			lines = append(lines, humanGroup(group.Files))
		}
	}

	if err := writeReportFile(path, lines); err != nil {
		return "", fmt.Errorf("failed to write duplicate report: %w", err)
	}
	return path, nil
}

// WriteSimilar writes the similar-group report and returns its path
func (r *Reporter) WriteSimilar(groups []SimilarGroup) (string, error) {
	path := filepath.Join(r.Dir, SimilarReportName)

	var lines [][]byte
	if r.Format == "json" {
		data, err := marshalReport(groups)
		if err != nil {
			return "", fmt.Errorf("failed to marshal similar report: %w", err)
		}
		lines = [][]byte{data}
	} else {
		for _, group := range groups {
			lines = append(lines, humanGroup(group.Files))
		}
	}

	if err := writeReportFile(path, lines); err != nil {
		return "", fmt.Errorf("failed to write similar report: %w", err)
	}
	return path, nil
}

// humanGroup renders one group: member paths joined by newlines, then
// a blank separator line
func humanGroup(files []string) []byte {
	return []byte(strings.Join(files, "\n") + "\n\n")
}

// marshalReport renders a group slice as indented JSON; an empty slice
// still renders as [] rather than null
func marshalReport(groups interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		data = []byte("[]")
	}
	return append(data, '\n'), nil
}

// writeReportFile writes the report with vectored I/O, one iovec per
// group, chunked under the writev iovec limit, and fsyncs before close
func writeReportFile(path string, lines [][]byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	var iovecs []syscall.Iovec
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		iovecs = append(iovecs, syscall.Iovec{
			Base: &line[0],
			Len:  uint64(len(line)),
		})
	}

	for start := 0; start < len(iovecs); start += maxIovecsPerWritev {
		end := start + maxIovecsPerWritev
		if end > len(iovecs) {
			end = len(iovecs)
		}
		if nw, err := vectorio.WritevRaw(uintptr(file.Fd()), iovecs[start:end]); err != nil {
			return fmt.Errorf("failed to write %s after %d bytes: %w", path, nw, err)
		}
	}

	if err := unix.Fsync(int(file.Fd())); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	return file.Close()
}
