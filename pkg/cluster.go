package imgdupehash

import (
	"fmt"
	"strings"
)

// ClusteringMode selects how qualifying fingerprint pairs are merged
// into similar groups. The two reference behaviours genuinely differ,
// so the choice is explicit configuration rather than an internal
// default.
type ClusteringMode int

const (
	// ClusterPairwise emits one merged group per qualifying pair of
	// fingerprints. A file participating in several qualifying pairs
	// appears in several groups. This is the reference behaviour.
	ClusterPairwise ClusteringMode = iota

	// ClusterTransitive merges all qualifying pairs transitively, so
	// each file belongs to exactly one group even when two of the
	// group's fingerprints individually exceed the threshold.
	ClusterTransitive
)

// String returns the configuration name of the mode.
func (m ClusteringMode) String() string {
	switch m {
	case ClusterPairwise:
		return "pairwise"
	case ClusterTransitive:
		return "transitive"
	default:
		return fmt.Sprintf("clusteringMode(%d)", int(m))
	}
}

// ParseClusteringMode parses a clustering mode configuration value.
func ParseClusteringMode(mode string) (ClusteringMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "pairwise":
		return ClusterPairwise, nil
	case "transitive", "transitive-closure":
		return ClusterTransitive, nil
	default:
		return 0, fmt.Errorf("%w: unsupported clustering mode: %s (supported: pairwise, transitive)", ErrInvalidConfig, mode)
	}
}

// DuplicateGroup represents files sharing one identical fingerprint
type DuplicateGroup struct {
	Fingerprint string   `json:"fingerprint"`
	Files       []string `json:"files"`
	Count       int      `json:"count"`
}

// SimilarGroup represents files whose fingerprints lie within the
// configured Hamming distance of one another
type SimilarGroup struct {
	Fingerprints []string `json:"fingerprints"`
	Files        []string `json:"files"`
	Count        int      `json:"count"`
}

// FindDuplicates returns one group per fingerprint recorded for more
// than one file. Exact duplication is distance 0 by definition, so the
// result is independent of any similarity threshold.
func FindDuplicates(table *FingerprintTable) []DuplicateGroup {
	var groups []DuplicateGroup
	table.ForEach(func(fp Fingerprint, files []string) bool {
		if len(files) > 1 {
			groups = append(groups, DuplicateGroup{
				Fingerprint: string(fp),
				Files:       files,
				Count:       len(files),
			})
		}
		return true
	})
	return groups
}

// fingerprintPair is a qualifying unordered pair of table keys
type fingerprintPair struct {
	a, b int // indices into the sorted key slice
}

// FindSimilar groups files whose fingerprints are within threshold of
// one another. Distinct fingerprints are enumerated pairwise in sorted
// order, each pair's distance computed once, and surviving pairs are
// merged according to mode. Groups always have at least two member
// files.
//
// The engine is stateless: rerunning on the same table, threshold and
// mode yields identical groups. The shutdown channel is checked while
// enumerating pairs; a nil channel disables interruption.
func FindSimilar(table *FingerprintTable, threshold int, mode ClusteringMode, shutdownChan <-chan struct{}) ([]SimilarGroup, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: negative hamming distance threshold %d", ErrInvalidConfig, threshold)
	}

	keys := table.Fingerprints()

	var pairs []fingerprintPair
	for i := 0; i < len(keys); i++ {
		select {
		case <-shutdownChan:
			return nil, fmt.Errorf("similarity comparison interrupted by shutdown")
		default:
		}
		for j := i + 1; j < len(keys); j++ {
			distance, err := HammingDistance(keys[i], keys[j])
			if err != nil {
				// Cannot happen in a correctly built table; one hash
				// size covers every entry.
				return nil, fmt.Errorf("failed to compare table fingerprints: %w", err)
			}
			if distance <= threshold {
				pairs = append(pairs, fingerprintPair{a: i, b: j})
			}
		}
	}

	switch mode {
	case ClusterPairwise:
		return pairwiseGroups(table, keys, pairs), nil
	case ClusterTransitive:
		return transitiveGroups(table, keys, pairs), nil
	default:
		return nil, fmt.Errorf("%w: unsupported clustering mode: %s", ErrInvalidConfig, mode)
	}
}

// pairwiseGroups emits one merged group per surviving pair
func pairwiseGroups(table *FingerprintTable, keys []Fingerprint, pairs []fingerprintPair) []SimilarGroup {
	var groups []SimilarGroup
	for _, p := range pairs {
		group := SimilarGroup{
			Fingerprints: []string{string(keys[p.a]), string(keys[p.b])},
		}
		group.Files = append(group.Files, table.Files(keys[p.a])...)
		group.Files = append(group.Files, table.Files(keys[p.b])...)
		group.Count = len(group.Files)
		groups = append(groups, group)
	}
	return groups
}

// transitiveGroups merges surviving pairs with union-find so each file
// lands in exactly one group
func transitiveGroups(table *FingerprintTable, keys []Fingerprint, pairs []fingerprintPair) []SimilarGroup {
	parent := make([]int, len(keys))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	for _, p := range pairs {
		ra, rb := find(p.a), find(p.b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	// Collect components in sorted key order; singletons have no
	// qualifying pair and are not reported.
	members := make(map[int][]int)
	for i := range keys {
		root := find(i)
		members[root] = append(members[root], i)
	}

	var groups []SimilarGroup
	for i := range keys {
		component, ok := members[i]
		if !ok || len(component) < 2 {
			continue
		}
		group := SimilarGroup{}
		for _, k := range component {
			group.Fingerprints = append(group.Fingerprints, string(keys[k]))
			group.Files = append(group.Files, table.Files(keys[k])...)
		}
		group.Count = len(group.Files)
		groups = append(groups, group)
	}
	return groups
}
