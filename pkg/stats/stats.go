// Package stats accumulates counters over a whole pipeline run: how many
// files were loaded, how many archives were written, which colors were
// swapped, and how many problems of each kind were recorded. Counters never
// reset mid-run.
package stats

import (
	"sort"

	"github.com/zentheon/respackr/pkg/errors"
)

// Tally holds every counter tracked during a run.
type Tally struct {
	SourceFilesLoaded int
	FormatsProcessed  int
	ArchivesCreated   int

	SVGFilesEdited    int
	ImagesGenerated   int
	TaggedVariants    int

	// Loaded file counts by extension (".svg", ".json", ...).
	FileExtensions map[string]int

	// Theme edit counts keyed by a human-readable "key (#old -> #new)"
	// string.
	ColorEdits map[string]int

	// Problem counts keyed by severity then error code.
	Problems map[errors.Severity]map[errors.ErrorCode]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		FileExtensions: make(map[string]int),
		ColorEdits:     make(map[string]int),
		Problems:       make(map[errors.Severity]map[errors.ErrorCode]int),
	}
}

// CountExtension increments the loaded-file counter for ext. Empty
// extensions are ignored.
func (t *Tally) CountExtension(ext string) {
	if ext == "" {
		return
	}
	t.FileExtensions[ext]++
}

// CountColorEdit adds n occurrences of a color substitution.
func (t *Tally) CountColorEdit(label string, n int) {
	t.ColorEdits[label] += n
}

// CountProblem increments the counter for the given severity and code.
func (t *Tally) CountProblem(severity errors.Severity, code errors.ErrorCode) {
	if t.Problems[severity] == nil {
		t.Problems[severity] = make(map[errors.ErrorCode]int)
	}
	t.Problems[severity][code]++
}

// ProblemCount returns the total number of problems recorded at the given
// severity.
func (t *Tally) ProblemCount(severity errors.Severity) int {
	total := 0
	for _, n := range t.Problems[severity] {
		total += n
	}
	return total
}

// CodeCount returns how many problems were recorded for a single code,
// regardless of severity.
func (t *Tally) CodeCount(code errors.ErrorCode) int {
	total := 0
	for _, byCode := range t.Problems {
		total += byCode[code]
	}
	return total
}

// sortedCounts flattens a string-keyed counter map into key order by
// descending count, ties broken alphabetically. Used by the summary
// renderer.
func sortedCounts(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
