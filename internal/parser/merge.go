package parser

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"tagsync/internal/tags"
)

// MergeStats describes what Merge did to one file.
type MergeStats struct {
	FilePath string
	Original int
	NonBlank int
	Merged   int
	Changed  bool
	// Undelimited counts "12.[tag]" lines folded as continuations.
	Undelimited int
}

// Removed is the number of physical lines dropped or folded away.
func (s MergeStats) Removed() int {
	return s.Original - s.Merged
}

// Merge drops blank lines and folds every continuation line into the record
// opened by the nearest preceding numbered line, separated by one space.
// A continuation seen before any numbered line opens a record of its own.
func Merge(lines []string) []string {
	merged := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(merged) == 0 || IsHeader(line) {
			merged = append(merged, line)
			continue
		}
		merged[len(merged)-1] += " " + strings.TrimSpace(line)
	}
	return merged
}

// MergeFile merges the file in place. With dryRun set nothing is written.
func MergeFile(filePath string, dryRun bool) (MergeStats, error) {
	stats := MergeStats{FilePath: filePath}

	original, err := os.ReadFile(filePath)
	if err != nil {
		return stats, fmt.Errorf("read script file: %w", err)
	}
	result, err := Parse(original)
	if err != nil {
		return stats, fmt.Errorf("scan script file: %w", err)
	}

	stats.Original = len(result.RawLines)
	for _, line := range result.RawLines {
		if strings.TrimSpace(line) != "" {
			stats.NonBlank++
		}
		if tags.Undelimited(line) {
			stats.Undelimited++
		}
	}

	merged := Merge(result.RawLines)
	stats.Merged = len(merged)

	content := ""
	if len(merged) > 0 {
		content = strings.Join(merged, "\n") + "\n"
	}
	stats.Changed = content != string(original)

	if stats.Changed && !dryRun {
		if err := WriteFile(filePath, []byte(content)); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
