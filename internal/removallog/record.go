package removallog

import (
	"sort"

	"tagsync/internal/tags"
)

// Record is one tag removal, independent of the log shape it is stored in.
type Record struct {
	Position tags.Position
	// Dialogue is the dialogue number of the line, 0 when it had none.
	Dialogue int
	Path     string
	// FileLine is the 1-based physical line in Path.
	FileLine int
	// Tag is the bracket contents as they were found.
	Tag    string
	Before string
	After  string
}

// Bracketed returns the removed tag as written in files.
func (r Record) Bracketed() string {
	return "[" + r.Tag + "]"
}

// Log is the parsed content of a removal log file.
type Log struct {
	Path    string
	Records []Record
	// Unparsed counts detail lines that matched no known entry shape.
	Unparsed int
}

// Partition splits records by whether their source path is canonical.
func Partition(records []Record, canonical func(path string) bool) (canon, translated []Record) {
	for _, r := range records {
		if canonical(r.Path) {
			canon = append(canon, r)
		} else {
			translated = append(translated, r)
		}
	}
	return canon, translated
}

// DialogueSet pools the dialogue numbers of records, skipping unnumbered ones.
func DialogueSet(records []Record) map[int]struct{} {
	set := make(map[int]struct{}, len(records))
	for _, r := range records {
		if r.Dialogue > 0 {
			set[r.Dialogue] = struct{}{}
		}
	}
	return set
}

// GroupByPath groups records per source path. Paths are returned sorted and
// each group is ordered by file line.
func GroupByPath(records []Record) ([]string, map[string][]Record) {
	groups := make(map[string][]Record)
	for _, r := range records {
		groups[r.Path] = append(groups[r.Path], r)
	}
	paths := make([]string, 0, len(groups))
	for p, g := range groups {
		paths = append(paths, p)
		sort.SliceStable(g, func(i, j int) bool { return g[i].FileLine < g[j].FileLine })
	}
	sort.Strings(paths)
	return paths, groups
}

// TagCount is one row of a removal summary.
type TagCount struct {
	Tag   string
	Count int
}

// CountTags tallies removed tags, most frequent first, ties by name.
func CountTags(records []Record) []TagCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Bracketed()]++
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
