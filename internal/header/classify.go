package header

import (
	"regexp"
	"strings"

	"tagsync/internal/parser"
	"tagsync/internal/tags"
)

// Style is how a file marks the content category of its lines.
type Style int

const (
	// Inline: each numbered line carries "[category]" or
	// "[customer_support|facet]" right after its number.
	Inline Style = iota
	// Sections: "# --- CATEGORY ---" markers scope the lines that follow.
	Sections
)

func (s Style) String() string {
	if s == Sections {
		return "sections"
	}
	return "inline"
}

var (
	sectionHeader = regexp.MustCompile(`^#\s*---\s*(\w+)(?:\s*\(continued\))?\s*---`)
	inlineTag     = regexp.MustCompile(`^(\d+)\.\s*\[([^\]]+)\]`)
)

// Index is the category index of one file.
type Index struct {
	Style           Style
	Content         map[tags.Category][]int
	Professionalism map[tags.Facet][]int
	// Total is the highest classified dialogue number.
	Total int
	// assigned maps dialogue numbers to their section category, for backfill.
	assigned map[int]tags.Category
}

func newIndex(style Style) *Index {
	return &Index{
		Style:           style,
		Content:         make(map[tags.Category][]int),
		Professionalism: make(map[tags.Facet][]int),
		assigned:        make(map[int]tags.Category),
	}
}

func (ix *Index) add(n int, c tags.Category, f tags.Facet) {
	ix.Content[c] = append(ix.Content[c], n)
	if c == tags.CustomerSupport && f != "" {
		ix.Professionalism[f] = append(ix.Professionalism[f], n)
	}
	if n > ix.Total {
		ix.Total = n
	}
}

// ParseSection returns the category named by a section header line.
func ParseSection(line string) (tags.Category, bool) {
	m := sectionHeader.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return tags.LookupCategory(m[1])
}

// inlineCategory reads the category tag right after the dialogue number.
// Mode tags and vocal tags are not categories and yield ok == false.
func inlineCategory(line string) (int, tags.Category, tags.Facet, bool) {
	m := inlineTag.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, "", "", false
	}
	c, f, ok := tags.ParseCategory(tags.NewTag(m[2], tags.Start))
	if !ok {
		return 0, "", "", false
	}
	return parser.ParseNumber(strings.TrimSpace(line)), c, f, true
}

// Classify builds the category index of a file. A file with inline category
// tags and no section headers is read inline; anything else is read as a
// fold over the lines carrying the most recent section category.
func Classify(lines []string) *Index {
	hasInline, hasSections := false, false
	for _, line := range lines {
		if _, ok := ParseSection(line); ok {
			hasSections = true
		}
		if _, _, _, ok := inlineCategory(line); ok {
			hasInline = true
		}
	}

	if hasInline && !hasSections {
		ix := newIndex(Inline)
		for _, line := range lines {
			if n, c, f, ok := inlineCategory(line); ok && n > 0 {
				ix.add(n, c, f)
			}
		}
		return ix
	}

	ix := newIndex(Sections)
	var current tags.Category
	for _, line := range lines {
		if c, ok := ParseSection(line); ok {
			current = c
			continue
		}
		n := parser.ParseNumber(strings.TrimSpace(line))
		if n == 0 || current == "" {
			continue
		}
		var facet tags.Facet
		if _, c, f, ok := inlineCategory(line); ok && c == current {
			facet = f
		}
		ix.add(n, current, facet)
		ix.assigned[n] = current
	}
	return ix
}

var numberPrefix = regexp.MustCompile(`^(\d+\.)\s*`)

// Backfill inserts the section category as an inline tag on every assigned
// line that does not carry it yet: "1. [mix] text" -> "1. [dialogue] [mix] text".
// It returns the number of lines changed.
func Backfill(lines []string, ix *Index) int {
	changed := 0
	for i, line := range lines {
		if _, ok := ParseSection(line); ok {
			continue
		}
		n := parser.ParseNumber(strings.TrimSpace(line))
		c, ok := ix.assigned[n]
		if n == 0 || !ok {
			continue
		}
		if strings.Contains(line, "["+string(c)+"]") || strings.Contains(line, "["+string(c)+"|") {
			continue
		}
		updated := numberPrefix.ReplaceAllString(line, "${1} "+tags.CategoryTag(c)+" ")
		if updated == line {
			continue
		}
		lines[i] = updated
		changed++
	}
	return changed
}
