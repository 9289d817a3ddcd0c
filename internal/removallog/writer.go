package removallog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Shape selects one of the two text layouts a removal log can take.
type Shape int

const (
	// EndShape lists "Line <n> | Dialogue <d> | [<tag>]" per file section.
	EndShape Shape = iota
	// StartShape lists "Dialogue <d> (file line <n>) in <path>" entries.
	StartShape
)

// Meta is the run metadata written in the log header.
type Meta struct {
	Title string
	RunID string
	// Notes are extra "key: value" header lines.
	Notes []string
	// ByLanguage, when set, adds a per-language removal summary.
	ByLanguage map[string]int
}

const ruler = "============================================================"

// Write serializes records in the given shape.
func Write(w io.Writer, shape Shape, meta Meta, records []Record) error {
	bw := bufio.NewWriter(w)
	counts := CountTags(records)

	fmt.Fprintf(bw, "# %s\n", meta.Title)
	if meta.RunID != "" {
		fmt.Fprintf(bw, "# Run: %s\n", meta.RunID)
	}
	for _, note := range meta.Notes {
		fmt.Fprintf(bw, "# %s\n", note)
	}
	fmt.Fprintf(bw, "# Total removed: %d\n", len(records))
	fmt.Fprintf(bw, "# Unique tags: %d\n", len(counts))
	fmt.Fprintf(bw, "#%s\n\n", ruler[1:])

	if len(meta.ByLanguage) > 0 {
		fmt.Fprintln(bw, "## SUMMARY BY LANGUAGE:")
		langs := make([]string, 0, len(meta.ByLanguage))
		for lang := range meta.ByLanguage {
			langs = append(langs, lang)
		}
		sort.Slice(langs, func(i, j int) bool {
			a, b := meta.ByLanguage[langs[i]], meta.ByLanguage[langs[j]]
			if a != b {
				return a > b
			}
			return langs[i] < langs[j]
		})
		for _, lang := range langs {
			fmt.Fprintf(bw, "  %s: %d\n", lang, meta.ByLanguage[lang])
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, "## SUMMARY - Tags removed:")
	for _, c := range counts {
		fmt.Fprintf(bw, "  %s: %d occurrences\n", c.Tag, c.Count)
	}
	fmt.Fprintf(bw, "\n%s\n\n", ruler)

	fmt.Fprintln(bw, "## DETAILED LOCATIONS:")
	if shape == EndShape {
		fmt.Fprintln(bw, "# Format: Line <file line> | Dialogue <number> | [tag]")
	}
	fmt.Fprintln(bw)

	paths, groups := GroupByPath(records)
	for _, p := range paths {
		fmt.Fprintf(bw, "### %s\n", p)
		for _, r := range groups[p] {
			if shape == EndShape {
				writeEndEntry(bw, r)
			} else {
				writeStartEntry(bw, r)
			}
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func writeEndEntry(w io.Writer, r Record) {
	fmt.Fprintf(w, "  Line %d | Dialogue %s | %s\n", r.FileLine, dialogueLabel(r.Dialogue), r.Bracketed())
}

func writeStartEntry(w io.Writer, r Record) {
	if r.Dialogue > 0 {
		fmt.Fprintf(w, "Dialogue %d (file line %d) in %s\n", r.Dialogue, r.FileLine, r.Path)
	} else {
		fmt.Fprintf(w, "File line %d in %s\n", r.FileLine, r.Path)
	}
	fmt.Fprintf(w, "  Tag: %s\n", r.Bracketed())
	if r.Before != "" {
		fmt.Fprintf(w, "  Original: %s\n", strings.TrimSpace(r.Before))
	}
	if r.After != "" {
		fmt.Fprintf(w, "  Updated: %s\n", strings.TrimSpace(r.After))
	}
	fmt.Fprintln(w)
}

func dialogueLabel(n int) string {
	if n <= 0 {
		return "N/A"
	}
	return strconv.Itoa(n)
}

// WriteFile writes a removal log to path, creating parent directories.
func WriteFile(path string, shape Shape, meta Meta, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create removal log: %w", err)
	}
	defer f.Close()

	if err := Write(f, shape, meta, records); err != nil {
		return fmt.Errorf("write removal log: %w", err)
	}
	return f.Close()
}
