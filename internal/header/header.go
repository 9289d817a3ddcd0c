// Package header regenerates the category index block at the top of
// annotated script files.
package header

import (
	"fmt"
	"os"
	"strings"

	"tagsync/internal/parser"
	"tagsync/internal/tags"

	"github.com/rs/zerolog/log"
)

// Marker opens the header block.
const Marker = "# Use these"

// Render produces the fixed-format header block. The block carries no
// trailing newline.
func Render(ix *Index) string {
	var b strings.Builder
	b.WriteString("# Use these to select lines by category.\n")
	b.WriteString("#\n")
	b.WriteString("# === CONTENT TYPE ===\n")
	for _, c := range tags.Categories {
		if nums, ok := ix.Content[c]; ok {
			writeRow(&b, string(c), nums)
		}
	}
	b.WriteString("#\n")
	b.WriteString("# === PROFESSIONALISM (customer_support only) ===\n")
	for _, f := range tags.Facets {
		if nums, ok := ix.Professionalism[f]; ok {
			writeRow(&b, string(f), nums)
		}
	}
	b.WriteString("#\n")
	fmt.Fprintf(&b, "# TOTAL: %d speaker lines\n", ix.Total)
	b.WriteString("#")
	return b.String()
}

func writeRow(b *strings.Builder, name string, nums []int) {
	fmt.Fprintf(b, "# %s: %s  # %d lines\n", name, RangesToString(nums), len(unique(nums)))
}

// Replace swaps the existing header block for block. The old block runs
// from the marker line through the comment lines that follow it, up to
// the first section header or non-comment line. Without a marker the
// block is inserted at the top, followed by a blank line.
func Replace(content, block string) string {
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, Marker) {
			start = i
			break
		}
	}
	if start < 0 {
		return block + "\n\n" + content
	}

	end := start + 1
	for end < len(lines) {
		line := lines[end]
		if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "# ---") || sectionHeader.MatchString(line) {
			break
		}
		end++
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:start]...)
	out = append(out, block)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}

// Result describes what ProcessFile did to one file.
type Result struct {
	Path       string
	Index      *Index
	Backfilled int
	Changed    bool
}

// Regenerate rebuilds content with a fresh header block. ok is false when
// the content has no classified lines, in which case content is returned
// unchanged.
func Regenerate(content string, backfill bool) (string, *Result, bool) {
	lines := strings.Split(content, "\n")
	ix := Classify(lines)
	res := &Result{Index: ix}
	if ix.Total == 0 {
		return content, res, false
	}

	if backfill && ix.Style == Sections {
		res.Backfilled = Backfill(lines, ix)
	}

	updated := Replace(strings.Join(lines, "\n"), Render(ix))
	res.Changed = updated != content
	return updated, res, true
}

// ProcessFile regenerates the header of an annotated file. With backfill
// set, section-style files also get inline category tags. The file is
// written only if its content changed; a file with no classified lines is
// left alone.
func ProcessFile(path string, backfill bool) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotated file: %w", err)
	}

	updated, res, ok := Regenerate(string(data), backfill)
	res.Path = path
	if !ok {
		log.Warn().Str("file", path).Msg("No classified lines, header left untouched")
		return res, nil
	}
	if !res.Changed {
		return res, nil
	}

	if err := parser.WriteFile(path, []byte(updated)); err != nil {
		return nil, err
	}

	log.Info().
		Str("file", path).
		Str("style", res.Index.Style.String()).
		Int("total", res.Index.Total).
		Int("backfilled", res.Backfilled).
		Msg("Header regenerated")
	return res, nil
}
