package audit

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"tagsync/internal/textutil"
)

const rule = "================================================================================"

// samplesPerTag bounds the example lines printed per tag.
const samplesPerTag = 3

// WriteUnlisted writes the unlisted end-tag report.
func WriteUnlisted(w io.Writer, findings []Finding) error {
	bw := bufio.NewWriter(w)
	counts := CountTags(findings)

	fmt.Fprintln(bw, "# Tags at end of lines NOT in allowed list")
	fmt.Fprintf(bw, "# Total instances: %d\n", len(findings))
	fmt.Fprintf(bw, "# Unique tags: %d\n\n", len(counts))

	fmt.Fprintln(bw, "## SUMMARY (sorted by count):")
	for _, c := range counts {
		fmt.Fprintf(bw, "  [%s]: %d occurrences\n", c.Tag, c.Count)
	}
	fmt.Fprintln(bw)

	writeLocations(bw, findings)
	return bw.Flush()
}

// WriteStartTags writes the start-tag discovery report.
func WriteStartTags(w io.Writer, findings []Finding) error {
	bw := bufio.NewWriter(w)
	counts := CountTags(findings)

	fmt.Fprintln(bw, "# ALL tags at START of dialogue lines")
	fmt.Fprintf(bw, "# Total instances: %d\n", len(findings))
	fmt.Fprintf(bw, "# Unique tags: %d\n\n", len(counts))

	fmt.Fprintln(bw, "## SUMMARY (sorted by count):")
	for _, c := range counts {
		fmt.Fprintf(bw, "  [%s]: %d occurrences\n", c.Tag, c.Count)
	}
	fmt.Fprintln(bw)

	writeLocations(bw, findings)
	return bw.Flush()
}

func writeLocations(bw *bufio.Writer, findings []Finding) {
	fmt.Fprintln(bw, "## DETAILED LOCATIONS:")
	fmt.Fprintln(bw)

	byPath := make(map[string][]Finding)
	for _, f := range findings {
		byPath[f.Path] = append(byPath[f.Path], f)
	}
	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fmt.Fprintf(bw, "### %s\n", p)
		for _, f := range byPath[p] {
			dialogue := "N/A"
			if f.Dialogue > 0 {
				dialogue = fmt.Sprint(f.Dialogue)
			}
			fmt.Fprintf(bw, "  Line %d | Dialogue %s | %s\n", f.FileLine, dialogue, f.Tag.Bracketed())
		}
		fmt.Fprintln(bw)
	}
}

// WriteFrequency writes the end-tag frequency report grouped by variant.
func WriteFrequency(w io.Writer, findings []Finding) error {
	bw := bufio.NewWriter(w)
	all := CountTags(findings)

	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "END-OF-LINE TAGS FOUND")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "\nUnique tags: %d\n", len(all))
	fmt.Fprintln(bw, "\nAll tags (sorted by frequency):")
	for _, c := range all {
		fmt.Fprintf(bw, "  [%s]\n", c.Tag)
	}

	fmt.Fprintf(bw, "\n%s\nTAGS BY LANGUAGE/FILE\n%s\n", rule, rule)
	byFolder := FrequencyByFolder(findings)
	folders := make([]string, 0, len(byFolder))
	for folder := range byFolder {
		folders = append(folders, folder)
	}
	sort.Strings(folders)
	for _, folder := range folders {
		total := 0
		for _, c := range byFolder[folder] {
			total += c.Count
		}
		fmt.Fprintf(bw, "\n%s (%d total):\n", folder, total)
		for _, c := range byFolder[folder] {
			fmt.Fprintf(bw, "  [%s]: %d\n", c.Tag, c.Count)
		}
	}

	fmt.Fprintf(bw, "\n%s\nSAMPLE LINES FOR EACH TAG\n%s\n", rule, rule)
	samples := make(map[string][]Finding)
	for _, f := range findings {
		samples[f.Tag.Normalized] = append(samples[f.Tag.Normalized], f)
	}
	names := make([]string, 0, len(samples))
	for tag := range samples {
		names = append(names, tag)
	}
	sort.Strings(names)
	for _, tag := range names {
		fmt.Fprintf(bw, "\n[%s]  :\n", tag)
		occ := samples[tag]
		for _, f := range occ[:min(samplesPerTag, len(occ))] {
			fmt.Fprintf(bw, "  %s:%d -> %s\n", f.Folder, f.FileLine, textutil.Truncate(strings.TrimSpace(f.Text), 97))
		}
		if len(occ) > samplesPerTag {
			fmt.Fprintf(bw, "  ... and %d more\n", len(occ)-samplesPerTag)
		}
	}

	return bw.Flush()
}
