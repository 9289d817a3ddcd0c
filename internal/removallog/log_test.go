package removallog

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsync/internal/tags"
)

func TestWriteParse_EndShape(t *testing.T) {
	records := []Record{
		{Position: tags.End, Dialogue: 12, Path: "/c/english_1/a_lines_numbered.txt", FileLine: 33, Tag: "pause"},
		{Position: tags.End, Dialogue: 0, Path: "/c/english_1/a_lines_numbered.txt", FileLine: 2, Tag: "Hmm"},
		{Position: tags.End, Dialogue: 5, Path: "/c/english_2/b_lines_numbered.txt", FileLine: 7, Tag: "laughs"},
	}

	var buf bytes.Buffer
	meta := Meta{
		Title:      "Unlisted end tags removed",
		RunID:      "run-1",
		Notes:      []string{"Files scanned: 2"},
		ByLanguage: map[string]int{"english_1": 2, "english_2": 1},
	}
	require.NoError(t, Write(&buf, EndShape, meta, records))

	out := buf.String()
	assert.Contains(t, out, "# Run: run-1")
	assert.Contains(t, out, "# Total removed: 3")
	assert.Contains(t, out, "  english_1: 2\n")
	assert.Contains(t, out, "  Line 33 | Dialogue 12 | [pause]")
	assert.Contains(t, out, "  Line 2 | Dialogue N/A | [Hmm]")
	assert.Less(t, strings.Index(out, "Line 2 |"), strings.Index(out, "Line 33 |"), "entries ordered by file line")

	l, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Unparsed)
	assert.ElementsMatch(t, records, l.Records)
}

func TestWriteParse_StartShape(t *testing.T) {
	records := []Record{
		{Position: tags.Start, Dialogue: 240, Path: "/c/french_1/a_lines.txt", FileLine: 241, Tag: "nodding", Before: "240. [nodding] Sure", After: "240. Sure"},
		{Position: tags.Start, Dialogue: 0, Path: "/c/french_1/a_lines.txt", FileLine: 1, Tag: "pause", Before: "[pause] Intro", After: "Intro"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, StartShape, Meta{Title: "Silent start tags removed"}, records))

	out := buf.String()
	assert.Contains(t, out, "Dialogue 240 (file line 241) in /c/french_1/a_lines.txt\n  Tag: [nodding]\n  Original: 240. [nodding] Sure\n  Updated: 240. Sure\n")
	assert.Contains(t, out, "File line 1 in /c/french_1/a_lines.txt")

	l, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Unparsed)
	assert.ElementsMatch(t, records, l.Records)
}

func TestParse_LegacyShapes(t *testing.T) {
	input := `# Tags removed
## SUMMARY - Tags removed:
  [pause]: 2 occurrences

## DETAILED LOCATIONS:

### /c/english_1/a_lines_numbered.txt
Line 33: [pause]

Dialogue 309 in /c/french_1/b_tag_match_lines.txt
  Tag: [soupir]
`
	l, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, l.Records, 2)

	assert.Equal(t, Record{Position: tags.End, Path: "/c/english_1/a_lines_numbered.txt", FileLine: 33, Tag: "pause"}, l.Records[0])
	assert.Equal(t, Record{Position: tags.Start, Dialogue: 309, Path: "/c/french_1/b_tag_match_lines.txt", Tag: "soupir"}, l.Records[1])
}

func TestParse_Unparsed(t *testing.T) {
	input := `### /c/a_lines.txt
Line 3 | Dialogue 1 | [pause]
garbage line here
Line x | Dialogue 2 | [pause]
`
	l, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, l.Records, 1)
	assert.Equal(t, 2, l.Unparsed)
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.Is(err, ErrLogNotFound))
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "start_removed.txt")
	records := []Record{{Position: tags.Start, Dialogue: 3, Path: "/c/x_lines.txt", FileLine: 3, Tag: "sighs"}}

	require.NoError(t, WriteFile(path, StartShape, Meta{Title: "t"}, records))

	l, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.Path)
	assert.Equal(t, records, l.Records)
}

func TestPartitionAndPools(t *testing.T) {
	records := []Record{
		{Dialogue: 12, Path: "/c/english_1/a.txt", Tag: "pause"},
		{Dialogue: 12, Path: "/c/english_2/a.txt", Tag: "pause"},
		{Dialogue: 0, Path: "/c/english_1/a.txt", Tag: "hmm"},
		{Dialogue: 4, Path: "/c/french_1/a.txt", Tag: "soupir"},
	}

	canon, translated := Partition(records, func(p string) bool { return strings.Contains(p, "/english_") })
	assert.Len(t, canon, 3)
	assert.Len(t, translated, 1)

	set := DialogueSet(canon)
	assert.Equal(t, map[int]struct{}{12: {}}, set)

	counts := CountTags(records)
	require.Len(t, counts, 3)
	assert.Equal(t, TagCount{Tag: "[pause]", Count: 2}, counts[0])
	assert.Equal(t, "[hmm]", counts[1].Tag)
}
