package audit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsync/internal/corpus"
	"tagsync/internal/tags"
)

var validator = tags.NewValidator(tags.Vocabulary{
	Allowed: []string{"sighs"},
	Silent:  []string{"nodding"},
})

func scanCorpus(t *testing.T) (*Report, string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"english_1/a_en_lines_numbered.txt": "1. [nodding] Hello [pause]\n2. Fine [sighs]\n3. [sighs]\n",
		"french_1/a_fr_lines_numbered.txt":  "1. Bonjour\nencore [pause]\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	ix, err := corpus.NewWalker("english_").Walk(root)
	require.NoError(t, err)

	missing := corpus.File{Path: filepath.Join(root, "german_1/gone_lines_numbered.txt")}
	report := NewScanner(validator, 2).Scan(context.Background(), append(ix.Files(), missing))
	return report, root
}

func TestScan(t *testing.T) {
	report, root := scanCorpus(t)

	require.Len(t, report.Files, 2)
	assert.Equal(t, []string{filepath.Join(root, "german_1/gone_lines_numbered.txt")}, report.Failed)

	unlisted := report.Unlisted()
	require.Len(t, unlisted, 2)
	assert.Equal(t, "pause", unlisted[0].Tag.Raw)
	assert.Equal(t, 1, unlisted[0].FileLine)
	assert.Equal(t, 2, unlisted[1].FileLine, "wrapped record reports its last physical line")
	assert.Equal(t, "1. Bonjour encore [pause]", unlisted[1].Text)

	start := report.StartTags()
	require.Len(t, start, 2)
	assert.False(t, start[0].Allowed, "silent start tag")
	assert.True(t, start[1].Allowed)
	assert.Equal(t, 3, start[1].Dialogue)

	assert.Len(t, report.EndTags(), 3)
}

func TestCountTags(t *testing.T) {
	report, _ := scanCorpus(t)

	assert.Equal(t, []Count{{Tag: "pause", Count: 2}, {Tag: "sighs", Count: 1}}, CountTags(report.EndTags()))

	byFolder := FrequencyByFolder(report.EndTags())
	assert.Equal(t, []Count{{Tag: "pause", Count: 1}, {Tag: "sighs", Count: 1}}, byFolder["english_1"])
	assert.Equal(t, []Count{{Tag: "pause", Count: 1}}, byFolder["french_1"])
}

func TestWriteReports(t *testing.T) {
	report, root := scanCorpus(t)

	var buf bytes.Buffer
	require.NoError(t, WriteUnlisted(&buf, report.Unlisted()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Tags at end of lines NOT in allowed list\n# Total instances: 2\n"))
	assert.Contains(t, out, "  [pause]: 2 occurrences\n")
	assert.Contains(t, out, "### "+filepath.Join(root, "english_1/a_en_lines_numbered.txt")+"\n  Line 1 | Dialogue 1 | [pause]\n")

	buf.Reset()
	require.NoError(t, WriteStartTags(&buf, report.StartTags()))
	assert.Contains(t, buf.String(), "# ALL tags at START of dialogue lines")
	assert.Contains(t, buf.String(), "  Line 3 | Dialogue 3 | [sighs]")

	buf.Reset()
	require.NoError(t, WriteFrequency(&buf, report.EndTags()))
	out = buf.String()
	assert.Contains(t, out, "END-OF-LINE TAGS FOUND")
	assert.Contains(t, out, "english_1 (2 total):\n  [pause]: 1\n  [sighs]: 1\n")
	assert.Contains(t, out, "  english_1:1 -> 1. [nodding] Hello [pause]\n")
}

func TestWriteFrequency_SampleLimit(t *testing.T) {
	var findings []Finding
	for i := 1; i <= 5; i++ {
		findings = append(findings, Finding{Folder: "french_1", FileLine: i, Tag: tags.NewTag("pause", tags.End), Text: strings.Repeat("x", 120)})
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFrequency(&buf, findings))
	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "  french_1:"))
	assert.Contains(t, out, "  ... and 2 more\n")
	assert.Contains(t, out, strings.Repeat("x", 97)+"...\n")
}
