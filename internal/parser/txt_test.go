package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsync/internal/tags"
)

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 42, ParseNumber("42. Hello"))
	assert.Equal(t, 7, ParseNumber("7. [sighs]"))
	assert.Equal(t, 0, ParseNumber("42.Hello"))
	assert.Equal(t, 0, ParseNumber("Hello 42. there"))
	assert.Equal(t, 0, ParseNumber(""))
}

func TestParse_Reconstruct(t *testing.T) {
	for _, content := range []string{
		"1. A\n2. B\n",
		"1. A\n2. B",
		"1. A\n\n\ncontinued\n",
	} {
		doc, err := Parse([]byte(content))
		require.NoError(t, err)
		assert.Equal(t, content, string(doc.Reconstruct()))
		assert.False(t, doc.Changed())
	}
}

func TestParse_LineNumbers(t *testing.T) {
	doc, err := Parse([]byte("1. A\ncont\n\n2. B\n"))
	require.NoError(t, err)
	require.Len(t, doc.Lines, 4)

	assert.Equal(t, 1, doc.Lines[0].Number)
	assert.True(t, doc.Lines[0].Numbered())
	assert.Equal(t, 0, doc.Lines[1].Number)
	assert.Equal(t, 4, doc.Lines[3].FileLine)
	assert.Equal(t, 2, doc.Lines[3].Number)
}

func TestRecords(t *testing.T) {
	doc, err := Parse([]byte("preface\n12. Je suis\n\net triste [soupir]\n13. Oui [rire]\n"))
	require.NoError(t, err)

	recs := doc.Records()
	require.Len(t, recs, 3)

	assert.Equal(t, 0, recs[0].Number)
	assert.Equal(t, 12, recs[1].Number)
	assert.Equal(t, []int{1, 3}, recs[1].Lines)
	assert.Equal(t, "12. Je suis et triste [soupir]", doc.Text(recs[1]))
	assert.Equal(t, 13, recs[2].Number)
}

func TestRecordTag(t *testing.T) {
	doc, err := Parse([]byte("7. [sighs]\n8. [laughs] Hello\nthere [pause]\n"))
	require.NoError(t, err)
	recs := doc.Records()
	require.Len(t, recs, 2)

	start, ok := doc.RecordTag(recs[0], tags.Start)
	require.True(t, ok)
	assert.Equal(t, "sighs", start.Raw)
	_, ok = doc.RecordTag(recs[0], tags.End)
	assert.False(t, ok, "a sole tag is reported as start only")

	start, ok = doc.RecordTag(recs[1], tags.Start)
	require.True(t, ok)
	assert.Equal(t, "laughs", start.Raw)
	end, ok := doc.RecordTag(recs[1], tags.End)
	require.True(t, ok)
	assert.Equal(t, "pause", end.Raw)
}

func TestStripRecordTag(t *testing.T) {
	doc, err := Parse([]byte("12. Je suis\net triste [soupir]\n13. [rire] Oui [soupir]\n"))
	require.NoError(t, err)
	recs := doc.Records()

	edit, ok := doc.StripRecordTag(recs[0], tags.End)
	require.True(t, ok)
	assert.Equal(t, "soupir", edit.Tag.Raw)
	assert.Equal(t, 1, edit.Line)
	assert.Equal(t, "et triste [soupir]", edit.Before)
	assert.Equal(t, "et triste", edit.After)
	assert.Equal(t, "et triste", doc.Lines[1].Text)
	assert.Equal(t, "12. Je suis", doc.Lines[0].Text)

	edit, ok = doc.StripRecordTag(recs[1], tags.Start)
	require.True(t, ok)
	assert.Equal(t, "rire", edit.Tag.Raw)
	assert.Equal(t, 2, edit.Line)
	assert.Equal(t, "13. Oui [soupir]", doc.Lines[2].Text)

	_, ok = doc.StripRecordTag(recs[0], tags.End)
	assert.False(t, ok)
}

func TestStripRecordTag_BracketAcrossLines(t *testing.T) {
	doc, err := Parse([]byte("12. Hello there [long\npause]\n13. Next\n"))
	require.NoError(t, err)
	recs := doc.Records()
	require.Len(t, recs, 2)

	tag, ok := doc.RecordTag(recs[0], tags.End)
	require.True(t, ok)
	assert.Equal(t, "long pause", tag.Raw)

	edit, ok := doc.StripRecordTag(recs[0], tags.End)
	require.True(t, ok)
	assert.Equal(t, 0, edit.Line)
	assert.Equal(t, "12. Hello there [long pause]", edit.Before)
	assert.Equal(t, "12. Hello there", edit.After)
	assert.True(t, doc.Changed())
	assert.Equal(t, "12. Hello there", doc.Text(recs[0]))
	assert.Equal(t, "12. Hello there\n\n13. Next\n", string(doc.Reconstruct()))

	_, ok = doc.RecordTag(recs[0], tags.End)
	assert.False(t, ok)

	reparsed, err := Parse(doc.Reconstruct())
	require.NoError(t, err)
	_, ok = reparsed.RecordTag(reparsed.Records()[0], tags.End)
	assert.False(t, ok)
}

func TestRecordTag_LabelledLine(t *testing.T) {
	doc, err := Parse([]byte("12. Here is what I think: [mumbles]\n"))
	require.NoError(t, err)
	rec := doc.Records()[0]

	end, ok := doc.RecordTag(rec, tags.End)
	require.True(t, ok)
	assert.Equal(t, "mumbles", end.Raw)

	edit, ok := doc.StripRecordTag(rec, tags.End)
	require.True(t, ok)
	assert.Equal(t, "12. Here is what I think:", edit.After)
}

func TestWriteIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a_lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("1. Hi [pause]\n"), 0o600))

	doc, err := ReadFile(path)
	require.NoError(t, err)

	written, err := doc.WriteIfChanged()
	require.NoError(t, err)
	assert.False(t, written)

	doc.Lines[0].Text = "1. Hi"
	written, err = doc.WriteIfChanged()
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1. Hi\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
