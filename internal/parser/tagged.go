package parser

import "tagsync/internal/tags"

// TagEdit describes one tag removed from a record.
type TagEdit struct {
	Tag tags.Tag
	// Line is the index of the physical line that changed.
	Line int
	// Before and After are the text of that line around the removal.
	Before string
	After  string
}

// tagSource is the text a tag at pos is read from: the numbered line for
// start tags, the merged record for end tags.
func (r *ParseResult) tagSource(rec Record, pos tags.Position) string {
	if pos == tags.Start {
		return r.Lines[rec.First()].Text
	}
	return r.Text(rec)
}

// RecordTag returns the tag at pos on rec.
func (r *ParseResult) RecordTag(rec Record, pos tags.Position) (tags.Tag, bool) {
	return tags.Extract(r.tagSource(rec, pos), pos)
}

// StripRecordTag removes the tag at pos from rec in place. An end tag split
// across physical lines ("[long" / "pause]") cannot be cut from the last
// line alone; the record is then folded into its first line and the other
// lines are left blank.
func (r *ParseResult) StripRecordTag(rec Record, pos tags.Position) (TagEdit, bool) {
	if pos == tags.Start || len(rec.Lines) == 1 {
		idx := rec.Last()
		if pos == tags.Start {
			idx = rec.First()
		}
		before := r.Lines[idx].Text
		updated, tag, ok := tags.Strip(before, pos)
		if !ok {
			return TagEdit{}, false
		}
		r.Lines[idx].Text = updated
		return TagEdit{Tag: tag, Line: idx, Before: before, After: updated}, true
	}

	merged := r.Text(rec)
	tag, ok := tags.ExtractEnd(merged)
	if !ok {
		return TagEdit{}, false
	}

	idx := rec.Last()
	before := r.Lines[idx].Text
	if updated, ok := tags.StripLastBracket(before); ok {
		r.Lines[idx].Text = updated
		return TagEdit{Tag: tag, Line: idx, Before: before, After: updated}, true
	}

	folded, _, ok := tags.StripEnd(merged)
	if !ok {
		return TagEdit{}, false
	}
	idx = rec.First()
	for _, i := range rec.Lines[1:] {
		r.Lines[i].Text = ""
	}
	r.Lines[idx].Text = folded
	return TagEdit{Tag: tag, Line: idx, Before: merged, After: folded}, true
}
