package parser

import "strings"

// Record groups the physical lines of one logical dialogue record: the
// numbered line and the continuation lines that follow it. Blank lines
// belong to no record.
type Record struct {
	// Number is the dialogue number, 0 for a record opened by an orphan
	// continuation at the top of the file.
	Number int
	// Lines are indices into ParseResult.Lines, in file order.
	Lines []int
}

// First is the index of the line that opened the record.
func (r Record) First() int { return r.Lines[0] }

// Last is the index of the record's final physical line.
func (r Record) Last() int { return r.Lines[len(r.Lines)-1] }

// Records groups lines the same way Merge folds them.
func (r *ParseResult) Records() []Record {
	var records []Record
	for i, l := range r.Lines {
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		if len(records) == 0 || IsHeader(l.Text) {
			records = append(records, Record{Number: ParseNumber(strings.TrimSpace(l.Text)), Lines: []int{i}})
			continue
		}
		last := &records[len(records)-1]
		last.Lines = append(last.Lines, i)
	}
	return records
}

// Text returns the record as Merge would render it.
func (r *ParseResult) Text(rec Record) string {
	parts := make([]string, 0, len(rec.Lines))
	for n, idx := range rec.Lines {
		t := strings.TrimRight(r.Lines[idx].Text, " \t\r")
		if n > 0 {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}
