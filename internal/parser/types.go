package parser

// DialogueLine is one physical line of a script file with its dialogue
// number resolved.
type DialogueLine struct {
	// Number is the dialogue number, 0 when the line carries none.
	Number int
	// Text is the line as stored, tags included.
	Text string
	// FileLine is the 1-based line number in the source file.
	FileLine int
}

// Numbered reports whether the line opens a dialogue record.
func (l DialogueLine) Numbered() bool {
	return l.Number > 0
}

// ParseResult holds a script file read fully into memory.
type ParseResult struct {
	// FilePath is the path the file was read from.
	FilePath string
	// Lines are the file lines in order; callers mutate Text in place.
	Lines []DialogueLine
	// RawLines preserves the content as read, for change detection.
	RawLines []string
	// TrailingNewline records whether the file ended with a newline.
	TrailingNewline bool
}

// Changed reports whether any line differs from what was read.
func (r *ParseResult) Changed() bool {
	if len(r.Lines) != len(r.RawLines) {
		return true
	}
	for i, l := range r.Lines {
		if l.Text != r.RawLines[i] {
			return true
		}
	}
	return false
}

// Texts returns the current line texts.
func (r *ParseResult) Texts() []string {
	out := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Text
	}
	return out
}
