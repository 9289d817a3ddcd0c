package tags

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Position is where a tag sits on a dialogue line.
type Position int

const (
	// Start is right after the dialogue number (and optional speaker label).
	Start Position = iota
	// End is right before the end of the line.
	End
)

func (p Position) String() string {
	if p == End {
		return "end"
	}
	return "start"
}

// ParsePosition maps "start"/"end" back to a Position.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return Start, true
	case "end":
		return End, true
	}
	return Start, false
}

// Tag is one bracketed annotation found on a line.
type Tag struct {
	// Raw is the bracket contents in their original case.
	Raw string
	// Normalized is the lower-cased form used for set membership.
	Normalized string
	Position   Position
}

// NewTag builds a Tag from bracket contents.
func NewTag(raw string, pos Position) Tag {
	return Tag{Raw: raw, Normalized: Normalize(raw), Position: pos}
}

// Bracketed returns the tag as written in files: "[raw]".
func (t Tag) Bracketed() string {
	return "[" + t.Raw + "]"
}

// Normalize lower-cases bracket contents. Surrounding brackets, if any, are
// dropped so "[Sighs]" and "sighs" compare equal.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return cases.Lower(language.Und).String(s)
}

// startPattern: optional "<n>. ", optional "label:", then the bracket.
var startPattern = regexp.MustCompile(`^(?:(\d+)\.\s)?(?:([^\[\]:,.!?\n]+:)\s*)?\[([^\[\]\n]+)\]`)

// endPattern: the last bracket group, followed only by whitespace.
var endPattern = regexp.MustCompile(`\s*\[([^\[\]\n]+)\]\s*$`)

// undelimitedPattern: a dialogue number glued to a bracket, "12.[sighs]".
var undelimitedPattern = regexp.MustCompile(`^\s*\d+\.\[`)

// ExtractStart returns the start tag of line, if any.
func ExtractStart(line string) (Tag, bool) {
	m := startPattern.FindStringSubmatch(line)
	if m == nil {
		return Tag{}, false
	}
	return NewTag(m[3], Start), true
}

// ExtractEnd returns the end tag of line, if any. A line that is nothing but
// a number and a tag ("7. [sighs]") reports no end tag. A speaker label
// before the bracket does not count as such a line.
func ExtractEnd(line string) (Tag, bool) {
	loc := endLocation(line)
	if loc == nil {
		return Tag{}, false
	}
	return NewTag(line[loc[2]:loc[3]], End), true
}

// Extract dispatches on position.
func Extract(line string, pos Position) (Tag, bool) {
	if pos == End {
		return ExtractEnd(line)
	}
	return ExtractStart(line)
}

func endLocation(line string) []int {
	loc := endPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil
	}
	if start := startPattern.FindStringSubmatchIndex(line); start != nil && start[4] < 0 && start[6] == loc[2] {
		return nil
	}
	return loc
}

// StripStart removes the start tag and the whitespace after it, keeping the
// dialogue number and speaker label: "240. [nodding] Sure" -> "240. Sure".
func StripStart(line string) (string, Tag, bool) {
	m := startPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return line, Tag{}, false
	}
	tag := NewTag(line[m[6]:m[7]], Start)

	var prefix strings.Builder
	if m[2] >= 0 {
		prefix.WriteString(line[m[2]:m[3]])
		prefix.WriteString(". ")
	}
	if m[4] >= 0 {
		prefix.WriteString(line[m[4]:m[5]])
		prefix.WriteString(" ")
	}
	rest := strings.TrimLeft(line[m[1]:], " \t")
	return prefix.String() + rest, tag, true
}

// StripEnd removes the end tag together with the whitespace around it.
func StripEnd(line string) (string, Tag, bool) {
	loc := endLocation(line)
	if loc == nil {
		return line, Tag{}, false
	}
	return line[:loc[0]], NewTag(line[loc[2]:loc[3]], End), true
}

// Strip dispatches on position.
func Strip(line string, pos Position) (string, Tag, bool) {
	if pos == End {
		return StripEnd(line)
	}
	return StripStart(line)
}

// Undelimited reports a line whose number is followed directly by a bracket
// ("12.[sighs] Hi"). Such a line does not open a record and no start tag is
// read from it.
func Undelimited(line string) bool {
	return undelimitedPattern.MatchString(line)
}

// StripLastBracket removes the trailing bracket group of a physical line
// without the sole-tag rule. It is used on the last continuation line of a
// record whose merged text has an end tag.
func StripLastBracket(line string) (string, bool) {
	loc := endPattern.FindStringIndex(line)
	if loc == nil {
		return line, false
	}
	return line[:loc[0]], true
}
