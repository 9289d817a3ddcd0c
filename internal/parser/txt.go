package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches the dialogue number that opens a record: "42. ".
var numberPattern = regexp.MustCompile(`^(\d+)\.\s`)

// ParseNumber returns the dialogue number opening line, or 0.
func ParseNumber(line string) int {
	m := numberPattern.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// IsHeader reports whether line opens a new numbered record.
func IsHeader(line string) bool {
	return numberPattern.MatchString(strings.TrimSpace(line))
}

// ReadFile loads a script file and resolves the dialogue number of each line.
func ReadFile(filePath string) (*ParseResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}
	result, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scan script file: %w", err)
	}
	result.FilePath = filePath
	return result, nil
}

// Parse splits data into lines. Line terminators are normalized to "\n".
func Parse(data []byte) (*ParseResult, error) {
	result := &ParseResult{
		TrailingNewline: bytes.HasSuffix(data, []byte("\n")),
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 1024*1024), 4*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		result.RawLines = append(result.RawLines, line)
		result.Lines = append(result.Lines, DialogueLine{
			Number:   ParseNumber(line),
			Text:     line,
			FileLine: lineNum,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Reconstruct renders the current lines back to file content.
func (r *ParseResult) Reconstruct() []byte {
	if len(r.Lines) == 0 {
		return nil
	}
	out := strings.Join(r.Texts(), "\n")
	if r.TrailingNewline {
		out += "\n"
	}
	return []byte(out)
}

// WriteIfChanged rewrites the file only when its lines were mutated.
// It reports whether a write happened.
func (r *ParseResult) WriteIfChanged() (bool, error) {
	if !r.Changed() {
		return false, nil
	}
	if err := WriteFile(r.FilePath, r.Reconstruct()); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFile replaces the file content, keeping its permission bits.
func WriteFile(filePath string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(filePath); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(filePath, content, mode); err != nil {
		return fmt.Errorf("write script file: %w", err)
	}
	return nil
}
