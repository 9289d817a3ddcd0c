package removallog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"tagsync/internal/tags"
)

// ErrLogNotFound is returned when a removal log to replay does not exist.
var ErrLogNotFound = errors.New("removal log not found")

var (
	// "Line 33 | Dialogue 12 | [pause]"
	endEntry = regexp.MustCompile(`^Line (\d+) \| Dialogue (\d+|N/A) \| \[(.+)\]$`)
	// "Line 33: [pause]", written by the early unlisted-tag checker.
	bareEndEntry = regexp.MustCompile(`^Line (\d+): \[(.+)\]$`)
	// "Dialogue 309 (file line 323) in /path/file.txt"
	startEntry = regexp.MustCompile(`^Dialogue (\d+) \(file line (\d+)\) in (.+)$`)
	// "File line 3 in /path/file.txt"
	unnumberedStartEntry = regexp.MustCompile(`^File line (\d+) in (.+)$`)
	// "Dialogue 309 in /path/file.txt", written by tag_match propagation.
	propagatedEntry = regexp.MustCompile(`^Dialogue (\d+) in (.+)$`)

	tagField      = regexp.MustCompile(`^Tag: \[(.+)\]$`)
	originalField = regexp.MustCompile(`^Original: (.*)$`)
	updatedField  = regexp.MustCompile(`^Updated: (.*)$`)
)

// ParseFile reads a removal log from disk.
func ParseFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLogNotFound, path)
		}
		return nil, fmt.Errorf("open removal log: %w", err)
	}
	defer f.Close()

	l, err := Parse(f)
	if err != nil {
		return nil, err
	}
	l.Path = path
	return l, nil
}

// Parse reads either log shape. Lines inside the detail section that match
// no entry shape are counted in Log.Unparsed and otherwise skipped.
func Parse(r io.Reader) (*Log, error) {
	l := &Log{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	currentFile := ""
	inSummary := false
	// open is the start-shape record whose field lines follow.
	open := -1

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			open = -1
			continue
		case strings.HasPrefix(line, "### "):
			currentFile = strings.TrimSpace(line[4:])
			open = -1
			continue
		case strings.HasPrefix(line, "## "):
			inSummary = strings.HasPrefix(line, "## SUMMARY")
			continue
		case strings.HasPrefix(line, "#"), strings.Trim(line, "=") == "":
			continue
		case inSummary:
			continue
		}

		if open >= 0 {
			if m := tagField.FindStringSubmatch(line); m != nil {
				l.Records[open].Tag = m[1]
				continue
			}
			if m := originalField.FindStringSubmatch(line); m != nil {
				l.Records[open].Before = m[1]
				continue
			}
			if m := updatedField.FindStringSubmatch(line); m != nil {
				l.Records[open].After = m[1]
				continue
			}
		}

		rec, ok := parseEntry(line, currentFile)
		if !ok {
			l.Unparsed++
			open = -1
			continue
		}
		l.Records = append(l.Records, rec)
		if rec.Position == tags.Start {
			open = len(l.Records) - 1
		} else {
			open = -1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan removal log: %w", err)
	}
	return l, nil
}

func parseEntry(line, currentFile string) (Record, bool) {
	if m := endEntry.FindStringSubmatch(line); m != nil && currentFile != "" {
		return Record{
			Position: tags.End,
			Path:     currentFile,
			FileLine: atoi(m[1]),
			Dialogue: atoi(m[2]),
			Tag:      m[3],
		}, true
	}
	if m := bareEndEntry.FindStringSubmatch(line); m != nil && currentFile != "" {
		return Record{
			Position: tags.End,
			Path:     currentFile,
			FileLine: atoi(m[1]),
			Tag:      m[2],
		}, true
	}
	if m := startEntry.FindStringSubmatch(line); m != nil {
		return Record{
			Position: tags.Start,
			Dialogue: atoi(m[1]),
			FileLine: atoi(m[2]),
			Path:     strings.TrimSpace(m[3]),
		}, true
	}
	if m := unnumberedStartEntry.FindStringSubmatch(line); m != nil {
		return Record{
			Position: tags.Start,
			FileLine: atoi(m[1]),
			Path:     strings.TrimSpace(m[2]),
		}, true
	}
	if m := propagatedEntry.FindStringSubmatch(line); m != nil {
		return Record{
			Position: tags.Start,
			Dialogue: atoi(m[1]),
			Path:     strings.TrimSpace(m[2]),
		}, true
	}
	return Record{}, false
}

// atoi returns 0 for anything that is not a positive integer ("N/A").
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
