// Package audit runs read-only discovery scans over the corpus: unlisted
// end tags, every start tag, and end-tag frequency per variant.
package audit

import (
	"context"
	"sort"

	"tagsync/internal/corpus"
	"tagsync/internal/parser"
	"tagsync/internal/tags"
	"tagsync/internal/worker"
)

// Finding is one tag occurrence seen by a scan.
type Finding struct {
	Path     string
	Folder   string
	FileLine int
	Dialogue int
	Tag      tags.Tag
	Allowed  bool
	Text     string
}

// FileFindings are the findings of one file.
type FileFindings struct {
	File  corpus.File
	Start []Finding
	End   []Finding
}

// Scanner collects tag findings with a worker pool.
type Scanner struct {
	validator *tags.Validator
	workers   int
}

// NewScanner creates a Scanner.
func NewScanner(v *tags.Validator, workers int) *Scanner {
	return &Scanner{validator: v, workers: workers}
}

// Report is the outcome of a scan over a set of files.
type Report struct {
	Files  []FileFindings
	Failed []string
}

// Scan reads every file and extracts start and end tags per record.
func (s *Scanner) Scan(ctx context.Context, files []corpus.File) *Report {
	pool := worker.NewPool[corpus.File, FileFindings](s.workers, func(ctx context.Context, f corpus.File) (FileFindings, error) {
		return s.scanFile(f)
	})

	report := &Report{}
	for _, task := range pool.Execute(ctx, files) {
		if task.Err != nil {
			report.Failed = append(report.Failed, task.Input.Path)
			continue
		}
		report.Files = append(report.Files, task.Result)
	}
	return report
}

func (s *Scanner) scanFile(f corpus.File) (FileFindings, error) {
	doc, err := parser.ReadFile(f.Path)
	if err != nil {
		return FileFindings{}, err
	}

	out := FileFindings{File: f}
	for _, rec := range doc.Records() {
		first := doc.Lines[rec.First()]
		if tag, ok := doc.RecordTag(rec, tags.Start); ok {
			out.Start = append(out.Start, Finding{
				Path:     f.Path,
				Folder:   f.ID.Folder,
				FileLine: first.FileLine,
				Dialogue: rec.Number,
				Tag:      tag,
				Allowed:  !s.validator.IsSilent(tag),
				Text:     first.Text,
			})
		}
		if tag, ok := doc.RecordTag(rec, tags.End); ok {
			last := doc.Lines[rec.Last()]
			out.End = append(out.End, Finding{
				Path:     f.Path,
				Folder:   f.ID.Folder,
				FileLine: last.FileLine,
				Dialogue: rec.Number,
				Tag:      tag,
				Allowed:  s.validator.IsAllowed(tag),
				Text:     doc.Text(rec),
			})
		}
	}
	return out, nil
}

// Unlisted returns end-tag findings that are not on the allow-list.
func (r *Report) Unlisted() []Finding {
	var out []Finding
	for _, ff := range r.Files {
		for _, f := range ff.End {
			if !f.Allowed {
				out = append(out, f)
			}
		}
	}
	return out
}

// StartTags returns every start-tag finding.
func (r *Report) StartTags() []Finding {
	var out []Finding
	for _, ff := range r.Files {
		out = append(out, ff.Start...)
	}
	return out
}

// EndTags returns every end-tag finding.
func (r *Report) EndTags() []Finding {
	var out []Finding
	for _, ff := range r.Files {
		out = append(out, ff.End...)
	}
	return out
}

// Count is a tag and how often it occurred.
type Count struct {
	Tag   string
	Count int
}

// CountTags tallies findings by normalized tag, most frequent first.
func CountTags(findings []Finding) []Count {
	counts := make(map[string]int)
	for _, f := range findings {
		counts[f.Tag.Normalized]++
	}
	return sortCounts(counts)
}

// FrequencyByFolder tallies findings per variant folder.
func FrequencyByFolder(findings []Finding) map[string][]Count {
	byFolder := make(map[string]map[string]int)
	for _, f := range findings {
		if byFolder[f.Folder] == nil {
			byFolder[f.Folder] = make(map[string]int)
		}
		byFolder[f.Folder][f.Tag.Normalized]++
	}
	out := make(map[string][]Count, len(byFolder))
	for folder, counts := range byFolder {
		out[folder] = sortCounts(counts)
	}
	return out
}

func sortCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for tag, n := range counts {
		out = append(out, Count{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
