// Package sweep performs the canonical removals: unlisted end tags and
// denylisted silent start tags. Each sweep emits the removal records that
// later drive propagation into the translated variants.
package sweep

import (
	"sort"

	"tagsync/internal/corpus"
	"tagsync/internal/parser"
	"tagsync/internal/removallog"
	"tagsync/internal/tags"

	"github.com/rs/zerolog/log"
)

// FileError is a file the sweep could not read or write.
type FileError struct {
	Path string
	Err  error
}

// Result summarizes one sweep.
type Result struct {
	Position tags.Position
	Records  []removallog.Record
	Scanned  int
	Modified []string
	Failed   []FileError
	// Undelimited counts "12.[tag]" lines the start sweep could not read.
	Undelimited int
}

// Sweeper strips tags from a set of files.
type Sweeper struct {
	validator *tags.Validator
	dryRun    bool
}

// New creates a Sweeper bound to one run's vocabulary.
func New(v *tags.Validator, dryRun bool) *Sweeper {
	return &Sweeper{validator: v, dryRun: dryRun}
}

// EndTagTargets selects the files the unlisted end-tag sweep covers:
// numbered plain files of every variant. tag_match files are left to
// propagation and annotated files carry derived content.
func EndTagTargets(ix *corpus.Index) []corpus.File {
	return ix.Filter(func(f corpus.File) bool {
		return f.ID.Form == corpus.FormNumbered && f.ID.Role() == corpus.RolePlain
	})
}

// StartTagTargets selects the files the silent start-tag sweep covers.
func StartTagTargets(ix *corpus.Index) []corpus.File {
	return ix.Files()
}

// UnlistedEndTags strips every end tag that is not on the allow-list. The
// end tag is read from the merged record so wrapped lines are handled.
func (s *Sweeper) UnlistedEndTags(files []corpus.File) *Result {
	return s.run(files, tags.End, func(doc *parser.ParseResult) []removallog.Record {
		var out []removallog.Record
		for _, rec := range doc.Records() {
			tag, ok := doc.RecordTag(rec, tags.End)
			if !ok || s.validator.IsAllowed(tag) {
				continue
			}
			edit, ok := doc.StripRecordTag(rec, tags.End)
			if !ok {
				continue
			}
			out = append(out, removallog.Record{
				Position: tags.End,
				Dialogue: rec.Number,
				Path:     doc.FilePath,
				FileLine: doc.Lines[edit.Line].FileLine,
				Tag:      edit.Tag.Raw,
				Before:   edit.Before,
				After:    edit.After,
			})
		}
		return out
	})
}

// SilentStartTags strips denylisted start tags. Every physical line is
// checked, so unnumbered "[tag] text" and "Label: [tag] text" lines are
// covered too; their records carry dialogue 0. Language-mode markers are
// never stripped. Lines like "12.[tag]" are counted as undelimited and left
// alone.
func (s *Sweeper) SilentStartTags(files []corpus.File) *Result {
	undelimited := 0
	res := s.run(files, tags.Start, func(doc *parser.ParseResult) []removallog.Record {
		var out []removallog.Record
		for i := range doc.Lines {
			line := &doc.Lines[i]
			if tags.Undelimited(line.Text) {
				undelimited++
				log.Warn().
					Str("file", doc.FilePath).
					Int("line", line.FileLine).
					Msg("Number not followed by a space, start tag not checked")
				continue
			}
			tag, ok := tags.ExtractStart(line.Text)
			if !ok || s.validator.IsMode(tag) || !s.validator.IsSilent(tag) {
				continue
			}
			before := line.Text
			line.Text, _, _ = tags.StripStart(line.Text)
			out = append(out, removallog.Record{
				Position: tags.Start,
				Dialogue: parser.ParseNumber(before),
				Path:     doc.FilePath,
				FileLine: line.FileLine,
				Tag:      tag.Raw,
				Before:   before,
				After:    line.Text,
			})
		}
		return out
	})
	res.Undelimited = undelimited
	return res
}

func (s *Sweeper) run(files []corpus.File, pos tags.Position, strip func(*parser.ParseResult) []removallog.Record) *Result {
	res := &Result{Position: pos}

	for _, f := range files {
		doc, err := parser.ReadFile(f.Path)
		if err != nil {
			log.Error().Err(err).Str("file", f.Path).Msg("Sweep failed, skipping file")
			res.Failed = append(res.Failed, FileError{Path: f.Path, Err: err})
			continue
		}
		res.Scanned++

		records := strip(doc)
		if len(records) == 0 {
			continue
		}

		if !s.dryRun {
			if _, err := doc.WriteIfChanged(); err != nil {
				log.Error().Err(err).Str("file", f.Path).Msg("Sweep failed, skipping file")
				res.Failed = append(res.Failed, FileError{Path: f.Path, Err: err})
				continue
			}
		}

		res.Records = append(res.Records, records...)
		res.Modified = append(res.Modified, f.Path)
		log.Info().
			Str("file", f.Path).
			Str("position", pos.String()).
			Int("removed", len(records)).
			Bool("dry_run", s.dryRun).
			Msg("Tags removed")
	}

	sort.Strings(res.Modified)
	return res
}
