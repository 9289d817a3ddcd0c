package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"tagsync/internal/corpus"
	"tagsync/internal/header"
	"tagsync/internal/parser"
	"tagsync/internal/propagate"
	"tagsync/internal/removallog"
	"tagsync/internal/sweep"
	"tagsync/internal/tags"
)

// mergeTargets are the files merged before any tag pass. Annotated files
// keep their comment header, so they are not merged.
func mergeTargets(ix *corpus.Index) []corpus.File {
	return ix.Filter(func(f corpus.File) bool { return f.ID.Form != corpus.FormAnnotated })
}

func (s *session) merge() {
	row := stepRow{Step: "merge"}
	for _, f := range mergeTargets(s.index) {
		stats, err := parser.MergeFile(f.Path, s.dryRun)
		if err != nil {
			log.Error().Err(err).Str("file", f.Path).Msg("Merge failed, skipping file")
			row.Failed++
			s.summary.failed = append(s.summary.failed, f.Path)
			continue
		}
		row.Scanned++
		if stats.Undelimited > 0 {
			s.summary.undelimited += stats.Undelimited
			log.Warn().
				Str("file", f.Path).
				Int("lines", stats.Undelimited).
				Msg("Numbered lines without a space before the tag, folded as continuations")
		}
		if !stats.Changed {
			continue
		}
		row.Modified++
		row.Removed += stats.Removed()
		log.Info().
			Str("file", f.Path).
			Int("original", stats.Original).
			Int("non_blank", stats.NonBlank).
			Int("merged", stats.Merged).
			Bool("dry_run", s.dryRun).
			Msg("Continuation lines merged")
	}
	s.summary.add(row)
}

func (s *session) stripUnlisted() error {
	res := sweep.New(s.validator, s.dryRun).UnlistedEndTags(sweep.EndTagTargets(s.index))
	canon, translated := removallog.Partition(res.Records, s.index.IsCanonicalPath)

	meta := removallog.Meta{
		Title: "Unlisted end tags removed",
		Notes: []string{
			fmt.Sprintf("Files scanned: %d", res.Scanned),
			fmt.Sprintf("Canonical removals: %d", len(canon)),
			fmt.Sprintf("Translated removals: %d", len(translated)),
		},
	}
	path, err := s.writeLog(unlistedEndLog, removallog.EndShape, meta, res.Records)
	if err != nil {
		return err
	}

	s.recordSweep("strip-unlisted", res, path)
	return nil
}

func (s *session) stripSilent() error {
	res := sweep.New(s.validator, s.dryRun).SilentStartTags(sweep.StartTagTargets(s.index))

	meta := removallog.Meta{
		Title: "Silent start tags removed",
		Notes: []string{fmt.Sprintf("Files scanned: %d", res.Scanned)},
	}
	if res.Undelimited > 0 {
		meta.Notes = append(meta.Notes, fmt.Sprintf("Undelimited lines not checked: %d", res.Undelimited))
	}
	s.summary.undelimited += res.Undelimited
	path, err := s.writeLog(silentStartLog, removallog.StartShape, meta, res.Records)
	if err != nil {
		return err
	}

	s.recordSweep("strip-silent", res, path)
	return nil
}

func (s *session) recordSweep(step string, res *sweep.Result, logPath string) {
	row := stepRow{
		Step:     step,
		Scanned:  res.Scanned,
		Modified: len(res.Modified),
		Removed:  len(res.Records),
		Failed:   len(res.Failed),
	}
	for _, f := range res.Failed {
		s.summary.failed = append(s.summary.failed, f.Path)
	}
	s.summary.logs = append(s.summary.logs, logPath)
	s.summary.add(row)
}

// propagateEnd replays canonical end-tag removals into every tag_match file.
func (s *session) propagateEnd(logPath string) error {
	return s.propagate(tags.End, logPath, unlistedEndLog)
}

// propagateStart replays start-tag removals into the tag_match sibling of
// each originating file.
func (s *session) propagateStart(logPath string) error {
	return s.propagate(tags.Start, logPath, silentStartLog)
}

func (s *session) propagate(pos tags.Position, explicit, defaultLog string) error {
	source, err := s.readLog(explicit, defaultLog)
	if err != nil {
		return err
	}
	s.summary.unparsed += source.Unparsed

	policy := propagate.ForPosition(pos)
	res := propagate.New(s.dryRun).Run(s.index, policy, source.Records)

	var (
		name  string
		shape removallog.Shape
		meta  removallog.Meta
	)
	if pos == tags.End {
		name, shape = propagatedEndLog, removallog.EndShape
		meta = removallog.Meta{
			Title: "End tags removed from translated tag_match files",
			Notes: []string{
				fmt.Sprintf("Source log: %s", source.Path),
				fmt.Sprintf("Policy: %s", res.Policy),
				fmt.Sprintf("Files modified: %d", len(res.Modified)),
				fmt.Sprintf("Translated source records ignored: %d", res.Translated),
			},
			ByLanguage: res.ByVariant,
		}
	} else {
		name, shape = propagatedStart, removallog.StartShape
		meta = removallog.Meta{
			Title: "Start tags removed from tag_match files",
			Notes: []string{
				fmt.Sprintf("Source log: %s", source.Path),
				fmt.Sprintf("Policy: %s", res.Policy),
				fmt.Sprintf("Files modified: %d", len(res.Modified)),
				fmt.Sprintf("Skipped canonical sources: %d", res.Skipped[corpus.SkippedCanonical]),
				fmt.Sprintf("Skipped tag_match sources: %d", res.Skipped[corpus.SkippedTagMatch]),
			},
		}
	}
	for _, nf := range res.NotFound {
		meta.Notes = append(meta.Notes, "Not found: "+nf)
	}

	path, err := s.writeLog(name, shape, meta, res.Records)
	if err != nil {
		return err
	}

	skipped := 0
	for _, n := range res.Skipped {
		skipped += n
	}
	s.summary.add(stepRow{
		Step:     "propagate-" + pos.String(),
		Scanned:  len(res.Outcomes) + len(res.Failed),
		Modified: len(res.Modified),
		Removed:  res.Total(),
		NotFound: len(res.NotFound),
		Skipped:  skipped,
		Failed:   len(res.Failed),
	})
	for folder, n := range res.ByVariant {
		s.summary.variants[folder] += n
	}
	s.summary.notFound = append(s.summary.notFound, res.NotFound...)
	for _, f := range res.Failed {
		s.summary.failed = append(s.summary.failed, f.Path)
	}
	s.summary.logs = append(s.summary.logs, path)
	return nil
}

// regenerateHeaders rebuilds the header block of every annotated file.
// Non-canonical files also get inline category tags backfilled.
func (s *session) regenerateHeaders() {
	row := stepRow{Step: "header"}
	files := s.index.Filter(func(f corpus.File) bool { return f.ID.Form == corpus.FormAnnotated })
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	for _, f := range files {
		res, err := s.processHeader(f)
		if err != nil {
			log.Error().Err(err).Str("file", f.Path).Msg("Header regeneration failed, skipping file")
			row.Failed++
			s.summary.failed = append(s.summary.failed, f.Path)
			continue
		}
		row.Scanned++
		if res.Changed {
			row.Modified++
		}
	}
	s.summary.add(row)
}

func (s *session) processHeader(f corpus.File) (*header.Result, error) {
	if !s.dryRun {
		return header.ProcessFile(f.Path, !f.Canonical)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read annotated file: %w", err)
	}
	_, res, _ := header.Regenerate(string(data), !f.Canonical)
	res.Path = f.Path
	return res, nil
}
