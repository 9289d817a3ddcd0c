package propagate

import (
	"sort"

	"tagsync/internal/corpus"
	"tagsync/internal/parser"
	"tagsync/internal/removallog"
	"tagsync/internal/tags"

	"github.com/rs/zerolog/log"
)

// FileError is a per-file failure that did not stop the batch.
type FileError struct {
	Path string
	Err  error
}

// Result is the outcome of one propagation run.
type Result struct {
	Policy   string
	Position tags.Position
	// Records are the removals applied to variant files.
	Records []removallog.Record
	// Modified lists files rewritten, or that would be in a dry run.
	Modified []string
	NotFound []string
	Failed   []FileError
	Skipped  map[corpus.Resolution]int
	// ByVariant counts removals per variant folder.
	ByVariant map[string]int
	// Outcomes holds the final state tally per target file.
	Outcomes map[string]StateCounts
	// Translated counts ignored non-canonical records (end policy only).
	Translated int
}

// Propagator applies removal plans to variant files.
type Propagator struct {
	dryRun bool
}

// New creates a Propagator. In dry-run mode no file is written.
func New(dryRun bool) *Propagator {
	return &Propagator{dryRun: dryRun}
}

// Run plans with policy and applies the plan.
func (p *Propagator) Run(ix *corpus.Index, policy Policy, records []removallog.Record) *Result {
	plan := policy.Plan(ix, records)
	res := p.Apply(plan)
	res.Policy = policy.Name()
	return res
}

// Apply strips the planned tags. Each target file is read fully, mutated
// in memory and written back only if something changed. A file that cannot
// be read or written is recorded and skipped.
func (p *Propagator) Apply(plan Plan) *Result {
	res := &Result{
		Position:   plan.Position,
		NotFound:   plan.NotFound,
		Skipped:    plan.Skipped,
		Translated: plan.Translated,
		ByVariant:  make(map[string]int),
		Outcomes:   make(map[string]StateCounts),
	}

	for _, nf := range plan.NotFound {
		log.Warn().Str("source", nf).Msg("Tag match file not found")
	}

	for _, target := range plan.Targets {
		records, counts, changed, err := p.applyFile(target, plan.Position)
		if err != nil {
			log.Error().Err(err).Str("file", target.File.Path).Msg("Propagation failed, skipping file")
			res.Failed = append(res.Failed, FileError{Path: target.File.Path, Err: err})
			continue
		}

		res.Outcomes[target.File.Path] = counts
		res.Records = append(res.Records, records...)
		res.ByVariant[target.File.ID.Folder] += len(records)
		if changed {
			res.Modified = append(res.Modified, target.File.Path)
		}

		log.Info().
			Str("file", target.File.Path).
			Str("position", plan.Position.String()).
			Int("removed", counts.Propagated).
			Int("not_applicable", counts.NotApplicable).
			Int("absent", counts.Pending).
			Bool("dry_run", p.dryRun).
			Msg("Propagated removals")
	}

	sort.Strings(res.Modified)
	return res
}

func (p *Propagator) applyFile(target Target, pos tags.Position) ([]removallog.Record, StateCounts, bool, error) {
	var counts StateCounts

	doc, err := parser.ReadFile(target.File.Path)
	if err != nil {
		return nil, counts, false, err
	}

	var records []removallog.Record
	seen := make(map[int]struct{})

	for _, rec := range doc.Records() {
		if rec.Number == 0 {
			continue
		}
		if _, pending := target.Dialogues[rec.Number]; !pending {
			continue
		}
		seen[rec.Number] = struct{}{}

		_, hasTag := doc.RecordTag(rec, pos)
		if Transition(hasTag) != Propagated {
			counts.NotApplicable++
			continue
		}

		edit, ok := doc.StripRecordTag(rec, pos)
		if !ok {
			counts.NotApplicable++
			continue
		}
		counts.Propagated++

		records = append(records, removallog.Record{
			Position: pos,
			Dialogue: rec.Number,
			Path:     target.File.Path,
			FileLine: doc.Lines[edit.Line].FileLine,
			Tag:      edit.Tag.Raw,
			Before:   edit.Before,
			After:    edit.After,
		})
	}

	for n := range target.Dialogues {
		if _, ok := seen[n]; !ok {
			counts.Pending++
		}
	}

	if !doc.Changed() {
		return records, counts, false, nil
	}
	if p.dryRun {
		return records, counts, true, nil
	}
	if _, err := doc.WriteIfChanged(); err != nil {
		return nil, counts, false, err
	}
	return records, counts, true, nil
}

// Total is the number of removals applied.
func (r *Result) Total() int { return len(r.Records) }
