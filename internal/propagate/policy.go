package propagate

import (
	"fmt"

	"tagsync/internal/corpus"
	"tagsync/internal/removallog"
	"tagsync/internal/tags"
)

// Target is one variant file and the dialogue numbers to strip in it.
type Target struct {
	File      corpus.File
	Dialogues map[int]struct{}
}

// Plan is the set of targets a policy derived from a removal log.
type Plan struct {
	Position tags.Position
	Targets  []Target
	// NotFound lists sources or variants with no resolvable target file.
	NotFound []string
	// Skipped counts sources rejected by file-correspondence rules.
	Skipped map[corpus.Resolution]int
	// Translated counts end-tag records ignored because they came from a
	// non-canonical file.
	Translated int
}

// Policy turns removal records into a propagation plan.
type Policy interface {
	Name() string
	Plan(ix *corpus.Index, records []removallog.Record) Plan
}

// EndTagPolicy pools the dialogue numbers of every canonical end-tag
// removal, across all canonical speaker files, and applies the pool to
// every tag_match file of every non-canonical variant.
type EndTagPolicy struct{}

func (EndTagPolicy) Name() string { return "end-pooled" }

func (EndTagPolicy) Plan(ix *corpus.Index, records []removallog.Record) Plan {
	plan := Plan{Position: tags.End, Skipped: make(map[corpus.Resolution]int)}

	var canonical []removallog.Record
	for _, r := range records {
		if r.Position != tags.End {
			continue
		}
		if !ix.IsCanonicalPath(r.Path) {
			plan.Translated++
			continue
		}
		canonical = append(canonical, r)
	}
	pool := removallog.DialogueSet(canonical)

	withTarget := make(map[string]bool)
	for _, f := range ix.Files() {
		if f.Canonical {
			continue
		}
		if _, ok := withTarget[f.ID.Folder]; !ok {
			withTarget[f.ID.Folder] = false
		}
		if f.ID.Role() != corpus.RoleTagMatch {
			continue
		}
		withTarget[f.ID.Folder] = true
		plan.Targets = append(plan.Targets, Target{File: f, Dialogues: pool})
	}
	for _, folder := range ix.Folders() {
		if found, ok := withTarget[folder]; ok && !found {
			plan.NotFound = append(plan.NotFound, fmt.Sprintf("%s: no tag_match files", folder))
		}
	}
	return plan
}

// StartTagPolicy maps each originating file 1:1 to the tag_match file of
// the same variant, script and form, and strips only that source's
// dialogue numbers there.
type StartTagPolicy struct{}

func (StartTagPolicy) Name() string { return "start-per-file" }

func (StartTagPolicy) Plan(ix *corpus.Index, records []removallog.Record) Plan {
	plan := Plan{Position: tags.Start, Skipped: make(map[corpus.Resolution]int)}

	var start []removallog.Record
	for _, r := range records {
		if r.Position == tags.Start && r.Dialogue > 0 {
			start = append(start, r)
		}
	}

	byTarget := make(map[string]int)
	paths, groups := removallog.GroupByPath(start)
	for _, p := range paths {
		src, ok := ix.ByPath(p)
		if !ok {
			plan.NotFound = append(plan.NotFound, p)
			continue
		}

		target, res := ix.TagMatchFor(src)
		switch res {
		case corpus.Resolved:
		case corpus.NotFound:
			plan.NotFound = append(plan.NotFound, p)
			continue
		default:
			plan.Skipped[res]++
			continue
		}

		nums := removallog.DialogueSet(groups[p])
		if i, seen := byTarget[target.Path]; seen {
			for n := range nums {
				plan.Targets[i].Dialogues[n] = struct{}{}
			}
			continue
		}
		byTarget[target.Path] = len(plan.Targets)
		plan.Targets = append(plan.Targets, Target{File: target, Dialogues: nums})
	}
	return plan
}

// ForPosition returns the policy that governs propagation of tags at pos.
func ForPosition(pos tags.Position) Policy {
	if pos == tags.End {
		return EndTagPolicy{}
	}
	return StartTagPolicy{}
}
