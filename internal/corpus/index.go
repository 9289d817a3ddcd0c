package corpus

import (
	"path/filepath"
	"sort"
)

// Index maps corpus ids to discovered files. It is built once per run.
type Index struct {
	root   string
	walker *Walker
	files  []File
	byKey  map[string]File
	byPath map[string]File
}

func newIndex(root string, w *Walker, files []File) *Index {
	ix := &Index{
		root:   root,
		walker: w,
		files:  files,
		byKey:  make(map[string]File, len(files)),
		byPath: make(map[string]File, len(files)),
	}
	for _, f := range files {
		ix.byKey[f.ID.Key()] = f
		ix.byPath[f.Path] = f
	}
	return ix
}

// Root is the absolute corpus root.
func (ix *Index) Root() string { return ix.root }

// Files returns every indexed file sorted by path.
func (ix *Index) Files() []File { return ix.files }

// Lookup finds the file with the given id.
func (ix *Index) Lookup(id ID) (File, bool) {
	f, ok := ix.byKey[id.Key()]
	return f, ok
}

// ByPath finds an indexed file by path, or classifies the path when it is
// not indexed.
func (ix *Index) ByPath(path string) (File, bool) {
	if f, ok := ix.byPath[cleanPath(path)]; ok {
		return f, true
	}
	return ix.walker.Classify(path)
}

// IsCanonicalPath reports whether path sits in a canonical variant folder.
// The path need not exist or follow the script naming convention.
func (ix *Index) IsCanonicalPath(path string) bool {
	return ix.walker.IsCanonical(filepath.Base(filepath.Dir(path)))
}

// Filter returns the files for which keep returns true.
func (ix *Index) Filter(keep func(File) bool) []File {
	var out []File
	for _, f := range ix.files {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// Folders lists variant folder names, sorted.
func (ix *Index) Folders() []string {
	seen := make(map[string]struct{})
	for _, f := range ix.files {
		seen[f.ID.Folder] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for folder := range seen {
		out = append(out, folder)
	}
	sort.Strings(out)
	return out
}

// Resolution is the outcome of a tag_match lookup.
type Resolution int

const (
	Resolved Resolution = iota
	// SkippedCanonical: the source is a canonical-language file.
	SkippedCanonical
	// SkippedTagMatch: the source is itself a tag_match file.
	SkippedTagMatch
	// SkippedAnnotated: annotated files carry derived content only.
	SkippedAnnotated
	// NotFound: no tag_match file shares the source stem and form.
	NotFound
)

func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case SkippedCanonical:
		return "skipped_canonical"
	case SkippedTagMatch:
		return "skipped_tag_match"
	case SkippedAnnotated:
		return "skipped_annotated"
	default:
		return "not_found"
	}
}

// TagMatchFor resolves the tag_match file of the same variant, script and
// form as source. Candidates that are canonical, annotated or the source
// itself are rejected.
func (ix *Index) TagMatchFor(source File) (File, Resolution) {
	switch {
	case source.ID.TagMatch:
		return File{}, SkippedTagMatch
	case source.Canonical:
		return File{}, SkippedCanonical
	case source.ID.Form == FormAnnotated:
		return File{}, SkippedAnnotated
	}

	candidate, ok := ix.Lookup(source.ID.TagMatchSibling())
	if !ok {
		return File{}, NotFound
	}
	if candidate.Canonical || candidate.ID.Role() == RoleAnnotated || candidate.Path == source.Path {
		return File{}, NotFound
	}
	return candidate, Resolved
}
