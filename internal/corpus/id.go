package corpus

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Form is the physical shape of a script file.
type Form int

const (
	// FormLines is the plain "<stem>_lines.txt" file.
	FormLines Form = iota
	// FormNumbered is "<stem>_lines_numbered.txt".
	FormNumbered
	// FormAnnotated is "<stem>_lines_annotated.txt" with the header index.
	FormAnnotated
)

func (f Form) String() string {
	switch f {
	case FormNumbered:
		return "numbered"
	case FormAnnotated:
		return "annotated"
	default:
		return "lines"
	}
}

// Role is what a file is used for within its variant.
type Role int

const (
	RolePlain Role = iota
	RoleTagMatch
	RoleAnnotated
)

func (r Role) String() string {
	switch r {
	case RoleTagMatch:
		return "tag_match"
	case RoleAnnotated:
		return "annotated"
	default:
		return "plain"
	}
}

const tagMatchInfix = "_tag_match"

// ID identifies a script file within the corpus: the variant folder, the
// script stem (with any tag_match infix removed), the tag_match flag and
// the form. Files sharing Folder and Stem hold the same dialogue numbering.
type ID struct {
	Folder   string
	Stem     string
	TagMatch bool
	Form     Form
}

// Role derives the file role. Annotated wins over tag_match.
func (id ID) Role() Role {
	switch {
	case id.Form == FormAnnotated:
		return RoleAnnotated
	case id.TagMatch:
		return RoleTagMatch
	default:
		return RolePlain
	}
}

// Key is a stable string form of the id.
func (id ID) Key() string {
	kind := "plain"
	if id.TagMatch {
		kind = "tag_match"
	}
	return id.Folder + "/" + id.Stem + "/" + kind + "/" + id.Form.String()
}

// TagMatchSibling is the tag_match counterpart of id in the same variant.
func (id ID) TagMatchSibling() ID {
	return ID{Folder: id.Folder, Stem: id.Stem, TagMatch: true, Form: id.Form}
}

var scriptName = regexp.MustCompile(`^(.+?)_lines(_numbered|_annotated)?\.txt$`)

// ParseID classifies a script file path. ok is false for files that do not
// follow the "<stem>_lines[_numbered|_annotated].txt" convention.
func ParseID(path string) (ID, bool) {
	m := scriptName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return ID{}, false
	}

	id := ID{Folder: filepath.Base(filepath.Dir(path))}
	switch m[2] {
	case "_numbered":
		id.Form = FormNumbered
	case "_annotated":
		id.Form = FormAnnotated
	default:
		id.Form = FormLines
	}

	stem := m[1]
	if strings.Contains(stem, tagMatchInfix) {
		id.TagMatch = true
		stem = strings.Replace(stem, tagMatchInfix, "", 1)
	}
	id.Stem = stem
	return id, true
}
