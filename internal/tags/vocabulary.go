package tags

// Vocabulary is the externally curated tag configuration for one run.
type Vocabulary struct {
	// Allowed vocal tags; anything else at the end of a line is unlisted.
	Allowed []string
	// Silent stage directions stripped from the start of lines.
	Silent []string
	// Modes are language-mode markers ("pure", "mix") that are never
	// content categories.
	Modes []string
}

// Validator classifies tags against a Vocabulary. It is immutable once built.
type Validator struct {
	allowed map[string]struct{}
	silent  map[string]struct{}
	modes   map[string]struct{}
}

// NewValidator builds a Validator. Entries may be given with or without
// brackets and in any case.
func NewValidator(v Vocabulary) *Validator {
	return &Validator{
		allowed: toSet(v.Allowed),
		silent:  toSet(v.Silent),
		modes:   toSet(v.Modes),
	}
}

func toSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if n := Normalize(e); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// IsAllowed reports whether the tag is on the vocal allow-list.
func (v *Validator) IsAllowed(t Tag) bool {
	_, ok := v.allowed[t.Normalized]
	return ok
}

// IsSilent reports whether the tag is a denylisted silent direction.
func (v *Validator) IsSilent(t Tag) bool {
	_, ok := v.silent[t.Normalized]
	return ok
}

// IsMode reports whether the tag is a language-mode marker.
func (v *Validator) IsMode(t Tag) bool {
	_, ok := v.modes[t.Normalized]
	return ok
}

// AllowedCount is the size of the allow-list.
func (v *Validator) AllowedCount() int { return len(v.allowed) }

// SilentCount is the size of the silent denylist.
func (v *Validator) SilentCount() int { return len(v.silent) }
