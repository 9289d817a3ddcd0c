package propagate

// State is where one (dialogue number, variant file) pair stands.
type State int

const (
	// CanonicalRemoved: the canonical occurrence was deleted by a sweep.
	CanonicalRemoved State = iota
	// PendingPropagation: logged, not applied to this variant. Dialogue
	// numbers the variant does not contain stay here.
	PendingPropagation
	// Propagated: the variant's tag at the target position was stripped.
	Propagated
	// NotApplicable: the variant line has no tag at the target position.
	NotApplicable
)

func (s State) String() string {
	switch s {
	case CanonicalRemoved:
		return "canonical_removed"
	case PendingPropagation:
		return "pending"
	case Propagated:
		return "propagated"
	default:
		return "not_applicable"
	}
}

// Transition moves a pending dialogue number forward on one variant line.
// The line is mutated only on Propagated; a line whose tag is already gone
// is NotApplicable, which keeps repeated runs from touching it again.
func Transition(hasTag bool) State {
	if hasTag {
		return Propagated
	}
	return NotApplicable
}

// StateCounts tallies the final state of every pending dialogue number
// for one target file.
type StateCounts struct {
	Propagated    int
	NotApplicable int
	// Pending are numbers the file does not contain.
	Pending int
}
