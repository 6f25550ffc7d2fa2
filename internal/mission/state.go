package mission

// State is a mission's position in its lifecycle:
// Planned -> (checklist) -> Aborted | Exploded | Flying -> Succeeded.
type State int

const (
	Planned State = iota
	Aborted
	Exploded
	Flying
	Succeeded
)

func (s State) String() string {
	switch s {
	case Planned:
		return "planned"
	case Aborted:
		return "aborted"
	case Exploded:
		return "exploded"
	case Flying:
		return "flying"
	case Succeeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further flight happens without a reset.
func (s State) Terminal() bool {
	return s == Aborted || s == Exploded || s == Succeeded
}
