package classify

// Role is the structural role of a line.
type Role uint8

const (
	Other Role = iota
	CallOpen
	ObjectLiteralOpen
	BlockOpen
	StatementStart
	ClosingCandidate
	Ambiguous
)

func (r Role) String() string {
	switch r {
	case Other:
		return "Other"
	case CallOpen:
		return "CallOpen"
	case ObjectLiteralOpen:
		return "ObjectLiteralOpen"
	case BlockOpen:
		return "BlockOpen"
	case StatementStart:
		return "StatementStart"
	case ClosingCandidate:
		return "ClosingCandidate"
	case Ambiguous:
		return "Ambiguous"
	}
	return "Unknown"
}

// Opener reports whether the role describes a line that opens a construct.
func (r Role) Opener() bool {
	return r == CallOpen || r == ObjectLiteralOpen || r == BlockOpen
}
