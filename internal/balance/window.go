package balance

import (
	"fmt"

	"mend/internal/token"
)

// Anomaly is the direction of an imbalance.
type Anomaly uint8

const (
	// Missing: openers never closed.
	Missing Anomaly = iota
	// Excess: closers without an opener.
	Excess
)

func (a Anomaly) String() string {
	if a == Excess {
		return "excess"
	}
	return "missing"
}

// Cause tells how the boundary of a window was found.
type Cause uint8

const (
	CauseNone Cause = iota
	// CauseIndent: a later line returned to the opener's indentation.
	CauseIndent
	// CauseCloser: a mismatching closer closed the openers implicitly.
	CauseCloser
	// CauseEOF: the openers were still open at end of file.
	CauseEOF
	// CauseExcess: a closer arrived with no opener to match.
	CauseExcess
)

func (c Cause) String() string {
	switch c {
	case CauseIndent:
		return "indent"
	case CauseCloser:
		return "closer"
	case CauseEOF:
		return "eof"
	case CauseExcess:
		return "excess"
	}
	return "none"
}

type Status uint8

const (
	Open Status = iota
	Unresolved
	Ambiguous
	Conflicting
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Unresolved:
		return "unresolved"
	case Ambiguous:
		return "ambiguous"
	case Conflicting:
		return "conflicting"
	}
	return "unknown"
}

// Window is one localized imbalance.
type Window struct {
	ID      int
	Anomaly Anomaly
	Cause   Cause
	Status  Status
	// Start and End are 1-based inclusive lines.
	Start, End int
	// Boundary is the line where the delta should have returned to its
	// baseline; 0 means end of file.
	Boundary int
	// BoundaryTok is the closer token the insertion must precede when it
	// lies inside the boundary line, -1 when the boundary is the line start.
	BoundaryTok int
	// Openers holds unclosed opener token indices, innermost first.
	Openers []int
	// Closers holds excess closer token indices in source order.
	Closers []int
	Net     token.Delta
	// Distance is the number of lines between the baseline and the boundary.
	Distance int
}

// Closing returns the closers that would balance a Missing window, innermost
// first.
func (w *Window) Closing(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(w.Openers))
	for _, o := range w.Openers {
		out = append(out, toks[o].Kind.Matching())
	}
	return out
}

func (w *Window) String() string {
	return fmt.Sprintf("#%d %s/%s lines %d-%d boundary %d (%s)", w.ID, w.Anomaly, w.Cause, w.Start, w.End, w.Boundary, w.Status)
}
