package token

import "mend/internal/source"

// Class tells how a byte range is interpreted.
type Class uint8

const (
	Code Class = iota
	String
	Comment
)

func (c Class) String() string {
	switch c {
	case Code:
		return "code"
	case String:
		return "string"
	case Comment:
		return "comment"
	}
	return "unknown"
}

// Segment is a maximal run of bytes sharing one Class.
type Segment struct {
	Class Class
	Span  source.Span
}

// Literal reports whether delimiters inside the segment are inert.
func (s Segment) Literal() bool {
	return s.Class != Code
}
