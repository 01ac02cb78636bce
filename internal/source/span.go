package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file.
type Span struct {
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Overlaps treats spans as half-open intervals. Two zero-length spans overlap
// only when they sit on the same offset: inserting twice at one point has no
// defined order.
func (s Span) Overlaps(other Span) bool {
	switch {
	case s.Empty() && other.Empty():
		return s.Start == other.Start
	case s.Empty():
		return other.Start <= s.Start && s.Start < other.End
	case other.Empty():
		return s.Start <= other.Start && other.Start < s.End
	}
	return s.Start < other.End && other.Start < s.End
}
