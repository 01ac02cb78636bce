package lexer

import (
	"sort"

	"mend/internal/source"
	"mend/internal/token"
)

// SegmentAt returns the segment containing off.
func (r *Result) SegmentAt(off uint32) (token.Segment, bool) {
	i := sort.Search(len(r.Segments), func(i int) bool { return r.Segments[i].Span.End > off })
	if i == len(r.Segments) || r.Segments[i].Span.Start > off {
		return token.Segment{}, false
	}
	return r.Segments[i], true
}

// TouchesLiteral reports whether an edit over sp would change bytes of a
// String or Comment segment. An insertion exactly on a segment boundary does
// not touch it.
func (r *Result) TouchesLiteral(sp source.Span) bool {
	if sp.Empty() {
		seg, ok := r.SegmentAt(sp.Start)
		return ok && seg.Literal() && seg.Span.Start < sp.Start
	}
	i := sort.Search(len(r.Segments), func(i int) bool { return r.Segments[i].Span.End > sp.Start })
	for ; i < len(r.Segments) && r.Segments[i].Span.Start < sp.End; i++ {
		if r.Segments[i].Literal() {
			return true
		}
	}
	return false
}

// Literals returns the text of every String and Comment segment in order.
func (r *Result) Literals(content []byte) []string {
	var out []string
	for _, seg := range r.Segments {
		if seg.Literal() {
			out = append(out, string(content[seg.Span.Start:seg.Span.End]))
		}
	}
	return out
}

// Delta returns the net opens-minus-closes per delimiter family.
func (r *Result) Delta() token.Delta {
	var d token.Delta
	for _, tok := range r.Tokens {
		d.Add(tok.Kind)
	}
	return d
}
