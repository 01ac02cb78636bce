package driver

import (
	"mend/internal/diag"
	"mend/internal/fix"
	"mend/internal/source"
)

// remapper translates offsets of the current working buffer back to the
// original file by undoing the logged passes newest first.
type remapper struct {
	passes [][]fix.LogEntry
}

// push records the edits of one pass; entries are sorted by start and do
// not overlap.
func (m *remapper) push(log []fix.LogEntry) {
	m.passes = append(m.passes, log)
}

func (m *remapper) offset(off uint32) uint32 {
	for p := len(m.passes) - 1; p >= 0; p-- {
		off = undoPass(m.passes[p], off)
	}
	return off
}

func (m *remapper) span(sp source.Span) source.Span {
	if len(m.passes) == 0 {
		return sp
	}
	out := source.Span{Start: m.offset(sp.Start), End: m.offset(sp.End)}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

// undoPass maps an offset of the buffer produced by edits to the buffer the
// edits were computed on. Offsets inside inserted text collapse onto the
// insertion point.
func undoPass(edits []fix.LogEntry, off uint32) uint32 {
	pos := int64(off)
	var shift int64 // post - pre before the current edit
	for _, e := range edits {
		start := int64(e.Span.Start) + shift
		if pos < start {
			break
		}
		switch e.Op {
		case fix.Insert:
			n := int64(len(e.Text))
			if pos < start+n {
				return e.Span.Start
			}
			shift += n
		case fix.Delete:
			shift -= int64(e.Span.Len())
		}
	}
	return uint32(pos - shift)
}

// remapReporter rewrites every span into original-file coordinates.
type remapReporter struct {
	next diag.Reporter
	m    *remapper
}

func (r remapReporter) Report(d diag.Diagnostic) {
	if len(r.m.passes) > 0 {
		d.Primary = r.m.span(d.Primary)
		d.Notes = append([]diag.Note(nil), d.Notes...)
		for i := range d.Notes {
			d.Notes[i].Span = r.m.span(d.Notes[i].Span)
		}
		fixes := make([]diag.Fix, len(d.Fixes))
		for i, f := range d.Fixes {
			f.Edits = append([]diag.FixEdit(nil), f.Edits...)
			for j := range f.Edits {
				f.Edits[j].Span = r.m.span(f.Edits[j].Span)
			}
			fixes[i] = f
		}
		d.Fixes = fixes
	}
	r.next.Report(d)
}
