package diag

import (
	"fmt"

	"mend/internal/source"
)

// dedupKey identifies a finding independent of its wording: messages carry
// line numbers of the pass buffer, which shift between passes.
type dedupKey struct {
	code Code
	span source.Span
}

type pending struct {
	diag   Diagnostic
	pass   int
	passes int
}

// DedupReporter collects the diagnostics of one file across repair passes.
// Each pass re-detects the windows still open, so a finding reported again
// with the same code and primary span in a later pass replaces the earlier
// one: the last pass has the current view of that window. Applied edits
// are events and never replace each other. Within a pass only exact
// repeats are dropped. Spans must already be in original file
// coordinates.
//
// Nothing reaches next until Flush.
type DedupReporter struct {
	next    Reporter
	pass    int
	index   map[dedupKey][]int
	entries []pending
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, index: make(map[dedupKey][]int)}
}

// NextPass starts a new repair pass.
func (r *DedupReporter) NextPass() {
	if r != nil {
		r.pass++
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, span: d.Primary}
	idx := r.index[key]
	for _, i := range idx {
		e := &r.entries[i]
		if e.diag.Severity == d.Severity && e.diag.Message == d.Message {
			r.touch(e)
			return
		}
	}
	if n := len(idx); n > 0 && d.Code != RepEditApplied {
		if e := &r.entries[idx[n-1]]; e.pass < r.pass {
			e.diag = d
			r.touch(e)
			return
		}
	}
	r.index[key] = append(idx, len(r.entries))
	r.entries = append(r.entries, pending{diag: d, pass: r.pass, passes: 1})
}

func (r *DedupReporter) touch(e *pending) {
	if e.pass != r.pass {
		e.pass = r.pass
		e.passes++
	}
}

// Flush forwards the collected diagnostics in first-report order and
// resets the reporter. Findings seen in several passes get a note saying
// how many.
func (r *DedupReporter) Flush() {
	if r == nil {
		return
	}
	for _, e := range r.entries {
		d := e.diag
		if e.passes > 1 {
			d = d.WithNote(d.Primary, fmt.Sprintf("reported in %d passes", e.passes))
		}
		if r.next != nil {
			r.next.Report(d)
		}
	}
	r.entries = nil
	r.index = make(map[dedupKey][]int)
}
