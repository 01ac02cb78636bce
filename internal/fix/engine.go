package fix

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"mend/internal/diag"
	"mend/internal/source"
)

// ErrNoEdits is returned when no candidate was applied.
var ErrNoEdits = errors.New("no applicable edits")

// LiteralGuard tells whether an edit would change String or Comment bytes.
type LiteralGuard interface {
	TouchesLiteral(sp source.Span) bool
}

// ApplyOptions configures one application round.
type ApplyOptions struct {
	Pass     int
	Literals LiteralGuard
	Reporter diag.Reporter
}

// SkipReason tells why a candidate was not applied.
type SkipReason uint8

const (
	SkipLiteral SkipReason = iota
	SkipStale
	SkipSuperseded
	SkipDeferred
	SkipConflict
)

func (r SkipReason) String() string {
	switch r {
	case SkipLiteral:
		return "touches a string or comment"
	case SkipStale:
		return "existing text does not match expected content"
	case SkipSuperseded:
		return "superseded by another edit of the same window"
	case SkipDeferred:
		return "overlaps an accepted edit"
	case SkipConflict:
		return "conflicts with an equally ranked edit"
	}
	return "unknown"
}

// SkippedEdit captures a candidate that was not applied and the reason.
type SkippedEdit struct {
	Candidate Candidate
	Reason    SkipReason
}

// ApplyResult aggregates one application round.
type ApplyResult struct {
	Content []byte
	Applied []Candidate
	Skipped []SkippedEdit
	// ConflictWindows lists windows dropped because of ConflictingEdits.
	ConflictWindows []int
	Log             []LogEntry
}

// Deferred reports whether some candidate must be retried next pass.
func (r *ApplyResult) Deferred() bool {
	for _, s := range r.Skipped {
		if s.Reason == SkipDeferred {
			return true
		}
	}
	return false
}

// Apply selects a non-overlapping subset of candidates greedily in priority
// order and applies it right-to-left to a copy of content. The input slice
// and content are never modified.
func Apply(content []byte, candidates []Candidate, opts ApplyOptions) (*ApplyResult, error) {
	res := &ApplyResult{}
	cands := append([]Candidate(nil), candidates...)
	SortCandidates(cands)

	accepted, skipped, conflicts := selectCandidates(content, cands, opts.Literals)
	res.Skipped = skipped
	res.ConflictWindows = conflicts
	reportSkipped(opts.Reporter, skipped)

	if len(accepted) == 0 {
		res.Content = append([]byte(nil), content...)
		return res, ErrNoEdits
	}

	working, err := applyCandidates(content, accepted)
	if err != nil {
		return res, err
	}
	res.Content = working

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Span.Start < accepted[j].Span.Start
	})
	res.Applied = accepted
	for i := range accepted {
		res.Log = append(res.Log, logEntry(&accepted[i], opts.Pass))
	}
	return res, nil
}

// SortCandidates orders candidates by confidence (desc), edit size, rule id,
// then position for a total deterministic order.
func SortCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		ci, cj := &cands[i], &cands[j]
		if !sameConfidence(ci.Confidence, cj.Confidence) {
			return ci.Confidence > cj.Confidence
		}
		if ci.Size() != cj.Size() {
			return ci.Size() < cj.Size()
		}
		if ci.RuleID != cj.RuleID {
			return ci.RuleID < cj.RuleID
		}
		if ci.Span.Start != cj.Span.Start {
			return ci.Span.Start < cj.Span.Start
		}
		return ci.Text < cj.Text
	})
}

func sameConfidence(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// samePriority: равный ранг по всем ключам сортировки, кроме позиции.
func samePriority(a, b *Candidate) bool {
	return sameConfidence(a.Confidence, b.Confidence) && a.Size() == b.Size() && a.RuleID == b.RuleID
}

func selectCandidates(content []byte, cands []Candidate, guard LiteralGuard) ([]Candidate, []SkippedEdit, []int) {
	var (
		accepted []Candidate
		skipped  []SkippedEdit
		dropped  = make(map[int]bool)
		// owner is the rule whose edits repair a window in this pass.
		owner = make(map[int]string)
	)
	skip := func(c Candidate, r SkipReason) {
		skipped = append(skipped, SkippedEdit{Candidate: c, Reason: r})
	}

	for _, cand := range cands {
		if dropped[cand.Window] {
			skip(cand, SkipConflict)
			continue
		}
		if id, ok := owner[cand.Window]; ok && id != cand.RuleID && cand.Window != 0 {
			skip(cand, SkipSuperseded)
			continue
		}
		if guard != nil && guard.TouchesLiteral(cand.Span) {
			skip(cand, SkipLiteral)
			continue
		}
		if !guardMatches(content, &cand) {
			skip(cand, SkipStale)
			continue
		}

		idx := -1
		for i := range accepted {
			if spansConflict(accepted[i].Span, cand.Span) {
				idx = i
				break
			}
		}
		if idx < 0 {
			accepted = append(accepted, cand)
			owner[cand.Window] = cand.RuleID
			continue
		}

		prev := &accepted[idx]
		switch {
		case prev.Window == cand.Window || prev.SameEdit(&cand):
			skip(cand, SkipSuperseded)
		case samePriority(prev, &cand):
			// ни одно из окон не чиним в этом проходе
			dropped[prev.Window] = true
			dropped[cand.Window] = true
			kept := accepted[:0]
			for _, a := range accepted {
				if dropped[a.Window] {
					skip(a, SkipConflict)
					continue
				}
				kept = append(kept, a)
			}
			accepted = kept
			skip(cand, SkipConflict)
		default:
			skip(cand, SkipDeferred)
		}
	}

	accepted, skipped = withdrawPartial(cands, accepted, skipped)

	conflicts := make([]int, 0, len(dropped))
	for w := range dropped {
		conflicts = append(conflicts, w)
	}
	sort.Ints(conflicts)
	return accepted, skipped, conflicts
}

type windowRule struct {
	window int
	rule   string
}

// withdrawPartial keeps a window's edits only when every edit its rule
// proposed was accepted: a half-closed window would leave a different
// imbalance than the one that was diagnosed. Withdrawn edits are deferred
// when the missing part was deferred.
func withdrawPartial(cands, accepted []Candidate, skipped []SkippedEdit) ([]Candidate, []SkippedEdit) {
	proposed := make(map[windowRule]int)
	for _, c := range cands {
		if c.Window != 0 {
			proposed[windowRule{c.Window, c.RuleID}]++
		}
	}
	taken := make(map[windowRule]int)
	for _, a := range accepted {
		taken[windowRule{a.Window, a.RuleID}]++
	}
	retry := make(map[windowRule]bool)
	for _, s := range skipped {
		if s.Reason == SkipDeferred {
			retry[windowRule{s.Candidate.Window, s.Candidate.RuleID}] = true
		}
	}

	kept := accepted[:0]
	for _, a := range accepted {
		k := windowRule{a.Window, a.RuleID}
		if a.Window == 0 || taken[k] == proposed[k] {
			kept = append(kept, a)
			continue
		}
		reason := SkipSuperseded
		if retry[k] {
			reason = SkipDeferred
		}
		skipped = append(skipped, SkippedEdit{Candidate: a, Reason: reason})
	}
	return kept, skipped
}

func guardMatches(content []byte, c *Candidate) bool {
	if int(c.Span.End) > len(content) || c.Span.Start > c.Span.End {
		return false
	}
	if c.Op == Delete {
		return string(content[c.Span.Start:c.Span.End]) == c.Text
	}
	return true
}

// applyCandidates rewrites a copy of content from the last edit to the first
// so earlier offsets stay valid.
func applyCandidates(content []byte, accepted []Candidate) ([]byte, error) {
	order := append([]Candidate(nil), accepted...)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Span.Start > order[j].Span.Start
	})

	working := append([]byte(nil), content...)
	for _, c := range order {
		start, end := int(c.Span.Start), int(c.Span.End)
		if start < 0 || end < start || end > len(working) {
			return nil, fmt.Errorf("edit span %s out of range", c.Span)
		}
		var repl []byte
		if c.Op == Insert {
			repl = []byte(c.Text)
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], repl...), suffix...)
	}
	return working, nil
}

// spansConflict reports whether two edit spans overlap.
// Spans are half-open intervals [Start, End). Two insertions conflict only at
// the same offset; an insertion conflicts with a deletion that covers its
// position (Start <= pos < End).
func spansConflict(a, b source.Span) bool {
	return a.Overlaps(b)
}

func reportSkipped(r diag.Reporter, skipped []SkippedEdit) {
	if r == nil {
		return
	}
	for _, s := range skipped {
		c := s.Candidate
		var b *diag.ReportBuilder
		switch s.Reason {
		case SkipLiteral:
			b = diag.ReportWarning(r, diag.RepLiteralTouch, c.Span, fmt.Sprintf("%s: edit would change a string or comment", c.RuleID))
		case SkipConflict:
			b = diag.ReportWarning(r, diag.RepConflictingEdits, c.Span, fmt.Sprintf("%s: %s", c.RuleID, s.Reason))
		case SkipDeferred:
			b = diag.ReportInfo(r, diag.RepDeferredEdit, c.Span, fmt.Sprintf("%s: deferred to the next pass", c.RuleID))
		default:
			continue
		}
		b.WithFix(AsFix(&c)).Emit()
	}
}

// AsFix converts a candidate into a diagnostic fix suggestion.
func AsFix(c *Candidate) diag.Fix {
	edit := diag.FixEdit{Span: c.Span}
	if c.Op == Insert {
		edit.NewText = c.Text
	} else {
		edit.OldText = c.Text
	}
	title := fmt.Sprintf("%s %q", c.Op, c.Text)
	if c.Rationale != "" {
		title = c.Rationale
	}
	return diag.Fix{Title: title, Confidence: c.Confidence, Edits: []diag.FixEdit{edit}}
}
