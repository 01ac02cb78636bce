package rules

import (
	"fmt"
	"sort"

	"mend/internal/balance"
	"mend/internal/diag"
	"mend/internal/fix"
)

// DefaultMinConfidence is the threshold below which candidates are rejected.
const DefaultMinConfidence = 0.5

type Options struct {
	MinConfidence float64
}

// Engine runs the rule set over every window of a pass.
type Engine struct {
	rules []Rule
	opts  Options
}

func NewEngine(opts Options, rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules, opts: opts}
}

// Rules returns the rule set in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Proposal is the engine output for one pass.
type Proposal struct {
	// Candidates are ranked and at or above the confidence threshold.
	Candidates []fix.Candidate
	// Rejected fell below the threshold.
	Rejected []fix.Candidate
	// Skipped windows produced no candidate.
	Skipped []balance.Window
}

// Propose matches every window against the rule set.
func (e *Engine) Propose(in *Input, r diag.Reporter) *Proposal {
	p := &Proposal{}
	for i := range in.Track.Windows {
		w := &in.Track.Windows[i]
		switch w.Status {
		case balance.Unresolved:
			reportWindow(r, in, w, diag.RepUnresolvedWindow, "imbalance has no boundary within the lookback")
			p.Skipped = append(p.Skipped, *w)
			continue
		case balance.Ambiguous:
			reportWindow(r, in, w, diag.ClsAmbiguousRole, fmt.Sprintf("boundary line %d has an ambiguous role", w.Boundary))
			p.Skipped = append(p.Skipped, *w)
			continue
		}

		var cands []fix.Candidate
		for _, rule := range e.rules {
			for _, c := range rule.Propose(in, w) {
				c.Window, c.Net = w.ID, w.Net
				cands = append(cands, c)
			}
		}
		if len(cands) == 0 {
			reportWindow(r, in, w, diag.RepUnresolvedWindow, "no rule matches this imbalance")
			p.Skipped = append(p.Skipped, *w)
			continue
		}
		for _, c := range merge(cands) {
			if c.Confidence < e.minConfidence() {
				p.Rejected = append(p.Rejected, c)
				continue
			}
			p.Candidates = append(p.Candidates, c)
		}
	}
	fix.SortCandidates(p.Candidates)
	fix.SortCandidates(p.Rejected)
	for i := range p.Rejected {
		c := &p.Rejected[i]
		diag.ReportWarning(r, diag.RepLowConfidence, c.Span,
			fmt.Sprintf("%s: confidence %.2f below %.2f", c.RuleID, c.Confidence, e.minConfidence())).
			WithFix(fix.AsFix(c)).
			Emit()
	}
	return p
}

func (e *Engine) minConfidence() float64 {
	if e.opts.MinConfidence <= 0 {
		return DefaultMinConfidence
	}
	return e.opts.MinConfidence
}

// merge folds identical edits into one candidate: confidences combine by
// noisy-or and the lowest rule id names the result.
func merge(cands []fix.Candidate) []fix.Candidate {
	out := make([]fix.Candidate, 0, len(cands))
	for _, c := range cands {
		found := false
		for i := range out {
			if !out[i].SameEdit(&c) {
				continue
			}
			out[i].Confidence = 1 - (1-out[i].Confidence)*(1-c.Confidence)
			if c.RuleID < out[i].RuleID {
				out[i].RuleID = c.RuleID
				out[i].Rationale = c.Rationale
			}
			found = true
			break
		}
		if !found {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

func reportWindow(r diag.Reporter, in *Input, w *balance.Window, code diag.Code, msg string) {
	if r == nil {
		return
	}
	start := in.line(w.Start).Span
	end := in.line(w.End).Span
	b := diag.ReportWarning(r, code, start.Cover(end), msg).
		WithNote(start, fmt.Sprintf("%s %s starts here", w.Anomaly, w.Net.String()))
	if w.Boundary > 0 {
		bl := in.line(w.Boundary)
		b.WithNote(bl.Span, fmt.Sprintf("boundary line role %s", bl.Role))
	}
	b.Emit()
}
