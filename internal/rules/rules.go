package rules

import (
	"mend/internal/balance"
	"mend/internal/classify"
	"mend/internal/fix"
	"mend/internal/token"
)

// Rule ids; their lexical order breaks ranking ties.
const (
	CloseBeforeStatement    = "R1-close-before-statement"
	CloseOpenLine           = "R2-close-open-line"
	CloseBeforeCloser       = "R3-close-before-closer"
	CloseBeforeSibling      = "R4-close-before-sibling"
	CloseAtEOF              = "R5-close-at-eof"
	DropRedundantCloserLine = "R6-drop-redundant-closer-line"
	DropExcessCloser        = "R7-drop-excess-closer"
)

// Rule proposes edits for one window.
type Rule interface {
	ID() string
	Propose(in *Input, w *balance.Window) []fix.Candidate
}

// DefaultRules returns the built-in rule set in id order.
func DefaultRules() []Rule {
	return []Rule{
		closeBeforeStatement{},
		closeOpenLine{},
		closeBeforeCloser{},
		closeBeforeSibling{},
		closeAtEOF{},
		dropRedundantCloserLine{},
		dropExcessCloser{},
	}
}

// openLineShape: the window is the opener line alone and the next line (or
// the end of file) is its boundary.
func openLineShape(w *balance.Window) bool {
	if w.Anomaly != balance.Missing || w.Start != w.End {
		return false
	}
	return (w.Cause == balance.CauseIndent && w.Boundary == w.Start+1) || w.Cause == balance.CauseEOF
}

// insertBeforeLine proposes a new line with the closers right before the
// boundary line, indented like the window's first line.
func insertBeforeLine(in *Input, w *balance.Window, id string, base float64, semi bool) fix.Candidate {
	text, kinds := in.closing(w, semi)
	at := in.line(w.Boundary).Span.Start
	return fix.InsertText(in.File, at, in.indentOf(w.Start)+text+"\n",
		fix.WithRule(id),
		fix.WithWindow(w.ID),
		fix.WithTokens(kinds...),
		fix.WithConfidence(in.score(base, w)),
		fix.WithRationale("close %s opened on line %d before line %d", text, w.Start, w.Boundary),
	)
}

type closeBeforeStatement struct{}

func (closeBeforeStatement) ID() string { return CloseBeforeStatement }

func (r closeBeforeStatement) Propose(in *Input, w *balance.Window) []fix.Candidate {
	if w.Anomaly != balance.Missing || w.Cause != balance.CauseIndent || openLineShape(w) {
		return nil
	}
	if in.line(w.Boundary).Role != classify.StatementStart {
		return nil
	}
	return []fix.Candidate{insertBeforeLine(in, w, r.ID(), 1, true)}
}

type closeOpenLine struct{}

func (closeOpenLine) ID() string { return CloseOpenLine }

func (r closeOpenLine) Propose(in *Input, w *balance.Window) []fix.Candidate {
	if !openLineShape(w) {
		return nil
	}
	text, kinds := in.closing(w, true)
	at := in.line(w.Start).CodeEnd()
	return []fix.Candidate{fix.InsertText(in.File, at, text,
		fix.WithRule(r.ID()),
		fix.WithWindow(w.ID),
		fix.WithTokens(kinds...),
		fix.WithConfidence(in.score(0.9, w)),
		fix.WithRationale("close %s at the end of line %d", text, w.Start),
	)}
}

type closeBeforeCloser struct{}

func (closeBeforeCloser) ID() string { return CloseBeforeCloser }

func (r closeBeforeCloser) Propose(in *Input, w *balance.Window) []fix.Candidate {
	if w.Anomaly != balance.Missing || w.Cause != balance.CauseCloser {
		return nil
	}
	if w.BoundaryTok < 0 {
		return []fix.Candidate{insertBeforeLine(in, w, r.ID(), 0.9, false)}
	}
	text, kinds := in.closing(w, false)
	closer := in.Scan.Tokens[w.BoundaryTok]
	return []fix.Candidate{fix.InsertText(in.File, closer.Span.Start, text,
		fix.WithRule(r.ID()),
		fix.WithWindow(w.ID),
		fix.WithTokens(kinds...),
		fix.WithConfidence(in.score(0.85, w)),
		fix.WithRationale("close %s before %s on line %d", text, token.Text([]token.Kind{closer.Kind}), closer.Line),
	)}
}

type closeBeforeSibling struct{}

func (closeBeforeSibling) ID() string { return CloseBeforeSibling }

func (r closeBeforeSibling) Propose(in *Input, w *balance.Window) []fix.Candidate {
	if w.Anomaly != balance.Missing || w.Cause != balance.CauseIndent || openLineShape(w) {
		return nil
	}
	var base float64
	switch role := in.line(w.Boundary).Role; {
	case role == classify.StatementStart:
		return nil
	case role == classify.ClosingCandidate:
		base = 0.9
	case role.Opener():
		base = 0.75
	default:
		base = 0.7
	}
	return []fix.Candidate{insertBeforeLine(in, w, r.ID(), base, true)}
}

type closeAtEOF struct{}

func (closeAtEOF) ID() string { return CloseAtEOF }

func (r closeAtEOF) Propose(in *Input, w *balance.Window) []fix.Candidate {
	if w.Anomaly != balance.Missing || w.Cause != balance.CauseEOF || openLineShape(w) {
		return nil
	}
	text, kinds := in.closing(w, true)
	content := in.File.Content
	prefix := ""
	if len(content) > 0 && content[len(content)-1] != '\n' {
		prefix = "\n"
	}
	return []fix.Candidate{fix.InsertText(in.File, in.File.Size(), prefix+in.indentOf(w.Start)+text+"\n",
		fix.WithRule(r.ID()),
		fix.WithWindow(w.ID),
		fix.WithTokens(kinds...),
		fix.WithConfidence(in.score(0.8, w)),
		fix.WithRationale("close %s opened on line %d at end of file", text, w.Start),
	)}
}

type dropRedundantCloserLine struct{}

func (dropRedundantCloserLine) ID() string { return DropRedundantCloserLine }

func (r dropRedundantCloserLine) Propose(in *Input, w *balance.Window) []fix.Candidate {
	if w.Anomaly != balance.Excess || in.line(w.Boundary).Role != classify.ClosingCandidate {
		return nil
	}
	// предыдущая строка-закрывашка уже вернула баланс к базовому уровню
	prev := in.prevCodeLine(w.Boundary)
	if prev == 0 || prev != w.Start-1 || in.line(prev).Role != classify.ClosingCandidate {
		return nil
	}
	conf := in.score(0.95, w)
	if in.closerOnlyExcess(w, w.Boundary) {
		return []fix.Candidate{fix.DeleteSpan(in.File, in.lineDeletion(w.Boundary),
			fix.WithRule(r.ID()),
			fix.WithWindow(w.ID),
			fix.WithTokens(closerKinds(in, w)...),
			fix.WithConfidence(conf),
			fix.WithRationale("line %d repeats the closers of line %d", w.Boundary, prev),
		)}
	}
	return deleteTokens(in, w, r.ID(), in.score(0.85, w))
}

type dropExcessCloser struct{}

func (dropExcessCloser) ID() string { return DropExcessCloser }

func (r dropExcessCloser) Propose(in *Input, w *balance.Window) []fix.Candidate {
	if w.Anomaly != balance.Excess {
		return nil
	}
	conf := in.score(0.7, w)
	if in.closerOnlyExcess(w, w.Boundary) {
		return []fix.Candidate{fix.DeleteSpan(in.File, in.lineDeletion(w.Boundary),
			fix.WithRule(r.ID()),
			fix.WithWindow(w.ID),
			fix.WithTokens(closerKinds(in, w)...),
			fix.WithConfidence(conf),
			fix.WithRationale("line %d only holds unmatched closers", w.Boundary),
		)}
	}
	return deleteTokens(in, w, r.ID(), conf)
}

func closerKinds(in *Input, w *balance.Window) []token.Kind {
	kinds := make([]token.Kind, len(w.Closers))
	for i, c := range w.Closers {
		kinds[i] = in.Scan.Tokens[c].Kind
	}
	return kinds
}

func deleteTokens(in *Input, w *balance.Window, id string, conf float64) []fix.Candidate {
	out := make([]fix.Candidate, 0, len(w.Closers))
	for _, c := range w.Closers {
		tok := in.Scan.Tokens[c]
		out = append(out, fix.DeleteSpan(in.File, tok.Span,
			fix.WithRule(id),
			fix.WithWindow(w.ID),
			fix.WithTokens(tok.Kind),
			fix.WithConfidence(conf),
			fix.WithRationale("drop unmatched %s on line %d", token.Text([]token.Kind{tok.Kind}), tok.Line),
		))
	}
	return out
}
