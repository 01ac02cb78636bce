package rules

import (
	"mend/internal/balance"
	"mend/internal/classify"
	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

// Input bundles the per-pass views of one buffer.
type Input struct {
	File  *source.File
	Scan  *lexer.Result
	Lines []classify.Line
	Track *balance.Result

	lookback   int
	semicolons bool
}

// NewInput prepares rule input; lookback <= 0 selects the default.
func NewInput(file *source.File, scan *lexer.Result, lines []classify.Line, track *balance.Result, lookback int) *Input {
	if lookback <= 0 {
		lookback = balance.DefaultLookback
	}
	in := &Input{File: file, Scan: scan, Lines: lines, Track: track, lookback: lookback}
	for i := range lines {
		if lines[i].Boundary() && lines[i].EndsStatement() {
			in.semicolons = true
			break
		}
	}
	return in
}

func (in *Input) line(num int) *classify.Line {
	return &in.Lines[num-1]
}

// prevCodeLine returns the closest line before num that has code, or 0.
func (in *Input) prevCodeLine(num int) int {
	for l := num - 1; l >= 1; l-- {
		if in.line(l).Boundary() {
			return l
		}
	}
	return 0
}

// distanceFactor decays from 1 at distance 1 to 0.5 at the lookback.
func (in *Input) distanceFactor(dist int) float64 {
	if dist <= 1 {
		return 1
	}
	f := 1 - 0.5*float64(dist-1)/float64(in.lookback)
	if f < 0.5 {
		return 0.5
	}
	return f
}

// strongSupport is the classifier vote a boundary needs for full trust.
const strongSupport = 3

// boundaryFactor scales with the classifier support of the boundary line,
// from 0.8 for a line no feature voted for up to 1. Windows closed at the
// end of file have no boundary line.
func (in *Input) boundaryFactor(w *balance.Window) float64 {
	if w.Boundary <= 0 {
		return 1
	}
	s := in.line(w.Boundary).Support
	if s >= strongSupport {
		return 1
	}
	return 0.8 + 0.2*float64(s)/strongSupport
}

// score is a rule's base confidence adjusted for the window: how strongly
// the boundary line was classified and how far it is from the imbalance.
func (in *Input) score(base float64, w *balance.Window) float64 {
	return base * in.boundaryFactor(w) * in.distanceFactor(w.Distance)
}

// closing returns the closer text for a Missing window plus an optional ';'.
func (in *Input) closing(w *balance.Window, allowSemi bool) (string, []token.Kind) {
	kinds := w.Closing(in.Scan.Tokens)
	text := token.Text(kinds)
	if allowSemi && in.needsSemicolon(w, kinds) {
		text += ";"
	}
	return text, kinds
}

// needsSemicolon: the outermost inserted closer ends a statement and the
// file terminates statements with ';'.
func (in *Input) needsSemicolon(w *balance.Window, kinds []token.Kind) bool {
	if !in.semicolons || len(kinds) == 0 {
		return false
	}
	outer := w.Openers[len(w.Openers)-1]
	oline := int(in.Scan.Tokens[outer].Line)
	if kinds[len(kinds)-1] == token.CloseBrace && in.line(oline).Role != classify.ObjectLiteralOpen {
		return false
	}
	// внешний открыватель должен начинать оператор
	prev := in.prevCodeLine(oline)
	if prev == 0 {
		return true
	}
	code := in.line(prev).Code
	for i := len(code) - 1; i >= 0; i-- {
		switch code[i] {
		case ' ', '\t':
			continue
		case ';', '{', '}':
			return true
		}
		return false
	}
	return true
}

func (in *Input) indentOf(num int) string {
	return in.line(num).IndentText()
}

// lineDeletion returns the span removing a whole line with one newline.
func (in *Input) lineDeletion(num int) source.Span {
	sp := in.line(num).Span
	if int(sp.End) < len(in.File.Content) {
		return source.Span{Start: sp.Start, End: sp.End + 1}
	}
	if num > 1 {
		return source.Span{Start: in.line(num - 1).Span.End, End: sp.End}
	}
	return sp
}

// closerOnlyExcess reports whether every token of the line is an excess
// closer of w and the line holds no literal bytes.
func (in *Input) closerOnlyExcess(w *balance.Window, num int) bool {
	l := in.line(num)
	if l.Role != classify.ClosingCandidate || l.NumTok != len(w.Closers) || l.Code != l.Text {
		return false
	}
	for _, c := range w.Closers {
		if c < l.FirstTok || c >= l.FirstTok+l.NumTok {
			return false
		}
	}
	return true
}
