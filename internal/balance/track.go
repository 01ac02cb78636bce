package balance

import (
	"sort"
	"strings"

	"mend/internal/classify"
	"mend/internal/token"
)

// DefaultLookback bounds how far a window may extend.
const DefaultLookback = 30

type Options struct {
	LookbackLines int
}

// Result is the tracker output for one pass.
type Result struct {
	// Cumulative[i] is the running delta after line i+1.
	Cumulative []token.Delta
	Windows    []Window
	// Net is the total opens-minus-closes of the buffer.
	Net token.Delta
}

// Balanced reports whether the buffer has no windows.
func (r *Result) Balanced() bool {
	return len(r.Windows) == 0
}

// Unresolved returns windows nobody may repair.
func (r *Result) Unresolved() []Window {
	var out []Window
	for _, w := range r.Windows {
		if w.Status == Unresolved {
			out = append(out, w)
		}
	}
	return out
}

// Track localizes the imbalances of a classified buffer.
func Track(lines []classify.Line, toks []token.Token, opts Options) *Result {
	if opts.LookbackLines <= 0 {
		opts.LookbackLines = DefaultLookback
	}
	res := &Result{Cumulative: cumulative(lines)}
	if n := len(res.Cumulative); n > 0 {
		res.Net = res.Cumulative[n-1]
	}

	plain := newMatcher(lines, toks, nil, opts.LookbackLines)
	plain.run()
	if plain.clean() {
		return res
	}

	budget := plain.leftoverByDelim()
	m := newMatcher(lines, toks, &budget, opts.LookbackLines)
	m.run()
	res.Windows = m.windows()
	for i := range res.Windows {
		res.Windows[i].ID = i + 1
	}
	return res
}

func cumulative(lines []classify.Line) []token.Delta {
	out := make([]token.Delta, len(lines))
	var run token.Delta
	for i := range lines {
		run = run.Plus(lines[i].Delta)
		out[i] = run
	}
	return out
}

type unclosed struct {
	line    int // 0 = EOF
	tok     int
	cause   Cause
	openers []int
}

type excess struct {
	line  int
	tok   int
	depth int
}

type matcher struct {
	lines []classify.Line
	toks  []token.Token
	// indent enables indentation boundaries limited by budget.
	indent   bool
	budget   token.Delta
	lookback int

	stack      []int
	depthAfter []int
	unclosed   []unclosed
	excess     []excess
}

func newMatcher(lines []classify.Line, toks []token.Token, budget *token.Delta, lookback int) *matcher {
	m := &matcher{
		lines:      lines,
		toks:       toks,
		lookback:   lookback,
		depthAfter: make([]int, len(lines)),
	}
	if budget != nil {
		m.indent = true
		m.budget = *budget
	}
	return m
}

func (m *matcher) clean() bool {
	return len(m.stack) == 0 && len(m.unclosed) == 0 && len(m.excess) == 0
}

func (m *matcher) leftoverByDelim() token.Delta {
	var d token.Delta
	for _, o := range m.stack {
		d.Add(m.toks[o].Kind)
	}
	return d
}

func (m *matcher) run() {
	for li := range m.lines {
		line := &m.lines[li]
		num := li + 1
		if m.indent {
			m.indentBoundary(line, num)
		}
		for t := line.FirstTok; t < line.FirstTok+line.NumTok; t++ {
			m.step(t, num)
		}
		m.depthAfter[li] = len(m.stack)
	}
}

// indentBoundary closes openers whose indentation the line returns to.
func (m *matcher) indentBoundary(line *classify.Line, num int) {
	if !line.Boundary() || continuesExpression(line.Code) || startsWithCloser(line.Code) {
		return
	}
	var popped []int
	for len(m.stack) > 0 {
		o := m.stack[len(m.stack)-1]
		oline := int(m.toks[o].Line)
		d := m.toks[o].Kind.Delim()
		if oline >= num || num-oline > m.lookback || m.budget[d] <= 0 {
			break
		}
		if line.Indent > m.lines[oline-1].Indent {
			break
		}
		m.stack = m.stack[:len(m.stack)-1]
		m.budget[d]--
		popped = append(popped, o)
	}
	if len(popped) > 0 {
		m.unclosed = append(m.unclosed, unclosed{line: num, tok: -1, cause: CauseIndent, openers: popped})
	}
}

func (m *matcher) step(t, num int) {
	k := m.toks[t].Kind
	if k.IsOpen() {
		m.stack = append(m.stack, t)
		return
	}
	n := len(m.stack)
	if n == 0 {
		m.excess = append(m.excess, excess{line: num, tok: t, depth: 0})
		return
	}
	if m.toks[m.stack[n-1]].Kind == k.Matching() {
		m.stack = m.stack[:n-1]
		return
	}
	// несовпадение: ищем пару глубже по стеку
	for j := n - 2; j >= 0; j-- {
		if m.toks[m.stack[j]].Kind != k.Matching() {
			continue
		}
		popped := make([]int, 0, n-1-j)
		for i := n - 1; i > j; i-- {
			popped = append(popped, m.stack[i])
		}
		m.stack = m.stack[:j]
		m.unclosed = append(m.unclosed, unclosed{line: num, tok: m.boundaryTok(t, num), cause: CauseCloser, openers: popped})
		return
	}
	m.excess = append(m.excess, excess{line: num, tok: t, depth: n})
}

// boundaryTok returns -1 when the closer is the first code of its line.
func (m *matcher) boundaryTok(t, num int) int {
	line := &m.lines[num-1]
	prefix := line.Code[:m.toks[t].Span.Start-line.Span.Start]
	if strings.TrimSpace(prefix) == "" {
		return -1
	}
	return t
}

func (m *matcher) lastLine() int {
	return len(m.lines)
}

func (m *matcher) windows() []Window {
	var out []Window

	// одинаковая точка вставки: одно окно
	merged := make([]unclosed, 0, len(m.unclosed))
	for _, u := range m.unclosed {
		if n := len(merged); n > 0 && merged[n-1].line == u.line && merged[n-1].tok == u.tok {
			merged[n-1].openers = append(merged[n-1].openers, u.openers...)
			if u.cause == CauseCloser {
				merged[n-1].cause = CauseCloser
			}
			continue
		}
		merged = append(merged, u)
	}
	for _, u := range merged {
		out = append(out, m.missingWindow(u))
	}

	out = append(out, m.leftoverWindows()...)
	out = append(out, m.excessWindows()...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Anomaly < out[j].Anomaly
	})
	return out
}

func (m *matcher) missingWindow(u unclosed) Window {
	start := m.firstLine(u.openers)
	end := u.line - 1
	if u.tok >= 0 {
		end = u.line
	}
	if end < start {
		end = start
	}
	w := Window{
		Anomaly:     Missing,
		Cause:       u.cause,
		Start:       start,
		End:         end,
		Boundary:    u.line,
		BoundaryTok: u.tok,
		Openers:     u.openers,
		Distance:    u.line - start,
	}
	for _, o := range u.openers {
		w.Net.Add(m.toks[o].Kind)
	}
	switch {
	case w.Distance > m.lookback:
		w.Status = Unresolved
		w.End = m.lastLine()
	case m.lines[u.line-1].Role == classify.Ambiguous:
		w.Status = Ambiguous
	}
	return w
}

// leftoverWindows turns openers still open at EOF into an EOF window when
// they are within the lookback of the last line and Unresolved otherwise.
func (m *matcher) leftoverWindows() []Window {
	if len(m.stack) == 0 {
		return nil
	}
	last := m.lastLine()
	var near, far []int
	for i := len(m.stack) - 1; i >= 0; i-- {
		o := m.stack[i]
		if last-int(m.toks[o].Line) <= m.lookback {
			near = append(near, o)
		} else {
			far = append(far, o)
		}
	}
	var out []Window
	if len(near) > 0 {
		w := Window{Anomaly: Missing, Cause: CauseEOF, Boundary: 0, BoundaryTok: -1, Openers: near, End: last}
		w.Start = m.firstLine(near)
		w.Distance = last - w.Start
		for _, o := range near {
			w.Net.Add(m.toks[o].Kind)
		}
		out = append(out, w)
	}
	if len(far) > 0 {
		w := Window{Anomaly: Missing, Cause: CauseNone, Status: Unresolved, BoundaryTok: -1, Openers: far, End: last}
		w.Start = m.firstLine(far)
		w.Distance = last - w.Start
		for _, o := range far {
			w.Net.Add(m.toks[o].Kind)
		}
		out = append(out, w)
	}
	return out
}

func (m *matcher) excessWindows() []Window {
	var out []Window
	for i := 0; i < len(m.excess); {
		e := m.excess[i]
		j := i
		w := Window{Anomaly: Excess, Cause: CauseExcess, Boundary: e.line, BoundaryTok: -1, End: e.line}
		for ; j < len(m.excess) && m.excess[j].line == e.line; j++ {
			w.Closers = append(w.Closers, m.excess[j].tok)
			w.Net.Add(m.toks[m.excess[j].tok].Kind)
		}
		cp := m.checkpoint(e.line, e.depth)
		w.Start = cp + 1
		w.Distance = e.line - cp
		switch {
		case w.Distance > m.lookback:
			w.Status = Unresolved
		case m.lines[e.line-1].Role == classify.Ambiguous:
			w.Status = Ambiguous
		}
		out = append(out, w)
		i = j
	}
	return out
}

// checkpoint returns the last line before num whose depth went back to depth
// or below, 0 for the file start.
func (m *matcher) checkpoint(num, depth int) int {
	for c := num - 1; c >= 1; c-- {
		if m.depthAfter[c-1] <= depth {
			return c
		}
	}
	return 0
}

func (m *matcher) firstLine(openers []int) int {
	first := int(m.toks[openers[0]].Line)
	for _, o := range openers[1:] {
		if l := int(m.toks[o].Line); l < first {
			first = l
		}
	}
	return first
}

func firstCodeByte(code string) byte {
	s := strings.TrimLeft(code, " \t")
	if s == "" {
		return 0
	}
	return s[0]
}

// continuesExpression: строка продолжает выражение с предыдущей.
func continuesExpression(code string) bool {
	return strings.IndexByte(".?:+-*/%&|^,=<>", firstCodeByte(code)) >= 0
}

func startsWithCloser(code string) bool {
	return token.KindOf(firstCodeByte(code)).IsClose()
}
