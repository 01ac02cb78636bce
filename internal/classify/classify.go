package classify

import (
	"strings"

	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

// Lines builds the line records of file from its scan result.
func Lines(file *source.File, res *lexer.Result) []Line {
	view := codeView(file.Content, res.Segments)
	n := file.LineCount()
	lines := make([]Line, n)
	tok := 0
	for i := range lines {
		sp := file.LineSpan(i + 1)
		l := &lines[i]
		l.Number = i + 1
		l.Span = sp
		l.Text = string(file.Content[sp.Start:sp.End])
		l.Code = string(view[sp.Start:sp.End])
		l.Indent = indentWidth(l.Text)
		if seg, ok := res.SegmentAt(sp.Start); ok && seg.Literal() && seg.Span.Start < sp.Start {
			l.Continuation = true
		}

		for tok < len(res.Tokens) && res.Tokens[tok].Span.Start < sp.Start {
			tok++
		}
		l.FirstTok = tok
		for tok < len(res.Tokens) && res.Tokens[tok].Span.Start < sp.End {
			l.Delta.Add(res.Tokens[tok].Kind)
			tok++
		}
		l.NumTok = tok - l.FirstTok

		l.Role, l.Support = Classify(l)
	}
	return lines
}

// codeView masks every literal byte except newlines.
func codeView(content []byte, segs []token.Segment) []byte {
	view := make([]byte, len(content))
	copy(view, content)
	for _, seg := range segs {
		var mask byte
		switch seg.Class {
		case token.String:
			mask = '"'
		case token.Comment:
			mask = ' '
		default:
			continue
		}
		for i := seg.Span.Start; i < seg.Span.End; i++ {
			if view[i] != '\n' {
				view[i] = mask
			}
		}
	}
	return view
}

type votes [Ambiguous]int

// Classify returns the role of a line and its lexical support.
func Classify(l *Line) (Role, int) {
	code := strings.TrimSpace(l.Code)
	if code == "" || l.Continuation {
		return Other, 0
	}
	var v votes

	if closersOnly(code) {
		v[ClosingCandidate] += 3
	}

	word := leadingWord(code)
	kw, isKw := token.LookupKeyword(word)
	if isKw && kw&token.KwStatement != 0 {
		v[StatementStart] += 2
	}

	switch code[len(code)-1] {
	case '(':
		v[CallOpen] += 2
		if l.Delta[token.Paren] > 0 {
			v[CallOpen]++
		}
	case '[':
		v[ObjectLiteralOpen] += 2
		if l.Delta[token.Bracket] > 0 {
			v[ObjectLiteralOpen]++
		}
	case '{':
		voteBrace(&v, strings.TrimSpace(code[:len(code)-1]), isKw && kw&token.KwBlock != 0)
	}

	return elect(v)
}

// voteBrace decides between a block and an object literal from what precedes
// the trailing '{'.
func voteBrace(v *votes, before string, blockKeyword bool) {
	if blockKeyword {
		v[BlockOpen] += 3
		return
	}
	if before == "" {
		v[BlockOpen]++
		v[ObjectLiteralOpen]++
		return
	}
	if strings.HasSuffix(before, "=>") {
		v[BlockOpen] += 3
		return
	}
	switch before[len(before)-1] {
	case ')':
		v[BlockOpen] += 3
		return
	case '=', '(', ',', ':', '[', '?', '"':
		v[ObjectLiteralOpen] += 3
		return
	}
	w := trailingWord(before)
	switch {
	case w == "":
		v[BlockOpen]++
	case w == "return" || w == "yield" || w == "await":
		v[ObjectLiteralOpen] += 3
	default:
		if kw, ok := token.LookupKeyword(w); ok && kw&token.KwBlock != 0 {
			v[BlockOpen] += 3
			return
		}
		v[BlockOpen]++
		v[ObjectLiteralOpen]++
	}
}

func elect(v votes) (Role, int) {
	best, support, tie := Other, 0, false
	for r := Role(0); r < Ambiguous; r++ {
		switch {
		case v[r] > support:
			best, support, tie = r, v[r], false
		case v[r] == support && support > 0:
			tie = true
		}
	}
	if tie {
		return Ambiguous, support
	}
	return best, support
}

func closersOnly(code string) bool {
	seen := false
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case ')', '}', ']':
			seen = true
		case ',', ';', ' ', '\t':
		default:
			return false
		}
	}
	return seen
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func leadingWord(code string) string {
	i := 0
	for i < len(code) && isWordByte(code[i]) {
		i++
	}
	return code[:i]
}

func trailingWord(code string) string {
	i := len(code)
	for i > 0 && isWordByte(code[i-1]) {
		i--
	}
	return code[i:]
}
