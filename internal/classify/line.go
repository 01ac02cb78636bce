package classify

import (
	"strings"

	"mend/internal/source"
	"mend/internal/token"
)

// TabWidth is the indentation width of a tab.
const TabWidth = 4

// Line is the per-pass record of one source line.
type Line struct {
	Number int         // 1-based
	Span   source.Span // without the newline
	Text   string
	// Code is Text with comment bytes blanked and string bytes replaced by '"'.
	Code    string
	Indent  int
	Role    Role
	Support int
	Delta   token.Delta
	// Tokens indexes the scan tokens of this line: [FirstTok, FirstTok+NumTok).
	FirstTok int
	NumTok   int
	// Continuation is set when the line starts inside a multi-line literal.
	Continuation bool
}

// Blank reports whether the line has no code.
func (l *Line) Blank() bool {
	return strings.TrimSpace(l.Code) == ""
}

// CodeEnd returns the offset just after the last non-blank byte of the code
// view, or the line start for a blank line.
func (l *Line) CodeEnd() uint32 {
	trimmed := strings.TrimRight(l.Code, " \t\r")
	return l.Span.Start + uint32(len(trimmed))
}

// IndentText returns the leading whitespace of the line.
func (l *Line) IndentText() string {
	n := len(l.Text) - len(strings.TrimLeft(l.Text, " \t"))
	return l.Text[:n]
}

// EndsStatement reports whether the code view ends with ';'.
func (l *Line) EndsStatement() bool {
	return strings.HasSuffix(strings.TrimSpace(l.Code), ";")
}

// Boundary reports whether the line may end a window: it has code and does
// not continue a multi-line literal.
func (l *Line) Boundary() bool {
	return !l.Continuation && !l.Blank()
}

func indentWidth(text string) int {
	w := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ':
			w++
		case '\t':
			w += TabWidth
		default:
			return w
		}
	}
	return w
}
