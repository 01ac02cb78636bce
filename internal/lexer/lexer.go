package lexer

import (
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// Result is the outcome of one scan.
type Result struct {
	Tokens   []token.Token
	Segments []token.Segment
}

// sig remembers the last significant code element; it decides whether a '/'
// starts a regex literal or is a division.
type sig uint8

const (
	sigNone sig = iota
	sigPunct
	sigWord
	sigValue
)

// frameKind tells the main loop how to read the bytes at the cursor.
type frameKind uint8

const (
	frameTemplate    frameKind = iota // code inside ${...}
	frameJSXExpr                      // code inside a JSX {...} container
	frameJSXTag                       // attributes of <tag ...> or </tag>
	frameJSXChildren                  // text and children of an open element
)

type frame struct {
	kind    frameKind
	origin  uint32 // backtick, '<' or '{' that opened the frame
	depth   int    // '{' opened inside a code frame
	closing bool   // frameJSXTag of a </tag>
}

func (f *frame) code() bool {
	return f.kind == frameTemplate || f.kind == frameJSXExpr
}

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	res    Result
	lits   []token.Segment // String and Comment spans in order
	frames []frame
	jsx    bool
	prev   sig
	prevB  byte
	word   source.Span
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		jsx:    jsxEnabled(file.Path),
	}
}

// Scan walks the file once and returns its delimiter tokens and segments.
// An unterminated literal stops the scan with an *UnterminatedError.
func Scan(file *source.File, opts Options) (*Result, error) {
	lx := New(file, opts)
	if err := lx.run(); err != nil {
		return nil, err
	}
	return &lx.res, nil
}

func (lx *Lexer) run() error {
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '#' && b1 == '!' {
		lx.scanLineComment()
	}
	for !lx.cursor.EOF() {
		var err error
		switch f := lx.top(); {
		case f != nil && f.kind == frameJSXTag:
			err = lx.scanTagPart()
		case f != nil && f.kind == frameJSXChildren:
			err = lx.scanChildren()
		default:
			err = lx.scanCode()
		}
		if err != nil {
			return err
		}
	}
	if len(lx.frames) > 0 {
		outer := lx.frames[0]
		sp := source.Span{Start: outer.origin, End: lx.cursor.Off}
		if outer.kind == frameTemplate {
			return lx.fail(diag.LexUnterminatedTemplate, sp, "unterminated template literal")
		}
		return lx.fail(diag.LexUnterminatedElement, sp, "unterminated JSX element")
	}
	lx.res.Segments = tile(lx.lits, lx.cursor.Limit)
	return nil
}

func (lx *Lexer) scanCode() error {
	b := lx.cursor.Peek()
	switch {
	case isSpace(b):
		lx.cursor.Bump()
	case b == '/':
		return lx.scanSlash()
	case b == '\'' || b == '"':
		return lx.scanQuoted(b)
	case b == '`':
		return lx.scanTemplate(lx.cursor.Off)
	case b == '}' && lx.closesFrame():
		f := lx.pop()
		if f.kind == frameTemplate {
			return lx.scanTemplate(f.origin)
		}
		lx.emit(token.CloseBrace, lx.cursor.Off)
		lx.cursor.Bump()
		lx.prev, lx.prevB = sigPunct, '}'
	case b == '<' && lx.jsxStart():
		lx.openTag(false)
	case isIdentStartByte(b) || b >= utf8RuneSelf:
		lx.scanWord()
	case isDec(b):
		lx.scanNumber()
	default:
		lx.scanPunct()
	}
	return nil
}

func (lx *Lexer) literal(class token.Class, sp source.Span) {
	if sp.Empty() {
		return
	}
	lx.lits = append(lx.lits, token.Segment{Class: class, Span: sp})
}

func (lx *Lexer) emit(k token.Kind, off uint32) {
	pos := lx.file.Position(off)
	lx.res.Tokens = append(lx.res.Tokens, token.Token{
		Kind: k,
		Span: source.Span{Start: off, End: off + 1},
		Line: pos.Line,
		Col:  pos.Col,
	})
}

func (lx *Lexer) top() *frame {
	if n := len(lx.frames); n > 0 {
		return &lx.frames[n-1]
	}
	return nil
}

func (lx *Lexer) push(f frame) { lx.frames = append(lx.frames, f) }

func (lx *Lexer) pop() frame {
	f := lx.frames[len(lx.frames)-1]
	lx.frames = lx.frames[:len(lx.frames)-1]
	return f
}

// closesFrame: the '}' at the cursor ends a ${...} or a JSX {...}.
func (lx *Lexer) closesFrame() bool {
	f := lx.top()
	return f != nil && f.code() && f.depth == 0
}

// tile fills the gaps between literal spans with Code and merges adjacent
// segments of the same class.
func tile(lits []token.Segment, size uint32) []token.Segment {
	segs := make([]token.Segment, 0, 2*len(lits)+1)
	push := func(c token.Class, sp source.Span) {
		if sp.Empty() {
			return
		}
		if n := len(segs); n > 0 && segs[n-1].Class == c && segs[n-1].Span.End == sp.Start {
			segs[n-1].Span.End = sp.End
			return
		}
		segs = append(segs, token.Segment{Class: c, Span: sp})
	}
	pos := uint32(0)
	for _, l := range lits {
		push(token.Code, source.Span{Start: pos, End: l.Span.Start})
		push(l.Class, l.Span)
		pos = l.Span.End
	}
	push(token.Code, source.Span{Start: pos, End: size})
	return segs
}
