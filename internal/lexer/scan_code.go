package lexer

import (
	"strings"

	"mend/internal/token"
)

// regexPrefix lists punctuation after which '/' starts an expression.
// '<' is left out: "</" is a JSX closing tag far more often than a regex.
const regexPrefix = "(,=:[!&|?{};+-*%>~^"

func (lx *Lexer) scanPunct() {
	off := lx.cursor.Off
	b := lx.cursor.Bump()
	lx.prev, lx.prevB = sigPunct, b

	k := token.KindOf(b)
	if k == token.Invalid {
		return
	}
	if f := lx.top(); f != nil && f.code() {
		switch k {
		case token.OpenBrace:
			f.depth++
		case token.CloseBrace:
			f.depth--
		}
	}
	if k == token.CloseParen || k == token.CloseBracket {
		lx.prev = sigValue
	}
	lx.emit(k, off)
}

func (lx *Lexer) scanWord() {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if !isIdentContinueByte(b) && b < utf8RuneSelf {
			break
		}
		lx.cursor.Bump()
	}
	lx.prev = sigWord
	lx.word = lx.cursor.SpanFrom(start)
}

// числа не разбираем: достаточно не спутать их с началом regex
func (lx *Lexer) scanNumber() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if !isIdentContinueByte(b) && b != '.' {
			break
		}
		lx.cursor.Bump()
	}
	lx.prev = sigValue
}

func (lx *Lexer) regexAllowed() bool {
	return lx.exprPosition(regexPrefix)
}

// exprPosition reports whether the cursor can start an operand, judged by
// the previous significant element.
func (lx *Lexer) exprPosition(prefix string) bool {
	switch lx.prev {
	case sigNone:
		return true
	case sigPunct:
		return strings.IndexByte(prefix, lx.prevB) >= 0
	case sigWord:
		return token.ExprKeyword(string(lx.file.Content[lx.word.Start:lx.word.End]))
	}
	return false
}
