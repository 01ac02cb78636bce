package lexer

import (
	"bytes"
	"path/filepath"
	"strings"

	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// jsxPrefix lists punctuation after which '<' opens an element.
// '>' covers "=> <div>".
const jsxPrefix = "(,=:[!&|?{};>"

// jsxEnabled: plain TypeScript uses <T> for generics and assertions.
func jsxEnabled(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return false
	}
	return true
}

// jsxStart reports whether the '<' at the cursor opens an element or a
// fragment. Generic arrow heads like "<T,>(x) =>" and "<T extends U>" are
// left to the code scanner.
func (lx *Lexer) jsxStart() bool {
	if !lx.jsx || !lx.exprPosition(jsxPrefix) {
		return false
	}
	src, i := lx.cursor.Src[:lx.cursor.Limit], int(lx.cursor.Off)+1
	if i >= len(src) {
		return false
	}
	if src[i] == '>' {
		return true
	}
	if !isIdentStartByte(src[i]) && src[i] < utf8RuneSelf {
		return false
	}
	for i < len(src) && isTagNameByte(src[i]) {
		i++
	}
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	rest := src[i:]
	if len(rest) > 0 && rest[0] == ',' {
		return false
	}
	if bytes.HasPrefix(rest, []byte("extends")) && (len(rest) == 7 || !isIdentContinueByte(rest[7])) {
		return false
	}
	return true
}

func isTagNameByte(b byte) bool {
	return isIdentContinueByte(b) || b >= utf8RuneSelf || b == '.' || b == ':' || b == '-'
}

func (lx *Lexer) openTag(closing bool) {
	origin := lx.cursor.Off
	lx.cursor.Bump()
	if closing {
		lx.cursor.Bump()
	}
	lx.push(frame{kind: frameJSXTag, origin: origin, closing: closing})
}

// openExpr handles the '{' of an attribute value or a child expression.
func (lx *Lexer) openExpr() {
	off := lx.cursor.Off
	lx.emit(token.OpenBrace, off)
	lx.cursor.Bump()
	lx.push(frame{kind: frameJSXExpr, origin: off})
	lx.prev, lx.prevB = sigPunct, '{'
}

// elementDone runs after "/>" or the '>' of a closing tag. Back in code the
// element is an operand, so a following '/' divides.
func (lx *Lexer) elementDone() {
	if f := lx.top(); f == nil || f.kind != frameJSXChildren {
		lx.prev = sigValue
	}
}

// scanTagPart consumes one piece of a tag: name, attribute, string value,
// {expression}, "/>" or '>'.
func (lx *Lexer) scanTagPart() error {
	b := lx.cursor.Peek()
	switch {
	case isSpace(b):
		lx.cursor.Bump()
	case b == '/':
		_, b1, _ := lx.cursor.Peek2()
		switch b1 {
		case '>':
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.pop()
			lx.elementDone()
		case '/':
			lx.scanLineComment()
		case '*':
			return lx.scanBlockComment()
		default:
			return lx.malformedTag()
		}
	case b == '>':
		lx.cursor.Bump()
		tag := lx.pop()
		if !tag.closing {
			lx.push(frame{kind: frameJSXChildren, origin: tag.origin})
			return nil
		}
		if f := lx.top(); f != nil && f.kind == frameJSXChildren {
			lx.pop()
		}
		lx.elementDone()
	case b == '{':
		lx.openExpr()
	case b == '\'' || b == '"':
		return lx.scanAttrString(b)
	case isTagNameByte(b) || b == '=':
		lx.cursor.Bump()
	default:
		return lx.malformedTag()
	}
	return nil
}

func (lx *Lexer) malformedTag() error {
	sp := source.Span{Start: lx.top().origin, End: lx.cursor.Off + 1}
	return lx.fail(diag.LexUnterminatedElement, sp, "malformed JSX tag")
}

// JSX attribute strings have no escapes and may span lines.
func (lx *Lexer) scanAttrString(q byte) error {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() == q {
			lx.literal(token.String, lx.cursor.SpanFrom(start))
			return nil
		}
	}
	return lx.fail(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated attribute string")
}

// scanChildren reads element content: a child tag, a closing tag, a
// {expression} or a run of text. Text is a String segment without its
// surrounding whitespace, so indentation stays editable code.
func (lx *Lexer) scanChildren() error {
	switch lx.cursor.Peek() {
	case '{':
		lx.openExpr()
		return nil
	case '<':
		_, b1, _ := lx.cursor.Peek2()
		lx.openTag(b1 == '/')
		return nil
	}
	start := lx.cursor.Off
	for !lx.cursor.EOF() {
		if b := lx.cursor.Peek(); b == '<' || b == '{' {
			break
		}
		lx.cursor.Bump()
	}
	end := lx.cursor.Off
	for start < end && isSpace(lx.cursor.Src[start]) {
		start++
	}
	for end > start && isSpace(lx.cursor.Src[end-1]) {
		end--
	}
	lx.literal(token.String, source.Span{Start: start, End: end})
	return nil
}
