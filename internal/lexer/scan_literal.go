package lexer

import (
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// '/' is a line comment, a block comment, a regex literal or an operator.
func (lx *Lexer) scanSlash() error {
	if _, b1, ok := lx.cursor.Peek2(); ok {
		switch b1 {
		case '/':
			lx.scanLineComment()
			return nil
		case '*':
			return lx.scanBlockComment()
		}
	}
	if lx.regexAllowed() && lx.scanRegex() {
		return nil
	}
	lx.scanPunct()
	return nil
}

func (lx *Lexer) scanLineComment() {
	start := lx.cursor.Mark()
	lx.cursor.SkipUntil('\n')
	lx.literal(token.Comment, lx.cursor.SpanFrom(start))
}

// /* ... */ в JS не вкладываются
func (lx *Lexer) scanBlockComment() error {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.literal(token.Comment, lx.cursor.SpanFrom(start))
			return nil
		}
		lx.cursor.Bump()
	}
	return lx.fail(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
}

// scanRegex consumes /body/flags. It gives up, restoring the cursor, when a
// newline or EOF comes before the closing slash: the '/' was a division.
func (lx *Lexer) scanRegex() bool {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	inClass := false
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '\n', '\r':
			lx.cursor.Reset(start)
			return false
		case '\\':
			lx.cursor.Bump()
			if b := lx.cursor.Peek(); b == '\n' || b == '\r' || lx.cursor.EOF() {
				lx.cursor.Reset(start)
				return false
			}
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if inClass {
				break
			}
			lx.cursor.Bump()
			for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.literal(token.String, lx.cursor.SpanFrom(start))
			lx.prev = sigValue
			return true
		}
		lx.cursor.Bump()
	}
	lx.cursor.Reset(start)
	return false
}

// '...' и "..." с escape; перевод строки без '\' значит незакрытая строка.
func (lx *Lexer) scanQuoted(q byte) error {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '\\':
			lx.cursor.Bump()
			if lx.cursor.Bump() == '\r' {
				lx.cursor.Eat('\n')
			}
			continue
		case '\n':
			return lx.fail(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "newline in string literal")
		case q:
			lx.cursor.Bump()
			lx.literal(token.String, lx.cursor.SpanFrom(start))
			lx.prev = sigValue
			return nil
		}
		lx.cursor.Bump()
	}
	return lx.fail(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated string literal")
}

// scanTemplate consumes template text starting at the opening backtick or at
// the '}' that ends a ${...} expression. It stops after the closing backtick
// or after the next "${", leaving the expression to the code loop.
func (lx *Lexer) scanTemplate(origin uint32) error {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b0, b1, ok := lx.cursor.Peek2()
		switch {
		case b0 == '\\':
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		case lx.cursor.Peek() == '`':
			lx.cursor.Bump()
			lx.literal(token.String, lx.cursor.SpanFrom(start))
			lx.prev = sigValue
			return nil
		case ok && b0 == '$' && b1 == '{':
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.literal(token.String, lx.cursor.SpanFrom(start))
			lx.push(frame{kind: frameTemplate, origin: origin})
			lx.prev, lx.prevB = sigPunct, '{'
			return nil
		}
		lx.cursor.Bump()
	}
	return lx.fail(diag.LexUnterminatedTemplate, source.Span{Start: origin, End: lx.cursor.Off}, "unterminated template literal")
}
