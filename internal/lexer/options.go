package lexer

import (
	"mend/internal/diag"
	"mend/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil, тогда ошибки только возвращаются
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}
