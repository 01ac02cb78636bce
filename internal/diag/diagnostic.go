package diag

import (
	"mend/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit is one textual change of a suggested fix.
type FixEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix is a suggestion that was not applied automatically.
type Fix struct {
	Title      string
	Confidence float64
	Edits      []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// New builds a diagnostic without notes or fixes.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy with one more note; the receiver's slice is not
// shared.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(fix Fix) Diagnostic {
	d.Fixes = append(d.Fixes[:len(d.Fixes):len(d.Fixes)], fix)
	return d
}
