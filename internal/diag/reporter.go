package diag

import "mend/internal/source"

// Reporter receives diagnostics from the scanner, the rule engine and the
// applier. Implementations: BagReporter, DedupReporter and the driver's
// span remapper.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates notes and fixes, then emits once.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func report(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevWarning, code, primary, msg)
}

func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return report(r, SevInfo, code, primary, msg)
}

// WithNote points at a secondary span: the opener of a window, its
// boundary line.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.diag = b.diag.WithNote(sp, msg)
	}
	return b
}

// WithFix attaches an edit that was proposed but not applied.
func (b *ReportBuilder) WithFix(fix Fix) *ReportBuilder {
	if b != nil {
		b.diag = b.diag.WithFix(fix)
	}
	return b
}

// Emit hands the diagnostic to the reporter; later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
}

// BagReporter stores into Bag, dropping what exceeds its limit.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}
