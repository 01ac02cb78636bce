package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"mend/internal/diag"
	"mend/internal/driver"
	"mend/internal/source"
)

type shortLine struct {
	line, col uint32
	sev       diag.Severity
	label     string
	code      string
	msg       string
}

// Short prints one line per diagnostic in the form compilers use, so
// editors and grep can jump to it:
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//
// Lines of a file are ordered by position. File-level diagnostics have no
// line and column. Notes follow as "note" lines when opts.ShowNotes is set.
func Short(w io.Writer, reports []*driver.Report, opts PrettyOpts) {
	for _, r := range reports {
		if r == nil {
			continue
		}
		path := formatPath(r.File, opts.PathMode, opts.BaseDir)
		for _, l := range shortLines(r.Diagnostics, r.Source, opts) {
			loc := path
			if l.line > 0 {
				loc = fmt.Sprintf("%s:%d:%d", path, l.line, l.col)
			}
			fmt.Fprintf(w, "%s: %s %s: %s\n", loc, l.label, l.code, l.msg)
		}
	}
}

func shortLines(diags []diag.Diagnostic, file *source.File, opts PrettyOpts) []shortLine {
	var out []shortLine
	add := func(sp source.Span, sev diag.Severity, label string, code diag.Code, msg string) {
		l := shortLine{sev: sev, label: label, code: code.ID(), msg: oneLine(msg)}
		if file != nil && hasLocation(sp) {
			pos := file.Position(sp.Start)
			l.line, l.col = pos.Line, pos.Col
		}
		out = append(out, l)
	}
	for i := range diags {
		d := &diags[i]
		if d.Severity < opts.MinSeverity {
			continue
		}
		add(d.Primary, d.Severity, strings.ToLower(d.Severity.String()), d.Code, d.Message)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				add(n.Span, diag.SevInfo, "note", d.Code, n.Msg)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.line != b.line {
			return a.line < b.line
		}
		if a.col != b.col {
			return a.col < b.col
		}
		if a.sev != b.sev {
			return a.sev > b.sev
		}
		return a.code < b.code
	})
	return out
}

func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
