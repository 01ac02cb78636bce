package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mend/internal/diag"
	"mend/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret, added, removed, bold func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		err:     mk(color.FgRed, color.Bold),
		warn:    mk(color.FgYellow, color.Bold),
		info:    mk(color.FgCyan),
		note:    mk(color.FgBlue),
		path:    mk(color.Bold),
		gutter:  mk(color.FgBlue),
		caret:   mk(color.FgGreen, color.Bold),
		added:   mk(color.FgGreen),
		removed: mk(color.FgRed),
		bold:    mk(color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.err(sev.String())
	case diag.SevWarning:
		return p.warn(sev.String())
	}
	return p.info(sev.String())
}

// Pretty форматирует диагностики одного файла в человекочитаемый вид.
// Для каждой диагностики печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
// Spans must refer to file.Content.
func Pretty(w io.Writer, diags []diag.Diagnostic, file *source.File, opts PrettyOpts) {
	p := newPalette(opts.Color)
	path := ""
	if file != nil {
		path = formatPath(file.Path, opts.PathMode, opts.BaseDir)
	}
	for i := range diags {
		d := &diags[i]
		if d.Severity < opts.MinSeverity {
			continue
		}
		prettyOne(w, p, d, file, path, opts)
	}
}

func prettyOne(w io.Writer, p palette, d *diag.Diagnostic, file *source.File, path string, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s %s: %s\n", p.path(location(file, path, d.Primary)), p.severity(d.Severity), d.Code.ID(), d.Message)
	if file != nil && hasLocation(d.Primary) {
		frame(w, p, file, d.Primary, int(opts.Context))
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note("note:"), location(file, path, n.Span), n.Msg)
		}
	}
	if !opts.ShowFixes {
		return
	}
	for _, f := range d.Fixes {
		fmt.Fprintf(w, "  %s %s (confidence %.2f)\n", p.note("fix:"), f.Title, f.Confidence)
		if !opts.ShowPreview {
			continue
		}
		for _, e := range f.Edits {
			prev, err := buildFixEditPreview(file, e)
			if err != nil {
				continue
			}
			for _, l := range prev.before {
				fmt.Fprintf(w, "    %s\n", p.removed("- "+l))
			}
			for _, l := range prev.after {
				fmt.Fprintf(w, "    %s\n", p.added("+ "+l))
			}
		}
	}
}

// hasLocation: the zero span marks file-level diagnostics (I/O, verify).
func hasLocation(sp source.Span) bool {
	return sp != source.Span{}
}

func location(file *source.File, path string, sp source.Span) string {
	if file == nil || !hasLocation(sp) {
		return path
	}
	pos := file.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

// frame prints the lines of sp with context and a caret underline on the
// first line.
func frame(w io.Writer, p palette, file *source.File, sp source.Span, context int) {
	start, end := file.Resolve(sp)
	first := max(int(start.Line)-context, 1)
	last := min(int(end.Line)+context, file.LineCount())
	if last < int(start.Line) {
		last = int(start.Line)
	}
	width := len(fmt.Sprint(last))

	for ln := first; ln <= last && ln <= file.LineCount(); ln++ {
		text := strings.ReplaceAll(file.GetLine(uint32(ln)), "\t", "    ")
		fmt.Fprintf(w, " %s %s\n", p.gutter(fmt.Sprintf("%*d |", width, ln)), text)
		if ln != int(start.Line) {
			continue
		}
		raw := file.GetLine(uint32(ln))
		col := int(start.Col) - 1
		n := 1
		if end.Line == start.Line && end.Col > start.Col {
			n = int(end.Col - start.Col)
		} else if end.Line != start.Line {
			n = max(len(raw)-col, 1)
		}
		pad := visualWidth(raw[:min(col, len(raw))])
		mark := "^" + strings.Repeat("~", n-1)
		fmt.Fprintf(w, " %s %s%s\n", p.gutter(strings.Repeat(" ", width)+" |"), strings.Repeat(" ", pad), p.caret(mark))
	}
}

func visualWidth(prefix string) int {
	n := 0
	for i := 0; i < len(prefix); i++ {
		if prefix[i] == '\t' {
			n += 4
			continue
		}
		n++
	}
	return n
}
