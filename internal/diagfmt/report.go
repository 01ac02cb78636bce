package diagfmt

import (
	"fmt"
	"io"

	"mend/internal/diag"
	"mend/internal/driver"
)

func stateLabel(p palette, r *driver.Report) string {
	switch {
	case r.Fatal:
		return p.err("failed")
	case r.FinalState == driver.StateFixed && r.Committed:
		return p.added("repaired")
	case r.FinalState == driver.StateFixed && r.Changed():
		return p.added("repairable")
	case r.FinalState == driver.StateFixed:
		return p.bold("ok")
	}
	return p.warn("unresolved")
}

// Reports prints one block per file: its outcome, the edit log when asked
// for, the unresolved windows and the diagnostics.
func Reports(w io.Writer, reports []*driver.Report, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, r := range reports {
		if r == nil {
			continue
		}
		path := formatPath(r.File, opts.PathMode, opts.BaseDir)
		quiet := r.FinalState == driver.StateFixed && !r.Changed() && !r.Fatal
		if quiet && opts.MinSeverity > diag.SevInfo {
			continue
		}

		detail := fmt.Sprintf("%d edits, %d passes", len(r.EditLog), r.PassesUsed)
		if r.Cached {
			detail = "cached"
		}
		fmt.Fprintf(w, "%s: %s (%s)\n", p.path(path), stateLabel(p, r), detail)

		if opts.ShowEdits {
			for _, e := range r.EditLog {
				fmt.Fprintf(w, "  pass %d %s %s %q at %d:%d (%.2f)\n", e.Pass, e.RuleID, e.Op, e.Text, e.Line, e.Col, e.Confidence)
			}
		}
		for _, win := range r.UnresolvedWindows {
			fmt.Fprintf(w, "  %s %s\n", p.warn("window"), win.String())
		}
		Pretty(w, r.Diagnostics, r.Source, opts)
		if r.DroppedDiagnostics > 0 {
			fmt.Fprintf(w, "  %s\n", p.warn(fmt.Sprintf("%d more diagnostics not shown (--max-diagnostics)", r.DroppedDiagnostics)))
		}
	}
}

// Summary prints the totals line.
func Summary(w io.Writer, s driver.Summary, color bool) {
	p := newPalette(color)
	fmt.Fprintf(w, "%s %d files: %s, %s, %s, %d edits\n",
		p.bold("mend:"), s.Files,
		p.added(fmt.Sprintf("%d fixed", s.Fixed)),
		p.warn(fmt.Sprintf("%d unresolved", s.Unresolved)),
		p.err(fmt.Sprintf("%d failed", s.Fatal)),
		s.Edits)
}
