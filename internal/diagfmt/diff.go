package diagfmt

import (
	"io"

	"github.com/pmezard/go-difflib/difflib"

	"mend/internal/driver"
)

// Diff writes a unified diff between the original and repaired text of
// every changed report.
func Diff(w io.Writer, reports []*driver.Report, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, r := range reports {
		if r == nil || r.Source == nil || !r.Changed() {
			continue
		}
		path := formatPath(r.File, opts.PathMode, opts.BaseDir)
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(r.Source.Content)),
			B:        difflib.SplitLines(string(r.Output)),
			FromFile: "a/" + path,
			ToFile:   "b/" + path,
			Context:  3,
		})
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, colorizeDiff(p, text)); err != nil {
			return err
		}
	}
	return nil
}

func colorizeDiff(p palette, text string) string {
	out := make([]byte, 0, len(text))
	start := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' {
			continue
		}
		line := text[start:i]
		switch {
		case len(line) >= 3 && (line[:3] == "+++" || line[:3] == "---"):
			line = p.bold(line)
		case len(line) > 0 && line[0] == '+':
			line = p.added(line)
		case len(line) > 0 && line[0] == '-':
			line = p.removed(line)
		case len(line) > 1 && line[:2] == "@@":
			line = p.note(line)
		}
		out = append(out, line...)
		if i < len(text) {
			out = append(out, '\n')
		}
		start = i + 1
	}
	return string(out)
}
