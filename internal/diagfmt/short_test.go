package diagfmt

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mend/internal/diag"
	"mend/internal/driver"
	"mend/internal/source"
)

func TestShort(t *testing.T) {
	file := source.Virtual("/workspace/src/sample.js", []byte("a\nb\n"))
	rep := &driver.Report{
		File:   file.Path,
		Source: file,
		Diagnostics: []diag.Diagnostic{
			diag.New(diag.SevWarning, diag.RepUnresolvedWindow, source.Span{Start: 2, End: 3}, "another"),
			diag.NewError(diag.LexUnterminatedString, source.Span{Start: 0, End: 1}, "first line\nsecond").
				WithNote(source.Span{Start: 2, End: 3}, "note line"),
			diag.New(diag.SevInfo, diag.RepEditApplied, source.Span{Start: 0, End: 1}, "hidden"),
			diag.NewError(diag.VerifyRejected, source.Span{}, "rejected"),
		},
	}

	var buf bytes.Buffer
	Short(&buf, []*driver.Report{rep, nil}, PrettyOpts{
		PathMode:    PathModeRelative,
		BaseDir:     "/workspace",
		MinSeverity: diag.SevWarning,
		ShowNotes:   true,
	})
	want := "src/sample.js: error VER6001: rejected\n" +
		"src/sample.js:1:1: error LEX1001: first line second\n" +
		"src/sample.js:2:1: warning REP3005: another\n" +
		"src/sample.js:2:1: note LEX1001: note line\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("short output (-want +got):\n%s", diff)
	}
}
