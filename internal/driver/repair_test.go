package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"mend/internal/balance"
	"mend/internal/diag"
	"mend/internal/fix"
	"mend/internal/lexer"
	"mend/internal/rules"
	"mend/internal/source"
	"mend/internal/testkit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func repairString(t *testing.T, src string, opts Options) *Report {
	t.Helper()
	return RepairSource(context.Background(), source.Virtual("test.js", []byte(src)), opts)
}

func hasCode(diags []diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

type logEdit struct {
	Pass int
	Rule string
	Op   fix.Op
	Text string
}

func logEdits(log []fix.LogEntry) []logEdit {
	out := make([]logEdit, len(log))
	for i, e := range log {
		out[i] = logEdit{Pass: e.Pass, Rule: e.RuleID, Op: e.Op, Text: e.Text}
	}
	return out
}

func TestRepairSourceScenarios(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		passes int
		edits  []logEdit
	}{
		{
			name:   "missing closers before statement",
			src:    "foo(bar, {\n  x: 1\n\nreturn x;\n",
			want:   "foo(bar, {\n  x: 1\n\n});\nreturn x;\n",
			passes: 1,
			edits:  []logEdit{{1, rules.CloseBeforeStatement, fix.Insert, "});\n"}},
		},
		{
			name:   "balanced input",
			src:    "foo(bar, { x: 1 });\n\nreturn x;\n",
			want:   "foo(bar, { x: 1 });\n\nreturn x;\n",
			passes: 0,
			edits:  []logEdit{},
		},
		{
			name:   "redundant closer line",
			src:    "foo(() => {\n  x();\n});\n});\n",
			want:   "foo(() => {\n  x();\n});\n",
			passes: 1,
			edits:  []logEdit{{1, rules.DropRedundantCloserLine, fix.Delete, "});\n"}},
		},
		{
			name:   "unclosed block before sibling",
			src:    "if (a) {\n  b();\nc();\n",
			want:   "if (a) {\n  b();\n}\nc();\n",
			passes: 1,
			edits:  []logEdit{{1, rules.CloseBeforeSibling, fix.Insert, "}\n"}},
		},
		{
			name:   "excess closer token",
			src:    "function f() {\n  foo(1));\n}\n",
			want:   "function f() {\n  foo(1);\n}\n",
			passes: 1,
			edits:  []logEdit{{1, rules.DropExcessCloser, fix.Delete, ")"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := repairString(t, tt.src, DefaultOptions())
			if rep.FinalState != StateFixed || rep.Fatal {
				t.Fatalf("state = %s fatal=%v diags=%v", rep.FinalState, rep.Fatal, rep.Diagnostics)
			}
			if got := string(rep.Output); got != tt.want {
				t.Fatalf("output mismatch:\n got %q\nwant %q", got, tt.want)
			}
			if rep.PassesUsed != tt.passes {
				t.Fatalf("passes = %d, want %d", rep.PassesUsed, tt.passes)
			}
			if diff := cmp.Diff(tt.edits, logEdits(rep.EditLog)); diff != "" {
				t.Fatalf("edit log mismatch (-want +got):\n%s", diff)
			}
			if err := testkit.CheckBalanced("test.js", rep.Output); err != nil {
				t.Fatalf("output not balanced: %v", err)
			}
			if err := testkit.CheckLiteralInvariance("test.js", []byte(tt.src), rep.Output); err != nil {
				t.Fatal(err)
			}
			if err := testkit.CheckMinimalEdit(rep.EditLog); err != nil {
				t.Fatal(err)
			}

			again := repairString(t, string(rep.Output), DefaultOptions())
			if again.Changed() || again.FinalState != StateFixed {
				t.Fatalf("second run not idempotent: state=%s log=%v", again.FinalState, again.EditLog)
			}
		})
	}
}

func TestRepairSourceLeavesValidJSX(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
	}{
		{"closing tags", "list.jsx", "const a = <div>{items.map(i => (<p key={i}>x</p>))}</div>;\n"},
		{"self closing", "icon.tsx", "export const Icon = () => (\n  <span>\n    <img src={url} alt=\"\" />\n  </span>\n);\n"},
		{"apostrophes in text", "page.js", "export default function Page() {\n  return (\n    <div>\n      <h1>Today's Production</h1>\n      <p>If you don't see it (yet), refresh.</p>\n    </div>\n  );\n}\n"},
		{"fragment with handlers", "form.tsx", "function Form({ onSave }: Props) {\n  return (\n    <>\n      <button onClick={() => onSave({ id: 1 })}>Save</button>\n    </>\n  );\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := RepairSource(context.Background(), source.Virtual(tt.file, []byte(tt.src)), DefaultOptions())
			if rep.FinalState != StateFixed || rep.Fatal {
				t.Fatalf("state = %s fatal=%v diags=%v", rep.FinalState, rep.Fatal, rep.Diagnostics)
			}
			if len(rep.EditLog) != 0 || rep.PassesUsed != 0 {
				t.Fatalf("valid JSX was edited: passes=%d log=%v", rep.PassesUsed, logEdits(rep.EditLog))
			}
			if string(rep.Output) != tt.src {
				t.Fatalf("output changed:\n got %q\nwant %q", rep.Output, tt.src)
			}
			if err := testkit.CheckBalanced(tt.file, rep.Output); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestRepairSourceJSXValue(t *testing.T) {
	src := "foo(bar, {\n  x: <b>Don't</b>\n\nreturn x;\n"
	rep := repairString(t, src, DefaultOptions())
	if rep.FinalState != StateFixed {
		t.Fatalf("state = %s diags=%v", rep.FinalState, rep.Diagnostics)
	}
	if got, want := string(rep.Output), "foo(bar, {\n  x: <b>Don't</b>\n\n});\nreturn x;\n"; got != want {
		t.Fatalf("output mismatch:\n got %q\nwant %q", got, want)
	}
	if err := testkit.CheckLiteralInvariance("test.js", []byte(src), rep.Output); err != nil {
		t.Fatal(err)
	}
	if err := testkit.CheckMinimalEdit(rep.EditLog); err != nil {
		t.Fatal(err)
	}
}

func TestRepairSourceUnterminatedLiteral(t *testing.T) {
	src := "const s = \"abc;\nfoo(;\n"
	rep := repairString(t, src, DefaultOptions())
	if !rep.Fatal {
		t.Fatal("want fatal report")
	}
	if !errors.Is(rep.Err, lexer.ErrUnterminated) {
		t.Fatalf("err = %v, want ErrUnterminated", rep.Err)
	}
	if !hasCode(rep.Diagnostics, diag.LexUnterminatedString) {
		t.Fatalf("missing %s in %v", diag.LexUnterminatedString.ID(), rep.Diagnostics)
	}
	if string(rep.Output) != src || rep.Changed() {
		t.Fatal("fatal file must be left untouched")
	}
	if got := ExitCode([]*Report{rep}); got != 2 {
		t.Fatalf("exit code = %d, want 2", got)
	}
}

// silentRule never proposes anything.
type silentRule struct{}

func (silentRule) ID() string { return "T0-silent" }
func (silentRule) Propose(*rules.Input, *balance.Window) []fix.Candidate {
	return nil
}

// padRule keeps editing without ever fixing the imbalance.
type padRule struct{}

func (padRule) ID() string { return "T1-pad" }
func (padRule) Propose(in *rules.Input, w *balance.Window) []fix.Candidate {
	return []fix.Candidate{fix.InsertText(in.File, 0, " ",
		fix.WithRule("T1-pad"), fix.WithConfidence(1), fix.WithWindow(w.ID))}
}

func TestRepairSourceNoProgress(t *testing.T) {
	opts := DefaultOptions()
	opts.Rules = []rules.Rule{silentRule{}}
	src := "foo(bar, {\n  x: 1\n\nreturn x;\n"
	rep := repairString(t, src, opts)
	if rep.FinalState != StateUnresolved || rep.Fatal {
		t.Fatalf("state = %s fatal=%v", rep.FinalState, rep.Fatal)
	}
	if !hasCode(rep.Diagnostics, diag.RepNoProgress) {
		t.Fatalf("missing no-progress diagnostic: %v", rep.Diagnostics)
	}
	if len(rep.UnresolvedWindows) == 0 {
		t.Fatal("unresolved windows not reported")
	}
	if string(rep.Output) != src {
		t.Fatal("unresolved file content changed")
	}
	if got := ExitCode([]*Report{rep}); got != 1 {
		t.Fatalf("exit code = %d, want 1", got)
	}
}

func TestRepairSourceMaxPasses(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPasses = 3
	opts.Rules = []rules.Rule{padRule{}}
	rep := repairString(t, "foo(\n", opts)
	if rep.FinalState != StateUnresolved {
		t.Fatalf("state = %s", rep.FinalState)
	}
	if rep.PassesUsed != 3 || len(rep.EditLog) != 3 {
		t.Fatalf("passes=%d edits=%d, want 3/3", rep.PassesUsed, len(rep.EditLog))
	}
	if !hasCode(rep.Diagnostics, diag.RepMaxPassesExceeded) {
		t.Fatalf("missing max-passes diagnostic: %v", rep.Diagnostics)
	}
	for i, e := range rep.EditLog {
		if e.Pass != i+1 {
			t.Fatalf("edit %d logged in pass %d", i, e.Pass)
		}
	}
}

func TestRepairSourceOracleRejects(t *testing.T) {
	opts := DefaultOptions()
	opts.Verify = true
	var calls int
	opts.Oracle = func(_ context.Context, path string, content []byte) error {
		calls++
		return errors.New("unexpected token")
	}

	rep := repairString(t, "foo(bar, {\n  x: 1\n\nreturn x;\n", opts)
	if rep.FinalState != StateUnresolved {
		t.Fatalf("state = %s, want unresolved", rep.FinalState)
	}
	if !hasCode(rep.Diagnostics, diag.VerifyRejected) {
		t.Fatalf("missing verify diagnostic: %v", rep.Diagnostics)
	}

	clean := repairString(t, "foo();\n", opts)
	if clean.FinalState != StateFixed {
		t.Fatalf("balanced input state = %s", clean.FinalState)
	}
	if calls != 1 {
		t.Fatalf("oracle called %d times, want 1 (only for edited text)", calls)
	}
}

func TestRepairSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := RepairSource(ctx, source.Virtual("a.js", []byte("foo(\n")), DefaultOptions())
	if rep.FinalState != StateUnresolved || !errors.Is(rep.Err, context.Canceled) {
		t.Fatalf("state=%s err=%v", rep.FinalState, rep.Err)
	}
	if rep.Changed() {
		t.Fatal("cancelled run produced edits")
	}
}

func TestFingerprintTracksOptions(t *testing.T) {
	a := DefaultOptions()
	b := DefaultOptions()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("equal options differ")
	}
	b.LookbackLines = 10
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("lookback not part of fingerprint")
	}
}
