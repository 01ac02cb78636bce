package rules

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mend/internal/balance"
	"mend/internal/classify"
	"mend/internal/diag"
	"mend/internal/fix"
	"mend/internal/lexer"
	"mend/internal/source"
)

func propose(t *testing.T, src string, opts Options) (*Proposal, *diag.Bag, *Input) {
	t.Helper()
	f := source.Virtual("test.js", []byte(src))
	scan, err := lexer.Scan(f, lexer.Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	lines := classify.Lines(f, scan)
	tr := balance.Track(lines, scan.Tokens, balance.Options{})
	in := NewInput(f, scan, lines, tr, 0)
	bag := diag.NewBag(0)
	return NewEngine(opts).Propose(in, diag.BagReporter{Bag: bag}), bag, in
}

// edit is the comparable part of a candidate.
type edit struct {
	Rule string
	Op   fix.Op
	Line uint32
	Text string
}

func edits(cands []fix.Candidate) []edit {
	out := make([]edit, len(cands))
	for i, c := range cands {
		out[i] = edit{Rule: c.RuleID, Op: c.Op, Line: c.Line, Text: c.Text}
	}
	return out
}

func TestProposeRules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []edit
	}{
		{
			name: "close before statement",
			src:  "foo(bar, {\n  x: 1\n\nreturn x;\n",
			want: []edit{{CloseBeforeStatement, fix.Insert, 4, "});\n"}},
		},
		{
			name: "close open line",
			src:  "foo(\nreturn x;\n",
			want: []edit{{CloseOpenLine, fix.Insert, 1, ");"}},
		},
		{
			name: "close before inline closer",
			src:  "foo({x: 1);\n",
			want: []edit{{CloseBeforeCloser, fix.Insert, 1, "}"}},
		},
		{
			name: "close before closer line",
			src:  "foo(bar, {\n  x: 1\n);\n",
			want: []edit{{CloseBeforeCloser, fix.Insert, 3, "}\n"}},
		},
		{
			name: "close before sibling",
			src:  "if (a) {\n  b();\nc();\n",
			want: []edit{{CloseBeforeSibling, fix.Insert, 3, "}\n"}},
		},
		{
			name: "close at eof",
			src:  "function f() {\n  a();\n",
			want: []edit{{CloseAtEOF, fix.Insert, 3, "}\n"}},
		},
		{
			name: "close at eof without trailing newline",
			src:  "const cfg = {\n  a: 1,",
			want: []edit{{CloseAtEOF, fix.Insert, 2, "\n}\n"}},
		},
		{
			name: "drop redundant closer line",
			src:  "foo(() => {\n  x();\n});\n});\n",
			want: []edit{{DropRedundantCloserLine, fix.Delete, 4, "});\n"}},
		},
		{
			name: "drop excess closer token",
			src:  "function f() {\n  foo(1));\n}\n",
			want: []edit{{DropExcessCloser, fix.Delete, 2, ")"}},
		},
		{
			name: "balanced",
			src:  "foo(bar, { x: 1 });\n\nreturn x;\n",
			want: []edit{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := propose(t, tt.src, Options{})
			if diff := cmp.Diff(tt.want, edits(p.Candidates)); diff != "" {
				t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
			}
			if len(p.Rejected) != 0 {
				t.Fatalf("unexpected rejected candidates %v", edits(p.Rejected))
			}
		})
	}
}

func TestAgreementRaisesConfidence(t *testing.T) {
	p, _, _ := propose(t, "foo(() => {\n  x();\n});\n});\n", Options{})
	if len(p.Candidates) != 1 {
		t.Fatalf("expected one merged candidate, got %d", len(p.Candidates))
	}
	want := 1 - (1-0.95)*(1-0.7)
	if got := p.Candidates[0].Confidence; math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}
}

func TestLowConfidenceIsRejected(t *testing.T) {
	p, bag, _ := propose(t, "if (a) {\n  b();\nc();\n", Options{MinConfidence: 0.9})
	if len(p.Candidates) != 0 || len(p.Rejected) != 1 {
		t.Fatalf("expected one rejected candidate, got %d/%d", len(p.Candidates), len(p.Rejected))
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.RepLowConfidence || len(items[0].Fixes) != 1 {
		t.Fatalf("expected a low confidence diagnostic with a fix, got %+v", items)
	}
}

func TestSkippedWindows(t *testing.T) {
	t.Run("ambiguous", func(t *testing.T) {
		p, bag, _ := propose(t, "foo(\n  a,\nx {\n}\n", Options{})
		if len(p.Candidates) != 0 || len(p.Skipped) != 1 {
			t.Fatalf("expected a skipped window, got %+v", p)
		}
		if bag.Len() != 1 || bag.Items()[0].Code != diag.ClsAmbiguousRole {
			t.Fatalf("expected ClsAmbiguousRole, got %+v", bag.Items())
		}
	})
	t.Run("unresolved", func(t *testing.T) {
		src := "function f() {\n" + strings.Repeat("  a();\n", 40)
		p, bag, _ := propose(t, src, Options{})
		if len(p.Candidates) != 0 || len(p.Skipped) != 1 {
			t.Fatalf("expected a skipped window, got %+v", p)
		}
		if bag.Len() != 1 || bag.Items()[0].Code != diag.RepUnresolvedWindow {
			t.Fatalf("expected RepUnresolvedWindow, got %+v", bag.Items())
		}
		if len(bag.Items()[0].Notes) == 0 {
			t.Fatal("expected notes on unresolved window")
		}
	})
}

func TestDistanceFactor(t *testing.T) {
	in := &Input{lookback: 30}
	tests := []struct {
		dist int
		want float64
	}{
		{0, 1},
		{1, 1},
		{31, 0.5},
		{100, 0.5},
	}
	for _, tt := range tests {
		if got := in.distanceFactor(tt.dist); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("distanceFactor(%d) = %v, want %v", tt.dist, got, tt.want)
		}
	}
}

func TestBoundaryFactor(t *testing.T) {
	in := &Input{lookback: 30, Lines: []classify.Line{{Support: 0}, {Support: 2}, {Support: 3}, {Support: 5}}}
	tests := []struct {
		boundary int
		want     float64
	}{
		{0, 1},
		{1, 0.8},
		{2, 0.8 + 0.2*2.0/3},
		{3, 1},
		{4, 1},
	}
	for _, tt := range tests {
		w := &balance.Window{Boundary: tt.boundary, Distance: 1}
		if got := in.boundaryFactor(w); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("boundaryFactor(line %d) = %v, want %v", tt.boundary, got, tt.want)
		}
		if got := in.score(0.9, w); math.Abs(got-0.9*tt.want) > 1e-9 {
			t.Errorf("score(0.9, line %d) = %v, want %v", tt.boundary, got, 0.9*tt.want)
		}
	}
}

func TestWeakBoundaryLowersConfidence(t *testing.T) {
	// "c();" gets no classifier vote, "});" is a closer-only line.
	weak, _, in := propose(t, "if (a) {\n  b();\nc();\n", Options{})
	if len(weak.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(weak.Candidates))
	}
	w := &in.Track.Windows[0]
	want := 0.7 * 0.8 * in.distanceFactor(w.Distance)
	if got := weak.Candidates[0].Confidence; math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}

	strong, _, in := propose(t, "foo(bar, {\n  x: 1\n);\n", Options{})
	w = &in.Track.Windows[0]
	want = 0.9 * in.distanceFactor(w.Distance)
	if got := strong.Candidates[0].Confidence; math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}
}

func TestRuleIDsOrdered(t *testing.T) {
	rules := DefaultRules()
	for i := 1; i < len(rules); i++ {
		if rules[i-1].ID() >= rules[i].ID() {
			t.Fatalf("rule ids out of order: %s >= %s", rules[i-1].ID(), rules[i].ID())
		}
	}
}
