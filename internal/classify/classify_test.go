package classify

import (
	"testing"

	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

func build(t *testing.T, src string) []Line {
	t.Helper()
	f := source.Virtual("test.js", []byte(src))
	res, err := lexer.Scan(f, lexer.Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return Lines(f, res)
}

func TestClassifyRoles(t *testing.T) {
	tests := []struct {
		line string
		want Role
	}{
		{"foo(bar, {", ObjectLiteralOpen},
		{"  x: 1", Other},
		{"", Other},
		{"return x;", StatementStart},
		{"});", ClosingCandidate},
		{"  ]", ClosingCandidate},
		{"}, {", ObjectLiteralOpen},
		{"const y = compute(", CallOpen},
		{"if (ready) {", BlockOpen},
		{"} else {", BlockOpen},
		{"items.forEach((item) => {", BlockOpen},
		{"const cfg = {", ObjectLiteralOpen},
		{"return {", ObjectLiteralOpen},
		{"const list = [", ObjectLiteralOpen},
		{"function main() {", BlockOpen},
		{"x {", Ambiguous},
		{"{", Ambiguous},
		{"  // return (", Other},
		{`log("return {")`, Other},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			lines := build(t, tt.line+"\n")
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if got := lines[0].Role; got != tt.want {
				t.Fatalf("role = %v, want %v (code view %q)", got, tt.want, lines[0].Code)
			}
		})
	}
}

func TestLinesRecords(t *testing.T) {
	src := "foo(bar, {\n  x: '(' // {\n\treturn x;"
	lines := build(t, src)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	first := lines[0]
	if first.Delta != (token.Delta{1, 1, 0}) || first.NumTok != 2 || first.FirstTok != 0 {
		t.Fatalf("unexpected first line %+v", first)
	}
	if first.CodeEnd() != 10 {
		t.Fatalf("CodeEnd = %d, want 10", first.CodeEnd())
	}

	second := lines[1]
	if second.Code != `  x: """     ` {
		t.Fatalf("code view = %q", second.Code)
	}
	if second.NumTok != 0 || !second.Delta.Zero() || second.Indent != 2 {
		t.Fatalf("unexpected second line %+v", second)
	}
	if second.CodeEnd() != second.Span.Start+len32(`  x: """`) {
		t.Fatalf("CodeEnd = %d", second.CodeEnd())
	}

	third := lines[2]
	if third.Indent != TabWidth || third.IndentText() != "\t" || !third.EndsStatement() {
		t.Fatalf("unexpected third line %+v", third)
	}
}

func TestContinuationLines(t *testing.T) {
	lines := build(t, "const s = `a\n}) b`;\n/* x\n}) */\n")
	if lines[1].Continuation != true || lines[1].Role != Other || lines[1].Boundary() {
		t.Fatalf("template continuation misclassified: %+v", lines[1])
	}
	if !lines[3].Continuation || lines[3].Boundary() {
		t.Fatalf("comment continuation misclassified: %+v", lines[3])
	}
	if lines[0].Continuation || !lines[0].Boundary() {
		t.Fatalf("first line must be a boundary candidate")
	}
}

func TestElectTie(t *testing.T) {
	var v votes
	v[BlockOpen], v[CallOpen] = 2, 2
	if r, s := elect(v); r != Ambiguous || s != 2 {
		t.Fatalf("elect = %v,%d", r, s)
	}
	v[CallOpen] = 3
	if r, _ := elect(v); r != CallOpen {
		t.Fatalf("elect = %v", r)
	}
	if r, s := elect(votes{}); r != Other || s != 0 {
		t.Fatalf("empty elect = %v,%d", r, s)
	}
}

func len32(s string) uint32 { return uint32(len(s)) }
