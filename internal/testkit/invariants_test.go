package testkit

import (
	"testing"

	"mend/internal/fix"
	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

func TestCheckSegments(t *testing.T) {
	sf := source.Virtual("a.js", []byte("f('(', /* { */ x);\n"))
	res, err := lexer.Scan(sf, lexer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckSegments(res, sf); err != nil {
		t.Fatal(err)
	}
}

func TestCheckBalanced(t *testing.T) {
	if err := CheckBalanced("a.js", []byte("foo(bar, { x: 1 });\n")); err != nil {
		t.Fatalf("balanced input rejected: %v", err)
	}
	if err := CheckBalanced("a.js", []byte("foo(bar, {\n  x: 1\n")); err == nil {
		t.Fatal("unbalanced input accepted")
	}
}

func TestCheckLiteralInvariance(t *testing.T) {
	before := []byte("f('a', {\n// c\n")
	if err := CheckLiteralInvariance("a.js", before, []byte("f('a', {\n});\n// c\n")); err != nil {
		t.Fatal(err)
	}
	if err := CheckLiteralInvariance("a.js", before, []byte("f('b', {\n// c\n")); err == nil {
		t.Fatal("changed literal not detected")
	}
}

func TestCheckLiteralInvarianceJSXText(t *testing.T) {
	before := []byte("x = <p>Don't</p>;\n")
	if err := CheckLiteralInvariance("a.jsx", before, []byte("x = <p>Don't</p>;\n\n")); err != nil {
		t.Fatal(err)
	}
	if err := CheckLiteralInvariance("a.jsx", before, []byte("x = <p>Don't)</p>;\n")); err == nil {
		t.Fatal("changed JSX text not detected")
	}
}

func TestCheckMinimalEdit(t *testing.T) {
	var missing, excess token.Delta
	missing.Add(token.OpenParen)
	missing.Add(token.OpenBrace)
	excess.Add(token.CloseParen)
	excess.Add(token.CloseParen)

	tests := []struct {
		name string
		log  []fix.LogEntry
		ok   bool
	}{
		{"closers for a window", []fix.LogEntry{
			{Pass: 1, RuleID: "R1", Op: fix.Insert, Text: "  });\n", Window: 1, Tokens: []token.Kind{token.CloseBrace, token.CloseParen}, Net: missing},
		}, true},
		{"excess removed token by token", []fix.LogEntry{
			{Pass: 1, RuleID: "R7", Op: fix.Delete, Text: ")", Window: 2, Tokens: []token.Kind{token.CloseParen}, Net: excess},
			{Pass: 1, RuleID: "R7", Op: fix.Delete, Text: ")", Window: 2, Tokens: []token.Kind{token.CloseParen}, Net: excess},
		}, true},
		{"non-structural text", []fix.LogEntry{
			{RuleID: "R1", Op: fix.Insert, Text: "x);"},
		}, false},
		{"text disagrees with tokens", []fix.LogEntry{
			{Pass: 1, RuleID: "R1", Op: fix.Insert, Text: "});", Window: 1, Tokens: []token.Kind{token.CloseParen}, Net: missing},
		}, false},
		{"too few tokens", []fix.LogEntry{
			{Pass: 1, RuleID: "R7", Op: fix.Delete, Text: ")", Window: 2, Tokens: []token.Kind{token.CloseParen}, Net: excess},
		}, false},
		{"wrong family", []fix.LogEntry{
			{Pass: 1, RuleID: "R1", Op: fix.Insert, Text: "])", Window: 1, Tokens: []token.Kind{token.CloseBracket, token.CloseParen}, Net: missing},
		}, false},
		{"insert and delete in one window", []fix.LogEntry{
			{Pass: 1, RuleID: "R3", Op: fix.Insert, Text: ")", Window: 3, Tokens: []token.Kind{token.CloseParen}, Net: missing},
			{Pass: 1, RuleID: "R3", Op: fix.Delete, Text: "}", Window: 3, Tokens: []token.Kind{token.CloseBrace}, Net: missing},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMinimalEdit(tt.log)
			if tt.ok && err != nil {
				t.Fatal(err)
			}
			if !tt.ok && err == nil {
				t.Fatal("edit log accepted")
			}
		})
	}
}
