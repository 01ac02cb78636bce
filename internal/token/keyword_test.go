package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		word  string
		flags Keyword
		ok    bool
	}{
		{"return", KwStatement, true},
		{"if", KwStatement | KwBlock, true},
		{"else", KwBlock, true},
		{"Return", 0, false},
		{"foo", 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupKeyword(tt.word)
		if ok != tt.ok || got != tt.flags {
			t.Errorf("LookupKeyword(%q) = %v,%v want %v,%v", tt.word, got, ok, tt.flags, tt.ok)
		}
	}
}

func TestExprKeyword(t *testing.T) {
	if !ExprKeyword("return") || !ExprKeyword("typeof") {
		t.Fatal("return/typeof must precede expressions")
	}
	if ExprKeyword("x") {
		t.Fatal("identifier must not be an expression keyword")
	}
}
