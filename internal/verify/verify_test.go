package verify

import (
	"context"
	"errors"
	"testing"
)

func TestLangForPath(t *testing.T) {
	tests := []struct {
		path string
		want Lang
	}{
		{"a.js", LangJavaScript},
		{"a.jsx", LangJavaScript},
		{"a.mjs", LangJavaScript},
		{"src/app.ts", LangTypeScript},
		{"src/App.TSX", LangTSX},
		{"README", LangJavaScript},
	}
	for _, tt := range tests {
		if got := LangForPath(tt.path); got != tt.want {
			t.Errorf("LangForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		src    string
		reject bool
	}{
		{"js call", "a.js", "foo(bar, { x: 1 });\n", false},
		{"js missing close", "a.js", "foo(bar, {\n  x: 1\n\nreturn x;\n", true},
		{"ts typed", "a.ts", "const n: number = f(1);\n", false},
		{"tsx element", "a.tsx", "const el = <div>{items.map(i => <b>{i}</b>)}</div>;\n", false},
		{"ts excess", "a.ts", "f(() => {\n  g();\n});\n});\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(context.Background(), tt.path, []byte(tt.src))
			if !tt.reject {
				if err != nil {
					t.Fatalf("unexpected rejection: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("want ErrRejected, got %v", err)
			}
			var se *SyntaxError
			if !errors.As(err, &se) || se.Line == 0 {
				t.Fatalf("want located SyntaxError, got %#v", err)
			}
		})
	}
}
