package source

import (
	"path/filepath"
	"testing"
)

func TestRelativePath(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "elsewhere", "app.js")

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"nested", filepath.Join(base, "src", "routes", "index.js"), "src/routes/index.js"},
		{"base itself", base, "."},
		// файлы вне base выводятся абсолютным путём
		{"outside", outside, normalizePath(outside)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RelativePath(tt.target, base)
			if err != nil {
				t.Fatalf("RelativePath: %v", err)
			}
			if got != tt.want {
				t.Errorf("RelativePath(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestToLineCol(t *testing.T) {
	idx := buildLineIndex([]byte("ab\n\ncd\n"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}},
		{3, LineCol{Line: 2, Col: 1}},
		{5, LineCol{Line: 3, Col: 2}},
		{7, LineCol{Line: 4, Col: 1}},
	}
	for _, tt := range tests {
		if got := toLineCol(idx, tt.off); got != tt.want {
			t.Errorf("toLineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
	if got := toLineCol(nil, 4); got != (LineCol{Line: 1, Col: 5}) {
		t.Errorf("single line: got %+v", got)
	}
}

func TestRestoreEncoding(t *testing.T) {
	raw := []byte("\xEF\xBB\xBFfoo(\r\n  bar);\r\n")
	body, hadBOM := removeBOM(raw)
	body, crlf := normalizeCRLF(body)
	if !hadBOM || !crlf {
		t.Fatalf("flags: bom=%v crlf=%v", hadBOM, crlf)
	}
	if string(body) != "foo(\n  bar);\n" {
		t.Fatalf("normalized = %q", body)
	}
	got := restoreEncoding(body, FileHadBOM|FileNormalizedCRLF)
	if string(got) != string(raw) {
		t.Errorf("restoreEncoding = %q, want %q", got, raw)
	}
	if got := restoreEncoding(body, 0); string(got) != string(body) {
		t.Errorf("no flags changed content: %q", got)
	}
}
