package source

import (
	"os"
	"path/filepath"
	"testing"
)

// TestNewFileLineIdx проверяет правильность построения LineIdx
func TestNewFileLineIdx(t *testing.T) {
	file := Virtual("a.js", []byte("a\nb\n"))

	expected := []uint32{1, 3} // позиции символов \n
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
	if file.LineCount() != 2 {
		t.Errorf("Expected 2 lines, got %d", file.LineCount())
	}
}

func TestLineSpanAndGetLine(t *testing.T) {
	file := Virtual("a.js", []byte("foo(\n  x\n)"))

	tests := []struct {
		line int
		want string
	}{
		{1, "foo("},
		{2, "  x"},
		{3, ")"},
		{4, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := file.GetLine(uint32(tt.line)); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
	if file.LineCount() != 3 {
		t.Errorf("Expected 3 lines, got %d", file.LineCount())
	}
}

func TestPosition(t *testing.T) {
	file := Virtual("a.js", []byte("ab\ncd\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}}, // сам \n принадлежит первой строке
		{3, LineCol{Line: 2, Col: 1}},
		{5, LineCol{Line: 2, Col: 3}},
		{6, LineCol{Line: 3, Col: 1}},
	}
	for _, tt := range tests {
		if got := file.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

// TestCRLFNormalization проверяет нормализацию CRLF
func TestCRLFNormalization(t *testing.T) {
	normalized, changed := normalizeCRLF([]byte("a\r\nb\r\n"))
	if !changed {
		t.Error("Expected CRLF normalization to be detected")
	}
	if string(normalized) != "a\nb\n" {
		t.Errorf("Expected normalized content %q, got %q", "a\nb\n", string(normalized))
	}

	// смешанные окончания строк не трогаем
	mixed := []byte("a\r\nb\nc\r\n")
	out, changed := normalizeCRLF(mixed)
	if changed {
		t.Error("Expected mixed line endings to be left alone")
	}
	if string(out) != string(mixed) {
		t.Errorf("Expected %q, got %q", mixed, out)
	}
}

func TestLoadRoundTripsEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	raw := "\xEF\xBB\xBFfoo(\r\n  x\r\n)\r\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(file.Content) != "foo(\n  x\n)\n" {
		t.Errorf("unexpected normalized content %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("expected BOM and CRLF flags, got %b", file.Flags)
	}
	if got := string(file.Encoded()); got != raw {
		t.Errorf("Encoded() = %q, want %q", got, raw)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBufferNextKeepsOriginal(t *testing.T) {
	orig := Virtual("a.js", []byte("foo("))
	buf := NewBuffer(orig)
	if buf.Changed() {
		t.Fatal("fresh buffer must not be changed")
	}

	next := buf.Next([]byte("foo()"))
	if next.Pass != 1 {
		t.Errorf("expected pass 1, got %d", next.Pass)
	}
	if next.Original != orig {
		t.Error("Next must keep the original file")
	}
	if string(orig.Content) != "foo(" {
		t.Errorf("original mutated: %q", orig.Content)
	}
	if !next.Changed() {
		t.Error("expected next buffer to be changed")
	}
}
