package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"mend/internal/classify"
	"mend/internal/lexer"
	"mend/internal/source"
)

// TokenOutput is one delimiter token of a scan dump.
type TokenOutput struct {
	Kind string      `json:"kind"`
	Span source.Span `json:"span"`
	Line uint32      `json:"line"`
	Col  uint32      `json:"col"`
}

// SegmentOutput is one classified byte range.
type SegmentOutput struct {
	Class string      `json:"class"`
	Span  source.Span `json:"span"`
}

// LineOutput describes the classification of a source line.
type LineOutput struct {
	Number       int    `json:"number"`
	Role         string `json:"role"`
	Indent       int    `json:"indent"`
	Delta        string `json:"delta"`
	Tokens       int    `json:"tokens"`
	Continuation bool   `json:"continuation,omitempty"`
}

// ScanOutput is the JSON dump of one scanned file.
type ScanOutput struct {
	File     string          `json:"file"`
	Tokens   []TokenOutput   `json:"tokens"`
	Segments []SegmentOutput `json:"segments"`
	Lines    []LineOutput    `json:"lines"`
}

// BuildScanOutput собирает дамп сканирования без сериализации.
func BuildScanOutput(path string, res *lexer.Result, lines []classify.Line) ScanOutput {
	out := ScanOutput{
		File:     path,
		Tokens:   make([]TokenOutput, 0, len(res.Tokens)),
		Segments: make([]SegmentOutput, 0, len(res.Segments)),
		Lines:    make([]LineOutput, 0, len(lines)),
	}
	for _, tok := range res.Tokens {
		out.Tokens = append(out.Tokens, TokenOutput{
			Kind: tok.Kind.String(),
			Span: tok.Span,
			Line: tok.Line,
			Col:  tok.Col,
		})
	}
	for _, seg := range res.Segments {
		out.Segments = append(out.Segments, SegmentOutput{Class: seg.Class.String(), Span: seg.Span})
	}
	for i := range lines {
		ln := &lines[i]
		out.Lines = append(out.Lines, LineOutput{
			Number:       ln.Number,
			Role:         ln.Role.String(),
			Indent:       ln.Indent,
			Delta:        ln.Delta.String(),
			Tokens:       ln.NumTok,
			Continuation: ln.Continuation,
		})
	}
	return out
}

// FormatScanJSON выводит дамп сканирования в JSON формате
func FormatScanJSON(w io.Writer, path string, res *lexer.Result, lines []classify.Line) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildScanOutput(path, res, lines))
}

// FormatScanPretty выводит классифицированные строки в человекочитаемом формате.
// Each line is followed by its delimiter tokens.
func FormatScanPretty(w io.Writer, path string, res *lexer.Result, lines []classify.Line, color bool) error {
	p := newPalette(color)
	if _, err := fmt.Fprintf(w, "%s: %d tokens, %d segments, %d lines\n",
		p.bold(path), len(res.Tokens), len(res.Segments), len(lines)); err != nil {
		return err
	}
	for i := range lines {
		ln := &lines[i]
		marker := " "
		if ln.Continuation {
			marker = "~"
		}
		if _, err := fmt.Fprintf(w, "%4d%s %-18s indent=%-3d %-14s %s\n",
			ln.Number, marker, ln.Role.String(), ln.Indent, ln.Delta.String(), p.gutter(ln.Text)); err != nil {
			return err
		}
		for k := ln.FirstTok; k < ln.FirstTok+ln.NumTok && k < len(res.Tokens); k++ {
			tok := res.Tokens[k]
			if _, err := fmt.Fprintf(w, "        %3d: %-8s at %d:%d\n", k, tok.Kind.String(), tok.Line, tok.Col); err != nil {
				return err
			}
		}
	}
	return nil
}
