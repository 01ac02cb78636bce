// Package testkit holds invariant checkers shared by pipeline tests.
package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"mend/internal/balance"
	"mend/internal/classify"
	"mend/internal/fix"
	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

// CheckSegments verifies that scan segments tile the whole file:
// 1) the first segment starts at 0 and the last ends at len(content)
// 2) segments are non-empty and contiguous
// 3) every token lies inside a Code segment
func CheckSegments(res *lexer.Result, sf *source.File) error {
	if res == nil || sf == nil {
		return fmt.Errorf("nil scan result or file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if size == 0 {
		if len(res.Segments) != 0 {
			return fmt.Errorf("empty file has %d segments", len(res.Segments))
		}
		return nil
	}
	if len(res.Segments) == 0 {
		return fmt.Errorf("no segments for %d bytes", size)
	}

	var next uint32
	for i, seg := range res.Segments {
		if seg.Span.Empty() {
			return fmt.Errorf("segment %d is empty: %v", i, seg.Span)
		}
		if seg.Span.Start != next {
			return fmt.Errorf("segment %d starts at %d, want %d", i, seg.Span.Start, next)
		}
		next = seg.Span.End
	}
	if next != size {
		return fmt.Errorf("segments end at %d, content ends at %d", next, size)
	}

	for i, tok := range res.Tokens {
		seg, ok := res.SegmentAt(tok.Span.Start)
		if !ok || seg.Literal() {
			return fmt.Errorf("token %d (%s) at %v is not in code", i, tok.Kind, tok.Span)
		}
	}
	return nil
}

// CheckBalanced scans content and requires zero net delta per family and
// no imbalance window.
func CheckBalanced(path string, content []byte) error {
	sf := source.Virtual(path, content)
	res, err := lexer.Scan(sf, lexer.Options{})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if d := res.Delta(); !d.Zero() {
		return fmt.Errorf("net delta %s", d)
	}
	tr := balance.Track(classify.Lines(sf, res), res.Tokens, balance.Options{})
	if !tr.Balanced() {
		ws := make([]string, 0, len(tr.Windows))
		for i := range tr.Windows {
			ws = append(ws, tr.Windows[i].String())
		}
		return fmt.Errorf("windows remain: %s", strings.Join(ws, "; "))
	}
	return nil
}

// CheckLiteralInvariance requires that the ordered String and Comment
// segment texts of before and after are identical. The path selects the
// dialect, so JSX text counts as a literal in .jsx and .tsx files.
func CheckLiteralInvariance(path string, before, after []byte) error {
	a, err := lexer.Scan(source.Virtual(path, before), lexer.Options{})
	if err != nil {
		return fmt.Errorf("scan before: %w", err)
	}
	b, err := lexer.Scan(source.Virtual(path, after), lexer.Options{})
	if err != nil {
		return fmt.Errorf("scan after: %w", err)
	}
	la, lb := a.Literals(before), b.Literals(after)
	if len(la) != len(lb) {
		return fmt.Errorf("literal count changed: %d -> %d", len(la), len(lb))
	}
	for i := range la {
		if la[i] != lb[i] {
			return fmt.Errorf("literal %d changed: %q -> %q", i, la[i], lb[i])
		}
	}
	return nil
}

type passWindow struct {
	pass, window int
}

// CheckMinimalEdit requires every logged edit to add or remove only
// delimiters, semicolons and whitespace, and every repaired window to be
// fixed with exactly its imbalance:
// 1) the delimiters in an edit's text are its recorded tokens
// 2) a window is repaired by inserts only or by deletes only
// 3) inserted closers cancel the window's net delta, deleted closers equal it
func CheckMinimalEdit(log []fix.LogEntry) error {
	groups := make(map[passWindow][]int)
	var order []passWindow
	for i, e := range log {
		if e.Text == "" {
			return fmt.Errorf("edit %d (%s) has no text", i, e.RuleID)
		}
		var delims []byte
		for _, r := range e.Text {
			if !strings.ContainsRune("()[]{}; \t\n", r) {
				return fmt.Errorf("edit %d (%s) %s %q carries non-structural %q", i, e.RuleID, e.Op, e.Text, r)
			}
			if token.KindOf(byte(r)) != token.Invalid {
				delims = append(delims, byte(r))
			}
		}
		if e.Tokens != nil && string(delims) != token.Text(e.Tokens) {
			return fmt.Errorf("edit %d (%s) text %q does not match tokens %q", i, e.RuleID, e.Text, token.Text(e.Tokens))
		}
		if e.Window == 0 || e.Net.Zero() {
			continue
		}
		k := passWindow{e.Pass, e.Window}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		idx := groups[k]
		first := log[idx[0]]
		var moved token.Delta
		for _, i := range idx {
			e := log[i]
			if e.Op != first.Op {
				return fmt.Errorf("pass %d window %d mixes %s and %s", k.pass, k.window, first.Op, e.Op)
			}
			for _, kind := range e.Tokens {
				moved.Add(kind)
			}
		}
		n := 0
		for _, i := range idx {
			n += len(log[i].Tokens)
		}
		if n != first.Net.Abs() {
			return fmt.Errorf("pass %d window %d: %s %d tokens for imbalance %s", k.pass, k.window, first.Op, n, first.Net)
		}
		ok := moved == first.Net
		if first.Op == fix.Insert {
			ok = moved.Plus(first.Net).Zero()
		}
		if !ok {
			return fmt.Errorf("pass %d window %d: %s %s does not cancel %s", k.pass, k.window, first.Op, moved, first.Net)
		}
	}
	return nil
}
