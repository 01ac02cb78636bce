// Package verify re-parses repaired JavaScript and TypeScript with
// tree-sitter grammars and rejects text that does not parse cleanly.
package verify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrRejected is matched by every SyntaxError.
var ErrRejected = errors.New("syntax error")

// Lang selects a grammar.
type Lang uint8

const (
	LangJavaScript Lang = iota
	LangTypeScript
	LangTSX
)

func (l Lang) String() string {
	switch l {
	case LangTypeScript:
		return "typescript"
	case LangTSX:
		return "tsx"
	}
	return "javascript"
}

// LangForPath picks the grammar by file extension; unknown extensions
// fall back to JavaScript, whose grammar also accepts JSX.
func LangForPath(path string) Lang {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	}
	return LangJavaScript
}

func (l Lang) grammar() *sitter.Language {
	switch l {
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	}
	return javascript.GetLanguage()
}

// SyntaxError locates the first ERROR or MISSING node.
type SyntaxError struct {
	Lang      Lang
	Line, Col uint32 // 1-based
	Node      string
	Missing   bool
}

func (e *SyntaxError) Error() string {
	what := "unexpected " + e.Node
	if e.Missing {
		what = "missing " + e.Node
	}
	return fmt.Sprintf("%s: %s at %d:%d", e.Lang, what, e.Line, e.Col)
}

func (e *SyntaxError) Unwrap() error {
	return ErrRejected
}

// sitter.Parser is not safe for concurrent use; one pool per grammar.
var pools [LangTSX + 1]sync.Pool

func acquire(l Lang) *sitter.Parser {
	if p, ok := pools[l].Get().(*sitter.Parser); ok {
		return p
	}
	p := sitter.NewParser()
	p.SetLanguage(l.grammar())
	return p
}

func release(l Lang, p *sitter.Parser) {
	pools[l].Put(p)
}

// Check parses content with the grammar chosen for path. It returns nil for
// a clean tree, a *SyntaxError for a tree with errors, or the parser error.
func Check(ctx context.Context, path string, content []byte) error {
	return CheckLang(ctx, LangForPath(path), content)
}

// CheckLang is Check with an explicit grammar.
func CheckLang(ctx context.Context, lang Lang, content []byte) error {
	parser := acquire(lang)
	defer release(lang, parser)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return fmt.Errorf("%s parse: %w", lang, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pt := bad.StartPoint()
	return &SyntaxError{
		Lang:    lang,
		Line:    pt.Row + 1,
		Col:     pt.Column + 1,
		Node:    bad.Type(),
		Missing: bad.IsMissing(),
	}
}

// firstError walks only subtrees that contain errors.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}
