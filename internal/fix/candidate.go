package fix

import (
	"fmt"

	"mend/internal/source"
	"mend/internal/token"
)

// Op is the kind of a textual edit.
type Op uint8

const (
	Insert Op = iota
	Delete
)

func (o Op) String() string {
	if o == Delete {
		return "delete"
	}
	return "insert"
}

// Candidate is one proposed edit. For Insert, Span is empty and Text is the
// inserted text; for Delete, Text is the exact text being removed and serves
// as a guard.
type Candidate struct {
	Span       source.Span
	Op         Op
	Text       string
	Tokens     []token.Kind
	Confidence float64
	RuleID     string
	Rationale  string
	Window     int
	// Net is the imbalance of Window the edit belongs to.
	Net       token.Delta
	Line, Col uint32
}

// Size is the number of bytes the edit touches.
func (c *Candidate) Size() int {
	return len(c.Text)
}

// SameEdit reports whether two candidates describe the identical change.
func (c *Candidate) SameEdit(o *Candidate) bool {
	return c.Op == o.Op && c.Span == o.Span && c.Text == o.Text
}

func (c *Candidate) String() string {
	return fmt.Sprintf("%s %s %q at %d:%d (%.2f)", c.RuleID, c.Op, c.Text, c.Line, c.Col, c.Confidence)
}

// Option mutates a candidate during construction.
type Option func(*Candidate)

// WithRule sets the proposing rule.
func WithRule(id string) Option {
	return func(c *Candidate) {
		c.RuleID = id
	}
}

// WithConfidence sets the confidence score.
func WithConfidence(v float64) Option {
	return func(c *Candidate) {
		c.Confidence = v
	}
}

// WithRationale attaches a human readable explanation.
func WithRationale(format string, args ...any) Option {
	return func(c *Candidate) {
		c.Rationale = fmt.Sprintf(format, args...)
	}
}

// WithWindow links the candidate to the window it repairs.
func WithWindow(id int) Option {
	return func(c *Candidate) {
		c.Window = id
	}
}

// WithNet records the imbalance of the repaired window.
func WithNet(d token.Delta) Option {
	return func(c *Candidate) {
		c.Net = d
	}
}

// WithTokens records the delimiters the edit adds or removes.
func WithTokens(kinds ...token.Kind) Option {
	return func(c *Candidate) {
		c.Tokens = kinds
	}
}

func applyOptions(c Candidate, opts []Option) Candidate {
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// InsertText creates a candidate inserting text at the offset.
func InsertText(file *source.File, at uint32, text string, opts ...Option) Candidate {
	pos := file.Position(at)
	c := Candidate{
		Span: source.Span{Start: at, End: at},
		Op:   Insert,
		Text: text,
		Line: pos.Line,
		Col:  pos.Col,
	}
	return applyOptions(c, opts)
}

// DeleteSpan creates a candidate removing the span.
func DeleteSpan(file *source.File, sp source.Span, opts ...Option) Candidate {
	pos := file.Position(sp.Start)
	c := Candidate{
		Span: sp,
		Op:   Delete,
		Text: string(file.Content[sp.Start:sp.End]),
		Line: pos.Line,
		Col:  pos.Col,
	}
	return applyOptions(c, opts)
}

// LogEntry is one applied edit. Spans refer to the buffer of that pass.
// Window, Tokens and Net let a reader check that the edits of one window
// add or remove exactly its imbalance.
type LogEntry struct {
	Pass       int
	RuleID     string
	Op         Op
	Span       source.Span
	Line, Col  uint32
	Text       string
	Confidence float64
	Window     int
	Tokens     []token.Kind
	Net        token.Delta
}

func logEntry(c *Candidate, pass int) LogEntry {
	return LogEntry{
		Pass:       pass,
		RuleID:     c.RuleID,
		Op:         c.Op,
		Span:       c.Span,
		Line:       c.Line,
		Col:        c.Col,
		Text:       c.Text,
		Confidence: c.Confidence,
		Window:     c.Window,
		Tokens:     c.Tokens,
		Net:        c.Net,
	}
}
