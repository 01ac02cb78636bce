package driver

import (
	"context"
	"fmt"
	"strings"

	"mend/internal/balance"
	"mend/internal/project"
	"mend/internal/rules"
	"mend/internal/verify"
)

// DefaultMaxPasses bounds the repair loop of a single file.
const DefaultMaxPasses = 5

// Oracle re-parses repaired text; a non-nil error rejects the repair.
type Oracle func(ctx context.Context, path string, content []byte) error

// Options configures RepairFile and RepairFiles.
type Options struct {
	MaxPasses      int
	LookbackLines  int
	MinConfidence  float64
	DryRun         bool
	Verify         bool
	Jobs           int // 0 = GOMAXPROCS
	MaxDiagnostics int // 0 = unbounded

	// Rules overrides the built-in rule set.
	Rules []rules.Rule
	// Oracle replaces the tree-sitter check used when Verify is set.
	Oracle Oracle
	// Cache remembers contents known to be balanced; nil disables it.
	Cache *DiskCache
	// Progress receives per-file stage events; nil disables them.
	Progress ProgressSink
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxPasses:     DefaultMaxPasses,
		LookbackLines: balance.DefaultLookback,
		MinConfidence: rules.DefaultMinConfidence,
	}
}

func (o *Options) normalize() {
	if o.MaxPasses <= 0 {
		o.MaxPasses = DefaultMaxPasses
	}
	if o.LookbackLines <= 0 {
		o.LookbackLines = balance.DefaultLookback
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = rules.DefaultMinConfidence
	}
	if o.Verify && o.Oracle == nil {
		o.Oracle = verify.Check
	}
}

func (o *Options) engine() *rules.Engine {
	return rules.NewEngine(rules.Options{MinConfidence: o.MinConfidence}, o.Rules...)
}

// Fingerprint identifies the options that influence a repair outcome.
func (o Options) Fingerprint() string {
	o.normalize()
	ids := make([]string, 0, len(o.Rules))
	for _, r := range o.engine().Rules() {
		ids = append(ids, r.ID())
	}
	return fmt.Sprintf("passes=%d;lookback=%d;minconf=%.3f;verify=%t;rules=%s",
		o.MaxPasses, o.LookbackLines, o.MinConfidence, o.Verify, strings.Join(ids, ","))
}

func (o Options) cacheKey(content project.Digest) project.Digest {
	return project.Combine(content, project.HashString(o.Fingerprint()))
}
