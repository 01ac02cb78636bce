package driver

import (
	"strconv"

	"mend/internal/balance"
	"mend/internal/diag"
	"mend/internal/fix"
	"mend/internal/observ"
	"mend/internal/source"
)

// State is a step of the per-file state machine.
type State uint8

const (
	StateScanning State = iota
	StateClassifying
	StateTracking
	StateRuleMatching
	StateApplying
	StateVerifying
	StateNeedsAnotherPass
	StateFixed
	StateUnresolved
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateClassifying:
		return "classifying"
	case StateTracking:
		return "tracking"
	case StateRuleMatching:
		return "rule-matching"
	case StateApplying:
		return "applying"
	case StateVerifying:
		return "verifying"
	case StateNeedsAnotherPass:
		return "needs-another-pass"
	case StateFixed:
		return "fixed"
	case StateUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// Terminal reports whether the loop stops in s.
func (s State) Terminal() bool {
	return s == StateFixed || s == StateUnresolved
}

// Report is the outcome of repairing one file.
type Report struct {
	File              string
	FinalState        State
	PassesUsed        int
	EditLog           []fix.LogEntry
	UnresolvedWindows []balance.Window
	Diagnostics       []diag.Diagnostic
	// DroppedDiagnostics counts what MaxDiagnostics cut off.
	DroppedDiagnostics int
	// Fatal marks an I/O or tokenizer failure; the file was skipped.
	Fatal bool
	// Err is the underlying Go error of a fatal or interrupted run.
	Err error
	// Committed is set when the repaired text was written back.
	Committed bool
	// Cached is set when the cache proved the content already balanced.
	Cached  bool
	Timings observ.Report

	// Source is the file as read; Output is the final working text.
	Source *source.File
	Output []byte
}

// Changed reports whether the run produced edits.
func (r *Report) Changed() bool {
	return len(r.EditLog) > 0
}

// Fixed reports whether the file reached the Fixed state.
func (r *Report) Fixed() bool {
	return !r.Fatal && r.FinalState == StateFixed
}

// Summary counts outcomes over a run.
type Summary struct {
	Files      int
	Fixed      int
	Changed    int
	Committed  int
	Unresolved int
	Fatal      int
	Edits      int
}

// Summarize aggregates reports.
func Summarize(reports []*Report) Summary {
	var s Summary
	for _, r := range reports {
		if r == nil {
			continue
		}
		s.Files++
		s.Edits += len(r.EditLog)
		switch {
		case r.Fatal:
			s.Fatal++
		case r.FinalState == StateFixed:
			s.Fixed++
		default:
			s.Unresolved++
		}
		if r.Changed() {
			s.Changed++
		}
		if r.Committed {
			s.Committed++
		}
	}
	return s
}

// ExitCode maps reports to the process status: 0 when every file is Fixed,
// 1 when any file is Unresolved, 2 when any file failed fatally.
func ExitCode(reports []*Report) int {
	s := Summarize(reports)
	switch {
	case s.Fatal > 0:
		return 2
	case s.Unresolved > 0:
		return 1
	}
	return 0
}

func (s Summary) String() string {
	return strconv.Itoa(s.Fixed) + " fixed, " +
		strconv.Itoa(s.Unresolved) + " unresolved, " +
		strconv.Itoa(s.Fatal) + " failed"
}
