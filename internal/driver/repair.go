package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"mend/internal/balance"
	"mend/internal/classify"
	"mend/internal/diag"
	"mend/internal/fix"
	"mend/internal/lexer"
	"mend/internal/observ"
	"mend/internal/project"
	"mend/internal/rules"
	"mend/internal/source"
	"mend/internal/trace"
)

// RepairFile reads path, runs the repair loop and commits the result when
// the file ends Fixed with edits and opts.DryRun is not set.
func RepairFile(ctx context.Context, path string, opts Options) *Report {
	opts.normalize()
	span, ctx := trace.Start(ctx, trace.ScopeFile, "file:"+path)

	emit(opts.Progress, Event{File: path, Stage: StageScan, Status: StatusWorking})
	file, err := source.Load(path)
	if err != nil {
		rep := ioFailure(path, diag.IOLoadFileError, fmt.Errorf("failed to load %s: %w", path, err))
		finish(opts.Progress, span, path, rep)
		return rep
	}

	key := opts.cacheKey(project.Digest(file.Hash))
	hit, cacheErr := opts.Cache.Balanced(key)
	if hit {
		rep := &Report{File: file.Path, FinalState: StateFixed, Cached: true, Source: file, Output: file.Content}
		finish(opts.Progress, span, path, rep)
		return rep
	}
	if cacheErr != nil {
		// битая запись - просто промах, файл чиним заново
		trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-read", cacheErr.Error(), span.ID())
	}

	rep := repairSource(ctx, file, opts, path)
	if cacheErr != nil {
		rep.Diagnostics = append(rep.Diagnostics, diag.New(diag.SevInfo, diag.IOCacheReadError, source.Span{},
			fmt.Sprintf("ignoring unreadable cache record in %s: %v", opts.Cache.Dir(), cacheErr)))
	}
	if rep.Fixed() && rep.Changed() && !opts.DryRun {
		emit(opts.Progress, Event{File: path, Stage: StageCommit, Status: StatusWorking})
		out := file.WithContent(rep.Output)
		if err := writeAtomic(path, out.Encoded()); err != nil {
			rep.Fatal = true
			rep.Err = fmt.Errorf("failed to write %s: %w", path, err)
			rep.Diagnostics = append(rep.Diagnostics, diag.NewError(diag.IOWriteFileError, source.Span{}, rep.Err.Error()))
		} else {
			rep.Committed = true
			opts.Cache.MarkBalanced(opts.cacheKey(project.Digest(out.Hash)), out.Path)
		}
	} else if rep.Fixed() && !rep.Changed() {
		opts.Cache.MarkBalanced(key, file.Path)
	}
	finish(opts.Progress, span, path, rep)
	return rep
}

func ioFailure(path string, code diag.Code, err error) *Report {
	return &Report{
		File:        path,
		FinalState:  StateUnresolved,
		Fatal:       true,
		Err:         err,
		Diagnostics: []diag.Diagnostic{diag.NewError(code, source.Span{}, err.Error())},
	}
}

func finish(sink ProgressSink, span *trace.Span, path string, rep *Report) {
	status := StatusUnresolved
	switch {
	case rep.Fatal:
		status = StatusError
	case rep.FinalState == StateFixed:
		status = StatusFixed
	}
	emit(sink, Event{File: path, Status: status, Pass: rep.PassesUsed, Err: rep.Err})
	span.WithExtra("edits", strconv.Itoa(len(rep.EditLog))).
		WithExtra("passes", strconv.Itoa(rep.PassesUsed)).
		End(rep.FinalState.String())
}

// session is the per-file loop state. It lives for one RepairSource call.
type session struct {
	opts   Options
	engine *rules.Engine
	buf    *source.Buffer
	remap  *remapper
	dedup  *diag.DedupReporter
	rep    diag.Reporter
	timer  *observ.Timer
	tracer trace.Tracer
	parent uint64
	name   string
	report *Report
}

// view is what a scan of the working buffer yields.
type view struct {
	scan  *lexer.Result
	lines []classify.Line
	track *balance.Result
}

// RepairSource runs the state machine on an in-memory file and never
// touches the disk. The report's Output holds the final working text.
func RepairSource(ctx context.Context, file *source.File, opts Options) *Report {
	opts.normalize()
	return repairSource(ctx, file, opts, file.Path)
}

// name is the file name used in progress events.
func repairSource(ctx context.Context, file *source.File, opts Options, name string) *Report {
	bag := diag.NewBag(opts.MaxDiagnostics)
	remap := &remapper{}
	dedup := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	s := &session{
		opts:   opts,
		engine: opts.engine(),
		buf:    source.NewBuffer(file),
		remap:  remap,
		dedup:  dedup,
		rep:    remapReporter{next: dedup, m: remap},
		timer:  observ.NewTimer(),
		tracer: trace.FromContext(ctx),
		parent: trace.ParentID(ctx),
		name:   name,
		report: &Report{File: file.Path, Source: file},
	}
	s.run(ctx)
	dedup.Flush()

	r := s.report
	r.Output = s.buf.Working.Content
	r.Timings = s.timer.Report()
	bag.Sort()
	r.Diagnostics = bag.Items()
	r.DroppedDiagnostics = bag.Dropped()
	return r
}

func (s *session) run(ctx context.Context) {
	state := StateScanning
	var v view
	var pass int
	var passSpan *trace.Span

	for !state.Terminal() {
		switch state {
		case StateScanning:
			if err := ctx.Err(); err != nil {
				s.report.Err = err
				state = StateUnresolved
				continue
			}
			scan, err := s.scan(pass)
			if err != nil {
				s.report.Err = err
				if pass == 0 {
					s.report.Fatal = true
				}
				state = StateUnresolved
				continue
			}
			v = view{scan: scan}
			state = StateClassifying

		case StateClassifying:
			s.stage(pass, StageClassify, func() {
				v.lines = classify.Lines(s.buf.Working, v.scan)
			})
			state = StateTracking

		case StateTracking:
			s.stage(pass, StageTrack, func() {
				v.track = balance.Track(v.lines, v.scan.Tokens, balance.Options{LookbackLines: s.opts.LookbackLines})
			})
			passSpan.WithExtra("windows", strconv.Itoa(len(v.track.Windows))).End("")
			passSpan = nil
			switch {
			case pass > 0:
				state = StateVerifying
			case v.track.Balanced():
				state = StateFixed
			default:
				state = StateNeedsAnotherPass
			}

		case StateNeedsAnotherPass:
			if pass >= s.opts.MaxPasses {
				s.exhausted(&v)
				state = StateUnresolved
				continue
			}
			pass++
			s.report.PassesUsed = pass
			s.dedup.NextPass()
			passSpan = trace.Begin(s.tracer, trace.ScopePass, "pass:"+strconv.Itoa(pass), s.parent)
			state = StateRuleMatching

		case StateRuleMatching, StateApplying:
			// Rule matching and application share one step: the proposal
			// only makes sense against the view it was computed from.
			state = s.repairPass(pass, &v)

		case StateVerifying:
			state = s.verify(ctx, &v)
		}
	}

	if state == StateUnresolved && v.track != nil && len(s.report.UnresolvedWindows) == 0 {
		s.report.UnresolvedWindows = v.track.Windows
	}
	s.report.FinalState = state
	passSpan.End("interrupted")
}

func (s *session) stage(pass int, st Stage, fn func()) {
	emit(s.opts.Progress, Event{File: s.name, Stage: st, Status: StatusWorking, Pass: pass})
	idx := s.timer.Begin(string(st))
	fn()
	s.timer.End(idx, "")
}

func (s *session) scan(pass int) (*lexer.Result, error) {
	var res *lexer.Result
	var err error
	s.stage(pass, StageScan, func() {
		res, err = lexer.Scan(s.buf.Working, lexer.Options{Reporter: s.rep})
	})
	if err == nil {
		return res, nil
	}
	if pass > 0 {
		// Edits never touch literals, so this means the original scan was wrong.
		diag.ReportError(s.rep, diag.RepUnresolvedWindow, source.Span{},
			fmt.Sprintf("pass %d produced text that no longer scans; discarding edits", pass)).Emit()
	}
	return nil, fmt.Errorf("scan %s: %w", s.report.File, err)
}

// repairPass proposes and applies one batch of edits.
func (s *session) repairPass(pass int, v *view) State {
	in := rules.NewInput(s.buf.Working, v.scan, v.lines, v.track, s.opts.LookbackLines)

	var prop *rules.Proposal
	s.stage(pass, StageRules, func() {
		prop = s.engine.Propose(in, s.rep)
	})

	var res *fix.ApplyResult
	var err error
	s.stage(pass, StageApply, func() {
		res, err = fix.Apply(s.buf.Working.Content, prop.Candidates, fix.ApplyOptions{
			Pass:     pass,
			Literals: v.scan,
			Reporter: s.rep,
		})
	})
	markConflicts(v.track, res.ConflictWindows)

	if errors.Is(err, fix.ErrNoEdits) {
		s.noProgress(pass, v, prop)
		return StateUnresolved
	}
	if err != nil {
		s.report.Err = fmt.Errorf("apply pass %d: %w", pass, err)
		return StateUnresolved
	}

	for i := range res.Applied {
		c := &res.Applied[i]
		diag.ReportInfo(s.rep, diag.RepEditApplied, c.Span, fmt.Sprintf("%s: %s", c.RuleID, c.Rationale)).
			WithFix(fix.AsFix(c)).
			Emit()
		trace.Point(s.tracer, trace.ScopeRule, c.RuleID, c.String(), s.parent)
	}
	s.report.EditLog = append(s.report.EditLog, res.Log...)
	s.remap.push(res.Log)
	s.buf = s.buf.Next(res.Content)
	return StateScanning
}

// verify runs on the re-scan after a pass: balanced text goes through the
// oracle, anything else loops.
func (s *session) verify(ctx context.Context, v *view) State {
	if !v.track.Balanced() {
		return StateNeedsAnotherPass
	}
	if s.opts.Oracle == nil || len(s.report.EditLog) == 0 {
		return StateFixed
	}
	var err error
	s.stage(s.report.PassesUsed, StageVerify, func() {
		err = s.opts.Oracle(ctx, s.report.File, s.buf.Working.Content)
	})
	if err == nil {
		return StateFixed
	}
	diag.ReportError(s.rep, diag.VerifyRejected, source.Span{}, fmt.Sprintf("repaired text rejected by parser: %v", err)).Emit()
	s.report.Err = err
	return StateUnresolved
}

func (s *session) exhausted(v *view) {
	diag.ReportWarning(s.rep, diag.RepMaxPassesExceeded, source.Span{},
		fmt.Sprintf("%d windows remain after %d passes", len(v.track.Windows), s.opts.MaxPasses)).Emit()
	s.report.UnresolvedWindows = v.track.Windows
}

func (s *session) noProgress(pass int, v *view, prop *rules.Proposal) {
	b := diag.ReportWarning(s.rep, diag.RepNoProgress, source.Span{},
		fmt.Sprintf("pass %d found no applicable edit for %d windows", pass, len(v.track.Windows)))
	for _, w := range v.track.Windows {
		b.WithNote(windowSpan(v, &w), w.String())
	}
	for i := range prop.Rejected {
		c := &prop.Rejected[i]
		b.WithFix(fix.AsFix(c))
	}
	b.Emit()
	s.report.UnresolvedWindows = v.track.Windows
}

func markConflicts(tr *balance.Result, ids []int) {
	for _, id := range ids {
		for i := range tr.Windows {
			if tr.Windows[i].ID == id {
				tr.Windows[i].Status = balance.Conflicting
			}
		}
	}
}

func windowSpan(v *view, w *balance.Window) source.Span {
	if w.Start < 1 || w.End > len(v.lines) {
		return source.Span{}
	}
	return v.lines[w.Start-1].Span.Cover(v.lines[w.End-1].Span)
}
