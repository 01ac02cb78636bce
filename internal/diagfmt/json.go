package diagfmt

import (
	"encoding/json"
	"io"

	"mend/internal/diag"
	"mend/internal/driver"
	"mend/internal/observ"
	"mend/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text,omitempty"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	Title      string        `json:"title"`
	Confidence float64       `json:"confidence"`
	Edits      []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity diag.Severity `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location LocationJSON  `json:"location"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
	Fixes    []FixJSON     `json:"fixes,omitempty"`
}

// EditJSON is one EditLog entry. Spans refer to the buffer of that pass.
type EditJSON struct {
	Pass       int     `json:"pass"`
	Rule       string  `json:"rule"`
	Op         string  `json:"op"`
	Text       string  `json:"text"`
	StartByte  uint32  `json:"start_byte"`
	EndByte    uint32  `json:"end_byte"`
	Line       uint32  `json:"line"`
	Col        uint32  `json:"col"`
	Confidence float64 `json:"confidence"`
}

// WindowJSON describes an imbalance left unresolved.
type WindowJSON struct {
	Anomaly  string `json:"anomaly"`
	Cause    string `json:"cause"`
	Status   string `json:"status"`
	Start    int    `json:"start_line"`
	End      int    `json:"end_line"`
	Boundary int    `json:"boundary_line,omitempty"`
	Net      string `json:"net"`
}

// ReportJSON is the JSON form of a driver.Report.
type ReportJSON struct {
	File              string           `json:"file"`
	FinalState        string           `json:"final_state"`
	PassesUsed        int              `json:"passes_used"`
	Fatal             bool             `json:"fatal,omitempty"`
	Error             string           `json:"error,omitempty"`
	Committed         bool             `json:"committed,omitempty"`
	Cached            bool             `json:"cached,omitempty"`
	EditLog           []EditJSON       `json:"edit_log"`
	UnresolvedWindows []WindowJSON     `json:"unresolved_windows,omitempty"`
	Diagnostics       []DiagnosticJSON `json:"diagnostics"`
	Dropped           int              `json:"dropped_diagnostics,omitempty"`
	Timings           *observ.Report   `json:"timings,omitempty"`
}

// ReportsOutput представляет корневую структуру JSON вывода
type ReportsOutput struct {
	Files    []ReportJSON `json:"files"`
	Summary  SummaryJSON  `json:"summary"`
	ExitCode int          `json:"exit_code"`
}

// SummaryJSON mirrors driver.Summary.
type SummaryJSON struct {
	Files      int `json:"files"`
	Fixed      int `json:"fixed"`
	Changed    int `json:"changed"`
	Committed  int `json:"committed"`
	Unresolved int `json:"unresolved"`
	Fatal      int `json:"fatal"`
	Edits      int `json:"edits"`
}

func makeLocation(span source.Span, file *source.File, path string, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      path,
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions && file != nil && hasLocation(span) {
		startPos, endPos := file.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnostics converts diagnostics of one file.
func BuildDiagnostics(diags []diag.Diagnostic, file *source.File, path string, opts JSONOpts) []DiagnosticJSON {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := make([]DiagnosticJSON, 0, n)
	for i := range n {
		d := &diags[i]
		dj := DiagnosticJSON{
			Severity: d.Severity,
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, file, path, opts.IncludePositions),
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, file, path, opts.IncludePositions),
				})
			}
		}
		if opts.IncludeFixes {
			for _, f := range d.Fixes {
				fj := FixJSON{Title: f.Title, Confidence: f.Confidence}
				for _, e := range f.Edits {
					ej := FixEditJSON{
						Location: makeLocation(e.Span, file, path, opts.IncludePositions),
						NewText:  e.NewText,
						OldText:  e.OldText,
					}
					if opts.IncludePreviews {
						if prev, err := buildFixEditPreview(file, e); err == nil {
							ej.BeforeLines = prev.before
							ej.AfterLines = prev.after
						}
					}
					fj.Edits = append(fj.Edits, ej)
				}
				dj.Fixes = append(dj.Fixes, fj)
			}
		}
		out = append(out, dj)
	}
	return out
}

// BuildReport converts one report.
func BuildReport(r *driver.Report, opts JSONOpts) ReportJSON {
	path := formatPath(r.File, opts.PathMode, opts.BaseDir)
	rj := ReportJSON{
		File:        path,
		FinalState:  r.FinalState.String(),
		PassesUsed:  r.PassesUsed,
		Fatal:       r.Fatal,
		Committed:   r.Committed,
		Cached:      r.Cached,
		EditLog:     make([]EditJSON, 0, len(r.EditLog)),
		Diagnostics: BuildDiagnostics(r.Diagnostics, r.Source, path, opts),
		Dropped:     r.DroppedDiagnostics,
	}
	if r.Err != nil {
		rj.Error = r.Err.Error()
	}
	for _, e := range r.EditLog {
		rj.EditLog = append(rj.EditLog, EditJSON{
			Pass:       e.Pass,
			Rule:       e.RuleID,
			Op:         e.Op.String(),
			Text:       e.Text,
			StartByte:  e.Span.Start,
			EndByte:    e.Span.End,
			Line:       e.Line,
			Col:        e.Col,
			Confidence: e.Confidence,
		})
	}
	for _, w := range r.UnresolvedWindows {
		rj.UnresolvedWindows = append(rj.UnresolvedWindows, WindowJSON{
			Anomaly:  w.Anomaly.String(),
			Cause:    w.Cause.String(),
			Status:   w.Status.String(),
			Start:    w.Start,
			End:      w.End,
			Boundary: w.Boundary,
			Net:      w.Net.String(),
		})
	}
	if len(r.Timings.Stages) > 0 {
		t := r.Timings
		rj.Timings = &t
	}
	return rj
}

// BuildReportsOutput формирует структуру JSON-вывода без сериализации.
func BuildReportsOutput(reports []*driver.Report, opts JSONOpts) ReportsOutput {
	out := ReportsOutput{Files: make([]ReportJSON, 0, len(reports))}
	for _, r := range reports {
		if r != nil {
			out.Files = append(out.Files, BuildReport(r, opts))
		}
	}
	s := driver.Summarize(reports)
	out.Summary = SummaryJSON(s)
	out.ExitCode = driver.ExitCode(reports)
	return out
}

// JSON форматирует отчёты в JSON.
func JSON(w io.Writer, reports []*driver.Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildReportsOutput(reports, opts))
}
