package observ

import (
	"fmt"
	"strings"
	"time"
)

// Stage records the accumulated duration of one pipeline stage across passes.
type Stage struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Runs  int
	Note  string
}

// Timer tracks pipeline stages. Beginning a stage that already exists
// accumulates into it, so a file repaired in three passes still reports one
// "scan" row with Runs == 3.
type Timer struct {
	stages []Stage
	index  map[string]int
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{stages: make([]Stage, 0, 8), index: make(map[string]int, 8)}
}

// Begin starts (or restarts) a stage and returns its index.
func (t *Timer) Begin(name string) int {
	if idx, ok := t.index[name]; ok {
		t.stages[idx].Start = time.Now()
		return idx
	}
	t.stages = append(t.stages, Stage{Name: name, Start: time.Now()})
	idx := len(t.stages) - 1
	t.index[name] = idx
	return idx
}

// End finishes a stage run by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.stages) {
		return
	}
	s := &t.stages[idx]
	s.Dur += time.Since(s.Start)
	s.Runs++
	if note != "" {
		s.Note = note
	}
}

// Summary returns a human-readable string summarizing all tracked stages.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, s := range report.Stages {
		fmt.Fprintf(&sb, "  %-12s %7.2f ms  x%d", s.Name, s.DurationMS, s.Runs)
		if s.Note != "" {
			sb.WriteString("  // " + s.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-12s %7.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// StageReport представляет сжатую информацию о стадии для сериализации.
type StageReport struct {
	Name       string  `json:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" msgpack:"duration_ms"`
	Runs       int     `json:"runs" msgpack:"runs"`
	Note       string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Stages  []StageReport `json:"stages" msgpack:"stages"`
}

// Report формирует срез стадий и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if t == nil || len(t.stages) == 0 {
		return Report{}
	}
	report := Report{
		Stages: make([]StageReport, len(t.stages)),
	}
	var total time.Duration
	for i, s := range t.stages {
		total += s.Dur
		report.Stages[i] = StageReport{
			Name:       s.Name,
			DurationMS: durationToMillis(s.Dur),
			Runs:       s.Runs,
			Note:       s.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
