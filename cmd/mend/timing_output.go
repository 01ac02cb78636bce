package main

import (
	"fmt"
	"io"

	"mend/internal/driver"
)

type stageTotal struct {
	name string
	ms   float64
	runs int
}

// printTimings sums the per-file stage timers of reports by stage name, in
// first-seen order.
func printTimings(out io.Writer, reports []*driver.Report) {
	if out == nil {
		return
	}
	var (
		totals []stageTotal
		index  = make(map[string]int)
		wall   float64
	)
	for _, r := range reports {
		if r == nil {
			continue
		}
		wall += r.Timings.TotalMS
		for _, st := range r.Timings.Stages {
			i, ok := index[st.Name]
			if !ok {
				i = len(totals)
				index[st.Name] = i
				totals = append(totals, stageTotal{name: st.Name})
			}
			totals[i].ms += st.DurationMS
			totals[i].runs += st.Runs
		}
	}
	for _, t := range totals {
		fmt.Fprintf(out, "%-10s %8.1f ms (%d runs)\n", t.name, t.ms, t.runs)
	}
	fmt.Fprintf(out, "%-10s %8.1f ms\n", "files", wall)
}
