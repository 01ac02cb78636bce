package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mend/internal/driver"
	"mend/internal/ui"
)

type repairOutcome struct {
	reports []*driver.Report
	err     error
}

// runRepairWithUI drives RepairFiles in the background while a progress
// model consumes its events. Ctrl+C in the model cancels the run.
func runRepairWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan repairOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		reports, err := driver.RepairFiles(ctx, files, optsCopy)
		outcomeCh <- repairOutcome{reports: reports, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	final, uiErr := program.Run()
	if ui.Interrupted(final) {
		cancel()
	}
	// модель больше не читает канал; воркеры не должны блокироваться
	go func() {
		for range events {
		}
	}()

	outcome := <-outcomeCh
	if outcome.err == nil && uiErr != nil && ctx.Err() == nil {
		return outcome.reports, uiErr
	}
	return outcome.reports, outcome.err
}
