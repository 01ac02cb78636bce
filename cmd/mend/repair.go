package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mend/internal/balance"
	"mend/internal/diag"
	"mend/internal/diagfmt"
	"mend/internal/driver"
	"mend/internal/project"
	"mend/internal/rules"
	"mend/internal/trace"
	"mend/internal/version"
)

var repairCmd = &cobra.Command{
	Use:   "repair [flags] <path|glob>...",
	Short: "Repair unbalanced delimiters in place",
	Long: `Repair scans every selected file, proposes delimiter insertions and removals
and writes a file back only when it ends up balanced. Directories are walked
using the include/exclude patterns of mend.toml.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepair(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path|glob>...",
	Short: "Report what repair would change without writing",
	Long: `Check runs the repair engine in dry-run mode. The exit status tells whether
every file is balanced or repairable (0), some would stay unresolved (1) or
some could not be processed (2).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepair(cmd, args, true)
	},
}

func init() {
	registerRepairFlags(repairCmd, true)
	registerRepairFlags(checkCmd, false)
}

// registerRepairFlags adds the engine and output flags shared by repair and
// check. check has no --dry-run since it never writes.
func registerRepairFlags(cmd *cobra.Command, withDryRun bool) {
	f := cmd.Flags()
	if withDryRun {
		f.Bool("dry-run", false, "compute repairs without writing files")
	}
	f.Int("max-passes", driver.DefaultMaxPasses, "maximum repair passes per file")
	f.Int("lookback", balance.DefaultLookback, "maximum lines an imbalance window may span")
	f.Float64("min-confidence", rules.DefaultMinConfidence, "minimum confidence for an edit to be applied")
	f.Bool("verify", false, "re-parse repaired files with tree-sitter before accepting them")
	f.Int("jobs", 0, "max parallel workers (0=auto)")
	f.String("format", "pretty", "output format (pretty|short|json|sarif)")
	f.Bool("cache", false, "skip files whose content is known to be balanced")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	f.String("min-severity", "", "hide diagnostics below this level (info|warning|error)")
	f.Bool("diff", false, "print a unified diff of every change")
	f.Bool("verbose", false, "include informational diagnostics and fix previews")
	f.Bool("fullpath", false, "emit absolute file paths in output")
}

type outputOptions struct {
	format string
	// tui selects the bubbletea progress view over plain output.
	tui         bool
	diff        bool
	verbose     bool
	fullPath    bool
	quiet       bool
	timings     bool
	minSeverity diag.Severity
	// severitySet is true when --min-severity was given.
	severitySet bool
}

func readOutputOptions(cmd *cobra.Command) (outputOptions, error) {
	var out outputOptions
	var err error
	flags := cmd.Flags()

	if out.format, err = flags.GetString("format"); err != nil {
		return out, fmt.Errorf("failed to get format flag: %w", err)
	}
	out.format = strings.ToLower(strings.TrimSpace(out.format))
	switch out.format {
	case "pretty", "short", "json", "sarif":
	default:
		return out, fmt.Errorf("unknown format %q (expected pretty|short|json|sarif)", out.format)
	}

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return out, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if out.diff, err = flags.GetBool("diff"); err != nil {
		return out, fmt.Errorf("failed to get diff flag: %w", err)
	}
	if out.verbose, err = flags.GetBool("verbose"); err != nil {
		return out, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if out.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return out, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if out.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return out, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if out.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return out, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if out.tui, err = resolveUI(uiValue, isTerminal(os.Stdout)); err != nil {
		return out, err
	}
	out.tui = out.tui && out.format == "pretty" && !out.quiet

	out.minSeverity = diag.SevWarning
	if out.verbose {
		out.minSeverity = diag.SevInfo
	}
	if flags.Changed("min-severity") {
		value, err := flags.GetString("min-severity")
		if err != nil {
			return out, fmt.Errorf("failed to get min-severity flag: %w", err)
		}
		if out.minSeverity, err = diag.ParseSeverity(value); err != nil {
			return out, fmt.Errorf("--min-severity: %w", err)
		}
		out.severitySet = true
	}
	return out, nil
}

// resolveUI maps --ui to whether the progress view runs; auto follows the
// terminal.
func resolveUI(mode string, tty bool) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "auto":
		return tty, nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", mode)
}

// buildOptions layers mend.toml over the engine defaults and the explicitly
// set flags over both. The second result tells whether the cache is enabled.
func buildOptions(cmd *cobra.Command, cfg project.Config, check bool) (driver.Options, bool, error) {
	opts := driver.DefaultOptions()
	if cfg.Engine.MaxPasses > 0 {
		opts.MaxPasses = cfg.Engine.MaxPasses
	}
	if cfg.Engine.LookbackLines > 0 {
		opts.LookbackLines = cfg.Engine.LookbackLines
	}
	if cfg.Engine.MinConfidence > 0 {
		opts.MinConfidence = cfg.Engine.MinConfidence
	}
	opts.DryRun = cfg.Run.DryRun
	opts.Verify = cfg.Run.Verify
	opts.Jobs = cfg.Run.Jobs
	useCache := cfg.Run.Cache

	flags := cmd.Flags()
	if flags.Changed("max-passes") {
		v, err := flags.GetInt("max-passes")
		if err != nil {
			return opts, false, fmt.Errorf("failed to get max-passes flag: %w", err)
		}
		if v <= 0 {
			return opts, false, fmt.Errorf("--max-passes must be positive, got %d", v)
		}
		opts.MaxPasses = v
	}
	if flags.Changed("lookback") {
		v, err := flags.GetInt("lookback")
		if err != nil {
			return opts, false, fmt.Errorf("failed to get lookback flag: %w", err)
		}
		if v <= 0 {
			return opts, false, fmt.Errorf("--lookback must be positive, got %d", v)
		}
		opts.LookbackLines = v
	}
	if flags.Changed("min-confidence") {
		v, err := flags.GetFloat64("min-confidence")
		if err != nil {
			return opts, false, fmt.Errorf("failed to get min-confidence flag: %w", err)
		}
		if v <= 0 || v > 1 {
			return opts, false, fmt.Errorf("--min-confidence must be in (0, 1], got %g", v)
		}
		opts.MinConfidence = v
	}
	if flags.Changed("verify") {
		v, err := flags.GetBool("verify")
		if err != nil {
			return opts, false, fmt.Errorf("failed to get verify flag: %w", err)
		}
		opts.Verify = v
	}
	if flags.Changed("jobs") {
		v, err := flags.GetInt("jobs")
		if err != nil {
			return opts, false, fmt.Errorf("failed to get jobs flag: %w", err)
		}
		if v < 0 {
			return opts, false, fmt.Errorf("--jobs must not be negative, got %d", v)
		}
		opts.Jobs = v
	}
	if flags.Changed("cache") {
		v, err := flags.GetBool("cache")
		if err != nil {
			return opts, false, fmt.Errorf("failed to get cache flag: %w", err)
		}
		useCache = v
	}
	if flags.Lookup("dry-run") != nil && flags.Changed("dry-run") {
		v, err := flags.GetBool("dry-run")
		if err != nil {
			return opts, false, fmt.Errorf("failed to get dry-run flag: %w", err)
		}
		opts.DryRun = v
	}
	if check {
		opts.DryRun = true
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return opts, false, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts.MaxDiagnostics = maxDiagnostics
	return opts, useCache, nil
}

// loadConfig returns mend.toml from the working directory upwards, or the
// defaults when there is none.
func loadConfig() (project.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return project.Config{}, "", err
	}
	manifest, ok, err := project.LoadManifest(wd)
	if err != nil {
		return project.Config{}, "", err
	}
	if !ok {
		return project.DefaultConfig(), wd, nil
	}
	return manifest.Config, manifest.Root, nil
}

// runRepair executes repair and check: it resolves configuration and input
// files, runs the engine with or without the progress UI, renders reports in
// the chosen format and maps the outcome to the exit status.
func runRepair(cmd *cobra.Command, args []string, check bool) error {
	// Ensure trace is dumped on panic
	defer dumpTraceOnPanic()

	cleanupProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanupProf()
	cleanupTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanupTrace()

	out, err := readOutputOptions(cmd)
	if err != nil {
		return err
	}
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Report.MinSeverity != nil && !out.severitySet {
		out.minSeverity = *cfg.Report.MinSeverity
	}
	opts, useCache, err := buildOptions(cmd, cfg, check)
	if err != nil {
		return err
	}
	if useCache {
		cache, cacheErr := driver.OpenDiskCache("mend")
		if cacheErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", cacheErr)
		} else {
			opts.Cache = cache
		}
	}

	files, err := project.Expand(args, cfg.Selector())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files matched %s", strings.Join(args, " "))
	}

	ctx := cmd.Context()
	name := "mend repair"
	if check {
		name = "mend check"
	}
	span, ctx := trace.Start(ctx, trace.ScopeDriver, name)
	span.WithExtra("root", root)

	var reports []*driver.Report
	if out.tui {
		reports, err = runRepairWithUI(ctx, name, files, opts)
	} else {
		reports, err = driver.RepairFiles(ctx, files, opts)
	}
	summary := driver.Summarize(reports)
	span.WithExtra("exit", strconv.Itoa(driver.ExitCode(reports))).End(summary.String())
	if err != nil && ctx.Err() == nil {
		return err
	}

	if renderErr := renderReports(cmd, reports, out, root); renderErr != nil {
		return renderErr
	}
	if err != nil {
		return fmt.Errorf("interrupted after %d of %d files: %w", summary.Files, len(files), err)
	}
	if code := driver.ExitCode(reports); code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

func renderReports(cmd *cobra.Command, reports []*driver.Report, out outputOptions, root string) error {
	w := cmd.OutOrStdout()
	pathMode := diagfmt.PathModeAuto
	if out.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch out.format {
	case "json":
		return diagfmt.JSON(w, reports, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			BaseDir:          root,
			IncludeNotes:     true,
			IncludeFixes:     true,
			IncludePreviews:  out.verbose,
		})
	case "sarif":
		return diagfmt.Sarif(w, reports, diagfmt.JSONOpts{PathMode: pathMode, BaseDir: root}, diagfmt.SarifRunMeta{
			ToolName:       "mend",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	case "short":
		diagfmt.Short(w, reports, diagfmt.PrettyOpts{
			PathMode:    pathMode,
			BaseDir:     root,
			MinSeverity: out.minSeverity,
			ShowNotes:   out.verbose,
		})
		return nil
	}

	colored := !color.NoColor
	if !out.quiet {
		diagfmt.Reports(w, reports, diagfmt.PrettyOpts{
			Color:       colored,
			Context:     1,
			PathMode:    pathMode,
			BaseDir:     root,
			MinSeverity: out.minSeverity,
			ShowNotes:   true,
			ShowFixes:   true,
			ShowPreview: out.verbose,
			ShowEdits:   true,
		})
	}
	if out.diff {
		if err := diagfmt.Diff(w, reports, diagfmt.PrettyOpts{Color: colored, PathMode: pathMode, BaseDir: root}); err != nil {
			return err
		}
	}
	if out.timings {
		printTimings(cmd.ErrOrStderr(), reports)
	}
	if !out.quiet {
		diagfmt.Summary(w, driver.Summarize(reports), colored)
	}
	return nil
}
