package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mend/internal/classify"
	"mend/internal/diag"
	"mend/internal/diagfmt"
	"mend/internal/lexer"
	"mend/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <file>",
	Short: "Dump delimiter tokens, segments and line roles of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format %q (expected pretty|json)", format)
	}

	path := args[0]
	file, err := source.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	bag := diag.NewBag(16)
	res, err := lexer.Scan(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		diagfmt.Pretty(cmd.ErrOrStderr(), bag.Items(), file, diagfmt.PrettyOpts{Color: !color.NoColor, Context: 1})
		if !bag.HasFatal() {
			return err
		}
		return exitCodeError{code: 2}
	}
	lines := classify.Lines(file, res)

	if format == "json" {
		return diagfmt.FormatScanJSON(cmd.OutOrStdout(), path, res, lines)
	}
	return diagfmt.FormatScanPretty(cmd.OutOrStdout(), path, res, lines, !color.NoColor)
}
