package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"mend/internal/diag"
	"mend/internal/diagfmt"
	"mend/internal/driver"
	"mend/internal/project"
)

func newTestRepairCmd(withDryRun bool) *cobra.Command {
	root := &cobra.Command{Use: "mend"}
	root.PersistentFlags().Int("max-diagnostics", 100, "")
	root.PersistentFlags().Bool("quiet", false, "")
	root.PersistentFlags().Bool("timings", false, "")
	cmd := &cobra.Command{Use: "repair", RunE: func(*cobra.Command, []string) error { return nil }}
	registerRepairFlags(cmd, withDryRun)
	root.AddCommand(cmd)
	return cmd
}

func TestBuildOptionsLayering(t *testing.T) {
	cfg := project.DefaultConfig()
	cfg.Engine.MaxPasses = 7
	cfg.Engine.LookbackLines = 12
	cfg.Run.Verify = true
	cfg.Run.Cache = true

	tests := []struct {
		name      string
		flags     map[string]string
		check     bool
		wantOpts  func(o *driver.Options)
		wantCache bool
	}{
		{
			name: "config over defaults",
			wantOpts: func(o *driver.Options) {
				o.MaxPasses, o.LookbackLines, o.Verify = 7, 12, true
			},
			wantCache: true,
		},
		{
			name:  "flags over config",
			flags: map[string]string{"max-passes": "2", "verify": "false", "cache": "false", "min-confidence": "0.8", "dry-run": "true"},
			wantOpts: func(o *driver.Options) {
				o.MaxPasses, o.LookbackLines, o.MinConfidence, o.DryRun = 2, 12, 0.8, true
			},
		},
		{
			name:  "check forces dry run",
			check: true,
			wantOpts: func(o *driver.Options) {
				o.MaxPasses, o.LookbackLines, o.Verify, o.DryRun = 7, 12, true, true
			},
			wantCache: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestRepairCmd(!tt.check)
			for k, v := range tt.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatal(err)
				}
			}
			got, cache, err := buildOptions(cmd, cfg, tt.check)
			if err != nil {
				t.Fatal(err)
			}
			want := driver.DefaultOptions()
			want.MaxDiagnostics = 100
			tt.wantOpts(&want)
			if diff := cmp.Diff(want, got, cmp.AllowUnexported(driver.Options{})); diff != "" {
				t.Fatalf("options mismatch (-want +got):\n%s", diff)
			}
			if cache != tt.wantCache {
				t.Fatalf("cache = %v, want %v", cache, tt.wantCache)
			}
		})
	}
}

func TestBuildOptionsRejectsBadValues(t *testing.T) {
	for flag, value := range map[string]string{"max-passes": "0", "lookback": "-1", "min-confidence": "1.5", "jobs": "-2"} {
		cmd := newTestRepairCmd(true)
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatal(err)
		}
		if _, _, err := buildOptions(cmd, project.DefaultConfig(), false); err == nil {
			t.Errorf("--%s=%s accepted", flag, value)
		}
	}
}

func TestResolveColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	tests := []struct {
		mode    string
		tty     bool
		want    bool
		wantErr bool
	}{
		{"auto", true, true, false},
		{"auto", false, false, false},
		{"on", false, true, false},
		{"OFF", true, false, false},
		{"rainbow", true, false, true},
	}
	for _, tt := range tests {
		got, err := resolveColor(tt.mode, tt.tty)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveColor(%q, %v) = %v, %v", tt.mode, tt.tty, got, err)
		}
	}
}

func TestResolveUI(t *testing.T) {
	tests := []struct {
		mode    string
		tty     bool
		want    bool
		wantErr bool
	}{
		{"", true, true, false},
		{"auto", false, false, false},
		{"ON", false, true, false},
		{" off ", true, false, false},
		{"maybe", true, false, true},
	}
	for _, tt := range tests {
		got, err := resolveUI(tt.mode, tt.tty)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveUI(%q, %v) = %v, %v", tt.mode, tt.tty, got, err)
		}
	}
}

func TestReadOutputOptionsSeverity(t *testing.T) {
	tests := []struct {
		name    string
		flags   map[string]string
		want    diag.Severity
		wantSet bool
		wantErr bool
	}{
		{name: "default", want: diag.SevWarning},
		{name: "verbose", flags: map[string]string{"verbose": "true"}, want: diag.SevInfo},
		{name: "flag wins over verbose", flags: map[string]string{"verbose": "true", "min-severity": "error"}, want: diag.SevError, wantSet: true},
		{name: "unknown level", flags: map[string]string{"min-severity": "loud"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestRepairCmd(true)
			for k, v := range tt.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatal(err)
				}
			}
			out, err := readOutputOptions(cmd)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if out.minSeverity != tt.want || out.severitySet != tt.wantSet {
				t.Fatalf("minSeverity = %s set=%v, want %s set=%v", out.minSeverity, out.severitySet, tt.want, tt.wantSet)
			}
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRepairCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("a.js", []byte("foo(bar, {\n  x: 1\n\nreturn x;\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "repair", "--color", "off", "--ui", "off", "--format", "json", ".")
	if err != nil {
		t.Fatalf("repair failed: %v\n%s", err, out)
	}
	var decoded diagfmt.ReportsOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(decoded.Files) != 1 || !decoded.Files[0].Committed || decoded.ExitCode != 0 {
		t.Fatalf("unexpected report: %+v", decoded)
	}
	got, err := os.ReadFile(filepath.Join(dir, "a.js"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "foo(bar, {\n  x: 1\n\n});\nreturn x;\n"; string(got) != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
}

func TestCheckCommandExitStatus(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := "const s = \"abc;\nfoo(;\n"
	if err := os.WriteFile("bad.js", []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "check", "--color", "off", "--ui", "off", "bad.js")
	var exitErr exitCodeError
	if !errors.As(err, &exitErr) || exitErr.code != 2 {
		t.Fatalf("err = %v, want exit status 2\n%s", err, out)
	}
	if !strings.Contains(out, "LEX1001") || !strings.Contains(out, "1 failed") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	got, _ := os.ReadFile("bad.js")
	if string(got) != src {
		t.Fatal("check modified the file")
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", dir); err != nil {
		t.Fatal(err)
	}
	if _, err := project.LoadConfig(filepath.Join(dir, project.ConfigName)); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if _, err := execute(t, "init", dir); err == nil || !strings.Contains(err.Error(), "already initialized") {
		t.Fatalf("second init err = %v", err)
	}
}
