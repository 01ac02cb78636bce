package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mend/internal/diag"
)

func writeTOML(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, ConfigName)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Config
		wantErr string
	}{
		{
			name: "empty keeps defaults",
			body: "",
			want: DefaultConfig(),
		},
		{
			name: "overrides",
			body: "[engine]\nmax_passes = 3\nmin_confidence = 0.7\n[run]\nverify = true\nexclude = [\"dist/**\"]\n",
			want: Config{
				Engine: EngineConfig{MaxPasses: 3, MinConfidence: 0.7},
				Run: RunConfig{
					Verify:  true,
					Include: DefaultInclude,
					Exclude: []string{"dist/**"},
				},
			},
		},
		{
			name: "report severity",
			body: "[report]\nmin_severity = \"Error\"\n",
			want: func() Config {
				c := DefaultConfig()
				sev := diag.SevError
				c.Report.MinSeverity = &sev
				return c
			}(),
		},
		{name: "bad severity", body: "[report]\nmin_severity = \"loud\"\n", wantErr: "severity"},
		{name: "zero passes", body: "[engine]\nmax_passes = 0\n", wantErr: "max_passes"},
		{name: "confidence above one", body: "[engine]\nmin_confidence = 1.5\n", wantErr: "min_confidence"},
		{name: "unknown key", body: "[engine]\npasses = 2\n", wantErr: "unknown key"},
		{name: "bad pattern", body: "[run]\ninclude = [\"[\"]\n", wantErr: "include"},
		{name: "syntax", body: "[engine\n", wantErr: "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeTOML(t, t.TempDir(), tt.body)
			got, err := LoadConfig(p)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeTOML(t, root, "[engine]\nlookback_lines = 12\n")
	deep := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := LoadManifest(deep)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	wantRoot, err := filepath.Abs(root)
	if err != nil {
		t.Fatal(err)
	}
	if m.Root != wantRoot || m.Config.Engine.LookbackLines != 12 {
		t.Fatalf("manifest = %+v", m)
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	p, err := WriteConfig(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WriteConfig(dir, false); !errors.Is(err, ErrConfigExists) {
		t.Fatalf("second write err = %v", err)
	}
	if _, err := WriteConfig(dir, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	want := DefaultConfig()
	want.Engine = EngineConfig{MaxPasses: 5, LookbackLines: 30, MinConfidence: 0.5}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("template config mismatch (-want +got):\n%s", diff)
	}
}

func TestDigest(t *testing.T) {
	a := HashString("x")
	if a.IsZero() || len(a.String()) != 64 {
		t.Fatalf("digest = %s", a)
	}
	if Combine(a) == Combine(a, a) {
		t.Fatal("Combine ignores rest")
	}
}
