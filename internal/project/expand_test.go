package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x();\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExpand(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"src/app.ts",
		"src/view.tsx",
		"src/util.js",
		"src/README.md",
		"node_modules/lib/index.js",
		"src/node_modules/x.js",
		"scripts/build.mjs",
	)
	j := func(rel string) string { return filepath.Join(root, filepath.FromSlash(rel)) }
	sel := DefaultConfig().Selector()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "directory walk",
			args: []string{root},
			want: []string{j("scripts/build.mjs"), j("src/app.ts"), j("src/util.js"), j("src/view.tsx")},
		},
		{
			name: "explicit file bypasses include",
			args: []string{j("src/README.md"), j("src/app.ts"), j("src/app.ts")},
			want: []string{j("src/README.md"), j("src/app.ts")},
		},
		{
			name: "glob",
			args: []string{filepath.Join(root, "src", "*.ts*")},
			want: []string{j("src/app.ts"), j("src/view.tsx")},
		},
		{
			name: "missing path is kept for the driver",
			args: []string{j("gone.js")},
			want: []string{j("gone.js")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.args, sel)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("files mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpandBadGlob(t *testing.T) {
	if _, err := Expand([]string{"src/[.js"}, Selector{}); err == nil {
		t.Fatal("want error for malformed glob")
	}
}
