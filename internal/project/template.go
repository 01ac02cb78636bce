package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigTemplate is written by `mend init`.
const ConfigTemplate = `# mend.toml
# Delimiter repair settings. Command-line flags override this file.

[engine]
# Maximum repair passes per file before it is reported as unresolved.
max_passes = 5
# How many lines an imbalance may span before it is left alone.
lookback_lines = 30
# Edits ranked below this confidence are reported, never applied.
min_confidence = 0.5

[run]
dry_run = false
# Re-parse repaired files with tree-sitter before writing them.
verify = false
# 0 = one worker per CPU.
jobs = 0
cache = false
include = ["**/*.{js,jsx,mjs,cjs,ts,tsx}"]
exclude = ["**/node_modules/**"]

[report]
# Hide diagnostics below this level (info|warning|error).
# min_severity = "warning"
`

// ErrConfigExists is returned by WriteConfig when mend.toml is present.
var ErrConfigExists = errors.New("mend.toml already exists")

// WriteConfig writes ConfigTemplate into dir.
func WriteConfig(dir string, force bool) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, ConfigName)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return path, ErrConfigExists
		}
		return path, err
	}
	if _, err := f.WriteString(ConfigTemplate); err != nil {
		_ = f.Close()
		return path, err
	}
	return path, f.Close()
}
