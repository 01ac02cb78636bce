package project

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"mend/internal/diag"
)

// Default file selection.
var (
	DefaultInclude = []string{"**/*.{js,jsx,mjs,cjs,ts,tsx}"}
	DefaultExclude = []string{"**/node_modules/**"}
)

// Config mirrors mend.toml.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Run    RunConfig    `toml:"run"`
	Report ReportConfig `toml:"report"`
}

// EngineConfig is the [engine] table.
type EngineConfig struct {
	MaxPasses     int     `toml:"max_passes"`
	LookbackLines int     `toml:"lookback_lines"`
	MinConfidence float64 `toml:"min_confidence"`
}

// RunConfig is the [run] table.
type RunConfig struct {
	DryRun  bool     `toml:"dry_run"`
	Verify  bool     `toml:"verify"`
	Jobs    int      `toml:"jobs"`
	Cache   bool     `toml:"cache"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// ReportConfig is the [report] table. A nil MinSeverity leaves the choice
// to --verbose.
type ReportConfig struct {
	MinSeverity *diag.Severity `toml:"min_severity"`
}

// Manifest is a located and decoded mend.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// DefaultConfig returns the configuration used when no mend.toml exists.
// Zero engine values defer to the driver defaults.
func DefaultConfig() Config {
	return Config{
		Run: RunConfig{
			Include: append([]string(nil), DefaultInclude...),
			Exclude: append([]string(nil), DefaultExclude...),
		},
	}
}

// LoadManifest finds mend.toml above startDir and decodes it. ok is false
// when no file exists.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	configPath, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   configPath,
		Root:   filepath.Dir(configPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes path over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("engine", "max_passes") && cfg.Engine.MaxPasses <= 0 {
		return Config{}, fmt.Errorf("%s: [engine].max_passes must be positive", path)
	}
	if meta.IsDefined("engine", "lookback_lines") && cfg.Engine.LookbackLines <= 0 {
		return Config{}, fmt.Errorf("%s: [engine].lookback_lines must be positive", path)
	}
	if meta.IsDefined("engine", "min_confidence") && (cfg.Engine.MinConfidence <= 0 || cfg.Engine.MinConfidence > 1) {
		return Config{}, fmt.Errorf("%s: [engine].min_confidence must be in (0, 1]", path)
	}
	if cfg.Run.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [run].jobs must not be negative", path)
	}
	if err := ValidatePatterns(cfg.Run.Include); err != nil {
		return Config{}, fmt.Errorf("%s: [run].include: %w", path, err)
	}
	if err := ValidatePatterns(cfg.Run.Exclude); err != nil {
		return Config{}, fmt.Errorf("%s: [run].exclude: %w", path, err)
	}
	return cfg, nil
}

// ValidatePatterns rejects malformed doublestar patterns.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("bad pattern %q", p)
		}
	}
	return nil
}
