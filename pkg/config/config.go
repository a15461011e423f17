// Package config loads and validates couplint configuration. Files may be
// TOML, YAML or JSON; unrecognized keys are ignored so configs survive
// version skew in both directions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for couplint.
type Config struct {
	// Analysis toggles individual detection layers.
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Thresholds for the detection rules.
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Detection tunes what the collectors look for.
	Detection DetectionConfig `koanf:"detection" toml:"detection"`

	// Exclude defines file exclusion patterns.
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output controls report formatting.
	Output OutputConfig `koanf:"output" toml:"output"`

	// Workers is the parallel file worker count; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers"`
}

// AnalysisConfig controls which detection layers run.
type AnalysisConfig struct {
	Connascence bool `koanf:"connascence" toml:"connascence"`
	Safety      bool `koanf:"safety" toml:"safety"`
	GodObjects  bool `koanf:"god_objects" toml:"god_objects"`
	Duplicates  bool `koanf:"duplicates" toml:"duplicates"`
}

// ThresholdConfig defines detection thresholds.
type ThresholdConfig struct {
	ParameterThreshold    int `koanf:"parameter_threshold" toml:"parameter_threshold"`
	ParameterCritical     int `koanf:"parameter_critical" toml:"parameter_critical"`
	GodObjectMethods      int `koanf:"god_object_method_threshold" toml:"god_object_method_threshold"`
	GodObjectLOC          int `koanf:"god_object_loc_threshold" toml:"god_object_loc_threshold"`
	GlobalVarThreshold    int `koanf:"global_var_threshold" toml:"global_var_threshold"`
	FunctionLineCeiling   int `koanf:"function_line_ceiling" toml:"function_line_ceiling"`
	AssertDensityMinLines int `koanf:"assert_density_min_lines" toml:"assert_density_min_lines"`
}

// DetectionConfig tunes the collectors and rule selection.
type DetectionConfig struct {
	// AllowedNumbers and AllowedStrings extend the self-evident literal
	// allowlist.
	AllowedNumbers []string `koanf:"allowed_numbers" toml:"allowed_numbers"`
	AllowedStrings []string `koanf:"allowed_strings" toml:"allowed_strings"`

	// BlockingCallNames are call names treated as blocking operations.
	BlockingCallNames []string `koanf:"blocking_call_names" toml:"blocking_call_names"`

	// SafetyRulesEnabled restricts safety checking to these rule ids.
	// Empty means all ten.
	SafetyRulesEnabled []int `koanf:"safety_rules_enabled" toml:"safety_rules_enabled"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls report formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, sarif
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Connascence: true,
			Safety:      true,
			GodObjects:  true,
			Duplicates:  true,
		},
		Thresholds: ThresholdConfig{
			ParameterThreshold:    6,
			ParameterCritical:     10,
			GodObjectMethods:      20,
			GodObjectLOC:          500,
			GlobalVarThreshold:    5,
			FunctionLineCeiling:   60,
			AssertDensityMinLines: 30,
		},
		Detection: DetectionConfig{
			BlockingCallNames: []string{"sleep", "Sleep", "usleep", "nanosleep", "delay", "wait_for"},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.go",
				"*_test.py",
				"test_*.py",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
				"__pycache__",
				".venv",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file and validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard locations or returns defaults.
func LoadOrDefault() *Config {
	names := []string{
		"couplint.toml",
		"couplint.yaml",
		"couplint.yml",
		"couplint.json",
		".couplint.toml",
		".couplint.yaml",
		".couplint.yml",
		".couplint.json",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}

// Validate rejects configurations that cannot produce meaningful analysis.
// This runs before any file is touched; a bad config is the one fatal error
// class in the pipeline.
func (c *Config) Validate() error {
	t := c.Thresholds
	checks := []struct {
		name  string
		value int
	}{
		{"thresholds.parameter_threshold", t.ParameterThreshold},
		{"thresholds.parameter_critical", t.ParameterCritical},
		{"thresholds.god_object_method_threshold", t.GodObjectMethods},
		{"thresholds.god_object_loc_threshold", t.GodObjectLOC},
		{"thresholds.global_var_threshold", t.GlobalVarThreshold},
		{"thresholds.function_line_ceiling", t.FunctionLineCeiling},
		{"thresholds.assert_density_min_lines", t.AssertDensityMinLines},
	}
	for _, chk := range checks {
		if chk.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", chk.name, chk.value)
		}
	}
	if t.ParameterCritical <= t.ParameterThreshold {
		return fmt.Errorf("thresholds.parameter_critical (%d) must exceed thresholds.parameter_threshold (%d)",
			t.ParameterCritical, t.ParameterThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	for _, id := range c.Detection.SafetyRulesEnabled {
		if id < 1 || id > 10 {
			return fmt.Errorf("detection.safety_rules_enabled contains %d; rule ids run 1 through 10", id)
		}
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "sarif":
	default:
		return fmt.Errorf("output.format %q is not one of text, json, markdown, sarif", c.Output.Format)
	}
	return nil
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
