// Package config loads experiment and sweep settings from TOML, JSON or YAML.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"seasign-bias/attack"
)

// Config is the on-disk experiment description. Numeric parameter fields
// left at zero inherit the value of the named preset.
type Config struct {
	Preset string `toml:"preset" json:"preset" yaml:"preset"`
	N      int    `toml:"n" json:"n" yaml:"n"`
	B      int64  `toml:"b" json:"b" yaml:"b"`
	Delta  int64  `toml:"delta" json:"delta" yaml:"delta"`
	T      int    `toml:"t" json:"t" yaml:"t"`

	// KnownSigs is the signature count for a single run; 0 selects the
	// preset's optimal count.
	KnownSigs      int     `toml:"known_sigs" json:"known_sigs" yaml:"known_sigs"`
	BiasedFraction float64 `toml:"biased_fraction" json:"biased_fraction" yaml:"biased_fraction"`
	MaxAttempts    int     `toml:"max_attempts" json:"max_attempts" yaml:"max_attempts"`
	// Seed keys the PRNG. Empty means a system-random key.
	Seed       string `toml:"seed" json:"seed" yaml:"seed"`
	FixedKey   bool   `toml:"fixed_key" json:"fixed_key" yaml:"fixed_key"`
	SecretFile string `toml:"secret_file" json:"secret_file" yaml:"secret_file"`

	Sweep  SweepConfig  `toml:"sweep" json:"sweep" yaml:"sweep"`
	Output OutputConfig `toml:"output" json:"output" yaml:"output"`
}

// SweepConfig bounds a parameter sweep over known signature counts.
type SweepConfig struct {
	From    int `toml:"from" json:"from" yaml:"from"`
	To      int `toml:"to" json:"to" yaml:"to"` // 0 = 4 * optimal
	Step    int `toml:"step" json:"step" yaml:"step"`
	Trials  int `toml:"trials" json:"trials" yaml:"trials"`
	Workers int `toml:"workers" json:"workers" yaml:"workers"`
}

// OutputConfig names the files produced by the CLIs.
type OutputConfig struct {
	CSV   string `toml:"csv" json:"csv" yaml:"csv"`
	JSONL string `toml:"jsonl" json:"jsonl" yaml:"jsonl"`
	HTML  string `toml:"html" json:"html" yaml:"html"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Preset:         "II",
		BiasedFraction: attack.DefaultBiasedFraction,
		MaxAttempts:    1 << 20,
		Sweep: SweepConfig{
			From:   1,
			Step:   1,
			Trials: 10,
		},
		Output: OutputConfig{
			CSV:   "results/entropy_sweep.csv",
			JSONL: "results/entropy_sweep.jsonl",
			HTML:  "results/entropy_sweep.html",
		},
	}
}

// Load reads path on top of Default and validates the result. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse config (assumed TOML): %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Params resolves the preset and applies the explicit overrides.
func (c *Config) Params() (attack.Params, error) {
	p := attack.Params{Name: "custom"}
	if c.Preset != "" {
		preset, err := attack.PresetByName(c.Preset)
		if err != nil {
			return attack.Params{}, err
		}
		p = preset
	}
	overridden := false
	if c.N != 0 {
		p.N, overridden = c.N, true
	}
	if c.B != 0 {
		p.B, overridden = c.B, true
	}
	if c.Delta != 0 {
		p.Delta, overridden = c.Delta, true
	}
	if c.T != 0 {
		p.T, overridden = c.T, true
	}
	if overridden && c.Preset != "" {
		p.Name = p.Name + "*"
	}
	if err := p.Validate(); err != nil {
		return attack.Params{}, err
	}
	return p, nil
}

// Validate checks the settings that do not depend on the parameter set.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if c.BiasedFraction < 0 || c.BiasedFraction > 1 {
		return fmt.Errorf("biased_fraction must be in [0,1], got %g", c.BiasedFraction)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0")
	}
	if c.KnownSigs < 0 {
		return fmt.Errorf("known_sigs must be >= 0")
	}
	if c.FixedKey && c.SecretFile != "" {
		return fmt.Errorf("fixed_key and secret_file are mutually exclusive")
	}
	s := c.Sweep
	if s.From <= 0 || s.Step <= 0 || s.Trials <= 0 {
		return fmt.Errorf("sweep from/step/trials must be > 0")
	}
	if s.To != 0 && s.To < s.From {
		return fmt.Errorf("sweep to (%d) < from (%d)", s.To, s.From)
	}
	if s.Workers < 0 {
		return fmt.Errorf("sweep workers must be >= 0")
	}
	return nil
}

// SignatureCount returns KnownSigs or the parameter set's default.
func (c *Config) SignatureCount(p attack.Params) int {
	if c.KnownSigs > 0 {
		return c.KnownSigs
	}
	return attack.DefaultKnownSigs(p)
}

// SweepRange returns the inclusive sweep bounds for p.
func (c *Config) SweepRange(p attack.Params) (from, to, step int) {
	from, to, step = c.Sweep.From, c.Sweep.To, c.Sweep.Step
	if to == 0 {
		to = max(from, 4*p.OptimalSigs())
	}
	return from, to, step
}
