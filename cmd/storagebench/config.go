package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	containers = []string{"vector", "ring", "sparse"}
	strategies = []string{"heap", "aligned", "fixed", "hybrid", "mmap", "arena"}
)

// Config describes one workload run.
type Config struct {
	Container   string  `yaml:"container"`
	Strategy    string  `yaml:"strategy"`
	Inline      int     `yaml:"inline"`
	Ops         int     `yaml:"ops"`
	Seed        int64   `yaml:"seed"`
	MaxLen      int     `yaml:"max_len"`
	PushRatio   float64 `yaml:"push_ratio"`
	VerifyEvery int     `yaml:"verify_every"`
	BudgetBytes int64   `yaml:"budget_bytes"`
	LogLevel    string  `yaml:"log_level"`
	Metrics     bool    `yaml:"metrics"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Container:   "vector",
		Strategy:    "heap",
		Inline:      4096,
		Ops:         100_000,
		Seed:        1,
		MaxLen:      4096,
		PushRatio:   0.55,
		VerifyEvery: 64,
		LogLevel:    "info",
		Metrics:     true,
	}
}

// LoadConfig overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(containers, c.Container) {
		errs = append(errs, fmt.Errorf("unknown container %q (want one of %s)", c.Container, strings.Join(containers, ", ")))
	}
	if !slices.Contains(strategies, c.Strategy) {
		errs = append(errs, fmt.Errorf("unknown strategy %q (want one of %s)", c.Strategy, strings.Join(strategies, ", ")))
	}
	if c.Ops < 0 {
		errs = append(errs, errors.New("ops must be >= 0"))
	}
	if c.MaxLen < 1 {
		errs = append(errs, errors.New("max_len must be >= 1"))
	}
	if c.PushRatio <= 0 || c.PushRatio >= 1 {
		errs = append(errs, errors.New("push_ratio must be in (0, 1)"))
	}
	if c.VerifyEvery < 1 {
		errs = append(errs, errors.New("verify_every must be >= 1"))
	}
	if c.BudgetBytes < 0 {
		errs = append(errs, errors.New("budget_bytes must be >= 0"))
	}
	if c.Strategy == "fixed" && c.Inline < c.MaxLen {
		errs = append(errs, fmt.Errorf("fixed strategy needs inline >= max_len (%d < %d)", c.Inline, c.MaxLen))
	}
	if c.Strategy == "hybrid" && c.Inline < 0 {
		errs = append(errs, errors.New("inline must be >= 0"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return l, nil
}
