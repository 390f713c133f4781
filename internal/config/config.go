package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend describes one configured summarization endpoint. Backends are
// tried in ascending Priority order until one succeeds.
type Backend struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"` // "openai" or "ollama"
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Priority int    `yaml:"priority"`
	Enabled  bool   `yaml:"enabled"`
}

// Config holds all runtime configuration for a filetriage run.
type Config struct {
	TargetRoot string
	LogFormat  string // "text" or "json"
	Debug      bool
	DryRun     bool
	Move       bool // move instead of copy

	LogDir     string // transfer session documents
	ResultFile string // concurrent result store

	Workers        int           `yaml:"workers"`
	FileTimeout    time.Duration `yaml:"-"`
	FileTimeoutSec int           `yaml:"file_timeout_seconds"`
	ExtractLength  int           `yaml:"extract_length"`
	SummaryLength  int           `yaml:"summary_length"`
	MaxDepth       int           `yaml:"max_depth"`

	Backends []Backend `yaml:"backends"`
	// Rules maps a directory name to a free-text hint shown to the backend
	// when that directory is among the candidates.
	Rules map[string]string `yaml:"rules"`
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Workers        int               `yaml:"workers"`
	FileTimeoutSec int               `yaml:"file_timeout_seconds"`
	ExtractLength  int               `yaml:"extract_length"`
	SummaryLength  int               `yaml:"summary_length"`
	MaxDepth       int               `yaml:"max_depth"`
	LogDir         string            `yaml:"log_dir"`
	ResultFile     string            `yaml:"result_file"`
	Backends       []Backend         `yaml:"backends"`
	Rules          map[string]string `yaml:"rules"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Flag-bound fields already set keep their values; zero fields take the
// file's values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if c.Workers == 0 {
		c.Workers = yc.Workers
	}
	if c.FileTimeoutSec == 0 {
		c.FileTimeoutSec = yc.FileTimeoutSec
	}
	if c.ExtractLength == 0 {
		c.ExtractLength = yc.ExtractLength
	}
	if c.SummaryLength == 0 {
		c.SummaryLength = yc.SummaryLength
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = yc.MaxDepth
	}
	if c.LogDir == "" {
		c.LogDir = yc.LogDir
	}
	if c.ResultFile == "" {
		c.ResultFile = yc.ResultFile
	}
	c.Backends = yc.Backends
	c.Rules = yc.Rules
	return c.validateBackends()
}

// ApplyDefaults fills unset fields with working defaults and derives
// FileTimeout from FileTimeoutSec.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.FileTimeoutSec <= 0 {
		c.FileTimeoutSec = 180
	}
	if c.ExtractLength <= 0 {
		c.ExtractLength = 2000
	}
	if c.SummaryLength <= 0 {
		c.SummaryLength = 150
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 10
	}
	if c.LogDir == "" {
		c.LogDir = "transfer_logs"
	}
	if c.ResultFile == "" {
		c.ResultFile = "organize_results.json"
	}
	c.FileTimeout = time.Duration(c.FileTimeoutSec) * time.Second
}

// validateBackends checks backend kinds and orders the list by priority.
func (c *Config) validateBackends() error {
	for _, b := range c.Backends {
		switch b.Kind {
		case "openai", "ollama":
		default:
			return fmt.Errorf("unknown backend kind %q for backend %q", b.Kind, b.Name)
		}
		if b.BaseURL == "" {
			return fmt.Errorf("backend %q has no base_url", b.Name)
		}
	}
	sort.SliceStable(c.Backends, func(i, j int) bool {
		return c.Backends[i].Priority < c.Backends[j].Priority
	})
	return nil
}

// EnabledBackends returns the enabled backends in priority order.
func (c *Config) EnabledBackends() []Backend {
	var out []Backend
	for _, b := range c.Backends {
		if b.Enabled {
			out = append(out, b)
		}
	}
	return out
}

// Validate checks required fields for classify/organize commands.
func (c *Config) Validate() error {
	if c.TargetRoot == "" {
		return fmt.Errorf("--target is required")
	}
	info, err := os.Stat(c.TargetRoot)
	if err != nil {
		return fmt.Errorf("target root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target root %s is not a directory", c.TargetRoot)
	}
	return nil
}
