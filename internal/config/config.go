// Package config loads the strand configuration file: the stack-size
// setting, inline script source, include globs, and the entry
// expressions to drive as tasks. Files are YAML validated against an
// embedded CUE schema before decoding.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cybermatrixco/strand/internal/engine"
)

// DefaultResolverTimeoutMS is the name-resolution timeout applied
// when the configuration does not set one.
const DefaultResolverTimeoutMS = 30000

// Config is the decoded configuration file.
type Config struct {
	// StackSize bounds each task's stack budget. Zero means the
	// engine default.
	StackSize int `yaml:"stack_size,omitempty"`

	// ResolverTimeoutMS bounds each name resolution started by a
	// task.
	ResolverTimeoutMS int `yaml:"resolver_timeout_ms,omitempty"`

	// Script is inline source evaluated into the namespace at
	// startup, before any task runs.
	Script string `yaml:"script,omitempty"`

	// Include lists file globs, relative to the config file, whose
	// contents are evaluated into the namespace after Script.
	Include []string `yaml:"include,omitempty"`

	// Run lists entry expressions, each driven as its own task.
	Run []string `yaml:"run,omitempty"`

	path string
	dir  string
}

// Source is one unit of script source to load at startup.
type Source struct {
	Name string // source name used in diagnostics
	Text string
}

// Load reads, validates, and decodes the configuration at path,
// applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if cfg.StackSize == 0 {
		cfg.StackSize = engine.DefaultStackSize
	}
	if cfg.ResolverTimeoutMS == 0 {
		cfg.ResolverTimeoutMS = DefaultResolverTimeoutMS
	}
	cfg.path = path
	cfg.dir = filepath.Dir(path)

	return &cfg, nil
}

// Path returns the path the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Sources returns the startup script sources in load order: the
// inline script first, then every include glob's matches sorted by
// name. A glob that matches nothing is an error; a quietly ignored
// typo in an include line is worse than a startup failure.
func (c *Config) Sources() ([]Source, error) {
	var sources []Source

	if c.Script != "" {
		sources = append(sources, Source{Name: c.path, Text: c.Script})
	}

	for _, pattern := range c.Include {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(c.dir, pattern)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("include %q matched no files", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			text, err := os.ReadFile(m)
			if err != nil {
				return nil, fmt.Errorf("include %q: %w", pattern, err)
			}
			sources = append(sources, Source{Name: m, Text: string(text)})
		}
	}

	return sources, nil
}
