// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/geoconv/internal/convert"
	"github.com/woozymasta/geoconv/internal/geo"
)

// Config represents the root configuration file structure.
type Config struct {
	Defaults Defaults `yaml:"defaults,omitempty"`
	Jobs     []Job    `yaml:"jobs"`
	MaxDepth int      `yaml:"max_depth,omitempty"`
}

// Defaults apply to every job that leaves a field unset.
type Defaults struct {
	From     string      `yaml:"from,omitempty"`
	To       string      `yaml:"to,omitempty"`
	GPXMode  geo.GPXMode `yaml:"gpx_mode,omitempty"`
	OutDir   string      `yaml:"out_dir,omitempty"`
	Hex      bool        `yaml:"hex,omitempty"`
	Document bool        `yaml:"document,omitempty"`
	Minify   bool        `yaml:"minify,omitempty"`
}

// Job represents a single conversion.
type Job struct {
	// pointers tell "false" apart from "not set" so defaults can apply
	Hex      *bool `yaml:"hex,omitempty"`
	Document *bool `yaml:"document,omitempty"`
	Minify   *bool `yaml:"minify,omitempty"`

	Name    string      `yaml:"name"`
	Source  string      `yaml:"source,omitempty"` // local path or http(s) URL
	Inline  string      `yaml:"inline,omitempty"` // document text given directly in the config
	From    string      `yaml:"from,omitempty"`   // empty means sniff
	To      string      `yaml:"to,omitempty"`
	Output  string      `yaml:"output,omitempty"`
	GPXMode geo.GPXMode `yaml:"gpx_mode,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path,
// then fills job fields from the defaults and validates them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrap(err, "parse yaml")
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.MaxDepth < 0 {
		return eris.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}

	seen := make(map[string]bool, len(c.Jobs))
	for i := range c.Jobs {
		j := &c.Jobs[i]

		if j.Name == "" {
			return eris.Errorf("job %d has no name", i)
		}
		if seen[j.Name] {
			return eris.Errorf("job %q is defined twice", j.Name)
		}
		seen[j.Name] = true

		if (j.Source == "") == (j.Inline == "") {
			return eris.Errorf("job %q needs exactly one of source or inline", j.Name)
		}

		if j.From == "" {
			j.From = c.Defaults.From
		}
		if j.To == "" {
			j.To = c.Defaults.To
		}
		if j.GPXMode == "" {
			j.GPXMode = c.Defaults.GPXMode
		}
		if j.Hex == nil {
			j.Hex = &c.Defaults.Hex
		}
		if j.Document == nil {
			j.Document = &c.Defaults.Document
		}
		if j.Minify == nil {
			j.Minify = &c.Defaults.Minify
		}

		if j.From != "" {
			if _, err := convert.ParseFormat(j.From); err != nil {
				return eris.Wrapf(err, "job %q from", j.Name)
			}
		}
		to, err := convert.ParseFormat(j.To)
		if err != nil {
			return eris.Wrapf(err, "job %q to", j.Name)
		}

		if j.Output == "" {
			j.Output = j.Name + to.Ext(*j.Hex)
			if c.Defaults.OutDir != "" {
				j.Output = filepath.Join(c.Defaults.OutDir, j.Output)
			}
		}
	}
	return nil
}

// Options returns the encoder options of the job.
func (j Job) Options() convert.Options {
	return convert.Options{
		GPXMode:  j.GPXMode,
		Hex:      deref(j.Hex),
		Document: deref(j.Document),
		Minify:   deref(j.Minify),
	}
}

func deref(b *bool) bool {
	return b != nil && *b
}
