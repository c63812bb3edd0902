// Package config handles the gir2go project file (TOML or YAML).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// Config represents a gir2go project configuration.
type Config struct {
	Package    Package           `toml:"package" yaml:"package"`
	Source     Source            `toml:"source" yaml:"source"`
	Generation Generation        `toml:"generation" yaml:"generation"`
	Cgo        Cgo               `toml:"cgo" yaml:"cgo"`
	Imports    map[string]string `toml:"imports" yaml:"imports"`

	// Dir is the directory containing the project file (set at load time).
	Dir string `toml:"-" yaml:"-"`
}

// Package configures the generated Go package.
type Package struct {
	Name   string `toml:"name" yaml:"name"`
	Output string `toml:"output" yaml:"output"`
}

// Source configures where GIR files are read from.
type Source struct {
	Gir         string   `toml:"gir" yaml:"gir"`
	IncludeDirs []string `toml:"include-dirs" yaml:"include-dirs"`
	// Input optionally names a file listing the records and functions to generate.
	Input string `toml:"input" yaml:"input"`
}

// Generation tunes what is generated.
type Generation struct {
	TargetVersion string   `toml:"target-version" yaml:"target-version"`
	Denylist      []string `toml:"denylist" yaml:"denylist"`
	DenylistFile  string   `toml:"denylist-file" yaml:"denylist-file"`
	Verbatim      []string `toml:"verbatim-constants" yaml:"verbatim-constants"`
	Workers       int      `toml:"workers" yaml:"workers"`
}

// Cgo configures the preamble of every generated file.
type Cgo struct {
	PkgConfig []string `toml:"pkg-config" yaml:"pkg-config"`
	Includes  []string `toml:"includes" yaml:"includes"`
}

// Default returns the configuration used when no project file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load parses the project file under the given path. The format is chosen by
// extension: .yaml and .yml are YAML, anything else is TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a project file of the format named by ext.
func Parse(data []byte, ext string) (*Config, error) {
	var c Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	default:
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Package.Name == "" {
		c.Package.Name = "gir"
	}
	if c.Package.Output == "" {
		c.Package.Output = "./output/"
	}
	if c.Generation.Workers <= 0 {
		c.Generation.Workers = 4
	}
	if c.Imports == nil {
		c.Imports = make(map[string]string)
	}
}

func (c *Config) validate() error {
	if c.Generation.TargetVersion != "" {
		if _, err := version.NewVersion(c.Generation.TargetVersion); err != nil {
			return fmt.Errorf("invalid target-version %q: %w", c.Generation.TargetVersion, err)
		}
	}
	return nil
}

// TargetVersion returns the parsed target version, or nil when every version is accepted.
func (c *Config) TargetVersion() *version.Version {
	if c.Generation.TargetVersion == "" {
		return nil
	}
	v, err := version.NewVersion(c.Generation.TargetVersion)
	if err != nil {
		return nil
	}
	return v
}

// Resolve makes a path from the project file relative to the file's directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}
