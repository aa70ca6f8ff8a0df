// Package config reads the repository configuration, glottree.yaml, found
// at the top of a Glottolog data repository:
//
//	tree: languoids/tree
//	glottocodes: languoids/glottocodes.json
//	lff:
//	  indent: 4
//	build:
//	  parallel: 4
//
// Every field is optional. Relative paths are relative to the repository.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	DefaultTree        = "languoids/tree"
	DefaultGlottocodes = "languoids/glottocodes.json"
)

// Names lists the configuration file names tried, in order.
var Names = []string{"glottree.yaml", "glottree.yml", "glottree.json"}

type LFF struct {
	Indent int    `json:"indent,omitempty"`
	Header string `json:"header,omitempty"`
}

type Build struct {
	// Parallel is the number of top-level subtrees read concurrently;
	// 0 or 1 reads sequentially.
	Parallel int `json:"parallel,omitempty"`
}

type Config struct {
	Root        string `json:"-"`
	Path        string `json:"-"`
	Tree        string `json:"tree,omitempty"`
	Glottocodes string `json:"glottocodes,omitempty"`
	LFF         LFF    `json:"lff"`
	Build       Build  `json:"build"`
}

// Default returns the configuration used for a repository at root without
// a configuration file.
func Default(root string) *Config {
	return &Config{
		Root:        root,
		Tree:        DefaultTree,
		Glottocodes: DefaultGlottocodes,
		LFF:         LFF{Indent: 4},
	}
}

// Load reads the first configuration file found in root. A repository
// without one gets the defaults.
func Load(root string) (*Config, error) {
	cfg := Default(root)
	for _, name := range Names {
		path := filepath.Join(root, name)
		d, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not read %q: %w", path, err)
		}
		if err := yaml.UnmarshalWithOptions(d, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("could not decode %s: %w", path, err)
		}
		cfg.Path = path
		break
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LFF.Indent <= 0 {
		return fmt.Errorf("lff.indent must be positive, got %d", c.LFF.Indent)
	}
	if c.Build.Parallel < 0 {
		return fmt.Errorf("build.parallel must not be negative, got %d", c.Build.Parallel)
	}
	if c.Tree == "" {
		return fmt.Errorf("tree must not be empty")
	}
	return nil
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// TreePath is the directory holding the top-level languoid directories.
func (c *Config) TreePath() string {
	return c.resolve(c.Tree)
}

// GlottocodesPath is the registry file, "" when none is configured.
func (c *Config) GlottocodesPath() string {
	if c.Glottocodes == "" {
		return ""
	}
	return c.resolve(c.Glottocodes)
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
