// Package config loads docket workspace configuration from
// .docket/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the config file name inside the workspace directory.
const FileName = "config.toml"

// Config is the workspace configuration. Every field has a working
// default; a missing config file is not an error.
type Config struct {
	// Color controls styled output: "auto" (default), "always", or "never".
	Color string `toml:"color"`

	// Editor overrides $EDITOR for `docket edit`.
	Editor string `toml:"editor"`

	// TemplatesDir overrides the workspace templates directory. Relative
	// paths resolve against the .docket directory.
	TemplatesDir string `toml:"templates_dir"`

	// DefaultExpandTags are tag template names (without the `+` prefix)
	// applied to every new task that carries no `+` directive of its own.
	DefaultExpandTags []string `toml:"default_expand_tags"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Color: "auto",
	}
}

// Load reads the config file from the workspace root, falling back to
// defaults when it does not exist.
func Load(root string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveTemplatesDir returns the effective templates directory for a
// workspace rooted at root.
func (c *Config) ResolveTemplatesDir(root string) string {
	dir := c.TemplatesDir
	if dir == "" {
		return filepath.Join(root, "templates")
	}
	if !filepath.IsAbs(dir) {
		return filepath.Join(root, dir)
	}
	return dir
}

// Write saves the config to the workspace root. Used by `docket init` to
// seed a commented starting point.
func Write(root string, cfg *Config) error {
	f, err := os.Create(filepath.Join(root, FileName))
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
