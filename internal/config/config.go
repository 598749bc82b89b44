// Package config holds the settings id3print uses when writing tags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"honnef.co/go/audiotag/id3"
)

type Config struct {
	Version       int
	Separator     string
	NullSeparator bool
	Unsynchronise bool
	// MaxPadding caps the padding written after a tag. Zero means no
	// limit.
	MaxPadding int64
	// V1 is one of "update", "remove" or "create".
	V1 string
}

func Default() Config {
	return Config{
		Version:   4,
		Separator: "/",
		V1:        "update",
	}
}

func (c *Config) Validate() error {
	if c.Version != 3 && c.Version != 4 {
		return fmt.Errorf("version must be 3 or 4, not %d", c.Version)
	}
	if c.Separator == "" {
		return fmt.Errorf("separator must not be empty")
	}
	if c.MaxPadding < 0 {
		return fmt.Errorf("max padding must not be negative")
	}
	if _, err := c.v1Mode(); err != nil {
		return err
	}
	return nil
}

func (c *Config) v1Mode() (id3.V1Mode, error) {
	switch c.V1 {
	case "", "update":
		return id3.V1Update, nil
	case "remove":
		return id3.V1Remove, nil
	case "create":
		return id3.V1Create, nil
	default:
		return 0, fmt.Errorf("unknown ID3v1 mode %q", c.V1)
	}
}

// SaveOptions converts the configuration to the options id3.Save
// expects.
func (c *Config) SaveOptions() (*id3.SaveOptions, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mode, _ := c.v1Mode()
	opts := &id3.SaveOptions{
		Version:          c.Version,
		V23Separator:     c.Separator,
		V23NullSeparator: c.NullSeparator,
		Unsynchronise:    c.Unsynchronise,
		V1:               mode,
	}
	if limit := c.MaxPadding; limit > 0 {
		opts.Padding = func(info id3.PaddingInfo) int64 {
			return min(info.DefaultPadding(), limit)
		}
	}
	return opts, nil
}

// FileConfig is the TOML representation of Config. Unset fields keep
// their defaults.
type FileConfig struct {
	Version       int    `toml:"version"`
	Separator     string `toml:"separator"`
	NullSeparator *bool  `toml:"null_separator"`
	Unsynchronise *bool  `toml:"unsynchronise"`
	MaxPadding    int64  `toml:"max_padding"`
	V1            string `toml:"v1"`
}

func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/audiotag/config.toml or
// its platform equivalent, or the empty string if there is none.
func DefaultConfigPath() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "audiotag", "config.toml")
	}
	return ""
}

// ApplyFileConfig copies the values set in fc to cfg, unless the
// corresponding flag was set on the command line.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	if fc.Version != 0 && !changed["version"] {
		cfg.Version = fc.Version
	}
	if fc.Separator != "" && !changed["separator"] {
		cfg.Separator = fc.Separator
	}
	if fc.NullSeparator != nil && !changed["null-separator"] {
		cfg.NullSeparator = *fc.NullSeparator
	}
	if fc.Unsynchronise != nil && !changed["unsynchronise"] {
		cfg.Unsynchronise = *fc.Unsynchronise
	}
	if fc.MaxPadding > 0 && !changed["max-padding"] {
		cfg.MaxPadding = fc.MaxPadding
	}
	if fc.V1 != "" && !changed["v1"] {
		cfg.V1 = fc.V1
	}
}

func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
