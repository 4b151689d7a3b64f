// Package config holds the run settings of the interpreter and loads them
// from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sarchlab/stackvm/core"
	"github.com/sarchlab/stackvm/program"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for config files that are neither YAML nor
// TOML.
var ErrUnknownFormat = errors.New("unknown config format")

// Config controls how a program is validated and run.
type Config struct {
	// Entry is the label execution starts at.
	Entry string `yaml:"entry" toml:"entry"`
	// Trace enables per-instruction state logging.
	Trace bool `yaml:"trace" toml:"trace"`
	// Dump selects the final stack report: line, table or none.
	Dump core.DumpFormat `yaml:"dump" toml:"dump"`
	// Advisories prints validator warnings before the run.
	Advisories bool `yaml:"advisories" toml:"advisories"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Entry:      program.DefaultEntry,
		Dump:       core.DumpLine,
		Advisories: true,
	}
}

// Load reads path on top of Default. The format is picked by extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &c)
		if err != nil {
			return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("parse error in %s: unknown key %q",
				path, undecoded[0].String())
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Validate checks the values a file or flag may have set.
func (c Config) Validate() error {
	if c.Entry == "" {
		return errors.New("entry label must not be empty")
	}

	switch c.Dump {
	case core.DumpLine, core.DumpTable, core.DumpNone:
	default:
		return fmt.Errorf("unknown dump format %q", c.Dump)
	}

	return nil
}
