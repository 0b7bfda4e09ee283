// Package config resolves cbindgen settings from a properties file, a .env
// file and the environment, in increasing order of precedence. Command line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/magiconair/properties"
	"github.com/xyproto/env/v2"

	"github.com/ardanlabs/cbindgen/generator"
)

// DefaultFile is read when no config path is given. It may be absent.
const DefaultFile = "cbindgen.properties"

type Config struct {
	Records         bool
	OpaqueThreshold int64
	Dedupe          bool
	LogLevel        string
	LogFormat       string
}

func Default() Config {
	return Config{
		Records:         false,
		OpaqueThreshold: generator.DefaultOpaqueThreshold,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load builds the configuration. An empty path falls back to DefaultFile,
// which is optional; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err == nil || explicit {
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return Config{}, fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.applyProperties(p); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyProperties(p *properties.Properties) error {
	for _, key := range p.Keys() {
		value, _ := p.Get(key)

		var err error
		switch key {
		case "records":
			c.Records, err = strconv.ParseBool(value)
		case "dedupe":
			c.Dedupe, err = strconv.ParseBool(value)
		case "opaque.threshold":
			c.OpaqueThreshold, err = strconv.ParseInt(value, 10, 64)
		case "log.level":
			c.LogLevel = value
		case "log.format":
			c.LogFormat = value
		default:
			return fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	parse := func(name string, set func(string) error) error {
		if !env.Has(name) {
			return nil
		}
		if err := set(env.Str(name)); err != nil {
			return fmt.Errorf("environment %s: %w", name, err)
		}
		return nil
	}

	if err := parse("CBINDGEN_RECORDS", func(v string) (err error) {
		c.Records, err = strconv.ParseBool(v)
		return err
	}); err != nil {
		return err
	}
	if err := parse("CBINDGEN_DEDUPE", func(v string) (err error) {
		c.Dedupe, err = strconv.ParseBool(v)
		return err
	}); err != nil {
		return err
	}
	if err := parse("CBINDGEN_OPAQUE_THRESHOLD", func(v string) (err error) {
		c.OpaqueThreshold, err = strconv.ParseInt(v, 10, 64)
		return err
	}); err != nil {
		return err
	}

	c.LogLevel = env.Str("CBINDGEN_LOG_LEVEL", c.LogLevel)
	c.LogFormat = env.Str("CBINDGEN_LOG_FORMAT", c.LogFormat)
	return nil
}

// Validate checks values that cannot be checked by type alone.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	if c.OpaqueThreshold < 0 {
		return fmt.Errorf("invalid opaque threshold %d", c.OpaqueThreshold)
	}
	return nil
}

// GeneratorOptions returns the options for the binding generator.
func (c Config) GeneratorOptions() generator.Options {
	return generator.Options{
		Records:         c.Records,
		OpaqueThreshold: c.OpaqueThreshold,
		Dedupe:          c.Dedupe,
	}
}
