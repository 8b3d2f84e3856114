// Package config loads lifedb settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/andreyvit/lifedb"
	"github.com/andreyvit/lifedb/life"
)

const EnvPrefix = "LIFEDB_"

type Config struct {
	DataDir  string `yaml:"data_dir" env:"DATA_DIR"`
	Backend  string `yaml:"backend" env:"BACKEND"`   // bolt, sqlite, memory
	Encoding string `yaml:"encoding" env:"ENCODING"` // msgpack, json
	Verbose  bool   `yaml:"verbose" env:"VERBOSE"`

	Bolt BoltConfig `yaml:"bolt" envPrefix:"BOLT_"`
}

type BoltConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	NoSync  bool          `yaml:"no_sync" env:"NO_SYNC"`

	// MmapSize is the initial mmap size in bytes; 0 keeps the bbolt default.
	MmapSize int `yaml:"mmap_size" env:"MMAP_SIZE"`
}

func Default() *Config {
	return &Config{
		DataDir:  "data",
		Backend:  string(life.BoltBackend),
		Encoding: "msgpack",
		Bolt: BoltConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads path (if non-empty and present) over the defaults, then applies
// LIFEDB_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

func load(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !life.Backend(c.Backend).Valid() {
		return fmt.Errorf("invalid backend %q (valid: bolt, sqlite, memory)", c.Backend)
	}
	if _, err := lifedb.ParseEncoding(c.Encoding); err != nil {
		return err
	}
	if c.Backend != string(life.MemoryBackend) && c.DataDir == "" {
		return fmt.Errorf("data_dir is required for %s backend", c.Backend)
	}
	if c.Bolt.Timeout < 0 {
		return fmt.Errorf("bolt.timeout must not be negative")
	}
	if c.Bolt.MmapSize < 0 {
		return fmt.Errorf("bolt.mmap_size must not be negative")
	}
	return nil
}

// CatalogOptions maps the config onto life.CatalogOptions. The config must
// have been validated.
func (c *Config) CatalogOptions(logf func(format string, args ...any)) life.CatalogOptions {
	return life.CatalogOptions{
		DataDir:     c.DataDir,
		Backend:     life.Backend(c.Backend),
		Encoding:    must(lifedb.ParseEncoding(c.Encoding)),
		BoltTimeout: c.Bolt.Timeout,
		NoSync:      c.Bolt.NoSync,
		MmapSize:    c.Bolt.MmapSize,
		Logf:        logf,
		Verbose:     c.Verbose,
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
