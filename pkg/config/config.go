// Package config loads distindex configuration from TOML or YAML files.
//
// A configuration has one section per concern:
//
//	[index]
//	rebuild = false
//	key_prefix = "staging:"
//
//	[search]
//	quality = "balanced"
//	max_states = 200000
//	timeout = "5s"
//
//	[cluster]
//	workers = 8
//	optimistic = false
//
//	[store]
//	backend = "badger"
//	ttl = "168h"
//	[store.badger]
//	path = "/var/lib/distindex"
//
//	[log]
//	level = "info"
//
// Fields left out keep their [Default] values.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/distindex/internal/logging"
	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/search"
	"github.com/matzehuels/distindex/pkg/store"
)

// Config is the complete configuration.
type Config struct {
	Index   IndexConfig   `toml:"index" yaml:"index"`
	Search  SearchConfig  `toml:"search" yaml:"search"`
	Cluster ClusterConfig `toml:"cluster" yaml:"cluster"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// IndexConfig controls how indexes are obtained.
type IndexConfig struct {
	// Rebuild ignores stored snapshots and always builds.
	Rebuild bool `toml:"rebuild" yaml:"rebuild"`
	// KeyPrefix scopes snapshot keys, so deployments can share a store.
	KeyPrefix string `toml:"key_prefix" yaml:"key_prefix"`
}

// SearchConfig sets the default search budget.
type SearchConfig struct {
	// Quality is "fast", "balanced" or "thorough".
	Quality string `toml:"quality" yaml:"quality"`
	// MaxStates overrides the quality preset's state budget when positive.
	MaxStates int `toml:"max_states" yaml:"max_states"`
	// Timeout overrides the quality preset's time limit when positive.
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`
}

// ClusterConfig sets the clusterer defaults.
type ClusterConfig struct {
	// Workers bounds the goroutines computing pairwise rows; zero uses
	// GOMAXPROCS.
	Workers    int  `toml:"workers" yaml:"workers"`
	Optimistic bool `toml:"optimistic" yaml:"optimistic"`
}

// StoreConfig selects and configures the snapshot store.
type StoreConfig struct {
	// Backend is "null", "file", "redis", "badger" or "mongo".
	Backend string `toml:"backend" yaml:"backend"`
	// TTL is the lifetime of stored snapshots; zero keeps them forever.
	TTL time.Duration `toml:"ttl" yaml:"ttl"`

	File   FileConfig         `toml:"file" yaml:"file"`
	Redis  store.RedisConfig  `toml:"redis" yaml:"redis"`
	Badger store.BadgerConfig `toml:"badger" yaml:"badger"`
	Mongo  store.MongoConfig  `toml:"mongo" yaml:"mongo"`
}

// FileConfig configures the file backend.
type FileConfig struct {
	// Dir is the snapshot directory. Empty uses ~/.cache/distindex/snapshots.
	Dir string `toml:"dir" yaml:"dir"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Backend names accepted in [StoreConfig].
const (
	BackendNull   = "null"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendMongo  = "mongo"
)

// Default returns the configuration used when no file is given: file
// snapshots kept for a week and balanced searches.
func Default() Config {
	return Config{
		Search: SearchConfig{Quality: search.QualityBalanced.String()},
		Store: StoreConfig{
			Backend: BackendFile,
			TTL:     7 * 24 * time.Hour,
			Mongo:   store.MongoConfig{Database: "distindex", Collection: "snapshots"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a configuration file over [Default]. Files ending in .yaml or
// .yml are YAML; everything else is TOML. Unknown keys are rejected.
func Load(path string) (Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component accepts.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}
	if _, ok := search.ParseQuality(c.Search.Quality); !ok {
		return invalid("unknown search quality %q", c.Search.Quality)
	}
	if c.Search.MaxStates < 0 {
		return invalid("search.max_states must not be negative: %d", c.Search.MaxStates)
	}
	if c.Search.Timeout < 0 {
		return invalid("search.timeout must not be negative: %s", c.Search.Timeout)
	}
	if c.Cluster.Workers < 0 {
		return invalid("cluster.workers must not be negative: %d", c.Cluster.Workers)
	}
	if c.Store.TTL < 0 {
		return invalid("store.ttl must not be negative: %s", c.Store.TTL)
	}
	switch c.Store.Backend {
	case BackendNull, BackendFile:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return invalid("store.redis.addr is required for the redis backend")
		}
	case BackendBadger:
		if !c.Store.Badger.InMemory && c.Store.Badger.Path == "" {
			return invalid("store.badger.path is required unless in_memory is set")
		}
	case BackendMongo:
		if c.Store.Mongo.URI == "" {
			return invalid("store.mongo.uri is required for the mongo backend")
		}
	default:
		return invalid("unknown store backend %q", c.Store.Backend)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// SearchOptions converts the search section into searcher options.
func (c Config) SearchOptions() []search.Option {
	q, _ := search.ParseQuality(c.Search.Quality)
	return []search.Option{
		search.WithQuality(q),
		search.WithMaxStates(c.Search.MaxStates),
		search.WithTimeout(c.Search.Timeout),
	}
}
