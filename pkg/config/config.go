// Package config loads classgraph settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. an optional TOML file (classgraph.toml in the working directory, or
//     the path given with --config)
//  3. CLASSGRAPH_* environment variables, after loading a .env file if one
//     exists
//
// Command-line flags override the result; that last step lives in the CLI.
//
// Example file:
//
//	[build]
//	duplicates = "first-wins"
//	strict = true
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	listen = ":8080"
package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/classgraph/pkg/build"
	"github.com/matzehuels/classgraph/pkg/cache"
	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/store"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "classgraph.toml"

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the complete classgraph configuration.
type Config struct {
	Build    BuildConfig    `toml:"build"`
	Validate ValidateConfig `toml:"validate"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Server   ServerConfig   `toml:"server"`
}

type BuildConfig struct {
	Duplicates  string `toml:"duplicates"`
	Strict      bool   `toml:"strict"`
	Concurrency int    `toml:"concurrency"`
}

type ValidateConfig struct {
	MaxPathNodes int `toml:"max_path_nodes"`
	TopN         int `toml:"top_n"`
}

type CacheConfig struct {
	Backend string      `toml:"backend"` // file, redis or none
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type StoreConfig struct {
	Backend       string `toml:"backend"` // file or mongo
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

type ServerConfig struct {
	Listen       string `toml:"listen"`
	SVGCacheSize int    `toml:"svg_cache_size"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Build:    BuildConfig{Duplicates: string(build.LastWins)},
		Validate: ValidateConfig{MaxPathNodes: validate.DefaultMaxPathNodes, TopN: validate.DefaultTopN},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{cache.DefaultTTL},
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "classgraph:"},
		},
		Store:  StoreConfig{Backend: BackendFile, MongoDatabase: "classgraph"},
		Server: ServerConfig{Listen: ":8080", SVGCacheSize: 64},
	}
}

// Load reads the configuration. An empty path uses DefaultFile if it
// exists; an explicit path must exist. Unknown keys in the file are errors.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeConfig, err, "load .env")
	}

	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeConfig, err, "read %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from CLASSGRAPH_* variables read with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv("CLASSGRAPH_" + name)); v != "" {
			*dst = v
		}
	}
	str("DUPLICATES", &c.Build.Duplicates)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &c.Cache.Redis.Password)
	str("STORE_BACKEND", &c.Store.Backend)
	str("STORE_DIR", &c.Store.Dir)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DATABASE", &c.Store.MongoDatabase)
	str("LISTEN", &c.Server.Listen)

	if v := strings.TrimSpace(getenv("CLASSGRAPH_CACHE_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfig, err, "CLASSGRAPH_CACHE_TTL")
		}
		c.Cache.TTL.Duration = d
	}
	if v := strings.TrimSpace(getenv("CLASSGRAPH_STRICT")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfig, err, "CLASSGRAPH_STRICT")
		}
		c.Build.Strict = b
	}
	return nil
}

// Check reports an unknown backend name or duplicate policy.
func (c *Config) Check() error {
	if _, err := build.ParseDuplicatePolicy(c.Build.Duplicates); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "build.duplicates")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeConfig, "cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeConfig, "store.backend: unknown backend %q (want file or mongo)", c.Store.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeConfig, "cache.ttl must not be negative")
	}
	return nil
}

// Open creates the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open redis cache")
		}
		return rc, nil
	default:
		dir := c.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeCache, err, "open file cache")
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open file cache")
		}
		return fc, nil
	}
}

// Open creates the configured snapshot store.
func (c StoreConfig) Open(ctx context.Context) (store.Store, error) {
	if c.Backend == BackendMongo {
		return store.NewMongoStore(ctx, store.MongoConfig{URI: c.MongoURI, Database: c.MongoDatabase})
	}
	return store.NewFileStore(c.Dir)
}
