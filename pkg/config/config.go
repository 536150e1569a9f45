// Package config loads qivalidate settings from a TOML file.
//
// The file is looked up in this order, first hit wins:
//
//  1. the path passed to [Load] (the --config flag)
//  2. $QIVALIDATE_CONFIG
//  3. $XDG_CONFIG_HOME/qivalidate/config.toml
//  4. ~/.config/qivalidate/config.toml
//
// A missing file is not an error unless it was named explicitly; the
// defaults from [Default] apply. Unknown keys are rejected so typos do not
// pass silently.
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/qivalidate/pkg/coloring"
	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/qi"
)

// AppName names the config, cache and data directories.
const AppName = "qivalidate"

// EnvConfig overrides the config file location.
const EnvConfig = "QIVALIDATE_CONFIG"

// Backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
	BackendMongo = "mongo"
)

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

// Config is the full configuration.
type Config struct {
	Seed        uint64 `toml:"seed"`
	ExactLimit  int    `toml:"exact_limit"`
	Oracle      string `toml:"oracle"`
	OracleFirst bool   `toml:"oracle_first"`
	Concurrency int    `toml:"concurrency"`

	Cache   CacheConfig   `toml:"cache"`
	Reports ReportsConfig `toml:"reports"`
	Server  ServerConfig  `toml:"server"`

	// path is the file the config was read from, empty for defaults.
	path string
}

// CacheConfig selects the qi-result cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// ReportsConfig selects the report store.
type ReportsConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures "qivalidate serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
	// GraphDir is where POST /v1/validate resolves graph paths.
	GraphDir string `toml:"graph_dir"`
	// RequestTimeout bounds one API request.
	RequestTimeout Duration `toml:"request_timeout"`
	// MaxVertices caps the graphs the API accepts.
	MaxVertices int `toml:"max_vertices"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Seed:        42,
		ExactLimit:  qi.DefaultExactLimit,
		Oracle:      coloring.NameDsatur,
		Concurrency: 4,
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Reports: ReportsConfig{
			Backend:  BackendFile,
			MongoURI: "mongodb://localhost:27017",
			Database: AppName,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			GraphDir:       ".",
			RequestTimeout: Duration{5 * time.Minute},
			MaxVertices:    2000,
		},
	}
}

// Load reads the configuration. path may be empty.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = defaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string { return c.path }

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := coloring.ByName(c.Oracle); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "oracle")
	}
	if c.ExactLimit < 1 || c.ExactLimit > 64 {
		return errors.New(errors.ErrCodeInvalidConfig, "exact_limit must be in [1, 64], got %d", c.ExactLimit)
	}
	if c.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	switch c.Reports.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Reports.MongoURI == "" || c.Reports.Database == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "reports.mongo_uri and reports.database are required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "reports.backend must be file or mongo, got %q", c.Reports.Backend)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if c.Server.MaxVertices < 1 || c.Server.MaxVertices > graph.MaxVertices {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_vertices must be in [1, %d], got %d", graph.MaxVertices, c.Server.MaxVertices)
	}
	return nil
}

// Engine builds the qi engine the config describes.
func (c *Config) Engine() (*qi.Engine, error) {
	e, err := qi.NewEngine(c.Oracle, c.ExactLimit)
	if err != nil {
		return nil, err
	}
	e.OracleFirst = c.OracleFirst
	return e, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// =============================================================================
// Paths
// =============================================================================

func defaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}

// CacheDir returns cache.dir, defaulting to $XDG_CACHE_HOME/qivalidate or
// ~/.cache/qivalidate.
func (c *Config) CacheDir() (string, error) {
	return xdgDir(c.Cache.Dir, "XDG_CACHE_HOME", ".cache")
}

// ReportsDir returns reports.dir, defaulting to
// $XDG_DATA_HOME/qivalidate/reports or ~/.local/share/qivalidate/reports.
func (c *Config) ReportsDir() (string, error) {
	if c.Reports.Dir != "" {
		return c.Reports.Dir, nil
	}
	base, err := xdgDir("", "XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "reports"), nil
}

func xdgDir(override, env, fallback string) (string, error) {
	if override != "" {
		return override, nil
	}
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate home directory")
	}
	return filepath.Join(home, fallback, AppName), nil
}
