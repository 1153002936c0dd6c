// Package config resolves server settings from flags, environment and defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Photo backends.
const (
	PhotoBackendDB    = "db"
	PhotoBackendMinio = "minio"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds everything the server needs to start.
type Config struct {
	DBPath        string
	Addr          string
	AdminUser     string
	AdminPassword string
	LogPath       string
	JWTSecret     string

	PhotoBackend   string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	Cache         string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Usage is printed for -h.
const Usage = `Usage: lostfound [flags]

Flags:
  -d, -db <path>          SQLite database path (default: lostfound.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Every flag can also be set with the matching LOSTFOUND_* environment
variable. A .env file in the working directory is loaded when present.
`

// LoadDotEnv loads path into the process environment if the file exists.
// Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load parses args over the environment read through getenv. It returns
// flag.ErrHelp when help was requested.
func Load(args []string, getenv func(string) string, usage io.Writer) (*Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		AdminPassword:  getenv("LOSTFOUND_ADMIN_PASSWORD"),
		JWTSecret:      getenv("LOSTFOUND_JWT_SECRET"),
		PhotoBackend:   env("LOSTFOUND_PHOTO_BACKEND", PhotoBackendDB),
		MinioEndpoint:  getenv("LOSTFOUND_MINIO_ENDPOINT"),
		MinioAccessKey: getenv("LOSTFOUND_MINIO_ACCESS_KEY"),
		MinioSecretKey: getenv("LOSTFOUND_MINIO_SECRET_KEY"),
		MinioBucket:    env("LOSTFOUND_MINIO_BUCKET", "lostfound"),
		MinioPublicURL: getenv("LOSTFOUND_MINIO_PUBLIC_URL"),
		Cache:          env("LOSTFOUND_CACHE", CacheMemory),
		RedisAddr:      env("LOSTFOUND_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("LOSTFOUND_REDIS_PASSWORD"),
	}

	var err error
	if cfg.MinioUseSSL, err = parseBool("LOSTFOUND_MINIO_USE_SSL", getenv("LOSTFOUND_MINIO_USE_SSL")); err != nil {
		return nil, err
	}
	if v := getenv("LOSTFOUND_REDIS_DB"); v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("LOSTFOUND_REDIS_DB: %w", err)
		}
	}
	cfg.CacheTTL = 5 * time.Minute
	if v := getenv("LOSTFOUND_CACHE_TTL"); v != "" {
		if cfg.CacheTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("LOSTFOUND_CACHE_TTL: %w", err)
		}
	}

	fs := flag.NewFlagSet("lostfound", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.Usage = func() { fmt.Fprint(usage, Usage) }

	dbPath := env("LOSTFOUND_DB", "lostfound.sqlite3")
	fs.StringVar(&cfg.DBPath, "db", dbPath, "")
	fs.StringVar(&cfg.DBPath, "d", dbPath, "")

	addr := env("LOSTFOUND_ADDR", ":8080")
	fs.StringVar(&cfg.Addr, "addr", addr, "")
	fs.StringVar(&cfg.Addr, "a", addr, "")

	adminUser := env("LOSTFOUND_ADMIN_USER", "admin")
	fs.StringVar(&cfg.AdminUser, "user", adminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", adminUser, "")

	logPath := getenv("LOSTFOUND_LOG")
	fs.StringVar(&cfg.LogPath, "log", logPath, "")
	fs.StringVar(&cfg.LogPath, "l", logPath, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.PhotoBackend {
	case PhotoBackendDB:
	case PhotoBackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return errors.New("minio photo backend needs LOSTFOUND_MINIO_ENDPOINT, _ACCESS_KEY and _SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown photo backend %q", c.PhotoBackend)
	}

	switch c.Cache {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache %q", c.Cache)
	}
	return nil
}

func parseBool(key, v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
