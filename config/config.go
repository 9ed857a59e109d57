package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr         string   `json:"listen_addr" env:"LISTEN_ADDR"`
	DBDriver           string   `json:"db_driver" env:"DB_DRIVER"`
	DBDSN              string   `json:"db_dsn" env:"DB_DSN"`
	SeedOnStart        bool     `json:"seed_on_start" env:"SEED_ON_START"`
	LogLevel           string   `json:"log_level" env:"LOG_LEVEL"`
	LogFormat          string   `json:"log_format" env:"LOG_FORMAT"`
	CORSOrigins        []string `json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	ShutdownTimeoutSec int      `json:"shutdown_timeout_sec" env:"SHUTDOWN_TIMEOUT_SEC"`
}

const (
	EnvPrefix         = "LOTQC_"
	defaultConfigPath = "./lotqc_config.json"
	defaultEnvFile    = ".env"
)

var (
	cfg Config
	mu  sync.RWMutex
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		ListenAddr:         ":5000",
		DBDriver:           "sqlite3",
		DBDSN:              "./lots.db?_journal_mode=WAL&_busy_timeout=5000",
		SeedOnStart:        true,
		LogLevel:           "info",
		LogFormat:          "console",
		CORSOrigins:        []string{"*"},
		ShutdownTimeoutSec: 10,
	}
}

// LoadConfig reads .env, the JSON config file (LOTQC_CONFIG or
// ./lotqc_config.json) and LOTQC_* variables, in that order of increasing
// precedence, and stores the result for GetConfig.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", defaultEnvFile, err)
	}

	path := os.Getenv(EnvPrefix + "CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	loaded, err := LoadFrom(path, nil)
	if err != nil {
		return Config{}, err
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()
	return loaded, nil
}

// LoadFrom layers the JSON file at path (missing file is fine) and the
// environment over Default. A nil environ means the process environment.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	c := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(file, &c); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return Config{}, err
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if c.ShutdownTimeoutSec <= 0 {
		c.ShutdownTimeoutSec = 10
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "sqlite", "pgx":
		if c.DBDSN == "" {
			return fmt.Errorf("db_dsn is required for driver %s", c.DBDriver)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported db_driver: %q", c.DBDriver)
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log_format: %q", c.LogFormat)
	}
	return nil
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// Redacted hides credentials in the DSN for display.
func (c Config) Redacted() Config {
	out := c
	if at := strings.LastIndex(out.DBDSN, "@"); at >= 0 {
		if scheme := strings.Index(out.DBDSN, "://"); scheme >= 0 && scheme < at {
			out.DBDSN = out.DBDSN[:scheme+3] + "***" + out.DBDSN[at:]
		} else {
			out.DBDSN = "***" + out.DBDSN[at:]
		}
	}
	if i := strings.Index(out.DBDSN, "password="); i >= 0 {
		end := strings.IndexAny(out.DBDSN[i:], " &")
		if end < 0 {
			out.DBDSN = out.DBDSN[:i] + "password=***"
		} else {
			out.DBDSN = out.DBDSN[:i] + "password=***" + out.DBDSN[i+end:]
		}
	}
	return out
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
