package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSecretKey = "dev-secret-key"
)

type Config struct {
	Server struct {
		BindAddress    string        `yaml:"bind_address"`
		Workers        int           `yaml:"workers"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	Database struct {
		Driver   string `yaml:"driver"`
		Path     string `yaml:"path"`
		URL      string `yaml:"url"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"dbname"`
	} `yaml:"database"`
	Auth struct {
		SecretKey    string        `yaml:"secret_key"`
		SessionTTL   time.Duration `yaml:"session_ttl"`
		CookieSecure bool          `yaml:"cookie_secure"`
	} `yaml:"auth"`
	LogLevel string `yaml:"log_level"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Server.BindAddress = "0.0.0.0:8000"
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Database.Driver = DriverSQLite
	cfg.Database.Path = "survey.db"
	cfg.Database.Port = "5432"
	cfg.Auth.SecretKey = DefaultSecretKey
	cfg.Auth.SessionTTL = 24 * time.Hour
	cfg.LogLevel = "info"
	return cfg
}

// Load layers the defaults, the YAML file at path (skipped when empty), a .env
// file if one exists and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("BIND_ADDRESS", &c.Server.BindAddress)
	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_PATH", &c.Database.Path)
	str("DATABASE_URL", &c.Database.URL)
	str("POSTGRES_HOST", &c.Database.Host)
	str("POSTGRES_PORT", &c.Database.Port)
	str("POSTGRES_USER", &c.Database.User)
	str("POSTGRES_PASSWORD", &c.Database.Password)
	str("POSTGRES_DB", &c.Database.Name)
	str("SECRET_KEY", &c.Auth.SecretKey)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WORKERS %q: %w", v, err)
		}
		c.Server.Workers = n
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT": &c.Server.RequestTimeout,
		"SESSION_TTL":     &c.Auth.SessionTTL,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
	}

	if v, ok := lookup("COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COOKIE_SECURE %q: %w", v, err)
		}
		c.Auth.CookieSecure = b
	}

	return nil
}

// parseDuration accepts Go durations as well as a bare number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			errs = append(errs, errors.New("DATABASE_URL or POSTGRES_HOST is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	if c.Server.BindAddress == "" {
		errs = append(errs, errors.New("bind address is required"))
	}
	if c.Server.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Server.Workers))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}

	return errors.Join(errs...)
}

// PostgresURL returns DATABASE_URL when set, otherwise a URL assembled from
// the individual connection settings.
func (c *Config) PostgresURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.SecretKey == DefaultSecretKey
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
