package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

const (
	DefaultPath   = "hiscore.yaml"
	DefaultListen = "127.0.0.1:5000"
	envFile       = ".env"
)

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Storage struct {
	Backend     string `yaml:"backend" env:"HISCORE_STORAGE_BACKEND"`
	BasePath    string `yaml:"base_path" env:"HISCORE_STORAGE_BASE_PATH"`
	RedisURL    string `yaml:"redis_url,omitempty" env:"HISCORE_REDIS_URL"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty" env:"HISCORE_POSTGRES_DSN"`
}

type Log struct {
	Level  string `yaml:"level" env:"HISCORE_LOG_LEVEL"`
	Format string `yaml:"format" env:"HISCORE_LOG_FORMAT"`
}

type Config struct {
	Listen        string  `yaml:"listen" env:"HISCORE_LISTEN"`
	Storage       Storage `yaml:"storage"`
	Strict        bool    `yaml:"strict" env:"HISCORE_STRICT"`
	MaxEntries    int     `yaml:"max_entries" env:"HISCORE_MAX_ENTRIES"`
	MaxNameLength int     `yaml:"max_name_length" env:"HISCORE_MAX_NAME_LENGTH"`
	MetricsAddr   string  `yaml:"metrics_addr,omitempty" env:"HISCORE_METRICS_ADDR"`
	Log           Log     `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Listen: DefaultListen,
		Storage: Storage{
			Backend:  BackendFile,
			BasePath: "hide_high_scores",
		},
		MaxEntries:    scores.DefaultMaxEntries,
		MaxNameLength: scores.DefaultMaxNameLength,
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads hiscore.yaml from the working directory.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath)
}

// LoadFrom reads the config file at path, falling back to defaults when it
// does not exist, then applies .env and HISCORE_* environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	bytes, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(bytes, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	// Values already exported in the environment win over .env.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	err := envdecode.Decode(cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	if c.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be positive, got %d", c.MaxEntries)
	}

	if c.MaxNameLength <= 0 {
		return fmt.Errorf("max_name_length must be positive, got %d", c.MaxNameLength)
	}

	if c.Storage.BasePath == "" {
		return fmt.Errorf("storage base_path cannot be empty")
	}

	switch c.Storage.Backend {
	case BackendFile:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage redis_url is required for the redis backend")
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

// WithWorkingDir places a relative file base path under dir.
func (c *Config) WithWorkingDir(dir string) {
	if dir == "" || filepath.IsAbs(c.Storage.BasePath) {
		return
	}

	c.Storage.BasePath = filepath.Join(dir, c.Storage.BasePath)
}

func Save(cfg *Config) error {
	return SaveTo(cfg, DefaultPath)
}

func SaveTo(cfg *Config, path string) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
