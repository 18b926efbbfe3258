package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "settings.yaml"

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	Storage  Storage  `yaml:"storage"`
	Executor Executor `yaml:"executor"`
	Log      Log      `yaml:"log"`
}

type Storage struct {
	Kind   string `yaml:"kind" env:"TASC_STORAGE" validate:"oneof=memory sqlite redis"`
	SQLite SQLite `yaml:"sqlite"`
	Redis  Redis  `yaml:"redis"`
}

type SQLite struct {
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
}

type Redis struct {
	Addr      string `yaml:"address" env:"TASC_REDIS_ADDRESS"`
	Password  string `yaml:"password" env:"TASC_REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"TASC_REDIS_DB" validate:"gte=0"`
	KeyPrefix string `yaml:"key_prefix" env:"TASC_REDIS_KEY_PREFIX"`
}

type Executor struct {
	Tokenizer  string        `yaml:"tokenizer" env:"TASC_EXECUTOR_TOKENIZER" validate:"oneof=fields shell"`
	Timeout    time.Duration `yaml:"timeout" env:"TASC_EXECUTOR_TIMEOUT" validate:"gte=0"`
	InheritEnv bool          `yaml:"inherit_env" env:"TASC_EXECUTOR_INHERIT_ENV"`
}

type Log struct {
	Level      string `yaml:"level" env:"TASC_LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	Format     string `yaml:"format" env:"TASC_LOG_FORMAT" validate:"oneof=console json"`
	File       string `yaml:"file" env:"TASC_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"TASC_LOG_MAX_SIZE_MB" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" env:"TASC_LOG_MAX_BACKUPS" validate:"gte=0"`
}

func Default() Config {
	return Config{
		Storage: Storage{
			Kind:  StorageMemory,
			Redis: Redis{KeyPrefix: "tasc:"},
		},
		Executor: Executor{
			Tokenizer:  "fields",
			InheritEnv: true,
		},
		Log: Log{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

var validate = validator.New()

// Load resolves the configuration from defaults, a .env file, the YAML
// settings file at path and the process environment, in that order. A
// missing settings file is an error only when required is set.
func Load(path string, required bool) (*Config, error) {
	c := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch c.Storage.Kind {
	case StorageSQLite:
		if c.Storage.SQLite.DatabaseURL == "" {
			return errors.New("invalid configuration: sqlite storage needs a database url")
		}
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("invalid configuration: redis storage needs an address")
		}
	}
	return nil
}
