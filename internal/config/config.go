package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds every setting read from the environment.
type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	TelegramToken string  `env:"TELEGRAM_BOT_TOKEN"`
	AdminChatIDs  []int64 `env:"ADMIN_CHAT_IDS" envSeparator:","`

	BackendBaseURL string        `env:"BACKEND_BASE_URL" envDefault:"http://localhost:5000"`
	ImageBaseURL   string        `env:"IMAGE_BASE_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLiteDSN     string `env:"SQLITE_DSN" envDefault:"leadbot.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"leadbot"`

	HealthAddr    string  `env:"HEALTH_ADDR" envDefault:":8080"`
	BroadcastRate float64 `env:"BROADCAST_RATE" envDefault:"25"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendBaseURL) == "" {
		return errors.New("BACKEND_BASE_URL is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StorageRedis:
	default:
		return errors.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Admins returns ADMIN_CHAT_IDS as a set.
func (c Config) Admins() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(c.AdminChatIDs))
	for _, id := range c.AdminChatIDs {
		ids[id] = struct{}{}
	}
	return ids
}
