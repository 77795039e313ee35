// Package config provides runtime configuration values for the bot.
package config

import (
	"log"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage backends accepted by STORE_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds configuration knobs for the gateway, storage and workers.
type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	Discord Discord `yaml:"discord"`
	Store   Store   `yaml:"store"`

	HTTPAddr           string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
	CommandTimeout     time.Duration `yaml:"command_timeout" env:"COMMAND_TIMEOUT" env-default:"30s"`
	QueueBuffer        int           `yaml:"queue_buffer" env:"QUEUE_BUFFER" env-default:"64"`
	QueueHighWatermark int           `yaml:"queue_high_watermark" env:"QUEUE_HIGH_WATERMARK" env-default:"500"`
	Currency           string        `yaml:"currency" env:"CURRENCY" env-default:"EUR"`
}

// Discord holds the bot credentials and access policy.
type Discord struct {
	Token            string   `yaml:"token" env:"DISCORD_TOKEN" env-required:"true"`
	AppID            string   `yaml:"client_id" env:"CLIENT_ID" env-required:"true"`
	GuildID          string   `yaml:"guild_id" env:"GUILD_ID" env-required:"true"`
	AdminRoles       []string `yaml:"admin_roles" env:"ADMIN_ROLES" env-separator:"," env-default:"Admin,Moderator"`
	RegisterCommands bool     `yaml:"register_commands" env:"REGISTER_COMMANDS" env-default:"true"`
}

// Store selects and configures the snapshot backend.
type Store struct {
	Backend      string `yaml:"backend" env:"STORE_BACKEND" env-default:"file"`
	ProductsFile string `yaml:"products_file" env:"PRODUCTS_FILE" env-default:"./products.json"`
	SQLitePath   string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"products.db"`
	RedisAddr    string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisKey     string `yaml:"redis_key" env:"REDIS_KEY" env-default:"luxvia:products"`
}

// Load reads an optional .env file, then either the YAML file named by
// CONFIG_PATH (with env overrides) or the environment alone.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "read env")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad is Load that exits the process on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}
	return cfg
}

// Validate rejects values the bot cannot run with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return errors.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.CommandTimeout <= 0 {
		return errors.New("COMMAND_TIMEOUT must be positive")
	}
	if len(c.Discord.AdminRoles) == 0 {
		return errors.New("ADMIN_ROLES must name at least one role")
	}
	return nil
}

// OpsHTTPEnabled reports whether the ops HTTP server should listen.
// An empty HTTP_ADDR turns it off.
func (c Config) OpsHTTPEnabled() bool {
	return c.HTTPAddr != ""
}
