package shared

import (
	_ "embed"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the config file.
const (
	EnvDatabasePath  = "PLBOT_DATABASE_PATH"
	EnvWebhookSecret = "PLBOT_WEBHOOK_SECRET"
	EnvRedisAddr     = "PLBOT_REDIS_ADDR"
	EnvRedisPassword = "PLBOT_REDIS_PASSWORD"
	EnvLogLevel      = "PLBOT_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Bot      BotConfig      `toml:"bot"`
	Session  SessionConfig  `toml:"session"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" default:"./plbot.db" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" default:"4" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" default:"2" validate:"gte=0"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                   string `toml:"host" default:"127.0.0.1"`
	Port                   int    `toml:"port" default:"3000" validate:"gt=0,lte=65535"`
	WebhookSecret          string `toml:"webhook_secret"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds" default:"10" validate:"gt=0"`
}

// ShutdownTimeout is the grace period given to in-flight requests on shutdown.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// BotConfig tunes the request handlers.
type BotConfig struct {
	RatePerSecond      float64 `toml:"rate_per_second" default:"2" validate:"gt=0"`
	Burst              int     `toml:"burst" default:"5" validate:"gt=0"`
	DialogueTTLSeconds int     `toml:"dialogue_ttl_seconds" default:"600" validate:"gt=0"`
}

// DialogueTTL is how long an unfinished playlist-creation dialogue survives.
func (c BotConfig) DialogueTTL() time.Duration {
	return time.Duration(c.DialogueTTLSeconds) * time.Second
}

// SessionConfig selects where dialogue state lives.
type SessionConfig struct {
	Backend string      `toml:"backend" default:"memory" validate:"oneof=memory redis"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig contains connection settings for the redis session backend.
type RedisConfig struct {
	Addr      string `toml:"addr" default:"127.0.0.1:6379" validate:"required"`
	Password  string `toml:"password"`
	DB        int    `toml:"db" validate:"gte=0"`
	KeyPrefix string `toml:"key_prefix" default:"plbot:dialogue:"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level string `toml:"level" default:"info" validate:"oneof=debug info warn error"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment overrides are applied before defaults fill any remaining zero values, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrMissingConfig, "%s", path)
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse config"), ErrInvalidConfig)
	}

	config.applyEnv(os.LookupEnv)
	if err := config.finalize(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic("failed to parse embedded default config: " + err.Error())
	}
	if err := config.finalize(); err != nil {
		panic("embedded default config is invalid: " + err.Error())
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// LoadDotEnv loads environment variables from the given .env files (".env" when none are given).
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "failed to load .env")
	}
	return nil
}

// ApplyEnv applies the PLBOT_* environment overrides to c and validates the result.
func (c *Config) ApplyEnv() error {
	c.applyEnv(os.LookupEnv)
	return c.Validate()
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid configuration"), ErrInvalidConfig)
	}
	return nil
}

func (c *Config) finalize() error {
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to apply config defaults")
	}
	return c.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvDatabasePath, &c.Database.Path},
		{EnvWebhookSecret, &c.Server.WebhookSecret},
		{EnvRedisAddr, &c.Session.Redis.Addr},
		{EnvRedisPassword, &c.Session.Redis.Password},
		{EnvLogLevel, &c.Log.Level},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.target = v
		}
	}
}
