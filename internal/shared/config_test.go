package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./plbot.db" {
			t.Errorf("expected database path ./plbot.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Session.Backend != "memory" {
			t.Errorf("expected memory session backend, got %s", config.Session.Backend)
		}

		if config.Bot.DialogueTTL().Minutes() != 10 {
			t.Errorf("expected a 10 minute dialogue ttl, got %v", config.Bot.DialogueTTL())
		}

		if config.Session.Redis.KeyPrefix != "plbot:dialogue:" {
			t.Errorf("expected redis key prefix plbot:dialogue:, got %s", config.Session.Redis.KeyPrefix)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080
webhook_secret = "s3cret"

[bot]
rate_per_second = 0.5
burst = 1

[session]
backend = "redis"

[session.redis]
addr = "redis:6379"
db = 2
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Server.WebhookSecret != "s3cret" {
			t.Errorf("expected webhook secret s3cret, got %s", config.Server.WebhookSecret)
		}

		if config.Session.Redis.Addr != "redis:6379" || config.Session.Redis.DB != 2 {
			t.Errorf("unexpected redis config: %+v", config.Session.Redis)
		}

		if config.Bot.DialogueTTLSeconds != 600 {
			t.Errorf("expected default dialogue ttl 600, got %d", config.Bot.DialogueTTLSeconds)
		}

		if config.Log.Level != "info" {
			t.Errorf("expected default log level info, got %s", config.Log.Level)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Invalid Values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[session]\nbackend = \"etcd\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database]\npath = \"file.db\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		t.Setenv(EnvDatabasePath, "/env/override.db")
		t.Setenv(EnvLogLevel, "debug")
		t.Setenv(EnvWebhookSecret, "")

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/env/override.db" {
			t.Errorf("expected env database path, got %s", config.Database.Path)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected env log level debug, got %s", config.Log.Level)
		}
		if config.Server.WebhookSecret != "" {
			t.Errorf("empty env value should not override, got %q", config.Server.WebhookSecret)
		}
	})

	t.Run("ApplyEnv on defaults", func(t *testing.T) {
		t.Setenv(EnvRedisAddr, "redis:6380")
		t.Setenv(EnvLogLevel, "loud")

		config := DefaultConfig()
		err := config.ApplyEnv()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for bad log level, got %v", err)
		}
		if config.Session.Redis.Addr != "redis:6380" {
			t.Errorf("expected env redis addr, got %s", config.Session.Redis.Addr)
		}
	})

	t.Run("LoadDotEnv", func(t *testing.T) {
		dir := t.TempDir()
		if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
			t.Errorf("missing .env should be ignored, got %v", err)
		}

		envPath := filepath.Join(dir, ".env")
		if err := os.WriteFile(envPath, []byte("PLBOT_TEST_DOTENV=loaded\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Setenv("PLBOT_TEST_DOTENV", "")
		os.Unsetenv("PLBOT_TEST_DOTENV")

		if err := LoadDotEnv(envPath); err != nil {
			t.Fatalf("failed to load .env: %v", err)
		}
		if got := os.Getenv("PLBOT_TEST_DOTENV"); got != "loaded" {
			t.Errorf("expected PLBOT_TEST_DOTENV=loaded, got %q", got)
		}
	})
}
