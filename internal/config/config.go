package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	DB        DBConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Discord   DiscordConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// StoreConfig selects the link store backend and the namespace it is scoped to.
type StoreConfig struct {
	Driver          string // memory, postgres, mongo
	Namespace       string
	Database        string
	MonitorInterval time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type MongoConfig struct {
	URI string
}

type RedisConfig struct {
	Enabled    bool
	Host       string
	Port       string
	ProfileTTL time.Duration
}

type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool
	AdminUsers    []string
	APIKeys       map[string]string // API key -> name/description
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8900")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("STORE_NAMESPACE", "golink")
	v.SetDefault("STORE_DATABASE", "main")
	v.SetDefault("STORE_MONITOR_INTERVAL", "1s")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("REDIS_PROFILE_TTL", "60s")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	// .env is optional, the process environment is enough in containers
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	cfg.App.Port = v.GetString("APP_PORT")
	cfg.App.Env = v.GetString("APP_ENV")
	cfg.App.LogLevel = v.GetString("LOG_LEVEL")

	cfg.Store.Driver = strings.ToLower(v.GetString("STORE_DRIVER"))
	cfg.Store.Namespace = v.GetString("STORE_NAMESPACE")
	cfg.Store.Database = v.GetString("STORE_DATABASE")
	cfg.Store.MonitorInterval = v.GetDuration("STORE_MONITOR_INTERVAL")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")

	cfg.Mongo.URI = v.GetString("MONGO_URI")

	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.ProfileTTL = v.GetDuration("REDIS_PROFILE_TTL")

	cfg.Discord.ClientID = v.GetString("DISCORD_CLIENT_ID")
	cfg.Discord.ClientSecret = v.GetString("DISCORD_CLIENT_SECRET")
	cfg.Discord.RedirectURL = v.GetString("DISCORD_REDIRECT_URL")

	cfg.Auth.SessionSecret = v.GetString("SESSION_SECRET")
	cfg.Auth.SessionTTL = v.GetDuration("SESSION_TTL")
	cfg.Auth.SecureCookies = cfg.App.Env == "production"
	cfg.Auth.AdminUsers = parseList(v.GetString("ADMIN_USERS"))
	// Format: key1:name1,key2:name2
	cfg.Auth.APIKeys = parseAPIKeys(v.GetString("API_KEYS"))

	cfg.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	cfg.RateLimit.BurstSize = v.GetInt("RATE_LIMIT_BURST")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "postgres", "mongo":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Namespace == "" || c.Store.Database == "" {
		return errors.New("config: STORE_NAMESPACE and STORE_DATABASE must be set")
	}
	if len(c.Auth.SessionSecret) < 16 {
		return errors.New("config: SESSION_SECRET must be at least 16 characters")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0 {
		return errors.New("config: rate limit values must be positive")
	}
	return nil
}

// parseList splits a comma-separated list, dropping empty entries.
func parseList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseAPIKeys parses comma-separated API keys in format "key1:name1,key2:name2"
func parseAPIKeys(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range parseList(raw) {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) == 2 {
			keys[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return keys
}
