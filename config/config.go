package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               string        `mapstructure:"port"`
		Env                string        `mapstructure:"env"`
		APIVersion         string        `mapstructure:"api_version"`
		FrontendURL        string        `mapstructure:"frontend_url"`
		CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
		ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
		TrustedProxies     int           `mapstructure:"trusted_proxies"`
	} `mapstructure:"server"`
	Database struct {
		Host        string `mapstructure:"host"`
		Port        string `mapstructure:"port"`
		User        string `mapstructure:"user"`
		Password    string `mapstructure:"password"`
		Name        string `mapstructure:"name"`
		SSLMode     string `mapstructure:"sslmode"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	RabbitMQ  struct {
		URL      string `mapstructure:"url"`
		Exchange string `mapstructure:"exchange"`
	} `mapstructure:"rabbitmq"`
	Sentry struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"sentry"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// JWTConfig holds signing keys and lifetimes for access and refresh tokens.
type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
	Issuer        string        `mapstructure:"issuer"`
}

type AuthConfig struct {
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl"`
}

type RateLimitConfig struct {
	APILimit   int           `mapstructure:"api_limit"`
	APIWindow  time.Duration `mapstructure:"api_window"`
	AuthLimit  int           `mapstructure:"auth_limit"`
	AuthWindow time.Duration `mapstructure:"auth_window"`
}

var AppConfig Config

// IsProduction reports whether the service runs with server.env=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// Validate rejects configurations the service cannot run safely with.
func (c Config) Validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("jwt.access_secret and jwt.refresh_secret are required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("jwt.access_secret and jwt.refresh_secret must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt.access_ttl and jwt.refresh_ttl must be positive")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("jwt.access_ttl must be shorter than jwt.refresh_ttl")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.api_version", "v1")
	v.SetDefault("server.frontend_url", "http://localhost:5173")
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.trusted_proxies", 0)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "modesta_resort")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "modesta-resort")

	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.reset_token_ttl", time.Hour)

	v.SetDefault("rate_limit.api_limit", 100)
	v.SetDefault("rate_limit.api_window", 15*time.Minute)
	v.SetDefault("rate_limit.auth_limit", 5)
	v.SetDefault("rate_limit.auth_window", 15*time.Minute)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "resort.events")

	v.SetDefault("sentry.dsn", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads config.yml from path (if present), .env (if present) and the environment.
// Environment variables use upper snake case of the key, e.g. JWT_ACCESS_SECRET.
func Load(path string) (Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load(path + "/.env")

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads and validates the configuration into AppConfig, exiting on failure.
func LoadConfig(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Error loading config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %s", err)
	}
	AppConfig = cfg
}
