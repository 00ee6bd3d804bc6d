package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	JWTSecret     string
	RBACModelPath string

	RateLimit RateLimitConfig
	Outbox    OutboxConfig
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	MaxRetries int
}

type RedisConfig struct {
	Addr       string
	MaxRetries int
}

type KafkaConfig struct {
	Broker        string
	ConsumerGroup string
	MaxRetries    int
}

type RateLimitConfig struct {
	// PreviewRPS is the per-user refill rate of the template preview endpoint.
	PreviewRPS   float64
	PreviewBurst int
	WriteRPS     float64
	WriteBurst   int
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads .env (when present) and the process environment. Missing keys
// fall back to development defaults.
func Load(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("HTTP_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:       v.GetString("DB_HOST"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			Port:       v.GetString("DB_PORT"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			MaxRetries: v.GetInt("DB_MAX_RETRIES"),
		},
		Redis: RedisConfig{
			Addr:       v.GetString("REDIS_ADDR"),
			MaxRetries: v.GetInt("REDIS_MAX_RETRIES"),
		},
		Kafka: KafkaConfig{
			Broker:        v.GetString("KAFKA_BROKER"),
			ConsumerGroup: v.GetString("KAFKA_CONSUMER_GROUP"),
			MaxRetries:    v.GetInt("KAFKA_MAX_RETRIES"),
		},
		JWTSecret:     v.GetString("JWT_SECRET"),
		RBACModelPath: v.GetString("RBAC_MODEL_PATH"),
		RateLimit: RateLimitConfig{
			PreviewRPS:   v.GetFloat64("RATE_LIMIT_PREVIEW_RPS"),
			PreviewBurst: v.GetInt("RATE_LIMIT_PREVIEW_BURST"),
			WriteRPS:     v.GetFloat64("RATE_LIMIT_WRITE_RPS"),
			WriteBurst:   v.GetInt("RATE_LIMIT_WRITE_BURST"),
		},
		Outbox: OutboxConfig{
			PollInterval: v.GetDuration("OUTBOX_POLL_INTERVAL"),
			BatchSize:    v.GetInt("OUTBOX_BATCH_SIZE"),
		},
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("PORT", "3000")
	v.SetDefault("HTTP_READ_TIMEOUT", 5*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_IDLE_TIMEOUT", 60*time.Second)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_RETRIES", 5)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_MAX_RETRIES", 5)

	v.SetDefault("KAFKA_CONSUMER_GROUP", "go-payroll-employee-salary")
	v.SetDefault("KAFKA_MAX_RETRIES", 5)

	v.SetDefault("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf")

	v.SetDefault("RATE_LIMIT_PREVIEW_RPS", 5)
	v.SetDefault("RATE_LIMIT_PREVIEW_BURST", 10)
	v.SetDefault("RATE_LIMIT_WRITE_RPS", 1)
	v.SetDefault("RATE_LIMIT_WRITE_BURST", 5)

	v.SetDefault("OUTBOX_POLL_INTERVAL", 3*time.Second)
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
}

// Validate lists every problem instead of stopping at the first one.
func (c Config) Validate() []string {
	var errs []string

	if c.HTTP.Port == "" {
		errs = append(errs, "PORT must not be empty")
	}
	if c.Database.MaxRetries < 1 {
		errs = append(errs, "DB_MAX_RETRIES must be at least 1")
	}
	if c.RateLimit.PreviewRPS <= 0 || c.RateLimit.WriteRPS <= 0 {
		errs = append(errs, "rate limits must be positive")
	}
	if c.RateLimit.PreviewBurst < 1 || c.RateLimit.WriteBurst < 1 {
		errs = append(errs, "rate limit bursts must be at least 1")
	}
	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, "OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.Outbox.BatchSize < 1 {
		errs = append(errs, "OUTBOX_BATCH_SIZE must be at least 1")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required in production")
	}

	return errs
}
