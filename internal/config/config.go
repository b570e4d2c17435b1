package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV  string
		Name string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	GRPC struct {
		Host string
		Port string
	}

	AMQP struct {
		URL      string
		Exchange string
	}

	Auth struct {
		JWTSecret     string
		ResetTokenTTL time.Duration
	}

	OTP struct {
		Issuer         string
		TTL            time.Duration
		ResendCooldown time.Duration
	}

	Match struct {
		DefaultPageSize int
		MaxPageSize     int
	}
}

// New builds the configuration from the process environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win over the file.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", "development")
	cfg.App.Name = getEnvDefault("APP_NAME", "matchmaker")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	}
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "matchmaker")
		cfg.DB.DSN = buildDSN(cfg)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// gRPC (health + reflection)
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// AMQP push fan-out; empty URL disables publishing
	cfg.AMQP.URL = getEnvDefault("AMQP_URL", "")
	cfg.AMQP.Exchange = getEnvDefault("AMQP_EXCHANGE", "push")

	// Auth
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", "")
	cfg.Auth.ResetTokenTTL = getEnvDuration("RESET_TOKEN_TTL", 15*time.Minute)

	// OTP
	cfg.OTP.Issuer = getEnvDefault("OTP_ISSUER", cfg.App.Name)
	cfg.OTP.TTL = getEnvDuration("OTP_TTL", 5*time.Minute)
	cfg.OTP.ResendCooldown = getEnvDuration("OTP_RESEND_COOLDOWN", time.Minute)

	// Match feed
	cfg.Match.DefaultPageSize = getEnvInt("MATCH_PAGE_SIZE", 20)
	cfg.Match.MaxPageSize = getEnvInt("MATCH_MAX_PAGE_SIZE", 100)

	return cfg
}

func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "postgres":
		cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
		)
	case "sqlite":
		return getEnvDefault("DB_PATH", "matchmaker.db")
	default:
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

// getEnvDuration accepts Go duration strings ("90s") or plain seconds ("90").
func getEnvDuration(k string, def time.Duration) time.Duration {
	v := getEnvDefault(k, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
