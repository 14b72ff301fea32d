package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env         string
	Port        int
	APIPrefix   string
	AutoMigrate bool

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Sentry   SentryConfig
	Jobs     JobsConfig
	Library  LibraryConfig
	Paging   PagingConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig holds the single admin account guarding write routes.
type AuthConfig struct {
	Enabled           bool
	AdminEmail        string
	AdminPasswordHash string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type SentryConfig struct {
	DSN     string
	Release string
}

// JobsConfig drives the periodic overdue sweep. A zero interval disables it.
type JobsConfig struct {
	OverdueInterval time.Duration
	LockTTL         time.Duration
}

// LibraryConfig carries the borrowing rules.
type LibraryConfig struct {
	BorrowLimit int
	BorrowDays  int
	ExtendDays  int
	DailyFine   float64
	LostFine    float64
}

type PagingConfig struct {
	DefaultPerPage int
	MaxPerPage     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.AutoMigrate = v.GetBool("AUTO_MIGRATE")

	cfg.Database = DatabaseConfig{
		Driver:       v.GetString("DB_DRIVER"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled:           v.GetBool("AUTH_ENABLED"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sentry = SentryConfig{
		DSN:     v.GetString("SENTRY_DSN"),
		Release: v.GetString("SENTRY_RELEASE"),
	}

	cfg.Jobs = JobsConfig{
		OverdueInterval: parseDuration(v.GetString("JOBS_OVERDUE_INTERVAL"), time.Hour),
		LockTTL:         parseDuration(v.GetString("JOBS_LOCK_TTL"), 5*time.Minute),
	}

	cfg.Library = LibraryConfig{
		BorrowLimit: v.GetInt("BORROW_LIMIT"),
		BorrowDays:  v.GetInt("BORROW_DAYS"),
		ExtendDays:  v.GetInt("EXTEND_DAYS"),
		DailyFine:   v.GetFloat64("DAILY_FINE"),
		LostFine:    v.GetFloat64("LOST_FINE"),
	}

	cfg.Paging = PagingConfig{
		DefaultPerPage: v.GetInt("PER_PAGE_DEFAULT"),
		MaxPerPage:     v.GetInt("PER_PAGE_MAX"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("AUTO_MIGRATE", true)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_registrar")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("ADMIN_EMAIL", "admin@campus.local")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("SENTRY_RELEASE", "")

	v.SetDefault("JOBS_OVERDUE_INTERVAL", "1h")
	v.SetDefault("JOBS_LOCK_TTL", "5m")

	v.SetDefault("BORROW_LIMIT", 5)
	v.SetDefault("BORROW_DAYS", 30)
	v.SetDefault("EXTEND_DAYS", 7)
	v.SetDefault("DAILY_FINE", 1.0)
	v.SetDefault("LOST_FINE", 50.0)

	v.SetDefault("PER_PAGE_DEFAULT", 10)
	v.SetDefault("PER_PAGE_MAX", 100)
}

// isMissingFile reports whether viper failed because the explicit .env path does not exist.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
