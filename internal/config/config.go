package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"filedepot/internal/logger"
)

// S3Config holds credentials for an S3-compatible object store.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// WebDAVConfig holds credentials for a WebDAV server backend.
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	Root     string
}

// TelegramConfig holds credentials for the bot-document store backend.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Config is constructed once at startup and passed explicitly to every
// component that needs it. Admin-triggered backend changes go through the
// settings table and a registry reload, never through mutation of this struct.
type Config struct {
	DatabaseDialect string // "postgres" or "sqlite"
	DatabaseDSN     string
	LogLevel        string

	HashIDSalt string
	JWTSecret  string
	SessionTTL time.Duration

	RetentionDays int
	SweepSchedule string // cron expression

	ActiveBackend string // default when the settings table has no override
	S3            S3Config
	WebDAV        WebDAVConfig
	Telegram      TelegramConfig
}

// Load reads configuration from the environment, optionally seeded from a
// .env file (ENV_FILE overrides the default path).
func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug("no %s file found, using process environment", envFile)
	}

	return Config{
		DatabaseDialect: getEnv("DB_DIALECT", "postgres"),
		DatabaseDSN:     getEnv("DB_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),

		HashIDSalt: getEnv("HASHID_SALT", "filedepot"),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 72)) * time.Hour,

		RetentionDays: getEnvInt("TRASH_RETENTION_DAYS", 30),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@hourly"),

		ActiveBackend: getEnv("STORAGE_BACKEND", "s3"),
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", true),
		},
		WebDAV: WebDAVConfig{
			URL:      getEnv("WEBDAV_URL", ""),
			Username: getEnv("WEBDAV_USERNAME", ""),
			Password: getEnv("WEBDAV_PASSWORD", ""),
			Root:     getEnv("WEBDAV_ROOT", "filedepot"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),
		},
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logger.Warn("invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
