package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the Redis connection used for rate limiting, presence, caching and chat fan-out.
// An empty Addr disables every Redis-backed feature.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds access token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type PayPalConfig struct {
	Sandbox      bool
	WebhookToken string
}

type VimeoConfig struct {
	OEmbedURL string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type ChatConfig struct {
	HistorySize    int
	MaxBodyLength  int
	SendBufferSize int
}

// RateLimitConfig bounds auth attempts per client IP.
type RateLimitConfig struct {
	AuthAttempts int
	AuthWindow   time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Timezone    string
	FrontendURL string
	CORSOrigins string
	AdminEmails []string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Redis       RedisConfig
	JWT         JWTConfig
	SendGrid    SendGridConfig
	PayPal      PayPalConfig
	Vimeo       VimeoConfig
	Chat        ChatConfig
	RateLimit   RateLimitConfig
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	v := newViper()

	return &AppConfig{
		AppHost:     v.GetString("APP_HOST"),
		Port:        v.GetString("PORT"),
		Timezone:    v.GetString("APP_TIMEZONE"),
		FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		AdminEmails: splitList(v.GetString("ADMIN_NOTIFY_EMAILS")),
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		SendGrid: SendGridConfig{
			APIKey:    v.GetString("SENDGRID_API_KEY"),
			FromEmail: v.GetString("MAIL_FROM_EMAIL"),
			FromName:  v.GetString("MAIL_FROM_NAME"),
		},
		PayPal: PayPalConfig{
			Sandbox:      v.GetBool("PAYPAL_SANDBOX"),
			WebhookToken: v.GetString("PAYPAL_WEBHOOK_TOKEN"),
		},
		Vimeo: VimeoConfig{
			OEmbedURL: v.GetString("VIMEO_OEMBED_URL"),
			Timeout:   v.GetDuration("VIMEO_TIMEOUT"),
			CacheTTL:  v.GetDuration("VIMEO_CACHE_TTL"),
		},
		Chat: ChatConfig{
			HistorySize:    v.GetInt("CHAT_HISTORY_SIZE"),
			MaxBodyLength:  v.GetInt("CHAT_MAX_BODY_LENGTH"),
			SendBufferSize: v.GetInt("CHAT_SEND_BUFFER"),
		},
		RateLimit: RateLimitConfig{
			AuthAttempts: v.GetInt("RATE_LIMIT_AUTH_ATTEMPTS"),
			AuthWindow:   v.GetDuration("RATE_LIMIT_AUTH_WINDOW"),
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	// defaults only for non-sensitive values
	v.SetDefault("APP_HOST", "localhost:8080")
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SEC", 300)
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_TTL", 72*time.Hour)
	v.SetDefault("MAIL_FROM_EMAIL", "noreply@localhost")
	v.SetDefault("MAIL_FROM_NAME", "FX Academy")
	v.SetDefault("PAYPAL_SANDBOX", true)
	v.SetDefault("VIMEO_OEMBED_URL", "https://vimeo.com/api/oembed.json")
	v.SetDefault("VIMEO_TIMEOUT", 5*time.Second)
	v.SetDefault("VIMEO_CACHE_TTL", 24*time.Hour)
	v.SetDefault("CHAT_HISTORY_SIZE", 50)
	v.SetDefault("CHAT_MAX_BODY_LENGTH", 2000)
	v.SetDefault("CHAT_SEND_BUFFER", 64)
	v.SetDefault("RATE_LIMIT_AUTH_ATTEMPTS", 10)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW", time.Minute)

	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
