package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Mail       MailConfig
	Delivery   DeliveryConfig
	Firebase   FirebaseConfig
	Cloudinary CloudinaryConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// RedisConfig backs the delivery job queue. Leave Addr empty to run with
// the in-process queue (single binary, no external broker).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
}

type MailConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
}

type DeliveryConfig struct {
	Workers int
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8088"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "khaki:khaki@tcp(localhost:3306)/khakiestate?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  30 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "khakiestate",
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
			QueueKey: getenv("DELIVERY_QUEUE_KEY", "khakiestate:deliveries"),
		},
		Mail: MailConfig{
			SMTPHost: getenv("SMTP_HOST", ""),
			SMTPPort: getenv("SMTP_PORT", "587"),
			Username: getenv("SMTP_USERNAME", ""),
			Password: getenv("SMTP_PASSWORD", ""),
			From:     getenv("MAIL_FROM", "noreply@thekhakiestate.com"),
		},
		Delivery: DeliveryConfig{
			Workers: getenvInt("DELIVERY_WORKERS", 4),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getenv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getenv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getenv("CLOUDINARY_API_KEY", ""),
			APISecret: getenv("CLOUDINARY_API_SECRET", ""),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
