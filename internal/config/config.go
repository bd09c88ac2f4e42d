package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Avatar storage backends selectable via AVATAR_STORAGE.
const (
	AvatarStorageLocal = "local"
	AvatarStorageS3    = "s3"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	BaseURL string

	JWTSecret       string
	SessionTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	UsersTable     string

	AvatarStorage string // "local" | "s3"
	AvatarsDir    string
	S3BucketName  string

	TemplatesDir string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		BaseURL: getEnv("BASE_URL", "http://localhost:3000"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		SessionTokenTTL: time.Duration(getEnvInt("SESSION_TOKEN_TTL_HOURS", 15)) * time.Hour,
		ResetTokenTTL:   time.Duration(getEnvInt("RESET_TOKEN_TTL_MINUTES", 15)) * time.Minute,

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		UsersTable:     getEnv("DYNAMO_TABLE_USERS", "users"),

		AvatarStorage: getEnv("AVATAR_STORAGE", AvatarStorageLocal),
		AvatarsDir:    getEnv("AVATARS_DIR", "./public/avatars"),
		S3BucketName:  getEnv("S3_BUCKET_NAME", "accounts-avatars"),

		TemplatesDir: getEnv("TEMPLATES_DIR", "./templates"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		GoogleClientID:     getEnv("GOOGLE_AUTH_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_AUTH_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_AUTH_REDIRECT_URL", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
