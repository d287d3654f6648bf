package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port        string
		GinMode     string
		Environment string
	}

	Auth struct {
		JWTSecret  string
		TokenTTL   time.Duration
		BcryptCost int
		// How long email verification and password reset tokens stay valid.
		VerificationTTL time.Duration
		ResetTTL        time.Duration
	}

	SMTP struct {
		Host      string
		Port      string
		Username  string
		Password  string
		FromEmail string
		FromName  string
		// Base URL used to build verification and reset links in emails.
		BaseURL string
	}

	ObjectStore ObjectStoreConfig

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	LogLevel string
}

// ObjectStoreConfig points at the S3-compatible bucket used for logo
// uploads
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Public base URL under which uploaded logos are reachable.
	PublicURL string
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "delegation")
	config.DB.Password = getEnv("DB_PASSWORD", "delegation_password")
	config.DB.Name = getEnv("DB_NAME", "delegation_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.Environment = getEnv("ENVIRONMENT", "development")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "dev-secret-change-me")
	config.Auth.TokenTTL = getEnvAsDuration("JWT_TTL", 24*time.Hour)
	config.Auth.BcryptCost = getEnvAsInt("BCRYPT_COST", 10)
	config.Auth.VerificationTTL = getEnvAsDuration("VERIFICATION_TTL", 48*time.Hour)
	config.Auth.ResetTTL = getEnvAsDuration("RESET_TTL", 2*time.Hour)

	config.SMTP.Host = getEnv("SMTP_HOST", "smtp.gmail.com")
	config.SMTP.Port = getEnv("SMTP_PORT", "587")
	config.SMTP.Username = getEnv("SMTP_USERNAME", "")
	config.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	config.SMTP.FromEmail = getEnv("SMTP_FROM_EMAIL", "noreply@openmun.org")
	config.SMTP.FromName = getEnv("SMTP_FROM_NAME", "OpenMUN Registration")
	config.SMTP.BaseURL = getEnv("BASE_URL", "http://localhost:3000")

	config.ObjectStore.Endpoint = getEnv("MINIO_ENDPOINT", "localhost:9000")
	config.ObjectStore.AccessKey = getEnv("MINIO_ACCESS_KEY", "minioadmin")
	config.ObjectStore.SecretKey = getEnv("MINIO_SECRET_KEY", "minioadmin")
	config.ObjectStore.Bucket = getEnv("MINIO_BUCKET", "community-logos")
	config.ObjectStore.UseSSL = getEnvAsBool("MINIO_USE_SSL", false)
	config.ObjectStore.PublicURL = getEnv("MINIO_PUBLIC_URL", "http://localhost:9000")

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	config.LogLevel = getEnv("LOG_LEVEL", "info")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as time.Duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
