package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Firebase FirebaseConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	ResetTokenTTL  time.Duration
	ResetURL       string
	LoginPerMinute int
	LoginBurst     int
}

// FirebaseConfig is optional. When CredentialsPath is empty only locally
// issued tokens are accepted.
type FirebaseConfig struct {
	CredentialsPath string
}

type StorageConfig struct {
	AvatarBucket   string
	Region         string
	Endpoint       string
	PublicBaseURL  string
	PresignExpires time.Duration
}

type WorkerConfig struct {
	PurgeSchedule  string
	PurgeAfterDays int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET_KEY", ""),
			TokenTTL:       getEnvAsDuration("JWT_TTL", 60*time.Minute),
			ResetTokenTTL:  getEnvAsDuration("RESET_TOKEN_TTL", 30*time.Minute),
			ResetURL:       getEnv("RESET_URL", "http://localhost:3000/auth/reset-password"),
			LoginPerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:     getEnvAsInt("LOGIN_RATE_BURST", 5),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Storage: StorageConfig{
			AvatarBucket:   getEnv("AVATAR_BUCKET", ""),
			Region:         getEnv("AWS_REGION", "us-east-1"),
			Endpoint:       getEnv("S3_ENDPOINT", ""),
			PublicBaseURL:  getEnv("AVATAR_PUBLIC_BASE_URL", ""),
			PresignExpires: getEnvAsDuration("AVATAR_PRESIGN_EXPIRES", 15*time.Minute),
		},
		Worker: WorkerConfig{
			PurgeSchedule:  getEnv("PURGE_SCHEDULE", "0 0 3 * * *"),
			PurgeAfterDays: getEnvAsInt("PURGE_AFTER_DAYS", 30),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "projecthub-backend"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	if c.Environment() == "production" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters in production")
	}

	if c.Worker.PurgeAfterDays < 1 {
		return fmt.Errorf("PURGE_AFTER_DAYS must be positive")
	}

	return nil
}

func (c *Config) Environment() string {
	return c.App.Environment
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
