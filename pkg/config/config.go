package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Auth modes accepted in AUTH_MODE
const (
	AuthNone     = "none"
	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	Port                    string
	Env                     string
	PostgresUrl             string
	UploadDir               string
	MaxUploadBytes          int64
	MetricsPort             string
	AuthMode                string
	JWTSecret               string
	FirebaseCredentialsPath string
}

// Load reads the server configuration from the environment, loading .env first if present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresUrl:             os.Getenv("POSTGRES_CONN_STR"),
		UploadDir:               getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:          maxUpload,
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		AuthMode:                getEnv("AUTH_MODE", AuthNone),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c *Config) Validate() error {
	if c.PostgresUrl == "" {
		return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}
	switch c.AuthMode {
	case AuthNone:
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthFirebase:
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
