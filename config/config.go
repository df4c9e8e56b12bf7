package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Storage
	DBDriver string // "mongo" or "memory"
	MongoURI string
	DBName   string

	// Auth
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Bootstrap admin created at startup when no user with this email exists
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Break-glass admin, never persisted
	BreakGlassEmail        string
	BreakGlassPassword     string
	BreakGlassPasswordHash string
	BreakGlassName         string

	// Redis backs the token revocation list when reachable
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Uploads
	UploadDir string

	// CORS
	CORSAllowedOrigins []string

	// SMTP for welcome mails; disabled when SMTPHost is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads configuration from the environment after loading .env if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "5000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: getEnv("DB_DRIVER", "mongo"),
		MongoURI: firstEnv("MONGO_URI", "MONGODB_URI"),
		DBName:   getEnv("DB_NAME", "crm"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		BreakGlassEmail:        os.Getenv("BREAK_GLASS_EMAIL"),
		BreakGlassPassword:     os.Getenv("BREAK_GLASS_PASSWORD"),
		BreakGlassPasswordHash: os.Getenv("BREAK_GLASS_PASSWORD_HASH"),
		BreakGlassName:         getEnv("BREAK_GLASS_NAME", "Super Admin"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case "memory":
	case "mongo":
		if c.MongoURI == "" && !c.IsDevelopment() {
			return errors.New("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	default:
		return errors.New("DB_DRIVER must be \"mongo\" or \"memory\"")
	}
	return nil
}

// IsDevelopment reports whether the server runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// BreakGlassEnabled reports whether the break-glass admin account is configured.
func (c *Config) BreakGlassEnabled() bool {
	return c.BreakGlassEmail != "" && (c.BreakGlassPassword != "" || c.BreakGlassPasswordHash != "")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
