package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
)

// Config is everything read from the environment at startup.
type Config struct {
	Env         string
	DBDriver    string
	DatabaseURL string
	DBSSLMode   string

	RedisAddr     string
	RedisUser     string
	RedisPassword string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	GoogleClientID    string

	Timezone         string
	CORSOrigins      []string
	ReminderSchedule string
	Port             string
	LogLevel         string
}

const (
	defaultPort             = "8083"
	defaultTimezone         = "Africa/Nairobi"
	defaultReminderSchedule = "0 7 * * *"
	defaultTokenTTLMinutes  = 4320
)

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	loadErr := godotenv.Load()

	cfg := &Config{
		Env:                 strings.ToLower(GetEnv("ENV", "dev")),
		DBDriver:            strings.ToLower(GetEnv("DB_DRIVER", "postgres")),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBSSLMode:           GetEnv("DB_SSLMODE", "require"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisUser:           os.Getenv("REDIS_USER"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		AccessTokenSecret:   os.Getenv("SECRET_KEY_ACCESS_TOKEN"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		Timezone:            GetEnv("APP_TIMEZONE", defaultTimezone),
		CORSOrigins:         splitList(os.Getenv("CORS_ORIGINS")),
		ReminderSchedule:    GetEnv("REMINDER_SCHEDULE", defaultReminderSchedule),
		Port:                GetEnv("PORT", defaultPort),
		LogLevel:            GetEnv("LOG_LEVEL", "info"),
	}

	minutes := defaultTokenTTLMinutes
	if v := os.Getenv("ACCESS_TOKEN_TTL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("ACCESS_TOKEN_TTL_MINUTES must be a positive integer, got %q", v)
		}
		minutes = n
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	if cfg.AccessTokenSecret == "" {
		if loadErr != nil {
			return nil, fmt.Errorf("SECRET_KEY_ACCESS_TOKEN is not set and .env could not be loaded: %w", loadErr)
		}
		return nil, fmt.Errorf("SECRET_KEY_ACCESS_TOKEN is not set")
	}
	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func GetEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConnectCloudinary returns nil when no credentials are configured; uploads are then refused.
func ConnectCloudinary(cfg *Config) (*cloudinary.Cloudinary, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return cld, nil
}
