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
	JWT      JWTConfig
	CORS     CORSConfig
	S3       S3Config
	Redis    RedisConfig
	QR       QRConfig
	Vendor   VendorConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// Enabled reports whether generated artifacts should be mirrored to S3
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis render cache is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// QRConfig holds QR generation settings
type QRConfig struct {
	BaseURL        string        // landing base URL used when no custom URL or menu is given
	PNGDensityDPI  int           // rasterization density for the SVG→PNG fallback
	RenderCacheTTL time.Duration // lifetime of cached PNG downloads
}

// VendorConfig holds the external restaurant catalog settings
type VendorConfig struct {
	BaseURL     string
	APIKey      string
	Schedule    string // cron expression; empty disables the scheduler
	Concurrency int
}

// Enabled reports whether the vendor catalog is configured
func (c VendorConfig) Enabled() bool {
	return c.BaseURL != ""
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "tableqr"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry: parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "12h"), 12*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		QR: QRConfig{
			BaseURL:        strings.TrimRight(getEnv("QR_BASE_URL", "http://localhost:3000"), "/"),
			PNGDensityDPI:  parseInt(getEnv("QR_PNG_DENSITY_DPI", "300"), 300),
			RenderCacheTTL: parseDuration(getEnv("QR_RENDER_CACHE_TTL", "1h"), time.Hour),
		},
		Vendor: VendorConfig{
			BaseURL:     getEnv("VENDOR_API_URL", ""),
			APIKey:      getEnv("VENDOR_API_KEY", ""),
			Schedule:    getEnv("VENDOR_SYNC_SCHEDULE", "0 4 * * *"),
			Concurrency: parseInt(getEnv("VENDOR_SYNC_CONCURRENCY", "8"), 8),
		},
	}

	if config.QR.PNGDensityDPI <= 0 {
		return nil, fmt.Errorf("QR_PNG_DENSITY_DPI must be positive, got %d", config.QR.PNGDensityDPI)
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns host:port for the Redis client
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
