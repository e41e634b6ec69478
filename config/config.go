package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	AppMode string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey    string
	SaltRound int

	MediaBackend string // local or gcs
	MediaRoot    string
	MediaURL     string
	GCSBucket    string

	CacheBackend      string // memory or redis
	RedisAddr         string
	CacheTTL          time.Duration
	CacheWarmSchedule string

	OEmbedEndpoint string

	SendgridAPIKey string
	EmailSender    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:    getEnv("PORT", "3000"),
		AppMode: getEnv("APP_MODE", "dev"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "educa"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "educa"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		MediaBackend: getEnv("MEDIA_BACKEND", "local"),
		MediaRoot:    getEnv("MEDIA_ROOT", "./media"),
		MediaURL:     getEnv("MEDIA_URL", "/media/"),
		GCSBucket:    getEnv("GCS_BUCKET", ""),

		CacheBackend:      getEnv("CACHE_BACKEND", "memory"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:          getEnvDuration("CACHE_TTL", 15*time.Minute),
		CacheWarmSchedule: getEnv("CACHE_WARM_SCHEDULE", ""),

		OEmbedEndpoint: getEnv("OEMBED_ENDPOINT", "https://noembed.com/embed"),

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@educa.local"),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MediaBackend == "gcs" && AppConfig.GCSBucket == "" {
		log.Println("Warning: MEDIA_BACKEND=gcs without GCS_BUCKET, falling back to local media.")
		AppConfig.MediaBackend = "local"
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
