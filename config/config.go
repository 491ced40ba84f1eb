package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIRONMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		// A missing .env is fine, the process environment is used as is
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV string
	PORT   int
	// Database
	DB_DRIVER    string
	DB_PATH      string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	// HTTP
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int
	RATE_LIMIT_WINDOW   time.Duration
	// Redis (optional, shared limiter storage)
	REDIS_URL string
	// Scheduled jobs
	CRON_ENABLED      bool
	SNAPSHOT_SCHEDULE string
	// S3-compatible snapshot storage
	SNAPSHOT_BUCKET string
	SNAPSHOT_PREFIX string
	S3_ENDPOINT     string
	S3_REGION       string
	S3_ACCESS_KEY   string
	S3_SECRET_KEY   string
	// Seed sample tasks on an empty table at startup
	SEED_ON_START bool
}

// IsProduction reports whether the process runs with GO_ENV=production
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 5000
	}

	rateLimitRequests, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS"))
	if err != nil || rateLimitRequests < 0 {
		rateLimitRequests = 100
	}

	rateLimitWindow, err := time.ParseDuration(os.Getenv("RATE_LIMIT_WINDOW"))
	if err != nil || rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}

	envVariables := &EnvironmentVariable{
		GO_ENV: os.Getenv("GO_ENV"),
		PORT:   port,
		// Database
		DB_DRIVER:    getEnvOrDefault("DB_DRIVER", "sqlite"),
		DB_PATH:      getEnvOrDefault("DB_PATH", "database.db"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getEnvOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		// HTTP
		ALLOWED_ORIGINS:     getEnvOrDefault("ALLOWED_ORIGINS", "*"),
		RATE_LIMIT_REQUESTS: rateLimitRequests,
		RATE_LIMIT_WINDOW:   rateLimitWindow,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Cron, default to enabled
		CRON_ENABLED:      os.Getenv("CRON_ENABLED") != "false",
		SNAPSHOT_SCHEDULE: getEnvOrDefault("SNAPSHOT_SCHEDULE", "0 0 2 * * *"),
		// Snapshots
		SNAPSHOT_BUCKET: os.Getenv("SNAPSHOT_BUCKET"),
		SNAPSHOT_PREFIX: getEnvOrDefault("SNAPSHOT_PREFIX", "snapshots"),
		S3_ENDPOINT:     os.Getenv("S3_ENDPOINT"),
		S3_REGION:       getEnvOrDefault("S3_REGION", "us-east-1"),
		S3_ACCESS_KEY:   os.Getenv("S3_ACCESS_KEY"),
		S3_SECRET_KEY:   os.Getenv("S3_SECRET_KEY"),
		SEED_ON_START:   os.Getenv("SEED_ON_START") == "true",
	}

	return envVariables, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
