// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds MongoDB connection settings
type DatabaseConfig struct {
	URI  string
	Name string
}

// CleanupConfig holds expiration and cleanup scheduling settings
type CleanupConfig struct {
	FatigueWindow    time.Duration // how long an expose lives after creation
	PrimaryInterval  time.Duration // main cleanup cadence
	BackupInterval   time.Duration // backstop cadence in case the primary pass misses
	CommentRetention time.Duration // store-level TTL for comments
	ViewRetention    time.Duration // store-level TTL for view records
}

// MediaConfig holds S3 media storage settings
type MediaConfig struct {
	Region   string
	Bucket   string
	Endpoint string // optional, for S3-compatible stores
}

// AdminConfig holds settings for the admin surface
type AdminConfig struct {
	PasswordHash string // bcrypt hash of the admin password
	JWTSecret    string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Cleanup        *CleanupConfig
	Media          *MediaConfig
	Admin          *AdminConfig
	AllowedOrigins []string
	Debug          bool
}

// DefaultServerConfig provides default server settings
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultCleanupConfig provides default expiration and scheduling settings
func DefaultCleanupConfig() *CleanupConfig {
	return &CleanupConfig{
		FatigueWindow:    48 * time.Hour,
		PrimaryInterval:  time.Hour,
		BackupInterval:   6 * time.Hour,
		CommentRetention: 7 * 24 * time.Hour,
		ViewRetention:    7 * 24 * time.Hour,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env from the working directory or the project root when
	// running from cmd/server
	envLocations := []string{
		".env",
		"../../.env",
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		// Silent failure if no .env exists, which is fine
		_ = godotenv.Load()
	}

	serverConfig := DefaultServerConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := &DatabaseConfig{
		URI:  os.Getenv("MONGODB_URI"),
		Name: getEnvOrDefault("MONGODB_DATABASE", "captain_smart"),
	}
	if dbConfig.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is required")
	}

	cleanupConfig := DefaultCleanupConfig()

	if hoursStr := os.Getenv("FATIGUE_WINDOW_HOURS"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil || hours < 1 {
			return nil, fmt.Errorf("invalid FATIGUE_WINDOW_HOURS: %q", hoursStr)
		}
		cleanupConfig.FatigueWindow = time.Duration(hours) * time.Hour
	}

	if d, err := durationFromEnv("CLEANUP_INTERVAL", cleanupConfig.PrimaryInterval); err != nil {
		return nil, err
	} else {
		cleanupConfig.PrimaryInterval = d
	}

	if d, err := durationFromEnv("CLEANUP_BACKUP_INTERVAL", cleanupConfig.BackupInterval); err != nil {
		return nil, err
	} else {
		cleanupConfig.BackupInterval = d
	}

	if daysStr := os.Getenv("COMMENT_RETENTION_DAYS"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("invalid COMMENT_RETENTION_DAYS: %q", daysStr)
		}
		cleanupConfig.CommentRetention = time.Duration(days) * 24 * time.Hour
	}

	if daysStr := os.Getenv("VIEW_RETENTION_DAYS"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("invalid VIEW_RETENTION_DAYS: %q", daysStr)
		}
		cleanupConfig.ViewRetention = time.Duration(days) * 24 * time.Hour
	}

	mediaConfig := &MediaConfig{
		Region:   getEnvOrDefault("S3_REGION", "us-east-1"),
		Bucket:   os.Getenv("S3_BUCKET"),
		Endpoint: os.Getenv("S3_ENDPOINT"),
	}
	if mediaConfig.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is required")
	}

	adminConfig := &AdminConfig{
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
	}
	if adminConfig.PasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is required")
	}
	if adminConfig.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Cleanup:        cleanupConfig,
		Media:          mediaConfig,
		Admin:          adminConfig,
		AllowedOrigins: []string{"*"},
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// durationFromEnv parses a Go duration string from the environment,
// returning fallback when the variable is unset.
func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return d, nil
}
