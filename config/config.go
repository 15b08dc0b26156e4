package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"loserpool-go/logging"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Auth     AuthConfig     `json:"auth"`
	Feed     FeedConfig     `json:"feed"`
	Pool     PoolConfig     `json:"pool"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// AuthConfig holds admin authentication configuration
type AuthConfig struct {
	JWTSecret         string        `json:"jwt_secret"`
	AdminUser         string        `json:"admin_user"`
	AdminPasswordHash string        `json:"admin_password_hash"`
	TokenLifetime     time.Duration `json:"token_lifetime"`
}

// FeedConfig holds schedule feed configuration
type FeedConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// PoolConfig holds pool-specific configuration. FallbackWeek is the
// resolver's last-resort answer when the matchup store is empty; it is an
// explicit input, not hidden global state.
type PoolConfig struct {
	CurrentSeason int `json:"current_season"`
	FallbackWeek  int `json:"fallback_week"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine; environment variables still apply
		logging.Debugf("No .env file loaded: %v", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", "loserpool"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "loser_pool"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", "loserpool"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
			AdminUser:         getEnv("ADMIN_USER", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			TokenLifetime:     getDurationEnv("TOKEN_LIFETIME", 12*time.Hour),
		},
		Feed: FeedConfig{
			BaseURL: getEnv("FEED_BASE_URL", "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"),
			Timeout: getDurationEnv("FEED_TIMEOUT", 10*time.Second),
		},
		Pool: PoolConfig{
			CurrentSeason: getIntEnv("CURRENT_SEASON", time.Now().Year()),
			FallbackWeek:  getIntEnv("FALLBACK_WEEK", 1),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("database port is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == "change-me-in-production" && !c.IsDevelopment() {
		return fmt.Errorf("JWT secret must be changed in production")
	}

	if c.Pool.CurrentSeason < 2000 || c.Pool.CurrentSeason > 2100 {
		return fmt.Errorf("current season must be a plausible year, got: %d", c.Pool.CurrentSeason)
	}
	if c.Pool.FallbackWeek < 1 {
		return fmt.Errorf("fallback week must be at least 1, got: %d", c.Pool.FallbackWeek)
	}

	return nil
}

// IsDevelopment returns true when running in the development environment
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Server.Environment) == "development"
}

// GetServerAddress returns the full server listen address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration without sensitive data
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t)",
		c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "")
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("Feed: %s (Timeout: %s)", c.Feed.BaseURL, c.Feed.Timeout)
	logging.Infof("Pool: Season=%d, FallbackWeek=%d", c.Pool.CurrentSeason, c.Pool.FallbackWeek)
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
