package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"coinbank/database"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	ListenAddr string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Authentication
	JWTSecret          string
	JWTExpiryMinutes   int
	RegistrationSecret string // optional, gates server registration
	ServerAPISalt      string // appended to API keys before hashing

	// IP allow-list for the authenticated API
	AllowedIPs      []string
	AllowedIPsLocal []string // additionally allowed outside production

	// Daily reward
	DailyRewardAmount  int64
	DailyResetHour     int
	DailyResetMinute   int
	DailyResetTimezone string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// SetForTesting replaces the global instance. Tests only.
func SetForTesting(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// ResetLocation returns the time zone the daily reset boundary is defined in.
func (c *Config) ResetLocation() *time.Location {
	loc, err := time.LoadLocation(c.DailyResetTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiryMinutes:   10,
		RegistrationSecret: os.Getenv("REGISTRATION_SECRET"),
		ServerAPISalt:      os.Getenv("SERVER_API_SALT"),

		AllowedIPs:      splitList(os.Getenv("ALLOWED_IPS")),
		AllowedIPsLocal: splitList(os.Getenv("ALLOWED_IPS_LOCAL")),

		DailyRewardAmount:  50,
		DailyResetHour:     6,
		DailyResetMinute:   30,
		DailyResetTimezone: getEnvWithDefault("DAILY_RESET_TIMEZONE", "Europe/Berlin"),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if expiry := os.Getenv("JWT_EXPIRY_MINUTES"); expiry != "" {
		if parsed, err := strconv.Atoi(expiry); err == nil {
			config.JWTExpiryMinutes = parsed
		}
	}
	if reward := os.Getenv("DAILY_REWARD_AMOUNT"); reward != "" {
		if parsed, err := strconv.ParseInt(reward, 10, 64); err == nil {
			config.DailyRewardAmount = parsed
		}
	}
	if hour := os.Getenv("DAILY_RESET_HOUR"); hour != "" {
		if parsed, err := strconv.Atoi(hour); err == nil && parsed >= 0 && parsed <= 23 {
			config.DailyResetHour = parsed
		}
	}
	if minute := os.Getenv("DAILY_RESET_MINUTE"); minute != "" {
		if parsed, err := strconv.Atoi(minute); err == nil && parsed >= 0 && parsed <= 59 {
			config.DailyResetMinute = parsed
		}
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// NewTestConfig returns a config suitable for tests
func NewTestConfig() *Config {
	return &Config{
		ListenAddr:         ":0",
		JWTSecret:          "test-secret",
		JWTExpiryMinutes:   10,
		DailyRewardAmount:  50,
		DailyResetHour:     6,
		DailyResetMinute:   30,
		DailyResetTimezone: "Europe/Berlin",
		Environment:        "test",
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
