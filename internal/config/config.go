package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jengzang/rose-backend-go/internal/geometry"
)

// Config is the application configuration
type Config struct {
	Port       string
	DBPath     string
	JWTSecret  string
	Debug      bool
	GinMode    string
	RateLimit  int
	RateWindow time.Duration
	// Geometry is used when the database holds no saved geometry
	Geometry geometry.Config
}

// Load reads .env if present, then the environment
func Load() (*Config, error) {
	// a missing .env is normal in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnvOrDefault("PORT", ":8080"),
		DBPath:     getEnvOrDefault("DB_PATH", "./data/rose.db"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Debug:      getEnvBoolOrDefault("DEBUG", false),
		GinMode:    getEnvOrDefault("GIN_MODE", "release"),
		RateLimit:  getEnvIntOrDefault("RATE_LIMIT", 120),
		RateWindow: getEnvDurationOrDefault("RATE_WINDOW", time.Minute),
		Geometry:   geometry.DefaultConfig(),
	}

	cfg.Geometry.IsEqualArea = getEnvBoolOrDefault("DEFAULT_EQUAL_AREA", cfg.Geometry.IsEqualArea)
	if size := getEnvFloatOrDefault("DEFAULT_SECTOR_SIZE", cfg.Geometry.SectorSize); size != cfg.Geometry.SectorSize {
		cfg.Geometry.SectorSize = size
		cfg.Geometry.SectorCount = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive, got %d", c.RateLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be positive, got %s", c.RateWindow)
	}
	if err := c.Geometry.Validate(); err != nil {
		return fmt.Errorf("default geometry: %w", err)
	}
	return nil
}

// NewLogger builds the process logger and installs it as the zap global
func NewLogger(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		logger, err = z.Build()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
