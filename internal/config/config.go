package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Backend     BackendConfig
	State       StateConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Shop        ShopConfig
}

// BackendConfig points at the shop REST API
type BackendConfig struct {
	BaseURL string

	// Zero means no client-side timeout; calls end when their context does.
	Timeout time.Duration

	// Token used by CLI tools that act outside a browser session
	Token string
}

// StateConfig selects where session state is persisted
type StateConfig struct {
	Backend    string // memory, postgres or redis
	Secret     string
	SessionTTL time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ShopConfig holds storefront policies that the console applies locally
type ShopConfig struct {
	LowStockThreshold     int
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

const (
	StateBackendMemory   = "memory"
	StateBackendPostgres = "postgres"
	StateBackendRedis    = "redis"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	viper.SetDefault("STATE_BACKEND", StateBackendMemory)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrViper("BACKEND_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnvOrViper("SESSION_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	lowStock, err := strconv.Atoi(getEnvOrViper("LOW_STOCK_THRESHOLD", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOW_STOCK_THRESHOLD: %w", err)
	}
	shippingFee, err := decimal.NewFromString(getEnvOrViper("SHIPPING_FEE", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIPPING_FEE: %w", err)
	}
	freeShipping, err := decimal.NewFromString(getEnvOrViper("FREE_SHIPPING_THRESHOLD", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid FREE_SHIPPING_THRESHOLD: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Backend: BackendConfig{
			BaseURL: getEnvOrViper("API_BASE_URL", "http://localhost:8000/api"),
			Timeout: timeout,
			Token:   getEnvOrViper("API_TOKEN", ""),
		},
		State: StateConfig{
			Backend:    getEnvOrViper("STATE_BACKEND", StateBackendMemory),
			Secret:     getEnvOrViper("STATE_SECRET", ""),
			SessionTTL: sessionTTL,
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Shop: ShopConfig{
			LowStockThreshold:     lowStock,
			ShippingFee:           shippingFee,
			FreeShippingThreshold: freeShipping,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field combinations that cannot work together
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	switch c.State.Backend {
	case StateBackendMemory:
	case StateBackendPostgres, StateBackendRedis:
		if c.State.Secret == "" {
			return fmt.Errorf("STATE_SECRET is required when STATE_BACKEND is %s", c.State.Backend)
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.State.Backend)
	}
	if c.Shop.LowStockThreshold <= 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must be positive")
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
