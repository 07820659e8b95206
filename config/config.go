package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Export    ExportConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds data ingestion configuration
type CatalogConfig struct {
	DataDir          string   `mapstructure:"data_dir"`
	Patterns         []string `mapstructure:"patterns"`
	PlaceholderImage string   `mapstructure:"placeholder_image"`
	Debug            bool     `mapstructure:"debug"`
}

// ExportConfig holds shopping list export configuration
type ExportConfig struct {
	CurrencySuffix string `mapstructure:"currency_suffix"`
	StrictLatin1   bool   `mapstructure:"strict_latin1"` // Reject PDF exports that need '?' substitutions
	Paper          string `mapstructure:"paper"`         // A4P, A4L, LetterP or LetterL
	FontSize       int    `mapstructure:"font_size"`
	Title          string `mapstructure:"title"`
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // Requests per minute, 0 disables limiting
}

var supportedPapers = map[string]bool{"A4P": true, "A4L": true, "LetterP": true, "LetterL": true}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings: PRICELENS_CATALOG_DATA_DIR -> catalog.data_dir
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports variables from ./.env without overriding ones already set.
// A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return gotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Catalog defaults
	v.SetDefault("catalog.data_dir", "./data")
	v.SetDefault("catalog.patterns", []string{"*.json", "*.jsonl"})
	v.SetDefault("catalog.placeholder_image", "https://via.placeholder.com/150")
	v.SetDefault("catalog.debug", false)

	// Export defaults
	v.SetDefault("export.currency_suffix", "€")
	v.SetDefault("export.strict_latin1", false)
	v.SetDefault("export.paper", "A4P")
	v.SetDefault("export.font_size", 11)
	v.SetDefault("export.title", "Lista de la compra")

	// Session defaults
	v.SetDefault("session.ttl", "2h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Catalog.DataDir) == "" {
		return fmt.Errorf("catalog data directory is required (set PRICELENS_CATALOG_DATA_DIR)")
	}

	if len(config.Catalog.Patterns) == 0 {
		return fmt.Errorf("at least one catalog file pattern is required")
	}

	if !supportedPapers[config.Export.Paper] {
		return fmt.Errorf("export paper must be one of A4P, A4L, LetterP, LetterL, got: %s", config.Export.Paper)
	}

	if config.Export.FontSize < 6 || config.Export.FontSize > 24 {
		return fmt.Errorf("export font size must be between 6 and 24, got: %d", config.Export.FontSize)
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got: %s", config.Session.TTL)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP cannot be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
