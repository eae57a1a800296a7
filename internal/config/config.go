package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTokenTTLHours         = 24 * 7
	defaultMaxUploadMB           = 10
	defaultMinVisitMinutes       = 30
	defaultMaxAdvanceBookingDays = 30
	defaultReminderHoursBefore   = 2
	defaultShutdownTimeout       = 30
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	Dir           string `yaml:"dir"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Prefix        string `yaml:"prefix"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
	AccessKeyID   string `yaml:"-"` // Loaded from environment
	SecretKey     string `yaml:"-"` // Loaded from environment
	EndpointURL   string `yaml:"endpoint_url,omitempty"`
	UsePathStyle  bool   `yaml:"use_path_style"`
	PublicBaseURL string `yaml:"public_base_url,omitempty"`
}

type EmailConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Region      string `yaml:"region"`
	Sender      string `yaml:"sender"`
	AccessKeyID string `yaml:"-"` // Loaded from environment
	SecretKey   string `yaml:"-"` // Loaded from environment
}

type BookingConfig struct {
	MinVisitMinutes       int   `yaml:"min_visit_minutes"`
	MaxAdvanceBookingDays int   `yaml:"max_advance_booking_days"`
	RequireConfirmation   bool  `yaml:"require_confirmation"`
	ReminderHoursBefore   int64 `yaml:"reminder_hours_before"`
}

type Config struct {
	App struct {
		Name                   string `yaml:"name"`
		Environment            string `yaml:"environment"`
		Port                   int    `yaml:"port"`
		BaseURL                string `yaml:"base_url"`
		TokenTTLHours          int    `yaml:"token_ttl_hours"`
		TrustProxy             bool   `yaml:"trust_proxy"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
		SecretKey              string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Email    EmailConfig    `yaml:"email"`
	Booking  BookingConfig  `yaml:"booking"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Map struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"map"`

	Features struct {
		EnableScheduler bool `yaml:"enable_scheduler"`
		EnableDebug     bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Storage.AccessKeyID = os.Getenv("STORAGE_ACCESS_KEY_ID")
	cfg.Storage.SecretKey = os.Getenv("STORAGE_SECRET_ACCESS_KEY")
	cfg.Email.AccessKeyID = os.Getenv("SES_ACCESS_KEY_ID")
	cfg.Email.SecretKey = os.Getenv("SES_SECRET_ACCESS_KEY")
	cfg.Map.APIKey = os.Getenv("MAP_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills defaults. It does not read the
// environment or validate the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.TokenTTLHours <= 0 {
		c.App.TokenTTLHours = defaultTokenTTLHours
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		c.App.ShutdownTimeoutSeconds = defaultShutdownTimeout
	}
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.MaxUploadMB <= 0 {
		c.Storage.MaxUploadMB = defaultMaxUploadMB
	}
	if c.Booking.MinVisitMinutes <= 0 {
		c.Booking.MinVisitMinutes = defaultMinVisitMinutes
	}
	if c.Booking.MaxAdvanceBookingDays <= 0 {
		c.Booking.MaxAdvanceBookingDays = defaultMaxAdvanceBookingDays
	}
	if c.Booking.ReminderHoursBefore <= 0 {
		c.Booking.ReminderHoursBefore = defaultReminderHoursBefore
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.App.SecretKey == "" {
		return fmt.Errorf("APP_SECRET_KEY is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage dir is required for local storage")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for s3")
		}
		if c.Storage.Region == "" {
			return fmt.Errorf("storage region is required for s3")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}

	if c.Email.Enabled {
		if c.Email.Region == "" || c.Email.Sender == "" {
			return fmt.Errorf("email region and sender are required when email is enabled")
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.App.TokenTTLHours) * time.Hour
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) MaxUploadBytes() int64 {
	return c.Storage.MaxUploadMB << 20
}

func (b BookingConfig) MinVisitDuration() time.Duration {
	return time.Duration(b.MinVisitMinutes) * time.Minute
}

// Horizon is how far ahead a visit may start.
func (b BookingConfig) Horizon() time.Duration {
	return time.Duration(b.MaxAdvanceBookingDays) * 24 * time.Hour
}

func (b BookingConfig) ReminderLead() time.Duration {
	return time.Duration(b.ReminderHoursBefore) * time.Hour
}
