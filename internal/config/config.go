package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Supabase  SupabaseConfig
	Cache     CacheConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// SupabaseConfig points at the hosted rows/auth backend.
type SupabaseConfig struct {
	URL         string
	AnonKey     string
	SessionFile string
}

// CacheConfig controls the shared query cache. An empty RedisAddr keeps the cache in memory.
type CacheConfig struct {
	StaleTime     time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	VerifyToken    string
	AppSecret      string
	BaseURL        string
	APIVersion     string
	AlertRecipient string
	AllowedSenders []string
}

// Enabled reports whether the WhatsApp block is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether snapshot export to Google Sheets is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule    string
	RefreshSchedule string
	Timezone        string
}

// MongoDBConfig holds settings for the snapshot history store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether snapshot history is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	staleTime, err := getDurationWithDefault("CACHE_STALE_TIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	redisDB, err := getIntWithDefault("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: os.Getenv("LOG_LEVEL"),
		},
		Supabase: SupabaseConfig{
			URL:         os.Getenv("SUPABASE_URL"),
			AnonKey:     os.Getenv("SUPABASE_ANON_KEY"),
			SessionFile: getenvWithDefault("SUPABASE_SESSION_FILE", ".erp-session.json"),
		},
		Cache: CacheConfig{
			StaleTime:     staleTime,
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       redisDB,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:    os.Getenv("META_VERIFY_TOKEN"),
			AppSecret:      os.Getenv("META_APP_SECRET"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertRecipient: os.Getenv("WHATSAPP_ALERT_RECIPIENT"),
			AllowedSenders: getList("WHATSAPP_ALLOWED_SENDERS"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule:    getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			RefreshSchedule: getenvWithDefault("SESSION_REFRESH_SCHEDULE", "@every 1m"),
			Timezone:        getenvWithDefault("TIMEZONE", "America/Mexico_City"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "erp_avicola"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Supabase.URL == "":
		return errors.New("SUPABASE_URL must be provided")
	case c.Supabase.AnonKey == "":
		return errors.New("SUPABASE_ANON_KEY must be provided")
	}

	if c.Cache.StaleTime <= 0 {
		return errors.New("CACHE_STALE_TIME must be positive")
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.VerifyToken == "" {
			return errors.New("META_VERIFY_TOKEN must be provided when WhatsApp is enabled")
		}
		if c.WhatsApp.AppSecret == "" {
			return errors.New("META_APP_SECRET must be provided when WhatsApp is enabled")
		}
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getIntWithDefault(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
