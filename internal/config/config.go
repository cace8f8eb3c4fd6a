package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backend and aggregation source names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"

	SourceRecords = "records"
	SourceViews   = "views"
)

type Config struct {
	// HTTP Server
	Port               string
	TrustedProxies     []string
	RateLimitPerMinute int
	RequestTimeout     time.Duration

	// Data
	DataBackend       string
	AggregationSource string
	DataDir           string
	SQLiteDBPath      string
	SQLiteSeed        bool

	// Dashboard
	Timezone    string
	MonthCount  int
	HorizonDays int

	// Cache
	CacheTTL      time.Duration
	CacheSize     int
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string

	// Workers
	RenewalInterval time.Duration
	ExportInterval  time.Duration
	ExportLocale    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleRevenueSheet       string
	GoogleBreakdownSheet     string
	GoogleOverdueSheet       string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),

		DataBackend:       getEnv("DATA_BACKEND", BackendMemory),
		AggregationSource: getEnv("AGGREGATION_SOURCE", SourceRecords),
		DataDir:           getEnv("DATA_DIR", "./data"),
		SQLiteDBPath:      getEnv("SQLITE_DB_PATH", "./data/accountant.db"),
		SQLiteSeed:        getEnvBool("SQLITE_SEED", false),

		Timezone:    getEnv("TIMEZONE", "Asia/Dubai"),
		MonthCount:  getEnvInt("MONTH_COUNT", 12),
		HorizonDays: getEnvInt("HORIZON_DAYS", 30),

		CacheTTL:      getEnvDuration("CACHE_TTL", time.Minute),
		CacheSize:     getEnvInt("CACHE_SIZE", 64),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "accountant.records"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "accountant.sheets_export"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RenewalInterval: getEnvDuration("RENEWAL_INTERVAL", time.Hour),
		ExportInterval:  getEnvDuration("EXPORT_INTERVAL", 0),
		ExportLocale:    getEnv("EXPORT_LOCALE", "ar"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleRevenueSheet:       getEnv("GOOGLE_REVENUE_SHEET", "Monthly Revenue"),
		GoogleBreakdownSheet:     getEnv("GOOGLE_BREAKDOWN_SHEET", "Expense Breakdown"),
		GoogleOverdueSheet:       getEnv("GOOGLE_OVERDUE_SHEET", "Overdue"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}
	if c.RequestTimeout < 100*time.Millisecond || c.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be between 100ms and 5m", c.RequestTimeout))
	}

	// Validate data backend
	validBackends := []string{BackendMemory, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	validSources := []string{SourceRecords, SourceViews}
	if !slices.Contains(validSources, c.AggregationSource) {
		errors = append(errors, fmt.Sprintf("invalid aggregation source '%s': must be one of %v", c.AggregationSource, validSources))
	} else if c.AggregationSource == SourceViews && c.DataBackend != BackendSQLite {
		errors = append(errors, "aggregation source 'views' requires the sqlite backend")
	}

	if c.DataBackend == BackendMemory || c.SQLiteSeed {
		if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory '%s' does not exist", c.DataDir))
		}
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}
	if c.MonthCount < 1 || c.MonthCount > 120 {
		errors = append(errors, fmt.Sprintf("invalid month count %d: must be between 1 and 120", c.MonthCount))
	}
	if c.HorizonDays < 0 || c.HorizonDays > 366 {
		errors = append(errors, fmt.Sprintf("invalid horizon %d days: must be between 0 and 366", c.HorizonDays))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.RedisAddr != "" {
		if _, _, err := net.SplitHostPort(c.RedisAddr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Redis address '%s': must be host:port", c.RedisAddr))
		}
		if c.RedisDB < 0 {
			errors = append(errors, fmt.Sprintf("invalid Redis DB %d: must not be negative", c.RedisDB))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Validate worker configuration
	if c.RenewalInterval < time.Minute || c.RenewalInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid renewal interval %v: must be between 1 minute and 24 hours", c.RenewalInterval))
	}
	if c.ExportInterval != 0 && (c.ExportInterval < time.Minute || c.ExportInterval > 24*time.Hour) {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be 0 or between 1 minute and 24 hours", c.ExportInterval))
	}
	if c.ExportLocale != "ar" && c.ExportLocale != "en" {
		errors = append(errors, fmt.Sprintf("invalid export locale '%s': must be 'ar' or 'en'", c.ExportLocale))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateExport checks the settings only the export worker needs.
func (c *Config) ValidateExport() error {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required for the sheets export")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	if c.AMQPURL == "" && c.ExportInterval == 0 {
		errors = append(errors, "either AMQP_URL or EXPORT_INTERVAL must be set for the export worker")
	}
	if c.AMQPURL != "" && c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty for the export worker")
	}
	if len(errors) > 0 {
		return fmt.Errorf("export configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
