// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// MigrationConfig provides settings for schema migrations.
type MigrationConfig interface {
	DatabaseConfig
	GetMigrationsDir() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// CacheConfig provides settings for the provider result cache.
type CacheConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetSearchCacheTTL() time.Duration
}

// SourcesConfig provides provider credentials and outbound limits for source adapters.
// An empty credential is a normal state: the adapter either falls back or reports itself unusable.
type SourcesConfig interface {
	GetDefaultCountry() string
	GetProviderTimeout() time.Duration
	GetProviderRatePerSecond() float64
	GetGooglePlacesAPIKey() string
	GetGooglePlacesBaseURL() string
	GetYelpAPIKey() string
	GetYelpAPIBaseURL() string
	GetYelpDirectoryBaseURL() string
	GetYellBaseURL() string
	GetCrawlUserAgent() string
}

// EnrichmentConfig provides settings for the website enricher.
type EnrichmentConfig interface {
	GetCrawlTimeout() time.Duration
	GetCrawlConcurrency() int
	GetCrawlUserAgent() string
	GetCrawlMaxBodyBytes() int64
	GetEnrichmentRulesFile() string
}

// SweepConfig provides settings for the periodic enrichment sweep.
type SweepConfig interface {
	GetEnrichmentSweepInterval() time.Duration
	GetEnrichmentSweepBatchSize() int
}

// StorageConfig provides settings for S3-compatible export storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetExportsBucket() string
	IsMinIOEnabled() bool
}

// SMTPConfig provides settings for the hot-lead digest mailer.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromName() string
	GetSMTPFromAddress() string
	GetDigestRecipients() []string
	IsSMTPEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env            string
	HTTPAddr       string
	DatabaseURL    string
	MigrationsDir  string
	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
	SearchCacheTTL   time.Duration

	DefaultCountry        string
	ProviderTimeout       time.Duration
	ProviderRatePerSecond float64
	GooglePlacesAPIKey    string
	GooglePlacesBaseURL   string
	YelpAPIKey            string
	YelpAPIBaseURL        string
	YelpDirectoryBaseURL  string
	YellBaseURL           string

	CrawlTimeout        time.Duration
	CrawlConcurrency    int
	CrawlUserAgent      string
	CrawlMaxBodyBytes   int64
	EnrichmentRulesFile string

	EnrichmentSweepInterval  time.Duration
	EnrichmentSweepBatchSize int

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	ExportsBucket  string

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	SMTPFromName     string
	SMTPFromAddress  string
	DigestRecipients []string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string   { return c.DatabaseURL }
func (c *Config) GetMigrationsDir() string { return c.MigrationsDir }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig / CacheConfig implementation
func (c *Config) GetRedisURL() string              { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool        { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string        { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int         { return c.AsynqConcurrency }
func (c *Config) GetSearchCacheTTL() time.Duration { return c.SearchCacheTTL }

// SourcesConfig implementation
func (c *Config) GetDefaultCountry() string          { return c.DefaultCountry }
func (c *Config) GetProviderTimeout() time.Duration  { return c.ProviderTimeout }
func (c *Config) GetProviderRatePerSecond() float64  { return c.ProviderRatePerSecond }
func (c *Config) GetGooglePlacesAPIKey() string      { return c.GooglePlacesAPIKey }
func (c *Config) GetGooglePlacesBaseURL() string     { return c.GooglePlacesBaseURL }
func (c *Config) GetYelpAPIKey() string              { return c.YelpAPIKey }
func (c *Config) GetYelpAPIBaseURL() string          { return c.YelpAPIBaseURL }
func (c *Config) GetYelpDirectoryBaseURL() string    { return c.YelpDirectoryBaseURL }
func (c *Config) GetYellBaseURL() string             { return c.YellBaseURL }

// EnrichmentConfig implementation
func (c *Config) GetCrawlTimeout() time.Duration { return c.CrawlTimeout }
func (c *Config) GetCrawlConcurrency() int       { return c.CrawlConcurrency }
func (c *Config) GetCrawlUserAgent() string      { return c.CrawlUserAgent }
func (c *Config) GetCrawlMaxBodyBytes() int64    { return c.CrawlMaxBodyBytes }
func (c *Config) GetEnrichmentRulesFile() string { return c.EnrichmentRulesFile }

// SweepConfig implementation
func (c *Config) GetEnrichmentSweepInterval() time.Duration { return c.EnrichmentSweepInterval }
func (c *Config) GetEnrichmentSweepBatchSize() int          { return c.EnrichmentSweepBatchSize }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetExportsBucket() string  { return c.ExportsBucket }
func (c *Config) IsMinIOEnabled() bool      { return c.MinIOEndpoint != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string           { return c.SMTPHost }
func (c *Config) GetSMTPPort() int              { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string       { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string       { return c.SMTPPassword }
func (c *Config) GetSMTPFromName() string       { return c.SMTPFromName }
func (c *Config) GetSMTPFromAddress() string    { return c.SMTPFromAddress }
func (c *Config) GetDigestRecipients() []string { return c.DigestRecipients }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFromAddress != "" && len(c.DigestRecipients) > 0
}

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	return load(true)
}

// LoadWithoutDatabase reads the same settings but tolerates a missing
// DATABASE_URL. Used by tools that never touch persistence.
func LoadWithoutDatabase() (*Config, error) {
	return load(false)
}

func load(requireDatabase bool) (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "leads"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "5"), 5),
		SearchCacheTTL:   mustDuration(getEnv("SEARCH_CACHE_TTL", "6h")),

		DefaultCountry:        getEnv("DEFAULT_COUNTRY", "United Kingdom"),
		ProviderTimeout:       mustDuration(getEnv("PROVIDER_TIMEOUT", "15s")),
		ProviderRatePerSecond: mustFloat(getEnv("PROVIDER_RATE_PER_SECOND", "2"), 2),
		GooglePlacesAPIKey:    getEnv("GOOGLE_PLACES_API_KEY", ""),
		GooglePlacesBaseURL:   getEnv("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		YelpAPIKey:            getEnv("YELP_API_KEY", ""),
		YelpAPIBaseURL:        getEnv("YELP_API_BASE_URL", "https://api.yelp.com/v3"),
		YelpDirectoryBaseURL:  getEnv("YELP_DIRECTORY_BASE_URL", "https://www.yelp.co.uk"),
		YellBaseURL:           getEnv("YELL_BASE_URL", "https://www.yell.com"),

		CrawlTimeout:        mustDuration(getEnv("CRAWL_TIMEOUT", "10s")),
		CrawlConcurrency:    mustInt(getEnv("CRAWL_CONCURRENCY", "5"), 5),
		CrawlUserAgent:      getEnv("CRAWL_USER_AGENT", "Mozilla/5.0 (compatible; LeadgenBot/1.0)"),
		CrawlMaxBodyBytes:   mustInt64(getEnv("CRAWL_MAX_BODY_BYTES", "2097152"), 2*1024*1024),
		EnrichmentRulesFile: getEnv("ENRICHMENT_RULES_FILE", ""),

		EnrichmentSweepInterval:  mustDuration(getEnv("ENRICHMENT_SWEEP_INTERVAL", "30m")),
		EnrichmentSweepBatchSize: mustInt(getEnv("ENRICHMENT_SWEEP_BATCH_SIZE", "25"), 25),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		ExportsBucket:  getEnv("EXPORTS_BUCKET", "lead-exports"),

		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPFromName:     getEnv("SMTP_FROM_NAME", "Lead Pipeline"),
		SMTPFromAddress:  getEnv("SMTP_FROM_ADDRESS", ""),
		DigestRecipients: splitCSV(getEnv("DIGEST_RECIPIENTS", "")),
	}

	if requireDatabase && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.CrawlConcurrency < 1 {
		return nil, fmt.Errorf("CRAWL_CONCURRENCY must be at least 1")
	}
	if cfg.MinIOEndpoint != "" && (cfg.MinIOAccessKey == "" || cfg.MinIOSecretKey == "") {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func mustInt64(value string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
