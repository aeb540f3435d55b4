package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Advisory     AdvisoryConfig     `yaml:"advisory"`
	Weather      WeatherConfig      `yaml:"weather"`
	SprayProgram SprayProgramConfig `yaml:"sprayProgram"`
	Store        StoreConfig        `yaml:"store"`
	Cache        CacheConfig        `yaml:"cache"`
	Reports      ReportsConfig      `yaml:"reports"`
	Consultation ConsultationConfig `yaml:"consultation"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries of GET and HEAD requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AdvisoryConfig tunes lab classification.
type AdvisoryConfig struct {
	MarginFraction   float64 `yaml:"marginFraction"`
	TiePrefers       string  `yaml:"tiePrefers"`
	StaleAfterMonths int     `yaml:"staleAfterMonths"`
	HistoryLimit     int     `yaml:"historyLimit"`
	MaxReportBytes   int64   `yaml:"maxReportBytes"`
}

// WeatherConfig points at the forecast provider.
type WeatherConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheTTL     time.Duration `yaml:"cacheTtl"`
	ForecastDays int           `yaml:"forecastDays"`
}

// SprayProgramConfig selects the spray schedule and the smart action filter.
type SprayProgramConfig struct {
	Path          string   `yaml:"path"`
	RainSensitive []string `yaml:"rainSensitive"`
	MaxActions    int      `yaml:"maxActions"`
}

// StoreConfig selects the persistence backend. Postgres wins over SQLite when both are set.
type StoreConfig struct {
	Postgres    PostgresConfig `yaml:"postgres"`
	SQLitePath  string         `yaml:"sqlitePath"`
	AutoMigrate bool           `yaml:"autoMigrate"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig contains connection information for the forecast cache.
type CacheConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ReportsConfig configures the S3-compatible bucket store for uploaded lab reports.
type ReportsConfig struct {
	Endpoint    string `yaml:"endpoint"`
	AccessKey   string `yaml:"accessKey"`
	SecretKey   string `yaml:"secretKey"`
	Region      string `yaml:"region"`
	BucketSoil  string `yaml:"bucketSoil"`
	BucketWater string `yaml:"bucketWater"`
}

// ConsultationConfig controls in-process consultation sessions.
type ConsultationConfig struct {
	SessionIdleTTL time.Duration `yaml:"sessionIdleTtl"`
}

// Load reads configuration from .env, a YAML file and environment variables, in that order.
func Load() (*Config, error) {
	cfg := defaultConfig()

	// a missing .env is normal outside local development
	_ = godotenv.Load()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("ADVISORY_MARGIN_FRACTION"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Advisory.MarginFraction = parsed
		}
	}
	if v := os.Getenv("ADVISORY_TIE_PREFERS"); v != "" {
		cfg.Advisory.TiePrefers = v
	}
	if v := os.Getenv("ADVISORY_STALE_AFTER_MONTHS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Advisory.StaleAfterMonths = parsed
		}
	}
	if v := os.Getenv("WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("WEATHER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Timeout = parsed
		}
	}
	if v := os.Getenv("WEATHER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.CacheTTL = parsed
		}
	}
	if v := os.Getenv("SPRAY_PROGRAM_PATH"); v != "" {
		cfg.SprayProgram.Path = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Store.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("STORE_AUTO_MIGRATE"); v != "" {
		cfg.Store.AutoMigrate = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("REPORTS_ENDPOINT"); v != "" {
		cfg.Reports.Endpoint = v
	}
	if v := os.Getenv("REPORTS_ACCESS_KEY"); v != "" {
		cfg.Reports.AccessKey = v
	}
	if v := os.Getenv("REPORTS_SECRET_KEY"); v != "" {
		cfg.Reports.SecretKey = v
	}
	if v := os.Getenv("REPORTS_REGION"); v != "" {
		cfg.Reports.Region = v
	}
	if v := os.Getenv("CONSULTATION_SESSION_IDLE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Consultation.SessionIdleTTL = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     false,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
			},
		},
		Advisory: AdvisoryConfig{
			MarginFraction:   0.15,
			TiePrefers:       "manual",
			StaleAfterMonths: 12,
			HistoryLimit:     50,
			MaxReportBytes:   10 << 20,
		},
		Weather: WeatherConfig{
			BaseURL:      "https://api.open-meteo.com/v1/forecast",
			Timeout:      8 * time.Second,
			CacheTTL:     30 * time.Minute,
			ForecastDays: 7,
		},
		SprayProgram: SprayProgramConfig{
			RainSensitive: []string{"scab"},
			MaxActions:    3,
		},
		Store: StoreConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Cache: CacheConfig{
			Valkey: ValkeyConfig{Prefix: "orchard"},
		},
		Reports: ReportsConfig{
			Region:      "auto",
			BucketSoil:  "soil-reports",
			BucketWater: "water-reports",
		},
		Consultation: ConsultationConfig{
			SessionIdleTTL: 30 * time.Minute,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Advisory.MarginFraction < 0 || c.Advisory.MarginFraction > 1 {
		return errors.New("advisory.marginFraction must be within [0, 1]")
	}
	switch strings.ToLower(strings.TrimSpace(c.Advisory.TiePrefers)) {
	case "", "manual", "analytics":
	default:
		return errors.New("advisory.tiePrefers must be manual or analytics")
	}
	if c.Advisory.StaleAfterMonths <= 0 {
		return errors.New("advisory.staleAfterMonths must be positive")
	}
	if strings.TrimSpace(c.Weather.BaseURL) == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	if c.Weather.CacheTTL < 0 {
		return errors.New("weather.cacheTtl cannot be negative")
	}
	if c.Weather.ForecastDays < 1 || c.Weather.ForecastDays > 16 {
		return errors.New("weather.forecastDays must be between 1 and 16")
	}
	if c.SprayProgram.MaxActions < 0 {
		return errors.New("sprayProgram.maxActions cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Reports.Endpoint != "" && (c.Reports.AccessKey == "" || c.Reports.SecretKey == "") {
		return errors.New("reports.accessKey and reports.secretKey are required with reports.endpoint")
	}
	if c.Consultation.SessionIdleTTL < 0 {
		return errors.New("consultation.sessionIdleTtl cannot be negative")
	}
	if strings.TrimSpace(c.Reports.BucketSoil) == "" || strings.TrimSpace(c.Reports.BucketWater) == "" {
		return errors.New("reports buckets cannot be empty")
	}
	return nil
}
