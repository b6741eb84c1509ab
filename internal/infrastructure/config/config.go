// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MEALPLANNER_SERVER_PORT
const EnvPrefix = "MEALPLANNER"

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	AI         AIConfig         `mapstructure:"ai"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Search     SearchConfig     `mapstructure:"search"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Features   FeatureFlags     `mapstructure:"features"`

	v *viper.Viper
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS        bool          `mapstructure:"enable_cors"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
	EnableCompression bool          `mapstructure:"enable_compression"`
	H2C               bool          `mapstructure:"h2c"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Replicas        []string      `mapstructure:"replicas"`
	RunMigrations   bool          `mapstructure:"run_migrations"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addrs       []string      `mapstructure:"addrs"`
	Password    string        `mapstructure:"password"`
	Database    int           `mapstructure:"database"`
	PoolSize    int           `mapstructure:"pool_size"`
	MaxRetries  int           `mapstructure:"max_retries"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// AIConfig contains LLM provider configuration
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	FallbackEnabled   bool          `mapstructure:"fallback_enabled"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxRetries        int           `mapstructure:"max_retries"`
	Ollama            OllamaConfig  `mapstructure:"ollama"`
	OpenAI            OpenAIConfig  `mapstructure:"openai"`
	Gemini            GeminiConfig  `mapstructure:"gemini"`
}

// OllamaConfig configures a local Ollama server
type OllamaConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// OpenAIConfig configures the OpenAI API
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// GeminiConfig configures Google Gemini
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// CacheConfig contains graph cache configuration
type CacheConfig struct {
	GraphTTL  time.Duration `mapstructure:"graph_ttl"`
	LocalSize int           `mapstructure:"local_size"`
}

// SearchConfig contains semantic search configuration
type SearchConfig struct {
	Backend      string `mapstructure:"backend"`
	Dimensions   int    `mapstructure:"dimensions"`
	DefaultLimit int    `mapstructure:"default_limit"`
}

// StorageConfig contains object storage configuration
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	MetricsEnabled bool    `mapstructure:"metrics_enabled"`
	MetricsPort    int     `mapstructure:"metrics_port"`
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enable          bool          `mapstructure:"enable"`
	RequestsPerMin  int           `mapstructure:"requests_per_min"`
	BurstSize       int           `mapstructure:"burst_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// FeatureFlags contains feature toggles
type FeatureFlags struct {
	EnableGeneration       bool `mapstructure:"enable_generation"`
	EnableSearch           bool `mapstructure:"enable_search"`
	EnableArchive          bool `mapstructure:"enable_archive"`
	EnableWebSocket        bool `mapstructure:"enable_websocket"`
	WarnDuplicateArtifacts bool `mapstructure:"warn_duplicate_artifacts"`
}

// Load loads configuration from .env, file and environment variables
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mealplanner")
	}

	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}
	config.v = v
	return config, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Watch re-reads the config file whenever it changes and hands the new,
// validated configuration to fn. It is a no-op when no file was loaded.
func (c *Config) Watch(fn func(*Config, fsnotify.Event), onError func(error)) bool {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return false
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(c.v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		next.v = c.v
		fn(next, e)
	})
	c.v.WatchConfig()
	return true
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Alchemorsel Meal Planner")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.enable_compression", true)
	v.SetDefault("server.h2c", false)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "mealplanner.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "mealplanner")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "mealplanner")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.replicas", []string{})
	v.SetDefault("database.run_migrations", true)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "mealplanner")

	// AI defaults
	v.SetDefault("ai.provider", "mock")
	v.SetDefault("ai.fallback_enabled", true)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.max_concurrency", 3)
	v.SetDefault("ai.requests_per_second", 2.0)
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.ollama.base_url", "http://localhost:11434")
	v.SetDefault("ai.ollama.model", "llama3.2:3b")
	v.SetDefault("ai.ollama.embedding_model", "nomic-embed-text")
	v.SetDefault("ai.openai.api_key", "")
	v.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("ai.gemini.api_key", "")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.gemini.embedding_model", "text-embedding-004")

	// Cache defaults
	v.SetDefault("cache.graph_ttl", "24h")
	v.SetDefault("cache.local_size", 512)

	// Search defaults
	v.SetDefault("search.backend", "memory")
	v.SetDefault("search.dimensions", 768)
	v.SetDefault("search.default_limit", 10)

	// Storage defaults
	v.SetDefault("storage.provider", "none")
	v.SetDefault("storage.bucket", "mealplanner-graphs")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.prefix", "graphs")

	// Monitoring defaults
	v.SetDefault("monitoring.metrics_enabled", true)
	v.SetDefault("monitoring.metrics_port", 9090)
	v.SetDefault("monitoring.tracing_enabled", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.service_name", "mealplanner")
	v.SetDefault("monitoring.sampling_rate", 0.1)

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.requests_per_min", 60)
	v.SetDefault("rate_limit.burst_size", 10)
	v.SetDefault("rate_limit.cleanup_interval", "1m")

	// Feature defaults
	v.SetDefault("features.enable_generation", true)
	v.SetDefault("features.enable_search", true)
	v.SetDefault("features.enable_archive", false)
	v.SetDefault("features.enable_websocket", true)
	v.SetDefault("features.warn_duplicate_artifacts", false)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	switch c.AI.Provider {
	case "mock", "ollama":
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("ai.openai.api_key is required for the openai provider")
		}
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("ai.gemini.api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("ai.provider must be one of mock, ollama, openai, gemini, got %q", c.AI.Provider)
	}
	if c.AI.MaxConcurrency < 1 {
		return fmt.Errorf("ai.max_concurrency must be at least 1")
	}

	switch c.Storage.Provider {
	case "none":
	case "minio", "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for %s", c.Storage.Provider)
		}
	default:
		return fmt.Errorf("storage.provider must be none, minio or s3, got %q", c.Storage.Provider)
	}

	switch c.Search.Backend {
	case "memory":
	case "pgvector":
		if c.Database.Driver != "postgres" {
			return fmt.Errorf("search.backend pgvector requires database.driver postgres")
		}
	default:
		return fmt.Errorf("search.backend must be memory or pgvector, got %q", c.Search.Backend)
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}

	if c.Cache.LocalSize < 1 {
		return fmt.Errorf("cache.local_size must be at least 1")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.Username,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetPostgresURL returns the database connection as a URL, as expected by
// pgx pools and migrate drivers
func (c *Config) GetPostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.Username, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// Redacted returns a copy with secrets blanked out, safe to log or serve
func (c *Config) Redacted() Config {
	out := *c
	out.v = nil
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	out.Database.Password = mask(out.Database.Password)
	out.Redis.Password = mask(out.Redis.Password)
	out.Auth.JWTSecret = mask(out.Auth.JWTSecret)
	out.AI.OpenAI.APIKey = mask(out.AI.OpenAI.APIKey)
	out.AI.Gemini.APIKey = mask(out.AI.Gemini.APIKey)
	out.Storage.AccessKey = mask(out.Storage.AccessKey)
	out.Storage.SecretKey = mask(out.Storage.SecretKey)
	return out
}
