package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
	Server      struct {
		Port            int           `yaml:"port" env:"PORT"`
		BasePath        string        `yaml:"base_path"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled"`
		Path          string        `yaml:"path"`
		SlowThreshold time.Duration `yaml:"slow_threshold"`
	} `yaml:"metrics"`
	Storage struct {
		Backend string `yaml:"backend" env:"STORAGE_BACKEND"`
		SQLite  struct {
			Path string `yaml:"path" env:"SQLITE_PATH"`
		} `yaml:"sqlite"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host" env:"CLICKHOUSE_HOST"`
		Port             int           `yaml:"port" env:"CLICKHOUSE_PORT"`
		Database         string        `yaml:"database" env:"CLICKHOUSE_DATABASE"`
		User             string        `yaml:"user" env:"CLICKHOUSE_USER"`
		Password         string        `yaml:"password" env:"CLICKHOUSE_PASSWORD"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		Host     string `yaml:"host" env:"REDIS_HOST"`
		Port     int    `yaml:"port" env:"REDIS_PORT"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Market struct {
		BaseURL  string        `yaml:"base_url" env:"MARKET_BASE_URL"`
		APIKey   string        `yaml:"api_key" env:"COINGECKO_API_KEY"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl" env:"MARKET_CACHE_TTL"`
	} `yaml:"market"`
	Fees struct {
		Source     string `yaml:"source" env:"FEES_SOURCE"`
		MempoolURL string `yaml:"mempool_url"`
		Schedule   string `yaml:"schedule"`
	} `yaml:"fees"`
	AI struct {
		Provider  string        `yaml:"provider" env:"LLM_PROVIDER"`
		APIKey    string        `yaml:"api_key" env:"LLM_API_KEY"`
		Model     string        `yaml:"model" env:"LLM_MODEL"`
		BaseURL   string        `yaml:"base_url"`
		MaxTokens int           `yaml:"max_tokens"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"ai"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled" env:"KAFKA_ENABLED"`
		Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
		Topic        string   `yaml:"topic" env:"KAFKA_TOPIC"`
		GroupID      string   `yaml:"group_id"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
	Stream struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"stream"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// Default returns a config populated with the values used when the YAML omits a key.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Server.Port = 8001
	c.Server.BasePath = "/api"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.CORSOrigins = []string{"*"}
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Metrics.SlowThreshold = 2 * time.Second
	c.Storage.Backend = "sqlite"
	c.Storage.SQLite.Path = "oracle.db"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "oracle"
	c.Redis.Host = "localhost"
	c.Redis.Port = 6379
	c.Redis.Prefix = "oracle"
	c.Market.BaseURL = "https://api.coingecko.com/api/v3"
	c.Market.Timeout = 30 * time.Second
	c.Fees.Source = "static"
	c.Fees.MempoolURL = "https://mempool.space"
	c.Fees.Schedule = "@every 5m"
	c.AI.Provider = "openai"
	c.AI.Model = "gpt-4o-mini"
	c.AI.MaxTokens = 1024
	c.AI.Timeout = 60 * time.Second
	c.Kafka.Topic = "oracle.recommendations"
	c.Kafka.GroupID = "oracle-agent"
	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "gzip"
	c.RateLimit.Capacity = 10
	c.RateLimit.RefillPerSec = 1
	c.Stream.Interval = 30 * time.Second
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required")
		}
	default:
		return fmt.Errorf("storage.backend must be 'sqlite' or 'clickhouse', got '%s'", c.Storage.Backend)
	}
	if c.Fees.Source != "static" && c.Fees.Source != "mempool" {
		return fmt.Errorf("fees.source must be 'static' or 'mempool', got '%s'", c.Fees.Source)
	}
	if c.AI.Provider != "openai" && c.AI.Provider != "anthropic" {
		return fmt.Errorf("ai.provider must be 'openai' or 'anthropic', got '%s'", c.AI.Provider)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// AIEnabled reports whether a text-generation credential is configured.
func (c *Config) AIEnabled() bool { return c.AI.APIKey != "" }
