package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"StockLens/pkg/util"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceHTTP       = "http"
	SourceClickHouse = "clickhouse"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	// Source selects where dashboard inputs come from: "http" or "clickhouse".
	Source   string `yaml:"source"`
	Upstream struct {
		BaseURL        string        `yaml:"base_url"`
		Timeout        time.Duration `yaml:"timeout"`
		RetryMaxElapse time.Duration `yaml:"retry_max_elapsed"`
		RetryInitial   time.Duration `yaml:"retry_initial"`
	} `yaml:"upstream"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		InputTopic   string   `yaml:"input_topic"`
		OutputTopic  string   `yaml:"output_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"ratelimit"`
	// Grading overrides the default threshold tables per metric id.
	Grading    map[string]GradingTable `yaml:"grading"`
	Importance struct {
		DominantCount   int     `yaml:"dominant_count"`
		MinDisplayWidth float64 `yaml:"min_display_width"`
	} `yaml:"importance"`
	Chart struct {
		WindowDays   int `yaml:"window_days"`
		ForwardDays  int `yaml:"forward_days"`
		HistoryLimit int `yaml:"history_limit"`
	} `yaml:"chart"`
}

// GradingTable is the YAML form of one metric's threshold table.
type GradingTable struct {
	Direction string        `yaml:"direction"`
	Bands     []GradingBand `yaml:"bands"`
	Otherwise GradingBand   `yaml:"otherwise"`
}

type GradingBand struct {
	Bound float64 `yaml:"bound"`
	Label string  `yaml:"label"`
	Tier  string  `yaml:"tier"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present) and config from YAML, then overrides
// with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = util.SplitCSV(v)
	}
	c.Cache.Redis.DB = util.ParseIntDefault(os.Getenv("REDIS_DB"), c.Cache.Redis.DB)
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Source == "" {
		c.Source = SourceHTTP
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 5 * time.Second
	}
	if c.Upstream.RetryMaxElapse <= 0 {
		c.Upstream.RetryMaxElapse = 10 * time.Second
	}
	if c.Upstream.RetryInitial <= 0 {
		c.Upstream.RetryInitial = 200 * time.Millisecond
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = time.Minute
	}
	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 5
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	if c.Importance.DominantCount == 0 {
		c.Importance.DominantCount = 3
	}
	if c.Importance.MinDisplayWidth == 0 {
		c.Importance.MinDisplayWidth = 2
	}
	if c.Chart.WindowDays <= 0 {
		c.Chart.WindowDays = 30
	}
	if c.Chart.ForwardDays <= 0 {
		c.Chart.ForwardDays = 7
	}
	if c.Chart.HistoryLimit <= 0 {
		c.Chart.HistoryLimit = 30
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return errors.New("environment is required")
	}
	switch c.Source {
	case SourceHTTP:
		if c.Upstream.BaseURL == "" {
			return errors.New("upstream.base_url is required for source 'http'")
		}
	case SourceClickHouse:
		if c.ClickHouse.Host == "" {
			return errors.New("clickhouse.host is required for source 'clickhouse'")
		}
	default:
		return fmt.Errorf("source must be 'http' or 'clickhouse', got '%s'", c.Source)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.InputTopic == "" || c.Kafka.OutputTopic == "" {
			return errors.New("kafka.input_topic and kafka.output_topic are required")
		}
	}
	if c.Importance.DominantCount < 0 {
		return errors.New("importance.dominant_count must be >= 0")
	}
	if c.Importance.MinDisplayWidth < 0 {
		return errors.New("importance.min_display_width must be >= 0")
	}
	return nil
}
