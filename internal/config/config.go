package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Portfolio PortfolioConfig `yaml:"portfolio" mapstructure:"portfolio"`
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	SerpAPI   SerpAPIConfig   `yaml:"serpapi" mapstructure:"serpapi"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Intel     IntelConfig     `yaml:"intel" mapstructure:"intel"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PortfolioConfig locates the portfolio workbook.
type PortfolioConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// EmbeddingConfig configures embedding generation and the on-disk cache.
type EmbeddingConfig struct {
	Model      string `yaml:"model" mapstructure:"model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	BatchSize  int    `yaml:"batch_size" mapstructure:"batch_size"`
	CachePath  string `yaml:"cache_path" mapstructure:"cache_path"`
}

// OpenAIConfig holds OpenAI API settings (embeddings + JSON-mode completions).
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings (text completions).
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SerpAPIConfig holds the keyed search API settings.
type SerpAPIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SearchConfig tunes the cascade and the quality feedback loop. The
// heuristic thresholds live here rather than as literals in the cascade.
type SearchConfig struct {
	TargetPerQuery     int     `yaml:"target_per_query" mapstructure:"target_per_query"`
	MaxQueries         int     `yaml:"max_queries" mapstructure:"max_queries"`
	StopFraction       float64 `yaml:"stop_fraction" mapstructure:"stop_fraction"`
	EngineDelayMillis  int     `yaml:"engine_delay_millis" mapstructure:"engine_delay_millis"`
	QueryDelayMillis   int     `yaml:"query_delay_millis" mapstructure:"query_delay_millis"`
	QualityThreshold   float64 `yaml:"quality_threshold" mapstructure:"quality_threshold"`
	LowVolumeThreshold int     `yaml:"low_volume_threshold" mapstructure:"low_volume_threshold"`
	WebsiteThreshold   int     `yaml:"website_threshold" mapstructure:"website_threshold"`
	TargetCategories   int     `yaml:"target_categories" mapstructure:"target_categories"`
	Retries            int     `yaml:"retries" mapstructure:"retries"`
}

// ScrapeConfig configures page fetching.
type ScrapeConfig struct {
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinContentLen int `yaml:"min_content_len" mapstructure:"min_content_len"`
	MaxBodyBytes  int `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// IntelConfig bounds the extracted intelligence payload.
type IntelConfig struct {
	MaxProjects      int `yaml:"max_projects" mapstructure:"max_projects"`
	MaxAnnouncements int `yaml:"max_announcements" mapstructure:"max_announcements"`
	MaxStrategic     int `yaml:"max_strategic" mapstructure:"max_strategic"`
	MaxCompetitors   int `yaml:"max_competitors" mapstructure:"max_competitors"`
	MaxRoadmap       int `yaml:"max_roadmap" mapstructure:"max_roadmap"`
	MaxLeadership    int `yaml:"max_leadership" mapstructure:"max_leadership"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	MaxConcurrentClients int `yaml:"max_concurrent_clients" mapstructure:"max_concurrent_clients"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRESALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("portfolio.path", "portfolio.xlsx")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimensions", 1536)
	v.SetDefault("embedding.batch_size", 20)
	v.SetDefault("embedding.cache_path", "portfolio_embeddings_cache.json")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("search.target_per_query", 8)
	v.SetDefault("search.max_queries", 10)
	v.SetDefault("search.stop_fraction", 0.7)
	v.SetDefault("search.engine_delay_millis", 1000)
	v.SetDefault("search.query_delay_millis", 2000)
	v.SetDefault("search.quality_threshold", 0.5)
	v.SetDefault("search.low_volume_threshold", 15)
	v.SetDefault("search.website_threshold", 20)
	v.SetDefault("search.target_categories", 5)
	v.SetDefault("search.retries", 3)
	v.SetDefault("scrape.timeout_secs", 15)
	v.SetDefault("scrape.min_content_len", 200)
	v.SetDefault("scrape.max_body_bytes", 512*1024)
	v.SetDefault("intel.max_projects", 15)
	v.SetDefault("intel.max_announcements", 15)
	v.SetDefault("intel.max_strategic", 15)
	v.SetDefault("intel.max_competitors", 10)
	v.SetDefault("intel.max_roadmap", 12)
	v.SetDefault("intel.max_leadership", 8)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("batch.max_concurrent_clients", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
