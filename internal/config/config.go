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
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Recommend RecommendConfig `yaml:"recommend" mapstructure:"recommend"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings. An empty key disables the
// AI rerank path entirely; the heuristic fallback serves every request.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RecommendConfig bounds the recommendation pipeline.
type RecommendConfig struct {
	RadiusMinMeters     int     `yaml:"radius_min_meters" mapstructure:"radius_min_meters"`
	RadiusMaxMeters     int     `yaml:"radius_max_meters" mapstructure:"radius_max_meters"`
	RadiusDefaultMeters int     `yaml:"radius_default_meters" mapstructure:"radius_default_meters"`
	TopK                int     `yaml:"top_k" mapstructure:"top_k"`
	FinalCount          int     `yaml:"final_count" mapstructure:"final_count"`
	RerankMax           int     `yaml:"rerank_max" mapstructure:"rerank_max"`
	EnrichConcurrency   int     `yaml:"enrich_concurrency" mapstructure:"enrich_concurrency"`
	DetailsRatePerSec   float64 `yaml:"details_rate_per_sec" mapstructure:"details_rate_per_sec"`
	CallTimeoutSecs     int     `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
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
	v.SetEnvPrefix("FORKCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("recommend.radius_min_meters", 100)
	v.SetDefault("recommend.radius_max_meters", 5000)
	v.SetDefault("recommend.radius_default_meters", 1000)
	v.SetDefault("recommend.top_k", 8)
	v.SetDefault("recommend.final_count", 3)
	v.SetDefault("recommend.rerank_max", 4)
	v.SetDefault("recommend.enrich_concurrency", 4)
	v.SetDefault("recommend.details_rate_per_sec", 5)
	v.SetDefault("recommend.call_timeout_secs", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
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

// Validate checks that the settings a command depends on are present.
func (c *Config) Validate() error {
	if c.Places.APIKey == "" {
		return eris.New("config: places.api_key is required")
	}
	if c.Recommend.RadiusMinMeters > c.Recommend.RadiusMaxMeters {
		return eris.Errorf("config: radius window [%d,%d] is inverted",
			c.Recommend.RadiusMinMeters, c.Recommend.RadiusMaxMeters)
	}
	return nil
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
