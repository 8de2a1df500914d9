package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the expert routing service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Experts   ExpertsConfig   `mapstructure:"experts"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Profiles  ProfilesConfig  `mapstructure:"profiles"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Listen         string        `mapstructure:"listen"`
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LLMConfig contains the completion backend configuration
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SearchConfig contains web search settings
type SearchConfig struct {
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ExpertsConfig contains expert routing settings
type ExpertsConfig struct {
	MaxActive           int           `mapstructure:"max_active"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	RouterConfidence    float64       `mapstructure:"router_confidence"`
}

// SourcesConfig contains source validation settings
type SourcesConfig struct {
	MaxPerAnswer int           `mapstructure:"max_per_answer"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	CacheSize    int           `mapstructure:"cache_size"`
}

// ProfilesConfig contains user profile store settings
type ProfilesConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	TokenTracking bool   `mapstructure:"token_tracking"`
	ServiceName   string `mapstructure:"service_name"`
}

// Load loads configuration from file and environment variables. An empty
// path falls back to the default search locations.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("polymath")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("POLYMATH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Config file is optional; defaults plus env cover a full setup
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("general.listen", ":5000")
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.request_timeout", "5m")

	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 1000)
	viper.SetDefault("llm.timeout", "2m")

	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.timeout", "10s")

	viper.SetDefault("experts.max_active", 5)
	viper.SetDefault("experts.timeout", "2m")
	viper.SetDefault("experts.confidence_threshold", 0.3)
	viper.SetDefault("experts.router_confidence", 0.85)

	viper.SetDefault("sources.max_per_answer", 6)
	viper.SetDefault("sources.probe_timeout", "5s")
	viper.SetDefault("sources.cache_size", 2048)

	viper.SetDefault("profiles.redis_addr", "")
	viper.SetDefault("profiles.redis_db", 0)
	viper.SetDefault("profiles.timeout", "5s")

	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.token_tracking", true)
	viper.SetDefault("telemetry.service_name", "polymath")
}

// overrideFromEnv maps the conventional environment variables onto viper keys
// so secrets never need to live in the config file.
func overrideFromEnv() {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		viper.Set("llm.api_key", apiKey)
	}
	if apiKey := os.Getenv("BRAVE_SEARCH_KEY"); apiKey != "" {
		viper.Set("search.brave_api_key", apiKey)
	}
	if apiKey := os.Getenv("SERPER_API_KEY"); apiKey != "" {
		viper.Set("search.serper_api_key", apiKey)
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		viper.Set("profiles.redis_addr", addr)
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		viper.Set("profiles.redis_password", pass)
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			viper.Set("profiles.redis_db", n)
		}
	}
}

// validate enforces invariants that must hold before the service starts.
// A missing LLM credential is a configuration error, not a request-time one.
func validate(cfg *Config) error {
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm api key not configured (set OPENAI_API_KEY or llm.api_key)")
	}
	if cfg.Experts.MaxActive <= 0 {
		return fmt.Errorf("experts.max_active must be positive")
	}
	if cfg.Experts.RouterConfidence < 0 || cfg.Experts.RouterConfidence > 1 {
		return fmt.Errorf("experts.router_confidence must be in [0,1]")
	}
	return nil
}
