// Package config provides environment configuration for the assistant.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string        `mapstructure:"port"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`

	// LLM settings
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	LLMProvider     string        `mapstructure:"llm_provider"`
	LLMModel        string        `mapstructure:"llm_model"`
	LLMMaxTokens    int           `mapstructure:"llm_max_tokens"`
	LLMTimeout      time.Duration `mapstructure:"llm_timeout"`

	// Catalog provider settings
	CatalogBaseURL         string        `mapstructure:"catalog_base_url"`
	CatalogAPIKey          string        `mapstructure:"catalog_api_key"`
	CatalogTTL             time.Duration `mapstructure:"catalog_ttl"`
	CatalogFetchTimeout    time.Duration `mapstructure:"catalog_fetch_timeout"`
	CatalogLocationTimeout time.Duration `mapstructure:"catalog_location_timeout"`

	// Channel settings
	WhatsAppToken        string `mapstructure:"whatsapp_token"`
	WhatsAppPhoneID      string `mapstructure:"whatsapp_phone_id"`
	WhatsAppVerifyToken  string `mapstructure:"whatsapp_verify_token"`
	InstagramToken       string `mapstructure:"instagram_token"`
	InstagramPageID      string `mapstructure:"instagram_page_id"`
	InstagramVerifyToken string `mapstructure:"instagram_verify_token"`

	// NATS settings
	NATSURL   string `mapstructure:"nats_url"`
	NATSToken string `mapstructure:"nats_token"`

	// State store settings; empty Redis address selects the in-memory store.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Admin API settings
	JWTSecret         string        `mapstructure:"jwt_secret"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`

	// Logging
	LogLevel string `mapstructure:"log_level"`

	// Tracing
	TracingEndpoint string `mapstructure:"tracing_endpoint"`
	TracingEnabled  bool   `mapstructure:"tracing_enabled"`
}

// Load reads configuration from .env and environment variables.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server_read_timeout", 30*time.Second)
	v.SetDefault("server_write_timeout", 120*time.Second)

	v.SetDefault("llm_provider", "anthropic")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_max_tokens", 1024)
	v.SetDefault("llm_timeout", 60*time.Second)

	v.SetDefault("catalog_base_url", "https://www.tokkobroker.com/api/v1")
	v.SetDefault("catalog_ttl", 5*time.Minute)
	v.SetDefault("catalog_fetch_timeout", 20*time.Second)
	v.SetDefault("catalog_location_timeout", 8*time.Second)

	v.SetDefault("nats_url", "nats://localhost:4222")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_secret", "development-secret-change-in-production")
	v.SetDefault("rate_limit_requests", 60)
	v.SetDefault("rate_limit_window", time.Minute)

	v.SetDefault("log_level", "info")

	v.SetDefault("tracing_endpoint", "localhost:4318")
	v.SetDefault("tracing_enabled", false)
}

// bindKeys binds every key explicitly so AutomaticEnv sees keys that have no
// default value set.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"anthropic_api_key", "openai_api_key",
		"catalog_api_key",
		"whatsapp_token", "whatsapp_phone_id", "whatsapp_verify_token",
		"instagram_token", "instagram_page_id", "instagram_verify_token",
		"nats_token", "redis_password",
	} {
		_ = v.BindEnv(key)
	}
}
