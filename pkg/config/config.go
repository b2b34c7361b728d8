package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// DefaultCollection is the vector store collection that holds catalog chunks.
const DefaultCollection = "product-knowledge-base"

type Config struct {
	App       AppConfig                 `mapstructure:"app"`
	Catalog   CatalogConfig             `mapstructure:"catalog"`
	Database  DatabaseConfig            `mapstructure:"database"`
	Vector    VectorConfig              `mapstructure:"vector"`
	Gateways  map[string]GatewayConfig  `mapstructure:"gateways"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Memory    MemoryConfig              `mapstructure:"memory"`
	HTTP      HTTPConfig                `mapstructure:"http"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	Prompts   string `mapstructure:"prompts"`
	LogLevel  string `mapstructure:"log_level"`
	ModelName string `mapstructure:"model_name"`
	// LLMLog is a JSONL transcript of model exchanges. Empty disables it.
	LLMLog string `mapstructure:"llm_log"`
}

type CatalogConfig struct {
	// Source is a file path or URL. Empty means the database is the catalog.
	Source   string `mapstructure:"source"`
	RenderJS bool   `mapstructure:"render_js"`
}

type DatabaseConfig struct {
	// URL mirrors DB_SQL_URL.
	URL  string `mapstructure:"url"`
	TopK int    `mapstructure:"top_k"`
}

type VectorConfig struct {
	Store      string `mapstructure:"store"`
	Collection string `mapstructure:"collection"`
	Path       string `mapstructure:"path"`
	URL        string `mapstructure:"url"`
	NumResults int    `mapstructure:"num_results"`
}

type GatewayConfig struct {
	Token   string `mapstructure:"token"`
	Enabled bool   `mapstructure:"enabled"`
}

type ProviderConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	BaseURL        string `mapstructure:"base_url"`
	Enabled        bool   `mapstructure:"enabled"`
}

type MemoryConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

type HTTPConfig struct {
	Addr               string `mapstructure:"addr"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that sets those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

// SetDefaults registers defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "salesgpt")
	v.SetDefault("app.prompts", "./prompts")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.top_k", 5)
	v.SetDefault("vector.store", "chromem")
	v.SetDefault("vector.collection", DefaultCollection)
	v.SetDefault("vector.num_results", 4)
	v.SetDefault("memory.type", "sqlite")
	v.SetDefault("memory.path", "salesgpt.db")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.rate_limit_per_minute", 60)
	v.SetDefault("http.trust_proxy", false)
}

// envKeys are the keys without a default that SALESGPT_* may still set.
// AutomaticEnv only answers for keys viper already knows about.
var envKeys = []string{
	"app.llm_log",
	"catalog.source",
	"catalog.render_js",
	"vector.path",
	"vector.url",
	"gateways.telegram.token",
	"gateways.telegram.enabled",
	"providers.openai.model",
	"providers.openai.embedding_model",
	"providers.openai.enabled",
	"providers.anthropic.model",
	"providers.anthropic.base_url",
	"providers.anthropic.enabled",
}

// bindEnv maps the plain environment names the catalog tooling has always used.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("database.url", "DB_SQL_URL")
	_ = v.BindEnv("app.model_name", "MODEL_NAME")
	_ = v.BindEnv("providers.openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("providers.anthropic.api_key", "ANTHROPIC_API_KEY")
}

// Load reads the config file at path (if any) and layers environment on top.
// A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	bindEnv(v)

	v.SetEnvPrefix("SALESGPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	// An env-provided key enables the provider even without a config file.
	for _, name := range []string{"openai", "anthropic"} {
		p := c.Providers[name]
		if p.APIKey != "" && !p.Enabled && p.Model == "" {
			p.Enabled = true
			c.Providers[name] = p
		}
	}
	if c.App.ModelName != "" {
		for name, p := range c.Providers {
			if p.Enabled {
				p.Model = c.App.ModelName
				c.Providers[name] = p
			}
		}
	}
	c.Database.URL = strings.TrimSpace(c.Database.URL)
	c.Catalog.Source = strings.TrimSpace(c.Catalog.Source)
}

// GetDefaultProvider returns the enabled provider, preferring openai so
// results are stable when several are enabled.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	if p, ok := c.Providers["openai"]; ok && p.Enabled {
		return "openai", p
	}
	names := make([]string, 0, len(c.Providers))
	for name, p := range c.Providers {
		if p.Enabled {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", ProviderConfig{}
	}
	sort.Strings(names)
	return names[0], c.Providers[names[0]]
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
