// README: Config loader: defaults, optional YAML file, .env and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type HTTPConfig struct {
	Addr        string        `yaml:"addr"`
	ChatTimeout time.Duration `yaml:"chat_timeout"`
	CORSOrigins []string      `yaml:"cors_origins"`
}

type DBConfig struct {
	// URL is sqlite://<path> or a postgres:// DSN.
	URL         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	// Addr empty disables the catalog cache.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CatalogConfig struct {
	SearchURL string        `yaml:"search_url"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type LLMConfig struct {
	Provider      string `yaml:"provider"`
	OpenAIKey     string `yaml:"openai_api_key"`
	GeminiKey     string `yaml:"gemini_api_key"`
	IntentModel   string `yaml:"intent_model"`
	CurationModel string `yaml:"curation_model"`
}

type Config struct {
	AppEnv           string        `yaml:"app_env"`
	LogLevel         string        `yaml:"log_level"`
	MetricsNamespace string        `yaml:"metrics_namespace"`
	HTTP             HTTPConfig    `yaml:"http"`
	DB               DBConfig      `yaml:"db"`
	Redis            RedisConfig   `yaml:"redis"`
	Catalog          CatalogConfig `yaml:"catalog"`
	LLM              LLMConfig     `yaml:"llm"`
}

func Default() Config {
	return Config{
		AppEnv:           "development",
		LogLevel:         "info",
		MetricsNamespace: "concierge",
		HTTP: HTTPConfig{
			Addr:        ":8080",
			ChatTimeout: 60 * time.Second,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		DB: DBConfig{
			URL:         "sqlite://concierge.db",
			AutoMigrate: true,
		},
		Catalog: CatalogConfig{
			SearchURL: "https://www.ediblearrangements.com/api/search/",
			BaseURL:   "https://www.ediblearrangements.com",
			Timeout:   15 * time.Second,
			CacheTTL:  10 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:      "openai",
			IntentModel:   "gpt-4o",
			CurationModel: "gpt-4o-mini",
		},
	}
}

// Load reads .env (if present), then CONCIERGE_CONFIG_FILE (if set), then the environment.
// Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := trimmedEnv("CONCIERGE_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.AppEnv = envOrDefault("APP_ENV", c.AppEnv)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.MetricsNamespace = envOrDefault("METRICS_NAMESPACE", c.MetricsNamespace)

	c.HTTP.Addr = envOrDefault("CONCIERGE_HTTP_ADDR", c.HTTP.Addr)
	if v := trimmedEnv("CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitAndTrim(v)
	}

	c.DB.URL = envOrDefault("DATABASE_URL", c.DB.URL)
	c.Redis.Addr = envOrDefault("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envOrDefault("REDIS_PASSWORD", c.Redis.Password)

	c.Catalog.SearchURL = envOrDefault("CATALOG_SEARCH_URL", c.Catalog.SearchURL)
	c.Catalog.BaseURL = envOrDefault("CATALOG_BASE_URL", c.Catalog.BaseURL)

	c.LLM.Provider = strings.ToLower(envOrDefault("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.OpenAIKey = envOrDefault("OPENAI_API_KEY", c.LLM.OpenAIKey)
	c.LLM.GeminiKey = envOrDefault("GEMINI_API_KEY", c.LLM.GeminiKey)
	c.LLM.IntentModel = envOrDefault("INTENT_MODEL", c.LLM.IntentModel)
	c.LLM.CurationModel = envOrDefault("CURATION_MODEL", c.LLM.CurationModel)

	var err error
	if c.DB.AutoMigrate, err = envBool("CONCIERGE_AUTO_MIGRATE", c.DB.AutoMigrate); err != nil {
		return err
	}
	if c.Redis.DB, err = envInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.HTTP.ChatTimeout, err = envDuration("CHAT_TIMEOUT", c.HTTP.ChatTimeout); err != nil {
		return err
	}
	if c.Catalog.Timeout, err = envDuration("CATALOG_TIMEOUT", c.Catalog.Timeout); err != nil {
		return err
	}
	if c.Catalog.CacheTTL, err = envDuration("CATALOG_CACHE_TTL", c.Catalog.CacheTTL); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q: want openai or gemini", c.LLM.Provider)
	}
	if c.HTTP.Addr == "" {
		return errors.New("CONCIERGE_HTTP_ADDR must not be empty")
	}
	if c.HTTP.ChatTimeout <= 0 {
		return errors.New("CHAT_TIMEOUT must be positive")
	}
	if c.Catalog.Timeout <= 0 {
		return errors.New("CATALOG_TIMEOUT must be positive")
	}
	if err := validateOrigins(c.HTTP.CORSOrigins); err != nil {
		return err
	}
	if _, _, err := c.DB.Driver(); err != nil {
		return err
	}
	return nil
}

// validateOrigins accepts a lone "*" or a list of http(s) origins.
func validateOrigins(origins []string) error {
	if len(origins) == 1 && origins[0] == "*" {
		return nil
	}
	for _, o := range origins {
		if o == "*" {
			return errors.New(`CORS_ORIGINS: "*" cannot be combined with other origins`)
		}
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("CORS_ORIGINS: origin %q must start with http:// or https://", o)
		}
	}
	return nil
}

// LLMKey returns the API key for the selected provider.
func (c Config) LLMKey() string {
	if c.LLM.Provider == "gemini" {
		return c.LLM.GeminiKey
	}
	return c.LLM.OpenAIKey
}

// Driver splits the database URL into a driver name ("sqlite" or "postgres") and its DSN.
func (d DBConfig) Driver() (string, string, error) {
	switch {
	case strings.HasPrefix(d.URL, "sqlite://"):
		path := strings.TrimPrefix(d.URL, "sqlite://")
		if path == "" {
			return "", "", errors.New("DATABASE_URL: empty sqlite path")
		}
		return "sqlite", path, nil
	case strings.HasPrefix(d.URL, "postgres://"), strings.HasPrefix(d.URL, "postgresql://"):
		return "postgres", d.URL, nil
	default:
		return "", "", fmt.Errorf("DATABASE_URL: unsupported scheme in %q", d.URL)
	}
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func envOrDefault(key, def string) string {
	if v := trimmedEnv(key); v != "" {
		return v
	}
	return def
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envBool(key string, def bool) (bool, error) {
	v := trimmedEnv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return b, nil
}

func envInt(key string, def int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
