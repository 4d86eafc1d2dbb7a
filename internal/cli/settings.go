package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/brandlens/internal/model"
)

const envPrefix = "BRANDLENS"

// backendKeyEnv maps an LLM backend to the well-known env var holding its key
var backendKeyEnv = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"claude":     "ANTHROPIC_API_KEY",
	"gemini":     "GEMINI_API_KEY",
	"google":     "GEMINI_API_KEY",
	"perplexity": "PERPLEXITY_API_KEY",
}

// setupViper points v at the config file and binds env vars.
// Secrets are never read from the config file, only from the environment.
func setupViper(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		v.AddConfigPath(filepath.Join(home, ".brandlens"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	// BRANDLENS_STORE_BACKEND overrides store.backend, and so on
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for backend, env := range backendKeyEnv {
		_ = v.BindEnv("keys."+backend, envPrefix+"_"+strings.ToUpper(backend)+"_API_KEY", env)
	}
	for _, p := range model.Providers {
		_ = v.BindEnv("providers."+string(p)+".api_key", envPrefix+"_PROVIDERS_"+strings.ToUpper(string(p))+"_API_KEY")
	}
	_ = v.BindEnv("extractor.api_key", envPrefix+"_EXTRACTOR_API_KEY")
	_ = v.BindEnv("store.airtable_api_key", envPrefix+"_AIRTABLE_API_KEY", "AIRTABLE_API_KEY")
	_ = v.BindEnv("brand_assets.api_key", envPrefix+"_BRAND_DEV_API_KEY", "BRAND_DEV_API_KEY")
	_ = v.BindEnv("ollama.base_url", envPrefix+"_OLLAMA_BASE_URL", "OLLAMA_BASE_URL")
	return nil
}

// resolveConfig layers defaults, the config file v read, and env overrides
func resolveConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := v.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	fillProviderDefaults(cfg)

	strs := map[string]*string{
		"store.backend":          &cfg.Store.Backend,
		"store.airtable_base_id": &cfg.Store.AirtableBaseID,
		"store.sqlite_path":      &cfg.Store.SQLitePath,
		"store.mongo_uri":        &cfg.Store.MongoURI,
		"store.mongo_database":   &cfg.Store.MongoDatabase,
		"cache.backend":          &cfg.Cache.Backend,
		"cache.redis_addr":       &cfg.Cache.RedisAddr,
		"server.addr":            &cfg.Server.Addr,
		"http.http_proxy":        &cfg.HTTP.HTTPProxy,
		"http.https_proxy":       &cfg.HTTP.HTTPSProxy,
		"http.no_proxy":          &cfg.HTTP.NoProxy,
	}
	for key, dst := range strs {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	if v.IsSet("concurrency.workers") {
		if n := v.GetInt("concurrency.workers"); n > 0 {
			cfg.Concurrency.Workers = n
		}
	}
	if v.IsSet("output.verbose") {
		cfg.Output.Verbose = v.GetBool("output.verbose")
	}

	ollamaURL := v.GetString("ollama.base_url")
	resolveLLM := func(c *model.LLMConfig, key string) {
		c.APIKey = v.GetString(key)
		if c.APIKey == "" {
			c.APIKey = v.GetString("keys." + strings.ToLower(c.Provider))
		}
		if strings.EqualFold(c.Provider, "ollama") && c.BaseURL == "" {
			c.BaseURL = ollamaURL
		}
	}
	for _, p := range model.Providers {
		c := cfg.Providers[p]
		resolveLLM(&c, "providers."+string(p)+".api_key")
		cfg.Providers[p] = c
	}
	resolveLLM(&cfg.Extractor, "extractor.api_key")

	cfg.Store.AirtableAPIKey = v.GetString("store.airtable_api_key")
	cfg.BrandAssets.APIKey = v.GetString("brand_assets.api_key")

	return cfg, nil
}

// fillProviderDefaults restores stock backends for providers a config file
// left out or only partially set
func fillProviderDefaults(cfg *model.Config) {
	defaults := model.DefaultLLMConfigs()
	if cfg.Providers == nil {
		cfg.Providers = defaults
		return
	}
	for _, p := range model.Providers {
		c, ok := cfg.Providers[p]
		d := defaults[p]
		if !ok {
			cfg.Providers[p] = d
			continue
		}
		if c.Provider == "" {
			c.Provider = d.Provider
			if c.Model == "" {
				c.Model = d.Model
			}
		}
		if c.Timeout == 0 {
			c.Timeout = d.Timeout
		}
		if c.MaxTokens == 0 {
			c.MaxTokens = d.MaxTokens
		}
		cfg.Providers[p] = c
	}
}

// loadConfig resolves the configuration for a command
func loadConfig() (*model.Config, error) {
	return resolveConfig(viper.GetViper())
}
