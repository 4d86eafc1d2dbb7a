package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ppiankov/brandlens/internal/model"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "PERPLEXITY_API_KEY",
		"AIRTABLE_API_KEY", "BRAND_DEV_API_KEY", "OLLAMA_BASE_URL",
		"BRANDLENS_STORE_BACKEND", "BRANDLENS_PROVIDERS_CLAUDE_API_KEY",
	} {
		t.Setenv(env, "")
	}
}

func newTestViper(t *testing.T, configYAML string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if configYAML != "" {
		if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
			t.Fatal(err)
		}
	}

	v := viper.New()
	if err := setupViper(v, path); err != nil {
		t.Fatal(err)
	}
	_ = v.ReadInConfig()
	return v
}

func TestResolveConfig_Defaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := resolveConfig(newTestViper(t, ""))
	if err != nil {
		t.Fatalf("resolveConfig failed: %v", err)
	}

	def := model.DefaultConfig()
	if cfg.Store.Backend != def.Store.Backend || cfg.Concurrency.Workers != def.Concurrency.Workers {
		t.Errorf("Expected defaults, got store %q workers %d", cfg.Store.Backend, cfg.Concurrency.Workers)
	}
	if len(cfg.Providers) != 4 {
		t.Errorf("Expected 4 providers, got %d", len(cfg.Providers))
	}
	for _, p := range model.Providers {
		if cfg.Providers[p].APIKey != "" {
			t.Errorf("Expected no key for %s", p)
		}
	}
}

func TestResolveConfig_FileAndEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("BRANDLENS_PROVIDERS_CLAUDE_API_KEY", "sk-claude-override")
	t.Setenv("AIRTABLE_API_KEY", "key-air")
	t.Setenv("BRAND_DEV_API_KEY", "key-brand")
	t.Setenv("BRANDLENS_STORE_BACKEND", "sqlite")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")

	cfg, err := resolveConfig(newTestViper(t, `
concurrency:
  workers: 9
providers:
  gemini:
    provider: ollama
    model: llama3
store:
  backend: airtable
  sqlite_path: /tmp/runs.db
policy:
  coverage_target: 70
`))
	if err != nil {
		t.Fatalf("resolveConfig failed: %v", err)
	}

	if cfg.Concurrency.Workers != 9 {
		t.Errorf("Expected workers from file, got %d", cfg.Concurrency.Workers)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Expected env to override store backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.SQLitePath != "/tmp/runs.db" {
		t.Errorf("Expected sqlite path from file, got %q", cfg.Store.SQLitePath)
	}
	if cfg.Policy.CoverageTarget != 70 || cfg.Policy.AlertWarning != 40 {
		t.Errorf("Expected merged policy, got %+v", cfg.Policy)
	}

	if got := cfg.Providers[model.ProviderChatGPT].APIKey; got != "sk-openai" {
		t.Errorf("Expected OpenAI key, got %q", got)
	}
	if got := cfg.Providers[model.ProviderClaude].APIKey; got != "sk-claude-override" {
		t.Errorf("Expected per-provider key override, got %q", got)
	}
	if got := cfg.Extractor.APIKey; got != "sk-ant" {
		t.Errorf("Expected extractor to use Anthropic key, got %q", got)
	}

	gem := cfg.Providers[model.ProviderGemini]
	if gem.Provider != "ollama" || gem.BaseURL != "http://ollama:11434" || gem.Timeout != 60 {
		t.Errorf("Unexpected gemini slot: %+v", gem)
	}
	if cfg.Providers[model.ProviderPerplexity].Provider != "perplexity" {
		t.Error("Expected untouched provider to keep its default backend")
	}

	if cfg.Store.AirtableAPIKey != "key-air" || cfg.BrandAssets.APIKey != "key-brand" {
		t.Errorf("Expected Airtable and brand keys, got %q / %q", cfg.Store.AirtableAPIKey, cfg.BrandAssets.APIKey)
	}
}

func TestResolveConfig_InvalidFile(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("concurrency: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	v := viper.New()
	v.SetConfigFile(path)

	if _, err := resolveConfig(v); err == nil {
		t.Error("Expected error for malformed config")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), ".brandlens", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "OPENAI_API_KEY") {
		t.Error("Expected key hints in config file")
	}

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := resolveConfig(v)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.RunTimeout != model.DefaultConfig().Server.RunTimeout {
		t.Errorf("Unexpected server config after reload: %+v", cfg.Server)
	}
}

func TestKeyStatus_NeverPrintsKeys(t *testing.T) {
	cfg := model.DefaultConfig()
	c := cfg.Providers[model.ProviderChatGPT]
	c.APIKey = "sk-secret"
	cfg.Providers[model.ProviderChatGPT] = c

	lines := keyStatus(cfg)
	joined := strings.Join(lines, "\n")
	if strings.Contains(joined, "sk-secret") {
		t.Error("Expected key value to be hidden")
	}
	if !strings.Contains(lines[0], "ChatGPT") || !strings.Contains(lines[0], "configured") {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
}

func TestReportName(t *testing.T) {
	got := reportName(&model.Brief{BrandName: "Acme Co/Labs", RunID: "RUN_1"})
	if got != "acme-co_labs_RUN_1" {
		t.Errorf("Expected sanitized name, got %q", got)
	}
	if got := reportName(&model.Brief{RunID: "RUN_2"}); got != "brief_RUN_2" {
		t.Errorf("Expected fallback name, got %q", got)
	}
}
