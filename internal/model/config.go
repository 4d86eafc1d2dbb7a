package model

import "time"

// Config is the complete brandlens configuration.
// It is built once (defaults -> config file -> env -> flags) and passed down explicitly.
type Config struct {
	HTTP         HTTPConfig               `yaml:"http"`
	Providers    map[ProviderID]LLMConfig `yaml:"providers"`
	Extractor    LLMConfig                `yaml:"extractor"`
	Concurrency  ConcurrencyConfig        `yaml:"concurrency"`
	RateLimiting RateLimitConfig          `yaml:"rate_limiting"`
	Cache        CacheConfig              `yaml:"cache"`
	Store        StoreConfig              `yaml:"store"`
	BrandAssets  BrandAssetsConfig        `yaml:"brand_assets"`
	Policy       PolicyConfig             `yaml:"policy"`
	Server       ServerConfig             `yaml:"server"`
	Output       OutputConfig             `yaml:"output"`
}

// HTTPConfig holds settings shared by every outbound HTTP client
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty"`
	NoProxy    string        `yaml:"no_proxy,omitempty"`
}

// LLMConfig configures one generative-text backend
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, gemini, perplexity, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds, per call
	MaxTokens int    `yaml:"max_tokens"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers      int `yaml:"workers"`       // questions processed in parallel
	BatchWorkers int `yaml:"batch_workers"` // briefs processed in parallel by `batch`
}

// RateLimitConfig applies per provider. Providers overrides the default
// bucket for individual slots.
type RateLimitConfig struct {
	RequestsPerSecond float64                     `yaml:"requests_per_second"`
	BurstSize         int                         `yaml:"burst_size"`
	Providers         map[ProviderID]ProviderRate `yaml:"providers,omitempty"`
}

// ProviderRate is one provider's bucket plus a pause after each granted call
type ProviderRate struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size,omitempty"`
	Delay             time.Duration `yaml:"delay,omitempty"`
}

// CacheConfig controls the provider answer cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Backend   string        `yaml:"backend"` // memory, layered, redis
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
	Dir       string        `yaml:"dir"`
	RedisAddr string        `yaml:"redis_addr,omitempty"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend string `yaml:"backend"` // none, airtable, sqlite, mongo

	AirtableAPIKey  string `yaml:"-"`
	AirtableBaseID  string `yaml:"airtable_base_id,omitempty"`
	AirtableBaseURL string `yaml:"airtable_base_url,omitempty"`
	RawTable        string `yaml:"raw_table"`
	AggregateTable  string `yaml:"aggregate_table"`
	SQLitePath      string `yaml:"sqlite_path,omitempty"`
	MongoURI        string `yaml:"mongo_uri,omitempty"`
	MongoDatabase   string `yaml:"mongo_database,omitempty"`
}

// BrandAssetsConfig configures the brand-asset lookup
type BrandAssetsConfig struct {
	APIKey  string `yaml:"-"`
	BaseURL string `yaml:"base_url"`
}

// PolicyConfig carries the tunable thresholds of the aggregation rules
type PolicyConfig struct {
	ConsistencyVariance float64 `yaml:"consistency_variance"` // is_consistent when variance < this
	CoverageTarget      float64 `yaml:"coverage_target"`      // coverage rule + headline
	LowRecommendation   float64 `yaml:"low_recommendation"`   // recommendation rule
	SentimentTarget     float64 `yaml:"sentiment_target"`     // sentiment rule
	AlertWarning        float64 `yaml:"alert_warning"`        // warning alert below this recommendation rate
	LeaderRank          int     `yaml:"leader_rank"`          // "leads" headline when rank <= this
	TopRankings         int     `yaml:"top_rankings"`
}

// ServerConfig configures `brandlens serve`
type ServerConfig struct {
	Addr       string        `yaml:"addr"`
	RunTimeout time.Duration `yaml:"run_timeout"`
	StatusTTL  time.Duration `yaml:"status_ttl"`
}

// OutputConfig controls terminal and report output
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultLLMConfigs returns the stock backend for each polled provider
func DefaultLLMConfigs() map[ProviderID]LLMConfig {
	return map[ProviderID]LLMConfig{
		ProviderChatGPT: {
			Provider:  "openai",
			Model:     "gpt-4o",
			Timeout:   60,
			MaxTokens: 2048,
		},
		ProviderClaude: {
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			Timeout:   60,
			MaxTokens: 2048,
		},
		ProviderGemini: {
			Provider:  "gemini",
			Model:     "gemini-1.5-flash",
			Timeout:   60,
			MaxTokens: 2048,
		},
		ProviderPerplexity: {
			Provider:  "perplexity",
			Model:     "llama-3.1-sonar-large-128k-online",
			Timeout:   60,
			MaxTokens: 2048,
		},
	}
}

// DefaultPolicy returns the stock rule thresholds
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		ConsistencyVariance: 30,
		CoverageTarget:      50,
		LowRecommendation:   30,
		SentimentTarget:     60,
		AlertWarning:        40,
		LeaderRank:          3,
		TopRankings:         10,
	}
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "brandlens/0.1 (+https://github.com/ppiankov/brandlens)",
		},
		Providers: DefaultLLMConfigs(),
		Extractor: LLMConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			Timeout:   90,
			MaxTokens: 2048,
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			BatchWorkers: 2,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "memory",
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   24 * time.Hour,
			Dir:       ".brandlens-cache",
		},
		Store: StoreConfig{
			Backend:         "none",
			AirtableBaseURL: "https://api.airtable.com/v0",
			RawTable:        "Raw Question Data",
			AggregateTable:  "Dashboard Output",
			SQLitePath:      "brandlens.db",
			MongoDatabase:   "brandlens",
		},
		BrandAssets: BrandAssetsConfig{
			BaseURL: "https://api.brand.dev/v1",
		},
		Policy: DefaultPolicy(),
		Server: ServerConfig{
			Addr:       ":8080",
			RunTimeout: 15 * time.Minute,
			StatusTTL:  24 * time.Hour,
		},
	}
}
