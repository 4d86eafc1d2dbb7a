package cli

import (
	"testing"
	"time"

	"github.com/ppiankov/brandlens/internal/cache"
	"github.com/ppiankov/brandlens/internal/model"
)

func TestClearCache_DiskProvider(t *testing.T) {
	cfg := model.CacheConfig{Backend: "disk", Dir: t.TempDir(), DiskTTL: time.Hour}
	disk := cache.NewDiskCache(cfg.Dir, cfg.DiskTTL)

	gemini := cache.Answer{Provider: model.ProviderGemini, Question: "q", Text: "a"}
	claude := cache.Answer{Provider: model.ProviderClaude, Question: "q", Text: "b"}
	_ = disk.Put(gemini, 0)
	_ = disk.Put(claude, 0)

	// Disabled caching must not stop an explicit clear
	if err := clearCache(cfg, model.ProviderGemini); err != nil {
		t.Fatalf("clearCache failed: %v", err)
	}

	if _, ok := disk.Get(gemini.Key()); ok {
		t.Error("Expected gemini answers cleared")
	}
	if _, ok := disk.Get(claude.Key()); !ok {
		t.Error("Expected claude answers kept")
	}
}

func TestClearCache_UnknownBackend(t *testing.T) {
	if err := clearCache(model.CacheConfig{Backend: "memcached"}, ""); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    model.ProviderID
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "Perplexity", want: model.ProviderPerplexity},
		{in: " chatgpt ", want: model.ProviderChatGPT},
		{in: "openai", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseProvider(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseProvider(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
