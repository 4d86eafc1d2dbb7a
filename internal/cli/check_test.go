package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/brandlens/internal/model"
)

func TestCheckProviders(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models": [{"name": "llama3.1:latest"}]}`))
	}))
	defer ollama.Close()

	cfg := model.DefaultConfig()
	cfg.Providers = map[model.ProviderID]model.LLMConfig{
		model.ProviderChatGPT:    {Provider: "ollama", Model: "llama3.1", BaseURL: ollama.URL, Timeout: 5},
		model.ProviderClaude:     {Provider: "anthropic"}, // no key
		model.ProviderGemini:     {Provider: "ollama", Model: "qwen2", BaseURL: ollama.URL, Timeout: 5},
		model.ProviderPerplexity: {},
	}
	cfg.Extractor = model.LLMConfig{Provider: "ollama", BaseURL: ollama.URL, Timeout: 5}

	results := checkProviders(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("Expected 5 slots, got %d", len(results))
	}

	tests := []struct {
		slot   string
		ok     bool
		detail string
	}{
		{slot: "ChatGPT", ok: true, detail: "ollama llama3.1"},
		{slot: "Claude", ok: false, detail: "API key is required"},
		{slot: "Gemini", ok: false, detail: "unreachable"},
		{slot: "Perplexity", ok: false, detail: "not configured"},
		{slot: "Extractor", ok: true, detail: "ollama"},
	}
	for i, tt := range tests {
		got := results[i]
		if got.Slot != tt.slot || got.OK != tt.ok || !strings.Contains(got.Detail, tt.detail) {
			t.Errorf("slot %d: expected %s ok=%v containing %q, got %+v", i, tt.slot, tt.ok, tt.detail, got)
		}
	}
}
