package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

func TestNewLimiter_ProviderOverrides(t *testing.T) {
	limiter := newLimiter(model.RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         5,
		Providers: map[model.ProviderID]model.ProviderRate{
			model.ProviderClaude: {RequestsPerSecond: 0.01, BurstSize: 1},
			model.ProviderGemini: {Delay: time.Second},
		},
	})

	waits := func(key model.ProviderID) bool {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		return limiter.Wait(ctx, string(key)) == nil
	}

	if !waits(model.ProviderClaude) {
		t.Fatal("Expected first claude call to pass")
	}
	if waits(model.ProviderClaude) {
		t.Error("Expected claude override to throttle the second call")
	}
	for i := 0; i < 3; i++ {
		if !waits(model.ProviderGemini) {
			t.Errorf("Expected gemini (delay only) to keep the default bucket, call %d blocked", i)
		}
	}
}
