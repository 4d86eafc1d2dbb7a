package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ppiankov/brandlens/internal/brand"
	"github.com/ppiankov/brandlens/internal/cache"
	"github.com/ppiankov/brandlens/internal/collect"
	"github.com/ppiankov/brandlens/internal/extract"
	"github.com/ppiankov/brandlens/internal/llm"
	"github.com/ppiankov/brandlens/internal/model"
	"github.com/ppiankov/brandlens/internal/store"
	"github.com/ppiankov/brandlens/internal/worker"
)

// NewFromConfig wires providers, limiter, cache, extractor, brand lookup and
// store from configuration. Misconfigured optional parts are warned about and
// skipped; only an unusable store or cache backend is an error.
func NewFromConfig(ctx context.Context, cfg *model.Config, logger *log.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	answerCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	limiter := newLimiter(cfg.RateLimiting)

	callers := make([]Caller, 0, len(model.Providers))
	for _, id := range model.Providers {
		pc := cfg.Providers[id]
		provider, err := llm.NewProvider(llm.ConfigFromModel(pc, cfg.HTTP))
		if err != nil {
			logger.Printf("Warning: provider %s disabled: %v", id.DisplayName(), err)
			provider = nil
		}

		delay := cfg.RateLimiting.Providers[id].Delay
		opts := []collect.Option{collect.WithLimiter(limiter, delay), collect.WithLogger(logger)}
		if answerCache != nil {
			opts = append(opts, collect.WithCache(answerCache, cfg.Cache.MemoryTTL))
		}
		callers = append(callers, collect.NewAdapter(id, provider, pc, opts...))
	}

	reasoning, err := llm.NewProvider(llm.ConfigFromModel(cfg.Extractor, cfg.HTTP))
	if err != nil {
		logger.Printf("Warning: reasoning provider disabled, every question will score zero: %v", err)
		reasoning = nil
	}
	extractor := extract.NewExtractor(reasoning, cfg.Extractor.Model)

	deps := Deps{
		Callers: callers,
		Scorer:  extractor,
		Logger:  logger,
	}
	if closer, ok := answerCache.(io.Closer); ok {
		deps.Closers = append(deps.Closers, closer)
	}
	if reasoning != nil {
		deps.Industry = extractor
	}

	if cfg.BrandAssets.APIKey != "" {
		client, err := brand.NewClient(cfg.BrandAssets, cfg.HTTP)
		if err != nil {
			logger.Printf("Warning: brand asset lookup disabled: %v", err)
		} else {
			deps.Assets = client
		}
	}

	st, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	deps.Store = st

	return New(cfg, deps), nil
}

// Close releases the store, then the other held resources
func (p *Pipeline) Close() error {
	err := p.store.Close()
	for _, c := range p.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// newLimiter builds the shared limiter with per-provider overrides applied
func newLimiter(cfg model.RateLimitConfig) *worker.Limiter {
	limiter := worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
	for id, r := range cfg.Providers {
		if r.RequestsPerSecond > 0 {
			limiter.SetRate(string(id), r.RequestsPerSecond, r.BurstSize)
		}
	}
	return limiter
}
