// Package collect wraps each polled provider behind a call that always
// yields text: either the answer or an "Error: <code>" placeholder.
package collect

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/brandlens/internal/cache"
	"github.com/ppiankov/brandlens/internal/llm"
	"github.com/ppiankov/brandlens/internal/model"
	"github.com/ppiankov/brandlens/internal/worker"
)

// Sentinel answers returned in place of provider text
const (
	ErrorPrefix         = "Error: "
	SentinelTimeout     = ErrorPrefix + "timeout"
	SentinelUnavailable = ErrorPrefix + "unavailable"
)

// Adapter calls one provider for one question. Call never fails.
type Adapter struct {
	id        model.ProviderID
	provider  llm.Provider
	model     string
	maxTokens int
	timeout   time.Duration
	limiter   *worker.Limiter
	delay     time.Duration
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *log.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithLimiter makes every call wait on the limiter keyed by provider id,
// then pause for delay before the request goes out
func WithLimiter(l *worker.Limiter, delay time.Duration) Option {
	return func(a *Adapter) {
		a.limiter = l
		a.delay = delay
	}
}

// WithCache stores successful answers under provider + model + question
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Adapter) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for degraded calls
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an adapter. A nil provider yields "Error: unavailable"
// for every call, which keeps unconfigured slots in the report.
func NewAdapter(id model.ProviderID, provider llm.Provider, cfg model.LLMConfig, opts ...Option) *Adapter {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	a := &Adapter{
		id:        id,
		provider:  provider,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   timeout,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the provider slot this adapter serves
func (a *Adapter) ID() model.ProviderID {
	return a.id
}

// Call asks the provider the question and returns its text or a sentinel
func (a *Adapter) Call(ctx context.Context, question string) string {
	if a.provider == nil {
		return SentinelUnavailable
	}

	key := cache.Key{Provider: a.id, Model: a.model, Question: question}
	if a.cache != nil {
		if answer, ok := a.cache.Get(key); ok {
			return answer.Text
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.WaitWithDelay(ctx, string(a.id), a.delay); err != nil {
			a.logger.Printf("%s: rate limiter: %v", a.id, err)
			return Sentinel(err)
		}
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:    question,
		Model:     a.model,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		a.logger.Printf("%s: %v", a.id, err)
		return Sentinel(err)
	}

	if a.cache != nil {
		answer := cache.Answer{Provider: a.id, Model: a.model, Question: question, Text: resp.Text, CachedAt: time.Now()}
		if err := a.cache.Put(answer, a.cacheTTL); err != nil {
			a.logger.Printf("%s: cache store: %v", a.id, err)
		}
	}

	return resp.Text
}

// Sentinel maps a provider failure onto its placeholder text
func Sentinel(err error) string {
	if code, ok := llm.StatusCode(err); ok {
		return ErrorPrefix + strconv.Itoa(code)
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return SentinelTimeout
	}
	return SentinelUnavailable
}

// IsSentinel reports whether text is a placeholder rather than an answer
func IsSentinel(text string) bool {
	return strings.HasPrefix(text, ErrorPrefix)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

