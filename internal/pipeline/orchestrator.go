package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/brandlens/internal/collect"
	"github.com/ppiankov/brandlens/internal/extract"
	"github.com/ppiankov/brandlens/internal/model"
)

// Caller is one provider slot; collect.Adapter implements it
type Caller interface {
	ID() model.ProviderID
	Call(ctx context.Context, question string) string
}

// Scorer turns four answers into four scorecards; extract.Extractor implements it
type Scorer interface {
	Score(ctx context.Context, in extract.EvaluationInput) (map[model.ProviderID]model.ScoreCard, error)
}

// BrandContext is the per-run input shared by every question
type BrandContext struct {
	BrandName   string
	KeyMessages []string
	Competitors []string
}

// Orchestrator processes one question: four concurrent provider calls, then one scoring call
type Orchestrator struct {
	callers map[model.ProviderID]Caller
	scorer  Scorer
	logger  *log.Logger
}

// NewOrchestrator creates an orchestrator. Providers with no caller answer "Error: unavailable".
func NewOrchestrator(callers []Caller, scorer Scorer, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	byID := make(map[model.ProviderID]Caller, len(callers))
	for _, c := range callers {
		byID[c.ID()] = c
	}
	return &Orchestrator{callers: byID, scorer: scorer, logger: logger}
}

// Process never fails: provider failures are sentinel text, and an extraction
// failure yields four zero scorecards noting the error
func (o *Orchestrator) Process(ctx context.Context, brand BrandContext, index int, q model.Question) model.QuestionResult {
	result := model.NewQuestionResult(index, q)

	answers := make([]string, len(model.Providers))
	var g errgroup.Group
	for i, p := range model.Providers {
		caller, ok := o.callers[p]
		if !ok {
			answers[i] = collect.SentinelUnavailable
			continue
		}
		g.Go(func() error {
			answers[i] = caller.Call(ctx, q.Text)
			return nil
		})
	}
	_ = g.Wait()

	texts := make(map[model.ProviderID]string, len(model.Providers))
	for i, p := range model.Providers {
		result.Answers[p] = model.ProviderAnswer{Provider: p, Text: answers[i]}
		texts[p] = answers[i]
	}

	cards, err := o.score(ctx, extract.EvaluationInput{
		BrandName:   brand.BrandName,
		KeyMessages: brand.KeyMessages,
		Competitors: brand.Competitors,
		Question:    q.Text,
		Answers:     texts,
	})
	if err != nil {
		o.logger.Printf("question %d: %v", index+1, err)
		note := fmt.Sprintf("extraction failed: %v", err)
		for _, p := range model.Providers {
			result.Scores[p] = model.ScoreCard{Notes: note}
		}
		return result
	}

	for _, p := range model.Providers {
		result.Scores[p] = cards[p]
	}
	return result
}

func (o *Orchestrator) score(ctx context.Context, in extract.EvaluationInput) (map[model.ProviderID]model.ScoreCard, error) {
	if o.scorer == nil {
		return nil, fmt.Errorf("no scorer configured")
	}
	return o.scorer.Score(ctx, in)
}
