// Package extract turns the reasoning model's free-form reply into
// structured scorecards and industry profiles.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/brandlens/internal/llm"
	"github.com/ppiankov/brandlens/internal/model"
)

const (
	scoreMaxTokens    = 2048
	industryMaxTokens = 1024
)

// Extractor calls the reasoning provider and parses its reply
type Extractor struct {
	provider llm.Provider
	model    string
}

// NewExtractor creates an extractor around the reasoning provider
func NewExtractor(provider llm.Provider, modelName string) *Extractor {
	return &Extractor{
		provider: provider,
		model:    modelName,
	}
}

// Score evaluates one question's four answers. A reply that cannot be parsed
// yields a *ParseError; provider failures are returned wrapped.
func (e *Extractor) Score(ctx context.Context, in EvaluationInput) (map[model.ProviderID]model.ScoreCard, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("no reasoning provider configured")
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:    BuildEvaluationPrompt(in),
		Model:     e.model,
		MaxTokens: scoreMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning call: %w", err)
	}

	return ParseScorecards(resp.Text)
}

type wireIndustry struct {
	Industry           flexText `json:"industry"`
	IndustryKeywords   []string `json:"industry_keywords"`
	ValidCompetitors   []string `json:"valid_competitors"`
	BrandVariations    []string `json:"brand_variations"`
	InvalidInputs      []string `json:"invalid_inputs"`
	DisambiguationTerm flexText `json:"disambiguation_term"`
}

// DefineIndustry asks the reasoning provider for the brand's industry and
// canonical competitor list
func (e *Extractor) DefineIndustry(ctx context.Context, brandName string, competitors, keyMessages []string) (*model.IndustryProfile, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("no reasoning provider configured")
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:    BuildIndustryPrompt(brandName, competitors, keyMessages),
		Model:     e.model,
		MaxTokens: industryMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("industry call: %w", err)
	}

	var w wireIndustry
	if err := DecodeObject(resp.Text, &w); err != nil {
		return nil, err
	}

	return &model.IndustryProfile{
		Industry:           strings.TrimSpace(string(w.Industry)),
		IndustryKeywords:   w.IndustryKeywords,
		ValidCompetitors:   w.ValidCompetitors,
		BrandVariations:    w.BrandVariations,
		InvalidInputs:      w.InvalidInputs,
		DisambiguationTerm: strings.TrimSpace(string(w.DisambiguationTerm)),
	}, nil
}

// FallbackIndustry is used when industry definition fails: the seed
// competitors become the canonical list and the industry stays empty
func FallbackIndustry(competitors []string) *model.IndustryProfile {
	valid := make([]string, 0, len(competitors))
	for _, c := range competitors {
		if c = strings.TrimSpace(c); c != "" {
			valid = append(valid, c)
		}
	}
	return &model.IndustryProfile{ValidCompetitors: valid}
}
