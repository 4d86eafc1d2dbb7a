package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/brandlens/internal/llm"
	"github.com/ppiankov/brandlens/internal/model"
)

type mockProvider struct {
	reply string
	err   error
	last  llm.CompletionRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Text: m.reply}, nil
}

func TestExtractor_Score(t *testing.T) {
	p := &mockProvider{reply: fullReply}
	e := NewExtractor(p, "claude-sonnet-4-20250514")

	cards, err := e.Score(context.Background(), EvaluationInput{BrandName: "Acme", Question: "q"})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if cards[model.ProviderPerplexity].Overall != 95 {
		t.Errorf("Expected perplexity overall 95, got %v", cards[model.ProviderPerplexity].Overall)
	}
	if p.last.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Expected configured model passed through, got %q", p.last.Model)
	}
}

func TestExtractor_Score_ProseReply(t *testing.T) {
	e := NewExtractor(&mockProvider{reply: "I cannot score these."}, "")

	_, err := e.Score(context.Background(), EvaluationInput{})
	if !errors.Is(err, ErrExtractionParse) {
		t.Errorf("Expected ErrExtractionParse, got %v", err)
	}
}

func TestExtractor_Score_ProviderError(t *testing.T) {
	e := NewExtractor(&mockProvider{err: &llm.StatusError{StatusCode: 529}}, "")

	_, err := e.Score(context.Background(), EvaluationInput{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if errors.Is(err, ErrExtractionParse) {
		t.Error("Provider failure should not look like a parse failure")
	}
}

func TestExtractor_NoProvider(t *testing.T) {
	e := NewExtractor(nil, "")
	if _, err := e.Score(context.Background(), EvaluationInput{}); err == nil {
		t.Error("Expected error without provider")
	}
	if _, err := e.DefineIndustry(context.Background(), "Acme", nil, nil); err == nil {
		t.Error("Expected error without provider")
	}
}

func TestExtractor_DefineIndustry(t *testing.T) {
	reply := "```json\n" + `{
  "industry": "consumer insights software",
  "industry_keywords": ["surveys", "panels"],
  "valid_competitors": ["Zappi", "Qualtrics", "SurveyMonkey"],
  "brand_variations": ["Acme", "ACME Inc"],
  "invalid_inputs": ["Google"],
  "disambiguation_term": "market research platform"
}` + "\n```"

	e := NewExtractor(&mockProvider{reply: reply}, "")
	profile, err := e.DefineIndustry(context.Background(), "Acme", []string{"Zappi", "Google"}, []string{"fast"})
	if err != nil {
		t.Fatalf("DefineIndustry failed: %v", err)
	}

	if profile.Industry != "consumer insights software" {
		t.Errorf("Unexpected industry: %q", profile.Industry)
	}
	if len(profile.ValidCompetitors) != 3 || profile.ValidCompetitors[2] != "SurveyMonkey" {
		t.Errorf("Unexpected competitors: %v", profile.ValidCompetitors)
	}
	if profile.DisambiguationTerm != "market research platform" {
		t.Errorf("Unexpected disambiguation term: %q", profile.DisambiguationTerm)
	}
}

func TestFallbackIndustry(t *testing.T) {
	profile := FallbackIndustry([]string{" Zappi ", "", "Toluna"})

	if profile.Industry != "" {
		t.Errorf("Expected empty industry, got %q", profile.Industry)
	}
	if len(profile.ValidCompetitors) != 2 || profile.ValidCompetitors[0] != "Zappi" {
		t.Errorf("Unexpected competitors: %v", profile.ValidCompetitors)
	}
}
