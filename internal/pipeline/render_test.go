package pipeline

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/brandlens/internal/aggregate"
	"github.com/ppiankov/brandlens/internal/collect"
	"github.com/ppiankov/brandlens/internal/model"
)

func renderFixture() *RunResult {
	q := model.NewQuestionResult(0, model.Question{Text: "best survey tool?", Category: "discovery"})
	for _, p := range model.Providers {
		q.Answers[p] = model.ProviderAnswer{Provider: p, Text: "Acme and Zappi"}
		q.Scores[p] = model.ScoreCard{Mention: 100, Sentiment: 60, Overall: 55, CompetitorsMentioned: "Zappi"}
	}
	q.Answers[model.ProviderGemini] = model.ProviderAnswer{Provider: model.ProviderGemini, Text: collect.SentinelTimeout}

	results := []model.QuestionResult{q}
	return &RunResult{
		Brief:     model.Brief{RunID: "RUN_X", BrandName: "acme"},
		Results:   results,
		Aggregate: aggregate.Aggregate(results, "acme", []string{"Zappi"}, "survey software", model.DefaultPolicy()),
	}
}

func TestRenderer_Markdown(t *testing.T) {
	md := NewRenderer().Markdown(renderFixture())

	for _, want := range []string{
		"# AI Visibility Report: Acme",
		"- Industry: survey software",
		"| Gemini |",
		"best survey tool?",
		"Zappi",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q, got:\n%s", want, md)
		}
	}
}

func TestRenderer_Summary(t *testing.T) {
	var out bytes.Buffer
	res := renderFixture()
	res.Persistence.Unwritten = 2
	NewRenderer().RenderSummary(&out, res)

	s := out.String()
	if !strings.Contains(s, "(1 provider failures)") {
		t.Errorf("Expected one provider failure, got:\n%s", s)
	}
	if !strings.Contains(s, "Not persisted:    2 records") {
		t.Errorf("Expected unwritten count, got:\n%s", s)
	}
}

func TestRenderer_JSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.json")
	res := renderFixture()

	if err := NewRenderer().RenderJSON(res, path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	loaded, err := LoadRunResult(path)
	if err != nil {
		t.Fatalf("LoadRunResult failed: %v", err)
	}
	if loaded.Brief.RunID != "RUN_X" || len(loaded.Results) != 1 {
		t.Errorf("Unexpected loaded result: %+v", loaded)
	}
	if loaded.Results[0].AnswerText(model.ProviderGemini) != collect.SentinelTimeout {
		t.Errorf("Expected sentinel preserved, got %q", loaded.Results[0].AnswerText(model.ProviderGemini))
	}
	if loaded.Aggregate.BrandCoverage != 100 {
		t.Errorf("Expected coverage 100, got %v", loaded.Aggregate.BrandCoverage)
	}
}

func TestLoadRunResult_Missing(t *testing.T) {
	if _, err := LoadRunResult(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing report")
	}
}
