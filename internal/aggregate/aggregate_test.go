package aggregate

import (
	"reflect"
	"testing"

	"github.com/ppiankov/brandlens/internal/model"
)

func result(index int, text string, cards map[model.ProviderID]model.ScoreCard) model.QuestionResult {
	r := model.NewQuestionResult(index, model.Question{Text: text, Category: "general"})
	for p, c := range cards {
		r.Scores[p] = c
	}
	return r
}

func rankingFixture() []model.QuestionResult {
	return []model.QuestionResult{
		result(0, "Which consumer insights platform is best for concept testing at scale?", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT:    {Mention: 100, Sentiment: 80, Overall: 70, Recommendation: 60, CompetitorsMentioned: "Zappi; Toluna (panel)"},
			model.ProviderClaude:     {CompetitorsMentioned: "Qualtrics, zappi"},
			model.ProviderGemini:     {Mention: 50, Sentiment: 40, Overall: 30, Recommendation: 20},
			model.ProviderPerplexity: {CompetitorsMentioned: "none"},
		}),
		result(1, "Top survey tools?", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT: {CompetitorsMentioned: "Qualtrics"},
		}),
	}
}

func TestAggregate_Rankings(t *testing.T) {
	agg := Aggregate(rankingFixture(), "acme", []string{"Zappi", "Qualtrics"}, "insights", DefaultPolicy())

	want := []model.BrandMention{
		{Brand: "Acme", Mentions: 2, ShareOfVoice: 28.6, IsTrackedBrand: true},
		{Brand: "Zappi", Mentions: 2, ShareOfVoice: 28.6},
		{Brand: "Qualtrics", Mentions: 2, ShareOfVoice: 28.6},
		{Brand: "Toluna", Mentions: 1, ShareOfVoice: 14.3},
	}
	if !reflect.DeepEqual(agg.BrandRankings, want) {
		t.Errorf("Unexpected rankings:\n got %+v\nwant %+v", agg.BrandRankings, want)
	}

	if agg.BrandName != "Acme" {
		t.Errorf("Expected display name Acme, got %q", agg.BrandName)
	}
	if agg.BrandRank != 1 || agg.BrandSOV != 28.6 {
		t.Errorf("Expected rank 1 / sov 28.6, got %d / %v", agg.BrandRank, agg.BrandSOV)
	}
	if agg.BrandCoverage != 50 {
		t.Errorf("Expected coverage 50, got %v", agg.BrandCoverage)
	}
	if agg.ExecutiveSummary.Headline != "Acme leads AI visibility" {
		t.Errorf("Unexpected headline: %q", agg.ExecutiveSummary.Headline)
	}
	if !reflect.DeepEqual(agg.ExecutiveSummary.TopCompetitors, []string{"Zappi", "Qualtrics", "Toluna"}) {
		t.Errorf("Unexpected top competitors: %v", agg.ExecutiveSummary.TopCompetitors)
	}
	if agg.Industry != "insights" || agg.NumQuestionsProcessed != 2 {
		t.Errorf("Unexpected industry/count: %q %d", agg.Industry, agg.NumQuestionsProcessed)
	}
}

func TestAggregate_QuestionBreakdown(t *testing.T) {
	agg := Aggregate(rankingFixture(), "acme", nil, "", DefaultPolicy())

	if len(agg.QuestionBreakdown) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(agg.QuestionBreakdown))
	}

	first := agg.QuestionBreakdown[0]
	if first.Q != 1 || first.M != 1 || first.P != "CG" {
		t.Errorf("Unexpected first row: %+v", first)
	}
	if len([]rune(first.Text)) != 50 {
		t.Errorf("Expected text truncated to 50 chars, got %d", len([]rune(first.Text)))
	}

	second := agg.QuestionBreakdown[1]
	if second.Q != 2 || second.M != 0 || second.P != "" || second.Text != "Top survey tools?" {
		t.Errorf("Unexpected second row: %+v", second)
	}
}

func TestAggregate_Coverage(t *testing.T) {
	var results []model.QuestionResult
	for i := 0; i < 10; i++ {
		cards := map[model.ProviderID]model.ScoreCard{}
		if i < 6 {
			cards[model.ProviderClaude] = model.ScoreCard{Mention: 100}
		}
		results = append(results, result(i, "q", cards))
	}

	agg := Aggregate(results, "Acme", nil, "", DefaultPolicy())
	if agg.BrandCoverage != 60.0 {
		t.Errorf("Expected coverage 60.0, got %v", agg.BrandCoverage)
	}
}

func TestAggregate_Consistency(t *testing.T) {
	results := []model.QuestionResult{
		result(0, "q", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT:    {Mention: 80},
			model.ProviderClaude:     {Mention: 50},
			model.ProviderGemini:     {Mention: 20},
			model.ProviderPerplexity: {Mention: 10},
		}),
	}

	c := Aggregate(results, "Acme", nil, "", DefaultPolicy()).PlatformConsistency
	if c.Variance != 70 {
		t.Errorf("Expected variance 70, got %v", c.Variance)
	}
	if c.IsConsistent {
		t.Error("Expected inconsistent platforms")
	}
	if c.Strongest != model.ProviderChatGPT || c.Weakest != model.ProviderPerplexity {
		t.Errorf("Unexpected strongest/weakest: %s/%s", c.Strongest, c.Weakest)
	}

	lenient := DefaultPolicy()
	lenient.ConsistencyVariance = 80
	if !Aggregate(results, "Acme", nil, "", lenient).PlatformConsistency.IsConsistent {
		t.Error("Expected consistent under a looser threshold")
	}
}

func TestAggregate_PlatformSummaryPolicies(t *testing.T) {
	results := []model.QuestionResult{
		result(0, "q1", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT: {Overall: 200, Recommendation: 150, Sentiment: 0},
		}),
		result(1, "q2", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT: {Overall: 40, Recommendation: 50, Sentiment: 70},
		}),
	}

	s := Aggregate(results, "Acme", nil, "", DefaultPolicy()).PlatformsSummary[model.ProviderChatGPT]
	if s.Score != 40 {
		t.Errorf("Expected overall 200 excluded (score 40), got %v", s.Score)
	}
	if s.Recommendation != 75 {
		t.Errorf("Expected recommendation 150 clamped to 100 (avg 75), got %v", s.Recommendation)
	}
	if s.Sentiment != 70 {
		t.Errorf("Expected zero sentiment skipped (70), got %v", s.Sentiment)
	}
}

func TestAggregate_BestWorstAndVisibility(t *testing.T) {
	results := []model.QuestionResult{
		result(0, "q", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT:    {Overall: 40},
			model.ProviderClaude:     {Overall: 90},
			model.ProviderGemini:     {Overall: 10},
			model.ProviderPerplexity: {Overall: 10},
		}),
	}

	agg := Aggregate(results, "Acme", nil, "", DefaultPolicy())
	if agg.BestModel != "Claude" {
		t.Errorf("Expected best Claude, got %s", agg.BestModel)
	}
	// Stable descending sort: the later of two tied bottom scorers is last
	if agg.WorstModel != "Perplexity" {
		t.Errorf("Expected worst Perplexity, got %s", agg.WorstModel)
	}
	if agg.VisibilityScore != 37.5 {
		t.Errorf("Expected visibility 37.5, got %v", agg.VisibilityScore)
	}
}

func TestAggregate_AllFailed(t *testing.T) {
	results := []model.QuestionResult{
		model.NewQuestionResult(0, model.Question{Text: "q1"}),
		model.NewQuestionResult(1, model.Question{Text: "q2"}),
	}

	agg := Aggregate(results, "acme", []string{"Zappi"}, "", DefaultPolicy())

	if agg.VisibilityScore != 0 || agg.BrandCoverage != 0 || agg.BrandRank != 0 {
		t.Errorf("Expected zero metrics, got %+v", agg)
	}
	if len(agg.BrandRankings) != 0 {
		t.Errorf("Expected no rankings, got %v", agg.BrandRankings)
	}
	if agg.ExecutiveSummary.BrandRank != nil {
		t.Errorf("Expected nil rank in summary, got %v", *agg.ExecutiveSummary.BrandRank)
	}
	if agg.ExecutiveSummary.AvgSentiment != 50 {
		t.Errorf("Expected neutral sentiment display 50, got %v", agg.ExecutiveSummary.AvgSentiment)
	}
	if agg.ExecutiveSummary.Headline != "Acme has limited AI visibility" {
		t.Errorf("Unexpected headline: %q", agg.ExecutiveSummary.Headline)
	}

	want := []model.Recommendation{
		{Priority: model.PriorityHigh, Action: "Increase visibility", Detail: "0.0% coverage"},
		{Priority: model.PriorityHigh, Action: "Improve recommendations", Detail: "0.0% rate"},
	}
	if !reflect.DeepEqual(agg.Recommendations, want) {
		t.Errorf("Unexpected recommendations: %+v", agg.Recommendations)
	}
	if len(agg.QuestionBreakdown) != 2 {
		t.Errorf("Expected breakdown rows for every question, got %d", len(agg.QuestionBreakdown))
	}
}

func TestAggregate_TopRankingsLimit(t *testing.T) {
	comps := "A1; B2; C3; D4; E5; F6; G7; H8; I9; J10; K11; L12"
	results := []model.QuestionResult{
		result(0, "q", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT: {Mention: 100, CompetitorsMentioned: comps},
		}),
	}

	agg := Aggregate(results, "Acme", nil, "", DefaultPolicy())
	if len(agg.BrandRankings) != 10 {
		t.Errorf("Expected top 10 rankings, got %d", len(agg.BrandRankings))
	}
}

func TestAggregate_TrackedBrandNotCountedAsCompetitor(t *testing.T) {
	results := []model.QuestionResult{
		result(0, "q", map[model.ProviderID]model.ScoreCard{
			model.ProviderChatGPT: {Mention: 100, CompetitorsMentioned: "acme; Zappi"},
		}),
	}

	agg := Aggregate(results, "Acme", nil, "", DefaultPolicy())
	for _, b := range agg.BrandRankings {
		if b.Brand == "Acme" && !b.IsTrackedBrand {
			t.Errorf("Tracked brand appeared as a competitor: %+v", b)
		}
	}
	if agg.BrandRankings[0].Brand != "Acme" || agg.BrandRankings[0].Mentions != 1 {
		t.Errorf("Unexpected first ranking: %+v", agg.BrandRankings[0])
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	first := Aggregate(rankingFixture(), "acme", []string{"Zappi"}, "x", DefaultPolicy())
	for i := 0; i < 20; i++ {
		again := Aggregate(rankingFixture(), "acme", []string{"Zappi"}, "x", DefaultPolicy())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Aggregate is not deterministic on pass %d", i)
		}
	}
}

func TestAggregate_EmptyRun(t *testing.T) {
	agg := Aggregate(nil, "Acme", nil, "", DefaultPolicy())
	if agg.NumQuestionsProcessed != 0 || agg.BrandCoverage != 0 {
		t.Errorf("Unexpected empty-run aggregate: %+v", agg)
	}
	if len(agg.PlatformsSummary) != 4 {
		t.Errorf("Expected a summary for every provider, got %d", len(agg.PlatformsSummary))
	}
}
