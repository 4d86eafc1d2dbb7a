// Package aggregate reduces per-question results into one visibility report.
// Everything here is a pure function of its inputs: no I/O, no clock.
package aggregate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/brandlens/internal/model"
)

const breakdownTextLen = 50

// neutralSentiment is shown when no sentiment signal was collected
const neutralSentiment = 50

// Policy holds the tunable thresholds of the rule tables
type Policy = model.PolicyConfig

// DefaultPolicy returns the stock thresholds
func DefaultPolicy() Policy {
	return model.DefaultPolicy()
}

// withDefaults fills unset (zero) thresholds from DefaultPolicy
func withDefaults(p Policy) Policy {
	d := DefaultPolicy()
	if p.ConsistencyVariance <= 0 {
		p.ConsistencyVariance = d.ConsistencyVariance
	}
	if p.CoverageTarget <= 0 {
		p.CoverageTarget = d.CoverageTarget
	}
	if p.LowRecommendation <= 0 {
		p.LowRecommendation = d.LowRecommendation
	}
	if p.SentimentTarget <= 0 {
		p.SentimentTarget = d.SentimentTarget
	}
	if p.AlertWarning <= 0 {
		p.AlertWarning = d.AlertWarning
	}
	if p.LeaderRank <= 0 {
		p.LeaderRank = d.LeaderRank
	}
	if p.TopRankings <= 0 {
		p.TopRankings = d.TopRankings
	}
	return p
}

// series holds one provider's per-question values, in question order
type series struct {
	mention        []float64
	sentiment      []float64
	recommendation []float64 // clamped to 100
	overall        []float64
	competitors    []string
}

// Aggregate reduces the ordered question results into the run report
func Aggregate(results []model.QuestionResult, brandName string, validCompetitors []string, industry string, policy Policy) model.RunAggregate {
	policy = withDefaults(policy)
	brand := DisplayName(brandName)
	numQuestions := len(results)

	data := collectSeries(results)

	// Tracked brand: one mention per provider per question with mention > 0
	counts := newMentionCounts()
	mentionedPerQuestion := make([]bool, numQuestions)
	for i := range results {
		for _, p := range model.Providers {
			if data[p].mention[i] > 0 {
				mentionedPerQuestion[i] = true
				counts.add(brand, 1)
			}
		}
	}

	countCompetitors(counts, data, results, brand, validCompetitors)

	appeared := 0
	for _, m := range mentionedPerQuestion {
		if m {
			appeared++
		}
	}
	coverage := percent(appeared, numQuestions)

	rankings := rankBrands(counts, brand)
	brandRank, brandSOV := 0, 0.0
	for i, b := range rankings {
		if b.IsTrackedBrand {
			brandRank = i + 1
			brandSOV = b.ShareOfVoice
			break
		}
	}
	top := rankings
	if len(top) > policy.TopRankings {
		top = top[:policy.TopRankings]
	}

	summaries := make(map[model.ProviderID]model.PlatformSummary, len(model.Providers))
	for _, p := range model.Providers {
		s := data[p]
		summaries[p] = model.PlatformSummary{
			Score:          Avg(s.overall),
			Mention:        Avg(s.mention),
			Sentiment:      AvgNonzero(s.sentiment),
			Recommendation: Avg(s.recommendation),
		}
	}

	var scoreSum float64
	for _, p := range model.Providers {
		scoreSum += summaries[p].Score
	}
	visibility := round1(scoreSum / float64(len(model.Providers)))
	best, worst := bestAndWorst(summaries)

	agg := model.RunAggregate{
		BrandName:             brand,
		Industry:              industry,
		VisibilityScore:       visibility,
		BestModel:             best.DisplayName(),
		WorstModel:            worst.DisplayName(),
		BrandCoverage:         coverage,
		BrandRank:             brandRank,
		BrandSOV:              brandSOV,
		BrandRankings:         top,
		PlatformsSummary:      summaries,
		PlatformConsistency:   consistency(summaries, policy),
		QuestionBreakdown:     breakdown(results, data),
		NumQuestionsProcessed: numQuestions,
	}

	avgRec := averageOf(summaries, func(s model.PlatformSummary) float64 { return s.Recommendation }, Avg)
	avgSent := averageOf(summaries, func(s model.PlatformSummary) float64 { return s.Sentiment }, AvgNonzero)

	agg.Recommendations = Recommendations(coverage, avgRec, avgSent, policy)
	agg.ExecutiveSummary = executiveSummary(agg, avgRec, avgSent, policy)

	return agg
}

func collectSeries(results []model.QuestionResult) map[model.ProviderID]*series {
	data := make(map[model.ProviderID]*series, len(model.Providers))
	for _, p := range model.Providers {
		data[p] = &series{}
	}

	for _, r := range results {
		for _, p := range model.Providers {
			card := r.Score(p)
			s := data[p]
			s.mention = append(s.mention, card.Mention)
			s.sentiment = append(s.sentiment, card.Sentiment)
			s.recommendation = append(s.recommendation, min(card.Recommendation, maxScore))
			s.overall = append(s.overall, card.Overall)
			s.competitors = append(s.competitors, card.CompetitorsMentioned)
		}
	}
	return data
}

// mentionCounts keeps counts in first-insertion order
type mentionCounts struct {
	order  []string
	counts map[string]int
}

func newMentionCounts() *mentionCounts {
	return &mentionCounts{counts: make(map[string]int)}
}

func (m *mentionCounts) add(brand string, n int) {
	if _, ok := m.counts[brand]; !ok {
		m.order = append(m.order, brand)
	}
	m.counts[brand] += n
}

func (m *mentionCounts) set(brand string, n int) {
	if _, ok := m.counts[brand]; !ok {
		m.order = append(m.order, brand)
	}
	m.counts[brand] = n
}

func (m *mentionCounts) total() int {
	var t int
	for _, c := range m.counts {
		t += c
	}
	return t
}

// countCompetitors discovers competitors in first-seen order (questions in
// order, providers A..D within a question) and counts, for each, how many
// competitors_mentioned strings contain its name case-insensitively
func countCompetitors(counts *mentionCounts, data map[model.ProviderID]*series, results []model.QuestionResult, brand string, validCompetitors []string) {
	canon := NewCanonicalizer(validCompetitors)

	var discovered []string
	seen := make(map[string]bool)
	for i := range results {
		for _, p := range model.Providers {
			for _, c := range canon.ExtractBrands(data[p].competitors[i]) {
				if !seen[c] {
					seen[c] = true
					discovered = append(discovered, c)
				}
			}
		}
	}

	lowerBrand := strings.ToLower(brand)
	for _, comp := range discovered {
		lowerComp := strings.ToLower(comp)
		if lowerComp == lowerBrand {
			continue
		}

		n := 0
		for _, p := range model.Providers {
			for _, s := range data[p].competitors {
				if strings.Contains(strings.ToLower(s), lowerComp) {
					n++
				}
			}
		}
		if n > 0 {
			counts.set(comp, n)
		}
	}
}

// rankBrands computes share of voice and sorts by mentions, descending.
// Ties keep first-seen order.
func rankBrands(counts *mentionCounts, brand string) []model.BrandMention {
	total := counts.total()

	rankings := make([]model.BrandMention, 0, len(counts.order))
	for _, name := range counts.order {
		if IsInvalidBrand(name) {
			continue
		}
		n := counts.counts[name]
		rankings = append(rankings, model.BrandMention{
			Brand:          name,
			Mentions:       n,
			ShareOfVoice:   percent(n, total),
			IsTrackedBrand: strings.EqualFold(name, brand),
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Mentions > rankings[j].Mentions
	})
	return rankings
}

// bestAndWorst orders providers by score, descending and stable: best is the
// first top scorer, worst the last bottom scorer
func bestAndWorst(summaries map[model.ProviderID]model.PlatformSummary) (model.ProviderID, model.ProviderID) {
	ordered := make([]model.ProviderID, len(model.Providers))
	copy(ordered, model.Providers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return summaries[ordered[i]].Score > summaries[ordered[j]].Score
	})
	return ordered[0], ordered[len(ordered)-1]
}

func consistency(summaries map[model.ProviderID]model.PlatformSummary, policy Policy) model.Consistency {
	rates := make(map[model.ProviderID]float64, len(model.Providers))
	strongest, weakest := model.Providers[0], model.Providers[0]
	for _, p := range model.Providers {
		rate := summaries[p].Mention
		rates[p] = rate
		if rate > rates[strongest] {
			strongest = p
		}
		if rate < rates[weakest] {
			weakest = p
		}
	}

	spread := rates[strongest] - rates[weakest]
	return model.Consistency{
		Rates:        rates,
		Variance:     round1(spread),
		Strongest:    strongest,
		Weakest:      weakest,
		IsConsistent: spread < policy.ConsistencyVariance,
	}
}

func breakdown(results []model.QuestionResult, data map[model.ProviderID]*series) []model.QuestionBreakdown {
	rows := make([]model.QuestionBreakdown, 0, len(results))
	for i, r := range results {
		var initials strings.Builder
		for _, p := range model.Providers {
			if data[p].mention[i] > 0 {
				initials.WriteString(p.Initial())
			}
		}

		m := 0
		if initials.Len() > 0 {
			m = 1
		}

		rows = append(rows, model.QuestionBreakdown{
			Q:        i + 1,
			Text:     truncateRunes(r.Question.Text, breakdownTextLen),
			Category: r.Question.Category,
			M:        m,
			P:        initials.String(),
		})
	}
	return rows
}

func averageOf(summaries map[model.ProviderID]model.PlatformSummary, field func(model.PlatformSummary) float64, avg func([]float64) float64) float64 {
	values := make([]float64, 0, len(model.Providers))
	for _, p := range model.Providers {
		values = append(values, field(summaries[p]))
	}
	return avg(values)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
