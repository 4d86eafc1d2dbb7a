package aggregate

import (
	"github.com/ppiankov/brandlens/internal/model"
)

// Headline suffixes, in rule order
const (
	HeadlineLeads    = "leads AI visibility"
	HeadlineModerate = "has moderate AI visibility"
	HeadlineLimited  = "has limited AI visibility"
)

// Recommendations evaluates the rule table; every matching rule is emitted
func Recommendations(coverage, avgRecommendation, avgSentiment float64, policy Policy) []model.Recommendation {
	policy = withDefaults(policy)
	recs := []model.Recommendation{}

	if coverage < policy.CoverageTarget {
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityHigh,
			Action:   "Increase visibility",
			Detail:   FormatNumber(coverage) + "% coverage",
		})
	}
	if avgRecommendation < policy.LowRecommendation {
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityHigh,
			Action:   "Improve recommendations",
			Detail:   FormatNumber(avgRecommendation) + "% rate",
		})
	}
	if avgSentiment > 0 && avgSentiment < policy.SentimentTarget {
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityMedium,
			Action:   "Enhance sentiment",
			Detail:   FormatNumber(avgSentiment) + "%",
		})
	}

	return recs
}

// Headline picks the first matching headline rule. rank 0 means unranked.
func Headline(brand string, rank int, coverage float64, policy Policy) string {
	policy = withDefaults(policy)

	switch {
	case rank > 0 && rank <= policy.LeaderRank && coverage >= policy.CoverageTarget:
		return brand + " " + HeadlineLeads
	case coverage >= policy.CoverageTarget:
		return brand + " " + HeadlineModerate
	default:
		return brand + " " + HeadlineLimited
	}
}

func executiveSummary(agg model.RunAggregate, avgRec, avgSent float64, policy Policy) model.ExecutiveSummary {
	topCompetitors := []string{}
	for _, b := range agg.BrandRankings {
		if b.IsTrackedBrand {
			continue
		}
		topCompetitors = append(topCompetitors, b.Brand)
		if len(topCompetitors) == 3 {
			break
		}
	}

	var rank *int
	if agg.BrandRank > 0 {
		r := agg.BrandRank
		rank = &r
	}

	// Zero sentiment means no signal; the summary shows neutral instead
	sentimentDisplay := avgSent
	if sentimentDisplay <= 0 {
		sentimentDisplay = neutralSentiment
	}

	return model.ExecutiveSummary{
		Headline:          Headline(agg.BrandName, agg.BrandRank, agg.BrandCoverage, policy),
		VisibilityScore:   agg.VisibilityScore,
		BrandCoverage:     agg.BrandCoverage,
		BrandRank:         rank,
		BrandSOV:          agg.BrandSOV,
		BestModel:         agg.BestModel,
		WorstModel:        agg.WorstModel,
		AvgSentiment:      sentimentDisplay,
		AvgRecommendation: avgRec,
		TopCompetitors:    topCompetitors,
	}
}
