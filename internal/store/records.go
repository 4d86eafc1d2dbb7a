package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/brandlens/internal/aggregate"
	"github.com/ppiankov/brandlens/internal/model"
)

// RawRecord is the flat per-question row written to the raw table
type RawRecord struct {
	SessionID        string                              `json:"session_id" bson:"session_id"`
	RunID            string                              `json:"run_id" bson:"run_id"`
	CustomerID       string                              `json:"customer_id" bson:"customer_id"`
	QuestionNumber   int                                 `json:"question_number" bson:"question_number"`
	QuestionText     string                              `json:"question_text" bson:"question_text"`
	QuestionCategory string                              `json:"question_category" bson:"question_category"`
	AnalyzedAt       string                              `json:"analyzed_at" bson:"analyzed_at"`
	Responses        map[model.ProviderID]string          `json:"responses" bson:"responses"`
	Scores           map[model.ProviderID]model.ScoreCard `json:"scores" bson:"scores"`
}

// RunMeta identifies the run a record set belongs to
type RunMeta struct {
	RunID      string
	CustomerID string
	SessionID  string
	RunDate    time.Time
}

// BuildRawRecords flattens question results into one raw record each
func BuildRawRecords(meta RunMeta, results []model.QuestionResult) []RawRecord {
	records := make([]RawRecord, 0, len(results))
	for i, r := range results {
		rec := RawRecord{
			SessionID:        meta.SessionID,
			RunID:            meta.RunID,
			CustomerID:       meta.CustomerID,
			QuestionNumber:   i + 1,
			QuestionText:     r.Question.Text,
			QuestionCategory: r.Question.Category,
			AnalyzedAt:       meta.RunDate.Format(time.RFC3339),
			Responses:        make(map[model.ProviderID]string, len(model.Providers)),
			Scores:           make(map[model.ProviderID]model.ScoreCard, len(model.Providers)),
		}
		for _, p := range model.Providers {
			rec.Responses[p] = r.AnswerText(p)
			rec.Scores[p] = r.Score(p)
		}
		records = append(records, rec)
	}
	return records
}

// Fields renders the record as the flat column map used by tabular stores
func (r RawRecord) Fields() map[string]any {
	fields := map[string]any{
		"session_id":        r.SessionID,
		"run_id":            r.RunID,
		"customer_id":       r.CustomerID,
		"question_number":   r.QuestionNumber,
		"question_text":     r.QuestionText,
		"question_category": r.QuestionCategory,
		"analyzed_at":       r.AnalyzedAt,
	}

	for _, p := range model.Providers {
		prefix := string(p) + "_"
		card := r.Scores[p]

		competitors := []string{}
		if card.CompetitorsMentioned != "" {
			competitors = append(competitors, card.CompetitorsMentioned)
		}

		fields[prefix+"response"] = r.Responses[p]
		fields[prefix+"mention"] = card.Mention
		fields[prefix+"position"] = card.Position
		fields[prefix+"sentiment"] = card.Sentiment
		fields[prefix+"recommendation"] = card.Recommendation
		fields[prefix+"message_alignment"] = card.MessageAlignment
		fields[prefix+"overall"] = card.Overall
		fields[prefix+"competitors_mentioned"] = competitors
		fields[prefix+"notes"] = card.Notes
	}

	return fields
}

// AggregateRecord is the single dashboard row for a run. JSON sub-objects are
// stored pre-serialised; coverage, rank and share of voice are sparse.
type AggregateRecord struct {
	RunID           string  `json:"run_id" bson:"run_id"`
	SessionID       string  `json:"session_id" bson:"session_id"`
	BrandName       string  `json:"brand_name" bson:"brand_name"`
	BrandLogo       string  `json:"brand_logo" bson:"brand_logo"`
	ReportDate      string  `json:"report_date" bson:"report_date"`
	VisibilityScore float64 `json:"visibility_score" bson:"visibility_score"`
	BestModel       string  `json:"best_model" bson:"best_model"`
	WorstModel      string  `json:"worst_model" bson:"worst_model"`

	PlatformsJSON           string `json:"platforms_json" bson:"platforms_json"`
	ShareOfVoiceJSON        string `json:"share_of_voice_json" bson:"share_of_voice_json"`
	AlertsJSON              string `json:"alerts_json" bson:"alerts_json"`
	ActionsJSON             string `json:"actions_json" bson:"actions_json"`
	RecommendationsJSON     string `json:"recommendations_json" bson:"recommendations_json"`
	PlatformConsistencyJSON string `json:"platform_consistency_json" bson:"platform_consistency_json"`
	QuestionBreakdownJSON   string `json:"question_breakdown_json" bson:"question_breakdown_json"`
	BrandRankingsJSON       string `json:"brand_rankings_json" bson:"brand_rankings_json"`
	ExecutiveSummaryJSON    string `json:"executive_summary_json" bson:"executive_summary_json"`
	HistoryJSON             string `json:"history_json" bson:"history_json"`

	BrandCoverage *float64 `json:"brand_coverage,omitempty" bson:"brand_coverage,omitempty"`
	BrandRank     *int     `json:"brand_rank,omitempty" bson:"brand_rank,omitempty"`
	BrandSOV      *float64 `json:"brand_sov,omitempty" bson:"brand_sov,omitempty"`
}

// Fields renders the record as a flat column map, omitting unset sparse fields
func (r AggregateRecord) Fields() map[string]any {
	fields := map[string]any{
		"run_id":                    r.RunID,
		"session_id":                r.SessionID,
		"brand_name":                r.BrandName,
		"brand_logo":                r.BrandLogo,
		"report_date":               r.ReportDate,
		"visibility_score":          r.VisibilityScore,
		"best_model":                r.BestModel,
		"worst_model":               r.WorstModel,
		"platforms_json":            r.PlatformsJSON,
		"share_of_voice_json":       r.ShareOfVoiceJSON,
		"alerts_json":               r.AlertsJSON,
		"actions_json":              r.ActionsJSON,
		"recommendations_json":      r.RecommendationsJSON,
		"platform_consistency_json": r.PlatformConsistencyJSON,
		"question_breakdown_json":   r.QuestionBreakdownJSON,
		"brand_rankings_json":       r.BrandRankingsJSON,
		"executive_summary_json":    r.ExecutiveSummaryJSON,
		"history_json":              r.HistoryJSON,
	}
	if r.BrandCoverage != nil {
		fields["brand_coverage"] = *r.BrandCoverage
	}
	if r.BrandRank != nil {
		fields["brand_rank"] = *r.BrandRank
	}
	if r.BrandSOV != nil {
		fields["brand_sov"] = *r.BrandSOV
	}
	return fields
}

// PlatformEntry is one provider in platforms_json
type PlatformEntry struct {
	Score          float64 `json:"score"`
	Mention        float64 `json:"mention"`
	Sentiment      float64 `json:"sentiment"`
	Recommendation float64 `json:"recommendation"`
	Trend          string  `json:"trend"`
}

// ShareOfVoice is share_of_voice_json
type ShareOfVoice struct {
	Brand       float64           `json:"brand"`
	Competitors []CompetitorShare `json:"competitors"`
}

// CompetitorShare is one competitor in ShareOfVoice
type CompetitorShare struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

// HistoryPoint is one entry of history_json
type HistoryPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// AggregateMeta carries the run identity and presentation fields of the dashboard row
type AggregateMeta struct {
	RunID      string
	SessionID  string
	BrandLogo  string
	ReportDate time.Time
}

// BuildAggregateRecord derives the dashboard row from the run report
func BuildAggregateRecord(agg model.RunAggregate, meta AggregateMeta, policy model.PolicyConfig) (AggregateRecord, error) {
	if policy.AlertWarning <= 0 {
		policy.AlertWarning = model.DefaultPolicy().AlertWarning
	}

	platforms := make(map[model.ProviderID]PlatformEntry, len(agg.PlatformsSummary))
	for p, s := range agg.PlatformsSummary {
		platforms[p] = PlatformEntry{
			Score:          s.Score,
			Mention:        s.Mention,
			Sentiment:      s.Sentiment,
			Recommendation: s.Recommendation,
			Trend:          "flat",
		}
	}

	sov := ShareOfVoice{Brand: agg.BrandSOV, Competitors: []CompetitorShare{}}
	for _, b := range agg.BrandRankings {
		if b.IsTrackedBrand {
			continue
		}
		sov.Competitors = append(sov.Competitors, CompetitorShare{Name: b.Brand, Share: b.ShareOfVoice})
		if len(sov.Competitors) == 3 {
			break
		}
	}

	rec := AggregateRecord{
		RunID:           meta.RunID,
		SessionID:       meta.SessionID,
		BrandName:       agg.BrandName,
		BrandLogo:       meta.BrandLogo,
		ReportDate:      meta.ReportDate.Format("2006-01-02"),
		VisibilityScore: agg.VisibilityScore,
		BestModel:       agg.BestModel,
		WorstModel:      agg.WorstModel,
	}

	parts := []struct {
		dst *string
		v   any
	}{
		{&rec.PlatformsJSON, platforms},
		{&rec.ShareOfVoiceJSON, sov},
		{&rec.AlertsJSON, Alerts(agg, policy.AlertWarning)},
		{&rec.ActionsJSON, Actions(agg)},
		{&rec.RecommendationsJSON, nonNil(agg.Recommendations)},
		{&rec.PlatformConsistencyJSON, agg.PlatformConsistency},
		{&rec.QuestionBreakdownJSON, nonNil(agg.QuestionBreakdown)},
		{&rec.BrandRankingsJSON, nonNil(agg.BrandRankings)},
		{&rec.ExecutiveSummaryJSON, agg.ExecutiveSummary},
		{&rec.HistoryJSON, []HistoryPoint{{Date: "Current", Score: agg.VisibilityScore}}},
	}
	for _, part := range parts {
		data, err := json.Marshal(part.v)
		if err != nil {
			return AggregateRecord{}, fmt.Errorf("marshal aggregate field: %w", err)
		}
		*part.dst = string(data)
	}

	if agg.BrandCoverage > 0 {
		v := agg.BrandCoverage
		rec.BrandCoverage = &v
	}
	if agg.BrandRank > 0 {
		v := agg.BrandRank
		rec.BrandRank = &v
	}
	if agg.BrandSOV > 0 {
		v := agg.BrandSOV
		rec.BrandSOV = &v
	}

	return rec, nil
}

// Alerts flags providers that never recommend the brand (critical) or
// recommend it below the warning threshold
func Alerts(agg model.RunAggregate, warningBelow float64) []model.Alert {
	alerts := []model.Alert{}
	for _, p := range model.Providers {
		s, ok := agg.PlatformsSummary[p]
		if !ok {
			continue
		}
		switch {
		case s.Recommendation == 0:
			alerts = append(alerts, model.Alert{
				Type:     model.AlertCritical,
				Message:  fmt.Sprintf("%s never recommends %s", p.DisplayName(), agg.BrandName),
				Platform: p,
			})
		case s.Recommendation > 0 && s.Recommendation < warningBelow:
			alerts = append(alerts, model.Alert{
				Type:     model.AlertWarning,
				Message:  fmt.Sprintf("%s recommendation rate is only %s%%", p.DisplayName(), aggregate.FormatNumber(s.Recommendation)),
				Platform: p,
			})
		}
	}
	return alerts
}

// Actions derives the follow-ups: investigate the lowest scorer, maintain the highest
func Actions(agg model.RunAggregate) []model.Action {
	ordered := make([]model.ProviderID, 0, len(model.Providers))
	for _, p := range model.Providers {
		if _, ok := agg.PlatformsSummary[p]; ok {
			ordered = append(ordered, p)
		}
	}
	if len(ordered) == 0 {
		return []model.Action{}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return agg.PlatformsSummary[ordered[i]].Score < agg.PlatformsSummary[ordered[j]].Score
	})
	worst, best := ordered[0], ordered[len(ordered)-1]

	return []model.Action{
		{
			Priority: model.PriorityHigh,
			Action:   fmt.Sprintf("Investigate why %s underperforms", worst.DisplayName()),
			Impact:   "Score: " + aggregate.FormatNumber(agg.PlatformsSummary[worst].Score),
			Effort:   "High",
		},
		{
			Priority: model.PriorityLow,
			Action:   fmt.Sprintf("Maintain %s performance", best.DisplayName()),
			Impact:   "Protect top performer",
			Effort:   "Low",
		},
	}
}

// ParseAggregateRecord reads a dashboard row back into a run report.
// Industry is not stored; the question count comes from the breakdown.
func ParseAggregateRecord(rec AggregateRecord) (*model.RunAggregate, error) {
	agg := &model.RunAggregate{
		BrandName:       rec.BrandName,
		VisibilityScore: rec.VisibilityScore,
		BestModel:       rec.BestModel,
		WorstModel:      rec.WorstModel,
	}

	var platforms map[model.ProviderID]PlatformEntry
	if err := unmarshalField("platforms_json", rec.PlatformsJSON, &platforms); err != nil {
		return nil, err
	}
	agg.PlatformsSummary = make(map[model.ProviderID]model.PlatformSummary, len(platforms))
	for p, e := range platforms {
		agg.PlatformsSummary[p] = model.PlatformSummary{
			Score:          e.Score,
			Mention:        e.Mention,
			Sentiment:      e.Sentiment,
			Recommendation: e.Recommendation,
		}
	}

	fields := []struct {
		name string
		raw  string
		dst  any
	}{
		{"recommendations_json", rec.RecommendationsJSON, &agg.Recommendations},
		{"platform_consistency_json", rec.PlatformConsistencyJSON, &agg.PlatformConsistency},
		{"question_breakdown_json", rec.QuestionBreakdownJSON, &agg.QuestionBreakdown},
		{"brand_rankings_json", rec.BrandRankingsJSON, &agg.BrandRankings},
		{"executive_summary_json", rec.ExecutiveSummaryJSON, &agg.ExecutiveSummary},
	}
	for _, f := range fields {
		if err := unmarshalField(f.name, f.raw, f.dst); err != nil {
			return nil, err
		}
	}

	if rec.BrandCoverage != nil {
		agg.BrandCoverage = *rec.BrandCoverage
	}
	if rec.BrandRank != nil {
		agg.BrandRank = *rec.BrandRank
	}
	if rec.BrandSOV != nil {
		agg.BrandSOV = *rec.BrandSOV
	}
	agg.NumQuestionsProcessed = len(agg.QuestionBreakdown)

	return agg, nil
}

func unmarshalField(name, raw string, dst any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
