package model

// RunAggregate is the terminal visibility report for one run.
// It is built once by the aggregation engine and consumed by persistence.
type RunAggregate struct {
	BrandName       string  `json:"brand_name"`
	Industry        string  `json:"industry"`
	VisibilityScore float64 `json:"visibility_score"` // mean of the per-provider overall averages
	BestModel       string  `json:"best_model"`
	WorstModel      string  `json:"worst_model"`

	BrandCoverage float64 `json:"brand_coverage"` // % of questions mentioning the tracked brand
	BrandRank     int     `json:"brand_rank"`     // 1-based; 0 when the brand is not ranked
	BrandSOV      float64 `json:"brand_sov"`

	BrandRankings       []BrandMention                 `json:"brand_rankings"` // top N only
	PlatformsSummary    map[ProviderID]PlatformSummary `json:"platforms_summary"`
	PlatformConsistency Consistency                    `json:"platform_consistency"`
	QuestionBreakdown   []QuestionBreakdown            `json:"question_breakdown"`
	Recommendations     []Recommendation               `json:"recommendations"`
	ExecutiveSummary    ExecutiveSummary               `json:"executive_summary"`

	NumQuestionsProcessed int `json:"num_questions_processed"`
}

// BrandMention is one row of the share-of-voice ranking
type BrandMention struct {
	Brand          string  `json:"brand"`
	Mentions       int     `json:"mentions"`
	ShareOfVoice   float64 `json:"share_of_voice"`
	IsTrackedBrand bool    `json:"is_tracked_brand"`
}

// PlatformSummary holds one provider's averaged scores
type PlatformSummary struct {
	Score          float64 `json:"score"`          // avg overall
	Mention        float64 `json:"mention"`        // avg mention
	Sentiment      float64 `json:"sentiment"`      // avg non-zero sentiment
	Recommendation float64 `json:"recommendation"` // avg of values clamped to 100
}

// Consistency describes how evenly providers mention the tracked brand
type Consistency struct {
	Rates        map[ProviderID]float64 `json:"rates"`
	Variance     float64                `json:"variance"` // max rate - min rate
	Strongest    ProviderID             `json:"strongest"`
	Weakest      ProviderID             `json:"weakest"`
	IsConsistent bool                   `json:"is_consistent"`
}

// QuestionBreakdown is the compact per-question row shown in the dashboard
type QuestionBreakdown struct {
	Q        int    `json:"q"`    // 1-based question index
	Text     string `json:"text"` // first 50 characters
	Category string `json:"category"`
	M        int    `json:"m"` // 1 if any provider mentioned the brand
	P        string `json:"p"` // initials of mentioning providers, e.g. "CG"
}

// Priority ranks a recommendation or action
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is a rule-table output
type Recommendation struct {
	Priority Priority `json:"priority"`
	Action   string   `json:"action"`
	Detail   string   `json:"detail"`
}

// ExecutiveSummary is the headline block of the report
type ExecutiveSummary struct {
	Headline          string   `json:"headline"`
	VisibilityScore   float64  `json:"visibility_score"`
	BrandCoverage     float64  `json:"brand_coverage"`
	BrandRank         *int     `json:"brand_rank"` // nil when the brand is not ranked
	BrandSOV          float64  `json:"brand_sov"`
	BestModel         string   `json:"best_model"`
	WorstModel        string   `json:"worst_model"`
	AvgSentiment      float64  `json:"avg_sentiment"`
	AvgRecommendation float64  `json:"avg_recommendation"`
	TopCompetitors    []string `json:"top_competitors"`
}

// AlertSeverity classifies a per-provider alert
type AlertSeverity string

const (
	AlertCritical AlertSeverity = "critical"
	AlertWarning  AlertSeverity = "warning"
)

// Alert flags a provider with a weak recommendation rate
type Alert struct {
	Type     AlertSeverity `json:"type"`
	Message  string        `json:"message"`
	Platform ProviderID    `json:"platform"`
}

// Action is a follow-up task derived from the platform summary
type Action struct {
	Priority Priority `json:"priority"`
	Action   string   `json:"action"`
	Impact   string   `json:"impact"`
	Effort   string   `json:"effort"`
}
