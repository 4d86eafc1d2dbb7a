package model

import "time"

// Brief is everything a run needs: who is tracked, against whom, and which questions to ask
type Brief struct {
	SessionID  string `json:"session_id" yaml:"session_id"`
	RunID      string `json:"run_id" yaml:"run_id"`
	CustomerID string `json:"customer_id" yaml:"customer_id"`

	BrandName   string   `json:"brand_name" yaml:"brand_name"`
	Website     string   `json:"website,omitempty" yaml:"website,omitempty"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty"`
	KeyMessages []string `json:"key_messages" yaml:"key_messages"`
	Competitors []string `json:"competitors" yaml:"competitors"`

	Questions []Question `json:"questions" yaml:"questions"`

	// Optional: when set, the industry-definition call is skipped
	Industry         string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	ValidCompetitors []string `json:"valid_competitors,omitempty" yaml:"valid_competitors,omitempty"`

	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// IndustryProfile is the output of the industry-definition step
type IndustryProfile struct {
	Industry           string   `json:"industry"`
	IndustryKeywords   []string `json:"industry_keywords"`
	ValidCompetitors   []string `json:"valid_competitors"`
	BrandVariations    []string `json:"brand_variations"`
	InvalidInputs      []string `json:"invalid_inputs"`
	DisambiguationTerm string   `json:"disambiguation_term"`
}
