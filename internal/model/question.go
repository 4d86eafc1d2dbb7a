package model

// ProviderID identifies one of the four polled text-generation providers
type ProviderID string

const (
	ProviderChatGPT    ProviderID = "chatgpt"
	ProviderClaude     ProviderID = "claude"
	ProviderGemini     ProviderID = "gemini"
	ProviderPerplexity ProviderID = "perplexity"
)

// Providers lists every provider in reporting order (A, B, C, D)
var Providers = []ProviderID{ProviderChatGPT, ProviderClaude, ProviderGemini, ProviderPerplexity}

// DisplayName returns the human-facing provider name
func (p ProviderID) DisplayName() string {
	switch p {
	case ProviderChatGPT:
		return "ChatGPT"
	case ProviderClaude:
		return "Claude"
	case ProviderGemini:
		return "Gemini"
	case ProviderPerplexity:
		return "Perplexity"
	default:
		return string(p)
	}
}

// Initial returns the single upper-case letter used in question breakdowns
func (p ProviderID) Initial() string {
	if p == "" {
		return ""
	}
	s := string(p)
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return string(c)
}

// Question is one caller-supplied prompt; its position in the run is its index
type Question struct {
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
}

// ProviderAnswer is the raw text one provider returned for one question.
// Text may be an "Error: <code>" placeholder.
type ProviderAnswer struct {
	Provider ProviderID `json:"provider"`
	Text     string     `json:"text"`
}

// ScoreCard is the six-dimension evaluation of one provider answer.
// Values are not range-checked here; the aggregation step excludes or clamps.
type ScoreCard struct {
	Mention              float64 `json:"mention"`
	Position             float64 `json:"position"`
	Sentiment            float64 `json:"sentiment"`
	Recommendation       float64 `json:"recommendation"`
	MessageAlignment     float64 `json:"message_alignment"`
	Overall              float64 `json:"overall"`
	CompetitorsMentioned string  `json:"competitors_mentioned"`
	Notes                string  `json:"notes"`
}

// QuestionResult bundles one question with its four answers and four scorecards.
// Both maps always hold an entry for every provider in Providers.
type QuestionResult struct {
	Index    int                           `json:"index"` // 0-based position in the run
	Question Question                      `json:"question"`
	Answers  map[ProviderID]ProviderAnswer `json:"answers"`
	Scores   map[ProviderID]ScoreCard      `json:"scores"`
}

// NewQuestionResult builds a result with zero-valued scorecards and empty
// answers for every provider, so no entry is ever absent.
func NewQuestionResult(index int, q Question) QuestionResult {
	r := QuestionResult{
		Index:    index,
		Question: q,
		Answers:  make(map[ProviderID]ProviderAnswer, len(Providers)),
		Scores:   make(map[ProviderID]ScoreCard, len(Providers)),
	}
	for _, p := range Providers {
		r.Answers[p] = ProviderAnswer{Provider: p}
		r.Scores[p] = ScoreCard{}
	}
	return r
}

// Score returns the scorecard for a provider (zero value if missing)
func (r QuestionResult) Score(p ProviderID) ScoreCard {
	return r.Scores[p]
}

// AnswerText returns the raw answer text for a provider
func (r QuestionResult) AnswerText(p ProviderID) string {
	return r.Answers[p].Text
}
