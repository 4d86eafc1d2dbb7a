package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/brandlens/internal/model"
)

const fullReply = `Here is my evaluation:
` + "```json" + `
{
  "chatgpt": {"mention":100,"position":75,"sentiment":80,"recommendation":60,"message_alignment":40,"overall":70,"competitors_mentioned":"Zappi; Toluna","notes":"solid"},
  "claude": {"mention":0,"position":0,"sentiment":0,"recommendation":0,"message_alignment":0,"overall":0,"competitors_mentioned":"","notes":""},
  "gemini": {"mention":"50","position":"50%","sentiment":null,"recommendation":20,"message_alignment":10,"overall":30,"competitors_mentioned":["Qualtrics","Zappi"],"notes":"list form"},
  "perplexity": {"mention":100,"position":100,"sentiment":90,"recommendation":100,"message_alignment":80,"overall":95,"competitors_mentioned":"","notes":"top pick"}
}
` + "```" + `
Let me know if you need anything else.`

func TestSliceJSON_FencedWithTrailingProse(t *testing.T) {
	var obj map[string]int
	if err := DecodeObject("```json\n{\"a\":1}\n``` trailing prose", &obj); err != nil {
		t.Fatalf("DecodeObject failed: %v", err)
	}
	if len(obj) != 1 || obj["a"] != 1 {
		t.Errorf("Expected {a:1}, got %v", obj)
	}
}

func TestSliceJSON_NoBraces(t *testing.T) {
	_, err := SliceJSON("The model refused to answer.")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, ErrExtractionParse) {
		t.Errorf("Expected ErrExtractionParse, got %v", err)
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Expected *ParseError, got %T", err)
	}
}

func TestSliceJSON_ReversedBraces(t *testing.T) {
	if _, err := SliceJSON("} nothing {"); !errors.Is(err, ErrExtractionParse) {
		t.Errorf("Expected ErrExtractionParse for reversed braces, got %v", err)
	}
}

func TestParseScorecards_Full(t *testing.T) {
	cards, err := ParseScorecards(fullReply)
	if err != nil {
		t.Fatalf("ParseScorecards failed: %v", err)
	}

	if len(cards) != 4 {
		t.Fatalf("Expected 4 scorecards, got %d", len(cards))
	}

	chatgpt := cards[model.ProviderChatGPT]
	if chatgpt.Mention != 100 || chatgpt.Position != 75 || chatgpt.Overall != 70 {
		t.Errorf("Unexpected chatgpt card: %+v", chatgpt)
	}
	if chatgpt.CompetitorsMentioned != "Zappi; Toluna" {
		t.Errorf("Unexpected competitors: %q", chatgpt.CompetitorsMentioned)
	}

	gemini := cards[model.ProviderGemini]
	if gemini.Mention != 50 || gemini.Position != 50 {
		t.Errorf("Expected numeric strings decoded, got %+v", gemini)
	}
	if gemini.Sentiment != 0 {
		t.Errorf("Expected null sentiment as 0, got %v", gemini.Sentiment)
	}
	if gemini.CompetitorsMentioned != "Qualtrics; Zappi" {
		t.Errorf("Expected list joined with '; ', got %q", gemini.CompetitorsMentioned)
	}
}

func TestParseScorecards_MissingProvider(t *testing.T) {
	raw := `{"chatgpt": {}, "claude": {}, "gemini": {}}`

	_, err := ParseScorecards(raw)
	if !errors.Is(err, ErrExtractionParse) {
		t.Fatalf("Expected ErrExtractionParse, got %v", err)
	}
	if !strings.Contains(err.Error(), "perplexity") {
		t.Errorf("Expected error to name the missing provider, got %v", err)
	}
}

func TestParseScorecards_CaseInsensitiveKeys(t *testing.T) {
	raw := `{"ChatGPT": {"mention": 10}, "Claude": {}, "Gemini": {}, "Perplexity": {}}`

	cards, err := ParseScorecards(raw)
	if err != nil {
		t.Fatalf("ParseScorecards failed: %v", err)
	}
	if cards[model.ProviderChatGPT].Mention != 10 {
		t.Errorf("Expected mention 10, got %v", cards[model.ProviderChatGPT].Mention)
	}
}

func TestParseScorecards_InvalidJSON(t *testing.T) {
	_, err := ParseScorecards(`{"chatgpt": {"mention": }`)
	if !errors.Is(err, ErrExtractionParse) {
		t.Errorf("Expected ErrExtractionParse, got %v", err)
	}
}

func TestParseScorecards_BadNumber(t *testing.T) {
	raw := `{"chatgpt": {"mention": "lots"}, "claude": {}, "gemini": {}, "perplexity": {}}`
	if _, err := ParseScorecards(raw); !errors.Is(err, ErrExtractionParse) {
		t.Errorf("Expected ErrExtractionParse for non-numeric score, got %v", err)
	}
}

func TestParseScorecards_NonFiniteNumber(t *testing.T) {
	for _, v := range []string{`"-inf"`, `"Infinity"`, `"NaN"`, `1e999`} {
		raw := `{"chatgpt": {"mention": 50, "overall": ` + v + `}, "claude": {}, "gemini": {}, "perplexity": {}}`
		_, err := ParseScorecards(raw)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Expected *ParseError for overall %s, got %v", v, err)
		}
	}
}

func TestBuildEvaluationPrompt(t *testing.T) {
	prompt := BuildEvaluationPrompt(EvaluationInput{
		BrandName:   "Acme",
		KeyMessages: []string{"fast", "cheap"},
		Competitors: []string{"Globex"},
		Question:    "Best CRM?",
		Answers: map[model.ProviderID]string{
			model.ProviderChatGPT:    "answer A",
			model.ProviderClaude:     "answer B",
			model.ProviderGemini:     "Error: 503",
			model.ProviderPerplexity: "answer D",
		},
	})

	for _, want := range []string{
		"BRAND: Acme",
		`KEY MESSAGES: ["fast","cheap"]`,
		`COMPETITORS: ["Globex"]`,
		"QUESTION: Best CRM?",
		"ChatGPT: answer A",
		"Gemini: Error: 503",
		`"perplexity": {"mention":0`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}
