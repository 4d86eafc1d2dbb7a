package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/brandlens/internal/model"
)

// ErrExtractionParse matches every ParseError via errors.Is
var ErrExtractionParse = errors.New("extraction parse failure")

// ParseError reports why a reasoning-model reply could not be read as JSON
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction parse failure: %s: %v", e.Reason, e.Err)
	}
	return "extraction parse failure: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrExtractionParse) true for any ParseError
func (e *ParseError) Is(target error) bool {
	return target == ErrExtractionParse
}

var fenceRe = regexp.MustCompile("```[A-Za-z0-9_-]*")

// SliceJSON strips code fences and returns the span from the first '{' to the last '}'
func SliceJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first == -1 || last == -1 || last < first {
		return "", &ParseError{Reason: "no JSON object found"}
	}

	return cleaned[first : last+1], nil
}

// DecodeObject slices the JSON object out of raw and decodes it into v
func DecodeObject(raw string, v any) error {
	obj, err := SliceJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return &ParseError{Reason: "invalid JSON", Err: err}
	}
	return nil
}

// ParseScorecards reads the reasoning model's reply into one scorecard per
// provider. All four provider keys must be present.
func ParseScorecards(raw string) (map[model.ProviderID]model.ScoreCard, error) {
	var obj map[string]json.RawMessage
	if err := DecodeObject(raw, &obj); err != nil {
		return nil, err
	}

	cards := make(map[model.ProviderID]model.ScoreCard, len(model.Providers))
	for _, p := range model.Providers {
		data, ok := lookupKey(obj, string(p))
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("missing provider key %q", p)}
		}

		var w wireScoreCard
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("provider %q", p), Err: err}
		}
		cards[p] = w.toModel()
	}

	return cards, nil
}

// lookupKey finds a provider key, tolerating case differences ("ChatGPT")
func lookupKey(obj map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

type wireScoreCard struct {
	Mention              flexNumber `json:"mention"`
	Position             flexNumber `json:"position"`
	Sentiment            flexNumber `json:"sentiment"`
	Recommendation       flexNumber `json:"recommendation"`
	MessageAlignment     flexNumber `json:"message_alignment"`
	Overall              flexNumber `json:"overall"`
	CompetitorsMentioned flexText   `json:"competitors_mentioned"`
	Notes                flexText   `json:"notes"`
}

func (w wireScoreCard) toModel() model.ScoreCard {
	return model.ScoreCard{
		Mention:              float64(w.Mention),
		Position:             float64(w.Position),
		Sentiment:            float64(w.Sentiment),
		Recommendation:       float64(w.Recommendation),
		MessageAlignment:     float64(w.MessageAlignment),
		Overall:              float64(w.Overall),
		CompetitorsMentioned: string(w.CompetitorsMentioned),
		Notes:                string(w.Notes),
	}
}

// flexNumber accepts 42, 42.5, "42", "42%" and null (as 0). Infinities and NaN are rejected.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(str), "%")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("not a number: %s", string(data))
	}
	*n = flexNumber(f)
	return nil
}

// flexText accepts a string, a list of strings (joined with "; "), null or a bare scalar
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*t = ""
		return nil
	case strings.HasPrefix(s, "["):
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*t = flexText(strings.Join(items, "; "))
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*t = flexText(str)
		return nil
	default:
		*t = flexText(s)
		return nil
	}
}
