// Package intake turns webhook payloads and brief files into run briefs.
package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

// ErrInvalidBrief is matched by every validation failure
var ErrInvalidBrief = errors.New("invalid brief")

// nowFunc is replaced in tests
var nowFunc = time.Now

// Payload is the webhook body posted by the intake form
type Payload struct {
	SessionID     string                     `json:"session_id"`
	BrandName     string                     `json:"brand_name"`
	Website       string                     `json:"website"`
	Email         string                     `json:"email"`
	KeyMessages   StringList                 `json:"key_messages"`
	Competitors   StringList                 `json:"competitors"`
	Questions     map[string]PayloadQuestion `json:"questions"`
	QuestionCount int                        `json:"question_count"`
	Timestamp     string                     `json:"timestamp"`
}

// PayloadQuestion is one numbered question in the webhook body
type PayloadQuestion struct {
	Text     string `json:"Questions Text"`
	Category string `json:"Questions Category"`
}

// StringList decodes either a JSON array of strings or a comma-separated string
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = cleanList(list)
		return nil
	}

	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	if s == nil {
		*l = nil
		return nil
	}
	*l = cleanList(strings.Split(*s, ","))
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseWebhook decodes a webhook body into a brief with fresh run and customer IDs
func ParseWebhook(data []byte) (*model.Brief, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrInvalidBrief, err)
	}
	return FromPayload(p)
}

// FromPayload converts a decoded payload into a validated brief
func FromPayload(p Payload) (*model.Brief, error) {
	now := nowFunc()

	brief := &model.Brief{
		SessionID:   strings.TrimSpace(p.SessionID),
		RunID:       NewRunID(now),
		CustomerID:  NewCustomerID(),
		BrandName:   strings.TrimSpace(p.BrandName),
		Website:     strings.TrimSpace(p.Website),
		Email:       strings.TrimSpace(p.Email),
		KeyMessages: nonNil(p.KeyMessages),
		Competitors: nonNil(p.Competitors),
		Questions:   orderedQuestions(p.Questions, p.QuestionCount),
		Timestamp:   now,
	}

	if p.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
			brief.Timestamp = ts
		}
	}
	if brief.SessionID == "" {
		brief.SessionID = NewSessionID(now)
	}

	if err := Validate(brief); err != nil {
		return nil, err
	}
	return brief, nil
}

// orderedQuestions reads keys "1".."count". Without a count, every numeric
// key is taken in ascending order.
func orderedQuestions(questions map[string]PayloadQuestion, count int) []model.Question {
	keys := make([]int, 0, len(questions))
	if count > 0 {
		for i := 1; i <= count; i++ {
			keys = append(keys, i)
		}
	} else {
		for k := range questions {
			if n, err := strconv.Atoi(strings.TrimSpace(k)); err == nil && n > 0 {
				keys = append(keys, n)
			}
		}
		sort.Ints(keys)
	}

	out := make([]model.Question, 0, len(keys))
	for _, n := range keys {
		q, ok := questions[strconv.Itoa(n)]
		if !ok {
			continue
		}
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		out = append(out, model.Question{Text: text, Category: strings.TrimSpace(q.Category)})
	}
	return out
}

// Validate checks the fields a run cannot do without
func Validate(b *model.Brief) error {
	if strings.TrimSpace(b.BrandName) == "" {
		return fmt.Errorf("%w: brand_name is required", ErrInvalidBrief)
	}
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidBrief)
	}
	for i, q := range b.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidBrief, i+1)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
