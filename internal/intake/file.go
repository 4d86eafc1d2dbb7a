package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/brandlens/internal/model"
)

// LoadBrief reads a brief from a YAML or JSON file and fills in missing identifiers.
// A JSON file in webhook shape (numbered "questions" object) is accepted too.
func LoadBrief(path string) (*model.Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brief: %w", err)
	}

	var brief model.Brief
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &brief); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidBrief, path, err)
		}
	case ".json":
		if isWebhookShape(data) {
			return ParseWebhook(data)
		}
		if err := json.Unmarshal(data, &brief); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidBrief, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported brief format %q (use .yaml or .json)", ErrInvalidBrief, filepath.Ext(path))
	}

	Complete(&brief)
	if err := Validate(&brief); err != nil {
		return nil, err
	}
	return &brief, nil
}

// Complete assigns identifiers and a timestamp where the brief has none
func Complete(b *model.Brief) {
	now := nowFunc()
	if b.Timestamp.IsZero() {
		b.Timestamp = now
	}
	if b.RunID == "" {
		b.RunID = NewRunID(now)
	}
	if b.CustomerID == "" {
		b.CustomerID = NewCustomerID()
	}
	if b.SessionID == "" {
		b.SessionID = NewSessionID(now)
	}
	b.KeyMessages = nonNil(b.KeyMessages)
	b.Competitors = nonNil(b.Competitors)
}

// isWebhookShape reports whether "questions" is a JSON object rather than an array
func isWebhookShape(data []byte) bool {
	var peek struct {
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return false
	}
	trimmed := strings.TrimSpace(string(peek.Questions))
	return strings.HasPrefix(trimmed, "{")
}
