package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

const defaultAirtableBaseURL = "https://api.airtable.com/v0"

// AirtableStore writes records to two Airtable tables
type AirtableStore struct {
	apiKey         string
	baseURL        string
	baseID         string
	rawTable       string
	aggregateTable string
	httpClient     *http.Client
	logger         *log.Logger
}

type airtableRecord struct {
	Fields map[string]any `json:"fields"`
}

type airtableRequest struct {
	Records []airtableRecord `json:"records"`
}

// NewAirtableStore creates an Airtable-backed store. A nil client uses a 30s default.
func NewAirtableStore(cfg model.StoreConfig, client *http.Client, logger *log.Logger) (*AirtableStore, error) {
	if cfg.AirtableAPIKey == "" {
		return nil, fmt.Errorf("airtable API key is required")
	}
	if cfg.AirtableBaseID == "" {
		return nil, fmt.Errorf("airtable base ID is required")
	}

	baseURL := cfg.AirtableBaseURL
	if baseURL == "" {
		baseURL = defaultAirtableBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &AirtableStore{
		apiKey:         cfg.AirtableAPIKey,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		baseID:         cfg.AirtableBaseID,
		rawTable:       cfg.RawTable,
		aggregateTable: cfg.AggregateTable,
		httpClient:     client,
		logger:         logger,
	}, nil
}

// SaveRaw writes raw records in batches of at most BatchSize
func (s *AirtableStore) SaveRaw(ctx context.Context, records []RawRecord) (int, error) {
	return writeBatches(ctx, records, s.logger, func(ctx context.Context, batch []RawRecord) error {
		req := airtableRequest{Records: make([]airtableRecord, 0, len(batch))}
		for _, r := range batch {
			req.Records = append(req.Records, airtableRecord{Fields: r.Fields()})
		}
		return s.post(ctx, s.rawTable, req)
	})
}

// SaveAggregate writes the dashboard row
func (s *AirtableStore) SaveAggregate(ctx context.Context, record AggregateRecord) error {
	req := airtableRequest{Records: []airtableRecord{{Fields: record.Fields()}}}
	if err := s.post(ctx, s.aggregateTable, req); err != nil {
		return &WriteError{Unwritten: 1, Err: err}
	}
	return nil
}

// Close is a no-op
func (s *AirtableStore) Close() error { return nil }

func (s *AirtableStore) post(ctx context.Context, table string, payload airtableRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", s.baseURL, s.baseID, url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("airtable %s: HTTP %d: %s", table, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
