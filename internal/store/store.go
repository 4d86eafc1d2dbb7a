// Package store persists raw per-question rows and the aggregate dashboard row.
package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ppiankov/brandlens/internal/model"
)

// BatchSize is the maximum number of raw records sent per write call
const BatchSize = 10

// Store is the persistence boundary of a run
type Store interface {
	// SaveRaw writes raw records in batches and returns how many were written.
	// A failed batch does not stop later batches; the error is a *WriteError.
	SaveRaw(ctx context.Context, records []RawRecord) (int, error)

	// SaveAggregate writes the single dashboard row
	SaveAggregate(ctx context.Context, record AggregateRecord) error

	// Close releases backend resources
	Close() error
}

// WriteError reports records that could not be persisted
type WriteError struct {
	Unwritten int
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%d records not written: %v", e.Unwritten, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// batchWriter writes one batch of at most BatchSize records
type batchWriter func(ctx context.Context, batch []RawRecord) error

// writeBatches splits records into batches, keeps going after failures
// and accumulates whatever subset succeeds
func writeBatches(ctx context.Context, records []RawRecord, logger *log.Logger, write batchWriter) (int, error) {
	written := 0
	var firstErr error

	for start := 0; start < len(records); start += BatchSize {
		end := min(start+BatchSize, len(records))
		batch := records[start:end]

		if err := write(ctx, batch); err != nil {
			if logger != nil {
				logger.Printf("store: batch %d-%d failed: %v", start+1, end, err)
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		written += len(batch)
	}

	if firstErr != nil {
		return written, &WriteError{Unwritten: len(records) - written, Err: firstErr}
	}
	return written, nil
}

// New builds the store selected by cfg.Backend
func New(ctx context.Context, cfg model.StoreConfig, logger *log.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return Discard{}, nil

	case "airtable":
		return NewAirtableStore(cfg, nil, logger)

	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger)

	case "mongo", "mongodb":
		return NewMongoStore(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: none, airtable, sqlite, mongo)", cfg.Backend)
	}
}

// Discard drops every record
type Discard struct{}

// SaveRaw reports every record as written
func (Discard) SaveRaw(_ context.Context, records []RawRecord) (int, error) {
	return len(records), nil
}

// SaveAggregate does nothing
func (Discard) SaveAggregate(context.Context, AggregateRecord) error { return nil }

// Close does nothing
func (Discard) Close() error { return nil }
