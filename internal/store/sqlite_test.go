package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "brandlens.db"), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// loadAggregate reads the stored dashboard row for runID, or nil if absent
func loadAggregate(ctx context.Context, s *SQLiteStore, runID string) (*AggregateRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record_json FROM aggregate_records WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec AggregateRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func countRaw(ctx context.Context, s *SQLiteStore, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_records WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func TestSQLiteStore_SaveRaw(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	records := BuildRawRecords(RunMeta{RunID: "RUN_1", RunDate: time.Now()}, fixtureResults())
	records = append(records, makeRecords(12)...)

	written, err := s.SaveRaw(ctx, records)
	if err != nil {
		t.Fatalf("SaveRaw failed: %v", err)
	}
	if written != 14 {
		t.Errorf("Expected 14 written, got %d", written)
	}

	n, err := countRaw(ctx, s, "RUN_1")
	if err != nil {
		t.Fatalf("countRaw failed: %v", err)
	}
	if n != 14 {
		t.Errorf("Expected 14 rows, got %d", n)
	}
}

func TestSQLiteStore_AggregateRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	agg := fixtureAggregate()
	rec, err := BuildAggregateRecord(agg, AggregateMeta{RunID: "RUN_7", SessionID: "s7", ReportDate: time.Now()}, model.DefaultPolicy())
	if err != nil {
		t.Fatalf("BuildAggregateRecord failed: %v", err)
	}

	if err := s.SaveAggregate(ctx, rec); err != nil {
		t.Fatalf("SaveAggregate failed: %v", err)
	}
	// Saving again replaces the row
	if err := s.SaveAggregate(ctx, rec); err != nil {
		t.Fatalf("second SaveAggregate failed: %v", err)
	}

	loaded, err := loadAggregate(ctx, s, "RUN_7")
	if err != nil {
		t.Fatalf("loadAggregate failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected stored record")
	}
	if !reflect.DeepEqual(*loaded, rec) {
		t.Errorf("Stored record mismatch:\n got %+v\nwant %+v", *loaded, rec)
	}

	back, err := ParseAggregateRecord(*loaded)
	if err != nil {
		t.Fatalf("ParseAggregateRecord failed: %v", err)
	}
	if back.VisibilityScore != agg.VisibilityScore || back.BrandSOV != agg.BrandSOV || back.BrandCoverage != agg.BrandCoverage {
		t.Errorf("Numeric mismatch after storage: %+v", back)
	}
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	s := newTestSQLite(t)
	rec, err := loadAggregate(context.Background(), s, "RUN_missing")
	if err != nil || rec != nil {
		t.Errorf("Expected nil, nil; got %v, %v", rec, err)
	}
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore("", nil); err == nil {
		t.Error("Expected error for empty path")
	}
}
