package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/brandlens/internal/intake"
	"github.com/ppiankov/brandlens/internal/model"
)

// MockRunner implements Runner interface
type MockRunner struct {
	ShouldError bool
	calls       atomic.Int32
}

func (m *MockRunner) RunBrief(ctx context.Context, brief *model.Brief) (*model.RunAggregate, error) {
	m.calls.Add(1)
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.ShouldError {
		return nil, errors.New("run error")
	}
	return &model.RunAggregate{BrandName: brief.BrandName, NumQuestionsProcessed: len(brief.Questions)}, nil
}

func writeBrief(t *testing.T, dir, name, brand string) string {
	t.Helper()
	content := "brand_name: " + brand + "\nquestions:\n  - text: best tool?\n    category: discovery\n"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessBriefs(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeBrief(t, dir, "a.yaml", "Acme"),
		writeBrief(t, dir, "b.yaml", "Globex"),
		writeBrief(t, dir, "c.yaml", "Initech"),
	}

	runner := &MockRunner{}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessBriefs(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	want := []string{"Acme", "Globex", "Initech"}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			continue
		}
		if res.Index != i || res.Path != paths[i] {
			t.Errorf("result %d out of order: %+v", i, res)
		}
		if res.Aggregate == nil || res.Aggregate.BrandName != want[i] {
			t.Errorf("expected aggregate for %s, got %+v", want[i], res.Aggregate)
		}
		if res.Brief == nil || !strings.HasPrefix(res.Brief.RunID, "RUN_") {
			t.Errorf("expected completed brief, got %+v", res.Brief)
		}
	}
}

func TestBatchProcessor_ProcessBriefs_Error(t *testing.T) {
	dir := t.TempDir()
	runner := &MockRunner{ShouldError: true}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessBriefs(context.Background(), []string{writeBrief(t, dir, "a.yaml", "Acme")})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Aggregate != nil {
		t.Error("expected nil aggregate on error")
	}
}

func TestBatchProcessor_ProcessBriefs_InvalidBriefSkipsRun(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("brand_name: Acme\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &MockRunner{}
	results := NewBatchProcessor(runner, 1).ProcessBriefs(context.Background(), []string{bad})

	if !errors.Is(results[0].Error, intake.ErrInvalidBrief) {
		t.Errorf("expected ErrInvalidBrief, got %v", results[0].Error)
	}
	if runner.calls.Load() != 0 {
		t.Errorf("expected runner not called, got %d calls", runner.calls.Load())
	}
}

func TestBatchProcessor_ProcessBriefs_Cancelled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeBrief(t, dir, "a.yaml", "Acme"), writeBrief(t, dir, "b.yaml", "Globex")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatchProcessor(&MockRunner{}, 1).ProcessBriefs(ctx, paths)
	if len(results) != 2 {
		t.Fatalf("expected a result per brief, got %d", len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("expected path %s at index %d, got %s", paths[i], i, res.Path)
		}
	}
}

func TestBatchProcessor_ProcessBriefs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockRunner{}, 2)

	results := processor.ProcessBriefs(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadListFile(t *testing.T) {
	content := `briefs/acme.yaml
# comment
briefs/globex.yaml
   
briefs/acme.yaml
briefs/initech.json   `

	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadListFile(path)
	if err != nil {
		t.Fatalf("ReadListFile failed: %v", err)
	}

	expected := []string{"briefs/acme.yaml", "briefs/globex.yaml", "briefs/initech.json"}
	if len(entries) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(entries))
	}

	for i, e := range entries {
		if e != expected[i] {
			t.Errorf("expected entry %s at index %d, got %s", expected[i], i, e)
		}
	}
}

func TestReadListFile_NonExistent(t *testing.T) {
	_, err := ReadListFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBriefResult_GetError(t *testing.T) {
	r1 := &BriefResult{Path: "a.yaml", Error: nil}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("run failed")
	r2 := &BriefResult{Path: "a.yaml", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "briefs"), 0755); err != nil {
		t.Fatal(err)
	}
	writeBrief(t, filepath.Join(dir, "briefs"), "acme.yaml", "Acme")
	writeBrief(t, filepath.Join(dir, "briefs"), "globex.yaml", "Globex")

	list := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(list, []byte("briefs/acme.yaml\n# comment\n\nbriefs/globex.yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	processor := NewBatchProcessor(&MockRunner{}, 2)

	results, err := processor.ProcessFile(context.Background(), list)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&MockRunner{}, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
