package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/brandlens/internal/intake"
	"github.com/ppiankov/brandlens/internal/model"
)

// Runner runs one brief to completion and returns its aggregate
type Runner interface {
	RunBrief(ctx context.Context, brief *model.Brief) (*model.RunAggregate, error)
}

// BriefJob loads one brief file and runs it
type BriefJob struct {
	Index  int
	Path   string
	Runner Runner
}

// Execute executes the brief job
func (j *BriefJob) Execute(ctx context.Context) Result {
	res := &BriefResult{Index: j.Index, Path: j.Path}

	brief, err := intake.LoadBrief(j.Path)
	if err != nil {
		res.Error = err
		return res
	}
	res.Brief = brief

	agg, err := j.Runner.RunBrief(ctx, brief)
	if err != nil {
		res.Error = err
		return res
	}
	res.Aggregate = agg
	return res
}

// BriefResult represents the outcome of one brief in a batch
type BriefResult struct {
	Index     int
	Path      string
	Brief     *model.Brief
	Aggregate *model.RunAggregate
	Error     error
}

// GetError returns the error from the brief result
func (r *BriefResult) GetError() error {
	return r.Error
}

// BatchProcessor runs multiple briefs concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessBriefs runs every brief file and returns results in input order.
// Briefs never started because ctx ended are reported with the context error.
func (b *BatchProcessor) ProcessBriefs(ctx context.Context, paths []string) []*BriefResult {
	if len(paths) == 0 {
		return []*BriefResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &BriefJob{Index: i, Path: path, Runner: b.runner}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	results := pool.Run(jobs)

	out := make([]*BriefResult, len(paths))
	for _, r := range results {
		br := r.(*BriefResult)
		out[br.Index] = br
	}
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("brief not processed")
			}
			out[i] = &BriefResult{Index: i, Path: paths[i], Error: err}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads brief paths from a list file and runs them concurrently.
// Relative paths resolve against the list file's directory.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*BriefResult, error) {
	entries, err := ReadListFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read brief list: %w", err)
	}

	base := filepath.Dir(listPath)
	paths := make([]string, len(entries))
	for i, e := range entries {
		if filepath.IsAbs(e) {
			paths[i] = e
		} else {
			paths[i] = filepath.Join(base, e)
		}
	}

	return b.ProcessBriefs(ctx, paths), nil
}

// ReadListFile reads entries from a file (one per line), skipping blanks,
// comments and duplicates
func ReadListFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			entries = append(entries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return entries, nil
}
