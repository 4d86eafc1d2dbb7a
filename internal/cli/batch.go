package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brandlens/internal/model"
	"github.com/ppiankov/brandlens/internal/pipeline"
	"github.com/ppiankov/brandlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run multiple briefs from a list file in parallel",
	Long: `Batch runs many briefs concurrently:
- Read brief paths from the input file (one per line, # for comments)
- Run briefs in parallel with a configurable worker count
- Each run still fans out to all providers per question
- Write a JSON and Markdown report per brief

Relative brief paths resolve against the list file's directory.

Example:
  brandlens batch briefs.txt
  brandlens batch briefs.txt --concurrency 4 --output-dir ./reports
  brandlens batch briefs.txt --timeout 2h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "briefs processed in parallel (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./brandlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&storeBackend, "store", "", "persistence backend (none, airtable, sqlite, mongo); overrides config")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "questions processed in parallel per brief (default from config)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the provider answer cache")
}

// reportingRunner runs a brief and writes its reports into dir
type reportingRunner struct {
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
	dir      string
}

func (r *reportingRunner) RunBrief(ctx context.Context, brief *model.Brief) (*model.RunAggregate, error) {
	res, err := r.pipeline.Run(ctx, brief)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(r.dir, reportName(brief))
	if err := r.renderer.RenderJSON(res, base+".json"); err != nil {
		return nil, fmt.Errorf("write JSON: %w", err)
	}
	if err := r.renderer.RenderMarkdown(res, base+".md"); err != nil {
		return nil, fmt.Errorf("write Markdown: %w", err)
	}
	return &res.Aggregate, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Brandlens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d briefs x %d questions\n", cfg.Concurrency.BatchWorkers, cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Store:        %s\n", cfg.Store.Backend)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewFromConfig(ctx, cfg, newLogger())
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	runner := &reportingRunner{pipeline: p, renderer: pipeline.NewRenderer(), dir: outputDir}
	processor := worker.NewBatchProcessor(runner, cfg.Concurrency.BatchWorkers)

	fmt.Fprintf(os.Stderr, "⚙️  Running briefs...\n\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (visibility: %.1f, coverage: %.1f%%)\n",
			result.Aggregate.BrandName, result.Aggregate.VisibilityScore, result.Aggregate.BrandCoverage)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d briefs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// reportName builds a filesystem-safe report name from the brand and run ID
func reportName(brief *model.Brief) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)

	name := strings.ToLower(replacer.Replace(strings.TrimSpace(brief.BrandName)))
	if len(name) > 60 {
		name = name[:60]
	}
	if name == "" {
		name = "brief"
	}
	return name + "_" + brief.RunID
}
