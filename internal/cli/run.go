package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brandlens/internal/intake"
	"github.com/ppiankov/brandlens/internal/model"
	"github.com/ppiankov/brandlens/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	runTimeout   time.Duration
	storeBackend string
	workers      int
	noCache      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <brief>",
	Short: "Run a brief and generate a visibility report",
	Long: `Run processes one brief end to end:
- Define the brand's industry and valid competitors
- Look up the brand logo and colours
- Ask every question of ChatGPT, Claude, Gemini and Perplexity
- Score each answer and aggregate the run
- Persist raw and aggregate records to the configured store
- Write a JSON report (and optionally Markdown)

The brief is a YAML or JSON file with brand_name, key_messages, competitors
and questions. Webhook-shaped JSON (numbered "questions" object) works too.

Example:
  brandlens run brief.yaml
  brandlens run brief.yaml --json out/acme.json --md out/acme.md
  brandlens run brief.json --store sqlite --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Output flags
	runCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	runCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Run flags
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 15*time.Minute, "overall run timeout")
	runCmd.Flags().StringVar(&storeBackend, "store", "", "persistence backend (none, airtable, sqlite, mongo); overrides config")
	runCmd.Flags().IntVar(&workers, "workers", 0, "questions processed in parallel (default from config)")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the provider answer cache")
}

// applyRunFlags layers command flags over the resolved config
func applyRunFlags(cfg *model.Config) {
	if storeBackend != "" {
		cfg.Store.Backend = storeBackend
	}
	if workers > 0 {
		cfg.Concurrency.Workers = workers
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.Verbose = verbose
}

func runRun(cmd *cobra.Command, args []string) error {
	briefPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)

	brief, err := intake.LoadBrief(briefPath)
	if err != nil {
		return fmt.Errorf("load brief: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Brand:     %s\n", brief.BrandName)
		fmt.Fprintf(os.Stderr, "Run:       %s\n", brief.RunID)
		fmt.Fprintf(os.Stderr, "Questions: %d\n", len(brief.Questions))
		fmt.Fprintf(os.Stderr, "Store:     %s\n", cfg.Store.Backend)
		fmt.Fprintf(os.Stderr, "Timeout:   %v\n", runTimeout)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewFromConfig(ctx, cfg, newLogger())
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	result, err := p.Run(ctx, brief)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Processed %d questions\n", len(result.Results))
		if result.Industry != nil && result.Industry.Industry != "" {
			fmt.Fprintf(os.Stderr, "✓ Industry: %s (%d valid competitors)\n", result.Industry.Industry, len(result.Industry.ValidCompetitors))
		}
		if result.Persistence.Backend != "" {
			fmt.Fprintf(os.Stderr, "✓ Persisted to %s: %d raw records\n", result.Persistence.Backend, result.Persistence.RawWritten)
		}
	}

	if err := p.RenderReport(result, outJSON, outMD, os.Stdout, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
