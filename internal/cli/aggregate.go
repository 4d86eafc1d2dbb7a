package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brandlens/internal/pipeline"
)

var (
	aggOutJSON string
	aggOutMD   string
)

// aggregateCmd represents the aggregate command
var aggregateCmd = &cobra.Command{
	Use:   "aggregate <report.json>",
	Short: "Re-aggregate a saved report with the current policy",
	Long: `Aggregate recomputes the run aggregate from the question results stored in
a JSON report, using the policy thresholds from the current configuration.
No provider is called.

Example:
  brandlens aggregate report.json
  brandlens aggregate report.json --json report-v2.json --md report-v2.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().StringVar(&aggOutJSON, "json", "", "write the updated JSON report here (optional)")
	aggregateCmd.Flags().StringVar(&aggOutMD, "md", "", "output Markdown path (optional)")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := pipeline.LoadRunResult(args[0])
	if err != nil {
		return err
	}
	if res.Brief.BrandName == "" || len(res.Results) == 0 {
		return fmt.Errorf("%s holds no question results", args[0])
	}

	res.Aggregate = pipeline.Reaggregate(res, cfg.Policy)

	renderer := pipeline.NewRenderer()
	if aggOutJSON != "" {
		if err := renderer.RenderJSON(res, aggOutJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if aggOutMD != "" {
		if err := renderer.RenderMarkdown(res, aggOutMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	renderer.RenderSummary(os.Stdout, res)
	return nil
}
