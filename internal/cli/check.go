package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/brandlens/internal/llm"
	"github.com/ppiankov/brandlens/internal/model"
)

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every configured provider is reachable",
	Long: `Check builds each provider slot and the reasoning extractor from the
resolved configuration and asks each backend whether it is reachable with
the configured key. Slots that fail here answer "Error: unavailable" during
a run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		failed := 0
		for _, c := range checkProviders(ctx, cfg) {
			mark := "✓"
			if !c.OK {
				mark = "✗"
				failed++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %-12s %s\n", mark, c.Slot, c.Detail)
		}
		if failed > 0 {
			return fmt.Errorf("%d provider(s) unavailable", failed)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd)
}

// providerCheck is the outcome for one slot
type providerCheck struct {
	Slot   string
	OK     bool
	Detail string
}

// checkProviders checks the four provider slots and the extractor concurrently;
// results keep slot order
func checkProviders(ctx context.Context, cfg *model.Config) []providerCheck {
	slots := make([]string, 0, len(model.Providers)+1)
	configs := make([]model.LLMConfig, 0, len(model.Providers)+1)
	for _, id := range model.Providers {
		slots = append(slots, id.DisplayName())
		configs = append(configs, cfg.Providers[id])
	}
	slots = append(slots, "Extractor")
	configs = append(configs, cfg.Extractor)

	results := make([]providerCheck, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	for i := range slots {
		g.Go(func() error {
			results[i] = checkProvider(gctx, slots[i], llm.ConfigFromModel(configs[i], cfg.HTTP))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func checkProvider(ctx context.Context, slot string, config llm.Config) providerCheck {
	provider, err := llm.NewProvider(config)
	if err != nil {
		return providerCheck{Slot: slot, Detail: err.Error()}
	}
	if provider == nil {
		return providerCheck{Slot: slot, Detail: "not configured"}
	}

	detail := provider.Name()
	if config.Model != "" {
		detail += " " + config.Model
	}
	if !provider.IsAvailable(ctx) {
		return providerCheck{Slot: slot, Detail: detail + " unreachable"}
	}
	return providerCheck{Slot: slot, OK: true, Detail: detail}
}
