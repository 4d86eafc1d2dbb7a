package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brandlens/internal/cache"
	"github.com/ppiankov/brandlens/internal/model"
)

var cacheClearProvider string

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the provider answer cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached provider answers",
	Long: `Clear removes cached answers from the configured cache backend, so the
next run asks every provider again.

Example:
  brandlens cache clear
  brandlens cache clear --provider perplexity`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		provider, err := parseProvider(cacheClearProvider)
		if err != nil {
			return err
		}

		scope := "all providers"
		if provider != "" {
			scope = provider.DisplayName()
		}
		if err := clearCache(cfg.Cache, provider); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s cache (%s)\n", cfg.Cache.Backend, scope)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().StringVar(&cacheClearProvider, "provider", "", "only clear this provider's answers (chatgpt, claude, gemini, perplexity)")
}

// clearCache opens the configured backend even when caching is disabled
func clearCache(cfg model.CacheConfig, provider model.ProviderID) error {
	cfg.Enabled = true
	c, err := cache.New(cfg)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if closer, ok := c.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := c.Clear(provider); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func parseProvider(name string) (model.ProviderID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", nil
	}
	for _, p := range model.Providers {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (supported: chatgpt, claude, gemini, perplexity)", name)
}
