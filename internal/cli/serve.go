package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/brandlens/internal/pipeline"
	"github.com/ppiankov/brandlens/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept briefs over HTTP",
	Long: `Serve starts the intake server:
  POST /v1/runs               accept a webhook brief, run it in the background
  GET  /v1/runs/{session_id}  report processing, complete or failed
  GET  /healthz

Example:
  brandlens serve
  brandlens serve --addr :9090 --store airtable`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&storeBackend, "store", "", "persistence backend (none, airtable, sqlite, mongo); overrides config")
	serveCmd.Flags().IntVar(&workers, "workers", 0, "questions processed in parallel per run (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	logger.Printf("Store backend: %s", cfg.Store.Backend)
	for _, line := range keyStatus(cfg) {
		logger.Printf("  %s", line)
	}

	srv := server.New(p, cfg.Server, logger)
	return srv.ListenAndServe(ctx)
}
