package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-wood-dashboard/internal/api"
	"go-wood-dashboard/internal/api/handler"
	"go-wood-dashboard/internal/store"
	"go-wood-dashboard/pkg/router"
	"go-wood-dashboard/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the dataset once and serve the dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	outputs := utils.NewOutputManager(cfg.Export.Dir)
	if err := outputs.EnsureOutputDirExists(); err != nil {
		return err
	}

	builder := loadBuilder(ctx)

	// Create router
	r := router.New(logger)

	// Register API routes
	api.RegisterRoutes(r, handler.New(builder, db, outputs, logger))

	// Start server
	return r.Start(ctx, cfg.Server.Addr, router.Options{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
	})
}
