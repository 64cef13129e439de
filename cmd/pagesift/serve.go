package main

import (
	"errors"
	"net/http"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagesift/pagesift/internal/metrics"
	"github.com/pagesift/pagesift/internal/server"
	"github.com/pagesift/pagesift/internal/storage/sqlite"
	"github.com/pagesift/pagesift/raster"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	zlog := newLogger()

	store, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	proc := buildProcessor(cfg, zlog)
	if _, err := exec.LookPath(cfg.Raster.Binary); err != nil {
		zlog.Warn().Str("binary", cfg.Raster.Binary).
			Msg("rasterizer not found; PDF endpoints will fail\n" + raster.InstallInstructions())
	}

	srv := server.New(cfg, proc, store, metrics.New(), zlog)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
