package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/server"
)

var (
	// Serve flags
	host string
	port int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the match and annotate operations over HTTP",
	Long: `Start the HTTP API:

  POST /api/v1/match       match two spectra given as m/z and intensity arrays
  POST /api/v1/annotate    annotate a spectrum with the fragments of a peptide
  GET  /api/v1/ion-types   list the fragment ion types
  GET  /health             liveness check

Request defaults (tolerance, strategy, series, charges) come from the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = host
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}

		srv, err := server.NewServer(cfg, logger)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigChan:
		case err := <-errCh:
			return err
		}

		logger.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "localhost", "Listen host (overrides config)")
	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Listen port (overrides config)")
}
