package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrobook/app"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           a.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			// PDF exports may take up to PDF_TIMEOUT
			WriteTimeout: cfg.PDFTimeout + 30*time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("🚀 Server starting", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed to start: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
