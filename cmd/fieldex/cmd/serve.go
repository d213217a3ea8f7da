package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/fieldex/internal/server"
	"github.com/spf13/cobra"
)

const shutdownGrace = 10 * time.Second

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the extraction API",
	Long: `Start an HTTP server that provides REST and WebSocket endpoints for
field extraction.

The server provides the following endpoints:
  POST /extract/image               - Process uploaded images
  POST /extract/pdf                 - Process uploaded PDFs
  POST /extract/regions             - Process pre-recognized regions
  GET  /sessions/{id}               - Session state
  POST /sessions/{id}/corrections   - Apply a text correction
  GET  /schema                      - Active field schema
  GET  /health                      - Health check
  GET  /metrics                     - Prometheus metrics
  GET  /ws/extract                  - Streamed extraction over WebSocket

Examples:
  fieldex serve
  fieldex serve --port 8080
  fieldex serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()

		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		corsOrigin, _ := cmd.Flags().GetString("cors-origin")

		srv, err := server.NewServer(server.Config{
			Host:           host,
			Port:           port,
			CORSOrigin:     corsOrigin,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			Language:       cfg.Pipeline.Language,
			SchemaFile:     cfg.Pipeline.SchemaFile,
			IoUThreshold:   cfg.Pipeline.IoUThreshold,
			StreamDelayMs:  int(cfg.Pipeline.StreamDelay.Milliseconds()),
			Suggestions:    cfg.Pipeline.Suggestions,
			Engines:        configuredEngines(cfg),
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("starting server", "addr", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-stop:
			slog.Info("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "host interface to bind")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().String("cors-origin", "*", "allowed CORS origin")
}
