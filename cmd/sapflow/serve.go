package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/sapflow/internal/certs"
	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/server"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assignment API over HTTP",
		Long: `Start an HTTP server that runs assignments in the background, streams
their decision trail as server-sent events and serves the resulting
mass-upload file.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr)")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls.enabled", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	handler := server.New(ctx, store, server.Config{
		Engine: engineConfig(cfg),
		RunTTL: cfg.RunTTL,
	})
	go handler.Runs().Janitor(ctx, cfg.RunTTL/2)

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheme := "http"
	if cfg.TLS.Enabled {
		cert, err := certs.NewFileManager(cfg.TLS.CertDir, cfg.TLS.Hosts...).GetOrCreateCertificate()
		if err != nil {
			return common.NewUserError("Could not prepare the TLS certificate", err)
		}
		httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		scheme = "https"
	}

	errorChan := make(chan error, 1)
	go func() {
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	slog.Info("🏭 Serving assignment API", "addr", cfg.ServerAddr, "scheme", scheme, "database", cfg.DatabasePath)

	select {
	case err := <-errorChan:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := handler.Runs().Wait(shutdownCtx); err != nil {
		slog.Warn("Assignment run still in progress at shutdown", "error", err)
	}
	return nil
}
