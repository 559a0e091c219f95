package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/internal/presentation/tui"
	httpAdapter "github.com/aretw0/typomata/pkg/adapters/http"
	"github.com/aretw0/typomata/pkg/codec"
	"github.com/aretw0/typomata/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the selected machine as a JSON API over HTTP.
Prometheus metrics are exposed on /metrics and the OpenAPI document on /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		quiet, _ := cmd.Flags().GetBool("quiet")
		validate, _ := cmd.Flags().GetBool("validate")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(logger))
		m, err := loadMachine(cmd, typomata.WithHooks(hooks))
		if err != nil {
			return err
		}

		typeReg, err := codec.NewRegistry(m.Types()...)
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(httpAdapter.RequestID)
		if validate {
			router, err := httpAdapter.NewRouter(cmd.Context())
			if err != nil {
				return err
			}
			r.Use(httpAdapter.ValidateRequests(router))
		}
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		(&httpAdapter.Server{Machine: m, Registry: typeReg}).Mount(r)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: r,
		}

		if !quiet && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(os.Stdout)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting typomata server", "address", srv.Addr, "machine", m.Name())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Typomata server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", cfg.Port, "Port to listen on (TYPOMATA_PORT)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	serveCmd.Flags().Bool("validate", false, "Reject requests that do not match the OpenAPI document")
}
