package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve on-demand isochrones, run outputs and metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manager, err := NewCoverageManager(ctx, CONFIG)
		if err != nil {
			return err
		}
		MANAGER = manager
		return Serve(ctx, CONFIG.Serve.Address, NewRouter(manager))
	},
}

func NewRouter(manager *CoverageManager) chi.Router {
	config := manager._GetServiceConfig()
	app := chi.NewRouter()
	app.Use(middleware.RequestID)
	app.Use(middleware.Recoverer)
	app.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.Serve.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	MapGet(app, "/health", HandleHealthRequest)
	MapPost(app, "/v1/isochrone", HandleIsochroneRequest)
	MapGet(app, "/v1/zones", HandleZoneRequest)
	app.Handle("/v1/outputs/*", http.StripPrefix("/v1/outputs/", http.FileServer(http.Dir(config.Output.Dir))))
	app.Handle("/metrics", manager.Collector().Handler())
	return app
}

func Serve(ctx context.Context, address string, handler http.Handler) error {
	server := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		slog.Info("listening", "address", address)
		errs <- server.ListenAndServe()
	}()
	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "serve")
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	slog.Info("shutting down")
	if err := server.Shutdown(shutdown); err != nil {
		return eris.Wrap(err, "shutdown")
	}
	return nil
}
