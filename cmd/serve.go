package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcaldbick/RAM/internal/db/bunx"
	"github.com/mcaldbick/RAM/internal/permissions"
	"github.com/mcaldbick/RAM/internal/repository"
	"github.com/mcaldbick/RAM/internal/server"
	"github.com/mcaldbick/RAM/internal/services/iam"
	"github.com/mcaldbick/RAM/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RAM API server",
	Long:  `Starts the HTTP server exposing the relationship and identity REST endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		// Telemetry is a no-op unless an OTLP endpoint is configured.
		otelShutdown, err := telemetry.Init(cmd.Context(), cfg.Observability)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(ctx); err != nil {
				log.Printf("Warning: telemetry shutdown: %v", err)
			}
		}()

		metrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("failed to create server metrics: %w", err)
		}

		// Initialize repositories
		identityRepo := repository.NewBunIdentityRepository(db)
		relationshipRepo := repository.NewBunRelationshipRepository(db)
		roleRepo := repository.NewBunRoleRepository(db)

		// Initialize identity resolution and permission enforcement
		resolver, err := iam.NewIdentityResolver(identityRepo, cfg.IdentityCacheSize)
		if err != nil {
			return fmt.Errorf("failed to create identity resolver: %w", err)
		}
		registry := permissions.DefaultRegistry()

		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"status":"ok"}`)
		}

		r := server.NewRouter(server.RouterOptions{
			Resolver:      resolver,
			Relationships: relationshipRepo,
			Roles:         roleRepo,
			Registry:      registry,
			Metrics:       metrics,
			HealthHandler: healthHandler,
		})

		// h2c lets the gateway speak HTTP/2 cleartext to us
		h2cHandler := h2c.NewHandler(r, &http2.Server{})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      h2cHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Wait for interrupt signal
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
