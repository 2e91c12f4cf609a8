/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the agency record engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load YAML config if given
  2. Initialize the document store (sqlite or memory)
  3. Wrap the store with the subscription watcher
  4. Seed demo data on an empty store
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (optional; env-only defaults otherwise)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Detach subscriptions and close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/agency.db"

  # Run with a config file
  ./server -config=./config.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ostravel/agency-engine/api"
	"github.com/ostravel/agency-engine/config"
	"github.com/ostravel/agency-engine/docstore"
	"github.com/ostravel/agency-engine/docstore/memory"
	"github.com/ostravel/agency-engine/record/views"
	"github.com/ostravel/agency-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	// Configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load config")
		}
	} else {
		cfg = config.LoadFromEnv()
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Driver = "sqlite"
		cfg.Store.Path = *dbPath
	}

	// Logging
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Store
	var base docstore.Store
	switch cfg.Store.Driver {
	case "memory":
		base = memory.New()
	default:
		s, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize database")
		}
		defer s.Close()
		base = s
	}

	watcher := docstore.NewWatcher(base)
	defer watcher.Close()

	// Demo data on first run
	if n, err := api.SeedIfEmpty(context.Background(), watcher); err != nil {
		log.WithError(err).Warn("Failed to seed demo data")
	} else if n > 0 {
		log.WithField("documents", n).Info("Seeded demo data")
	}

	// Handler and router
	handler := api.NewHandler(views.New(watcher, log))
	handler.ExportMaxRows = cfg.Export.MaxRows
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port":  cfg.Server.Port,
			"store": cfg.Store.Driver,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
