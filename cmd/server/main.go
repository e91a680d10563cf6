/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payFriendly server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env supported)
  2. Parse command-line flags (flags win over environment)
  3. Initialize SQLite store
  4. Create API handler and reminder scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: PORT env or 8080)
  -db      SQLite database path (default: SQLITE_DB_PATH env)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the reminder scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/payfriendly.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Reminder scheduler
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuelCebreiro/payFriendly/api"
	"github.com/ManuelCebreiro/payFriendly/config"
	"github.com/ManuelCebreiro/payFriendly/logging"
	"github.com/ManuelCebreiro/payFriendly/store/sqlite"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	// Flags override the environment.
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.SQLiteDBPath = *dbPath

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize store
	db, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("failed to initialize database", "path", cfg.SQLiteDBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize handler and scheduler
	handler := api.NewHandler(db)

	scheduler := api.NewReminderScheduler(db, handler)
	scheduler.CheckInterval = cfg.ReminderInterval
	scheduler.Enabled = cfg.ReminderEnabled
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "addr", "http://localhost:"+cfg.Port, "db", cfg.SQLiteDBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
