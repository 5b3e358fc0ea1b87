package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	readinglog "github.com/zombar/readinglog"
	"github.com/zombar/readinglog/api"
	"github.com/zombar/readinglog/config"
	"github.com/zombar/readinglog/llm"
)

// logLevel maps the LOG_LEVEL environment variable to a slog level,
// defaulting to info.
func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Load .env before anything reads the environment; a missing file is fine
	godotenv.Load()

	// Structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("reading log service initializing", "version", "1.0.0")

	// Propagate W3C trace context on outbound fetches
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cfg := config.Load()

	// Command-line flags (override file and environment configuration)
	addr := flag.String("addr", cfg.Server.Addr, "Listen address")
	dbDriver := flag.String("db-driver", cfg.Database.Driver, "Article store driver (postgres or memory)")
	dbDSN := flag.String("db-dsn", cfg.Database.DSN, "PostgreSQL connection string")
	storagePath := flag.String("storage-path", cfg.Storage.BasePath, "Base path for HTML snapshots")
	ollamaURL := flag.String("ollama-url", cfg.LLM.OllamaBaseURL, "Ollama base URL")
	ollamaModel := flag.String("ollama-model", cfg.LLM.OllamaModel, "Ollama model for summarization")
	disableCORS := flag.Bool("disable-cors", false, "Disable CORS")
	flag.Parse()

	serverConfig := api.Config{
		Addr:           *addr,
		CORSEnabled:    cfg.Server.EnableCORS && !*disableCORS,
		DatabaseDriver: *dbDriver,
		DatabaseDSN:    *dbDSN,
		StoragePath:    *storagePath,
		LLM: llm.ProviderConfig{
			CohereAPIKey:  cfg.LLM.CohereAPIKey,
			CohereModel:   cfg.LLM.CohereModel,
			OllamaBaseURL: *ollamaURL,
			OllamaModel:   *ollamaModel,
		},
		Pipeline: readinglog.DefaultConfig(),
		Logger:   logger,
	}

	server, err := api.NewServer(serverConfig)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		logger.Info("reading log service starting",
			"addr", *addr,
			"db_driver", *dbDriver,
			"storage_path", *storagePath,
			"ollama_url", *ollamaURL,
			"ollama_model", *ollamaModel,
		)

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
