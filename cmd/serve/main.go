// Package main provides the pharmacy sidekick HTTP server. It exposes
// the supervision loop as a JSON API: POST /run drives one superstep
// and returns the updated conversation history.
//
// Configuration is via environment variables:
//
//	SIDEKICK_PORT      - Server port (default: 8000)
//	SIDEKICK_LOG_LEVEL - Log level: debug, info, warn, error (default: info)
//	SIDEKICK_PROVIDER  - Provider: anthropic, openai, or google (default: openai)
//	SIDEKICK_MODEL     - Model override (optional, uses provider default)
//	SIDEKICK_TIMEOUT   - Per-run timeout (default: 5m)
//	ANTHROPIC_API_KEY  - Anthropic API key
//	OPENAI_API_KEY     - OpenAI API key
//	GOOGLE_API_KEY     - Google API key
//	OPENFDA_API_KEY    - openFDA API key (optional, raises rate limits)
//
// Usage:
//
//	SIDEKICK_PROVIDER=openai go run ./cmd/serve
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/checks"
	"github.com/codypharm/pharma-sidekick/client"
	"github.com/codypharm/pharma-sidekick/fda"
	"github.com/codypharm/pharma-sidekick/loop"
	"github.com/codypharm/pharma-sidekick/store"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	setupLogging(cfg.LogLevel)

	provider, err := chatProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	var fdaOpts []fda.Option
	if cfg.FDAKey != "" {
		fdaOpts = append(fdaOpts, fda.WithAPIKey(cfg.FDAKey))
	}
	registry := checks.NewRegistry(fda.NewClient(fdaOpts...))

	sessions := store.NewSessionStore(store.NewMemoryAdapter())
	factory := func(sessionID string) *loop.Sidekick {
		return loop.NewSidekick(provider, registry,
			loop.WithSessionStore(sessions),
			loop.WithSessionID(sessionID),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/run", NewRunHandler(factory, cfg.Timeout))
	mux.Handle("/prescription", &PrescriptionHandler{})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("sidekick server starting",
		"port", cfg.Port,
		"provider", cfg.Provider,
		"checks", registry.Len(),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	slog.Info("server stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func chatProvider(cfg *Config) (ai.ChatProvider, error) {
	c := client.New(client.Config{
		APIKeys: client.APIKeys{
			Anthropic: cfg.AnthropicKey,
			OpenAI:    cfg.OpenAIKey,
			Google:    cfg.GoogleKey,
		},
		Models: client.Models{
			Anthropic: cfg.Model,
			OpenAI:    cfg.Model,
			Google:    cfg.Model,
		},
	})
	return c.ChatProvider(context.Background(), ai.Provider(cfg.Provider))
}
