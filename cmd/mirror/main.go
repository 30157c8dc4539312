package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sonderlabs/mirror/internal/analyzer"
	"github.com/sonderlabs/mirror/internal/api"
	"github.com/sonderlabs/mirror/internal/bus"
	"github.com/sonderlabs/mirror/internal/classifier"
	"github.com/sonderlabs/mirror/internal/config"
	"github.com/sonderlabs/mirror/internal/processor"
	"github.com/sonderlabs/mirror/internal/reflection"
	"github.com/sonderlabs/mirror/internal/session"
	"github.com/sonderlabs/mirror/internal/store"
)

func main() {
	repl := flag.Bool("repl", false, "run an interactive conversation on stdin instead of serving")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	if *repl {
		// Keep the conversation readable: only warnings, on stderr.
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
		slog.SetDefault(slog.New(handler))
	}

	slog.Info("mirror starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Inference sidecar
	classifiers := classifier.NewClient(cfg.InferenceURL)
	slog.Info("classifier client ready", "url", cfg.InferenceURL)

	an := analyzer.New(classifiers, slog.Default())
	responder := reflection.New()
	sessions := session.NewManager()

	// Database (optional: conversations are memory-only without it)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			slog.Error("failed to init schema", "error", err)
			os.Exit(1)
		}
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, conversations will not survive restarts")
	}

	if *repl {
		runREPL(ctx, an, responder, db, cfg.Themes)
		return
	}

	// NATS (optional: HTTP-only without it)
	var busClient *bus.Client
	if cfg.NatsURL != "" {
		var err error
		busClient, err = bus.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer busClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without the event pipeline")
	}

	if busClient != nil {
		proc := processor.New(sessions, an, responder, busClient, db, cfg.Themes, slog.Default())
		if err := busClient.Subscribe(bus.SubjectUtteranceHeard, proc.HandleUtteranceHeard); err != nil {
			slog.Error("failed to subscribe to utterance events", "error", err)
			os.Exit(1)
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, sessions, an, responder, db, cfg.Themes, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if busClient != nil {
		if err := busClient.Publish(bus.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("mirror ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("mirror stopped")
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
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
