package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	cfhttp "github.com/Strob0t/AgentForge/internal/adapter/http"
	cfmcp "github.com/Strob0t/AgentForge/internal/adapter/mcp"
	cfotel "github.com/Strob0t/AgentForge/internal/adapter/otel"
	"github.com/Strob0t/AgentForge/internal/adapter/ws"
	"github.com/Strob0t/AgentForge/internal/config"
	"github.com/Strob0t/AgentForge/internal/logger"
	"github.com/Strob0t/AgentForge/internal/port/broadcast"
	"github.com/Strob0t/AgentForge/internal/port/messagequeue"
)

const version = "0.1.0"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = run()
	case "generate":
		err = runGenerate(args)
	case "chat":
		err = runChat(args)
	case "help", "--help", "-h":
		printHelp()
	case "version", "--version":
		fmt.Println("agentforge", version)
	default:
		printHelp()
		err = fmt.Errorf("unknown command: %s", cmd)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Usage: agentforge [command] [options]

Commands:
  serve      Run the HTTP, WebSocket and MCP service (default)
  generate   Generate agent worker source from flags
  chat       Ask the assistant; starts a REPL when no message is given
  version    Print the version

Examples:
  agentforge generate --name "Content Moderator" --description "Moderates posts" --functionality "Flag spam" --out worker.ts
  agentforge chat "I want a customer support bot"
`)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"provider", cfg.Delegation.Provider,
		"nats", cfg.NATS.URL != "",
		"mcp", cfg.MCP.Addr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	shutdownOTEL, err := cfotel.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTEL(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := cfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Services ---
	a, err := newApp(ctx, cfg, metrics)
	if err != nil {
		return err
	}
	defer a.Close()

	hub := ws.NewHub(a.chat, cfg.Server.MaxBodyBytes)
	defer hub.Close()

	// Forward generation events to connected chat clients, through NATS when
	// it is configured so every instance sees every event.
	if a.queue == nil {
		a.generator.SetBroadcaster(hub)
	} else {
		cancelSub, err := a.queue.Subscribe(ctx, messagequeue.SubjectAgentGenerated,
			func(ctx context.Context, _ string, data []byte) error {
				hub.BroadcastEvent(ctx, broadcast.EventAgentGenerated, json.RawMessage(data))
				return nil
			})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", messagequeue.SubjectAgentGenerated, err)
		}
		defer cancelSub()
	}

	// --- MCP ---
	if cfg.MCP.Addr != "" {
		mcpSrv := cfmcp.NewServer(cfmcp.ServerConfig{
			Addr:    cfg.MCP.Addr,
			Name:    "agentforge",
			Version: version,
			APIKey:  cfg.MCP.APIKey,
		}, cfmcp.ServerDeps{Generator: a.generator, Chat: a.chat})
		if err := mcpSrv.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mcpSrv.Stop(stopCtx); err != nil {
				slog.Warn("mcp stop", "error", err)
			}
		}()
	}

	// --- HTTP ---
	handlers := &cfhttp.Handlers{
		Generator:    a.generator,
		Chat:         a.chat,
		Provider:     a.delegator.Provider(),
		Version:      version,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RealIP)
	r.Use(cfhttp.RequestID)
	r.Use(cfhttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cfotel.HTTPMiddleware(cfg.OTEL.ServiceName))
	r.Use(cfhttp.CORS(cfg.Server.CORSOrigin))

	// WebSocket endpoint (no request timeout: sessions are long-lived)
	r.Get("/ws/chat", hub.HandleWS)

	// API routes
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.Delegation.Timeout + 10*time.Second))
		cfhttp.MountRoutes(r, handlers)
	})

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Delegation.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	slog.Info("shutting down server")

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
