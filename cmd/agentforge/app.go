package main

import (
	"context"
	"fmt"
	"log/slog"

	cfnats "github.com/Strob0t/AgentForge/internal/adapter/nats"
	"github.com/Strob0t/AgentForge/internal/adapter/natskv"
	cfotel "github.com/Strob0t/AgentForge/internal/adapter/otel"
	"github.com/Strob0t/AgentForge/internal/adapter/ristretto"
	"github.com/Strob0t/AgentForge/internal/adapter/tiered"
	"github.com/Strob0t/AgentForge/internal/config"
	"github.com/Strob0t/AgentForge/internal/domain/codegen"
	"github.com/Strob0t/AgentForge/internal/domain/dialogue"
	"github.com/Strob0t/AgentForge/internal/port/cache"
	"github.com/Strob0t/AgentForge/internal/service"
)

// app holds the wired services shared by all commands.
type app struct {
	delegator *service.Delegator
	generator *service.GeneratorService
	chat      *service.ChatService
	queue     *cfnats.Queue // nil when nats.url is empty

	closers []func()
}

// newApp wires provider, caches, messaging and services from cfg.
// metrics may be nil.
func newApp(ctx context.Context, cfg *config.Config, metrics *cfotel.Metrics) (*app, error) {
	a := &app{}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	if cfg.NATS.URL != "" {
		q, err := cfnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return nil, fmt.Errorf("nats: %w", err)
		}
		a.queue = q
		a.closers = append(a.closers, func() { _ = q.Close() })
	}

	a.delegator = service.NewDelegator(gen, cfg.Delegation.Timeout)
	a.delegator.SetMetrics(metrics)
	if gen != nil && cfg.Delegation.CacheTTL > 0 {
		c, err := a.newCache(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.delegator.SetCache(c, cfg.Delegation.CacheTTL)
	}

	defaults := codegen.Options{
		Variant:  codegen.Variant(cfg.Codegen.DefaultVariant),
		Escaping: codegen.Escaping(cfg.Codegen.DefaultEscaping),
	}
	a.generator = service.NewGeneratorService(a.delegator, defaults)
	a.generator.SetMetrics(metrics)
	a.chat = service.NewChatService(a.delegator, dialogue.Default(), cfg.Chat.HistoryWindow)
	a.chat.SetMetrics(metrics)

	if a.queue != nil {
		a.generator.SetPublisher(a.queue)
		a.chat.SetPublisher(a.queue)
	}
	return a, nil
}

// newCache builds the output cache: ristretto in memory, tiered over a
// NATS KV bucket when NATS is configured.
func (a *app) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB)
	if err != nil {
		return nil, fmt.Errorf("l1 cache: %w", err)
	}
	a.closers = append(a.closers, l1.Close)

	if a.queue == nil {
		return l1, nil
	}
	l2, err := natskv.Open(ctx, a.queue.JetStream(), cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
	if err != nil {
		return nil, fmt.Errorf("l2 cache: %w", err)
	}
	slog.Info("tiered cache enabled", "bucket", cfg.Cache.L2Bucket)
	return tiered.New(l1, l2, cfg.Delegation.CacheTTL), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
