package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	cfotel "github.com/Strob0t/AgentForge/internal/adapter/otel"
	"github.com/Strob0t/AgentForge/internal/port/cache"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
	"github.com/Strob0t/AgentForge/internal/resilience"
)

// Source reports which path produced an output.
type Source string

const (
	SourceLocal    Source = "local"
	SourceExternal Source = "external"
)

// defaultDelegationTimeout bounds an external call when none is configured.
const defaultDelegationTimeout = 30 * time.Second

var (
	errNoGenerator = errors.New("no text generator configured")
	errMalformed   = errors.New("malformed text generation output")
)

// Acceptor reports whether external output is usable as-is.
type Acceptor func(out string) bool

func nonBlank(out string) bool { return strings.TrimSpace(out) != "" }

// Delegate asks gen once and returns its output verbatim. When gen is nil,
// fails, or returns blank output, fallback's result is returned instead with
// SourceLocal. Errors are logged, never returned.
func Delegate(ctx context.Context, gen textgen.Generator, req textgen.Request, fallback func() string) (string, Source) {
	return delegate(ctx, gen, req, nonBlank, fallback)
}

func delegate(ctx context.Context, gen textgen.Generator, req textgen.Request, accept Acceptor, fallback func() string) (string, Source) {
	if gen == nil {
		return fallback(), SourceLocal
	}
	out, err := gen.Generate(ctx, req)
	if err == nil && !accept(out) {
		err = errMalformed
	}
	if err != nil {
		slog.WarnContext(ctx, "text generation failed, using local fallback",
			"reason", fallbackReason(err), "error", err)
		return fallback(), SourceLocal
	}
	return out, SourceExternal
}

// fallbackReason classifies a delegation failure for logs and metrics.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, errMalformed):
		return "malformed"
	case errors.Is(err, textgen.ErrTruncated):
		return "truncated"
	default:
		return "error"
	}
}

// Delegator wraps a provider with a timeout, request collapsing, an output
// cache and metrics. Every external call made by the services goes through it.
type Delegator struct {
	gen      textgen.Generator
	provider string
	timeout  time.Duration

	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *cfotel.Metrics
	group    singleflight.Group
}

// NewDelegator creates a Delegator. A nil gen disables delegation.
func NewDelegator(gen textgen.Generator, timeout time.Duration) *Delegator {
	if timeout <= 0 {
		timeout = defaultDelegationTimeout
	}
	d := &Delegator{gen: gen, timeout: timeout, provider: "none"}
	if gen != nil {
		d.provider = "external"
		if n, ok := gen.(textgen.Named); ok {
			d.provider = n.Name()
		}
	}
	return d
}

// SetCache attaches a cache for successful external outputs.
func (d *Delegator) SetCache(c cache.Cache, ttl time.Duration) {
	d.cache = c
	d.cacheTTL = ttl
}

// SetMetrics attaches metric instruments.
func (d *Delegator) SetMetrics(m *cfotel.Metrics) {
	d.metrics = m
}

// Provider returns the configured provider name, "none" when disabled.
func (d *Delegator) Provider() string {
	if d == nil {
		return "none"
	}
	return d.provider
}

// Enabled reports whether an external provider is configured.
func (d *Delegator) Enabled() bool {
	return d != nil && d.gen != nil
}

// Run delegates req for the given use case, falling back like Delegate.
func (d *Delegator) Run(ctx context.Context, useCase string, req textgen.Request, accept Acceptor, fallback func() string) (string, Source) {
	if !d.Enabled() {
		return fallback(), SourceLocal
	}
	return delegate(ctx, d.generator(useCase, accept), req, accept, fallback)
}

// generator returns the provider decorated with cache lookup and
// singleflight. Identical concurrent requests share one external call, which
// runs detached from any single caller's cancellation.
func (d *Delegator) generator(useCase string, accept Acceptor) textgen.Func {
	return func(ctx context.Context, req textgen.Request) (string, error) {
		key := requestKey(useCase, d.provider, req)

		if d.cache != nil {
			data, ok, err := d.cache.Get(ctx, key)
			switch {
			case err != nil:
				slog.WarnContext(ctx, "delegation cache get failed", "use_case", useCase, "error", err)
			case ok && accept(string(data)):
				return string(data), nil
			}
		}

		ch := d.group.DoChan(key, func() (any, error) {
			return d.call(context.WithoutCancel(ctx), useCase, key, req, accept)
		})
		select {
		case res := <-ch:
			if res.Err != nil {
				return "", res.Err
			}
			return res.Val.(string), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (d *Delegator) call(ctx context.Context, useCase, key string, req textgen.Request, accept Acceptor) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ctx, span := cfotel.StartDelegationSpan(ctx, useCase, d.provider)
	defer span.End()

	start := time.Now()
	out, err := d.gen.Generate(ctx, req)
	if err == nil && !accept(out) {
		err = errMalformed
	}

	reason := ""
	if err != nil {
		reason = fallbackReason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
	}
	d.metrics.RecordDelegation(ctx, useCase, time.Since(start), reason)
	if err != nil {
		return "", err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, []byte(out), d.cacheTTL); err != nil {
			slog.WarnContext(ctx, "delegation cache set failed", "use_case", useCase, "error", err)
		}
	}
	return out, nil
}

// requestKey derives the cache and singleflight key for a request.
func requestKey(useCase, provider string, req textgen.Request) string {
	parts := make([]string, 0, 4+2*len(req.History))
	parts = append(parts, provider, req.System, req.User)
	for _, t := range req.History {
		parts = append(parts, string(t.Role), t.Content)
	}
	return cache.Key("delegation."+useCase, parts...)
}
