package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	cfotel "github.com/Strob0t/AgentForge/internal/adapter/otel"
	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/domain/codegen"
	"github.com/Strob0t/AgentForge/internal/port/broadcast"
	"github.com/Strob0t/AgentForge/internal/port/messagequeue"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
)

const useCaseCodegen = "codegen"

const codegenSystemPrompt = `You are an expert TypeScript developer building Cloudflare Workers on the Agents SDK.
Write one complete TypeScript source file for the requested agent and return only that file,
with no markdown fences and no commentary.
The file must export a class with exactly the requested class name that extends Agent,
serve chat over HTTP (POST /chat) and WebSocket, expose GET /state and GET /health,
serve an embedded HTML chat client as the default route, call the OpenAI chat completions API
with the last 10 conversation turns, and end with the wrangler.toml deployment notes in a block comment.`

// GeneratedAgent is the result of one synthesis.
type GeneratedAgent struct {
	Code       string          `json:"code"`
	ClassName  string          `json:"class_name"`
	WorkerName string          `json:"worker_name"`
	Variant    codegen.Variant `json:"variant"`
	Source     Source          `json:"source"`

	// IdentifierValid is false when the class name is not a valid
	// TypeScript identifier and the document will not compile.
	IdentifierValid bool `json:"identifier_valid"`
}

// GeneratorService turns agent specs into worker source, delegating to an
// external provider when one is configured.
type GeneratorService struct {
	delegator *Delegator
	defaults  codegen.Options
	events    messagequeue.Publisher
	hub       broadcast.Broadcaster
	metrics   *cfotel.Metrics
	now       func() time.Time
}

// NewGeneratorService creates a GeneratorService. defaults fills options the
// caller leaves empty.
func NewGeneratorService(d *Delegator, defaults codegen.Options) *GeneratorService {
	return &GeneratorService{delegator: d, defaults: defaults, now: time.Now}
}

// SetPublisher attaches an event publisher for agents.generated events.
func (s *GeneratorService) SetPublisher(p messagequeue.Publisher) {
	s.events = p
}

// SetBroadcaster attaches a broadcaster notified after every synthesis.
// Use it when no event publisher relays agents.generated to clients.
func (s *GeneratorService) SetBroadcaster(b broadcast.Broadcaster) {
	s.hub = b
}

// SetMetrics attaches metric instruments.
func (s *GeneratorService) SetMetrics(m *cfotel.Metrics) {
	s.metrics = m
}

// ResolveOptions parses variant and escaping names, using the service
// defaults for empty values.
func (s *GeneratorService) ResolveOptions(variant, escaping string) (codegen.Options, error) {
	opts := s.defaults
	if variant != "" {
		v, err := codegen.ParseVariant(variant)
		if err != nil {
			return codegen.Options{}, err
		}
		opts.Variant = v
	}
	if escaping != "" {
		e, err := codegen.ParseEscaping(escaping)
		if err != nil {
			return codegen.Options{}, err
		}
		opts.Escaping = e
	}
	if opts.Variant == "" {
		opts.Variant = codegen.VariantClassic
	}
	if opts.Escaping == "" {
		opts.Escaping = codegen.EscapeContextual
	}
	return opts, nil
}

// Preview validates spec and renders it locally, never delegating.
func (s *GeneratorService) Preview(spec agent.Spec, opts codegen.Options) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	return codegen.Synthesize(spec.Normalize(), opts)
}

// Generate validates spec and produces the worker source. External output is
// used verbatim when it is non-blank and declares the expected class name;
// otherwise the local template result is returned.
func (s *GeneratorService) Generate(ctx context.Context, spec agent.Spec, opts codegen.Options) (*GeneratedAgent, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec = spec.Normalize()
	if opts.Variant == "" {
		opts.Variant = codegen.VariantClassic
	}

	className := spec.ClassName()
	validID := spec.IdentifierIsValid()
	if !validID {
		slog.WarnContext(ctx, "agent name does not yield a valid identifier", "class_name", className)
	}
	ctx, span := cfotel.StartSynthesizeSpan(ctx, className, string(opts.Variant))
	defer span.End()

	local, err := codegen.Synthesize(spec, opts)
	if err != nil {
		return nil, fmt.Errorf("synthesize %s: %w", className, err)
	}

	accept := func(out string) bool {
		return nonBlank(out) && strings.Contains(out, className)
	}
	code, src := s.delegator.Run(ctx, useCaseCodegen, codegenRequest(&spec, opts.Variant), accept,
		func() string { return local })

	span.SetAttributes(attribute.String("codegen.source", string(src)))
	s.metrics.RecordSynthesis(ctx, string(opts.Variant), string(src))

	res := &GeneratedAgent{
		Code:       code,
		ClassName:  className,
		WorkerName: spec.WorkerName(),
		Variant:    opts.Variant,
		Source:     src,

		IdentifierValid: validID,
	}
	ev := messagequeue.AgentGeneratedPayload{
		EventID:     uuid.NewString(),
		ClassName:   res.ClassName,
		WorkerName:  res.WorkerName,
		Variant:     string(res.Variant),
		Source:      string(res.Source),
		Bytes:       len(res.Code),
		GeneratedAt: s.now().UTC(),
	}
	publishEvent(ctx, s.events, messagequeue.SubjectAgentGenerated, ev)
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, broadcast.EventAgentGenerated, ev)
	}
	return res, nil
}

// codegenRequest renders spec as a structured prompt.
func codegenRequest(spec *agent.Spec, variant codegen.Variant) textgen.Request {
	var b strings.Builder
	b.WriteString("Generate the agent worker for this specification.\n\n")
	fmt.Fprintf(&b, "Class name: %s\n", spec.ClassName())
	fmt.Fprintf(&b, "Worker name: %s\n", spec.WorkerName())
	fmt.Fprintf(&b, "Client variant: %s\n", variant)
	fmt.Fprintf(&b, "Name: %s\n", spec.Name)
	fmt.Fprintf(&b, "Description: %s\n", spec.Description)
	fmt.Fprintf(&b, "Functionality:\n%s\n", spec.Functionality)
	return textgen.Request{System: codegenSystemPrompt, User: b.String()}
}
