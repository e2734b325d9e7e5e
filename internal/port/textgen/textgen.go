// Package textgen defines the port for an external text-generation capability.
package textgen

import (
	"context"
	"errors"

	"github.com/Strob0t/AgentForge/internal/domain/agent"
)

// ErrTruncated is returned by generators when the provider stopped at its
// output token limit. The partial output is discarded.
var ErrTruncated = errors.New("text generation output truncated")

// Request is one generation call: a system instruction, the user
// instruction and an optional prior conversation.
type Request struct {
	System  string
	User    string
	History []agent.ChatTurn

	// MaxTokens and Temperature override provider defaults when non-zero.
	MaxTokens   int
	Temperature float64
}

// Generator produces text for a request. The same interface serves chat
// replies and code generation.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Named is implemented by generators that can report their provider name.
type Named interface {
	Name() string
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
