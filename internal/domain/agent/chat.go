package agent

import (
	"fmt"

	"github.com/Strob0t/AgentForge/internal/domain"
)

// Role is the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single ephemeral chat message.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DefaultHistoryWindow is how many turns are kept when delegating a conversation.
const DefaultHistoryWindow = 10

// Window returns the last n turns. n <= 0 yields nil.
// The result has its own backing array so callers may append to it freely.
func Window(turns []ChatTurn, n int) []ChatTurn {
	if n <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]ChatTurn, len(turns))
	copy(out, turns)
	return out
}

// ValidateTurns rejects turns with an unknown role.
func ValidateTurns(turns []ChatTurn) error {
	for i, t := range turns {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			return fmt.Errorf("%w: history[%d]: unknown role %q", domain.ErrValidation, i, t.Role)
		}
	}
	return nil
}
