package messagequeue

import "time"

// AgentGeneratedPayload is the schema for agents.generated messages.
type AgentGeneratedPayload struct {
	EventID     string    `json:"event_id"`
	ClassName   string    `json:"class_name"`
	WorkerName  string    `json:"worker_name"`
	Variant     string    `json:"variant"`
	Source      string    `json:"source"`
	Bytes       int       `json:"bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ChatRepliedPayload is the schema for agents.chat.replied messages.
type ChatRepliedPayload struct {
	EventID   string    `json:"event_id"`
	SessionID string    `json:"session_id,omitempty"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
	RepliedAt time.Time `json:"replied_at"`
}
