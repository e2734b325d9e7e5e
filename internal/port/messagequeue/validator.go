package messagequeue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Unknown subjects only need valid JSON.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}

	switch subject {
	case SubjectAgentGenerated:
		var p AgentGeneratedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("schema validation failed for %s: %w", subject, err)
		}
		if p.ClassName == "" {
			return fmt.Errorf("schema validation failed for %s: %w", subject, errors.New("class_name is required"))
		}
	case SubjectChatReplied:
		var p ChatRepliedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("schema validation failed for %s: %w", subject, err)
		}
		if p.Category == "" {
			return fmt.Errorf("schema validation failed for %s: %w", subject, errors.New("category is required"))
		}
	}
	return nil
}
