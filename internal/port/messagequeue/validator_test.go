package messagequeue

import (
	"strings"
	"testing"
)

func TestValidateAgentGenerated(t *testing.T) {
	data := []byte(`{"event_id":"e1","class_name":"BotAgent","worker_name":"bot","variant":"classic","source":"local","bytes":1200,"generated_at":"2025-01-01T00:00:00Z"}`)
	if err := Validate(SubjectAgentGenerated, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateChatReplied(t *testing.T) {
	data := []byte(`{"event_id":"e1","category":"customer_support","source":"external","replied_at":"2025-01-01T00:00:00Z"}`)
	if err := Validate(SubjectChatReplied, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingRequiredField(t *testing.T) {
	tests := []struct {
		subject string
		data    string
		field   string
	}{
		{SubjectAgentGenerated, `{"worker_name":"bot"}`, "class_name"},
		{SubjectChatReplied, `{"source":"local"}`, "category"},
	}
	for _, tt := range tests {
		err := Validate(tt.subject, []byte(tt.data))
		if err == nil {
			t.Fatalf("%s: expected error", tt.subject)
		}
		if !strings.Contains(err.Error(), tt.field) {
			t.Fatalf("%s: error should name %s: %v", tt.subject, tt.field, err)
		}
	}
}

func TestValidateWrongFieldType(t *testing.T) {
	data := []byte(`{"class_name":"BotAgent","bytes":"many"}`)
	err := Validate(SubjectAgentGenerated, data)
	if err == nil {
		t.Fatal("expected error for wrong field type")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestValidateUnknownSubject(t *testing.T) {
	if err := Validate("agents.unknown", []byte(`{"foo":"bar"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	err := Validate(SubjectChatReplied, []byte(`{not valid json`))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("unexpected error message: %v", err)
	}
}
