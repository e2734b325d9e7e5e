package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Strob0t/AgentForge/internal/domain"
	"github.com/Strob0t/AgentForge/internal/service"
)

func TestREPL(t *testing.T) {
	chat := service.NewChatService(service.NewDelegator(nil, time.Second), nil, 10)
	in := strings.NewReader("I want a customer support bot\nasdfghjkl\n\nnever read\n")
	var out bytes.Buffer

	if err := repl(context.Background(), chat, in, &out); err != nil {
		t.Fatalf("repl: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"A customer support agent",
		"name:          Customer Support Bot",
		`agentforge generate --name "Customer Support Bot"`,
		`I understand you want to create an agent that: "asdfghjkl"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(got, "never read") {
		t.Error("empty line must end the session")
	}
}

func TestREPLLongLineKeepsSession(t *testing.T) {
	chat := service.NewChatService(service.NewDelegator(nil, time.Second), nil, 10)
	long := strings.Repeat("ab", service.MaxMessageLen*4)
	in := strings.NewReader(long + "\nI want a customer support bot")
	var out bytes.Buffer

	if err := repl(context.Background(), chat, in, &out); err != nil {
		t.Fatalf("repl: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "message too long") {
		t.Error("oversized line must be reported")
	}
	if !strings.Contains(got, "name:          Customer Support Bot") {
		t.Error("session must continue after an oversized line, including a final line without newline")
	}
}

func TestOneShot(t *testing.T) {
	chat := service.NewChatService(service.NewDelegator(nil, time.Second), nil, 10)

	var out bytes.Buffer
	if err := oneShot(context.Background(), chat, "I want a customer support bot", &out); err != nil {
		t.Fatalf("oneShot: %v", err)
	}
	if !strings.Contains(out.String(), "Customer Support Bot") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	err := oneShot(context.Background(), chat, strings.Repeat("x", service.MaxMessageLen+1), &out)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("rejected message produced output %q", out.String())
	}
}

func TestPrintReplyWithoutSuggestion(t *testing.T) {
	var out bytes.Buffer
	printReply(&out, service.ChatReply{Reply: "hello"})
	if out.String() != "hello\n" {
		t.Fatalf("output = %q", out.String())
	}
}
