package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/Strob0t/AgentForge/internal/config"
	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/logger"
	"github.com/Strob0t/AgentForge/internal/service"
)

func runChat(args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	local := fs.Bool("local", false, "never delegate to the configured provider")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *local {
		cfg.Delegation.Provider = config.ProviderNone
	}
	log, closeLog := logger.NewWithWriter(cfg.Logging, os.Stderr)
	defer closeLog.Close()
	slog.SetDefault(log)

	ctx := logger.WithSessionID(context.Background(), uuid.NewString())
	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if fs.NArg() > 0 {
		return oneShot(ctx, a.chat, strings.Join(fs.Args(), " "), os.Stdout)
	}
	return repl(ctx, a.chat, os.Stdin, os.Stdout)
}

// oneShot answers a single message given on the command line.
func oneShot(ctx context.Context, chat *service.ChatService, message string, out io.Writer) error {
	if err := service.CheckMessage(message); err != nil {
		return err
	}
	printReply(out, chat.Reply(ctx, message, nil))
	return nil
}

// repl reads one message per line, keeping a rolling history for the session.
func repl(ctx context.Context, chat *service.ChatService, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "AgentForge assistant. Describe the agent you want; an empty line or Ctrl-D quits.")

	var history []agent.ChatTurn
	br := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "> ")
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read message: %w", err)
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			break
		}
		if err := service.CheckMessage(line); err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		reply := chat.Reply(ctx, line, history)
		printReply(out, reply)
		history = agent.Window(append(history,
			agent.ChatTurn{Role: agent.RoleUser, Content: line},
			agent.ChatTurn{Role: agent.RoleAssistant, Content: reply.Reply},
		), chat.Window())
		if err != nil {
			break
		}
	}
	fmt.Fprintln(out)
	return nil
}

func printReply(w io.Writer, r service.ChatReply) {
	fmt.Fprintln(w, r.Reply)
	if s := r.Suggestion; s != nil {
		fmt.Fprintf(w, "\nSuggested fields:\n  name:          %s\n  description:   %s\n  functionality: %s\n",
			s.Name, s.Description, s.Functionality)
		fmt.Fprintf(w, "Generate with: agentforge generate --name %q --description %q --functionality %q\n",
			s.Name, s.Description, s.Functionality)
	}
}
