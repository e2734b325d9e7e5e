package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Strob0t/AgentForge/internal/config"
	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/logger"
)

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	name := fs.String("name", "", "agent name (required)")
	description := fs.String("description", "", "one-line description (required)")
	functionality := fs.String("functionality", "", "what the agent does (required)")
	variant := fs.String("variant", "", "client variant: classic or enhanced (default from config)")
	escaping := fs.String("escaping", "", "interpolation policy: contextual or none (default from config)")
	out := fs.String("out", "", "write to this file instead of stdout")
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

	ctx := context.Background()
	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.generator.ResolveOptions(*variant, *escaping)
	if err != nil {
		return err
	}
	res, err := a.generator.Generate(ctx, agent.Spec{
		Name:          *name,
		Description:   *description,
		Functionality: *functionality,
	}, opts)
	if err != nil {
		return err
	}
	if !res.IdentifierValid {
		fmt.Fprintf(os.Stderr, "warning: class name %q is not a valid TypeScript identifier; the worker will not compile\n", res.ClassName)
	}

	if *out == "" {
		_, err = os.Stdout.WriteString(res.Code)
		return err
	}
	if err := os.WriteFile(*out, []byte(res.Code), 0o644); err != nil { //nolint:gosec // generated source is not secret
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%s, %d bytes, source %s)\ndeploy: name = %q, class = %q\n",
		*out, res.Variant, len(res.Code), res.Source, res.WorkerName, res.ClassName)
	return nil
}
