// Copyright (c) Microsoft. All rights reserved.

// Command travel is an interactive travel agent that can suggest a random
// vacation destination. Every tool call is printed as it happens.
//
// Usage with GitHub Models:
//
//	export GITHUB_TOKEN=ghp_...
//	export GITHUB_MODEL_ID=gpt-4o-mini      # optional
//	go run ./samples/travel
//
// Type "exit" to quit.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
	"github.com/microsoft/ai-agents-for-beginners/go/config"
	"github.com/microsoft/ai-agents-for-beginners/go/console"
	"github.com/microsoft/ai-agents-for-beginners/go/openai"
	"github.com/microsoft/ai-agents-for-beginners/go/plugins/destination"
	"github.com/microsoft/ai-agents-for-beginners/go/telemetry"
)

//go:embed instructions.md
var instructions string

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "travel: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("travel", os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if err := cfg.ValidateChat(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "travel-agent")
	if err != nil {
		return err
	}
	defer shutdown(context.WithoutCancel(ctx))

	client := openai.New(cfg.GitHub.Token,
		openai.WithBaseURL(cfg.GitHub.Endpoint),
		openai.WithModel(cfg.GitHub.ModelID),
	)

	picker := destination.NewPicker()
	agent := af.NewAgent(client,
		af.WithName("TravelAgent"),
		af.WithInstructions(instructions),
		af.WithTools(picker.Tool()),
		af.WithFunctionMiddleware(
			af.TracingFunctionMiddleware(tracer),
			console.FunctionCallPrinter(os.Stdout),
		),
	)

	loop := console.New(agent, console.WithBlankLineAfterInput())
	// Ctrl+C at the prompt is a normal way to leave.
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
