// Copyright (c) Microsoft. All rights reserved.

// Command kernel is the travel agent with a destination picker that never
// suggests the same place twice in a row. Tool activity is shown from the
// response stream, and the conversation thread is deleted on exit.
//
//	export GITHUB_TOKEN=ghp_...
//	go run ./samples/kernel
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
		fmt.Fprintf(os.Stderr, "kernel: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("kernel", os.Args[1:])
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

	tracer, shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "travel-agent-kernel")
	if err != nil {
		return err
	}
	defer shutdown(context.WithoutCancel(ctx))

	client := openai.New(cfg.GitHub.Token,
		openai.WithBaseURL(cfg.GitHub.Endpoint),
		openai.WithModel(cfg.GitHub.ModelID),
	)

	picker := destination.NewPicker(destination.WithAvoidRepeat())
	agent := af.NewAgent(client,
		af.WithName("TravelAgent"),
		af.WithInstructions(instructions),
		af.WithTools(picker.Tool()),
		af.WithFunctionMiddleware(af.TracingFunctionMiddleware(tracer)),
	)

	loop := console.New(agent,
		console.WithSpeaker(agent.Name()),
		console.WithUpdateHook(console.IntermediatePrinter(os.Stdout)),
	)
	// Ctrl+C at the prompt is a normal way to leave.
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
