// Copyright (c) Microsoft. All rights reserved.

// Command booking runs a booking agent over a fixed list of requests. The
// agent searches hotels and flights through SerpAPI.
//
// Usage with Azure AI Foundry (signed in with `az login`):
//
//	export AZURE_AI_PROJECT_ENDPOINT=https://<resource>.services.ai.azure.com/openai/v1
//	export AZURE_AI_MODEL_DEPLOYMENT_NAME=gpt-4o
//	export SERP_API_KEY=...
//	go run ./samples/booking
//
// When the Azure settings are absent, GITHUB_TOKEN is used with GitHub
// Models instead.
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

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
	"github.com/microsoft/ai-agents-for-beginners/go/config"
	"github.com/microsoft/ai-agents-for-beginners/go/console"
	"github.com/microsoft/ai-agents-for-beginners/go/openai"
	"github.com/microsoft/ai-agents-for-beginners/go/plugins/booking"
	"github.com/microsoft/ai-agents-for-beginners/go/telemetry"
)

const agentName = "BookingAgent"

//go:embed instructions.md
var instructions string

var userInputs = []string{
	"Help me book flight tickets and hotel for the following trip London Heathrow LHR Dec 20th 2025 to New York JFK returning Dec 27th 2025 flying economy with British Airways only. I want a stay in a Hilton hotel in New York please provide costs for the flight and hotel",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "booking: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("booking", os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if err := cfg.ValidateSearch(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "booking-agent")
	if err != nil {
		return err
	}
	defer shutdown(context.WithoutCancel(ctx))

	client, err := newChatClient(cfg)
	if err != nil {
		return err
	}

	search := booking.New(cfg.Search.SerpAPIKey, booking.WithTimeout(cfg.Search.SearchTimeout))
	agent := af.NewAgent(client,
		af.WithName(agentName),
		af.WithInstructions(instructions),
		af.WithTools(search.Tools()...),
		af.WithAgentMiddleware(af.LoggingMiddleware(slog.Default())),
		af.WithFunctionMiddleware(af.TracingFunctionMiddleware(tracer)),
	)

	return console.RunScript(ctx, agent, agentName, userInputs, os.Stdout)
}

// newChatClient prefers the Azure AI Foundry project, authenticating with
// the Azure CLI credential, and falls back to GitHub Models.
func newChatClient(cfg *config.Config) (*openai.Client, error) {
	azErr := cfg.ValidateAzure()
	if azErr == nil {
		cred, err := azidentity.NewAzureCLICredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azure cli credential: %w", err)
		}
		slog.Debug("using Azure AI Foundry", "endpoint", cfg.Azure.ProjectEndpoint)
		return openai.New("",
			openai.WithBaseURL(cfg.Azure.ProjectEndpoint),
			openai.WithModel(cfg.Azure.Deployment),
			openai.WithAzureCredential(cred),
		), nil
	}

	if err := cfg.ValidateChat(); err != nil {
		return nil, fmt.Errorf("no chat backend configured: %w", errors.Join(azErr, err))
	}
	return openai.New(cfg.GitHub.Token,
		openai.WithBaseURL(cfg.GitHub.Endpoint),
		openai.WithModel(cfg.GitHub.ModelID),
	), nil
}
