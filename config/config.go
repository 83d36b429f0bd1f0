// Copyright (c) Microsoft. All rights reserved.

// Package config builds the settings the sample programs share. Values come
// from command-line flags, the process environment and an optional .env
// file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// ErrMissing is returned by the Validate methods when a required setting is
// absent.
var ErrMissing = errors.New("missing configuration")

// Config is built once at startup and passed down explicitly.
type Config struct {
	GitHub `embed:"" help:"GitHub Models configuration"`
	Azure  `embed:"" help:"Azure AI Foundry configuration"`
	Search `embed:"" help:"SerpAPI configuration"`

	Debug        bool   `name:"debug" env:"DEBUG" help:"Enable debug logging"`
	OTLPEndpoint string `name:"otlp-endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" help:"OTLP/HTTP collector URL; tracing is off when empty"`
}

// GitHub holds the settings for the GitHub Models inference endpoint.
type GitHub struct {
	Endpoint string `name:"github-endpoint" env:"GITHUB_ENDPOINT" default:"https://models.inference.ai.azure.com" help:"OpenAI-compatible chat endpoint"`
	Token    string `name:"github-token" env:"GITHUB_TOKEN" help:"GitHub personal access token"`
	ModelID  string `name:"github-model-id" env:"GITHUB_MODEL_ID" default:"gpt-4o-mini" help:"Chat model"`
}

// Azure holds the settings for an Azure AI Foundry project.
type Azure struct {
	ProjectEndpoint string `name:"azure-project-endpoint" env:"AZURE_AI_PROJECT_ENDPOINT" help:"OpenAI-compatible endpoint of the Foundry project"`
	Deployment      string `name:"azure-deployment" env:"AZURE_AI_MODEL_DEPLOYMENT_NAME" help:"Model deployment name"`
}

// Search holds the settings for the booking search API.
type Search struct {
	SerpAPIKey    string        `name:"serp-api-key" env:"SERP_API_KEY" help:"SerpAPI key"`
	SearchTimeout time.Duration `name:"search-timeout" env:"SEARCH_TIMEOUT" default:"30s" help:"Per-request timeout for search calls"`
}

// Load reads .env (if present) and parses args against the environment.
// name is used in usage and error output.
func Load(name string, args []string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	var cfg Config
	parser, err := kong.New(&cfg,
		kong.Name(name),
		kong.Description("AI agents travel sample"),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, fmt.Errorf("build parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return &cfg, nil
}

// ValidateChat checks the settings needed to talk to GitHub Models.
func (c *Config) ValidateChat() error {
	var errs []error
	if c.GitHub.Token == "" {
		errs = append(errs, fmt.Errorf("%w: GITHUB_TOKEN", ErrMissing))
	}
	if c.GitHub.Endpoint == "" {
		errs = append(errs, fmt.Errorf("%w: GITHUB_ENDPOINT", ErrMissing))
	}
	if c.GitHub.ModelID == "" {
		errs = append(errs, fmt.Errorf("%w: GITHUB_MODEL_ID", ErrMissing))
	}
	return errors.Join(errs...)
}

// ValidateAzure checks the settings needed to talk to an Azure AI Foundry
// project.
func (c *Config) ValidateAzure() error {
	var errs []error
	if c.Azure.ProjectEndpoint == "" {
		errs = append(errs, fmt.Errorf("%w: AZURE_AI_PROJECT_ENDPOINT", ErrMissing))
	}
	if c.Azure.Deployment == "" {
		errs = append(errs, fmt.Errorf("%w: AZURE_AI_MODEL_DEPLOYMENT_NAME", ErrMissing))
	}
	return errors.Join(errs...)
}

// ValidateSearch checks the settings needed by the booking tools.
func (c *Config) ValidateSearch() error {
	if c.Search.SerpAPIKey == "" {
		return fmt.Errorf("%w: SERP_API_KEY", ErrMissing)
	}
	if c.Search.SearchTimeout <= 0 {
		return fmt.Errorf("%w: SEARCH_TIMEOUT must be positive", ErrMissing)
	}
	return nil
}
