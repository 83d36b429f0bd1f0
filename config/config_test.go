// Copyright (c) Microsoft. All rights reserved.

package config_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/ai-agents-for-beginners/go/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GITHUB_ENDPOINT", "GITHUB_TOKEN", "GITHUB_MODEL_ID",
		"AZURE_AI_PROJECT_ENDPOINT", "AZURE_AI_MODEL_DEPLOYMENT_NAME",
		"SERP_API_KEY", "SEARCH_TIMEOUT", "DEBUG", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("test", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://models.inference.ai.azure.com", cfg.GitHub.Endpoint)
	assert.Equal(t, "gpt-4o-mini", cfg.GitHub.ModelID)
	assert.Equal(t, 30*time.Second, cfg.Search.SearchTimeout)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_MODEL_ID", "gpt-4o")
	t.Setenv("AZURE_AI_PROJECT_ENDPOINT", "https://example.services.ai.azure.com/openai/v1")
	t.Setenv("AZURE_AI_MODEL_DEPLOYMENT_NAME", "gpt-4o-deploy")
	t.Setenv("SERP_API_KEY", "serp")
	t.Setenv("SEARCH_TIMEOUT", "5s")
	t.Setenv("DEBUG", "true")

	cfg, err := config.Load("test", nil)
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
	assert.Equal(t, "gpt-4o", cfg.GitHub.ModelID)
	assert.Equal(t, "https://example.services.ai.azure.com/openai/v1", cfg.Azure.ProjectEndpoint)
	assert.Equal(t, "gpt-4o-deploy", cfg.Azure.Deployment)
	assert.Equal(t, "serp", cfg.Search.SerpAPIKey)
	assert.Equal(t, 5*time.Second, cfg.Search.SearchTimeout)
	assert.True(t, cfg.Debug)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_MODEL_ID", "gpt-4o")

	cfg, err := config.Load("test", []string{"--github-model-id=phi-4"})
	require.NoError(t, err)
	assert.Equal(t, "phi-4", cfg.GitHub.ModelID)
}

func TestLoad_UnknownFlag(t *testing.T) {
	clearEnv(t)

	_, err := config.Load("test", []string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("chat", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.GitHub.Endpoint = "https://models.inference.ai.azure.com"
		cfg.GitHub.ModelID = "gpt-4o-mini"

		err := cfg.ValidateChat()
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrMissing))
		assert.Contains(t, err.Error(), "GITHUB_TOKEN")

		cfg.GitHub.Token = "ghp_test"
		assert.NoError(t, cfg.ValidateChat())
	})

	t.Run("azure", func(t *testing.T) {
		cfg := &config.Config{}
		err := cfg.ValidateAzure()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AZURE_AI_PROJECT_ENDPOINT")
		assert.Contains(t, err.Error(), "AZURE_AI_MODEL_DEPLOYMENT_NAME")

		cfg.Azure.ProjectEndpoint = "https://example"
		cfg.Azure.Deployment = "gpt-4o"
		assert.NoError(t, cfg.ValidateAzure())
	})

	t.Run("search", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Search.SearchTimeout = 30 * time.Second
		assert.ErrorIs(t, cfg.ValidateSearch(), config.ErrMissing)

		cfg.Search.SerpAPIKey = "serp"
		assert.NoError(t, cfg.ValidateSearch())
	})
}
