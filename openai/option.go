// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// Endpoints the programs talk to.
const (
	// GitHubModelsURL is the GitHub Models inference endpoint, authenticated
	// with a GitHub token. It is the default base URL.
	GitHubModelsURL = "https://models.inference.ai.azure.com"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
)

// Azure AI Foundry projects expose the same API under
// https://<resource>.services.ai.azure.com/openai/v1; pair that base URL with
// [WithAzureCredential] and the deployment name as the model.

type clientConfig struct {
	baseURL        string
	model          string
	httpClient     *http.Client
	credential     azcore.TokenCredential
	chatMiddleware []af.ChatMiddleware
}

// Option configures a [Client].
type Option func(*clientConfig)

// WithBaseURL sets the endpoint that "/chat/completions" is appended to.
// An empty url keeps the default.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel sets the model, or the deployment name on Foundry. An empty
// model keeps the default.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithAzureCredential authenticates with Microsoft Entra ID tokens for the
// Cognitive Services scope instead of the API key, e.g. an
// azidentity.AzureCLICredential.
func WithAzureCredential(cred azcore.TokenCredential) Option {
	return func(c *clientConfig) { c.credential = cred }
}

// WithChatMiddleware wraps non-streaming requests, first outermost.
func WithChatMiddleware(mw ...af.ChatMiddleware) Option {
	return func(c *clientConfig) { c.chatMiddleware = append(c.chatMiddleware, mw...) }
}

func newClientConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{
		baseURL:    GitHubModelsURL,
		model:      DefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
