// Copyright (c) Microsoft. All rights reserved.

// Package openai provides a [agentframework.ChatClient] for OpenAI-compatible
// Chat Completions endpoints, GitHub Models and Azure AI Foundry.
//
// GitHub Models, the default endpoint:
//
//	client := openai.New(os.Getenv("GITHUB_TOKEN"))
//
// Azure AI Foundry with the Azure CLI login:
//
//	cred, _ := azidentity.NewAzureCLICredential(nil)
//	client := openai.New("",
//	    openai.WithBaseURL("https://<resource>.services.ai.azure.com/openai/v1"),
//	    openai.WithModel("<deployment>"),
//	    openai.WithAzureCredential(cred),
//	)
//
// Replies can be complete or streamed. In a stream, tool-call fragments are
// joined before they are emitted, so every
// [agentframework.FunctionCallContent] a consumer sees is whole.
//
// # Configuration
//
//   - [WithModel]: model or deployment name (default [DefaultModel])
//   - [WithBaseURL]: endpoint (default [GitHubModelsURL])
//   - [WithAzureCredential]: Microsoft Entra ID token auth (e.g. Azure CLI)
//   - [WithHTTPClient]: provide a custom http.Client
//   - [WithChatMiddleware]: wrap non-streaming requests
//
// Tests can point [WithBaseURL] at an httptest.Server.
package openai
