// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/tidwall/gjson"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

const cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

// transport sends one JSON request and returns a successful response, whose
// body the caller closes. Error statuses come back as *af.ServiceError.
type transport interface {
	do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

type httpTransport struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	credential azcore.TokenCredential
}

func newHTTPTransport(apiKey string, cfg *clientConfig) *httpTransport {
	return &httpTransport{
		client:     cfg.httpClient,
		baseURL:    strings.TrimSuffix(cfg.baseURL, "/"),
		apiKey:     apiKey,
		credential: cfg.credential,
	}
}

func (t *httpTransport) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := t.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", af.ErrService, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, serviceError(resp)
	}
	return resp, nil
}

// authorize prefers an Entra ID token when a credential is configured and
// otherwise sends the API key as a bearer token.
func (t *httpTransport) authorize(ctx context.Context, req *http.Request) error {
	if t.credential == nil {
		if t.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+t.apiKey)
		}
		return nil
	}
	token, err := t.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{cognitiveServicesScope},
	})
	if err != nil {
		return fmt.Errorf("%w: get azure token: %w", af.ErrAuth, err)
	}
	slog.DebugContext(ctx, "using Entra ID token", "expires_on", token.ExpiresOn)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	return nil
}

// serviceError classifies an error response. The body is usually
// {"error":{"message":...,"code":...}}; anything else is kept verbatim as
// the message.
func serviceError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := gjson.GetBytes(body, "error")

	e := &af.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    apiErr.Get("message").String(),
		Code:       apiErr.Get("code").String(),
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}

	switch {
	case e.Code == "content_filter":
		e.Err = af.ErrContentFilter
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		e.Err = af.ErrAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Err = af.ErrRateLimit
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusNotFound:
		e.Err = af.ErrInvalidRequest
	default:
		e.Err = af.ErrService
	}
	return e
}
