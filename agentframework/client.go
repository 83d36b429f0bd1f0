// Copyright (c) Microsoft. All rights reserved.

package agentframework

import "context"

// ChatClient is the interface for interacting with an LLM backend.
// Provider packages (e.g., openai) implement this interface.
type ChatClient interface {
	// Response sends messages to the model and returns a complete response.
	Response(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

	// StreamResponse sends messages and returns a stream of incremental updates.
	StreamResponse(ctx context.Context, messages []Message, opts *ChatOptions) (*ResponseStream[ChatResponseUpdate], error)
}

// ThreadDeleter is implemented by chat clients whose backend keeps
// conversation state server-side. [Thread.Delete] calls it for
// service-managed threads.
//
// No client in this module implements it: the openai Chat Completions
// client is stateless and never sets [ChatResponse.ConversationID], so its
// threads stay local and Delete only clears the message store. Backends with
// hosted threads, such as a Foundry agent service, would implement it.
type ThreadDeleter interface {
	DeleteThread(ctx context.Context, serviceID string) error
}
