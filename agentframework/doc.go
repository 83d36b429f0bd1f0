// Copyright (c) Microsoft. All rights reserved.

// Package agentframework runs tool-calling chat agents.
//
// An [Agent] pairs a [ChatClient] with instructions and [Tool] values. Each
// run sends the conversation to the model, executes the tools it asks for,
// feeds the results back, and repeats until the model answers in text:
//
//	agent := agentframework.NewAgent(openai.New(token),
//	    agentframework.WithName("TravelAgent"),
//	    agentframework.WithInstructions("You are a helpful AI Agent."),
//	    agentframework.WithTools(picker.Tool()),
//	)
//	resp, err := agent.Run(ctx, []agentframework.Message{
//	    agentframework.NewUserMessage("Plan me a day trip"),
//	})
//
// [Agent.RunStream] delivers the same run as a sequence of updates: text
// fragments, the tool calls the model made, and one tool-role update with
// the results of each round.
//
// Tools built with [NewTypedTool] derive their parameter schema from a Go
// struct, and a [Registry] checks the model's arguments against it before a
// tool runs. A [FunctionMiddleware] wraps every call and can observe,
// replace or suppress it.
//
// A [Thread] carries history across runs:
//
//	thread := agent.NewThread()
//	defer thread.Delete(context.WithoutCancel(ctx))
//	agent.Run(ctx, first, agentframework.WithThread(thread))
//	agent.Run(ctx, second, agentframework.WithThread(thread))
package agentframework
