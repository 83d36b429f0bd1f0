// Copyright (c) Microsoft. All rights reserved.

package agentframework_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

func TestAgent_BasicRun(t *testing.T) {
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			return &af.ChatResponse{
				Messages:   []af.Message{af.NewAssistantMessage("I'm here to help!")},
				ResponseID: "resp-1",
				Usage:      af.UsageDetails{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
			}, nil
		},
	}

	agent := af.NewAgent(client,
		af.WithName("test-agent"),
		af.WithInstructions("You are helpful."),
	)

	if agent.Name() != "test-agent" {
		t.Errorf("Name = %q", agent.Name())
	}
	if agent.ID() == "" {
		t.Error("ID should not be empty")
	}

	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if resp.Text() != "I'm here to help!" {
		t.Errorf("Text = %q", resp.Text())
	}
	if resp.AgentID != agent.ID() {
		t.Errorf("AgentID = %q, want %q", resp.AgentID, agent.ID())
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
}

func TestAgent_WithToolInvocation(t *testing.T) {
	tool := af.NewTypedTool("add", "Adds two numbers",
		func(ctx context.Context, args struct {
			A int `json:"a"`
			B int `json:"b"`
		}) (any, error) {
			return args.A + args.B, nil
		},
	)

	callCount := 0
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			callCount++
			if callCount == 1 {
				return &af.ChatResponse{
					Messages: []af.Message{{
						Role: af.RoleAssistant,
						Contents: af.Contents{
							&af.FunctionCallContent{
								CallID:    "call-1",
								Name:      "add",
								Arguments: `{"a":3,"b":4}`,
							},
						},
					}},
				}, nil
			}
			return &af.ChatResponse{
				Messages: []af.Message{af.NewAssistantMessage("The answer is 7.")},
			}, nil
		},
	}

	agent := af.NewAgent(client, af.WithTools(tool))
	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("what is 3+4?")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if callCount != 2 {
		t.Errorf("client called %d times, want 2", callCount)
	}
	if resp.Text() != "The answer is 7." {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestAgent_ThreadCarriesHistory(t *testing.T) {
	var seen [][]af.Message
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			seen = append(seen, msgs)
			return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage("ok")}}, nil
		},
	}

	agent := af.NewAgent(client, af.WithInstructions("Be helpful"))
	thread := agent.NewThread()
	ctx := context.Background()

	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("hello")}, af.WithThread(thread)); err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("what did I say?")}, af.WithThread(thread)); err != nil {
		t.Fatalf("Run 2: %v", err)
	}

	// system, hello, ok, what did I say?
	if len(seen[1]) != 4 {
		t.Fatalf("second call saw %d messages, want 4", len(seen[1]))
	}
	if seen[1][0].Role != af.RoleSystem || seen[1][1].Text() != "hello" || seen[1][2].Text() != "ok" {
		t.Errorf("unexpected history: %+v", seen[1])
	}

	msgs, err := thread.Store().ListMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 4 {
		t.Errorf("thread holds %d messages, want 4", len(msgs))
	}
}

func roles(msgs []af.Message) []af.Role {
	out := make([]af.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func equalRoles(a, b []af.Role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAgent_ThreadKeepsToolRounds(t *testing.T) {
	tool := af.NewTool("get_random_destination", "", nil, func(context.Context, json.RawMessage) (any, error) {
		return "Tokyo, Japan", nil
	})

	var calls int
	client := toolCallThenAnswer("get_random_destination", `{}`, &calls)
	var seen []af.Message
	inner := client.responseFn
	client.responseFn = func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
		seen = msgs
		return inner(ctx, msgs, opts)
	}

	agent := af.NewAgent(client, af.WithTools(tool))
	thread := agent.NewThread()
	ctx := context.Background()

	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("plan a trip")}, af.WithThread(thread)); err != nil {
		t.Fatal(err)
	}
	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("where was that again?")}, af.WithThread(thread)); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("model called %d times, want 3", calls)
	}

	want := []af.Role{af.RoleUser, af.RoleAssistant, af.RoleTool, af.RoleAssistant, af.RoleUser}
	if got := roles(seen); !equalRoles(got, want) {
		t.Fatalf("second turn roles = %v, want %v", got, want)
	}
	if fc, ok := seen[1].Contents[0].(*af.FunctionCallContent); !ok || fc.Name != "get_random_destination" {
		t.Errorf("history lost the tool call: %+v", seen[1])
	}
	if result, ok := lastToolResult(seen); !ok || result != "Tokyo, Japan" {
		t.Errorf("history tool result = %v", result)
	}
}

func TestAgent_UsageSummedOverToolRounds(t *testing.T) {
	tool := af.NewTool("get_random_destination", "", nil, func(context.Context, json.RawMessage) (any, error) {
		return "Lima, Peru", nil
	})

	var calls int
	client := toolCallThenAnswer("get_random_destination", `{}`, &calls)
	inner := client.responseFn
	client.responseFn = func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
		resp, err := inner(ctx, msgs, opts)
		if resp != nil {
			resp.Usage = af.UsageDetails{InputTokens: 10 * calls, OutputTokens: 2, TotalTokens: 10*calls + 2}
		}
		return resp, err
	}

	agent := af.NewAgent(client, af.WithTools(tool))
	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("go")})
	if err != nil {
		t.Fatal(err)
	}
	want := af.UsageDetails{InputTokens: 30, OutputTokens: 4, TotalTokens: 34}
	if resp.Usage != want {
		t.Errorf("usage = %+v, want %+v", resp.Usage, want)
	}
}

func TestAgent_Description(t *testing.T) {
	agent := af.NewAgent(&mockClient{}, af.WithDescription("Plans vacations"))
	if agent.Description() != "Plans vacations" {
		t.Errorf("Description = %q", agent.Description())
	}
}

func TestAgent_DefaultOptions(t *testing.T) {
	var got []*af.ChatOptions
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			got = append(got, opts)
			return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage("ok")}}, nil
		},
	}

	temp := 0.2
	agent := af.NewAgent(client, af.WithDefaultOptions(&af.ChatOptions{
		ModelID:     "gpt-4o-mini",
		Temperature: &temp,
	}))
	ctx := context.Background()

	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("hi")}); err != nil {
		t.Fatal(err)
	}
	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("hi")},
		af.WithRunOptions(&af.ChatOptions{ModelID: "gpt-4o"})); err != nil {
		t.Fatal(err)
	}

	if got[0].ModelID != "gpt-4o-mini" || got[0].Temperature == nil || *got[0].Temperature != 0.2 {
		t.Errorf("defaults not applied: %+v", got[0])
	}
	if got[1].ModelID != "gpt-4o" {
		t.Errorf("run override ModelID = %q", got[1].ModelID)
	}
	if got[1].Temperature == nil || *got[1].Temperature != 0.2 {
		t.Error("run override dropped the default temperature")
	}
}

type countingStore struct {
	*af.InMemoryStore
	adds int
}

func (s *countingStore) AddMessages(ctx context.Context, msgs []af.Message) error {
	s.adds++
	return s.InMemoryStore.AddMessages(ctx, msgs)
}

func TestAgent_MessageStoreFactory(t *testing.T) {
	var made []*countingStore
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage("ok")}}, nil
		},
	}
	agent := af.NewAgent(client, af.WithMessageStoreFactory(func() af.MessageStore {
		s := &countingStore{InMemoryStore: af.NewInMemoryStore()}
		made = append(made, s)
		return s
	}))

	if _, ok := agent.NewThread().Store().(*countingStore); !ok {
		t.Fatal("NewThread did not use the factory")
	}

	// A bare thread gets a store from the factory on its first turn.
	bare := af.NewThread()
	if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")}, af.WithThread(bare)); err != nil {
		t.Fatal(err)
	}
	if len(made) != 2 {
		t.Fatalf("factory called %d times, want 2", len(made))
	}
	if bare.Store() != af.MessageStore(made[1]) {
		t.Error("bare thread not bound to the factory store")
	}
	if made[1].adds != 2 {
		t.Errorf("AddMessages called %d times, want 2", made[1].adds)
	}
}

func TestAgent_RunTools(t *testing.T) {
	var invoked []string
	base := af.NewTool("get_random_destination", "", nil, func(context.Context, json.RawMessage) (any, error) {
		invoked = append(invoked, "get_random_destination")
		return "Quito, Ecuador", nil
	})
	extra := af.NewTool("booking_hotel", "", nil, func(context.Context, json.RawMessage) (any, error) {
		invoked = append(invoked, "booking_hotel")
		return "Hilton Quito", nil
	})

	var offered [][]string
	var calls int
	client := toolCallThenAnswer("booking_hotel", `{}`, &calls)
	inner := client.responseFn
	client.responseFn = func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
		var names []string
		for _, tl := range opts.Tools {
			names = append(names, tl.Name())
		}
		offered = append(offered, names)
		return inner(ctx, msgs, opts)
	}

	agent := af.NewAgent(client, af.WithTools(base))
	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("book it")}, af.WithRunTools(extra))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text() != "done" {
		t.Errorf("Text = %q", resp.Text())
	}
	if len(offered[0]) != 2 || offered[0][0] != "get_random_destination" || offered[0][1] != "booking_hotel" {
		t.Errorf("tools offered = %v", offered[0])
	}
	if len(invoked) != 1 || invoked[0] != "booking_hotel" {
		t.Errorf("invoked = %v", invoked)
	}
}

func TestAgent_NewThread(t *testing.T) {
	agent := af.NewAgent(&mockClient{})
	th := agent.NewThread()

	if th.ID() == "" {
		t.Error("thread ID should not be empty")
	}
	if th.Store() == nil {
		t.Error("thread should have an in-memory store by default")
	}
	if th.ID() == agent.NewThread().ID() {
		t.Error("thread IDs should be unique")
	}
}

func TestAgent_DeletedThreadRejected(t *testing.T) {
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			t.Fatal("model must not be called for a deleted thread")
			return nil, nil
		},
	}
	agent := af.NewAgent(client)
	thread := agent.NewThread()
	ctx := context.Background()

	if err := thread.Delete(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := agent.Run(ctx, []af.Message{af.NewUserMessage("hi")}, af.WithThread(thread)); !errors.Is(err, af.ErrThreadDeleted) {
		t.Errorf("Run: err = %v, want ErrThreadDeleted", err)
	}
	if _, err := agent.RunStream(ctx, []af.Message{af.NewUserMessage("hi")}, af.WithThread(thread)); !errors.Is(err, af.ErrThreadDeleted) {
		t.Errorf("RunStream: err = %v, want ErrThreadDeleted", err)
	}
}

type recordingDeleter struct {
	ids []string
	err error
}

func (d *recordingDeleter) DeleteThread(_ context.Context, id string) error {
	d.ids = append(d.ids, id)
	return d.err
}

func TestThread_DeleteIsIdempotent(t *testing.T) {
	d := &recordingDeleter{}
	th := af.NewThread(af.WithThreadDeleter(d))
	if err := th.SetServiceID("thread_123"); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for range 3 {
		if err := th.Delete(ctx); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}
	if len(d.ids) != 1 || d.ids[0] != "thread_123" {
		t.Errorf("deleter calls = %v, want [thread_123]", d.ids)
	}
	if !th.Deleted() {
		t.Error("Deleted() = false")
	}
}

func TestThread_DeleteFailureWrapsErrThread(t *testing.T) {
	d := &recordingDeleter{err: af.ErrAuth}
	th := af.NewThread(af.WithThreadDeleter(d))
	_ = th.SetServiceID("thread_123")

	err := th.Delete(context.Background())
	if !errors.Is(err, af.ErrThread) || !errors.Is(err, af.ErrAuth) {
		t.Errorf("err = %v", err)
	}
}

func TestThread_DeleteClearsLocalStore(t *testing.T) {
	store := af.NewInMemoryStore()
	ctx := context.Background()
	_ = store.AddMessages(ctx, []af.Message{af.NewUserMessage("hi")})

	th := af.NewThread(af.WithThreadStore(store))
	if err := th.Delete(ctx); err != nil {
		t.Fatal(err)
	}
	msgs, _ := store.ListMessages(ctx)
	if len(msgs) != 0 {
		t.Errorf("store still holds %d messages", len(msgs))
	}
}

func TestThread_ModeLock(t *testing.T) {
	local := af.NewThread()
	if err := local.SetStore(af.NewInMemoryStore()); err != nil {
		t.Fatal(err)
	}
	if err := local.SetServiceID("thread_1"); !errors.Is(err, af.ErrThreadModeLocked) {
		t.Errorf("SetServiceID on local thread: err = %v", err)
	}

	service := af.NewThread()
	if err := service.SetServiceID("thread_2"); err != nil {
		t.Fatal(err)
	}
	if err := service.SetStore(af.NewInMemoryStore()); !errors.Is(err, af.ErrThreadModeLocked) {
		t.Errorf("SetStore on service thread: err = %v", err)
	}
	if service.Store() != nil {
		t.Error("service thread should not keep a local store")
	}
}

func TestThread_Serialize(t *testing.T) {
	ctx := context.Background()
	store := af.NewInMemoryStore()
	_ = store.AddMessages(ctx, []af.Message{
		af.NewUserMessage("Plan a trip"),
		af.NewToolMessage("c1", "get_random_destination", "Cairo, Egypt"),
	})
	th := af.NewThread(af.WithThreadStore(store))

	data, err := th.Serialize(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var state struct {
		ID       string       `json:"id"`
		Messages []af.Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.ID != th.ID() {
		t.Errorf("id = %q, want %q", state.ID, th.ID())
	}
	if len(state.Messages) != 2 || state.Messages[0].Text() != "Plan a trip" {
		t.Fatalf("messages = %+v", state.Messages)
	}
	fr, ok := state.Messages[1].Contents[0].(*af.FunctionResultContent)
	if !ok || fr.Result != "Cairo, Egypt" {
		t.Errorf("tool result = %+v", state.Messages[1].Contents[0])
	}
}

func TestAgent_RunStreamToolLoop(t *testing.T) {
	tool := af.NewTool("get_random_destination", "", json.RawMessage(`{"type":"object","properties":{}}`),
		func(context.Context, json.RawMessage) (any, error) { return "Kyoto, Japan", nil })

	var calls int
	agent := af.NewAgent(toolCallThenAnswer("get_random_destination", `{}`, &calls),
		af.WithName("TravelAgent"),
		af.WithTools(tool),
	)
	thread := agent.NewThread()
	ctx := context.Background()

	stream, err := agent.RunStream(ctx, []af.Message{af.NewUserMessage("surprise me")}, af.WithThread(thread))
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	var events []string
	for u, err := range stream.Updates(ctx) {
		if err != nil {
			t.Fatal(err)
		}
		if u.AgentName != "TravelAgent" {
			t.Errorf("AgentName = %q", u.AgentName)
		}
		for _, c := range u.FunctionCalls() {
			events = append(events, "call:"+c.Name)
		}
		for _, r := range u.FunctionResults() {
			events = append(events, "result:"+r.Result.(string))
		}
		if txt := u.Text(); txt != "" {
			events = append(events, "text:"+txt)
		}
	}

	expected := []string{"call:get_random_destination", "result:Kyoto, Japan", "text:done"}
	if len(events) != len(expected) {
		t.Fatalf("events = %v, want %v", events, expected)
	}
	for i := range expected {
		if events[i] != expected[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], expected[i])
		}
	}

	final, err := stream.FinalResponse(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if final.Text() != "done" {
		t.Errorf("final text = %q", final.Text())
	}

	// The producer updates the thread before closing the stream.
	msgs, _ := thread.Store().ListMessages(ctx)
	want := []af.Role{af.RoleUser, af.RoleAssistant, af.RoleTool, af.RoleAssistant}
	if got := roles(msgs); !equalRoles(got, want) {
		t.Errorf("thread roles = %v, want %v", got, want)
	}
}

func TestAgent_MaxConsecutiveErrors(t *testing.T) {
	failing := af.NewTool("booking_flight", "", nil, func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("search unavailable")
	})

	var calls int
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			calls++
			return &af.ChatResponse{Messages: []af.Message{{
				Role:     af.RoleAssistant,
				Contents: af.Contents{&af.FunctionCallContent{CallID: "c", Name: "booking_flight", Arguments: "{}"}},
			}}}, nil
		},
	}

	agent := af.NewAgent(client,
		af.WithTools(failing),
		af.WithInvocationConfig(af.InvocationConfig{MaxConsecutiveErrors: 2}),
	)
	_, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("fly")})
	if !errors.Is(err, af.ErrToolExecution) || !errors.Is(err, af.ErrExecution) {
		t.Fatalf("err = %v", err)
	}
	if calls != 2 {
		t.Errorf("model called %d times, want 2", calls)
	}
}

func TestAgent_ToolErrorsReportedToModel(t *testing.T) {
	failing := af.NewTool("booking_hotel", "", nil, func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("quota exceeded")
	})

	tests := []struct {
		name     string
		detailed bool
		want     string
	}{
		{"generic", false, "error invoking tool"},
		{"detailed", true, "quota exceeded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls int
			client := toolCallThenAnswer("booking_hotel", `{}`, &calls)
			var seen []af.Message
			inner := client.responseFn
			client.responseFn = func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
				seen = msgs
				return inner(ctx, msgs, opts)
			}

			agent := af.NewAgent(client,
				af.WithTools(failing),
				af.WithInvocationConfig(af.InvocationConfig{IncludeDetailedErrors: tc.detailed}),
			)
			if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hotel")}); err != nil {
				t.Fatal(err)
			}
			result, _ := lastToolResult(seen)
			if result != tc.want {
				t.Errorf("result = %v, want %q", result, tc.want)
			}
		})
	}
}

func TestAgent_UnknownTool(t *testing.T) {
	known := af.NewTool("get_random_destination", "", nil, func(context.Context, json.RawMessage) (any, error) {
		return "Oslo, Norway", nil
	})

	var calls int
	agent := af.NewAgent(toolCallThenAnswer("book_train", `{}`, &calls), af.WithTools(known))
	if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("train")}); err != nil {
		t.Fatalf("unknown tool should be reported to the model: %v", err)
	}

	calls = 0
	strict := af.NewAgent(toolCallThenAnswer("book_train", `{}`, &calls),
		af.WithTools(known),
		af.WithInvocationConfig(af.InvocationConfig{TerminateOnUnknown: true}),
	)
	if _, err := strict.Run(context.Background(), []af.Message{af.NewUserMessage("train")}); !errors.Is(err, af.ErrToolExecution) {
		t.Errorf("err = %v, want ErrToolExecution", err)
	}
}

func TestAgent_RunWithOptions(t *testing.T) {
	var receivedModel string
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			if opts != nil {
				receivedModel = opts.ModelID
			}
			return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage("ok")}}, nil
		},
	}

	agent := af.NewAgent(client)
	_, err := agent.Run(context.Background(),
		[]af.Message{af.NewUserMessage("hi")},
		af.WithRunOptions(&af.ChatOptions{ModelID: "gpt-4o-mini"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if receivedModel != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", receivedModel)
	}
}
