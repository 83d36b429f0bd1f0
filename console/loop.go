// Copyright (c) Microsoft. All rights reserved.

// Package console runs agent conversations on a terminal: an interactive
// streaming loop, a scripted non-streaming runner, and printers for tool
// call activity.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// ErrLoopFinished is returned when Run is called on a loop that already
// reached [Terminal].
var ErrLoopFinished = errors.New("console: loop already finished")

// State is the position of a [Loop] in its lifecycle.
type State int

const (
	AwaitingInput State = iota
	Streaming
	Terminal
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Streaming:
		return "streaming"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runner is the part of an agent the interactive loop drives.
// *agentframework.Agent satisfies it.
type Runner interface {
	NewThread() *af.Thread
	RunStream(ctx context.Context, messages []af.Message, opts ...af.RunOption) (*af.AgentResponseStream, error)
}

// Loop is an interactive console conversation. It sends a greeting, then
// alternates between reading a line and streaming the agent's reply until
// the exit word or end of input.
type Loop struct {
	runner Runner

	in  *lineReader
	out io.Writer

	speaker         string
	greeting        string
	exitWord        string
	blankAfterInput bool
	onUpdate        func(af.AgentResponseUpdate)

	speakerStyle lipgloss.Style
	userStyle    lipgloss.Style

	state State
}

// Option configures a [Loop].
type Option func(*Loop)

// WithInput sets where user lines are read from. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(l *Loop) { l.in = newLineReader(r) }
}

// WithOutput sets where the conversation is printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(l *Loop) { l.out = w }
}

// WithSpeaker sets the label printed before each reply. Defaults to
// "Assistant".
func WithSpeaker(name string) Option {
	return func(l *Loop) { l.speaker = name }
}

// WithGreeting sets the message sent before the first prompt. Defaults to
// "Hello".
func WithGreeting(msg string) Option {
	return func(l *Loop) { l.greeting = msg }
}

// WithExitWord sets the input that ends the loop. Defaults to "exit".
func WithExitWord(word string) Option {
	return func(l *Loop) { l.exitWord = word }
}

// WithBlankLineAfterInput prints an empty line after each user line.
func WithBlankLineAfterInput() Option {
	return func(l *Loop) { l.blankAfterInput = true }
}

// WithUpdateHook registers fn to see every streamed update, e.g.
// [IntermediatePrinter].
func WithUpdateHook(fn func(af.AgentResponseUpdate)) Option {
	return func(l *Loop) { l.onUpdate = fn }
}

// New creates a Loop driving runner.
func New(runner Runner, opts ...Option) *Loop {
	l := &Loop{
		runner:   runner,
		out:      os.Stdout,
		speaker:  "Assistant",
		greeting: "Hello",
		exitWord: "exit",
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.in == nil {
		l.in = newLineReader(os.Stdin)
	}

	r := lipgloss.NewRenderer(l.out)
	l.speakerStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	l.userStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	return l
}

// State reports where the loop is in its lifecycle.
func (l *Loop) State() State { return l.state }

// Run holds the conversation until the user types the exit word, input
// ends, a turn fails, or ctx is done, in which case it returns ctx.Err()
// without waiting for the pending line. The thread it allocates is deleted
// exactly once on the way out.
func (l *Loop) Run(ctx context.Context) (err error) {
	if l.state == Terminal {
		return ErrLoopFinished
	}

	thread := l.runner.NewThread()
	defer func() {
		l.state = Terminal
		l.in.close()
		if derr := thread.Delete(context.WithoutCancel(ctx)); derr != nil {
			slog.WarnContext(ctx, "thread delete failed", "thread_id", thread.ID(), "error", derr)
			err = errors.Join(err, derr)
		}
	}()

	input := l.greeting
	for {
		if err := l.turn(ctx, thread, input); err != nil {
			return err
		}

		line, ok, err := l.readLine(ctx)
		if err != nil {
			return err
		}
		if !ok || line == l.exitWord {
			return nil
		}
		if l.blankAfterInput {
			fmt.Fprintln(l.out)
		}
		input = line
	}
}

// turn streams one reply, printing fragments as they arrive.
func (l *Loop) turn(ctx context.Context, thread *af.Thread, input string) error {
	l.state = Streaming

	stream, err := l.runner.RunStream(ctx, []af.Message{af.NewUserMessage(input)}, af.WithThread(thread))
	if err != nil {
		return err
	}
	defer stream.Close()

	first := true
	for u, err := range stream.Updates(ctx) {
		if err != nil {
			return err
		}
		if l.onUpdate != nil {
			l.onUpdate(u)
		}
		text := u.Text()
		if text == "" {
			continue
		}
		if first {
			fmt.Fprintf(l.out, "> %s: ", l.speakerStyle.Render(l.speaker))
			first = false
		}
		io.WriteString(l.out, text)
	}
	fmt.Fprint(l.out, "\n\n")
	return nil
}

// readLine prompts and reads one line. ok is false at end of input.
func (l *Loop) readLine(ctx context.Context) (line string, ok bool, err error) {
	l.state = AwaitingInput
	fmt.Fprintf(l.out, "> %s: ", l.userStyle.Render("User"))
	return l.in.read(ctx)
}
