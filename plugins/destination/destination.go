// Copyright (c) Microsoft. All rights reserved.

// Package destination provides the random vacation destination tool.
package destination

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// ToolName is the name the model uses to call the picker.
const ToolName = "get_random_destination"

// Destinations is the fixed list the picker draws from.
var Destinations = []string{
	"Barcelona, Spain",
	"Paris, France",
	"Berlin, Germany",
	"Tokyo, Japan",
	"Sydney, Australia",
	"New York, USA",
	"Cairo, Egypt",
	"Cape Town, South Africa",
	"Rio de Janeiro, Brazil",
	"Bali, Indonesia",
}

// Picker selects vacation destinations. It is safe for concurrent use.
type Picker struct {
	mu           sync.Mutex
	destinations []string
	avoidRepeat  bool
	rng          *rand.Rand
	last         string
}

// Option configures a [Picker].
type Option func(*Picker)

// WithAvoidRepeat makes consecutive picks differ whenever more than one
// destination is available.
func WithAvoidRepeat() Option {
	return func(p *Picker) { p.avoidRepeat = true }
}

// WithRand sets the random source.
func WithRand(r *rand.Rand) Option {
	return func(p *Picker) { p.rng = r }
}

// WithDestinations replaces the destination list.
func WithDestinations(d []string) Option {
	return func(p *Picker) { p.destinations = slices.Clone(d) }
}

// NewPicker creates a Picker over [Destinations].
func NewPicker(opts ...Option) *Picker {
	p := &Picker{destinations: slices.Clone(Destinations)}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return p
}

// Pick returns a destination chosen uniformly at random. With avoid-repeat
// the previous pick is excluded from the draw when other options remain.
func (p *Picker) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.destinations) == 0 {
		return ""
	}

	candidates := p.destinations
	if p.avoidRepeat && p.last != "" && len(p.destinations) > 1 {
		candidates = make([]string, 0, len(p.destinations))
		for _, d := range p.destinations {
			if d != p.last {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) == 0 {
			candidates = p.destinations
		}
	}

	p.last = candidates[p.rng.IntN(len(candidates))]
	return p.last
}

// Last returns the most recent pick, or "" before the first one.
func (p *Picker) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Tool exposes [Picker.Pick] to the model. It takes no arguments.
func (p *Picker) Tool() af.Tool {
	return af.NewTool(ToolName,
		"Provides a random vacation destination.",
		json.RawMessage(`{"type":"object","properties":{}}`),
		func(ctx context.Context, _ json.RawMessage) (any, error) {
			d := p.Pick()
			slog.DebugContext(ctx, "destination picked", "destination", d)
			return d, nil
		},
	)
}
