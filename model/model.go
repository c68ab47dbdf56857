package model

import (
	"context"
	"errors"

	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/message"
)

// ErrNoTurns is returned when a Request carries no conversation turns.
var ErrNoTurns = errors.New("no turns provided")

// Turn is one role-tagged text entry of the conversation sent to a provider.
type Turn struct {
	Role string `json:"role"` // user, assistant or system
	Text string `json:"text"`
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the provider-agnostic model input.
type Request struct {
	Instructions string           `json:"instructions"`
	Turns        []Turn           `json:"turns"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // Provider tag stamped on every produced message
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the transport that delivers raw, untranslated messages. Stream
// emits chunks in arrival order and closes both channels when done; at most
// one error is sent.
type Model interface {
	Stream(ctx context.Context, req Request) (<-chan message.Chunk, <-chan error)
	Generate(ctx context.Context, req Request) (message.Message, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
type MockModel struct {
	info    Info
	scripts map[string][]message.Chunk
}

// NewMockModel constructs a MockModel stamping provider on every chunk.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		scripts: make(map[string][]message.Chunk),
	}
}

// AddStream registers the chunks replayed for an input prompt.
func (m *MockModel) AddStream(prompt string, chunks ...message.Chunk) {
	m.scripts[prompt] = append([]message.Chunk(nil), chunks...)
}

// Stream implements Model; replays the registered chunks for the last user
// turn, or echoes the prompt one rune per chunk. Every chunk carries the
// provider tag and a per-stream message id unless the script sets its own.
func (m *MockModel) Stream(ctx context.Context, req Request) (<-chan message.Chunk, <-chan error) {
	out := make(chan message.Chunk, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		if len(req.Turns) == 0 {
			errCh <- ErrNoTurns
			return
		}
		prompt := req.Turns[len(req.Turns)-1].Text
		chunks, ok := m.scripts[prompt]
		if !ok {
			for _, r := range "Mock response to: " + prompt {
				chunks = append(chunks, message.NewChunk(message.WithText(string(r))))
			}
		}
		stamp := message.NewChunk(message.WithID(core.NewID()), message.WithProvider(m.info.Provider))
		for _, c := range chunks {
			c = c.Concat(stamp)
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- c:
			}
		}
	}()
	return out, errCh
}

// Generate implements Model by merging the streamed chunks.
func (m *MockModel) Generate(ctx context.Context, req Request) (message.Message, error) {
	return Collect(ctx, m, req)
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
