package testutil

import (
	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/message"
)

// MessageBuilder provides a fluent helper for constructing raw messages and
// chunks in tests. Example:
//
//	m := NewMessageBuilder().Provider("deepseek").Reasoning("hmm").Text("hi").Message()
//
// Chain only the parts you need; the provider defaults to deepseek.
type MessageBuilder struct {
	id             string
	provider       string
	content        *message.Content
	kwargs         map[string]any
	metadata       map[string]any
	toolCalls      []core.ToolCall
	toolCallChunks []core.ToolCallChunk
}

// NewMessageBuilder creates a builder with provider "deepseek" and no content.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{provider: "deepseek", kwargs: map[string]any{}, metadata: map[string]any{}}
}

// ID sets the message id (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Provider sets the provider tag (chainable). An empty tag leaves it unset.
func (b *MessageBuilder) Provider(tag string) *MessageBuilder { b.provider = tag; return b }

// Text sets string content (chainable).
func (b *MessageBuilder) Text(s string) *MessageBuilder {
	c := message.StringContent(s)
	b.content = &c
	return b
}

// Records sets block-array content (chainable).
func (b *MessageBuilder) Records(records ...map[string]any) *MessageBuilder {
	c := message.BlockContent(records...)
	b.content = &c
	return b
}

// Reasoning stores v under the legacy reasoning_content key without touching
// the structured attribute, so non-string values can be exercised (chainable).
func (b *MessageBuilder) Reasoning(v any) *MessageBuilder {
	b.kwargs[message.ReasoningContentKey] = v
	return b
}

// Kwarg sets an arbitrary additional_kwargs entry (chainable).
func (b *MessageBuilder) Kwarg(key string, v any) *MessageBuilder { b.kwargs[key] = v; return b }

// Metadata sets an arbitrary response_metadata entry (chainable).
func (b *MessageBuilder) Metadata(key string, v any) *MessageBuilder { b.metadata[key] = v; return b }

// ToolCall appends a complete tool call (chainable).
func (b *MessageBuilder) ToolCall(id, name string, args map[string]any) *MessageBuilder {
	b.toolCalls = append(b.toolCalls, core.ToolCall{ID: id, Name: name, Args: args})
	return b
}

// ToolCallChunk appends a streamed tool call fragment at index (chainable).
func (b *MessageBuilder) ToolCallChunk(index int, id, name, args string) *MessageBuilder {
	b.toolCallChunks = append(b.toolCallChunks, core.ToolCallChunk{ID: id, Name: name, Args: args, Index: core.Index(index)})
	return b
}

func (b *MessageBuilder) options() []message.Option {
	var opts []message.Option
	if b.id != "" {
		opts = append(opts, message.WithID(b.id))
	}
	if b.content != nil {
		opts = append(opts, message.WithContent(*b.content))
	}
	if len(b.kwargs) > 0 {
		kwargs := make(map[string]any, len(b.kwargs))
		for k, v := range b.kwargs {
			kwargs[k] = v
		}
		opts = append(opts, func(c *message.Chunk) { c.AdditionalKwargs = kwargs })
	}
	if len(b.metadata) > 0 {
		opts = append(opts, message.WithResponseMetadata(b.metadata))
	}
	if b.provider != "" {
		opts = append(opts, message.WithProvider(b.provider))
	}
	if len(b.toolCalls) > 0 {
		opts = append(opts, message.WithToolCalls(b.toolCalls...))
	}
	if len(b.toolCallChunks) > 0 {
		opts = append(opts, message.WithToolCallChunks(b.toolCallChunks...))
	}
	return opts
}

// Message builds a complete message.
func (b *MessageBuilder) Message() message.Message { return message.NewMessage(b.options()...) }

// Chunk builds a streamed chunk.
func (b *MessageBuilder) Chunk() message.Chunk { return message.NewChunk(b.options()...) }
