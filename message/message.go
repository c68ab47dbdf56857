package message

import (
	"github.com/hupe1980/blockmesh/core"
)

const (
	// ReasoningContentKey is the conventional AdditionalKwargs key under which
	// providers surface deliberation text.
	ReasoningContentKey = "reasoning_content"
	// ModelProviderKey is the ResponseMetadata key holding the provider tag.
	ModelProviderKey = "model_provider"
)

// Message is a complete, untranslated provider message. After construction
// it should be treated as immutable; ContentBlocks derives the normalized
// view on every call.
type Message struct {
	ID               string                 `json:"id,omitempty"`
	Content          Content                `json:"content"`
	AdditionalKwargs map[string]any         `json:"additional_kwargs,omitempty"`
	ToolCalls        []core.ToolCall        `json:"tool_calls,omitempty"`
	InvalidToolCalls []core.InvalidToolCall `json:"invalid_tool_calls,omitempty"`
	ResponseMetadata map[string]any         `json:"response_metadata,omitempty"`

	// Reasoning is the structured twin of AdditionalKwargs[ReasoningContentKey].
	// WithReasoning keeps both in sync; readers should prefer ReasoningContent.
	Reasoning string `json:"-"`
}

// Option configures a Message or Chunk during construction.
type Option func(c *Chunk)

// WithID sets the message id.
func WithID(id string) Option { return func(c *Chunk) { c.ID = id } }

// WithContent sets the message content.
func WithContent(content Content) Option { return func(c *Chunk) { c.Content = content } }

// WithText sets string content.
func WithText(s string) Option { return WithContent(StringContent(s)) }

// WithReasoning sets the structured reasoning attribute and mirrors it under
// the legacy reasoning_content key.
func WithReasoning(r string) Option {
	return func(c *Chunk) {
		c.Reasoning = r
		if c.AdditionalKwargs == nil {
			c.AdditionalKwargs = map[string]any{}
		}
		c.AdditionalKwargs[ReasoningContentKey] = r
	}
}

// WithAdditionalKwargs merges kv into the legacy metadata bag, overwriting
// existing keys.
func WithAdditionalKwargs(kv map[string]any) Option {
	return func(c *Chunk) {
		if c.AdditionalKwargs == nil {
			c.AdditionalKwargs = make(map[string]any, len(kv))
		}
		for k, v := range kv {
			c.AdditionalKwargs[k] = v
		}
		if r, ok := kv[ReasoningContentKey].(string); ok {
			c.Reasoning = r
		}
	}
}

// WithResponseMetadata merges kv into the response metadata.
func WithResponseMetadata(kv map[string]any) Option {
	return func(c *Chunk) {
		if c.ResponseMetadata == nil {
			c.ResponseMetadata = make(map[string]any, len(kv))
		}
		for k, v := range kv {
			c.ResponseMetadata[k] = v
		}
	}
}

// WithProvider sets the provider tag used to select a Translator.
func WithProvider(tag string) Option {
	return WithResponseMetadata(map[string]any{ModelProviderKey: tag})
}

// WithToolCalls sets complete tool calls.
func WithToolCalls(calls ...core.ToolCall) Option {
	return func(c *Chunk) { c.ToolCalls = append([]core.ToolCall(nil), calls...) }
}

// WithToolCallChunks sets streamed tool call fragments. Complete tool calls
// are derived from them.
func WithToolCallChunks(chunks ...core.ToolCallChunk) Option {
	return func(c *Chunk) { c.ToolCallChunks = append([]core.ToolCallChunk(nil), chunks...) }
}

// NewMessage constructs a complete message. Tool call fragments given via
// WithToolCallChunks are resolved into ToolCalls.
func NewMessage(opts ...Option) Message {
	return NewChunk(opts...).ToMessage()
}

// Provider returns the provider tag, or "" when none is set.
func (m Message) Provider() string {
	tag, _ := m.ResponseMetadata[ModelProviderKey].(string)
	return tag
}

// ReasoningContent returns the provider deliberation text. The legacy key
// wins when present: a present but non-string value means no reasoning. The
// structured attribute is consulted only when the key is absent.
func (m Message) ReasoningContent() (string, bool) {
	if v, present := m.AdditionalKwargs[ReasoningContentKey]; present {
		s, ok := v.(string)
		return s, ok
	}
	if m.Reasoning != "" {
		return m.Reasoning, true
	}
	return "", false
}

// ContentBlocks returns the normalized block view, translated by the
// Translator registered for the provider tag in DefaultRegistry. The result
// is computed on every call.
func (m Message) ContentBlocks() []core.Block {
	return DefaultRegistry.TranslateMessage(m)
}
