// Package deepseek translates DeepSeek chat-completion messages into
// standardized content blocks. DeepSeek surfaces deliberation text out of
// band, under additional_kwargs["reasoning_content"], next to ordinary
// string content and tool calls.
//
// Importing the package registers the translator under Tag in
// message.DefaultRegistry.
package deepseek

import (
	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/message"
)

// Tag is the provider tag DeepSeek messages carry in
// response_metadata["model_provider"].
const Tag = "deepseek"

func init() {
	message.Register(Tag, New())
}

// Translator implements message.Translator for DeepSeek messages.
type Translator struct{}

// New returns a DeepSeek translator.
func New() Translator { return Translator{} }

// TranslateMessage implements message.Translator.
func (Translator) TranslateMessage(m message.Message) []core.Block {
	return translate(m)
}

// TranslateChunk implements message.Translator. A chunk merged so far is
// translated exactly like a complete message.
func (Translator) TranslateChunk(c message.Chunk) []core.Block {
	return translate(c.Message)
}

// translate emits, in order: a reasoning block when reasoning_content is a
// non-empty string, the content block(s), then one block per tool call.
func translate(m message.Message) []core.Block {
	blocks := make([]core.Block, 0, 2+len(m.ToolCalls))

	// Whitespace-only reasoning is still reasoning; only "" is dropped.
	if r, ok := m.ReasoningContent(); ok && r != "" {
		blocks = append(blocks, core.ReasoningBlock{Reasoning: r})
	}

	if m.Content.IsString() {
		blocks = append(blocks, core.TextBlock{Text: m.Content.String()})
	} else {
		for _, record := range m.Content.Blocks() {
			blocks = append(blocks, core.PassthroughBlock{Data: record})
		}
	}

	for _, tc := range m.ToolCalls {
		blocks = append(blocks, core.ToolCallBlock{ID: tc.ID, Name: tc.Name, Args: core.CopyArgs(tc.Args)})
	}
	return blocks
}
