package message

import "github.com/hupe1980/blockmesh/core"

// GenericTranslator is the provider-agnostic fallback used when no
// Translator is registered for a message's provider tag. It maps content and
// tool calls only; provider-specific metadata such as reasoning_content is
// ignored, and empty string content yields no block.
type GenericTranslator struct{}

// TranslateMessage implements Translator.
func (GenericTranslator) TranslateMessage(m Message) []core.Block {
	var blocks []core.Block
	if m.Content.IsString() {
		if s := m.Content.String(); s != "" {
			blocks = append(blocks, core.TextBlock{Text: s})
		}
	} else {
		for _, r := range m.Content.Blocks() {
			blocks = append(blocks, core.PassthroughBlock{Data: r})
		}
	}
	for _, tc := range m.ToolCalls {
		blocks = append(blocks, core.ToolCallBlock{ID: tc.ID, Name: tc.Name, Args: core.CopyArgs(tc.Args)})
	}
	return blocks
}

// TranslateChunk implements Translator.
func (g GenericTranslator) TranslateChunk(c Chunk) []core.Block {
	return g.TranslateMessage(c.Message)
}
