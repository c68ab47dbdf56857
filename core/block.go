package core

import "encoding/json"

// BlockType tags a content block variant.
type BlockType string

const (
	// BlockTypeReasoning marks out-of-band deliberation text.
	BlockTypeReasoning BlockType = "reasoning"
	// BlockTypeText marks primary answer text.
	BlockTypeText BlockType = "text"
	// BlockTypeToolCall marks a single tool invocation request.
	BlockTypeToolCall BlockType = "tool_call"
)

// Block represents one standardized unit of message content. Concrete block
// types implement the unexported isBlock marker enabling a closed set.
type Block interface {
	BlockType() BlockType
	isBlock()
}

// ReasoningBlock carries provider deliberation text. It is never the primary
// answer of a message.
type ReasoningBlock struct {
	Reasoning string
}

// BlockType implements Block.
func (ReasoningBlock) BlockType() BlockType { return BlockTypeReasoning }

func (ReasoningBlock) isBlock() {}

// MarshalJSON encodes the block as a tagged record.
func (b ReasoningBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      BlockType `json:"type"`
		Reasoning string    `json:"reasoning"`
	}{BlockTypeReasoning, b.Reasoning})
}

// TextBlock is a plain text content segment. An empty Text is valid.
type TextBlock struct {
	Text string
}

// BlockType implements Block.
func (TextBlock) BlockType() BlockType { return BlockTypeText }

func (TextBlock) isBlock() {}

// MarshalJSON encodes the block as a tagged record.
func (b TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		Text string    `json:"text"`
	}{BlockTypeText, b.Text})
}

// ToolCallBlock wraps one tool invocation request as a content block.
type ToolCallBlock struct {
	ID   string
	Name string
	Args map[string]any
}

// BlockType implements Block.
func (ToolCallBlock) BlockType() BlockType { return BlockTypeToolCall }

func (ToolCallBlock) isBlock() {}

// MarshalJSON encodes the block as a tagged record.
func (b ToolCallBlock) MarshalJSON() ([]byte, error) {
	args := b.Args
	if args == nil {
		args = map[string]any{}
	}
	return json.Marshal(struct {
		Type BlockType      `json:"type"`
		ID   string         `json:"id"`
		Name string         `json:"name"`
		Args map[string]any `json:"args"`
	}{BlockTypeToolCall, b.ID, b.Name, args})
}

// PassthroughBlock forwards a record a provider already emitted in block
// form. Data is neither validated nor re-tagged.
type PassthroughBlock struct {
	Data map[string]any
}

// BlockType reports Data["type"] when it is a string, otherwise "".
func (b PassthroughBlock) BlockType() BlockType {
	if t, ok := b.Data["type"].(string); ok {
		return BlockType(t)
	}
	return ""
}

func (PassthroughBlock) isBlock() {}

// MarshalJSON encodes Data verbatim.
func (b PassthroughBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Data)
}

// Text concatenates the text of every TextBlock preserving order.
func Text(blocks []Block) string {
	var out string
	for _, b := range blocks {
		if tb, ok := b.(TextBlock); ok {
			out += tb.Text
		}
	}
	return out
}

// Reasoning concatenates the text of every ReasoningBlock preserving order.
func Reasoning(blocks []Block) string {
	var out string
	for _, b := range blocks {
		if rb, ok := b.(ReasoningBlock); ok {
			out += rb.Reasoning
		}
	}
	return out
}

// ToolCalls returns any ToolCallBlock values preserving their original order.
func ToolCalls(blocks []Block) []ToolCallBlock {
	var calls []ToolCallBlock
	for _, b := range blocks {
		if tc, ok := b.(ToolCallBlock); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}
