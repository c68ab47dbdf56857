package core

import "github.com/google/uuid"

// ToolCall describes a complete tool/function invocation request.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolCallChunk is a streamed fragment of a tool call. Args holds a partial
// JSON document that only parses once every fragment has been merged.
type ToolCallChunk struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  string `json:"args,omitempty"`
	Index *int   `json:"index,omitempty"` // Position within the provider's tool_calls array
}

// InvalidToolCall records a tool call whose accumulated arguments are not a
// JSON object.
type InvalidToolCall struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  string `json:"args,omitempty"`
	Error string `json:"error,omitempty"`
}

// Index returns a pointer to i, for building ToolCallChunk literals.
func Index(i int) *int { return &i }

// NewID generates a new unique identifier for messages.
func NewID() string { return uuid.NewString() }

// CopyArgs returns a deep copy of decoded JSON arguments. Nested objects and
// arrays are copied; scalars are shared.
func CopyArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = copyJSONValue(v)
	}
	return out
}

func copyJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyArgs(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyJSONValue(e)
		}
		return out
	default:
		return v
	}
}
