package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/blockmesh/core"
)

// Chunk is a partial, streamed fragment of a Message. Chunks are combined
// with Concat, which always yields a new Chunk and never mutates its inputs.
type Chunk struct {
	Message

	// ToolCallChunks are the raw tool call fragments. When present, ToolCalls
	// and InvalidToolCalls are derived from them.
	ToolCallChunks []core.ToolCallChunk `json:"tool_call_chunks,omitempty"`
}

// NewChunk constructs a chunk from options.
func NewChunk(opts ...Option) Chunk {
	var c Chunk
	for _, opt := range opts {
		opt(&c)
	}
	c.resolveToolCalls()
	return c
}

// ContentBlocks returns the normalized block view of the chunk as merged so
// far, translated by the Translator registered in DefaultRegistry.
func (c Chunk) ContentBlocks() []core.Block {
	return DefaultRegistry.TranslateChunk(c)
}

// Concat merges others into c in order and returns the combined chunk.
//
// Content strings concatenate, metadata maps merge recursively (strings
// concatenate with no separator, a key missing on one side counts as empty)
// and tool call fragments are stitched by index. The provider tag and other
// identifying fields are carried through from the first chunk that has them.
func (c Chunk) Concat(others ...Chunk) Chunk {
	merged := c.clone()
	for _, o := range others {
		merged = concat(merged, o)
	}
	return merged
}

// ToMessage finalizes the chunk into a complete Message.
func (c Chunk) ToMessage() Message {
	return c.clone().Message
}

// UnmarshalJSON decodes a chunk and derives its tool calls and structured
// reasoning from the raw fields.
func (c *Chunk) UnmarshalJSON(data []byte) error {
	type chunkAlias Chunk
	var a chunkAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Chunk(a)
	if r, ok := c.AdditionalKwargs[ReasoningContentKey].(string); ok {
		c.Reasoning = r
	}
	c.resolveToolCalls()
	return nil
}

func concat(left, right Chunk) Chunk {
	merged := Chunk{Message: Message{
		ID:               firstNonEmpty(left.ID, right.ID),
		Content:          concatContent(left.Content, right.Content),
		AdditionalKwargs: mergeDicts(left.AdditionalKwargs, right.AdditionalKwargs),
		ResponseMetadata: mergeDicts(left.ResponseMetadata, right.ResponseMetadata),
		Reasoning:        left.Reasoning + right.Reasoning,
	}}
	if r, ok := merged.AdditionalKwargs[ReasoningContentKey].(string); ok {
		merged.Reasoning = r
	}

	if len(left.ToolCallChunks) == 0 && len(right.ToolCallChunks) == 0 {
		merged.ToolCalls = append(cloneToolCalls(left.ToolCalls), cloneToolCalls(right.ToolCalls)...)
		merged.InvalidToolCalls = append(
			append([]core.InvalidToolCall(nil), left.InvalidToolCalls...),
			right.InvalidToolCalls...,
		)
		return merged
	}

	merged.ToolCallChunks = mergeToolCallChunks(left.toolCallFragments(), right.toolCallFragments())
	merged.resolveToolCalls()
	return merged
}

// toolCallFragments returns the chunk's fragments. A chunk that carries only
// complete or invalid calls has them re-expressed as fragments, indexed by
// position, so they survive a merge with a fragmented chunk.
func (c Chunk) toolCallFragments() []core.ToolCallChunk {
	if len(c.ToolCallChunks) > 0 {
		return c.ToolCallChunks
	}
	out := make([]core.ToolCallChunk, 0, len(c.ToolCalls)+len(c.InvalidToolCalls))
	for i, tc := range c.ToolCalls {
		args := "{}"
		if tc.Args != nil {
			if b, err := json.Marshal(tc.Args); err == nil {
				args = string(b)
			}
		}
		out = append(out, core.ToolCallChunk{ID: tc.ID, Name: tc.Name, Args: args, Index: core.Index(i)})
	}
	for i, tc := range c.InvalidToolCalls {
		out = append(out, core.ToolCallChunk{
			ID:    tc.ID,
			Name:  tc.Name,
			Args:  tc.Args,
			Index: core.Index(len(c.ToolCalls) + i),
		})
	}
	return out
}

// mergeToolCallChunks stitches fragments sharing an index (or, lacking an
// index, an id). The first non-empty id and name win; args concatenate.
func mergeToolCallChunks(left, right []core.ToolCallChunk) []core.ToolCallChunk {
	merged := make([]core.ToolCallChunk, 0, len(left)+len(right))
	for _, tc := range left {
		merged = append(merged, cloneToolCallChunk(tc))
	}
	for _, tc := range right {
		i := matchToolCallChunk(merged, tc)
		if i < 0 {
			merged = append(merged, cloneToolCallChunk(tc))
			continue
		}
		m := merged[i]
		m.ID = firstNonEmpty(m.ID, tc.ID)
		m.Name = firstNonEmpty(m.Name, tc.Name)
		m.Args += tc.Args
		if m.Index == nil && tc.Index != nil {
			m.Index = core.Index(*tc.Index)
		}
		merged[i] = m
	}
	return merged
}

func matchToolCallChunk(chunks []core.ToolCallChunk, tc core.ToolCallChunk) int {
	for i, c := range chunks {
		switch {
		case tc.Index != nil:
			if c.Index != nil && *c.Index == *tc.Index {
				return i
			}
		case tc.ID != "":
			if c.ID == tc.ID {
				return i
			}
		}
	}
	return -1
}

// resolveToolCalls derives ToolCalls and InvalidToolCalls from the fragments.
func (c *Chunk) resolveToolCalls() {
	if len(c.ToolCallChunks) == 0 {
		return
	}
	c.ToolCalls, c.InvalidToolCalls = nil, nil
	for _, tc := range c.ToolCallChunks {
		args, err := parsePartialJSON(tc.Args)
		if err != nil {
			c.InvalidToolCalls = append(c.InvalidToolCalls, core.InvalidToolCall{
				ID:    tc.ID,
				Name:  tc.Name,
				Args:  tc.Args,
				Error: err.Error(),
			})
			continue
		}
		c.ToolCalls = append(c.ToolCalls, core.ToolCall{ID: tc.ID, Name: tc.Name, Args: args})
	}
}

// parsePartialJSON decodes a possibly truncated JSON object. Open strings,
// objects and arrays of an unterminated prefix are closed; if that still
// fails, trailing bytes are dropped until the prefix decodes. Bytes after a
// complete value are an error.
func parsePartialJSON(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return map[string]any{}, nil
	}
	var out map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	err := dec.Decode(&out)
	if err == nil {
		if _, err := dec.Token(); err != io.EOF {
			return nil, fmt.Errorf("tool call args have trailing data: %q", s)
		}
		if out == nil {
			out = map[string]any{}
		}
		return out, nil
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("tool call args are not a JSON object: %q", s)
	}
	for b := []byte(strings.TrimSpace(s)); len(b) > 0; b = b[:len(b)-1] {
		out = nil
		if err := json.Unmarshal(closeJSON(b), &out); err == nil && out != nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("tool call args are not a JSON object: %q", s)
}

func closeJSON(b []byte) []byte {
	var closers []byte
	inString, escaped := false, false
	for _, ch := range b {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			closers = append(closers, '}')
		case '[':
			closers = append(closers, ']')
		case '}', ']':
			if len(closers) > 0 {
				closers = closers[:len(closers)-1]
			}
		}
	}
	out := append([]byte(nil), b...)
	if inString {
		if escaped {
			out = out[:len(out)-1]
		}
		out = append(out, '"')
	}
	for i := len(closers) - 1; i >= 0; i-- {
		out = append(out, closers[i])
	}
	return out
}

func (c Chunk) clone() Chunk {
	out := Chunk{Message: Message{
		ID:               c.ID,
		Content:          c.Content,
		AdditionalKwargs: copyMap(c.AdditionalKwargs),
		ResponseMetadata: copyMap(c.ResponseMetadata),
		ToolCalls:        cloneToolCalls(c.ToolCalls),
		InvalidToolCalls: append([]core.InvalidToolCall(nil), c.InvalidToolCalls...),
		Reasoning:        c.Reasoning,
	}}
	if c.Content.isRecord {
		out.Content = Content{records: copyValue(c.Content.records).([]map[string]any), isRecord: true}
	}
	for _, tc := range c.ToolCallChunks {
		out.ToolCallChunks = append(out.ToolCallChunks, cloneToolCallChunk(tc))
	}
	return out
}

func cloneToolCalls(calls []core.ToolCall) []core.ToolCall {
	if calls == nil {
		return nil
	}
	out := make([]core.ToolCall, len(calls))
	for i, tc := range calls {
		out[i] = core.ToolCall{ID: tc.ID, Name: tc.Name, Args: copyMap(tc.Args)}
	}
	return out
}

func cloneToolCallChunk(tc core.ToolCallChunk) core.ToolCallChunk {
	if tc.Index != nil {
		tc.Index = core.Index(*tc.Index)
	}
	return tc
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
