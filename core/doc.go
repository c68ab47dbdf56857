// Package core defines the provider-agnostic content block model that every
// translated message is expressed in:
//
//   - ReasoningBlock (out-of-band deliberation text)
//   - TextBlock (primary answer text, possibly empty)
//   - ToolCallBlock (one invocation request)
//   - PassthroughBlock (records a provider already emitted in block form)
//
// Block sequences are positional: reasoning first, then content, then tool
// calls. The package also holds the tool call value types shared by raw
// messages and their streamed chunks.
package core
