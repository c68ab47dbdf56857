package testutil

import (
	"github.com/hupe1980/blockmesh/message"
)

// StreamBuilder assembles a transport-shaped chunk stream for tests.
// Example:
//
//	chunks, errs := NewStreamBuilder().Chunk(c1).Chunk(c2).Build()
type StreamBuilder struct {
	chunks []message.Chunk
	err    error
}

// NewStreamBuilder creates an empty stream builder.
func NewStreamBuilder() *StreamBuilder { return &StreamBuilder{} }

// Chunk appends a chunk to the stream (chainable).
func (b *StreamBuilder) Chunk(c message.Chunk) *StreamBuilder {
	b.chunks = append(b.chunks, c)
	return b
}

// Chunks appends several chunks to the stream (chainable).
func (b *StreamBuilder) Chunks(cs ...message.Chunk) *StreamBuilder {
	b.chunks = append(b.chunks, cs...)
	return b
}

// Fail makes the stream report err after all chunks were delivered (chainable).
func (b *StreamBuilder) Fail(err error) *StreamBuilder { b.err = err; return b }

// Build returns closed, fully buffered chunk and error channels.
func (b *StreamBuilder) Build() (<-chan message.Chunk, <-chan error) {
	chunks := make(chan message.Chunk, len(b.chunks))
	errs := make(chan error, 1)
	for _, c := range b.chunks {
		chunks <- c
	}
	if b.err != nil {
		errs <- b.err
	}
	close(chunks)
	close(errs)
	return chunks, errs
}
