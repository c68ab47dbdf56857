// Package stream accumulates streamed message chunks and derives the
// normalized block view from the merged raw state.
//
// The accumulator never merges block slices. Each incoming chunk is merged
// into the running raw chunk with message.Chunk.Concat and the merged chunk is
// translated again, so the registered Translator stays the single source of
// truth for the block view.
package stream

import (
	"context"
	"fmt"

	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/logging"
	"github.com/hupe1980/blockmesh/message"
)

// Options configure an Accumulator.
type Options struct {
	Logger   logging.Logger
	Registry *message.Registry // Defaults to message.DefaultRegistry
}

// Accumulator folds a stream of chunks into one merged chunk. It is not safe
// for concurrent use; a stream is consumed one chunk at a time.
type Accumulator struct {
	opts   Options
	merged message.Chunk
	count  int
}

// New creates an empty Accumulator.
func New(optFns ...func(o *Options)) *Accumulator {
	opts := Options{Registry: message.DefaultRegistry}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Registry == nil {
		opts.Registry = message.DefaultRegistry
	}
	return &Accumulator{opts: opts}
}

// WithLogger sets the logger used for per-chunk debug output.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithRegistry translates with r instead of message.DefaultRegistry.
func WithRegistry(r *message.Registry) func(o *Options) {
	return func(o *Options) { o.Registry = r }
}

// Add merges c into the running chunk and returns the block view of the
// merged result.
func (a *Accumulator) Add(c message.Chunk) []core.Block {
	if a.count == 0 {
		a.merged = c.Concat()
	} else {
		a.merged = a.merged.Concat(c)
	}
	a.count++
	blocks := a.opts.Registry.TranslateChunk(a.merged)
	a.opts.Logger.Debug("chunk merged",
		"chunks", a.count,
		"blocks", len(blocks),
		"provider", a.merged.Provider(),
	)
	return blocks
}

// Chunk returns the merged chunk so far.
func (a *Accumulator) Chunk() message.Chunk { return a.merged.Concat() }

// Message finalizes the merged chunk into a complete message.
func (a *Accumulator) Message() message.Message { return a.merged.ToMessage() }

// Blocks returns the block view of the merged chunk so far. It is recomputed
// on every call.
func (a *Accumulator) Blocks() []core.Block { return a.opts.Registry.TranslateChunk(a.merged) }

// Len returns the number of chunks merged so far.
func (a *Accumulator) Len() int { return a.count }

// Reset discards the partially merged state.
func (a *Accumulator) Reset() {
	a.merged = message.Chunk{}
	a.count = 0
}

// Collect drains a transport stream into the accumulator and returns the
// merged chunk once chunks is closed. If ctx is cancelled first, the partial
// state is discarded and ctx.Err() is returned. A transport error received on
// errs is returned wrapped and also discards the partial state.
func (a *Accumulator) Collect(ctx context.Context, chunks <-chan message.Chunk, errs <-chan error) (message.Chunk, error) {
	return a.Consume(ctx, chunks, errs, nil)
}

// Consume behaves like Collect and calls onChunk with the block view after
// every merged chunk. An error returned by onChunk stops consumption, discards
// the partial state and is returned as is. A nil onChunk is skipped.
func (a *Accumulator) Consume(ctx context.Context, chunks <-chan message.Chunk, errs <-chan error, onChunk func(blocks []core.Block) error) (message.Chunk, error) {
	for {
		select {
		case <-ctx.Done():
			a.opts.Logger.Warn("stream cancelled", "chunks", a.count, "error", ctx.Err())
			a.Reset()
			return message.Chunk{}, ctx.Err()
		case c, ok := <-chunks:
			if !ok {
				if err := drainError(errs); err != nil {
					a.Reset()
					return message.Chunk{}, fmt.Errorf("stream transport: %w", err)
				}
				return a.Chunk(), nil
			}
			blocks := a.Add(c)
			if onChunk == nil {
				continue
			}
			if err := onChunk(blocks); err != nil {
				a.Reset()
				return message.Chunk{}, err
			}
		}
	}
}

// drainError waits for the transport's error channel to settle after the
// chunk channel closed. A nil channel is treated as no error.
func drainError(errs <-chan error) error {
	if errs == nil {
		return nil
	}
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Fold merges chunks left to right into one chunk without translating.
func Fold(chunks ...message.Chunk) message.Chunk {
	if len(chunks) == 0 {
		return message.Chunk{}
	}
	return chunks[0].Concat(chunks[1:]...)
}
