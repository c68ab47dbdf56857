package model

import (
	"context"

	"github.com/hupe1980/blockmesh/message"
	"github.com/hupe1980/blockmesh/stream"
)

// Collect streams req through m and merges every chunk into one complete
// message. Providers without a native non-streaming path implement Generate
// with it.
func Collect(ctx context.Context, m Model, req Request, optFns ...func(o *stream.Options)) (message.Message, error) {
	chunks, errs := m.Stream(ctx, req)
	merged, err := stream.New(optFns...).Collect(ctx, chunks, errs)
	if err != nil {
		return message.Message{}, err
	}
	return merged.ToMessage(), nil
}
