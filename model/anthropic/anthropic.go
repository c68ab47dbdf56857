// Package anthropic provides a model.Model transport for the Anthropic
// Messages API.
//
// Anthropic already returns content in block form (text, thinking, tool_use,
// ...). Those blocks are forwarded as block-array content and reach consumers
// as passthrough blocks; no Anthropic specific translator is registered.
// Streamed block deltas are emitted as records keyed by the block "index", so
// merging chunks stitches each block back together.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/blockmesh/logging"
	"github.com/hupe1980/blockmesh/message"
	"github.com/hupe1980/blockmesh/model"
)

// Tag is the provider tag stamped on Anthropic messages.
const Tag = "anthropic"

// Options configures the Anthropic model adapter (model id, max tokens,
// thinking budget, API key). Extend via functional options to preserve stability.
type Options struct {
	Model          string
	MaxTokens      int64
	ThinkingBudget int64 // Enables extended thinking when > 0
	APIKey         string
	BaseURL        string
	Logger         logging.Logger
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:     string(anthropic.ModelClaude3_5Sonnet20241022),
		MaxTokens: 4096,
	}
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)
	return newModel(&client, opts)
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newModel(client, opts)
}

func newModel(client *anthropic.Client, opts Options) *Model {
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model with a single non-streaming request.
func (m *Model) Generate(ctx context.Context, req model.Request) (message.Message, error) {
	if len(req.Turns) == 0 {
		return message.Message{}, model.ErrNoTurns
	}
	resp, err := m.client.Messages.New(ctx, m.buildParams(req))
	if err != nil {
		return message.Message{}, fmt.Errorf("anthropic api error: %w", err)
	}

	records := make([]map[string]any, 0, len(resp.Content))
	for _, block := range resp.Content {
		if record, ok := decodeRecord(block.RawJSON()); ok {
			records = append(records, record)
		}
	}
	return message.NewMessage(
		message.WithID(resp.ID),
		message.WithContent(message.BlockContent(records...)),
		message.WithProvider(Tag),
		message.WithResponseMetadata(map[string]any{
			"model_name":  string(resp.Model),
			"stop_reason": string(resp.StopReason),
			"usage": map[string]any{
				"input_tokens":  resp.Usage.InputTokens,
				"output_tokens": resp.Usage.OutputTokens,
			},
		}),
	), nil
}

// Stream implements model.Model. Each SSE event becomes one raw chunk.
func (m *Model) Stream(ctx context.Context, req model.Request) (<-chan message.Chunk, <-chan error) {
	out := make(chan message.Chunk, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		if len(req.Turns) == 0 {
			errCh <- model.ErrNoTurns
			return
		}

		m.opts.Logger.Debug("anthropic stream started", "model", m.opts.Model, "turns", len(req.Turns))
		stream := m.client.Messages.NewStreaming(ctx, m.buildParams(req))
		defer stream.Close()

		for stream.Next() {
			c, ok := chunkFromEvent(stream.Current())
			if !ok {
				continue
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- c:
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		}
	}()
	return out, errCh
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      Tag,
		SupportsTools: true,
	}
}

func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	var messages []anthropic.MessageParam
	var system []anthropic.TextBlockParam
	if req.Instructions != "" {
		system = append(system, anthropic.TextBlockParam{Text: req.Instructions})
	}
	for _, t := range req.Turns {
		switch t.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: t.Text})
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.opts.Model),
		Messages:  messages,
		MaxTokens: m.opts.MaxTokens,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}
	if m.opts.ThinkingBudget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(m.opts.ThinkingBudget)
	}
	return params
}

// buildTools converts tool definitions to Anthropic tool params. The schema's
// properties and required list are copied; the type is always object.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if properties, ok := tool.Parameters["properties"]; ok {
			inputSchema.Properties = properties
		}
		switch required := tool.Parameters["required"].(type) {
		case []string:
			inputSchema.Required = required
		case []any:
			for _, r := range required {
				if s, ok := r.(string); ok {
					inputSchema.Required = append(inputSchema.Required, s)
				}
			}
		}

		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tool.Name)
		if tool.Description != "" {
			out[i].OfTool.Description = anthropic.String(tool.Description)
		}
	}
	return out
}

// chunkFromEvent maps a stream event to a raw chunk. Events that carry no
// message state (ping, block stop, message stop) are skipped.
func chunkFromEvent(event anthropic.MessageStreamEventUnion) (message.Chunk, bool) {
	base := []message.Option{message.WithProvider(Tag)}

	switch ev := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		return message.NewChunk(append(base,
			message.WithID(ev.Message.ID),
			message.WithResponseMetadata(map[string]any{"model_name": string(ev.Message.Model)}),
		)...), true

	case anthropic.ContentBlockStartEvent:
		record, ok := decodeRecord(ev.ContentBlock.RawJSON())
		if !ok {
			return message.Chunk{}, false
		}
		record["index"] = int(ev.Index)
		return message.NewChunk(append(base, message.WithContent(message.BlockContent(record)))...), true

	case anthropic.ContentBlockDeltaEvent:
		record := map[string]any{"index": int(ev.Index)}
		switch d := ev.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			record["text"] = d.Text
		case anthropic.ThinkingDelta:
			record["thinking"] = d.Thinking
		case anthropic.SignatureDelta:
			record["signature"] = d.Signature
		case anthropic.InputJSONDelta:
			record["partial_json"] = d.PartialJSON
		default:
			return message.Chunk{}, false
		}
		return message.NewChunk(append(base, message.WithContent(message.BlockContent(record)))...), true

	case anthropic.MessageDeltaEvent:
		return message.NewChunk(append(base,
			message.WithResponseMetadata(map[string]any{"stop_reason": string(ev.Delta.StopReason)}),
		)...), true

	default:
		return message.Chunk{}, false
	}
}

// decodeRecord turns a raw content block into an opaque record.
func decodeRecord(raw string) (map[string]any, bool) {
	if raw == "" {
		return nil, false
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record == nil {
		return nil, false
	}
	return record, true
}
