// Package deepseek provides an implementation of model.Model for the DeepSeek
// chat completions API. DeepSeek speaks the OpenAI wire protocol, so the
// official OpenAI client is pointed at DeepSeek's base URL; the out-of-band
// reasoning_content field it adds to messages and deltas is read from the raw
// JSON and kept under additional_kwargs for the deepseek translator.
package deepseek

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/logging"
	"github.com/hupe1980/blockmesh/message"
	"github.com/hupe1980/blockmesh/model"
	translator "github.com/hupe1980/blockmesh/translator/deepseek"
)

// DefaultBaseURL is DeepSeek's public API endpoint.
const DefaultBaseURL = "https://api.deepseek.com"

// Model names accepted by the DeepSeek API.
const (
	ModelChat     = "deepseek-chat"
	ModelReasoner = "deepseek-reasoner"
)

// Options configure the DeepSeek model adapter.
type Options struct {
	Model     string
	BaseURL   string
	APIKey    string
	MaxTokens int64
	Logger    logging.Logger
}

// Model wraps the DeepSeek chat completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:     ModelReasoner,
		BaseURL:   DefaultBaseURL,
		MaxTokens: 4096,
	}
}

// NewModel creates a new DeepSeek model using the official OpenAI client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	clientOpts := []option.RequestOption{option.WithBaseURL(opts.BaseURL)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return newModel(&client, opts)
}

// NewModelFromClient creates a new DeepSeek model from an existing client.
// The client must already target a DeepSeek compatible base URL.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newModel(client, opts)
}

func newModel(client *openai.Client, opts Options) *Model {
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Model{client: client, opts: opts}
}

// Stream implements model.Model. Every provider chunk is converted to a raw
// message.Chunk tagged "deepseek"; nothing is translated here.
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
		params := m.buildParams(req)
		params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

		m.opts.Logger.Debug("deepseek stream started", "model", m.opts.Model, "turns", len(req.Turns))
		stream := m.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		n := 0
		for stream.Next() {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- chunkFromCompletionChunk(stream.Current()):
				n++
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("deepseek streaming error: %w", err)
			return
		}
		m.opts.Logger.Debug("deepseek stream finished", "chunks", n)
	}()
	return out, errCh
}

// Generate implements model.Model using a single non-streaming completion.
func (m *Model) Generate(ctx context.Context, req model.Request) (message.Message, error) {
	if len(req.Turns) == 0 {
		return message.Message{}, model.ErrNoTurns
	}
	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(req))
	if err != nil {
		return message.Message{}, fmt.Errorf("deepseek api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return message.Message{}, fmt.Errorf("deepseek api error: no choices returned")
	}
	return messageFromCompletion(resp), nil
}

// Info returns metadata describing this DeepSeek model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      translator.Tag,
		SupportsTools: m.opts.Model != ModelReasoner,
	}
}

// buildParams converts the provider-agnostic request into OpenAI-shaped params.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, t := range req.Turns {
		switch t.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(t.Text))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(t.Text))
		default:
			messages = append(messages, openai.UserMessage(t.Text))
		}
	}
	params := openai.ChatCompletionNewParams{
		Messages:  messages,
		Model:     m.opts.Model,
		MaxTokens: openai.Int(m.opts.MaxTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Name,
				Description: openai.String(tdef.Description),
				Parameters:  tdef.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// chunkFromCompletionChunk maps one streamed completion chunk to a raw chunk.
// Only the first choice is considered; DeepSeek never returns more.
func chunkFromCompletionChunk(ck openai.ChatCompletionChunk) message.Chunk {
	opts := []message.Option{
		message.WithID(ck.ID),
		message.WithText(""),
		message.WithProvider(translator.Tag),
		message.WithResponseMetadata(map[string]any{"model_name": ck.Model}),
	}
	if usage := usageFromRaw(ck.RawJSON()); usage != nil {
		opts = append(opts, message.WithResponseMetadata(map[string]any{"usage": usage}))
	}
	if len(ck.Choices) == 0 {
		return message.NewChunk(opts...)
	}

	ch := ck.Choices[0]
	opts = append(opts, message.WithText(ch.Delta.Content))
	if r := gjson.Get(ch.Delta.RawJSON(), message.ReasoningContentKey); r.Type == gjson.String {
		opts = append(opts, message.WithReasoning(r.String()))
	}
	if ch.FinishReason != "" {
		opts = append(opts, message.WithResponseMetadata(map[string]any{"finish_reason": ch.FinishReason}))
	}
	if len(ch.Delta.ToolCalls) > 0 {
		fragments := make([]core.ToolCallChunk, len(ch.Delta.ToolCalls))
		for i, tc := range ch.Delta.ToolCalls {
			fragments[i] = core.ToolCallChunk{
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Args:  tc.Function.Arguments,
				Index: core.Index(int(tc.Index)),
			}
		}
		opts = append(opts, message.WithToolCallChunks(fragments...))
	}
	return message.NewChunk(opts...)
}

// messageFromCompletion maps a non-streaming completion to a raw message.
func messageFromCompletion(resp *openai.ChatCompletion) message.Message {
	ch := resp.Choices[0]
	opts := []message.Option{
		message.WithID(resp.ID),
		message.WithText(ch.Message.Content),
		message.WithProvider(translator.Tag),
		message.WithResponseMetadata(map[string]any{
			"model_name":    resp.Model,
			"finish_reason": ch.FinishReason,
		}),
	}
	if usage := usageFromRaw(resp.RawJSON()); usage != nil {
		opts = append(opts, message.WithResponseMetadata(map[string]any{"usage": usage}))
	}
	if r := gjson.Get(ch.Message.RawJSON(), message.ReasoningContentKey); r.Type == gjson.String {
		opts = append(opts, message.WithReasoning(r.String()))
	}
	if len(ch.Message.ToolCalls) > 0 {
		fragments := make([]core.ToolCallChunk, len(ch.Message.ToolCalls))
		for i, tc := range ch.Message.ToolCalls {
			fragments[i] = core.ToolCallChunk{
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Args:  tc.Function.Arguments,
				Index: core.Index(i),
			}
		}
		opts = append(opts, message.WithToolCallChunks(fragments...))
	}
	return message.NewMessage(opts...)
}

// usageFromRaw extracts token usage, or nil when the payload carries none.
func usageFromRaw(raw string) map[string]any {
	u := gjson.Get(raw, "usage")
	if !u.IsObject() {
		return nil
	}
	usage := map[string]any{}
	u.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Number {
			usage[key.String()] = value.Int()
		}
		return true
	})
	return usage
}
