package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockmesh/config"
	"github.com/hupe1980/blockmesh/internal/testutil"
	"github.com/hupe1980/blockmesh/logging"
	"github.com/hupe1980/blockmesh/message"
	"github.com/hupe1980/blockmesh/model"
)

type decodedView struct {
	Step     int              `json:"step"`
	Provider string           `json:"provider"`
	Blocks   []map[string]any `json:"blocks"`
}

func decodeViews(t *testing.T, r io.Reader) []decodedView {
	t.Helper()
	var views []decodedView
	dec := json.NewDecoder(r)
	for {
		var v decodedView
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return views
		}
		require.NoError(t, err)
		views = append(views, v)
	}
}

var weatherBlocks = []map[string]any{
	{"type": "reasoning", "reasoning": "User wants weather information..."},
	{"type": "text", "text": "I'll check the weather"},
	{"type": "tool_call", "id": "call_123", "name": "get_weather", "args": map[string]any{"location": "SF"}},
}

func openTestdata(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestReplay_FinalView(t *testing.T) {
	var out bytes.Buffer

	err := replay(context.Background(), openTestdata(t, "weather.jsonl"), &out, false, logging.NoOpLogger{})

	require.NoError(t, err)
	views := decodeViews(t, &out)
	require.Len(t, views, 1)
	assert.Equal(t, "deepseek", views[0].Provider)
	assert.Equal(t, weatherBlocks, views[0].Blocks)
}

func TestReplay_Steps(t *testing.T) {
	var out bytes.Buffer

	err := replay(context.Background(), openTestdata(t, "weather.jsonl"), &out, true, logging.NoOpLogger{})

	require.NoError(t, err)
	views := decodeViews(t, &out)
	require.Len(t, views, 6) // five chunks plus the final view

	assert.Equal(t, 1, views[0].Step)
	assert.Equal(t, []map[string]any{
		{"type": "reasoning", "reasoning": "User wants"},
		{"type": "text", "text": ""},
	}, views[0].Blocks)

	assert.Equal(t, 3, views[2].Step)
	assert.Equal(t, []map[string]any{
		{"type": "reasoning", "reasoning": "User wants weather information..."},
		{"type": "text", "text": "I'll check"},
	}, views[2].Blocks)

	assert.Equal(t, weatherBlocks, views[5].Blocks)
}

func TestReplay_MalformedLine(t *testing.T) {
	in := strings.NewReader("{\"content\":\"ok\"}\n{not json}\n")

	err := replay(context.Background(), in, io.Discard, false, logging.NoOpLogger{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReplay_Empty(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, replay(context.Background(), strings.NewReader(""), &out, false, logging.NoOpLogger{}))

	views := decodeViews(t, &out)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].Blocks)
}

func TestChat_PrintsAccumulatedBlocks(t *testing.T) {
	m := model.NewMockModel("mock-reasoner", "deepseek")
	m.AddStream("weather?",
		testutil.NewMessageBuilder().Provider("").Reasoning("Thinking").Chunk(),
		testutil.NewMessageBuilder().Provider("").Text("Sunny").Chunk(),
	)
	var out bytes.Buffer

	err := chat(context.Background(), m, model.Request{Turns: []model.Turn{{Role: "user", Text: "weather?"}}}, &out, true, logging.NoOpLogger{})

	require.NoError(t, err)
	views := decodeViews(t, &out)
	require.Len(t, views, 3)
	assert.Equal(t, 2, views[1].Step)
	assert.Equal(t, []map[string]any{
		{"type": "reasoning", "reasoning": "Thinking"},
		{"type": "text", "text": "Sunny"},
	}, views[2].Blocks)
}

type failingModel struct{ *model.MockModel }

func (failingModel) Stream(context.Context, model.Request) (<-chan message.Chunk, <-chan error) {
	chunks, errs := testutil.NewStreamBuilder().
		Chunk(testutil.NewMessageBuilder().Text("partial").Chunk()).
		Fail(errors.New("connection reset")).
		Build()
	return chunks, errs
}

func TestChat_TransportError(t *testing.T) {
	m := failingModel{model.NewMockModel("mock", "deepseek")}

	err := chat(context.Background(), m, model.Request{Turns: []model.Turn{{Role: "user", Text: "x"}}}, io.Discard, false, logging.NoOpLogger{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "chat: stream transport")
}

func TestNewModel(t *testing.T) {
	_, err := newModel(&config.Config{Provider: "deepseek"}, logging.NoOpLogger{})
	require.ErrorIs(t, err, config.ErrMissingAPIKey)

	m, err := newModel(&config.Config{Provider: "deepseek", APIKey: "k", MaxTokens: 1}, logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, "deepseek", m.Info().Provider)

	m, err = newModel(&config.Config{Provider: "anthropic", APIKey: "k", Model: "claude-test", MaxTokens: 1}, logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: "claude-test", Provider: "anthropic", SupportsTools: true}, m.Info())

	_, err = newModel(&config.Config{Provider: "acme", APIKey: "k"}, logging.NoOpLogger{})
	require.Error(t, err)
}

func TestExecute_Replay(t *testing.T) {
	t.Setenv("BLOCKMESH_LOG_LEVEL", "error")

	err := Execute(context.Background(), []string{"blockmesh", "--log-format", "json", "replay", filepath.Join("testdata", "weather.jsonl")}, "test")

	require.NoError(t, err)
}

func TestExecute_ReplayMissingArg(t *testing.T) {
	err := Execute(context.Background(), []string{"blockmesh", "replay"}, "test")

	require.Error(t, err)
}
