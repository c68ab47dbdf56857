package deepseek

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/internal/testutil"
	"github.com/hupe1980/blockmesh/message"
)

func TestTranslate_WeatherScenario(t *testing.T) {
	m := testutil.NewMessageBuilder().
		Text("I'll check the weather").
		Reasoning("User wants weather information...").
		ToolCall("call_123", "get_weather", map[string]any{"location": "SF"}).
		Message()

	got := New().TranslateMessage(m)

	assert.Equal(t, []core.Block{
		core.ReasoningBlock{Reasoning: "User wants weather information..."},
		core.TextBlock{Text: "I'll check the weather"},
		core.ToolCallBlock{ID: "call_123", Name: "get_weather", Args: map[string]any{"location": "SF"}},
	}, got)
}

func TestTranslate_EmptyContentYieldsSingleTextBlock(t *testing.T) {
	m := testutil.NewMessageBuilder().Text("").Message()

	assert.Equal(t, []core.Block{core.TextBlock{Text: ""}}, New().TranslateMessage(m))
}

func TestTranslate_ZeroMessageYieldsSingleTextBlock(t *testing.T) {
	assert.Equal(t, []core.Block{core.TextBlock{}}, New().TranslateMessage(message.Message{}))
}

func TestTranslate_ReasoningContentVariants(t *testing.T) {
	tests := []struct {
		name      string
		reasoning any
		set       bool
		want      []core.Block
	}{
		{name: "absent", want: []core.Block{core.TextBlock{Text: "answer"}}},
		{name: "nil", reasoning: nil, set: true, want: []core.Block{core.TextBlock{Text: "answer"}}},
		{name: "empty", reasoning: "", set: true, want: []core.Block{core.TextBlock{Text: "answer"}}},
		{name: "number", reasoning: 42, set: true, want: []core.Block{core.TextBlock{Text: "answer"}}},
		{name: "bool", reasoning: true, set: true, want: []core.Block{core.TextBlock{Text: "answer"}}},
		{name: "map", reasoning: map[string]any{"text": "x"}, set: true, want: []core.Block{core.TextBlock{Text: "answer"}}},
		{
			name: "whitespace", reasoning: "  \n", set: true,
			want: []core.Block{core.ReasoningBlock{Reasoning: "  \n"}, core.TextBlock{Text: "answer"}},
		},
		{
			name: "text", reasoning: "thinking", set: true,
			want: []core.Block{core.ReasoningBlock{Reasoning: "thinking"}, core.TextBlock{Text: "answer"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewMessageBuilder().Text("answer")
			if tt.set {
				b.Reasoning(tt.reasoning)
			}
			assert.Equal(t, tt.want, New().TranslateMessage(b.Message()))
		})
	}
}

func TestTranslate_StructuredReasoningWithoutLegacyKey(t *testing.T) {
	m := message.NewMessage(message.WithText("a"), message.WithProvider(Tag))
	m.Reasoning = "structured"

	got := New().TranslateMessage(m)

	require.Len(t, got, 2)
	assert.Equal(t, core.ReasoningBlock{Reasoning: "structured"}, got[0])
}

func TestTranslate_PassthroughRecordsForwardedUnchanged(t *testing.T) {
	records := []map[string]any{
		{"type": "text", "text": "hello"},
		{"type": "image_url", "image_url": map[string]any{"url": "https://example.com/a.png"}},
		{"no_type": true},
	}
	m := testutil.NewMessageBuilder().
		Records(records...).
		Reasoning("why").
		ToolCall("c1", "lookup", map[string]any{"q": "x"}).
		Message()

	got := New().TranslateMessage(m)

	require.Len(t, got, 5)
	assert.Equal(t, core.ReasoningBlock{Reasoning: "why"}, got[0])
	for i, r := range records {
		assert.Equal(t, core.PassthroughBlock{Data: r}, got[i+1])
	}
	assert.Equal(t, core.ToolCallBlock{ID: "c1", Name: "lookup", Args: map[string]any{"q": "x"}}, got[4])
}

func TestTranslate_EmptyRecordArrayYieldsNoContentBlock(t *testing.T) {
	m := testutil.NewMessageBuilder().Records().Message()

	assert.Empty(t, New().TranslateMessage(m))
}

func TestTranslate_ToolCallsKeepOrderAndArgs(t *testing.T) {
	args := map[string]any{"nested": map[string]any{"list": []any{1.0, "two"}}, "n": 3}
	m := testutil.NewMessageBuilder().
		Text("").
		ToolCall("b", "second", nil).
		ToolCall("a", "first", args).
		ToolCall("c", "third", map[string]any{}).
		Message()

	got := New().TranslateMessage(m)

	require.Len(t, got, 4)
	assert.Equal(t, core.TextBlock{Text: ""}, got[0])
	calls := core.ToolCalls(got)
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{calls[0].ID, calls[1].ID, calls[2].ID})
	assert.Equal(t, args, calls[1].Args)
	assert.Nil(t, calls[0].Args)
}

func TestTranslate_ReturnsFreshSliceEachCall(t *testing.T) {
	m := testutil.NewMessageBuilder().Text("x").Reasoning("r").Message()
	tr := New()

	first := tr.TranslateMessage(m)
	first[0] = core.TextBlock{Text: "mutated"}
	second := tr.TranslateMessage(m)

	assert.Equal(t, core.ReasoningBlock{Reasoning: "r"}, second[0])
	assert.Equal(t, second, tr.TranslateMessage(m))
}

func TestTranslate_ToolCallArgsAreCopied(t *testing.T) {
	m := testutil.NewMessageBuilder().
		Text("checking").
		ToolCall("call_1", "get_weather", map[string]any{"location": "SF", "opts": map[string]any{"units": "c"}}).
		Message()
	tr := New()

	blocks := tr.TranslateMessage(m)
	require.Len(t, blocks, 2)
	tc := blocks[1].(core.ToolCallBlock)
	tc.Args["location"] = "mutated"
	tc.Args["opts"].(map[string]any)["units"] = "f"

	assert.Equal(t, "SF", m.ToolCalls[0].Args["location"])
	assert.Equal(t, "c", m.ToolCalls[0].Args["opts"].(map[string]any)["units"])
	again := tr.TranslateMessage(m)[1].(core.ToolCallBlock)
	assert.Equal(t, map[string]any{"location": "SF", "opts": map[string]any{"units": "c"}}, again.Args)
}

func TestTranslate_MergedChunks(t *testing.T) {
	c1 := testutil.NewMessageBuilder().Text("").Reasoning("Part 1").Chunk()
	c2 := testutil.NewMessageBuilder().Text("Answer").Reasoning(" Part 2").Chunk()

	got := New().TranslateChunk(c1.Concat(c2))

	assert.Equal(t, []core.Block{
		core.ReasoningBlock{Reasoning: "Part 1 Part 2"},
		core.TextBlock{Text: "Answer"},
	}, got)
}

func TestTranslate_ReasoningOnlyOnLaterChunk(t *testing.T) {
	c1 := testutil.NewMessageBuilder().Text("Ans").Chunk()
	c2 := testutil.NewMessageBuilder().Text("wer").Reasoning("late").Chunk()

	got := New().TranslateChunk(c1.Concat(c2))

	assert.Equal(t, []core.Block{
		core.ReasoningBlock{Reasoning: "late"},
		core.TextBlock{Text: "Answer"},
	}, got)
}

func TestTranslate_StreamedToolCallFragments(t *testing.T) {
	c1 := testutil.NewMessageBuilder().Text("").ToolCallChunk(0, "call_1", "get_weather", `{"loca`).Chunk()
	c2 := testutil.NewMessageBuilder().Text("").ToolCallChunk(0, "", "", `tion": "SF"}`).Chunk()

	got := New().TranslateChunk(c1.Concat(c2))

	assert.Equal(t, []core.Block{
		core.TextBlock{Text: ""},
		core.ToolCallBlock{ID: "call_1", Name: "get_weather", Args: map[string]any{"location": "SF"}},
	}, got)
}

func TestRegistered(t *testing.T) {
	tr, ok := message.Resolve(Tag)
	require.True(t, ok)
	assert.IsType(t, Translator{}, tr)

	m := testutil.NewMessageBuilder().Text("hi").Reasoning("r").Message()
	assert.Equal(t, New().TranslateMessage(m), m.ContentBlocks())

	c := testutil.NewMessageBuilder().Text("hi").Reasoning("r").Chunk()
	assert.Equal(t, New().TranslateChunk(c), c.ContentBlocks())
}

func TestUnregisteredProviderFallsBackToGeneric(t *testing.T) {
	m := testutil.NewMessageBuilder().Provider("someone-else").Text("hi").Reasoning("r").Message()

	assert.Equal(t, []core.Block{core.TextBlock{Text: "hi"}}, m.ContentBlocks())
}
