package message_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blockmesh/core"
	"github.com/hupe1980/blockmesh/internal/testutil"
	"github.com/hupe1980/blockmesh/message"
)

func constTranslator(text string) message.Translator {
	return message.TranslatorFuncs{Message: func(message.Message) []core.Block {
		return []core.Block{core.TextBlock{Text: text}}
	}}
}

func TestRegistry_RegisterResolve(t *testing.T) {
	r := message.NewRegistry()

	_, ok := r.Resolve("acme")
	assert.False(t, ok)

	r.Register("acme", constTranslator("one"))
	tr, ok := r.Resolve("acme")
	require.True(t, ok)
	assert.Equal(t, []core.Block{core.TextBlock{Text: "one"}}, tr.TranslateMessage(message.Message{}))
	assert.Equal(t, []string{"acme"}, r.Tags())
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := message.NewRegistry()
	r.Register("acme", constTranslator("one"))
	r.Register("acme", constTranslator("two"))

	m := testutil.NewMessageBuilder().Provider("acme").Text("x").Message()

	assert.Equal(t, []core.Block{core.TextBlock{Text: "two"}}, r.TranslateMessage(m))
	assert.Len(t, r.Tags(), 1)
}

func TestRegistry_FallbackToGeneric(t *testing.T) {
	r := message.NewRegistry()
	m := testutil.NewMessageBuilder().
		Provider("unknown").
		Text("hello").
		Reasoning("ignored by generic").
		ToolCall("c1", "f", map[string]any{"a": 1}).
		Message()

	assert.Equal(t, []core.Block{
		core.TextBlock{Text: "hello"},
		core.ToolCallBlock{ID: "c1", Name: "f", Args: map[string]any{"a": 1}},
	}, r.TranslateMessage(m))
}

func TestRegistry_TranslateChunkUsesChunkFunc(t *testing.T) {
	r := message.NewRegistry()
	r.Register("acme", message.TranslatorFuncs{
		Message: func(message.Message) []core.Block { return []core.Block{core.TextBlock{Text: "message"}} },
		Chunk:   func(message.Chunk) []core.Block { return []core.Block{core.TextBlock{Text: "chunk"}} },
	})
	c := testutil.NewMessageBuilder().Provider("acme").Chunk()

	assert.Equal(t, []core.Block{core.TextBlock{Text: "chunk"}}, r.TranslateChunk(c))
	assert.Equal(t, []core.Block{core.TextBlock{Text: "message"}}, r.TranslateMessage(c.ToMessage()))
}

func TestRegistry_ConcurrentReadsAfterRegistration(t *testing.T) {
	r := message.NewRegistry()
	r.Register("acme", constTranslator("x"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Resolve("acme")
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestGenericTranslator(t *testing.T) {
	g := message.GenericTranslator{}

	assert.Empty(t, g.TranslateMessage(message.NewMessage(message.WithText(""))))

	records := []map[string]any{{"type": "thinking", "thinking": "t"}, {"type": "text", "text": "a"}}
	got := g.TranslateChunk(message.NewChunk(message.WithContent(message.BlockContent(records...))))
	assert.Equal(t, []core.Block{
		core.PassthroughBlock{Data: records[0]},
		core.PassthroughBlock{Data: records[1]},
	}, got)
}

func TestGenericTranslator_ToolCallArgsAreCopied(t *testing.T) {
	m := message.NewMessage(
		message.WithText("ok"),
		message.WithToolCalls(core.ToolCall{ID: "c1", Name: "f", Args: map[string]any{"location": "SF"}}),
	)
	g := message.GenericTranslator{}

	blocks := g.TranslateMessage(m)
	require.Len(t, blocks, 2)
	blocks[1].(core.ToolCallBlock).Args["location"] = "mutated"

	assert.Equal(t, "SF", m.ToolCalls[0].Args["location"])
	assert.Equal(t, "SF", g.TranslateMessage(m)[1].(core.ToolCallBlock).Args["location"])
}
