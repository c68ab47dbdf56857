package core

import (
	"encoding/json"
	"testing"
)

func TestBlock_Types(t *testing.T) {
	cases := []struct {
		block Block
		want  BlockType
	}{
		{ReasoningBlock{Reasoning: "r"}, BlockTypeReasoning},
		{TextBlock{}, BlockTypeText},
		{ToolCallBlock{ID: "c1"}, BlockTypeToolCall},
		{PassthroughBlock{Data: map[string]any{"type": "image", "url": "x"}}, "image"},
		{PassthroughBlock{Data: map[string]any{"type": 42}}, ""},
		{PassthroughBlock{}, ""},
	}
	for _, c := range cases {
		if got := c.block.BlockType(); got != c.want {
			t.Errorf("BlockType(%#v) = %q, want %q", c.block, got, c.want)
		}
	}
}

func TestBlock_MarshalJSON(t *testing.T) {
	blocks := []Block{
		ReasoningBlock{Reasoning: "think"},
		TextBlock{Text: ""},
		ToolCallBlock{ID: "call_1", Name: "get_weather", Args: map[string]any{"location": "SF"}},
		ToolCallBlock{ID: "call_2", Name: "noop"},
		PassthroughBlock{Data: map[string]any{"type": "image_url", "image_url": "http://x"}},
	}
	b, err := json.Marshal(blocks)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"type":"reasoning","reasoning":"think"},` +
		`{"type":"text","text":""},` +
		`{"type":"tool_call","id":"call_1","name":"get_weather","args":{"location":"SF"}},` +
		`{"type":"tool_call","id":"call_2","name":"noop","args":{}},` +
		`{"image_url":"http://x","type":"image_url"}]`
	if string(b) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", b, want)
	}
}

func TestBlock_Helpers(t *testing.T) {
	blocks := []Block{
		ReasoningBlock{Reasoning: "a"},
		TextBlock{Text: "hello "},
		PassthroughBlock{Data: map[string]any{"type": "text", "text": "ignored"}},
		TextBlock{Text: "world"},
		ToolCallBlock{ID: "1", Name: "f"},
		ReasoningBlock{Reasoning: "b"},
		ToolCallBlock{ID: "2", Name: "g"},
	}
	if got := Text(blocks); got != "hello world" {
		t.Errorf("Text = %q", got)
	}
	if got := Reasoning(blocks); got != "ab" {
		t.Errorf("Reasoning = %q", got)
	}
	calls := ToolCalls(blocks)
	if len(calls) != 2 || calls[0].ID != "1" || calls[1].ID != "2" {
		t.Errorf("ToolCalls = %+v", calls)
	}
	if ToolCalls(nil) != nil {
		t.Error("ToolCalls(nil) should be nil")
	}
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestCopyArgs_Deep(t *testing.T) {
	args := map[string]any{
		"location": "Berlin",
		"opts":     map[string]any{"units": "c"},
		"tags":     []any{"a", map[string]any{"k": "v"}},
	}

	cp := CopyArgs(args)
	cp["location"] = "Paris"
	cp["opts"].(map[string]any)["units"] = "f"
	cp["tags"].([]any)[1].(map[string]any)["k"] = "w"

	if args["location"] != "Berlin" {
		t.Errorf("location changed: %v", args["location"])
	}
	if args["opts"].(map[string]any)["units"] != "c" {
		t.Errorf("nested map aliased")
	}
	if args["tags"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Errorf("nested slice aliased")
	}
	if CopyArgs(nil) != nil {
		t.Errorf("CopyArgs(nil) should be nil")
	}
}
