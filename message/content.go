package message

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Content holds a message body in exactly one of two representations: a
// single string, or an ordered list of records the provider already shaped
// as content blocks. The zero value is the empty string.
type Content struct {
	text     string
	records  []map[string]any
	isRecord bool
}

// StringContent returns string content. The empty string is valid content.
func StringContent(s string) Content { return Content{text: s} }

// BlockContent returns block-array content. The records are kept as given
// and never validated.
func BlockContent(records ...map[string]any) Content {
	cp := make([]map[string]any, len(records))
	copy(cp, records)
	return Content{records: cp, isRecord: true}
}

// IsString reports whether the content uses the string representation.
func (c Content) IsString() bool { return !c.isRecord }

// String returns the string representation, or "" for block-array content.
func (c Content) String() string { return c.text }

// Blocks returns a fresh slice of the block-array records, or nil for string
// content.
func (c Content) Blocks() []map[string]any {
	if !c.isRecord {
		return nil
	}
	out := make([]map[string]any, len(c.records))
	copy(out, c.records)
	return out
}

// MarshalJSON encodes string content as a JSON string and block-array content
// as a JSON array.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.isRecord {
		records := c.records
		if records == nil {
			records = []map[string]any{}
		}
		return json.Marshal(records)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts a string, an array of objects or null.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = Content{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StringContent(s)
		return nil
	case data[0] == '[':
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("content array must hold objects: %w", err)
		}
		*c = Content{records: records, isRecord: true}
		return nil
	default:
		return fmt.Errorf("content must be a string or an array, got %s", data)
	}
}

// concatContent merges two contents. Strings concatenate; otherwise both
// sides are lifted to records and merged by their "index" key. An empty
// string absorbs into the other side.
func concatContent(left, right Content) Content {
	if left.IsString() && right.IsString() {
		return StringContent(left.text + right.text)
	}
	merged := mergeLists(left.asRecords(), right.asRecords())
	records := make([]map[string]any, 0, len(merged))
	for _, m := range merged {
		if r, ok := m.(map[string]any); ok {
			records = append(records, r)
		}
	}
	return Content{records: records, isRecord: true}
}

func (c Content) asRecords() []any {
	if c.isRecord {
		out := make([]any, len(c.records))
		for i, r := range c.records {
			out[i] = r
		}
		return out
	}
	if c.text == "" {
		return nil
	}
	return []any{map[string]any{"type": "text", "text": c.text}}
}
