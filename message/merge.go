package message

import "fmt"

// identityKeys name string fields that identify rather than accumulate. They
// are carried through from the first non-empty side instead of concatenated.
var identityKeys = map[string]struct{}{
	"id":                 {},
	"type":               {},
	"model":              {},
	"model_name":         {},
	ModelProviderKey:     {},
	"output_version":     {},
	"system_fingerprint": {},
}

// mergeDicts returns a new map combining left and right. Strings concatenate
// in order, nested maps recurse, lists merge by element "index" and any other
// conflicting value keeps the left side. A key missing on one side takes the
// other side's value. Neither input is modified.
func mergeDicts(left, right map[string]any) map[string]any {
	if left == nil && right == nil {
		return nil
	}
	merged := copyMap(left)
	if merged == nil {
		merged = make(map[string]any, len(right))
	}
	for k, rv := range right {
		lv, ok := merged[k]
		if !ok || lv == nil {
			merged[k] = copyValue(rv)
			continue
		}
		if rv == nil {
			continue
		}
		merged[k] = mergeValues(k, lv, rv)
	}
	return merged
}

func mergeValues(key string, lv, rv any) any {
	switch l := lv.(type) {
	case string:
		r, ok := rv.(string)
		if !ok {
			return lv
		}
		if _, identity := identityKeys[key]; identity {
			if l == "" {
				return r
			}
			return l
		}
		return l + r
	case map[string]any:
		if r, ok := rv.(map[string]any); ok {
			return mergeDicts(l, r)
		}
		return lv
	case []any:
		if r, ok := rv.([]any); ok {
			return mergeLists(l, r)
		}
		return lv
	default:
		return lv
	}
}

// mergeLists appends right to left, except that a record carrying an "index"
// already present on the left is merged into that element.
func mergeLists(left, right []any) []any {
	merged := make([]any, 0, len(left)+len(right))
	for _, v := range left {
		merged = append(merged, copyValue(v))
	}
	for _, item := range right {
		if rm, ok := item.(map[string]any); ok {
			if idx, has := rm["index"]; has && idx != nil {
				if i := findByIndex(merged, idx); i >= 0 {
					merged[i] = mergeDicts(merged[i].(map[string]any), rm)
					continue
				}
			}
		}
		merged = append(merged, copyValue(item))
	}
	return merged
}

func findByIndex(items []any, idx any) int {
	want := fmt.Sprint(idx)
	for i, v := range items {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if have, has := m["index"]; has && have != nil && fmt.Sprint(have) == want {
			return i
		}
	}
	return -1
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = copyMap(e)
		}
		return out
	default:
		return v
	}
}
