package monitor

// Helpers for navigating decoded JSON documents of uneven shape. Agent tools
// drift in casing and nesting between releases, so lookups tolerate missing
// keys and wrong types rather than erroring.

// stringAt walks nested maps along path and returns the string at the leaf,
// or "" when the path is absent or not a string.
func stringAt(value map[string]any, path ...string) string {
	cur := value
	for i, key := range path {
		if i == len(path)-1 {
			s, _ := cur[key].(string)
			return s
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			return ""
		}
		cur = next
	}
	return ""
}

// firstString returns the first non-empty string among the given top-level
// keys.
func firstString(value map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, _ := value[key].(string); s != "" {
			return s
		}
	}
	return ""
}

// numberAt walks nested maps along path and returns the numeric leaf as an
// int64.
func numberAt(value map[string]any, path ...string) (int64, bool) {
	cur := value
	for i, key := range path {
		if i == len(path)-1 {
			return toInt64(cur[key])
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			return 0, false
		}
		cur = next
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func mapAt(value map[string]any, key string) map[string]any {
	m, _ := value[key].(map[string]any)
	return m
}
