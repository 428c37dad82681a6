package mapper

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

func str(raw Raw, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func num(raw Raw, key string) int64 {
	switch v := raw[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case bool:
		if v {
			return 1
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// flag treats any non-zero number or true as set.
func flag(raw Raw, key string) bool {
	if b, ok := raw[key].(bool); ok {
		return b
	}
	return num(raw, key) != 0
}

func obj(raw Raw, key string) Raw {
	if m, ok := raw[key].(map[string]any); ok {
		return m
	}
	return Raw{}
}

func objs(raw Raw, key string) []Raw {
	list, _ := raw[key].([]any)
	out := make([]Raw, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func strs(raw Raw, key string) []string {
	list, _ := raw[key].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// List extracts the objects under key, skipping anything that is not an object.
func List(raw Raw, key string) []Raw {
	return objs(raw, key)
}

// Object extracts the object under key and whether it was present.
func Object(raw Raw, key string) (Raw, bool) {
	m, ok := raw[key].(map[string]any)
	return m, ok
}

// Flag reads a 0/1 or boolean flag.
func Flag(raw Raw, key string) bool {
	return flag(raw, key)
}
