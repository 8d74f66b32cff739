package tools

import (
	"fmt"
	"math"
	"strings"
)

// Pending is returned by tools whose result arrives with a worker
// completion
type Pending struct {
	ID uint64 `json:"worker_id"`
}

func stringParam(params map[string]interface{}, key string) string {
	value, _ := params[key].(string)
	return value
}

func requiredString(params map[string]interface{}, key string) (string, error) {
	value := strings.TrimSpace(stringParam(params, key))
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// intParam reads a JSON number. ok is false when the key is absent.
func intParam(params map[string]interface{}, key string) (value int, ok bool, err error) {
	raw, exists := params[key]
	if !exists || raw == nil {
		return 0, false, nil
	}
	f, isNumber := raw.(float64)
	if !isNumber || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), true, nil
}

func requiredInt(params map[string]interface{}, key string) (int, error) {
	value, ok, err := intParam(params, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func boolParam(params map[string]interface{}, key string) bool {
	value, _ := params[key].(bool)
	return value
}

// listParam reads either a JSON array of strings or a comma-separated string
func listParam(params map[string]interface{}, key string) []string {
	var items []string
	switch value := params[key].(type) {
	case string:
		items = strings.Split(value, ",")
	case []interface{}:
		for _, item := range value {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func property(kind, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        kind,
		"description": description,
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
