package flow

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract returns the value at path in a JSON body.
//
// path is either a gjson path ("data.token") or a simple JSONPath
// ("$.data.token", "$.items[0].id"). A null value counts as absent.
func Extract(body []byte, path string) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("empty body: %w", ErrMissingValue)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("body is not JSON: %w", ErrMissingValue)
	}

	result := gjson.GetBytes(body, toGjsonPath(path))
	if !result.Exists() || result.Type == gjson.Null {
		return "", fmt.Errorf("path %s: %w", path, ErrMissingValue)
	}
	return result.String(), nil
}

// HasField reports whether path resolves to a non-null value in body.
func HasField(body []byte, path string) bool {
	_, err := Extract(body, path)
	return err == nil
}

// toGjsonPath converts a JSONPath expression to gjson syntax.
// Paths without a leading $ are taken as gjson already.
func toGjsonPath(path string) string {
	if !strings.HasPrefix(path, "$") {
		return path
	}

	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// ['name'] and ["name"] become .name
	path = strings.NewReplacer("['", ".", "']", "", `["`, ".", `"]`, "").Replace(path)

	// [n] becomes .n
	var sb strings.Builder
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '[':
			sb.WriteByte('.')
		case ']':
		default:
			sb.WriteByte(path[i])
		}
	}
	return strings.TrimPrefix(sb.String(), ".")
}
