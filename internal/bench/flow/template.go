package flow

import (
	"fmt"
	"regexp"
	"strings"
)

// maxRenderDepth bounds nested placeholder resolution, which also stops
// variables that refer to each other.
const maxRenderDepth = 8

var placeholder = regexp.MustCompile(`\{\{([\w.-]+)\}\}`)

// Render replaces {{name}} placeholders with values from vars in a single
// pass. A value that itself holds placeholders is rendered against the same
// vars, so a variable like "user_{{id}}@test.com" picks up the invocation
// identity. Unknown placeholders are left as-is.
func Render(input string, vars map[string]string) string {
	return render(input, vars, maxRenderDepth)
}

func render(input string, vars map[string]string, depth int) string {
	if depth == 0 || !strings.Contains(input, "{{") {
		return input
	}
	return placeholder.ReplaceAllStringFunc(input, func(m string) string {
		value, ok := vars[m[2:len(m)-2]]
		if !ok {
			return m
		}
		return render(value, vars, depth-1)
	})
}

// RenderMap renders every value of m.
func RenderMap(m map[string]string, vars map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = Render(v, vars)
	}
	return out
}

// renderJSON returns a copy of a decoded JSON tree with every string leaf
// rendered. Values are substituted before encoding, so they are escaped by
// the encoder.
func renderJSON(v interface{}, vars map[string]string) interface{} {
	switch t := v.(type) {
	case string:
		return Render(t, vars)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[Render(k, vars)] = renderJSON(val, vars)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[Render(ks, vars)] = renderJSON(val, vars)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = renderJSON(val, vars)
		}
		return out
	default:
		return v
	}
}

// MergeVars merges variable maps in order. Later maps override earlier ones.
func MergeVars(maps ...map[string]string) map[string]string {
	size := 0
	for _, m := range maps {
		size += len(m)
	}
	result := make(map[string]string, size)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
