package utils

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BuildXML renders a decoded JSON value (the result of json.Unmarshal into
// any) as the XML dialect the Roku channel feed expects:
//
//   - null → empty string
//   - scalars → their literal text
//   - arrays → one <array_elem> element per entry
//   - objects → an <object> element with one child element per key
//
// Object keys are emitted in sorted order so the output is deterministic.
// The function does not escape element content; list payloads are authored
// through the frontend editor, which restricts values to plain text.
func BuildXML(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return fmt.Sprintf("%t", val)
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		var b strings.Builder
		for _, elem := range val {
			b.WriteString("<array_elem>")
			b.WriteString(BuildXML(elem))
			b.WriteString("</array_elem>")
		}
		return b.String()
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString("<object>")
		for _, k := range keys {
			b.WriteString("<" + k + ">")
			b.WriteString(BuildXML(val[k]))
			b.WriteString("</" + k + ">")
		}
		b.WriteString("</object>")
		return b.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
