package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cybermatrixco/strand/internal/script"
)

// printValue writes a script value to w in the requested format.
func printValue(w io.Writer, format string, v script.Value) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		return enc.Encode(valueToJSON(v))
	default:
		_, err := fmt.Fprintln(w, script.Render(v))
		return err
	}
}

// valueToJSON converts a script value into the shape encoding/json expects.
func valueToJSON(v script.Value) any {
	switch val := v.(type) {
	case nil, script.Null:
		return nil
	case script.Bool:
		return bool(val)
	case script.Int:
		return int64(val)
	case script.Str:
		return string(val)
	case script.List:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = valueToJSON(item)
		}
		return out
	case script.Object:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = valueToJSON(item)
		}
		return out
	default:
		return script.Render(v)
	}
}
