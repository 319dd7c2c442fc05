package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/solir/internal/ast"
)

// marshalLinearized converts a linearization to JSON TEXT for storage.
// HTML escaping is disabled so the column matches the compiler's own output.
func marshalLinearized(ids []ast.NodeID) (string, error) {
	if ids == nil {
		ids = []ast.NodeID{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ids); err != nil {
		return "", fmt.Errorf("marshal linearization: %w", err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalLinearized parses JSON TEXT back into node IDs.
func unmarshalLinearized(data string) ([]int64, error) {
	if data == "" || data == "[]" {
		return []int64{}, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal linearization: %w", err)
	}
	return ids, nil
}
