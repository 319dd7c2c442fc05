package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// CompilerMessage is an entry of the standard-JSON "errors" array.
type CompilerMessage struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage,omitempty"`
}

// SourceOutput is one entry of the standard-JSON "sources" object.
type SourceOutput struct {
	ID  int         `json:"id"`
	AST *SourceUnit `json:"ast"`
}

// StandardOutput is the subset of solc's --standard-json output needed to
// build the IR of one compilation unit.
type StandardOutput struct {
	Sources map[string]SourceOutput `json:"sources"`
	Errors  []CompilerMessage       `json:"errors,omitempty"`
}

// Paths returns the source paths ordered by their solc file index.
func (o *StandardOutput) Paths() []string {
	paths := make([]string, 0, len(o.Sources))
	for p := range o.Sources {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return o.Sources[paths[i]].ID < o.Sources[paths[j]].ID
	})
	return paths
}

// HasErrors reports whether the compiler emitted any error-severity message.
func (o *StandardOutput) HasErrors() bool {
	for _, m := range o.Errors {
		if m.Severity == "error" {
			return true
		}
	}
	return false
}

// LoadStandardOutput reads a standard-JSON compiler output. Leading non-JSON
// text (solc banners, warnings printed to stdout) is skipped.
func LoadStandardOutput(r io.Reader) (*StandardOutput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read compiler output: %w", err)
	}
	start := bytes.IndexByte(data, '{')
	if start == -1 {
		return nil, fmt.Errorf("no JSON object in compiler output")
	}

	var out StandardOutput
	if err := json.Unmarshal(data[start:], &out); err != nil {
		return nil, fmt.Errorf("decode compiler output: %w", err)
	}
	for path, src := range out.Sources {
		if src.AST == nil {
			return nil, fmt.Errorf("source %s has no AST (was outputSelection missing \"ast\"?)", path)
		}
	}
	return &out, nil
}

// DecodeSourceUnit decodes a single SourceUnit AST.
func DecodeSourceUnit(data []byte) (*SourceUnit, error) {
	n, err := Decode(data)
	if err != nil {
		return nil, err
	}
	su, ok := n.(*SourceUnit)
	if !ok {
		return nil, fmt.Errorf("expected SourceUnit, got %s", n.NodeType())
	}
	return su, nil
}
