package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/solir/internal/diag"
)

// NodeID is a compiler-assigned node ID, unique within a compilation unit.
// Built-in symbols (this, msg, ...) use negative IDs.
type NodeID int64

// Src is a decoded "offset:length:fileIndex" source location.
type Src struct {
	Offset    int
	Length    int
	FileIndex int
}

// End returns the exclusive end offset.
func (s Src) End() int { return s.Offset + s.Length }

// ParseSrc parses a solc source location string.
func ParseSrc(s string) (Src, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Src{}, fmt.Errorf("invalid src %q: want offset:length:file", s)
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Src{}, fmt.Errorf("invalid src %q: %w", s, err)
		}
		vals[i] = v
	}
	return Src{Offset: vals[0], Length: vals[1], FileIndex: vals[2]}, nil
}

// UnmarshalJSON decodes the string form.
func (s *Src) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseSrc(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalJSON encodes the string form.
func (s Src) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%d:%d:%d", s.Offset, s.Length, s.FileIndex))
}

// Node is any raw compiler AST node, Solidity or Yul.
type Node interface {
	NodeType() string
	Source() Src
}

// Identified is a Solidity node carrying a compiler ID. Yul nodes have none.
type Identified interface {
	Node
	NodeID() NodeID
}

// Base holds the fields common to every Solidity node.
type Base struct {
	ID   NodeID `json:"id"`
	Type string `json:"nodeType"`
	Src  Src    `json:"src"`
}

func (b *Base) NodeID() NodeID   { return b.ID }
func (b *Base) NodeType() string { return b.Type }
func (b *Base) Source() Src      { return b.Src }

// header is decoded first to pick the concrete type.
type header struct {
	ID   NodeID `json:"id"`
	Type string `json:"nodeType"`
}

var factories = map[string]func() Node{
	"SourceUnit":                     func() Node { return new(SourceUnit) },
	"PragmaDirective":                func() Node { return new(PragmaDirective) },
	"ImportDirective":                func() Node { return new(ImportDirective) },
	"ContractDefinition":             func() Node { return new(ContractDefinition) },
	"InheritanceSpecifier":           func() Node { return new(InheritanceSpecifier) },
	"IdentifierPath":                 func() Node { return new(IdentifierPath) },
	"UserDefinedTypeName":            func() Node { return new(UserDefinedTypeName) },
	"Identifier":                     func() Node { return new(Identifier) },
	"UsingForDirective":              func() Node { return new(UsingForDirective) },
	"StructuredDocumentation":        func() Node { return new(StructuredDocumentation) },
	"FunctionDefinition":             func() Node { return new(FunctionDefinition) },
	"ModifierDefinition":             func() Node { return new(ModifierDefinition) },
	"ModifierInvocation":             func() Node { return new(ModifierInvocation) },
	"ParameterList":                  func() Node { return new(ParameterList) },
	"VariableDeclaration":            func() Node { return new(VariableDeclaration) },
	"EnumDefinition":                 func() Node { return new(EnumDefinition) },
	"EnumValue":                      func() Node { return new(EnumValue) },
	"ErrorDefinition":                func() Node { return new(ErrorDefinition) },
	"EventDefinition":                func() Node { return new(EventDefinition) },
	"StructDefinition":               func() Node { return new(StructDefinition) },
	"UserDefinedValueTypeDefinition": func() Node { return new(UserDefinedValueTypeDefinition) },
	"Block":                          func() Node { return new(Block) },
	"UncheckedBlock":                 func() Node { return new(UncheckedBlock) },
	"PlaceholderStatement":           func() Node { return new(PlaceholderStatement) },
	"InlineAssembly":                 func() Node { return new(InlineAssembly) },
}

// opaqueKinds are the remaining solc node kinds. They are recognized but
// carried without a dedicated model.
var opaqueKinds = []string{
	// statements
	"Break", "Continue", "DoWhileStatement", "EmitStatement",
	"ExpressionStatement", "ForStatement", "IfStatement", "Return",
	"RevertStatement", "Throw", "TryStatement", "TryCatchClause",
	"VariableDeclarationStatement", "WhileStatement",
	// expressions
	"Assignment", "BinaryOperation", "Conditional",
	"ElementaryTypeNameExpression", "FunctionCall", "FunctionCallOptions",
	"IndexAccess", "IndexRangeAccess", "Literal", "MemberAccess",
	"NewExpression", "TupleExpression", "UnaryOperation",
	// type names
	"ArrayTypeName", "ElementaryTypeName", "FunctionTypeName", "Mapping",
	// misc
	"OverrideSpecifier",
}

func init() {
	for _, kind := range opaqueKinds {
		factories[kind] = func() Node { return new(Opaque) }
	}
}

// Decode decodes one Solidity node, dispatching on its nodeType.
// An unknown nodeType is a schema mismatch.
func Decode(data []byte) (Node, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode node header: %w", err)
	}
	newNode, ok := factories[h.Type]
	if !ok {
		return nil, diag.SchemaMismatch("", int64(h.ID), h.Type, "solidity AST")
	}
	n := newNode()
	if err := json.Unmarshal(data, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Any holds a single polymorphic child node.
type Any struct {
	Node Node
}

func (a *Any) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	n, err := Decode(b)
	if err != nil {
		return err
	}
	a.Node = n
	return nil
}

func (a Any) MarshalJSON() ([]byte, error) { return json.Marshal(a.Node) }

// List is an ordered list of polymorphic child nodes.
type List []Node

func (l *List) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for _, raw := range raws {
		if bytes.Equal(raw, []byte("null")) {
			// solc emits null for omitted tuple components
			continue
		}
		n, err := Decode(raw)
		if err != nil {
			return err
		}
		out = append(out, n)
	}
	*l = out
	return nil
}

// Opaque is a recognized node kind that has no dedicated model.
// The raw JSON is retained for consumers that need the fields.
type Opaque struct {
	Base
	Raw json.RawMessage `json:"-"`
}

func (o *Opaque) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &o.Base); err != nil {
		return err
	}
	o.Raw = append(json.RawMessage(nil), b...)
	return nil
}

func (o *Opaque) MarshalJSON() ([]byte, error) { return o.Raw, nil }
