package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/solir/internal/diag"
)

// YulNode is a raw inline-assembly node. Yul nodes carry no IDs.
type YulNode interface {
	Node
	yulNode()
}

// YulBase holds the fields common to every Yul node.
type YulBase struct {
	Type      string `json:"nodeType"`
	Src       Src    `json:"src"`
	NativeSrc *Src   `json:"nativeSrc,omitempty"`
}

func (b *YulBase) NodeType() string { return b.Type }
func (b *YulBase) Source() Src      { return b.Src }
func (b *YulBase) yulNode()         {}

var yulFactories = map[string]func() YulNode{
	"YulBlock":               func() YulNode { return new(YulBlock) },
	"YulSwitch":              func() YulNode { return new(YulSwitch) },
	"YulCase":                func() YulNode { return new(YulCase) },
	"YulFunctionCall":        func() YulNode { return new(YulFunctionCall) },
	"YulIdentifier":          func() YulNode { return new(YulIdentifier) },
	"YulLiteral":             func() YulNode { return new(YulLiteral) },
	"YulExpressionStatement": func() YulNode { return new(YulExpressionStatement) },
	"YulAssignment":          func() YulNode { return new(YulAssignment) },
	"YulVariableDeclaration": func() YulNode { return new(YulVariableDeclaration) },
	"YulTypedName":           func() YulNode { return new(YulTypedName) },
	"YulIf":                  func() YulNode { return new(YulIf) },
	"YulForLoop":             func() YulNode { return new(YulForLoop) },
	"YulFunctionDefinition":  func() YulNode { return new(YulFunctionDefinition) },
	"YulBreak":               func() YulNode { return new(YulBreak) },
	"YulContinue":            func() YulNode { return new(YulContinue) },
	"YulLeave":               func() YulNode { return new(YulLeave) },
}

// DecodeYul decodes one Yul node, dispatching on its nodeType.
func DecodeYul(data []byte) (YulNode, error) {
	var h struct {
		Type string `json:"nodeType"`
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode yul header: %w", err)
	}
	newNode, ok := yulFactories[h.Type]
	if !ok {
		return nil, diag.SchemaMismatch("", diag.NoID, h.Type, "yul AST")
	}
	n := newNode()
	if err := json.Unmarshal(data, n); err != nil {
		return nil, err
	}
	return n, nil
}

// YulAny holds a single polymorphic Yul child.
type YulAny struct {
	Node YulNode
}

func (a *YulAny) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	n, err := DecodeYul(b)
	if err != nil {
		return err
	}
	a.Node = n
	return nil
}

// YulList is an ordered list of polymorphic Yul children.
type YulList []YulNode

func (l *YulList) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(YulList, 0, len(raws))
	for _, raw := range raws {
		n, err := DecodeYul(raw)
		if err != nil {
			return err
		}
		out = append(out, n)
	}
	*l = out
	return nil
}

type YulBlock struct {
	YulBase
	Statements YulList `json:"statements"`
}

// YulSwitch's Expression is a YulFunctionCall, YulIdentifier or YulLiteral.
type YulSwitch struct {
	YulBase
	Expression YulAny     `json:"expression"`
	Cases      []*YulCase `json:"cases"`
}

// YulCaseValue is either the string "default" or a literal.
type YulCaseValue struct {
	Default bool
	Literal *YulLiteral
}

func (v *YulCaseValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s != "default" {
			return diag.SchemaMismatch("", diag.NoID, s, "yul case value")
		}
		v.Default = true
		return nil
	}
	n, err := DecodeYul(b)
	if err != nil {
		return err
	}
	lit, ok := n.(*YulLiteral)
	if !ok {
		return diag.SchemaMismatch("", diag.NoID, n.NodeType(), "yul case value")
	}
	v.Literal = lit
	return nil
}

type YulCase struct {
	YulBase
	Value YulCaseValue `json:"value"`
	Body  *YulBlock    `json:"body"`
}

type YulFunctionCall struct {
	YulBase
	FunctionName *YulIdentifier `json:"functionName"`
	Arguments    YulList        `json:"arguments"`
}

type YulIdentifier struct {
	YulBase
	Name string `json:"name"`
}

// YulLiteral's Kind is "number", "string" or "bool".
type YulLiteral struct {
	YulBase
	Kind     string `json:"kind"`
	Value    string `json:"value,omitempty"`
	HexValue string `json:"hexValue,omitempty"`
	Type     string `json:"type"`
}

type YulExpressionStatement struct {
	YulBase
	Expression YulAny `json:"expression"`
}

type YulAssignment struct {
	YulBase
	VariableNames []*YulIdentifier `json:"variableNames"`
	Value         YulAny           `json:"value"`
}

type YulVariableDeclaration struct {
	YulBase
	Variables []*YulTypedName `json:"variables"`
	Value     *YulAny         `json:"value"`
}

type YulTypedName struct {
	YulBase
	Name string `json:"name"`
	Type string `json:"type"`
}

type YulIf struct {
	YulBase
	Condition YulAny    `json:"condition"`
	Body      *YulBlock `json:"body"`
}

type YulForLoop struct {
	YulBase
	Pre       *YulBlock `json:"pre"`
	Condition YulAny    `json:"condition"`
	Post      *YulBlock `json:"post"`
	Body      *YulBlock `json:"body"`
}

type YulFunctionDefinition struct {
	YulBase
	Name            string          `json:"name"`
	Parameters      []*YulTypedName `json:"parameters,omitempty"`
	ReturnVariables []*YulTypedName `json:"returnVariables,omitempty"`
	Body            *YulBlock       `json:"body"`
}

type YulBreak struct{ YulBase }

type YulContinue struct{ YulBase }

type YulLeave struct{ YulBase }
