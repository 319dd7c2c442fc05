package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// newYulExpression builds a function call, identifier or literal. Any
// other node kind is a schema mismatch.
func newYulExpression(init *InitContext, raw ast.YulNode, parent Node) (YulNode, error) {
	switch r := raw.(type) {
	case *ast.YulFunctionCall:
		return newYulFunctionCall(init, r, parent)
	case *ast.YulIdentifier:
		return newYulIdentifier(init, r, parent), nil
	case *ast.YulLiteral:
		return newYulLiteral(init, r, parent), nil
	default:
		return nil, yulMismatch(init, raw, "yul expression")
	}
}

// YulFunctionCall is a call to a builtin or user-defined Yul function.
type YulFunctionCall struct {
	yulBase
	functionName *YulIdentifier
	arguments    []YulNode
}

func newYulFunctionCall(init *InitContext, raw *ast.YulFunctionCall, parent Node) (*YulFunctionCall, error) {
	c := &YulFunctionCall{yulBase: newYulBase(init, raw, parent)}
	if raw.FunctionName == nil {
		return nil, init.mismatch(raw, "yul function name")
	}
	c.functionName = newYulIdentifier(init, raw.FunctionName, c)
	for _, a := range raw.Arguments {
		arg, err := newYulExpression(init, a, c)
		if err != nil {
			return nil, err
		}
		c.arguments = append(c.arguments, arg)
	}
	return c, nil
}

func (c *YulFunctionCall) FunctionName() *YulIdentifier { return c.functionName }
func (c *YulFunctionCall) Arguments() []YulNode         { return c.arguments }
func (c *YulFunctionCall) Iterate() iter.Seq[Node]      { return iterate(c) }

func (c *YulFunctionCall) Children() []Node {
	return appendNodes([]Node{c.functionName}, c.arguments)
}

// YulIdentifier is a name inside assembly.
type YulIdentifier struct {
	yulBase
	name string
}

func newYulIdentifier(init *InitContext, raw *ast.YulIdentifier, parent Node) *YulIdentifier {
	return &YulIdentifier{yulBase: newYulBase(init, raw, parent), name: raw.Name}
}

func (i *YulIdentifier) Name() string            { return i.name }
func (i *YulIdentifier) Children() []Node        { return nil }
func (i *YulIdentifier) Iterate() iter.Seq[Node] { return iterate(i) }

// YulLiteral is a number, string or bool literal.
type YulLiteral struct {
	yulBase
	kind     string
	value    string
	hexValue string
	typeStr  string
}

func newYulLiteral(init *InitContext, raw *ast.YulLiteral, parent Node) *YulLiteral {
	return &YulLiteral{
		yulBase:  newYulBase(init, raw, parent),
		kind:     raw.Kind,
		value:    raw.Value,
		hexValue: raw.HexValue,
		typeStr:  raw.Type,
	}
}

func (l *YulLiteral) Kind() string            { return l.kind }
func (l *YulLiteral) Value() string           { return l.value }
func (l *YulLiteral) HexValue() string        { return l.hexValue }
func (l *YulLiteral) Type() string            { return l.typeStr }
func (l *YulLiteral) Children() []Node        { return nil }
func (l *YulLiteral) Iterate() iter.Seq[Node] { return iterate(l) }
