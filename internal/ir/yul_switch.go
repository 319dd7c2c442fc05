package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// YulSwitch is `switch expr case v { } default { }`.
type YulSwitch struct {
	yulBase
	expression YulNode
	cases      []*YulCase
}

func newYulSwitch(init *InitContext, raw *ast.YulSwitch, parent Node) (*YulSwitch, error) {
	s := &YulSwitch{yulBase: newYulBase(init, raw, parent)}
	var err error
	if s.expression, err = newYulExpression(init, raw.Expression.Node, s); err != nil {
		return nil, err
	}
	for _, c := range raw.Cases {
		yc, err := newYulCase(init, c, s)
		if err != nil {
			return nil, err
		}
		s.cases = append(s.cases, yc)
	}
	return s, nil
}

// Expression is the scrutinee: a YulFunctionCall, YulIdentifier or
// YulLiteral.
func (s *YulSwitch) Expression() YulNode { return s.expression }

// Cases are in source order, the default case included.
func (s *YulSwitch) Cases() []*YulCase { return s.cases }

func (s *YulSwitch) Children() []Node {
	return appendNodes([]Node{s.expression}, s.cases)
}

func (s *YulSwitch) Iterate() iter.Seq[Node] { return iterate(s) }

// YulCase is one arm of a switch. Value is nil for the default case.
type YulCase struct {
	yulBase
	value *YulLiteral
	body  *YulBlock
}

func newYulCase(init *InitContext, raw *ast.YulCase, parent *YulSwitch) (*YulCase, error) {
	c := &YulCase{yulBase: newYulBase(init, raw, parent)}
	if !raw.Value.Default {
		if raw.Value.Literal == nil {
			return nil, init.mismatch(raw, "yul case value")
		}
		c.value = newYulLiteral(init, raw.Value.Literal, c)
	}
	var err error
	if c.body, err = newYulBody(init, raw.Body, c, "yul case body"); err != nil {
		return nil, err
	}
	return c, nil
}

// IsDefault reports whether this is the `default` arm.
func (c *YulCase) IsDefault() bool         { return c.value == nil }
func (c *YulCase) Value() *YulLiteral      { return c.value }
func (c *YulCase) Body() *YulBlock         { return c.body }
func (c *YulCase) Iterate() iter.Seq[Node] { return iterate(c) }

func (c *YulCase) Children() []Node {
	if c.value == nil {
		return []Node{c.body}
	}
	return []Node{c.value, c.body}
}
