package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// YulNode is a node of an inline assembly body. Yul nodes carry no
// compiler IDs and are never registered with the resolver.
type YulNode interface {
	Node
	yulNode()
}

type yulBase struct {
	nodeBase
}

func newYulBase(init *InitContext, raw ast.YulNode, parent Node) yulBase {
	return yulBase{nodeBase: newBase(init, raw, parent)}
}

func (*yulBase) yulNode() {}

func yulMismatch(init *InitContext, raw ast.Node, where string) error {
	if raw == nil {
		return init.mismatchKind("<missing>", where)
	}
	return init.mismatch(raw, where)
}

// YulBlock is a `{ ... }` list of Yul statements.
type YulBlock struct {
	yulBase
	statements []YulNode
}

func newYulBlock(init *InitContext, raw *ast.YulBlock, parent Node) (*YulBlock, error) {
	b := &YulBlock{yulBase: newYulBase(init, raw, parent)}
	for _, s := range raw.Statements {
		n, err := newYulStatement(init, s, b)
		if err != nil {
			return nil, err
		}
		b.statements = append(b.statements, n)
	}
	return b, nil
}

func (b *YulBlock) Statements() []YulNode   { return b.statements }
func (b *YulBlock) Children() []Node        { return appendNodes(nil, b.statements) }
func (b *YulBlock) Iterate() iter.Seq[Node] { return iterate(b) }

func newYulStatement(init *InitContext, raw ast.YulNode, parent Node) (YulNode, error) {
	switch r := raw.(type) {
	case *ast.YulBlock:
		return newYulBlock(init, r, parent)
	case *ast.YulSwitch:
		return newYulSwitch(init, r, parent)
	case *ast.YulExpressionStatement:
		return newYulExpressionStatement(init, r, parent)
	case *ast.YulAssignment:
		return newYulAssignment(init, r, parent)
	case *ast.YulVariableDeclaration:
		return newYulVariableDeclaration(init, r, parent)
	case *ast.YulIf:
		return newYulIf(init, r, parent)
	case *ast.YulForLoop:
		return newYulForLoop(init, r, parent)
	case *ast.YulFunctionDefinition:
		return newYulFunctionDefinition(init, r, parent)
	case *ast.YulBreak:
		return &YulBreak{yulBase: newYulBase(init, r, parent)}, nil
	case *ast.YulContinue:
		return &YulContinue{yulBase: newYulBase(init, r, parent)}, nil
	case *ast.YulLeave:
		return &YulLeave{yulBase: newYulBase(init, r, parent)}, nil
	default:
		return nil, yulMismatch(init, raw, "yul statement")
	}
}

// newYulBody builds a required nested block.
func newYulBody(init *InitContext, raw *ast.YulBlock, parent Node, where string) (*YulBlock, error) {
	if raw == nil {
		return nil, init.mismatchKind("<missing>", where)
	}
	return newYulBlock(init, raw, parent)
}

// YulExpressionStatement is a function call used as a statement.
type YulExpressionStatement struct {
	yulBase
	expression YulNode
}

func newYulExpressionStatement(init *InitContext, raw *ast.YulExpressionStatement, parent Node) (*YulExpressionStatement, error) {
	s := &YulExpressionStatement{yulBase: newYulBase(init, raw, parent)}
	var err error
	if s.expression, err = newYulExpression(init, raw.Expression.Node, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *YulExpressionStatement) Expression() YulNode     { return s.expression }
func (s *YulExpressionStatement) Children() []Node        { return []Node{s.expression} }
func (s *YulExpressionStatement) Iterate() iter.Seq[Node] { return iterate(s) }

// YulAssignment is `a, b := f()`.
type YulAssignment struct {
	yulBase
	variableNames []*YulIdentifier
	value         YulNode
}

func newYulAssignment(init *InitContext, raw *ast.YulAssignment, parent Node) (*YulAssignment, error) {
	a := &YulAssignment{yulBase: newYulBase(init, raw, parent)}
	for _, v := range raw.VariableNames {
		a.variableNames = append(a.variableNames, newYulIdentifier(init, v, a))
	}
	var err error
	if a.value, err = newYulExpression(init, raw.Value.Node, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *YulAssignment) VariableNames() []*YulIdentifier { return a.variableNames }
func (a *YulAssignment) Value() YulNode                  { return a.value }
func (a *YulAssignment) Iterate() iter.Seq[Node]         { return iterate(a) }

func (a *YulAssignment) Children() []Node {
	return append(appendNodes(nil, a.variableNames), a.value)
}

// YulVariableDeclaration is `let a, b := f()`. The value is optional.
type YulVariableDeclaration struct {
	yulBase
	variables []*YulTypedName
	value     YulNode
}

func newYulVariableDeclaration(init *InitContext, raw *ast.YulVariableDeclaration, parent Node) (*YulVariableDeclaration, error) {
	d := &YulVariableDeclaration{yulBase: newYulBase(init, raw, parent)}
	for _, v := range raw.Variables {
		d.variables = append(d.variables, newYulTypedName(init, v, d))
	}
	if raw.Value != nil && raw.Value.Node != nil {
		var err error
		if d.value, err = newYulExpression(init, raw.Value.Node, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *YulVariableDeclaration) Variables() []*YulTypedName { return d.variables }
func (d *YulVariableDeclaration) Iterate() iter.Seq[Node]    { return iterate(d) }

// Value is nil for a bare `let x`.
func (d *YulVariableDeclaration) Value() YulNode { return d.value }

func (d *YulVariableDeclaration) Children() []Node {
	out := appendNodes(nil, d.variables)
	if d.value != nil {
		out = append(out, d.value)
	}
	return out
}

// YulTypedName is a declared Yul variable or parameter.
type YulTypedName struct {
	yulBase
	name    string
	typeStr string
}

func newYulTypedName(init *InitContext, raw *ast.YulTypedName, parent Node) *YulTypedName {
	return &YulTypedName{yulBase: newYulBase(init, raw, parent), name: raw.Name, typeStr: raw.Type}
}

func (t *YulTypedName) Name() string            { return t.name }
func (t *YulTypedName) Type() string            { return t.typeStr }
func (t *YulTypedName) Children() []Node        { return nil }
func (t *YulTypedName) Iterate() iter.Seq[Node] { return iterate(t) }

// YulIf is `if cond { ... }`.
type YulIf struct {
	yulBase
	condition YulNode
	body      *YulBlock
}

func newYulIf(init *InitContext, raw *ast.YulIf, parent Node) (*YulIf, error) {
	s := &YulIf{yulBase: newYulBase(init, raw, parent)}
	var err error
	if s.condition, err = newYulExpression(init, raw.Condition.Node, s); err != nil {
		return nil, err
	}
	if s.body, err = newYulBody(init, raw.Body, s, "yul if body"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *YulIf) Condition() YulNode      { return s.condition }
func (s *YulIf) Body() *YulBlock         { return s.body }
func (s *YulIf) Children() []Node        { return []Node{s.condition, s.body} }
func (s *YulIf) Iterate() iter.Seq[Node] { return iterate(s) }

// YulForLoop is `for { pre } cond { post } { body }`.
type YulForLoop struct {
	yulBase
	pre       *YulBlock
	condition YulNode
	post      *YulBlock
	body      *YulBlock
}

func newYulForLoop(init *InitContext, raw *ast.YulForLoop, parent Node) (*YulForLoop, error) {
	l := &YulForLoop{yulBase: newYulBase(init, raw, parent)}
	var err error
	if l.pre, err = newYulBody(init, raw.Pre, l, "yul for pre"); err != nil {
		return nil, err
	}
	if l.condition, err = newYulExpression(init, raw.Condition.Node, l); err != nil {
		return nil, err
	}
	if l.post, err = newYulBody(init, raw.Post, l, "yul for post"); err != nil {
		return nil, err
	}
	if l.body, err = newYulBody(init, raw.Body, l, "yul for body"); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *YulForLoop) Pre() *YulBlock          { return l.pre }
func (l *YulForLoop) Condition() YulNode      { return l.condition }
func (l *YulForLoop) Post() *YulBlock         { return l.post }
func (l *YulForLoop) Body() *YulBlock         { return l.body }
func (l *YulForLoop) Children() []Node        { return []Node{l.pre, l.condition, l.post, l.body} }
func (l *YulForLoop) Iterate() iter.Seq[Node] { return iterate(l) }

// YulFunctionDefinition is a function declared inside assembly.
type YulFunctionDefinition struct {
	yulBase
	name            string
	parameters      []*YulTypedName
	returnVariables []*YulTypedName
	body            *YulBlock
}

func newYulFunctionDefinition(init *InitContext, raw *ast.YulFunctionDefinition, parent Node) (*YulFunctionDefinition, error) {
	f := &YulFunctionDefinition{yulBase: newYulBase(init, raw, parent), name: raw.Name}
	for _, p := range raw.Parameters {
		f.parameters = append(f.parameters, newYulTypedName(init, p, f))
	}
	for _, r := range raw.ReturnVariables {
		f.returnVariables = append(f.returnVariables, newYulTypedName(init, r, f))
	}
	var err error
	if f.body, err = newYulBody(init, raw.Body, f, "yul function body"); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *YulFunctionDefinition) Name() string                     { return f.name }
func (f *YulFunctionDefinition) Parameters() []*YulTypedName      { return f.parameters }
func (f *YulFunctionDefinition) ReturnVariables() []*YulTypedName { return f.returnVariables }
func (f *YulFunctionDefinition) Body() *YulBlock                  { return f.body }
func (f *YulFunctionDefinition) Iterate() iter.Seq[Node]          { return iterate(f) }

func (f *YulFunctionDefinition) Children() []Node {
	out := appendNodes(nil, f.parameters)
	out = appendNodes(out, f.returnVariables)
	return append(out, f.body)
}

type YulBreak struct{ yulBase }

func (b *YulBreak) Children() []Node        { return nil }
func (b *YulBreak) Iterate() iter.Seq[Node] { return iterate(b) }

type YulContinue struct{ yulBase }

func (c *YulContinue) Children() []Node        { return nil }
func (c *YulContinue) Iterate() iter.Seq[Node] { return iterate(c) }

type YulLeave struct{ yulBase }

func (l *YulLeave) Children() []Node        { return nil }
func (l *YulLeave) Iterate() iter.Seq[Node] { return iterate(l) }
