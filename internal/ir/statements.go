package ir

import (
	"encoding/json"
	"iter"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/resolver"
)

// Opaque is a statement, expression or type name without a dedicated model.
// The compiler node is kept as-is and has no IR children.
type Opaque struct {
	nodeBase
	kind string
	data json.RawMessage
}

func newOpaque(init *InitContext, raw *ast.Opaque, parent Node) (*Opaque, error) {
	o := &Opaque{
		nodeBase: newBase(init, raw, parent),
		kind:     raw.NodeType(),
		data:     raw.Raw,
	}
	if err := init.register(raw, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Kind is the compiler nodeType, e.g. "ExpressionStatement".
func (o *Opaque) Kind() string { return o.kind }

// JSON returns the compiler node as it was decoded.
func (o *Opaque) JSON() json.RawMessage   { return o.data }
func (o *Opaque) Children() []Node        { return nil }
func (o *Opaque) Iterate() iter.Seq[Node] { return iterate(o) }

// Identifier is a bare name expression.
type Identifier struct {
	nodeBase
	name string
	ref  resolver.Ref[Node]
}

func newIdentifier(init *InitContext, raw *ast.Identifier, parent Node) (*Identifier, error) {
	id := &Identifier{
		nodeBase: newBase(init, raw, parent),
		name:     raw.Name,
		ref:      resolver.Unresolved[Node](int64(raw.ReferencedDeclaration)),
	}
	if err := init.register(raw, id); err != nil {
		return nil, err
	}
	if err := trackReference(init, id, &id.ref); err != nil {
		return nil, err
	}
	return id, nil
}

func (i *Identifier) Name() string             { return i.name }
func (i *Identifier) ReferencedID() ast.NodeID { return ast.NodeID(i.ref.ID()) }
func (i *Identifier) Children() []Node         { return nil }
func (i *Identifier) Iterate() iter.Seq[Node]  { return iterate(i) }

// ReferencedDeclaration returns the named declaration. Built-in names such
// as `msg` or `this` never resolve.
func (i *Identifier) ReferencedDeclaration() (Node, error) {
	return resolvedTarget(i.ref, i.init.Unit)
}

func newExpression(init *InitContext, raw ast.Node, parent Node) (Node, error) {
	switch r := raw.(type) {
	case *ast.Identifier:
		return newIdentifier(init, r, parent)
	case *ast.Opaque:
		return newOpaque(init, r, parent)
	default:
		return nil, init.mismatch(raw, "expression")
	}
}

func newExpressions(init *InitContext, raws ast.List, parent Node) ([]Node, error) {
	out := make([]Node, 0, len(raws))
	for _, raw := range raws {
		n, err := newExpression(init, raw, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func newStatement(init *InitContext, raw ast.Node, parent Node) (Node, error) {
	switch r := raw.(type) {
	case *ast.Block:
		return newBlock(init, r, parent)
	case *ast.UncheckedBlock:
		return newUncheckedBlock(init, r, parent)
	case *ast.PlaceholderStatement:
		return newPlaceholderStatement(init, r, parent)
	case *ast.InlineAssembly:
		return newInlineAssembly(init, r, parent)
	case *ast.Opaque:
		return newOpaque(init, r, parent)
	default:
		return nil, init.mismatch(raw, "statement")
	}
}

func newStatements(init *InitContext, raws ast.List, parent Node) ([]Node, error) {
	out := make([]Node, 0, len(raws))
	for _, raw := range raws {
		n, err := newStatement(init, raw, parent)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Block is a `{ ... }` statement list.
type Block struct {
	nodeBase
	statements []Node
}

func newBlock(init *InitContext, raw *ast.Block, parent Node) (*Block, error) {
	b := &Block{nodeBase: newBase(init, raw, parent)}
	if err := init.register(raw, b); err != nil {
		return nil, err
	}
	var err error
	if b.statements, err = newStatements(init, raw.Statements, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Block) Statements() []Node      { return b.statements }
func (b *Block) Children() []Node        { return b.statements }
func (b *Block) Iterate() iter.Seq[Node] { return iterate(b) }

// UncheckedBlock is an `unchecked { ... }` statement list.
type UncheckedBlock struct {
	nodeBase
	statements []Node
}

func newUncheckedBlock(init *InitContext, raw *ast.UncheckedBlock, parent Node) (*UncheckedBlock, error) {
	b := &UncheckedBlock{nodeBase: newBase(init, raw, parent)}
	if err := init.register(raw, b); err != nil {
		return nil, err
	}
	var err error
	if b.statements, err = newStatements(init, raw.Statements, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *UncheckedBlock) Statements() []Node      { return b.statements }
func (b *UncheckedBlock) Children() []Node        { return b.statements }
func (b *UncheckedBlock) Iterate() iter.Seq[Node] { return iterate(b) }

// PlaceholderStatement is `_;` in a modifier body.
type PlaceholderStatement struct {
	nodeBase
}

func newPlaceholderStatement(init *InitContext, raw *ast.PlaceholderStatement, parent Node) (*PlaceholderStatement, error) {
	p := &PlaceholderStatement{nodeBase: newBase(init, raw, parent)}
	if err := init.register(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PlaceholderStatement) Children() []Node        { return nil }
func (p *PlaceholderStatement) Iterate() iter.Seq[Node] { return iterate(p) }

// InlineAssembly is an `assembly { ... }` statement owning a Yul body.
type InlineAssembly struct {
	nodeBase
	body       *YulBlock
	evmVersion string
	flags      []string
}

func newInlineAssembly(init *InitContext, raw *ast.InlineAssembly, parent Node) (*InlineAssembly, error) {
	a := &InlineAssembly{
		nodeBase:   newBase(init, raw, parent),
		evmVersion: raw.EVMVersion,
		flags:      raw.Flags,
	}
	if err := init.register(raw, a); err != nil {
		return nil, err
	}
	if raw.AST == nil {
		return nil, init.mismatch(raw, "inline assembly body")
	}
	body, err := newYulBlock(init, raw.AST, a)
	if err != nil {
		return nil, err
	}
	a.body = body
	return a, nil
}

// Body is the Yul block. It is never nil.
func (a *InlineAssembly) Body() *YulBlock         { return a.body }
func (a *InlineAssembly) EVMVersion() string      { return a.evmVersion }
func (a *InlineAssembly) Flags() []string         { return a.flags }
func (a *InlineAssembly) Children() []Node        { return []Node{a.body} }
func (a *InlineAssembly) Iterate() iter.Seq[Node] { return iterate(a) }
