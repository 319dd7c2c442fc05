package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/diag"
	"github.com/roach88/solir/internal/resolver"
)

// Reference is a node naming another declaration by compiler ID.
type Reference interface {
	Node
	// ReferencedID is the compiler ID of the target.
	ReferencedID() ast.NodeID
	// ReferencedDeclaration returns the target. It fails with
	// diag.CodeDanglingReference until post-processing has run.
	ReferencedDeclaration() (Node, error)
}

// trackReference queues the resolution of ref. After post-processing the
// target holds self in its References index until self's file is invalidated.
func trackReference(init *InitContext, self Node, ref *resolver.Ref[Node]) error {
	if ref.ID() < 0 {
		// built-in symbol, nothing to link
		return nil
	}
	return init.postProcess(func(resolver.CallbackParams[Node]) error {
		target, err := init.Resolver.Resolve(init.Unit, ref.ID())
		if err != nil {
			return err
		}
		ref.Resolve(target)

		decl, ok := target.(Declaration)
		if !ok {
			init.onDestroy(func() error {
				ref.Reset()
				return nil
			})
			return nil
		}
		decl.decl().addReference(self)
		init.onDestroy(func() error {
			ref.Reset()
			return decl.decl().removeReference(self)
		})
		return nil
	})
}

func resolvedTarget(ref resolver.Ref[Node], unit resolver.UnitID) (Node, error) {
	n, ok := ref.Resolved()
	if !ok {
		return nil, diag.DanglingReference(string(unit), ref.ID())
	}
	return n, nil
}

// IdentifierPath is a possibly dotted name such as `Base` or `Lib.S`.
type IdentifierPath struct {
	nodeBase
	name string
	ref  resolver.Ref[Node]
}

func newIdentifierPath(init *InitContext, raw *ast.IdentifierPath, parent Node) (*IdentifierPath, error) {
	return buildIdentifierPath(init, raw, raw.Name, raw.ReferencedDeclaration, parent)
}

// identifierAsPath adapts a pre-0.8 Identifier modifier name. Raw keeps
// the Identifier.
func identifierAsPath(init *InitContext, raw *ast.Identifier, parent Node) (*IdentifierPath, error) {
	return buildIdentifierPath(init, raw, raw.Name, raw.ReferencedDeclaration, parent)
}

func buildIdentifierPath(init *InitContext, raw ast.Identified, name string, target ast.NodeID, parent Node) (*IdentifierPath, error) {
	p := &IdentifierPath{
		nodeBase: newBase(init, raw, parent),
		name:     name,
		ref:      resolver.Unresolved[Node](int64(target)),
	}
	if err := init.register(raw, p); err != nil {
		return nil, err
	}
	if err := trackReference(init, p, &p.ref); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *IdentifierPath) Name() string             { return p.name }
func (p *IdentifierPath) ReferencedID() ast.NodeID { return ast.NodeID(p.ref.ID()) }
func (p *IdentifierPath) Children() []Node         { return nil }
func (p *IdentifierPath) Iterate() iter.Seq[Node]  { return iterate(p) }

func (p *IdentifierPath) ReferencedDeclaration() (Node, error) {
	return resolvedTarget(p.ref, p.init.Unit)
}

// UserDefinedTypeName is a type name referring to a contract, struct, enum
// or value type.
type UserDefinedTypeName struct {
	nodeBase
	name     string
	pathNode *IdentifierPath
	ref      resolver.Ref[Node]
	typeDesc ast.TypeDescriptions
}

func newUserDefinedTypeName(init *InitContext, raw *ast.UserDefinedTypeName, parent Node) (*UserDefinedTypeName, error) {
	t := &UserDefinedTypeName{
		nodeBase: newBase(init, raw, parent),
		name:     raw.Name,
		ref:      resolver.Unresolved[Node](int64(raw.ReferencedDeclaration)),
		typeDesc: raw.TypeDescriptions,
	}
	if err := init.register(raw, t); err != nil {
		return nil, err
	}
	if raw.PathNode != nil {
		path, err := newIdentifierPath(init, raw.PathNode, t)
		if err != nil {
			return nil, err
		}
		t.pathNode = path
		if t.name == "" {
			t.name = path.Name()
		}
	}
	if err := trackReference(init, t, &t.ref); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *UserDefinedTypeName) Name() string              { return t.name }
func (t *UserDefinedTypeName) PathNode() *IdentifierPath { return t.pathNode }
func (t *UserDefinedTypeName) TypeString() string        { return t.typeDesc.TypeString }
func (t *UserDefinedTypeName) ReferencedID() ast.NodeID  { return ast.NodeID(t.ref.ID()) }
func (t *UserDefinedTypeName) Iterate() iter.Seq[Node]   { return iterate(t) }

func (t *UserDefinedTypeName) ReferencedDeclaration() (Node, error) {
	return resolvedTarget(t.ref, t.init.Unit)
}

func (t *UserDefinedTypeName) Children() []Node {
	if t.pathNode == nil {
		return nil
	}
	return []Node{t.pathNode}
}

// newReference builds the IdentifierPath or UserDefinedTypeName held by
// inheritance specifiers, using-for directives and modifier invocations.
func newReference(init *InitContext, raw ast.Node, parent Node, where string) (Reference, error) {
	switch r := raw.(type) {
	case *ast.IdentifierPath:
		return newIdentifierPath(init, r, parent)
	case *ast.UserDefinedTypeName:
		return newUserDefinedTypeName(init, r, parent)
	case *ast.Identifier:
		return identifierAsPath(init, r, parent)
	case nil:
		return nil, init.mismatchKind("<missing>", where)
	default:
		return nil, init.mismatch(raw, where)
	}
}

// newTypeName builds a variable's type name. Only user-defined type names
// are modeled; elementary, array, mapping and function types stay opaque.
func newTypeName(init *InitContext, raw ast.Node, parent Node) (Node, error) {
	switch r := raw.(type) {
	case *ast.UserDefinedTypeName:
		return newUserDefinedTypeName(init, r, parent)
	case *ast.Opaque:
		return newOpaque(init, r, parent)
	default:
		return nil, init.mismatch(raw, "type name")
	}
}
