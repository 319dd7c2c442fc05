package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// UserDefinedValueTypeDefinition is `type Price is uint128;`.
type UserDefinedValueTypeDefinition struct {
	declBase
	underlying Node
}

func newUserDefinedValueTypeDefinition(init *InitContext, raw *ast.UserDefinedValueTypeDefinition, parent Node) (*UserDefinedValueTypeDefinition, error) {
	t := &UserDefinedValueTypeDefinition{declBase: newDeclBase(init, raw, parent, raw.Name)}
	if err := init.register(raw, t); err != nil {
		return nil, err
	}
	if err := t.locate(NameKindValueType, raw.NameLocation); err != nil {
		return nil, err
	}
	if raw.UnderlyingType.Node == nil {
		return nil, init.mismatch(raw, "underlying type")
	}
	var err error
	if t.underlying, err = newTypeName(init, raw.UnderlyingType.Node, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *UserDefinedValueTypeDefinition) CanonicalName() string   { return qualify(t.parent, t.name) }
func (t *UserDefinedValueTypeDefinition) UnderlyingType() Node    { return t.underlying }
func (t *UserDefinedValueTypeDefinition) Children() []Node        { return []Node{t.underlying} }
func (t *UserDefinedValueTypeDefinition) Iterate() iter.Seq[Node] { return iterate(t) }
