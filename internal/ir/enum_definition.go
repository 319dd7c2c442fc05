package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// EnumDefinition is an enum and its values.
type EnumDefinition struct {
	declBase
	documentation Documentation
	values        []*EnumValue
}

func newEnumDefinition(init *InitContext, raw *ast.EnumDefinition, parent Node) (*EnumDefinition, error) {
	e := &EnumDefinition{declBase: newDeclBase(init, raw, parent, raw.Name)}
	if err := init.register(raw, e); err != nil {
		return nil, err
	}
	if err := e.locate(NameKindEnum, raw.NameLocation); err != nil {
		return nil, err
	}

	var err error
	if e.documentation, err = newDocumentation(init, raw.Documentation, e); err != nil {
		return nil, err
	}
	for _, m := range raw.Members {
		v, err := newEnumValue(init, m, e)
		if err != nil {
			return nil, err
		}
		e.values = append(e.values, v)
	}
	return e, nil
}

func (e *EnumDefinition) CanonicalName() string        { return qualify(e.parent, e.name) }
func (e *EnumDefinition) Documentation() Documentation { return e.documentation }
func (e *EnumDefinition) Values() []*EnumValue         { return e.values }
func (e *EnumDefinition) Iterate() iter.Seq[Node]      { return iterate(e) }

func (e *EnumDefinition) Children() []Node {
	return appendNodes(appendDoc(nil, e.documentation), e.values)
}

// EnumValue is one member of an enum.
type EnumValue struct {
	declBase
}

func newEnumValue(init *InitContext, raw *ast.EnumValue, parent *EnumDefinition) (*EnumValue, error) {
	v := &EnumValue{declBase: newDeclBase(init, raw, parent, raw.Name)}
	if err := init.register(raw, v); err != nil {
		return nil, err
	}
	if err := v.locateIdentifier(raw.NameLocation, v.loc.Start); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *EnumValue) CanonicalName() string   { return qualify(v.parent, v.name) }
func (v *EnumValue) Children() []Node        { return nil }
func (v *EnumValue) Iterate() iter.Seq[Node] { return iterate(v) }
