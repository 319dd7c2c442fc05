package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// ModifierDefinition is a function modifier.
type ModifierDefinition struct {
	declBase
	visibility    string
	virtual       bool
	documentation Documentation
	parameters    *ParameterList
	body          *Block
}

func newModifierDefinition(init *InitContext, raw *ast.ModifierDefinition, parent Node) (*ModifierDefinition, error) {
	m := &ModifierDefinition{
		declBase:   newDeclBase(init, raw, parent, raw.Name),
		visibility: raw.Visibility,
		virtual:    raw.Virtual,
	}
	if err := init.register(raw, m); err != nil {
		return nil, err
	}
	if err := m.locate(NameKindModifier, raw.NameLocation); err != nil {
		return nil, err
	}

	var err error
	if m.documentation, err = newDocumentation(init, raw.Documentation, m); err != nil {
		return nil, err
	}
	if raw.Parameters == nil {
		return nil, init.mismatch(raw, "modifier parameter list")
	}
	if m.parameters, err = newParameterList(init, raw.Parameters, m); err != nil {
		return nil, err
	}
	if raw.Body != nil {
		if m.body, err = newBlock(init, raw.Body, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *ModifierDefinition) CanonicalName() string        { return qualify(m.parent, m.name) }
func (m *ModifierDefinition) Visibility() string           { return m.visibility }
func (m *ModifierDefinition) Virtual() bool                { return m.virtual }
func (m *ModifierDefinition) Documentation() Documentation { return m.documentation }
func (m *ModifierDefinition) Parameters() *ParameterList   { return m.parameters }
func (m *ModifierDefinition) Body() *Block                 { return m.body }
func (m *ModifierDefinition) Iterate() iter.Seq[Node]      { return iterate(m) }

func (m *ModifierDefinition) Children() []Node {
	out := appendDoc(nil, m.documentation)
	out = append(out, m.parameters)
	if m.body != nil {
		out = append(out, m.body)
	}
	return out
}
