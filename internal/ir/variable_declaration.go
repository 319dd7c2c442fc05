package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// VariableDeclaration is a state variable, struct member, parameter or
// local variable. Unnamed parameters have an empty name and an empty name
// span at the end of the declaration.
type VariableDeclaration struct {
	declBase
	constant        bool
	mutability      string
	stateVariable   bool
	storageLocation string
	visibility      string
	indexed         bool
	typeString      string
	documentation   Documentation
	typeName        Node
	value           Node
}

func newVariableDeclaration(init *InitContext, raw *ast.VariableDeclaration, parent Node) (*VariableDeclaration, error) {
	v := &VariableDeclaration{
		declBase:        newDeclBase(init, raw, parent, raw.Name),
		constant:        raw.Constant,
		mutability:      raw.Mutability,
		stateVariable:   raw.StateVariable,
		storageLocation: raw.StorageLocation,
		visibility:      raw.Visibility,
		indexed:         raw.Indexed,
		typeString:      raw.TypeDescriptions.TypeString,
	}
	if err := init.register(raw, v); err != nil {
		return nil, err
	}

	var err error
	if v.documentation, err = newDocumentation(init, raw.Documentation, v); err != nil {
		return nil, err
	}
	from := v.loc.Start
	if raw.TypeName != nil && raw.TypeName.Node != nil {
		if v.typeName, err = newTypeName(init, raw.TypeName.Node, v); err != nil {
			return nil, err
		}
		from = v.typeName.ByteLocation().End
	}
	// the name follows the type, so searching from there skips type names
	// that contain the variable's name as a token
	if err := v.locateIdentifier(raw.NameLocation, from); err != nil {
		return nil, err
	}
	if raw.Value != nil && raw.Value.Node != nil {
		if v.value, err = newExpression(init, raw.Value.Node, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *VariableDeclaration) CanonicalName() string        { return qualify(v.parent, v.name) }
func (v *VariableDeclaration) Constant() bool               { return v.constant }
func (v *VariableDeclaration) Mutability() string           { return v.mutability }
func (v *VariableDeclaration) IsStateVariable() bool        { return v.stateVariable }
func (v *VariableDeclaration) StorageLocation() string      { return v.storageLocation }
func (v *VariableDeclaration) Visibility() string           { return v.visibility }
func (v *VariableDeclaration) Indexed() bool                { return v.indexed }
func (v *VariableDeclaration) TypeString() string           { return v.typeString }
func (v *VariableDeclaration) Documentation() Documentation { return v.documentation }
func (v *VariableDeclaration) Iterate() iter.Seq[Node]      { return iterate(v) }

// TypeName is nil for pre-0.5 `var` declarations.
func (v *VariableDeclaration) TypeName() Node { return v.typeName }

// Value is the initializer expression, or nil.
func (v *VariableDeclaration) Value() Node { return v.value }

func (v *VariableDeclaration) Children() []Node {
	out := appendDoc(nil, v.documentation)
	if v.typeName != nil {
		out = append(out, v.typeName)
	}
	if v.value != nil {
		out = append(out, v.value)
	}
	return out
}

// ParameterList is the parenthesized parameter or return list of a
// function, modifier, event or error.
type ParameterList struct {
	nodeBase
	parameters []*VariableDeclaration
}

func newParameterList(init *InitContext, raw *ast.ParameterList, parent Node) (*ParameterList, error) {
	l := &ParameterList{nodeBase: newBase(init, raw, parent)}
	if err := init.register(raw, l); err != nil {
		return nil, err
	}
	for _, p := range raw.Parameters {
		v, err := newVariableDeclaration(init, p, l)
		if err != nil {
			return nil, err
		}
		l.parameters = append(l.parameters, v)
	}
	return l, nil
}

func (l *ParameterList) Parameters() []*VariableDeclaration { return l.parameters }
func (l *ParameterList) Children() []Node                   { return appendNodes(nil, l.parameters) }
func (l *ParameterList) Iterate() iter.Seq[Node]            { return iterate(l) }
