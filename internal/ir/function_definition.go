package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/diag"
)

// FunctionDefinition is a function, constructor, fallback, receive or free
// function. Unnamed kinds take the kind keyword as their name.
type FunctionDefinition struct {
	declBase
	kind             ast.FunctionKind
	visibility       string
	stateMutability  string
	virtual          bool
	implemented      bool
	selector         string
	baseFunctions    []ast.NodeID
	documentation    Documentation
	parameters       *ParameterList
	returnParameters *ParameterList
	modifiers        []*ModifierInvocation
	body             *Block
}

func newFunctionDefinition(init *InitContext, raw *ast.FunctionDefinition, parent Node) (*FunctionDefinition, error) {
	nameKind := NameKindFunction
	name := raw.Name
	switch raw.Kind {
	case ast.FunctionKindFunction, ast.FunctionKindFreeFunction:
	case ast.FunctionKindConstructor, ast.FunctionKindFallback, ast.FunctionKindReceive:
		nameKind = NameKindSpecialFunction
		if name == "" {
			name = string(raw.Kind)
		}
	default:
		return nil, diag.SchemaMismatch(init.File, int64(raw.ID), string(raw.Kind), "function kind")
	}

	f := &FunctionDefinition{
		declBase:        newDeclBase(init, raw, parent, name),
		kind:            raw.Kind,
		visibility:      raw.Visibility,
		stateMutability: raw.StateMutability,
		virtual:         raw.Virtual,
		implemented:     raw.Implemented,
		selector:        raw.FunctionSelector,
		baseFunctions:   raw.BaseFunctions,
	}
	if err := init.register(raw, f); err != nil {
		return nil, err
	}
	if err := f.locate(nameKind, raw.NameLocation); err != nil {
		return nil, err
	}

	var err error
	if f.documentation, err = newDocumentation(init, raw.Documentation, f); err != nil {
		return nil, err
	}
	if raw.Parameters == nil || raw.ReturnParameters == nil {
		return nil, init.mismatch(raw, "function parameter lists")
	}
	if f.parameters, err = newParameterList(init, raw.Parameters, f); err != nil {
		return nil, err
	}
	if f.returnParameters, err = newParameterList(init, raw.ReturnParameters, f); err != nil {
		return nil, err
	}
	for _, m := range raw.Modifiers {
		inv, err := newModifierInvocation(init, m, f)
		if err != nil {
			return nil, err
		}
		f.modifiers = append(f.modifiers, inv)
	}
	if raw.Body != nil {
		if f.body, err = newBlock(init, raw.Body, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *FunctionDefinition) CanonicalName() string            { return qualify(f.parent, f.name) }
func (f *FunctionDefinition) Kind() ast.FunctionKind           { return f.kind }
func (f *FunctionDefinition) Visibility() string               { return f.visibility }
func (f *FunctionDefinition) StateMutability() string          { return f.stateMutability }
func (f *FunctionDefinition) Virtual() bool                    { return f.virtual }
func (f *FunctionDefinition) Implemented() bool                { return f.implemented }
func (f *FunctionDefinition) Selector() string                 { return f.selector }
func (f *FunctionDefinition) Documentation() Documentation     { return f.documentation }
func (f *FunctionDefinition) Parameters() *ParameterList       { return f.parameters }
func (f *FunctionDefinition) ReturnParameters() *ParameterList { return f.returnParameters }
func (f *FunctionDefinition) Modifiers() []*ModifierInvocation { return f.modifiers }
func (f *FunctionDefinition) Iterate() iter.Seq[Node]          { return iterate(f) }

// Body is nil for unimplemented functions.
func (f *FunctionDefinition) Body() *Block { return f.body }

// BaseFunctions resolves the functions this one overrides.
func (f *FunctionDefinition) BaseFunctions() ([]*FunctionDefinition, error) {
	out := make([]*FunctionDefinition, 0, len(f.baseFunctions))
	for _, id := range f.baseFunctions {
		n, err := f.init.resolve(id)
		if err != nil {
			return nil, err
		}
		base, ok := n.(*FunctionDefinition)
		if !ok {
			return nil, diag.SchemaMismatch(f.init.File, int64(id), n.Raw().NodeType(), "base function")
		}
		out = append(out, base)
	}
	return out, nil
}

func (f *FunctionDefinition) Children() []Node {
	out := appendDoc(nil, f.documentation)
	out = append(out, f.parameters)
	out = appendNodes(out, f.modifiers)
	out = append(out, f.returnParameters)
	if f.body != nil {
		out = append(out, f.body)
	}
	return out
}

// ModifierInvocation applies a modifier, or passes arguments to a base
// constructor, on a function header.
type ModifierInvocation struct {
	nodeBase
	modifierName Reference
	arguments    []Node
	kind         string
}

func newModifierInvocation(init *InitContext, raw *ast.ModifierInvocation, parent *FunctionDefinition) (*ModifierInvocation, error) {
	m := &ModifierInvocation{
		nodeBase: newBase(init, raw, parent),
		kind:     raw.Kind,
	}
	if err := init.register(raw, m); err != nil {
		return nil, err
	}
	name, err := newReference(init, raw.ModifierName.Node, m, "modifier name")
	if err != nil {
		return nil, err
	}
	m.modifierName = name
	if raw.Arguments != nil {
		if m.arguments, err = newExpressions(init, *raw.Arguments, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ModifierName references a ModifierDefinition or, for base constructor
// calls, a ContractDefinition.
func (m *ModifierInvocation) ModifierName() Reference { return m.modifierName }

// Kind is "modifierInvocation", "baseConstructorSpecifier" or empty for
// old compilers.
func (m *ModifierInvocation) Kind() string            { return m.kind }
func (m *ModifierInvocation) Arguments() []Node       { return m.arguments }
func (m *ModifierInvocation) Iterate() iter.Seq[Node] { return iterate(m) }

func (m *ModifierInvocation) Children() []Node {
	return append([]Node{m.modifierName}, m.arguments...)
}
