package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// ErrorDefinition is a custom error.
type ErrorDefinition struct {
	declBase
	selector      string
	documentation Documentation
	parameters    *ParameterList
}

func newErrorDefinition(init *InitContext, raw *ast.ErrorDefinition, parent Node) (*ErrorDefinition, error) {
	e := &ErrorDefinition{
		declBase: newDeclBase(init, raw, parent, raw.Name),
		selector: raw.ErrorSelector,
	}
	if err := init.register(raw, e); err != nil {
		return nil, err
	}
	if err := e.locate(NameKindError, raw.NameLocation); err != nil {
		return nil, err
	}

	var err error
	if e.documentation, err = newDocumentation(init, raw.Documentation, e); err != nil {
		return nil, err
	}
	if raw.Parameters == nil {
		return nil, init.mismatch(raw, "error parameter list")
	}
	if e.parameters, err = newParameterList(init, raw.Parameters, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *ErrorDefinition) CanonicalName() string        { return qualify(e.parent, e.name) }
func (e *ErrorDefinition) Selector() string             { return e.selector }
func (e *ErrorDefinition) Documentation() Documentation { return e.documentation }
func (e *ErrorDefinition) Parameters() *ParameterList   { return e.parameters }
func (e *ErrorDefinition) Iterate() iter.Seq[Node]      { return iterate(e) }

func (e *ErrorDefinition) Children() []Node {
	return append(appendDoc(nil, e.documentation), e.parameters)
}
