package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// EventDefinition is an event.
type EventDefinition struct {
	declBase
	anonymous     bool
	selector      string
	documentation Documentation
	parameters    *ParameterList
}

func newEventDefinition(init *InitContext, raw *ast.EventDefinition, parent Node) (*EventDefinition, error) {
	e := &EventDefinition{
		declBase:  newDeclBase(init, raw, parent, raw.Name),
		anonymous: raw.Anonymous,
		selector:  raw.EventSelector,
	}
	if err := init.register(raw, e); err != nil {
		return nil, err
	}
	if err := e.locate(NameKindEvent, raw.NameLocation); err != nil {
		return nil, err
	}

	var err error
	if e.documentation, err = newDocumentation(init, raw.Documentation, e); err != nil {
		return nil, err
	}
	if raw.Parameters == nil {
		return nil, init.mismatch(raw, "event parameter list")
	}
	if e.parameters, err = newParameterList(init, raw.Parameters, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EventDefinition) CanonicalName() string        { return qualify(e.parent, e.name) }
func (e *EventDefinition) Anonymous() bool              { return e.anonymous }
func (e *EventDefinition) Selector() string             { return e.selector }
func (e *EventDefinition) Documentation() Documentation { return e.documentation }
func (e *EventDefinition) Parameters() *ParameterList   { return e.parameters }
func (e *EventDefinition) Iterate() iter.Seq[Node]      { return iterate(e) }

func (e *EventDefinition) Children() []Node {
	return append(appendDoc(nil, e.documentation), e.parameters)
}
