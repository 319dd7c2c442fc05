package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// StructDefinition is a struct type and its members.
type StructDefinition struct {
	declBase
	visibility    string
	documentation Documentation
	members       []*VariableDeclaration
}

func newStructDefinition(init *InitContext, raw *ast.StructDefinition, parent Node) (*StructDefinition, error) {
	s := &StructDefinition{
		declBase:   newDeclBase(init, raw, parent, raw.Name),
		visibility: raw.Visibility,
	}
	if err := init.register(raw, s); err != nil {
		return nil, err
	}
	if err := s.locate(NameKindStruct, raw.NameLocation); err != nil {
		return nil, err
	}

	var err error
	if s.documentation, err = newDocumentation(init, raw.Documentation, s); err != nil {
		return nil, err
	}
	for _, m := range raw.Members {
		v, err := newVariableDeclaration(init, m, s)
		if err != nil {
			return nil, err
		}
		s.members = append(s.members, v)
	}
	return s, nil
}

func (s *StructDefinition) CanonicalName() string           { return qualify(s.parent, s.name) }
func (s *StructDefinition) Visibility() string              { return s.visibility }
func (s *StructDefinition) Documentation() Documentation    { return s.documentation }
func (s *StructDefinition) Members() []*VariableDeclaration { return s.members }
func (s *StructDefinition) Iterate() iter.Seq[Node]         { return iterate(s) }

func (s *StructDefinition) Children() []Node {
	return appendNodes(appendDoc(nil, s.documentation), s.members)
}
