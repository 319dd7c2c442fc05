package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// InheritanceSpecifier is one `is Base(args)` clause of a contract.
// It is purely syntactic; the base contract is found through BaseName.
type InheritanceSpecifier struct {
	nodeBase
	baseName  Reference
	arguments []Node
}

func newInheritanceSpecifier(init *InitContext, raw *ast.InheritanceSpecifier, parent *ContractDefinition) (*InheritanceSpecifier, error) {
	s := &InheritanceSpecifier{nodeBase: newBase(init, raw, parent)}
	if err := init.register(raw, s); err != nil {
		return nil, err
	}
	base, err := newReference(init, raw.BaseName.Node, s, "inheritance specifier base name")
	if err != nil {
		return nil, err
	}
	s.baseName = base
	if raw.Arguments != nil {
		s.arguments, err = newExpressions(init, *raw.Arguments, s)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// BaseName is the IdentifierPath (or pre-0.8 UserDefinedTypeName) naming
// the base contract.
func (s *InheritanceSpecifier) BaseName() Reference { return s.baseName }

// BaseID is the compiler ID of the base contract.
func (s *InheritanceSpecifier) BaseID() ast.NodeID { return s.baseName.ReferencedID() }

// Arguments are the base constructor arguments, nil when none are given.
func (s *InheritanceSpecifier) Arguments() []Node { return s.arguments }

func (s *InheritanceSpecifier) Children() []Node {
	out := []Node{s.baseName}
	return append(out, s.arguments...)
}

func (s *InheritanceSpecifier) Iterate() iter.Seq[Node] { return iterate(s) }
