// Package query answers inheritance and lookup questions over a built IR.
//
// Everything here reads the resolved graph only. Callers must have run
// post-processing, usually through session.Build.
package query

import (
	"fmt"

	"github.com/roach88/solir/internal/ir"
)

// Descendants returns every contract inheriting from c, directly or
// transitively, in breadth-first order over ChildContracts. c is excluded
// and each contract appears once.
func Descendants(c *ir.ContractDefinition) []*ir.ContractDefinition {
	var out []*ir.ContractDefinition
	seen := map[*ir.ContractDefinition]bool{c: true}
	queue := []*ir.ContractDefinition{c}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, child := range next.ChildContracts() {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// Inherits reports whether c derives from base, directly or transitively.
// A contract does not inherit from itself.
func Inherits(c, base *ir.ContractDefinition) (bool, error) {
	lin, err := c.LinearizedBaseContracts()
	if err != nil {
		return false, fmt.Errorf("inherits %s: %w", c.Name(), err)
	}
	for _, x := range lin[1:] {
		if x == base {
			return true, nil
		}
	}
	return false, nil
}

// DirectBases resolves the `is` clause of c, in clause order.
func DirectBases(c *ir.ContractDefinition) ([]*ir.ContractDefinition, error) {
	specs := c.BaseContracts()
	out := make([]*ir.ContractDefinition, 0, len(specs))
	for _, spec := range specs {
		target, err := spec.BaseName().ReferencedDeclaration()
		if err != nil {
			return nil, fmt.Errorf("bases of %s: %w", c.Name(), err)
		}
		base, ok := target.(*ir.ContractDefinition)
		if !ok {
			return nil, fmt.Errorf("bases of %s: %d is a %s", c.Name(), spec.BaseID(), ir.TypeName(target))
		}
		out = append(out, base)
	}
	return out, nil
}

// FindDeclarations returns the declarations in units whose name or
// canonical name is name, in unit order then declaration order.
func FindDeclarations(units []*ir.SourceUnit, name string) []ir.Declaration {
	var out []ir.Declaration
	for _, su := range units {
		for d := range su.Declarations() {
			if d.Name() == name || d.CanonicalName() == name {
				out = append(out, d)
			}
		}
	}
	return out
}

// Tree is a contract and the contracts inheriting from it. A contract
// reachable along two paths appears under both parents.
type Tree struct {
	Name     string  `json:"name"`
	File     string  `json:"file"`
	Kind     string  `json:"kind"`
	Children []*Tree `json:"children,omitempty"`
}

// DescendantTree expands ChildContracts from c.
func DescendantTree(c *ir.ContractDefinition) *Tree {
	t := &Tree{Name: c.Name(), File: c.File(), Kind: string(c.Kind())}
	for _, child := range c.ChildContracts() {
		t.Children = append(t.Children, DescendantTree(child))
	}
	return t
}

// Size counts the nodes of t.
func (t *Tree) Size() int {
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}
