package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// UsingForFunction is one entry of `using {f, g as +} for T`.
type UsingForFunction struct {
	// Function is set for plain entries.
	Function *IdentifierPath
	// Definition and Operator are set for user-defined operators.
	Definition *IdentifierPath
	Operator   string
}

// UsingForDirective attaches library functions to a type.
type UsingForDirective struct {
	nodeBase
	libraryName Reference
	functions   []UsingForFunction
	typeName    Node
	global      bool
}

func newUsingForDirective(init *InitContext, raw *ast.UsingForDirective, parent Node) (*UsingForDirective, error) {
	u := &UsingForDirective{
		nodeBase: newBase(init, raw, parent),
		global:   raw.Global,
	}
	if err := init.register(raw, u); err != nil {
		return nil, err
	}

	var err error
	if raw.LibraryName != nil && raw.LibraryName.Node != nil {
		if u.libraryName, err = newReference(init, raw.LibraryName.Node, u, "using-for library name"); err != nil {
			return nil, err
		}
	}
	for _, f := range raw.FunctionList {
		var entry UsingForFunction
		if f.Function != nil {
			if entry.Function, err = newIdentifierPath(init, f.Function, u); err != nil {
				return nil, err
			}
		}
		if f.Definition != nil {
			if entry.Definition, err = newIdentifierPath(init, f.Definition, u); err != nil {
				return nil, err
			}
			entry.Operator = f.Operator
		}
		u.functions = append(u.functions, entry)
	}
	if raw.TypeName != nil && raw.TypeName.Node != nil {
		if u.typeName, err = newTypeName(init, raw.TypeName.Node, u); err != nil {
			return nil, err
		}
	}
	if u.libraryName == nil && len(u.functions) == 0 {
		return nil, init.mismatch(raw, "using-for directive without library or functions")
	}
	return u, nil
}

// LibraryName is nil when the directive lists functions instead.
func (u *UsingForDirective) LibraryName() Reference { return u.libraryName }

func (u *UsingForDirective) Functions() []UsingForFunction { return u.functions }

// TypeName is nil for `using L for *`.
func (u *UsingForDirective) TypeName() Node { return u.typeName }

func (u *UsingForDirective) Global() bool            { return u.global }
func (u *UsingForDirective) Iterate() iter.Seq[Node] { return iterate(u) }

func (u *UsingForDirective) Children() []Node {
	var out []Node
	if u.libraryName != nil {
		out = append(out, u.libraryName)
	}
	for _, f := range u.functions {
		if f.Function != nil {
			out = append(out, f.Function)
		}
		if f.Definition != nil {
			out = append(out, f.Definition)
		}
	}
	if u.typeName != nil {
		out = append(out, u.typeName)
	}
	return out
}
