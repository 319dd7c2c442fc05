package ir

import (
	"iter"
	"log/slog"

	"github.com/roach88/solir/internal/ast"
)

// SourceUnit is the root of one source file. It has no parent.
type SourceUnit struct {
	nodeBase
	id              ast.NodeID
	absolutePath    string
	license         string
	exportedSymbols map[string][]ast.NodeID

	// nodes holds every top-level child in source order.
	nodes []Node

	pragmas               []*PragmaDirective
	imports               []*ImportDirective
	contracts             []*ContractDefinition
	functions             []*FunctionDefinition
	structs               []*StructDefinition
	enums                 []*EnumDefinition
	errors                []*ErrorDefinition
	events                []*EventDefinition
	userDefinedValueTypes []*UserDefinedValueTypeDefinition
	usingForDirectives    []*UsingForDirective
	declaredVariables     []*VariableDeclaration
}

// BuildSourceUnit constructs the IR of one file and registers it with the
// resolver. Cross references stay pending until the resolver's
// post-processing runs.
func BuildSourceUnit(init *InitContext, raw *ast.SourceUnit) (*SourceUnit, error) {
	if init.Logger == nil {
		init.Logger = slog.Default()
	}
	u := &SourceUnit{
		nodeBase:        newBase(init, raw, nil),
		id:              raw.ID,
		absolutePath:    raw.AbsolutePath,
		exportedSymbols: raw.ExportedSymbols,
	}
	if raw.License != nil {
		u.license = *raw.License
	}
	if err := init.register(raw, u); err != nil {
		return nil, err
	}
	for _, n := range raw.Nodes {
		child, err := u.addNode(n)
		if err != nil {
			return nil, err
		}
		u.nodes = append(u.nodes, child)
	}
	init.Resolver.RegisterSourceUnit(init.File, u)
	init.Logger.Debug("source unit built",
		"file", init.File,
		"unit", init.Unit.Short(),
		"contracts", len(u.contracts),
	)
	return u, nil
}

func (u *SourceUnit) addNode(raw ast.Node) (Node, error) {
	init := u.init
	switch r := raw.(type) {
	case *ast.PragmaDirective:
		n, err := newPragmaDirective(init, r, u)
		if err != nil {
			return nil, err
		}
		u.pragmas = append(u.pragmas, n)
		return n, nil
	case *ast.ImportDirective:
		n, err := newImportDirective(init, r, u)
		if err != nil {
			return nil, err
		}
		u.imports = append(u.imports, n)
		return n, nil
	case *ast.ContractDefinition:
		n, err := newContractDefinition(init, r, u)
		if err != nil {
			return nil, err
		}
		u.contracts = append(u.contracts, n)
		return n, nil
	case *ast.FunctionDefinition:
		n, err := newFunctionDefinition(init, r, u)
		if err != nil {
			return nil, err
		}
		u.functions = append(u.functions, n)
		return n, nil
	case *ast.StructDefinition:
		n, err := newStructDefinition(init, r, u)
		if err != nil {
			return nil, err
		}
		u.structs = append(u.structs, n)
		return n, nil
	case *ast.EnumDefinition:
		n, err := newEnumDefinition(init, r, u)
		if err != nil {
			return nil, err
		}
		u.enums = append(u.enums, n)
		return n, nil
	case *ast.ErrorDefinition:
		n, err := newErrorDefinition(init, r, u)
		if err != nil {
			return nil, err
		}
		u.errors = append(u.errors, n)
		return n, nil
	case *ast.EventDefinition:
		n, err := newEventDefinition(init, r, u)
		if err != nil {
			return nil, err
		}
		u.events = append(u.events, n)
		return n, nil
	case *ast.UserDefinedValueTypeDefinition:
		n, err := newUserDefinedValueTypeDefinition(init, r, u)
		if err != nil {
			return nil, err
		}
		u.userDefinedValueTypes = append(u.userDefinedValueTypes, n)
		return n, nil
	case *ast.UsingForDirective:
		n, err := newUsingForDirective(init, r, u)
		if err != nil {
			return nil, err
		}
		u.usingForDirectives = append(u.usingForDirectives, n)
		return n, nil
	case *ast.VariableDeclaration:
		n, err := newVariableDeclaration(init, r, u)
		if err != nil {
			return nil, err
		}
		u.declaredVariables = append(u.declaredVariables, n)
		return n, nil
	default:
		return nil, init.mismatch(raw, "source unit member")
	}
}

// ID returns the compiler node ID.
func (u *SourceUnit) ID() ast.NodeID { return u.id }

// AbsolutePath is the compiler's path for the file.
func (u *SourceUnit) AbsolutePath() string { return u.absolutePath }

// License is the SPDX identifier, or empty.
func (u *SourceUnit) License() string { return u.license }

// ExportedSymbols maps each top-level name visible from this file to its
// declaration IDs.
func (u *SourceUnit) ExportedSymbols() map[string][]ast.NodeID { return u.exportedSymbols }

func (u *SourceUnit) Pragmas() []*PragmaDirective              { return u.pragmas }
func (u *SourceUnit) Imports() []*ImportDirective              { return u.imports }
func (u *SourceUnit) Contracts() []*ContractDefinition         { return u.contracts }
func (u *SourceUnit) Functions() []*FunctionDefinition         { return u.functions }
func (u *SourceUnit) Structs() []*StructDefinition             { return u.structs }
func (u *SourceUnit) Enums() []*EnumDefinition                 { return u.enums }
func (u *SourceUnit) Errors() []*ErrorDefinition               { return u.errors }
func (u *SourceUnit) Events() []*EventDefinition               { return u.events }
func (u *SourceUnit) UsingForDirectives() []*UsingForDirective { return u.usingForDirectives }
func (u *SourceUnit) DeclaredVariables() []*VariableDeclaration {
	return u.declaredVariables
}
func (u *SourceUnit) UserDefinedValueTypes() []*UserDefinedValueTypeDefinition {
	return u.userDefinedValueTypes
}

func (u *SourceUnit) Children() []Node        { return u.nodes }
func (u *SourceUnit) Iterate() iter.Seq[Node] { return iterate(u) }

// Declarations yields every declaration in the file: top-level ones in
// source order, each contract followed by its own declarations.
func (u *SourceUnit) Declarations() iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		for _, n := range u.nodes {
			d, ok := n.(Declaration)
			if !ok {
				continue
			}
			if !yield(d) {
				return
			}
			switch d := d.(type) {
			case *ContractDefinition:
				for cd := range d.Declarations() {
					if !yield(cd) {
						return
					}
				}
			case *EnumDefinition:
				for _, v := range d.values {
					if !yield(v) {
						return
					}
				}
			}
		}
	}
}

// PragmaDirective is a `pragma ...;` line.
type PragmaDirective struct {
	nodeBase
	literals []string
}

func newPragmaDirective(init *InitContext, raw *ast.PragmaDirective, parent *SourceUnit) (*PragmaDirective, error) {
	p := &PragmaDirective{nodeBase: newBase(init, raw, parent), literals: raw.Literals}
	if err := init.register(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Literals are the pragma tokens, e.g. ["solidity", "^", "0.8", ".20"].
func (p *PragmaDirective) Literals() []string { return p.literals }

func (p *PragmaDirective) Children() []Node        { return nil }
func (p *PragmaDirective) Iterate() iter.Seq[Node] { return iterate(p) }

// ImportDirective is an `import` statement.
type ImportDirective struct {
	nodeBase
	importString string
	absolutePath string
	unitAlias    string
	sourceUnitID ast.NodeID
}

func newImportDirective(init *InitContext, raw *ast.ImportDirective, parent *SourceUnit) (*ImportDirective, error) {
	d := &ImportDirective{
		nodeBase:     newBase(init, raw, parent),
		importString: raw.File,
		absolutePath: raw.AbsolutePath,
		unitAlias:    raw.UnitAlias,
		sourceUnitID: raw.SourceUnit,
	}
	if err := init.register(raw, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ImportString is the path as written in the source.
func (d *ImportDirective) ImportString() string { return d.importString }

// AbsolutePath is the compiler-resolved path of the imported file.
func (d *ImportDirective) AbsolutePath() string { return d.absolutePath }

func (d *ImportDirective) UnitAlias() string       { return d.unitAlias }
func (d *ImportDirective) Children() []Node        { return nil }
func (d *ImportDirective) Iterate() iter.Seq[Node] { return iterate(d) }

// ImportedSourceUnit resolves the root of the imported file.
func (d *ImportDirective) ImportedSourceUnit() (*SourceUnit, error) {
	n, err := d.init.resolve(d.sourceUnitID)
	if err != nil {
		return nil, err
	}
	u, ok := n.(*SourceUnit)
	if !ok {
		return nil, d.init.mismatch(n.Raw(), "imported source unit")
	}
	return u, nil
}
