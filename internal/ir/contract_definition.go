package ir

import (
	"iter"
	"strings"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/diag"
	"github.com/roach88/solir/internal/resolver"
)

// Tristate is a boolean the compiler may have left undetermined.
type Tristate int8

const (
	Unknown Tristate = iota
	True
	False
)

func tristateOf(b *bool) Tristate {
	switch {
	case b == nil:
		return Unknown
	case *b:
		return True
	default:
		return False
	}
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// ContractDefinition is a contract, interface or library.
type ContractDefinition struct {
	declBase
	abstract         bool
	kind             ast.ContractKind
	fullyImplemented Tristate
	linearized       []ast.NodeID
	documentation    Documentation

	baseContracts         []*InheritanceSpecifier
	enums                 []*EnumDefinition
	errors                []*ErrorDefinition
	events                []*EventDefinition
	functions             []*FunctionDefinition
	modifiers             []*ModifierDefinition
	structs               []*StructDefinition
	userDefinedValueTypes []*UserDefinedValueTypeDefinition
	usingForDirectives    []*UsingForDirective
	declaredVariables     []*VariableDeclaration
	// members holds all of the above in source order.
	members []Node

	// childContracts is a reverse index of contracts directly inheriting
	// from this one. Written only by resolver callbacks.
	childContracts map[*ContractDefinition]struct{}
}

func newContractDefinition(init *InitContext, raw *ast.ContractDefinition, parent Node) (*ContractDefinition, error) {
	switch raw.ContractKind {
	case ast.ContractKindContract, ast.ContractKindInterface, ast.ContractKindLibrary:
	default:
		return nil, diag.SchemaMismatch(init.File, int64(raw.ID), string(raw.ContractKind), "contract kind")
	}

	c := &ContractDefinition{
		declBase:         newDeclBase(init, raw, parent, raw.Name),
		abstract:         raw.Abstract,
		kind:             raw.ContractKind,
		fullyImplemented: tristateOf(raw.FullyImplemented),
		linearized:       raw.LinearizedBaseContracts,
		childContracts:   make(map[*ContractDefinition]struct{}),
	}
	if err := init.register(raw, c); err != nil {
		return nil, err
	}
	// the compiler's nameLocation is ignored for contracts; the keyword
	// pattern is authoritative
	if err := c.locate(contractNameKind(string(raw.ContractKind)), nil); err != nil {
		return nil, err
	}

	var err error
	if c.documentation, err = newDocumentation(init, raw.Documentation, c); err != nil {
		return nil, err
	}
	for _, b := range raw.BaseContracts {
		spec, err := newInheritanceSpecifier(init, b, c)
		if err != nil {
			return nil, err
		}
		c.baseContracts = append(c.baseContracts, spec)
	}
	for _, n := range raw.Nodes {
		if err := c.addMember(n); err != nil {
			return nil, err
		}
	}

	if err := init.postProcess(c.linkBases); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ContractDefinition) addMember(raw ast.Node) error {
	init := c.init
	var (
		n   Node
		err error
	)
	switch r := raw.(type) {
	case *ast.EnumDefinition:
		var e *EnumDefinition
		if e, err = newEnumDefinition(init, r, c); err == nil {
			c.enums = append(c.enums, e)
			n = e
		}
	case *ast.ErrorDefinition:
		var e *ErrorDefinition
		if e, err = newErrorDefinition(init, r, c); err == nil {
			c.errors = append(c.errors, e)
			n = e
		}
	case *ast.EventDefinition:
		var e *EventDefinition
		if e, err = newEventDefinition(init, r, c); err == nil {
			c.events = append(c.events, e)
			n = e
		}
	case *ast.FunctionDefinition:
		var f *FunctionDefinition
		if f, err = newFunctionDefinition(init, r, c); err == nil {
			c.functions = append(c.functions, f)
			n = f
		}
	case *ast.ModifierDefinition:
		var m *ModifierDefinition
		if m, err = newModifierDefinition(init, r, c); err == nil {
			c.modifiers = append(c.modifiers, m)
			n = m
		}
	case *ast.StructDefinition:
		var s *StructDefinition
		if s, err = newStructDefinition(init, r, c); err == nil {
			c.structs = append(c.structs, s)
			n = s
		}
	case *ast.UserDefinedValueTypeDefinition:
		var t *UserDefinedValueTypeDefinition
		if t, err = newUserDefinedValueTypeDefinition(init, r, c); err == nil {
			c.userDefinedValueTypes = append(c.userDefinedValueTypes, t)
			n = t
		}
	case *ast.UsingForDirective:
		var u *UsingForDirective
		if u, err = newUsingForDirective(init, r, c); err == nil {
			c.usingForDirectives = append(c.usingForDirectives, u)
			n = u
		}
	case *ast.VariableDeclaration:
		var v *VariableDeclaration
		if v, err = newVariableDeclaration(init, r, c); err == nil {
			c.declaredVariables = append(c.declaredVariables, v)
			n = v
		}
	default:
		return init.mismatch(raw, "contract member")
	}
	if err != nil {
		return err
	}
	c.members = append(c.members, n)
	return nil
}

// linkBases adds c to the child set of every direct base, then registers
// the destroy callback that removes it again.
func (c *ContractDefinition) linkBases(resolver.CallbackParams[Node]) error {
	bases := make([]*ContractDefinition, 0, len(c.baseContracts))
	for _, spec := range c.baseContracts {
		n, err := c.init.resolve(spec.BaseID())
		if err != nil {
			return err
		}
		base, ok := n.(*ContractDefinition)
		if !ok {
			return diag.SchemaMismatch(c.init.File, int64(spec.BaseID()), n.Raw().NodeType(), "base contract")
		}
		bases = append(bases, base)
	}
	for _, base := range bases {
		base.childContracts[c] = struct{}{}
	}
	c.init.onDestroy(func() error {
		for _, base := range bases {
			if _, ok := base.childContracts[c]; !ok {
				return diag.InconsistentDestroy(c.init.File, int64(c.id), "child contracts of "+base.name)
			}
			delete(base.childContracts, c)
		}
		return nil
	})
	return nil
}

func (c *ContractDefinition) CanonicalName() string        { return c.name }
func (c *ContractDefinition) Abstract() bool               { return c.abstract }
func (c *ContractDefinition) Kind() ast.ContractKind       { return c.kind }
func (c *ContractDefinition) FullyImplemented() Tristate   { return c.fullyImplemented }
func (c *ContractDefinition) Documentation() Documentation { return c.documentation }
func (c *ContractDefinition) Iterate() iter.Seq[Node]      { return iterate(c) }

func (c *ContractDefinition) BaseContracts() []*InheritanceSpecifier { return c.baseContracts }
func (c *ContractDefinition) Enums() []*EnumDefinition               { return c.enums }
func (c *ContractDefinition) Errors() []*ErrorDefinition             { return c.errors }
func (c *ContractDefinition) Events() []*EventDefinition             { return c.events }
func (c *ContractDefinition) Functions() []*FunctionDefinition       { return c.functions }
func (c *ContractDefinition) Modifiers() []*ModifierDefinition       { return c.modifiers }
func (c *ContractDefinition) Structs() []*StructDefinition           { return c.structs }
func (c *ContractDefinition) UsingForDirectives() []*UsingForDirective {
	return c.usingForDirectives
}
func (c *ContractDefinition) DeclaredVariables() []*VariableDeclaration {
	return c.declaredVariables
}
func (c *ContractDefinition) UserDefinedValueTypes() []*UserDefinedValueTypeDefinition {
	return c.userDefinedValueTypes
}

// LinearizedBaseContractIDs is the compiler's C3 linearization, most
// derived first.
func (c *ContractDefinition) LinearizedBaseContractIDs() []ast.NodeID { return c.linearized }

// LinearizedBaseContracts resolves the linearization on every call. The
// first element is always c itself.
func (c *ContractDefinition) LinearizedBaseContracts() ([]*ContractDefinition, error) {
	if len(c.linearized) == 0 {
		return []*ContractDefinition{c}, nil
	}
	if c.linearized[0] != c.id {
		return nil, diag.SchemaMismatch(c.init.File, int64(c.id), string(c.kind), "linearizedBaseContracts must start with the contract itself")
	}
	out := make([]*ContractDefinition, 0, len(c.linearized))
	out = append(out, c)
	for _, id := range c.linearized[1:] {
		n, err := c.init.resolve(id)
		if err != nil {
			return nil, err
		}
		base, ok := n.(*ContractDefinition)
		if !ok {
			return nil, diag.SchemaMismatch(c.init.File, int64(id), n.Raw().NodeType(), "linearized base contract")
		}
		out = append(out, base)
	}
	return out, nil
}

// ChildContracts returns the contracts directly inheriting from c, ordered
// by file and offset.
func (c *ContractDefinition) ChildContracts() []*ContractDefinition {
	out := make([]*ContractDefinition, 0, len(c.childContracts))
	for child := range c.childContracts {
		out = append(out, child)
	}
	sortByLocation(out)
	return out
}

// Declarations yields every declaration owned by the contract. Enum values
// follow all the enums.
func (c *ContractDefinition) Declarations() iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		for _, e := range c.enums {
			if !yield(e) {
				return
			}
		}
		for _, e := range c.enums {
			for _, v := range e.values {
				if !yield(v) {
					return
				}
			}
		}
		if !yieldAll(yield, c.errors) ||
			!yieldAll(yield, c.events) ||
			!yieldAll(yield, c.functions) ||
			!yieldAll(yield, c.modifiers) ||
			!yieldAll(yield, c.structs) ||
			!yieldAll(yield, c.userDefinedValueTypes) {
			return
		}
		yieldAll(yield, c.declaredVariables)
	}
}

func yieldAll[T Declaration](yield func(Declaration) bool, decls []T) bool {
	for _, d := range decls {
		if !yield(d) {
			return false
		}
	}
	return true
}

// DeclarationString renders the contract header, e.g.
// "abstract contract C is A, B(1)", preceded by its documentation as
// `///` lines.
func (c *ContractDefinition) DeclarationString() string {
	var b strings.Builder
	if c.documentation.Present() {
		for i, line := range strings.Split(strings.TrimRight(c.documentation.String(), "\n"), "\n") {
			if i == 0 {
				b.WriteString("/// ")
			} else {
				b.WriteString("///")
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if c.abstract {
		b.WriteString("abstract ")
	}
	b.WriteString(string(c.kind))
	b.WriteByte(' ')
	b.WriteString(c.name)
	for i, spec := range c.baseContracts {
		if i == 0 {
			b.WriteString(" is ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(spec.Source())
	}
	return b.String()
}

// Children are in source order: documentation, the `is` clause, then
// members as declared. Declarations groups members by kind instead.
func (c *ContractDefinition) Children() []Node {
	out := appendDoc(nil, c.documentation)
	out = appendNodes(out, c.baseContracts)
	return append(out, c.members...)
}

func appendNodes[T Node](out []Node, nodes []T) []Node {
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}
