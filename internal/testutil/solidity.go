package testutil

import (
	"encoding/json"
	"fmt"
)

// Unit builds a multi-file compilation unit: Solidity source text together
// with the solc compact JSON AST describing it, with consistent byte offsets.
//
// Example:
//
//	u := testutil.NewUnit()
//	a := u.File("A.sol")
//	x := a.Contract("X")
//	b := u.File("B.sol").Import(a)
//	b.Contract("Y", testutil.Inherits(x))
//	files := u.Build()
type Unit struct {
	ids   *IDs
	files []*File
	built []SourceFile
}

// SourceFile is one rendered file.
type SourceFile struct {
	Path   string
	Index  int
	Source []byte
	// AST is the SourceUnit node in solc compact JSON.
	AST []byte
}

// NewUnit creates an empty compilation unit.
func NewUnit() *Unit {
	return &Unit{ids: NewIDs()}
}

// File adds a source file. Files are numbered in creation order.
func (u *Unit) File(path string) *File {
	f := &File{
		unit:    u,
		path:    path,
		index:   len(u.files),
		id:      u.ids.Next(),
		license: "MIT",
	}
	u.files = append(u.files, f)
	return f
}

// Build renders every file. The result is cached: later calls return the
// same bytes, so a file can be rebuilt with identical node IDs.
func (u *Unit) Build() []SourceFile {
	if u.built != nil {
		return u.built
	}
	out := make([]SourceFile, 0, len(u.files))
	for _, f := range u.files {
		out = append(out, f.render())
	}
	u.built = out
	return out
}

// Source returns the rendered file at path.
func (u *Unit) Source(path string) SourceFile {
	for _, f := range u.Build() {
		if f.Path == path {
			return f
		}
	}
	panic(fmt.Sprintf("testutil: no file %q in unit", path))
}

// StandardJSON renders the unit as solc --standard-json output.
func (u *Unit) StandardJSON() []byte {
	sources := make(map[string]any)
	for _, f := range u.Build() {
		sources[f.Path] = map[string]any{
			"id":  f.Index,
			"ast": json.RawMessage(f.AST),
		}
	}
	data, err := json.Marshal(map[string]any{"sources": sources})
	if err != nil {
		panic(err)
	}
	return data
}

// File is one source file of a Unit.
type File struct {
	unit    *Unit
	path    string
	index   int
	id      int64
	license string
	imports []*File
	decls   []*Contract
	free    []*member
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// ID returns the SourceUnit node ID.
func (f *File) ID() int64 { return f.id }

// License sets the SPDX identifier. Empty omits the comment.
func (f *File) License(id string) *File {
	f.license = id
	return f
}

// Import adds an import of other.
func (f *File) Import(other *File) *File {
	f.imports = append(f.imports, other)
	return f
}

// FreeFunction adds a file-level function.
func (f *File) FreeFunction(name string) *File {
	f.free = append(f.free, &member{
		kind: memberFunction,
		id:   f.unit.ids.Next(),
		name: name,
		fn:   functionSpec{kind: "freeFunction", body: true},
	})
	return f
}

// Contract adds a contract to the file.
func (f *File) Contract(name string, opts ...ContractOption) *Contract {
	c := &Contract{
		file: f,
		id:   f.unit.ids.Next(),
		name: name,
		kind: "contract",
	}
	for _, opt := range opts {
		opt(c)
	}
	f.decls = append(f.decls, c)
	return c
}

// Contract is a contract, interface or library under construction.
type Contract struct {
	file     *File
	id       int64
	name     string
	kind     string
	abstract bool
	bases    []*Contract
	doc      string
	unknown  bool
	corrupt  bool
	members  []*member
}

// ContractOption configures a Contract.
type ContractOption func(*Contract)

// Inherits sets the direct bases, in `is` clause order.
func Inherits(bases ...*Contract) ContractOption {
	return func(c *Contract) { c.bases = append(c.bases, bases...) }
}

// Abstract marks the contract abstract.
func Abstract() ContractOption {
	return func(c *Contract) { c.abstract = true }
}

// AsInterface declares an interface instead of a contract.
func AsInterface() ContractOption {
	return func(c *Contract) { c.kind = "interface" }
}

// AsLibrary declares a library instead of a contract.
func AsLibrary() ContractOption {
	return func(c *Contract) { c.kind = "library" }
}

// Documented attaches a NatSpec comment.
func Documented(text string) ContractOption {
	return func(c *Contract) { c.doc = text }
}

// ImplementationUnknown omits fullyImplemented, as solc does after errors.
func ImplementationUnknown() ContractOption {
	return func(c *Contract) { c.unknown = true }
}

// CorruptKeyword misspells the contract keyword in the source text while
// the AST still claims a contract.
func CorruptKeyword() ContractOption {
	return func(c *Contract) { c.corrupt = true }
}

// ID returns the ContractDefinition node ID.
func (c *Contract) ID() int64 { return c.id }

// Name returns the contract name.
func (c *Contract) Name() string { return c.name }

// Var is a variable, parameter or struct member. Of, when set, makes the
// type a reference to that contract.
type Var struct {
	Type string
	Name string
	Of   *Contract
}

// Uint is a uint256 variable.
func Uint(name string) Var { return Var{Type: "uint256", Name: name} }

type memberKind int

const (
	memberEnum memberKind = iota
	memberStruct
	memberEvent
	memberError
	memberFunction
	memberModifier
	memberStateVar
	memberValueType
	memberUsingFor
)

type member struct {
	kind   memberKind
	id     int64
	name   string
	values []string
	vars   []Var
	fn     functionSpec
	lib    *Contract
}

type functionSpec struct {
	kind      string
	params    []Var
	returns   []Var
	modifiers []string
	virtual   bool
	body      bool
	assembly  bool
	ret       bool
}

func (c *Contract) add(m *member) *Contract {
	m.id = c.file.unit.ids.Next()
	c.members = append(c.members, m)
	return c
}

// Enum adds `enum name { values }`.
func (c *Contract) Enum(name string, values ...string) *Contract {
	return c.add(&member{kind: memberEnum, name: name, values: values})
}

// Struct adds `struct name { fields }`.
func (c *Contract) Struct(name string, fields ...Var) *Contract {
	return c.add(&member{kind: memberStruct, name: name, vars: fields})
}

// Event adds `event name(params);`.
func (c *Contract) Event(name string, params ...Var) *Contract {
	return c.add(&member{kind: memberEvent, name: name, vars: params})
}

// Error adds `error name(params);`.
func (c *Contract) Error(name string, params ...Var) *Contract {
	return c.add(&member{kind: memberError, name: name, vars: params})
}

// StateVar adds a state variable.
func (c *Contract) StateVar(v Var) *Contract {
	return c.add(&member{kind: memberStateVar, name: v.Name, vars: []Var{v}})
}

// ValueType adds `type name is underlying;`.
func (c *Contract) ValueType(name, underlying string) *Contract {
	return c.add(&member{kind: memberValueType, name: name, vars: []Var{{Type: underlying}}})
}

// UsingFor adds `using lib for typ;`.
func (c *Contract) UsingFor(lib *Contract, typ string) *Contract {
	return c.add(&member{kind: memberUsingFor, lib: lib, vars: []Var{{Type: typ}}})
}

// Modifier adds `modifier name() { _; }`.
func (c *Contract) Modifier(name string) *Contract {
	return c.add(&member{kind: memberModifier, name: name})
}

// Constructor adds `constructor() { }`.
func (c *Contract) Constructor() *Contract {
	return c.add(&member{kind: memberFunction, fn: functionSpec{kind: "constructor", body: true}})
}

// Function adds a public function with an empty body unless opts say
// otherwise.
func (c *Contract) Function(name string, opts ...FunctionOption) *Contract {
	fn := functionSpec{kind: "function", body: true}
	for _, opt := range opts {
		opt(&fn)
	}
	return c.add(&member{kind: memberFunction, name: name, fn: fn})
}

// FunctionOption configures a function.
type FunctionOption func(*functionSpec)

// Params sets the parameter list.
func Params(vars ...Var) FunctionOption {
	return func(f *functionSpec) { f.params = vars }
}

// Returns sets the return parameter list.
func Returns(vars ...Var) FunctionOption {
	return func(f *functionSpec) { f.returns = vars }
}

// Modifiers applies modifiers declared in the contract or its bases.
func Modifiers(names ...string) FunctionOption {
	return func(f *functionSpec) { f.modifiers = names }
}

// Virtual marks the function virtual.
func Virtual() FunctionOption {
	return func(f *functionSpec) { f.virtual = true }
}

// Unimplemented leaves the function without a body.
func Unimplemented() FunctionOption {
	return func(f *functionSpec) { f.body = false }
}

// WithAssembly adds `assembly { switch calldatasize() case 0 { } default { } }`
// to the body.
func WithAssembly() FunctionOption {
	return func(f *functionSpec) { f.assembly = true }
}

// WithReturn adds a `return;` statement to the body.
func WithReturn() FunctionOption {
	return func(f *functionSpec) { f.ret = true }
}

func (c *Contract) fullyImplemented() bool {
	if c.abstract || c.kind == "interface" {
		return false
	}
	for _, m := range c.members {
		if m.kind == memberFunction && !m.fn.body {
			return false
		}
	}
	return true
}

// modifierID looks the modifier up in c and then its bases.
func (c *Contract) modifierID(name string) int64 {
	for _, x := range linearize(c) {
		for _, m := range x.members {
			if m.kind == memberModifier && m.name == name {
				return m.id
			}
		}
	}
	panic(fmt.Sprintf("testutil: contract %s has no modifier %q", c.name, name))
}

// Linearization computes the C3 linearization solc reports, most derived
// first.
func (c *Contract) Linearization() []int64 {
	lin := linearize(c)
	out := make([]int64, len(lin))
	for i, x := range lin {
		out[i] = x.id
	}
	return out
}

func linearize(c *Contract) []*Contract {
	// solc reads the `is` list from most base-like to most derived, so the
	// last base is merged first
	var seqs [][]*Contract
	for i := len(c.bases) - 1; i >= 0; i-- {
		seqs = append(seqs, linearize(c.bases[i]))
	}
	direct := make([]*Contract, 0, len(c.bases))
	for i := len(c.bases) - 1; i >= 0; i-- {
		direct = append(direct, c.bases[i])
	}
	seqs = append(seqs, direct)
	return append([]*Contract{c}, merge(seqs)...)
}

func merge(seqs [][]*Contract) []*Contract {
	var out []*Contract
	for {
		seqs = dropEmpty(seqs)
		if len(seqs) == 0 {
			return out
		}
		var head *Contract
		for _, s := range seqs {
			if !inTail(s[0], seqs) {
				head = s[0]
				break
			}
		}
		if head == nil {
			panic("testutil: inheritance graph cannot be linearized")
		}
		out = append(out, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func dropEmpty(seqs [][]*Contract) [][]*Contract {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func inTail(c *Contract, seqs [][]*Contract) bool {
	for _, s := range seqs {
		for _, x := range s[1:] {
			if x == c {
				return true
			}
		}
	}
	return false
}
