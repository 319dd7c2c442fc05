package ast

// SourceUnit is the root node of one source file.
type SourceUnit struct {
	Base
	AbsolutePath    string              `json:"absolutePath"`
	License         *string             `json:"license,omitempty"`
	ExportedSymbols map[string][]NodeID `json:"exportedSymbols"`
	Nodes           List                `json:"nodes"`
}

// PragmaDirective is a `pragma ...;` line, split into tokens.
type PragmaDirective struct {
	Base
	Literals []string `json:"literals"`
}

// ImportDirective is an import statement. SourceUnit is the ID of the
// imported file's SourceUnit node.
type ImportDirective struct {
	Base
	File         string `json:"file"`
	AbsolutePath string `json:"absolutePath"`
	UnitAlias    string `json:"unitAlias"`
	SourceUnit   NodeID `json:"sourceUnit"`
	Scope        NodeID `json:"scope"`
}

// InheritanceSpecifier is one `is Base(args)` clause. BaseName holds an
// IdentifierPath (solc >= 0.8) or a UserDefinedTypeName (older).
type InheritanceSpecifier struct {
	Base
	BaseName  Any   `json:"baseName"`
	Arguments *List `json:"arguments"`
}

// IdentifierPath is a possibly dotted name referring to a declaration.
type IdentifierPath struct {
	Base
	Name                  string `json:"name"`
	ReferencedDeclaration NodeID `json:"referencedDeclaration"`
}

// UserDefinedTypeName names a contract, struct, enum or value type.
// Newer compilers nest the name in PathNode; older ones only set Name.
type UserDefinedTypeName struct {
	Base
	Name                  string           `json:"name,omitempty"`
	PathNode              *IdentifierPath  `json:"pathNode,omitempty"`
	ReferencedDeclaration NodeID           `json:"referencedDeclaration"`
	TypeDescriptions      TypeDescriptions `json:"typeDescriptions"`
}

// Identifier is a name expression. It appears as a modifier name in
// pre-0.8 ASTs.
type Identifier struct {
	Base
	Name                  string `json:"name"`
	ReferencedDeclaration NodeID `json:"referencedDeclaration"`
}

// UsingForFunction is one entry of `using {f, g as +} for T;`.
type UsingForFunction struct {
	Function   *IdentifierPath `json:"function,omitempty"`
	Definition *IdentifierPath `json:"definition,omitempty"`
	Operator   string          `json:"operator,omitempty"`
}

// UsingForDirective is a `using L for T;` directive.
type UsingForDirective struct {
	Base
	LibraryName  *Any               `json:"libraryName"`
	FunctionList []UsingForFunction `json:"functionList,omitempty"`
	TypeName     *Any               `json:"typeName"`
	Global       bool               `json:"global"`
}

// StructuredDocumentation is a NatSpec comment attached to a declaration.
type StructuredDocumentation struct {
	Base
	Text string `json:"text"`
}

// ParameterList is a parenthesized parameter or return list.
type ParameterList struct {
	Base
	Parameters []*VariableDeclaration `json:"parameters"`
}

// ModifierInvocation is a modifier or base-constructor call on a function.
// ModifierName holds an IdentifierPath or an Identifier.
type ModifierInvocation struct {
	Base
	ModifierName Any    `json:"modifierName"`
	Arguments    *List  `json:"arguments"`
	Kind         string `json:"kind,omitempty"`
}
