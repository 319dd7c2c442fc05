package ast

// Block is a `{ ... }` statement list.
type Block struct {
	Base
	Statements List `json:"statements"`
}

// UncheckedBlock is an `unchecked { ... }` statement list.
type UncheckedBlock struct {
	Base
	Statements List `json:"statements"`
}

// PlaceholderStatement is the `_;` inside a modifier body.
type PlaceholderStatement struct {
	Base
}

// InlineAssembly is an `assembly { ... }` statement. AST is the Yul body.
type InlineAssembly struct {
	Base
	AST        *YulBlock `json:"AST"`
	EVMVersion string    `json:"evmVersion"`
	Flags      []string  `json:"flags,omitempty"`
}
