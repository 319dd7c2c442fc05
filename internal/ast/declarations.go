package ast

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/solir/internal/diag"
)

// ContractKind is the declared kind of a contract definition.
type ContractKind string

const (
	ContractKindContract  ContractKind = "contract"
	ContractKindInterface ContractKind = "interface"
	ContractKindLibrary   ContractKind = "library"
)

// FunctionKind distinguishes regular functions from the special ones.
type FunctionKind string

const (
	FunctionKindFunction     FunctionKind = "function"
	FunctionKindConstructor  FunctionKind = "constructor"
	FunctionKindFallback     FunctionKind = "fallback"
	FunctionKindReceive      FunctionKind = "receive"
	FunctionKindFreeFunction FunctionKind = "freeFunction"
)

// TypeDescriptions is the compiler's type annotation on typed nodes.
type TypeDescriptions struct {
	TypeIdentifier string `json:"typeIdentifier"`
	TypeString     string `json:"typeString"`
}

// Documentation is either a StructuredDocumentation node (solc >= 0.6.3)
// or a plain string (older compilers).
type Documentation struct {
	Node *StructuredDocumentation
	Text string
}

// Present reports whether any documentation was attached.
func (d Documentation) Present() bool { return d.Node != nil || d.Text != "" }

func (d *Documentation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) > 0 && b[0] == '"':
		return json.Unmarshal(b, &d.Text)
	}
	n, err := Decode(b)
	if err != nil {
		return err
	}
	doc, ok := n.(*StructuredDocumentation)
	if !ok {
		var h header
		_ = json.Unmarshal(b, &h)
		return diag.SchemaMismatch("", int64(h.ID), h.Type, "documentation")
	}
	d.Node = doc
	return nil
}

// ContractDefinition is a contract, interface or library.
type ContractDefinition struct {
	Base
	Name                    string                  `json:"name"`
	NameLocation            *Src                    `json:"nameLocation,omitempty"`
	Abstract                bool                    `json:"abstract"`
	ContractKind            ContractKind            `json:"contractKind"`
	FullyImplemented        *bool                   `json:"fullyImplemented,omitempty"`
	LinearizedBaseContracts []NodeID                `json:"linearizedBaseContracts"`
	BaseContracts           []*InheritanceSpecifier `json:"baseContracts"`
	Documentation           Documentation           `json:"documentation"`
	Nodes                   List                    `json:"nodes"`
	Scope                   NodeID                  `json:"scope"`
}

// FunctionDefinition is a function, constructor, fallback, receive or free function.
type FunctionDefinition struct {
	Base
	Name             string                `json:"name"`
	NameLocation     *Src                  `json:"nameLocation,omitempty"`
	Kind             FunctionKind          `json:"kind"`
	Visibility       string                `json:"visibility"`
	StateMutability  string                `json:"stateMutability"`
	Virtual          bool                  `json:"virtual"`
	Implemented      bool                  `json:"implemented"`
	FunctionSelector string                `json:"functionSelector,omitempty"`
	BaseFunctions    []NodeID              `json:"baseFunctions,omitempty"`
	Parameters       *ParameterList        `json:"parameters"`
	ReturnParameters *ParameterList        `json:"returnParameters"`
	Modifiers        []*ModifierInvocation `json:"modifiers"`
	Body             *Block                `json:"body"`
	Documentation    Documentation         `json:"documentation"`
}

// ModifierDefinition is a modifier declaration.
type ModifierDefinition struct {
	Base
	Name          string         `json:"name"`
	NameLocation  *Src           `json:"nameLocation,omitempty"`
	Visibility    string         `json:"visibility"`
	Virtual       bool           `json:"virtual"`
	Parameters    *ParameterList `json:"parameters"`
	Body          *Block         `json:"body"`
	Documentation Documentation  `json:"documentation"`
}

// VariableDeclaration is a state variable, local, parameter or struct member.
type VariableDeclaration struct {
	Base
	Name             string           `json:"name"`
	NameLocation     *Src             `json:"nameLocation,omitempty"`
	Constant         bool             `json:"constant"`
	Mutability       string           `json:"mutability"`
	StateVariable    bool             `json:"stateVariable"`
	StorageLocation  string           `json:"storageLocation"`
	Visibility       string           `json:"visibility"`
	Indexed          bool             `json:"indexed,omitempty"`
	TypeName         *Any             `json:"typeName"`
	Value            *Any             `json:"value"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
	Documentation    Documentation    `json:"documentation"`
	Scope            NodeID           `json:"scope"`
}

// EnumDefinition is an enum declaration.
type EnumDefinition struct {
	Base
	Name          string        `json:"name"`
	NameLocation  *Src          `json:"nameLocation,omitempty"`
	CanonicalName string        `json:"canonicalName"`
	Members       []*EnumValue  `json:"members"`
	Documentation Documentation `json:"documentation"`
}

// EnumValue is a single enum member.
type EnumValue struct {
	Base
	Name         string `json:"name"`
	NameLocation *Src   `json:"nameLocation,omitempty"`
}

// ErrorDefinition is a custom error declaration.
type ErrorDefinition struct {
	Base
	Name          string         `json:"name"`
	NameLocation  *Src           `json:"nameLocation,omitempty"`
	ErrorSelector string         `json:"errorSelector,omitempty"`
	Parameters    *ParameterList `json:"parameters"`
	Documentation Documentation  `json:"documentation"`
}

// EventDefinition is an event declaration.
type EventDefinition struct {
	Base
	Name          string         `json:"name"`
	NameLocation  *Src           `json:"nameLocation,omitempty"`
	Anonymous     bool           `json:"anonymous"`
	EventSelector string         `json:"eventSelector,omitempty"`
	Parameters    *ParameterList `json:"parameters"`
	Documentation Documentation  `json:"documentation"`
}

// StructDefinition is a struct declaration.
type StructDefinition struct {
	Base
	Name          string                 `json:"name"`
	NameLocation  *Src                   `json:"nameLocation,omitempty"`
	CanonicalName string                 `json:"canonicalName"`
	Visibility    string                 `json:"visibility"`
	Members       []*VariableDeclaration `json:"members"`
	Documentation Documentation          `json:"documentation"`
}

// UserDefinedValueTypeDefinition is a `type X is uint256;` declaration.
type UserDefinedValueTypeDefinition struct {
	Base
	Name           string `json:"name"`
	NameLocation   *Src   `json:"nameLocation,omitempty"`
	CanonicalName  string `json:"canonicalName"`
	UnderlyingType Any    `json:"underlyingType"`
}
