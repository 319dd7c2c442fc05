package ir

import (
	"iter"

	"github.com/roach88/solir/internal/ast"
)

// StructuredDocumentation is a NatSpec comment owned by a declaration.
type StructuredDocumentation struct {
	nodeBase
	text string
}

func newStructuredDocumentation(init *InitContext, raw *ast.StructuredDocumentation, parent Node) (*StructuredDocumentation, error) {
	d := &StructuredDocumentation{
		nodeBase: newBase(init, raw, parent),
		text:     raw.Text,
	}
	if err := init.register(raw, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Text is the comment body without comment markers.
func (d *StructuredDocumentation) Text() string            { return d.text }
func (d *StructuredDocumentation) Children() []Node        { return nil }
func (d *StructuredDocumentation) Iterate() iter.Seq[Node] { return iterate(d) }

// Documentation is the documentation attached to a declaration: an owned
// StructuredDocumentation node, a plain string from pre-0.6.3 compilers, or
// nothing.
type Documentation struct {
	Node *StructuredDocumentation
	Text string
}

// Present reports whether any documentation is attached.
func (d Documentation) Present() bool { return d.Node != nil || d.Text != "" }

// String returns the documentation text in either form.
func (d Documentation) String() string {
	if d.Node != nil {
		return d.Node.Text()
	}
	return d.Text
}

func newDocumentation(init *InitContext, raw ast.Documentation, parent Node) (Documentation, error) {
	if raw.Node == nil {
		return Documentation{Text: raw.Text}, nil
	}
	n, err := newStructuredDocumentation(init, raw.Node, parent)
	if err != nil {
		return Documentation{}, err
	}
	return Documentation{Node: n}, nil
}

// appendDoc appends the documentation node to children when present.
func appendDoc(children []Node, d Documentation) []Node {
	if d.Node != nil {
		return append(children, d.Node)
	}
	return children
}
