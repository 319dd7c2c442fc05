package ir

import (
	"fmt"
	"iter"
	"log/slog"
	"sort"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/diag"
	"github.com/roach88/solir/internal/resolver"
)

// Span is a half-open byte range [Start, End) into a source file.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return o.Start >= s.Start && o.End <= s.End && o.Start <= o.End
}

func (s Span) String() string { return fmt.Sprintf("[%d,%d)", s.Start, s.End) }

func spanOf(src ast.Src) Span {
	return Span{Start: src.Offset, End: src.End()}
}

// Node is any IR node, Solidity or Yul.
//
// Ownership is strictly top-down: a node owns the children returned by
// Children and is owned by its Parent. Cross references between nodes are
// never ownership; they go through the resolver.
type Node interface {
	// ByteLocation is the node's range in its source file.
	ByteLocation() Span
	// Parent is nil only for a SourceUnit.
	Parent() Node
	// Raw is the compiler node this node was built from.
	Raw() ast.Node
	// File is the path of the owning source file.
	File() string
	// Unit is the compilation unit the node was built in.
	Unit() resolver.UnitID
	// Children returns the owned children in source order.
	Children() []Node
	// Iterate yields the node, then every descendant, depth-first pre-order.
	// Each call starts a fresh walk.
	Iterate() iter.Seq[Node]
}

// InitContext is passed to every constructor of one source file.
type InitContext struct {
	File     string
	Source   []byte
	Unit     resolver.UnitID
	Resolver *resolver.Resolver[Node]
	Logger   *slog.Logger
}

func (c *InitContext) register(raw ast.Identified, n Node) error {
	return c.Resolver.RegisterNode(c.Unit, c.File, int64(raw.NodeID()), n)
}

func (c *InitContext) postProcess(fn resolver.PostProcessFunc[Node]) error {
	return c.Resolver.RegisterPostProcessCallback(c.File, fn)
}

func (c *InitContext) onDestroy(fn resolver.DestroyFunc) {
	c.Resolver.RegisterDestroyCallback(c.File, fn)
}

func (c *InitContext) resolve(id ast.NodeID) (Node, error) {
	return c.Resolver.Resolve(c.Unit, int64(id))
}

// slice returns the source bytes of span, or nil if span is out of bounds.
func (c *InitContext) slice(s Span) []byte {
	if s.Start < 0 || s.End > len(c.Source) || s.Start > s.End {
		return nil
	}
	return c.Source[s.Start:s.End]
}

func (c *InitContext) mismatch(raw ast.Node, where string) error {
	id := diag.NoID
	if idn, ok := raw.(ast.Identified); ok {
		id = int64(idn.NodeID())
	}
	return diag.SchemaMismatch(c.File, id, raw.NodeType(), where)
}

func (c *InitContext) mismatchKind(kind, where string) error {
	return diag.SchemaMismatch(c.File, diag.NoID, kind, where)
}

type nodeBase struct {
	init   *InitContext
	raw    ast.Node
	parent Node
	loc    Span
}

func newBase(init *InitContext, raw ast.Node, parent Node) nodeBase {
	return nodeBase{
		init:   init,
		raw:    raw,
		parent: parent,
		loc:    spanOf(raw.Source()),
	}
}

func (b *nodeBase) ByteLocation() Span    { return b.loc }
func (b *nodeBase) Parent() Node          { return b.parent }
func (b *nodeBase) Raw() ast.Node         { return b.raw }
func (b *nodeBase) File() string          { return b.init.File }
func (b *nodeBase) Unit() resolver.UnitID { return b.init.Unit }

// Source returns the node's source text.
func (b *nodeBase) Source() string { return string(b.init.slice(b.loc)) }

func walk(n Node, yield func(Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.Children() {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

func iterate(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(n, yield)
	}
}

// sortByLocation orders nodes by file, then start offset.
func sortByLocation[T Node](nodes []T) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].File() != nodes[j].File() {
			return nodes[i].File() < nodes[j].File()
		}
		return nodes[i].ByteLocation().Start < nodes[j].ByteLocation().Start
	})
}
