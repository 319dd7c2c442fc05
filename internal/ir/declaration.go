package ir

import (
	"errors"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/diag"
)

// Declaration is a named node that other nodes may reference.
type Declaration interface {
	Node
	Name() string
	// CanonicalName qualifies the name with its enclosing contract, struct
	// or enum, e.g. "Token.Transfer" or "Token.State.Active".
	CanonicalName() string
	// NameLocation is the span of the bare identifier. It lies within
	// ByteLocation.
	NameLocation() Span
	// References lists the nodes whose resolved reference points here.
	References() []Node
	decl() *declBase
}

type declBase struct {
	nodeBase
	id      ast.NodeID
	name    string
	nameLoc Span

	// references is a reverse index. It is written only by resolver
	// callbacks: post-process adds, destroy removes.
	references map[Node]struct{}
}

func newDeclBase(init *InitContext, raw ast.Identified, parent Node, name string) declBase {
	return declBase{
		nodeBase:   newBase(init, raw, parent),
		id:         raw.NodeID(),
		name:       name,
		references: make(map[Node]struct{}),
	}
}

func (d *declBase) Name() string       { return d.name }
func (d *declBase) NameLocation() Span { return d.nameLoc }
func (d *declBase) decl() *declBase    { return d }

// ID returns the compiler node ID.
func (d *declBase) ID() ast.NodeID { return d.id }

func (d *declBase) References() []Node {
	out := make([]Node, 0, len(d.references))
	for n := range d.references {
		out = append(out, n)
	}
	sortByLocation(out)
	return out
}

func (d *declBase) addReference(n Node) {
	d.references[n] = struct{}{}
}

func (d *declBase) removeReference(n Node) error {
	if _, ok := d.references[n]; !ok {
		return diag.InconsistentDestroy(d.init.File, int64(d.id), "references of "+d.name)
	}
	delete(d.references, n)
	return nil
}

// locate sets nameLoc. The compiler's nameLocation is used when present and
// inside the declaration; otherwise the leading-keyword locator runs.
func (d *declBase) locate(kind NameKind, nameLocation *ast.Src) error {
	if nameLocation != nil && nameLocation.Offset >= 0 && nameLocation.Length > 0 {
		span := spanOf(*nameLocation)
		if d.loc.Contains(span) {
			d.nameLoc = span
			return nil
		}
	}
	span, err := LocateName(kind, d.init.slice(d.loc), d.loc.Start)
	if err != nil {
		return d.withFile(err)
	}
	d.nameLoc = span
	return nil
}

// locateIdentifier sets nameLoc for declarations without a leading keyword.
// from is the absolute offset to start searching at.
func (d *declBase) locateIdentifier(nameLocation *ast.Src, from int) error {
	if nameLocation != nil && nameLocation.Offset >= 0 && nameLocation.Length > 0 {
		span := spanOf(*nameLocation)
		if d.loc.Contains(span) {
			d.nameLoc = span
			return nil
		}
	}
	if d.name == "" {
		// unnamed parameter: empty span at the end of the declaration
		d.nameLoc = Span{Start: d.loc.End, End: d.loc.End}
		return nil
	}
	if from < d.loc.Start || from > d.loc.End {
		from = d.loc.Start
	}
	span, err := locateToken(d.name, d.init.slice(d.loc), d.loc.Start, from-d.loc.Start)
	if err != nil {
		return d.withFile(err)
	}
	d.nameLoc = span
	return nil
}

func (d *declBase) withFile(err error) error {
	var de *diag.Error
	if errors.As(err, &de) {
		de.File = d.init.File
		de.NodeID = int64(d.id)
	}
	return err
}

// qualify prefixes name with the canonical name of the enclosing
// contract, struct or enum.
func qualify(parent Node, name string) string {
	switch p := parent.(type) {
	case *ContractDefinition:
		return p.CanonicalName() + "." + name
	case *StructDefinition:
		return p.CanonicalName() + "." + name
	case *EnumDefinition:
		return p.CanonicalName() + "." + name
	}
	return name
}
