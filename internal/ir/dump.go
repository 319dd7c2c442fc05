package ir

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of the subtree rooted at n, one node per
// line, in Iterate order.
func Dump(w io.Writer, n Node) error {
	return dump(w, n, 0)
}

func dump(w io.Writer, n Node, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(n)); err != nil {
		return err
	}
	for _, c := range n.Children() {
		if err := dump(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// TypeName returns the IR type name of n, e.g. "ContractDefinition".
func TypeName(n Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ir.")
}

func describe(n Node) string {
	var b strings.Builder
	b.WriteString(TypeName(n))
	b.WriteByte(' ')
	b.WriteString(n.ByteLocation().String())
	switch n := n.(type) {
	case Declaration:
		fmt.Fprintf(&b, " %q@%s", n.Name(), n.NameLocation())
	case *Opaque:
		fmt.Fprintf(&b, " %s", n.Kind())
	case *IdentifierPath:
		fmt.Fprintf(&b, " %q->%d", n.Name(), n.ReferencedID())
	case *UserDefinedTypeName:
		fmt.Fprintf(&b, " %q->%d", n.Name(), n.ReferencedID())
	case *Identifier:
		fmt.Fprintf(&b, " %q->%d", n.Name(), n.ReferencedID())
	case *YulIdentifier:
		fmt.Fprintf(&b, " %q", n.Name())
	case *YulTypedName:
		fmt.Fprintf(&b, " %q", n.Name())
	case *YulLiteral:
		fmt.Fprintf(&b, " %s:%q", n.Kind(), n.Value())
	case *YulCase:
		if n.IsDefault() {
			b.WriteString(" default")
		}
	case *PragmaDirective:
		fmt.Fprintf(&b, " %s", strings.Join(n.Literals(), ""))
	case *ImportDirective:
		fmt.Fprintf(&b, " %q", n.ImportString())
	}
	return b.String()
}
