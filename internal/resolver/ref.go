package resolver

// Ref is a cross reference that is either still pending (only the compiler
// ID is known) or resolved to a live node.
type Ref[T any] struct {
	id       int64
	node     T
	resolved bool
}

// Unresolved returns a pending reference to id.
func Unresolved[T any](id int64) Ref[T] {
	return Ref[T]{id: id}
}

// ID returns the referenced compiler ID.
func (r Ref[T]) ID() int64 { return r.id }

// Resolved returns the referenced node, and false while the reference is pending.
func (r Ref[T]) Resolved() (T, bool) { return r.node, r.resolved }

// IsResolved reports whether the reference has been resolved.
func (r Ref[T]) IsResolved() bool { return r.resolved }

// Resolve marks the reference as pointing at node.
func (r *Ref[T]) Resolve(node T) {
	r.node = node
	r.resolved = true
}

// Reset returns the reference to the pending state.
func (r *Ref[T]) Reset() {
	var zero T
	r.node = zero
	r.resolved = false
}
