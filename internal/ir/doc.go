// Package ir provides the typed, cross-linked intermediate representation
// built from solc compact JSON ASTs.
//
// Nodes are constructed top-down, one source file at a time. Cross references
// between nodes are recorded as compiler IDs during construction and turned
// into object references by resolver callbacks once every file of the
// compilation unit exists.
//
// Key design constraints:
//   - a node is owned by exactly one parent, set at construction
//   - reverse indexes (ChildContracts, References) are mutated only by
//     resolver post-process and destroy callbacks
//   - Iterate is depth-first pre-order and yields the node itself first
//   - Yul nodes never touch the resolver
package ir
