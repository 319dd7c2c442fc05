// Package ast decodes the compact JSON AST emitted by solc into typed raw
// nodes.
//
// Decoding dispatches on each object's "nodeType" against a closed set of
// kinds. Kinds without a dedicated model are kept as Opaque nodes with their
// raw JSON; a kind outside the set is a diag.CodeSchemaMismatch error, since it
// means the decoder is older than the compiler that produced the AST.
//
// Nodes here are plain data. Ownership, parent links and cross references
// are added by package ir.
package ast
