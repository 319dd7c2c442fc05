// Package diag defines the fatal error taxonomy shared by the AST decoder,
// the IR constructors and the reference resolver.
//
// Every error in this package is unrecoverable for the analysis session that
// observes it. Nothing retries or swallows them: they propagate to the session
// caller, which discards the partially built IR.
package diag

import (
	"errors"
	"fmt"
)

// Code categorizes IR errors.
type Code string

const (
	// CodeSchemaMismatch indicates a raw AST node kind that is not part of the
	// closed set expected at that position.
	CodeSchemaMismatch Code = "SCHEMA_MISMATCH"

	// CodeNameSpanNotFound indicates the name locator found no identifier for
	// a declaration.
	CodeNameSpanNotFound Code = "NAME_SPAN_NOT_FOUND"

	// CodeDuplicateID indicates a node ID was registered twice within one
	// compilation unit.
	CodeDuplicateID Code = "DUPLICATE_ID"

	// CodeDanglingReference indicates a lookup for an ID that is not bound.
	CodeDanglingReference Code = "DANGLING_REFERENCE"

	// CodeInconsistentDestroy indicates a destroy callback tried to remove a
	// reverse-index entry that was already gone.
	CodeInconsistentDestroy Code = "INCONSISTENT_DESTROY"
)

// NoID marks an Error that is not tied to a single node ID.
const NoID int64 = -1 << 63

// Error is a fatal IR error with as much location context as was available
// at the point of detection.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// File is the source unit path, if known.
	File string

	// Start and End are the byte location, if known (End > Start).
	Start, End int

	// NodeID is the offending compiler node ID, or NoID.
	NodeID int64

	// Kind is the offending raw node kind or declaration kind.
	Kind string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Kind != "" {
		msg += fmt.Sprintf(" (kind=%s)", e.Kind)
	}
	if e.NodeID != NoID {
		msg += fmt.Sprintf(" (id=%d)", e.NodeID)
	}
	if e.File != "" {
		if e.End > e.Start {
			msg += fmt.Sprintf(" at %s:%d-%d", e.File, e.Start, e.End)
		} else {
			msg += fmt.Sprintf(" at %s", e.File)
		}
	}
	return msg
}

// HasCode reports whether err wraps an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsSchemaMismatch returns true if err is a schema mismatch error.
func IsSchemaMismatch(err error) bool { return HasCode(err, CodeSchemaMismatch) }

// IsNameSpanNotFound returns true if err is a name-span error.
func IsNameSpanNotFound(err error) bool { return HasCode(err, CodeNameSpanNotFound) }

// IsDuplicateID returns true if err is a duplicate ID error.
func IsDuplicateID(err error) bool { return HasCode(err, CodeDuplicateID) }

// IsDanglingReference returns true if err is a dangling reference error.
func IsDanglingReference(err error) bool { return HasCode(err, CodeDanglingReference) }

// IsInconsistentDestroy returns true if err is an inconsistent destroy error.
func IsInconsistentDestroy(err error) bool { return HasCode(err, CodeInconsistentDestroy) }

// SchemaMismatch creates an Error for an unexpected raw node kind.
func SchemaMismatch(file string, id int64, kind, where string) *Error {
	return &Error{
		Code:    CodeSchemaMismatch,
		Message: fmt.Sprintf("unexpected node kind in %s", where),
		File:    file,
		NodeID:  id,
		Kind:    kind,
	}
}

// NameSpanNotFound creates an Error for a declaration whose name could not be located.
func NameSpanNotFound(file string, start, end int, kind string) *Error {
	return &Error{
		Code:    CodeNameSpanNotFound,
		Message: "declaration source does not start with its kind keyword",
		File:    file,
		Start:   start,
		End:     end,
		NodeID:  NoID,
		Kind:    kind,
	}
}

// DuplicateID creates an Error for a second registration of the same ID.
func DuplicateID(unit, file string, id int64) *Error {
	return &Error{
		Code:    CodeDuplicateID,
		Message: fmt.Sprintf("node id already bound in unit %s", unit),
		File:    file,
		NodeID:  id,
	}
}

// DanglingReference creates an Error for an unbound ID lookup.
func DanglingReference(unit string, id int64) *Error {
	return &Error{
		Code:    CodeDanglingReference,
		Message: fmt.Sprintf("no node bound in unit %s", unit),
		NodeID:  id,
	}
}

// InconsistentDestroy creates an Error for a missing reverse-index entry.
func InconsistentDestroy(file string, id int64, index string) *Error {
	return &Error{
		Code:    CodeInconsistentDestroy,
		Message: fmt.Sprintf("entry already absent from %s", index),
		File:    file,
		NodeID:  id,
	}
}
