// Package errors provides error handling for Medley.
//
// It re-exports github.com/cockroachdb/errors, giving every package in this
// module stack traces, wrapping with context, and errors.Is/As compatible
// sentinels without each call site importing the upstream package directly.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint        = crdb.WithHint
	WithHintf       = crdb.WithHintf
	WithDetail      = crdb.WithDetail
	WithDetailf     = crdb.WithDetailf
	WithSafeDetails = crdb.WithSafeDetails
)

// Error inspection
var (
	Is             = crdb.Is
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
)

// Sentinel error kinds from the error handling design (§7).
//
// Use errors.Is() against these to classify a failure; wrap with
// errors.Wrap() to add context while preserving the sentinel identity.
var (
	// ErrDirectiveSyntax indicates a directive string failed to parse.
	ErrDirectiveSyntax = New("directive syntax error")

	// ErrDirectiveEmpty indicates a directive plan had zero alternatives.
	ErrDirectiveEmpty = New("directive produced no alternatives")

	// ErrClusterOutOfMemory indicates the cluster builder could not fit
	// its edge table in the available worker memory.
	ErrClusterOutOfMemory = New("cluster builder out of memory")

	// ErrIndexIO indicates the underlying sorted store failed to open,
	// write, or publish.
	ErrIndexIO = New("index io error")

	// ErrIndexLookupOverflow indicates a single-key fanout exceeded the
	// configured soft ceiling. It is reported as a warning alongside
	// results, never as a truncation of the core result set.
	ErrIndexLookupOverflow = New("index lookup overflow")

	// ErrMissingIndex indicates a query referenced an index path that
	// does not exist on disk.
	ErrMissingIndex = New("missing index")
)

// IsMissingIndex reports whether err is or wraps ErrMissingIndex.
func IsMissingIndex(err error) bool {
	return err != nil && Is(err, ErrMissingIndex)
}

// IsDirectiveError reports whether err is a directive parsing failure.
func IsDirectiveError(err error) bool {
	return err != nil && (Is(err, ErrDirectiveSyntax) || Is(err, ErrDirectiveEmpty))
}
