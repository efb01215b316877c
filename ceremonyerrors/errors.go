//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package ceremonyerrors implements the error taxonomy of the ceremony
// engine: a small set of sentinel errors, one per failure kind, that
// callers compare against with errors.Is rather than switching on type.
package ceremonyerrors

import (
	"errors"
	"fmt"
)

// CeremonyError is a structured error carrying a Code for programmatic
// handling, a human-readable Msg, and an optional wrapped cause.
//
// Usage:
//  1. Compare with errors.Is(err, ceremonyerrors.ErrIntegrityFailure).
//  2. Add context with .Clone().WithMsg(...) or .WithCause(...); never
//     mutate a sentinel in place.
type CeremonyError struct {
	Code  Code
	Msg   string
	Cause error
}

// New creates a CeremonyError. Prefer cloning one of the predefined
// sentinels below over calling this directly.
func New(code Code, msg string, cause error) *CeremonyError {
	return &CeremonyError{Code: code, Msg: msg, Cause: cause}
}

// Error implements the error interface.
func (e *CeremonyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
}

// Unwrap enables errors.Is/errors.As traversal into Cause.
func (e *CeremonyError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CeremonyError with the same Code,
// enabling errors.Is(err, ErrBadFormat)-style sentinel comparison.
func (e *CeremonyError) Is(target error) bool {
	var t *CeremonyError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Clone returns a shallow copy, used to customize a sentinel's message or
// cause without mutating the package-level sentinel value.
func (e *CeremonyError) Clone() *CeremonyError {
	return &CeremonyError{Code: e.Code, Msg: e.Msg, Cause: e.Cause}
}

// WithMsg replaces e's Msg in place and returns e. It mutates its
// receiver, so chain it off Clone():
// ErrBadFormat.Clone().WithMsg("iv must be 12 bytes").
func (e *CeremonyError) WithMsg(msg string) *CeremonyError {
	e.Msg = msg
	return e
}

// WithCause sets e's Cause in place and returns e. Like WithMsg, it
// mutates its receiver and is meant to be chained off Clone().
func (e *CeremonyError) WithCause(cause error) *CeremonyError {
	e.Cause = cause
	return e
}
