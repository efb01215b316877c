//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremonyerrors

// Validation: malformed input from the shell, normally recovered locally
// by re-prompting up to a bounded attempt count.
var ErrValidation = New(codeValidation, "validation failed", nil)

// IntegrityFailure: HMAC mismatch, GCM authentication failure, or
// reconstructed-secret hash mismatch.
var ErrIntegrityFailure = New(codeIntegrityFailure, "integrity check failed", nil)

// BadFormat: base64 decode failure, wrong IV length, JSON parse failure,
// or a missing required field. Fatal to the current operation.
var ErrBadFormat = New(codeBadFormat, "malformed data", nil)

// InsufficientShares: fewer shares supplied than the reconstruction
// threshold requires.
var ErrInsufficientShares = New(codeInsufficientShares, "not enough shares to reconstruct the secret", nil)

// DuplicateShares: two or more supplied shares carry the same index.
var ErrDuplicateShares = New(codeDuplicateShares, "duplicate share index", nil)

// InconsistentShareLengths: supplied shares do not all have equal Y length.
var ErrInconsistentShareLengths = New(codeInconsistentShareLengths, "shares have inconsistent lengths", nil)

// CryptoInternal: RNG failure, KDF failure, or AES failure not
// attributable to key material.
var ErrCryptoInternal = New(codeCryptoInternal, "internal cryptographic failure", nil)

// IO: a filesystem operation failed. Fatal only for the shares file;
// journal/audit writes log this and continue.
var ErrIO = New(codeIO, "i/o failure", nil)

// UserCancellation: the shell abandoned or explicitly cancelled an
// input-request.
var ErrUserCancellation = New(codeUserCancellation, "operation cancelled by user", nil)

// TooManyAttempts: the reconstruction decrypt-attempt budget was exhausted.
var ErrTooManyAttempts = New(codeTooManyAttempts, "too many failed attempts", nil)

// DivisionByZero: a GF(256) division by the zero element was attempted.
var ErrDivisionByZero = New(codeDivisionByZero, "division by zero in GF(256)", nil)

// InvalidOperation: an operation was attempted with out-of-range or
// otherwise invalid arguments, e.g. GF(256) inverse of zero, or a
// threshold/share-count outside [2,255].
var ErrInvalidOperation = New(codeInvalidOperation, "invalid operation", nil)
