//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremonyerrors

// Code identifies the kind of failure that occurred, independent of the
// human-readable message attached to it.
type Code string

const (
	codeValidation                Code = "validation_error"
	codeIntegrityFailure          Code = "integrity_failure"
	codeBadFormat                 Code = "bad_format"
	codeInsufficientShares        Code = "insufficient_shares"
	codeDuplicateShares           Code = "duplicate_shares"
	codeInconsistentShareLengths  Code = "inconsistent_share_lengths"
	codeCryptoInternal            Code = "crypto_internal_error"
	codeIO                        Code = "io_error"
	codeUserCancellation          Code = "user_cancellation"
	codeTooManyAttempts           Code = "too_many_attempts"
	codeDivisionByZero            Code = "division_by_zero"
	codeInvalidOperation          Code = "invalid_operation"
)
