//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremonyerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := ErrBadFormat.Clone().WithMsg("iv must be 12 bytes")
	assert.True(t, errors.Is(err, ErrBadFormat))
	assert.False(t, errors.Is(err, ErrIntegrityFailure))
}

func TestCloneDoesNotMutateSentinel(t *testing.T) {
	original := ErrBadFormat.Msg
	clone := ErrBadFormat.Clone().WithMsg("custom context")
	assert.Equal(t, original, ErrBadFormat.Msg)
	assert.Equal(t, "custom context", clone.Msg)
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := ErrCryptoInternal.Clone().WithCause(cause)
	assert.ErrorIs(t, err, cause)
}
