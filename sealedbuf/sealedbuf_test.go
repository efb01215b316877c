//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package sealedbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBorrowSeesOriginalBytes(t *testing.T) {
	sealed := FromString("correct horse battery staple", 3)
	sealed.Borrow(func(b []byte) {
		assert.Equal(t, "correct horse battery staple", string(b))
	})
}

func TestReleaseWipesBuffer(t *testing.T) {
	sealed := FromString("super-secret-password", 3)
	sealed.Release()

	assert.Equal(t, 0, sealed.Len())
	sealed.Borrow(func(b []byte) {
		assert.Nil(t, b)
	})
}

func TestReleaseIsIdempotent(t *testing.T) {
	sealed := FromString("x", 1)
	sealed.Release()
	assert.NotPanics(t, func() { sealed.Release() })
}

func TestClearBytesZeroesInPlace(t *testing.T) {
	b := []byte("sensitive")
	ClearBytes(b)
	for _, v := range b {
		assert.Equal(t, byte(0), v)
	}
}
