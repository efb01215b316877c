//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCommutative(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			assert.Equal(t, Add(byte(a), byte(b)), Add(byte(b), byte(a)))
		}
	}
}

func TestMulCommutativeAndMatchesBitSerial(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			av, bv := byte(a), byte(b)
			assert.Equal(t, Mul(av, bv), Mul(bv, av))
			assert.Equal(t, MulBitSerial(av, bv), Mul(av, bv))
		}
	}
}

func TestMulZero(t *testing.T) {
	for a := 0; a < 256; a++ {
		assert.Equal(t, byte(0), Mul(byte(a), 0))
		assert.Equal(t, byte(0), Mul(0, byte(a)))
	}
}

func TestInvIdentity(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv, ok := Inv(byte(a))
		require.True(t, ok)
		assert.Equal(t, byte(1), Mul(byte(a), inv))

		bruteInv, bruteOk := InvBruteForce(byte(a))
		require.True(t, bruteOk)
		assert.Equal(t, bruteInv, inv)
	}
}

func TestInvZeroUndefined(t *testing.T) {
	_, ok := Inv(0)
	assert.False(t, ok)
	_, ok = InvBruteForce(0)
	assert.False(t, ok)
}

func TestDivByZeroUndefined(t *testing.T) {
	_, ok := Div(5, 0)
	assert.False(t, ok)
}

func TestDivRoundTrip(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			q, ok := Div(byte(a), byte(b))
			require.True(t, ok)
			assert.Equal(t, byte(a), Mul(q, byte(b)))
		}
	}
}
