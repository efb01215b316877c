//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
	"github.com/shamirguard/ceremony-engine/shamir"
)

const testIterations = 10000

func TestRoundTrip(t *testing.T) {
	share := shamir.Share{X: 1, Y: []byte("test share")}
	password := sealedbuf.FromString("testpassword123", 3)

	env, err := Encrypt(share, password, testIterations)
	require.NoError(t, err)

	got, err := Decrypt(env, password, testIterations)
	require.NoError(t, err)
	assert.Equal(t, share, got)
}

func TestWrongPasswordFailsWithIntegrityFailure(t *testing.T) {
	share := shamir.Share{X: 2, Y: []byte("another share")}
	env, err := Encrypt(share, sealedbuf.FromString("correct-password", 3), testIterations)
	require.NoError(t, err)

	_, err = Decrypt(env, sealedbuf.FromString("wrong-password", 3), testIterations)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ceremonyerrors.ErrIntegrityFailure))
}

func TestTamperingEachFieldFailsIntegrityOrFormat(t *testing.T) {
	password := sealedbuf.FromString("pw-for-tamper-test", 3)
	share := shamir.Share{X: 3, Y: []byte("tamper me")}
	env, err := Encrypt(share, password, testIterations)
	require.NoError(t, err)

	flipLastByte := func(b64 string) string {
		raw, decErr := base64.StdEncoding.DecodeString(b64)
		require.NoError(t, decErr)
		raw[len(raw)-1] ^= 0xFF
		return base64.StdEncoding.EncodeToString(raw)
	}

	tampered := env
	tampered.EncryptedShare = flipLastByte(env.EncryptedShare)
	_, err = Decrypt(tampered, password, testIterations)
	require.Error(t, err)

	tampered = env
	tampered.HMAC = flipLastByte(env.HMAC)
	_, err = Decrypt(tampered, password, testIterations)
	assert.True(t, errors.Is(err, ceremonyerrors.ErrIntegrityFailure))

	tampered = env
	tampered.Salt = flipLastByte(env.Salt)
	_, err = Decrypt(tampered, password, testIterations)
	assert.True(t, errors.Is(err, ceremonyerrors.ErrIntegrityFailure))

	tampered = env
	tampered.IV = flipLastByte(env.IV)
	_, err = Decrypt(tampered, password, testIterations)
	require.Error(t, err)
}

func TestInvalidIVLengthFailsWithBadFormat(t *testing.T) {
	password := sealedbuf.FromString("testpassword123", 3)
	share := shamir.Share{X: 1, Y: []byte("test share")}
	env, err := Encrypt(share, password, testIterations)
	require.NoError(t, err)

	env.IV = base64.StdEncoding.EncodeToString([]byte("invalid-iv"))

	_, err = Decrypt(env, password, testIterations)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ceremonyerrors.ErrBadFormat))
}
