//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package envelope implements the per-share cryptographic envelope: a
// keeper password derives an encryption key and an HMAC key via
// PBKDF2-HMAC-SHA256, the serialized Share is sealed with AES-256-GCM,
// and the ciphertext‖tag blob is covered by an outer HMAC-SHA256. The
// HMAC is checked before any AES work, so a wrong password is rejected
// deterministically and cheaply.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"

	"golang.org/x/crypto/pbkdf2"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
	"github.com/shamirguard/ceremony-engine/shamir"
)

// GCMNonceSize is the only nonce length this envelope accepts on decrypt.
// Go's cipher.NewGCM defaults to this size and the specification forbids
// any other, including the legacy 16-byte variant some historical
// implementations used.
const GCMNonceSize = 12

const saltSize = 32
const kdfKeyMaterialSize = 64 // enc_key (32) + hmac_key (32)

// Envelope is the encrypted, authenticated wrapper around a single
// shamir.Share. All fields are base64-encoded strings, matching the
// on-disk SecretKeeperRecord representation.
type Envelope struct {
	EncryptedShare string `json:"encrypted_share"`
	HMAC           string `json:"hmac"`
	Salt           string `json:"salt"`
	IV             string `json:"iv"`
}

// shareDoc is the canonical JSON shape of a Share, property names and
// order exactly as specified: {"X":<int>,"Y":"<base64>"}.
type shareDoc struct {
	X int    `json:"X"`
	Y string `json:"Y"`
}

// Encrypt seals share under a key derived from password. iterations is
// the PBKDF2 round count to record and use; it must already satisfy the
// configured minimum. Encrypt does not release password; the caller
// owns it and releases it once Encrypt returns.
func Encrypt(share shamir.Share, password *sealedbuf.Sealed, iterations int) (Envelope, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return Envelope{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to generate salt").WithCause(err)
	}
	nonce := make([]byte, GCMNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to generate nonce").WithCause(err)
	}

	var keyMaterial []byte
	password.Borrow(func(pw []byte) {
		keyMaterial = pbkdf2.Key(pw, salt, iterations, kdfKeyMaterialSize, sha256.New)
	})
	defer sealedbuf.ClearBytes(keyMaterial)

	encKey := keyMaterial[:32]
	hmacKey := keyMaterial[32:64]

	plaintext, err := json.Marshal(shareDoc{
		X: int(share.X),
		Y: base64.StdEncoding.EncodeToString(share.Y),
	})
	if err != nil {
		return Envelope{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to serialize share").WithCause(err)
	}
	defer sealedbuf.ClearBytes(plaintext)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return Envelope{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to construct AES cipher").WithCause(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return Envelope{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to construct GCM mode").WithCause(err)
	}

	blob := gcm.Seal(nil, nonce, plaintext, nil)

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(blob)
	tag := mac.Sum(nil)

	return Envelope{
		EncryptedShare: base64.StdEncoding.EncodeToString(blob),
		HMAC:           base64.StdEncoding.EncodeToString(tag),
		Salt:           base64.StdEncoding.EncodeToString(salt),
		IV:             base64.StdEncoding.EncodeToString(nonce),
	}, nil
}

// Decrypt opens env under a key derived from password using iterations,
// which must be the value recorded alongside the ceremony output, not
// the engine's current configuration. A wrong password is rejected by
// the HMAC check (IntegrityFailure) before any AES work happens.
func Decrypt(env Envelope, password *sealedbuf.Sealed, iterations int) (shamir.Share, error) {
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("salt is not valid base64").WithCause(err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("iv is not valid base64").WithCause(err)
	}
	if len(nonce) != GCMNonceSize {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("iv must be exactly 12 bytes")
	}
	blob, err := base64.StdEncoding.DecodeString(env.EncryptedShare)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("encrypted_share is not valid base64").WithCause(err)
	}
	wantMAC, err := base64.StdEncoding.DecodeString(env.HMAC)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("hmac is not valid base64").WithCause(err)
	}

	var keyMaterial []byte
	password.Borrow(func(pw []byte) {
		keyMaterial = pbkdf2.Key(pw, salt, iterations, kdfKeyMaterialSize, sha256.New)
	})
	defer sealedbuf.ClearBytes(keyMaterial)

	encKey := keyMaterial[:32]
	hmacKey := keyMaterial[32:64]

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(blob)
	gotMAC := mac.Sum(nil)

	if subtle.ConstantTimeCompare(gotMAC, wantMAC) != 1 {
		return shamir.Share{}, ceremonyerrors.ErrIntegrityFailure.Clone().
			WithMsg("hmac mismatch: wrong password or tampered envelope")
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to construct AES cipher").WithCause(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to construct GCM mode").WithCause(err)
	}

	plaintext, err := gcm.Open(nil, nonce, blob, nil)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrIntegrityFailure.Clone().
			WithMsg("gcm authentication failed").WithCause(err)
	}
	defer sealedbuf.ClearBytes(plaintext)

	var doc shareDoc
	if jsonErr := json.Unmarshal(plaintext, &doc); jsonErr != nil {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("decrypted share is not valid JSON").WithCause(jsonErr)
	}
	if doc.X < 1 || doc.X > 255 {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("decrypted share X is out of range")
	}
	y, err := base64.StdEncoding.DecodeString(doc.Y)
	if err != nil {
		return shamir.Share{}, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("decrypted share Y is not valid base64").WithCause(err)
	}

	return shamir.Share{X: byte(doc.X), Y: y}, nil
}
