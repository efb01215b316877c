//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
)

// HMACAlgorithm identifies the algorithm recorded in SessionOutput, for
// forward-compatible verification.
const HMACAlgorithm = "HMAC-SHA256"

// SignatureNote is carried alongside the signature to describe what
// witnessing the admin HMAC establishes.
const SignatureNote = "admin_session_hmac witnesses that the administrator " +
	"present at this ceremony attested to the recorded session_data"

// SessionOutput is the sealed, persistable wrapper around a
// SessionJournal: its canonical-JSON hash and an HMAC computed under
// the admin session key, proving a specific administrator witnessed
// this exact journal content.
type SessionOutput struct {
	SessionData        SessionJournal `json:"session_data"`
	SessionDataHash     string         `json:"session_data_hash"`
	AdminSessionHMAC    string         `json:"admin_session_hmac"`
	HMACAlgorithm       string         `json:"hmac_algorithm"`
	SignatureTimestamp  time.Time      `json:"signature_timestamp"`
	SignatureNote       string         `json:"signature_note"`
}

// CanonicalJSON serializes v with no indentation and no HTML escaping,
// producing the same byte sequence on every call for the same Go value.
// This is the representation hashed and HMAC'd for provenance, and the
// one reproduced during third-party verification.
func CanonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// IndentedJSON serializes v with two-space indentation, the
// representation used for files meant to be read by a human or
// inspected in version control.
func IndentedJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Finalize stamps end_time and duration, appends a SESSION_END event,
// computes the terminal summary, and seals the journal into a
// SessionOutput: SHA-256 over the canonical JSON of the journal, and
// HMAC-SHA256 over the same bytes keyed by adminSessionKey. adminSessionKey
// is released (zeroized) before Finalize returns, matching the
// specification's "admin_session_key is zeroized after use".
func Finalize(j *SessionJournal, adminSessionKey *sealedbuf.Sealed) (SessionOutput, error) {
	defer adminSessionKey.Release()

	j.EndTime = time.Now()
	j.Duration = j.EndTime.Sub(j.StartTime)
	j.Append(EventSessionEnd, "session ended")
	j.Summary = j.buildSummary()

	canonical, err := CanonicalJSON(j)
	if err != nil {
		return SessionOutput{}, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to serialize journal for sealing").WithCause(err)
	}

	hash := sha256.Sum256(canonical)

	var mac []byte
	adminSessionKey.Borrow(func(key []byte) {
		h := hmac.New(sha256.New, key)
		h.Write(canonical)
		mac = h.Sum(nil)
	})

	return SessionOutput{
		SessionData:        *j,
		SessionDataHash:    base64.StdEncoding.EncodeToString(hash[:]),
		AdminSessionHMAC:   base64.StdEncoding.EncodeToString(mac),
		HMACAlgorithm:      HMACAlgorithm,
		SignatureTimestamp: time.Now(),
		SignatureNote:      SignatureNote,
	}, nil
}

// Verify recomputes the hash and HMAC over output.SessionData using
// adminSessionKey and reports whether they match the stored values. A
// third party performs this with the admin password run back through
// the same PBKDF2 parameters used at ADMIN_BIND.
func Verify(output SessionOutput, adminSessionKey *sealedbuf.Sealed) (bool, error) {
	defer adminSessionKey.Release()

	canonical, err := CanonicalJSON(output.SessionData)
	if err != nil {
		return false, ceremonyerrors.ErrCryptoInternal.Clone().
			WithMsg("failed to serialize journal for verification").WithCause(err)
	}

	hash := sha256.Sum256(canonical)
	wantHash, err := base64.StdEncoding.DecodeString(output.SessionDataHash)
	if err != nil {
		return false, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("session_data_hash is not valid base64").WithCause(err)
	}
	if subtle.ConstantTimeCompare(hash[:], wantHash) != 1 {
		return false, nil
	}

	wantMAC, err := base64.StdEncoding.DecodeString(output.AdminSessionHMAC)
	if err != nil {
		return false, ceremonyerrors.ErrBadFormat.Clone().
			WithMsg("admin_session_hmac is not valid base64").WithCause(err)
	}

	var gotMAC []byte
	adminSessionKey.Borrow(func(key []byte) {
		h := hmac.New(sha256.New, key)
		h.Write(canonical)
		gotMAC = h.Sum(nil)
	})

	return subtle.ConstantTimeCompare(gotMAC, wantMAC) == 1, nil
}
