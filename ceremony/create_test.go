//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamirguard/ceremony-engine/config"
)

// testConfig returns a CeremonyConfig suitable for fast, deterministic
// tests: a low KDF cost, and password-complexity rules relaxed to
// non-emptiness so scripted fixture passwords don't need to satisfy the
// full default policy.
func testConfig(t *testing.T) config.CeremonyConfig {
	cfg := config.Default(t.TempDir())
	cfg.Security.KDFIterations = 10000
	cfg.Security.MinPasswordLength = 1
	cfg.Security.RequireUppercase = false
	cfg.Security.RequireLowercase = false
	cfg.Security.RequireDigit = false
	cfg.Security.RequireSpecialCharacter = false
	return cfg
}

// scriptCreateShares builds the answer sequence common to both the
// success and abandon forms of scenario 3: an administrator, an
// organization, k=2/n=2 parameters, an explicit secret, and two ad-hoc
// keepers Alice/Bob with the given passwords.
func scriptCreateShares(alicePassword, bobPassword, secret string) []answerFunc {
	return []answerFunc{
		withSecret("admin-session-password"), // ADMIN_BIND
		withText("Acme Corp"),                // ORG_INFO name
		withText("555-0100"),                 // ORG_INFO phone
		withInt(2),                           // PARAMS threshold
		withInt(2),                           // PARAMS total_shares
		withBool(false),                      // SECRET_ACQUIRE generate?
		withSecret(secret),                   // SECRET_ACQUIRE secret text
		withText("Alice"),                    // keeper 1 name
		withText("555-1111"),                 // keeper 1 phone
		withText("alice@example.com"),        // keeper 1 email
		withSecret(alicePassword),            // keeper 1 password
		withText("Bob"),                      // keeper 2 name
		withText("555-2222"),                 // keeper 2 phone
		withText("bob@example.com"),          // keeper 2 email
		withSecret(bobPassword),              // keeper 2 password
	}
}

func TestEndToEndScenario3CreateSucceedsWithMatchingSelfTestPasswords(t *testing.T) {
	cfg := testConfig(t)
	script := append(scriptCreateShares("password123", "password456", "this is the master secret"),
		withSecret("password123"), // self-test keeper 1
		withSecret("password456"), // self-test keeper 2
	)
	sink := &scriptedSink{t: t, script: script}

	engine, err := New(cfg, sink)
	require.NoError(t, err)

	result, err := engine.CreateShares()
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.FileExists(t, result.OutputFile)
	assert.Len(t, result.SharesData.Keepers, 2)

	completion, ok := sink.completionEvent()
	require.True(t, ok)
	assert.True(t, completion.Success)
}

// TestShamirSecretOutputUsesPascalCaseFieldNames asserts the emitted
// shares file carries the PascalCase field names of the external schema
// at the top level, in Configuration and in the first keeper record, and
// parses back into ShamirSecretOutput, so a downstream consumer built
// against the documented schema can parse it.
func TestShamirSecretOutputUsesPascalCaseFieldNames(t *testing.T) {
	cfg := testConfig(t)
	script := append(scriptCreateShares("password123", "password456", "this is the master secret"),
		withSecret("password123"),
		withSecret("password456"),
	)
	sink := &scriptedSink{t: t, script: script}

	engine, err := New(cfg, sink)
	require.NoError(t, err)

	result, err := engine.CreateShares()
	require.NoError(t, err)

	body, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))

	for _, key := range []string{"Version", "SessionId", "CreatedAt", "Organization", "Configuration", "MasterSecretHash", "Keepers"} {
		assert.Contains(t, raw, key)
	}

	configuration, ok := raw["Configuration"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"TotalShares", "ThresholdRequired", "Algorithm", "EncryptionAlgorithm", "KDFAlgorithm", "KDFIterations"} {
		assert.Contains(t, configuration, key)
	}

	keepers, ok := raw["Keepers"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, keepers)
	firstKeeper, ok := keepers[0].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"Id", "ShareNumber", "Name", "Phone", "Email", "EncryptedShare", "HMAC", "Salt", "IV", "CreatedAt", "SessionId"} {
		assert.Contains(t, firstKeeper, key)
	}

	var roundTripped ShamirSecretOutput
	require.NoError(t, json.Unmarshal(body, &roundTripped))
	assert.Equal(t, result.SharesData.SessionID, roundTripped.SessionID)
	assert.Equal(t, result.SharesData.MasterSecretHash, roundTripped.MasterSecretHash)
}

func TestRequestValidatedSecretRepromptsOnPolicyViolation(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Security.KDFIterations = 10000
	// Default policy: min length 12, upper/lower/digit/special required.

	script := []answerFunc{
		withSecret("short"),           // too short, rejected
		withSecret("alllowercase123"), // no uppercase or special char, rejected
		withSecret("Str0ng!Password"), // satisfies every rule, accepted
	}
	sink := &scriptedSink{t: t, script: script}

	engine, err := New(cfg, sink)
	require.NoError(t, err)

	sealed, err := engine.requestValidatedSecret("Administrator session password")
	require.NoError(t, err)
	defer sealed.Release()

	var got string
	sealed.Borrow(func(b []byte) { got = string(b) })
	assert.Equal(t, "Str0ng!Password", got)

	rejections := 0
	for _, ev := range sink.events {
		if ev.Type == EventValidationResult && !ev.IsValid {
			rejections++
		}
	}
	assert.Equal(t, 2, rejections)
}

func TestEndToEndScenario3CreateAbandonsWithoutFileOnSelfTestFailure(t *testing.T) {
	cfg := testConfig(t)
	script := append(scriptCreateShares("password123", "password456", "this is the master secret"),
		withSecret("wrong"), // self-test keeper 1, attempt 1
		withSecret("wrong"), // self-test keeper 1, attempt 2
		withSecret("wrong"), // self-test keeper 1, attempt 3
	)
	sink := &scriptedSink{t: t, script: script}

	engine, err := New(cfg, sink)
	require.NoError(t, err)

	result, err := engine.CreateShares()
	require.Error(t, err)
	assert.Nil(t, result)

	entries, readErr := os.ReadDir(engine.SessionFolder())
	require.NoError(t, readErr)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), "secret_shares_")
	}

	completion, ok := sink.completionEvent()
	require.True(t, ok)
	assert.False(t, completion.Success)
}
