//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamirguard/ceremony-engine/journal"
)

// createSharesFileForReconstructTests runs an unattended create-shares
// ceremony (confirmation_required disabled) with 5 ad-hoc keepers,
// threshold 3, so reconstruct tests have a known shares file and
// passwords to work with.
func createSharesFileForReconstructTests(t *testing.T) (path string, passwords [5]string) {
	cfg := testConfig(t)
	cfg.Security.ConfirmationRequired = false

	passwords = [5]string{"pw-one-123", "pw-two-123", "pw-three-123", "pw-four-123", "pw-five-123"}
	script := []answerFunc{
		withSecret("admin-session-password"),
		withText("Acme Corp"),
		withText("555-0100"),
		withInt(3),
		withInt(5),
		withBool(true), // generate random secret
	}
	for i := 1; i <= 5; i++ {
		script = append(script,
			withText("Keeper"),
			withText("555-000"+string(rune('0'+i))),
			withText("keeper@example.com"),
			withSecret(passwords[i-1]),
		)
	}

	sink := &scriptedSink{t: t, script: script}
	engine, err := New(cfg, sink)
	require.NoError(t, err)

	result, err := engine.CreateShares()
	require.NoError(t, err)
	return result.OutputFile, passwords
}

func TestEndToEndScenario5ReconstructFailsWithTooManyAttempts(t *testing.T) {
	path, passwords := createSharesFileForReconstructTests(t)

	script := []answerFunc{
		withSecret("admin-session-password"), // ADMIN_BIND
		withInt(1), withSecret(passwords[0]), // keeper 1, succeeds
		withInt(2), withSecret(passwords[1]), // keeper 2, succeeds
	}
	for i := 0; i < 10; i++ {
		script = append(script, withInt(3), withSecret("wrong-password"))
	}

	sink := &scriptedSink{t: t, script: script}
	cfg := testConfig(t)
	engine, err := New(cfg, sink)
	require.NoError(t, err)

	result, err := engine.ReconstructSecret(path)
	require.Error(t, err)
	assert.Nil(t, result)

	failures := 0
	for _, ev := range engine.journal.Events {
		if ev.EventType == journal.EventRecoveryDecryptFail {
			failures++
		}
	}
	assert.Equal(t, 10, failures)

	completion, ok := sink.completionEvent()
	require.True(t, ok)
	assert.False(t, completion.Success)
}

func TestReconstructSucceedsWithThresholdShares(t *testing.T) {
	path, passwords := createSharesFileForReconstructTests(t)

	script := []answerFunc{
		withSecret("admin-session-password"),
		withInt(1), withSecret(passwords[0]),
		withInt(3), withSecret(passwords[2]),
		withInt(5), withSecret(passwords[4]),
	}
	sink := &scriptedSink{t: t, script: script}
	cfg := testConfig(t)
	engine, err := New(cfg, sink)
	require.NoError(t, err)

	result, err := engine.ReconstructSecret(path)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Len(t, result.ReconstructedSecret, 32)
}

func TestReconstructRejectsReuseOfAnAlreadyUsedKeeperIndex(t *testing.T) {
	path, passwords := createSharesFileForReconstructTests(t)

	script := []answerFunc{
		withSecret("admin-session-password"),
		withInt(1), withSecret(passwords[0]),
		withInt(1),          // re-selecting keeper 1 is rejected and re-prompted
		withInt(2),          // valid distinct selection
		withSecret(passwords[1]),
		withInt(3), withSecret(passwords[2]),
	}
	sink := &scriptedSink{t: t, script: script}
	cfg := testConfig(t)
	engine, err := New(cfg, sink)
	require.NoError(t, err)

	result, err := engine.ReconstructSecret(path)
	require.NoError(t, err)
	assert.True(t, result.Success)
}
