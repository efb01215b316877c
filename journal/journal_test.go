//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamirguard/ceremony-engine/config"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
)

func TestFinalizeProducesVerifiableSeal(t *testing.T) {
	j := New("sess-1", config.OrganizationConfig{Name: "Acme"})
	j.Append(EventAdminBound, "administrator bound")
	j.RecordShareCreation(5, 3, "secret_shares_20260101_000000.json")

	output, err := Finalize(j, sealedbuf.FromString("admin-pass", 3))
	require.NoError(t, err)

	assert.Equal(t, 1, output.SessionData.Summary.TotalShareSets)
	assert.Equal(t, 5, output.SessionData.Summary.TotalSharesCreated)

	ok, verifyErr := Verify(output, sealedbuf.FromString("admin-pass", 3))
	require.NoError(t, verifyErr)
	assert.True(t, ok)
}

func TestVerifyFailsOnTamperedSessionData(t *testing.T) {
	j := New("sess-2", config.OrganizationConfig{})
	output, err := Finalize(j, sealedbuf.FromString("admin-pass", 3))
	require.NoError(t, err)

	output.SessionData.HostUser = output.SessionData.HostUser + "-tampered"

	ok, verifyErr := Verify(output, sealedbuf.FromString("admin-pass", 3))
	require.NoError(t, verifyErr)
	assert.False(t, ok)
}

func TestVerifyFailsWithWrongAdminPassword(t *testing.T) {
	j := New("sess-3", config.OrganizationConfig{})
	output, err := Finalize(j, sealedbuf.FromString("admin-pass", 3))
	require.NoError(t, err)

	ok, verifyErr := Verify(output, sealedbuf.FromString("wrong-pass", 3))
	require.NoError(t, verifyErr)
	assert.False(t, ok)
}

func TestEndToEndScenario6(t *testing.T) {
	j := New("sess-6", config.OrganizationConfig{Name: "Acme"})
	j.RecordShareCreation(5, 3, "secret_shares_a.json")
	j.RecordShareCreation(3, 2, "secret_shares_b.json")
	j.RecordShareRecovery(true, 2)

	output, err := Finalize(j, sealedbuf.FromString("admin-pass", 3))
	require.NoError(t, err)

	canonical, err := CanonicalJSON(output.SessionData)
	require.NoError(t, err)
	assert.NotEmpty(t, canonical)

	ok, err := Verify(output, sealedbuf.FromString("admin-pass", 3))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 2, output.SessionData.Summary.TotalShareSets)
	assert.Equal(t, 1, output.SessionData.Summary.SuccessfulRecoveries)
	assert.Equal(t, 0, output.SessionData.Summary.FailedRecoveries)
}
